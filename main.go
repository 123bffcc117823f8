package main

import "github.com/plugindepot/plugindepot/cmd"

func main() {
	cmd.Execute()
}
