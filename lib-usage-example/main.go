package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/plugindepot/plugindepot/pkg/depot"
)

func main() {
	// Usage: go run *.go [-plugin "Serum"]

	pluginFlag := flag.String("plugin", "", "Plugin to inspect (id, install path or exact name)")

	// Parse the command-line flags
	flag.Parse()

	d, err := depot.New(depot.Options{})
	if err != nil {
		fmt.Println("Failed to build the depot:", err)
		return
	}

	ctx := context.Background()
	list := d.Scan(ctx)
	if list.Incomplete() {
		fmt.Println("Warning: the scan was cut short; the list below is partial.")
	}

	for _, p := range list.Plugins() {
		fmt.Println(p.Format, p.Name, p.InstallPath)
	}

	if *pluginFlag == "" {
		return
	}

	i, err := list.Find(*pluginFlag)
	if err != nil {
		fmt.Println(err)
		return
	}

	files, err := d.EnumerateFiles(ctx, list, i)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println("\nAssociated files:")
	for _, f := range files {
		fmt.Println(f.Category, f.Path)
	}

	// Dry run: see what an uninstall would remove without touching disk.
	paths, err := d.Uninstall(ctx, list, i, true)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println("\nAn uninstall would remove:")
	for _, p := range paths {
		fmt.Println(p)
	}
}
