package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/plugindepot/plugindepot/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose the engine over HTTP",
	Long:  "Starts a JSON API that mirrors the library surface: scan sessions, per-plugin file lists, backup/export/uninstall and the icon cache. Intended for host applications that embed the engine out of process.",
	RunE: func(cmd *cobra.Command, args []string) error {
		listenAddr, _ := cmd.Flags().GetString("listen")
		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")
		if username == "" {
			username = viper.GetString("serve.username")
		}
		if password == "" {
			password = viper.GetString("serve.password")
		}

		d, err := newDepot()
		if err != nil {
			return err
		}

		return server.New(d, username, password).Start(listenAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", "127.0.0.1:8080", "HTTP listen address")
	serveCmd.Flags().String("username", "", "Basic auth username (default: serve.username from the config file; empty disables auth)")
	serveCmd.Flags().String("password", "", "Basic auth password (default: serve.password from the config file)")
}
