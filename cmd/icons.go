package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plugindepot/plugindepot/pkg/fetch"
)

// iconsCmd represents the parent `icons` command.
var iconsCmd = &cobra.Command{
	Use:   "icons",
	Short: "Manage the plugin artwork cache",
}

var iconsFetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Download an icon and store it in the cache",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDepot()
		if err != nil {
			return err
		}

		data, err := fetch.New().Bytes(args[0])
		if err != nil {
			return err
		}
		path, err := d.CacheIcon(args[0], data)
		if err != nil {
			return err
		}
		fmt.Println(path)

		return nil
	},
}

var iconsPathCmd = &cobra.Command{
	Use:   "path <url>",
	Short: "Print the cached file for an icon URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDepot()
		if err != nil {
			return err
		}

		path, err := d.CachedIconPath(args[0])
		if err != nil {
			return err
		}
		fmt.Println(path)

		return nil
	},
}

var iconsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the icon cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDepot()
		if err != nil {
			return err
		}

		if err := d.ClearIconCache(); err != nil {
			return err
		}
		fmt.Println("Icon cache cleared.")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(iconsCmd)
	iconsCmd.AddCommand(iconsFetchCmd)
	iconsCmd.AddCommand(iconsPathCmd)
	iconsCmd.AddCommand(iconsClearCmd)
}
