package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <plugin>",
	Short: "Export a plugin into a portable directory",
	Long:  "Copies the plugin and its data into a directory whose manifest records enough metadata to reinstall it elsewhere.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		if dir == "" {
			dir = viper.GetString("exports.dir")
		}
		if dir == "" {
			return fmt.Errorf("no export directory given; pass --dir or set exports.dir in the config file")
		}

		d, err := newDepot()
		if err != nil {
			return err
		}
		list, i, err := findPlugin(cmd, d, args[0])
		if err != nil {
			return err
		}

		dest, err := d.Export(cmd.Context(), list, i, dir)
		if err != nil {
			return err
		}
		fmt.Println(dest)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("dir", "d", "", "Directory to place the export in (default: exports.dir from the config file)")
}
