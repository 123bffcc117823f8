package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// backupCmd represents the backup command
var backupCmd = &cobra.Command{
	Use:   "backup <plugin>",
	Short: "Copy a plugin and all its data into a backup directory",
	Long:  "Copies the plugin bundle, presets, libraries and preference files into a manifest-carrying directory named after the plugin id. A partial backup is deleted, never left behind.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		if dir == "" {
			dir = viper.GetString("backups.dir")
		}
		if dir == "" {
			return fmt.Errorf("no backup directory given; pass --dir or set backups.dir in the config file")
		}

		d, err := newDepot()
		if err != nil {
			return err
		}
		list, i, err := findPlugin(cmd, d, args[0])
		if err != nil {
			return err
		}

		dest, err := d.Backup(cmd.Context(), list, i, dir)
		if err != nil {
			return err
		}
		fmt.Println(dest)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.Flags().StringP("dir", "d", "", "Directory to place the backup in (default: backups.dir from the config file)")
}
