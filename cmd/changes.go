package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/plugindepot/plugindepot/internal/utils"
	"github.com/plugindepot/plugindepot/pkg/inventory"
)

var changesCmd = &cobra.Command{
	Use:   "changes",
	Short: "Show recent inventory changes (default 50)",
	Long:  "Lists the most recent additions, updates and removals recorded by past snapshots, newest first.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		dbPath, _ := cmd.Flags().GetString("dbpath")
		limit, _ := cmd.Flags().GetInt("limit")
		if dbPath == "" {
			dbPath = viper.GetString("inventory.dbpath")
		}
		absPath, err := utils.GetAbsDBPath(dbPath)
		if err != nil {
			return err
		}
		if _, err := os.Stat(absPath); err != nil {
			return fmt.Errorf("inventory database not found: %s (run 'plugindepot snapshot' first)", absPath)
		}

		db, err := inventory.Open(absPath)
		if err != nil {
			return err
		}
		defer db.Close()

		changes, err := db.ListRecentChanges(cmd.Context(), limit)
		if err != nil {
			return err
		}
		for _, c := range changes {
			ts := c.OccurredAt.Format("2006-01-02 15:04:05")
			fmt.Printf("%s  %-7s  %-5s  %s  %s\n", ts, c.ChangeType, c.Format, c.Name, c.InstallPath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(changesCmd)
	changesCmd.Flags().String("dbpath", "", "Path to the inventory database (default: inventory.dbpath from the config file, then ~/.config/plugindepot/plugindepot.sqlite)")
	changesCmd.Flags().Int("limit", 50, "Number of recent changes to show")
}
