package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/plugindepot/plugindepot/internal/utils"
	"github.com/plugindepot/plugindepot/pkg/inventory"
)

// snapshotCmd represents the snapshot command
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Record the current plugin set in the inventory database",
	Long:  "Scans the machine and reconciles the result against the inventory database, printing what was added, updated or removed since the last snapshot.",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, _ := cmd.Flags().GetString("dbpath")
		if dbPath == "" {
			dbPath = viper.GetString("inventory.dbpath")
		}
		absPath, err := utils.GetAbsDBPath(dbPath)
		if err != nil {
			return err
		}

		d, err := newDepot()
		if err != nil {
			return err
		}
		list := d.Scan(cmd.Context())
		if list.Incomplete() {
			return fmt.Errorf("scan was interrupted; refusing to record a partial snapshot")
		}

		lock, err := utils.NewDBLock(dbPath)
		if err != nil {
			return err
		}
		if err := lock.Lock(); err != nil {
			return err
		}
		defer lock.Unlock()

		db, err := inventory.Open(absPath)
		if err != nil {
			return err
		}
		defer db.Close()

		changes, err := db.Snapshot(cmd.Context(), list.Plugins())
		if err != nil {
			return err
		}

		if len(changes) == 0 {
			fmt.Printf("Snapshot recorded, %d plugins, no changes.\n", list.Count())
			return nil
		}
		for _, c := range changes {
			ts := c.OccurredAt.Format("2006-01-02 15:04:05")
			fmt.Printf("%s  %-7s  %-5s  %s  %s\n", ts, c.ChangeType, c.Format, c.Name, c.InstallPath)
		}
		fmt.Printf("Snapshot recorded, %d plugins, %d changes.\n", list.Count(), len(changes))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.Flags().String("dbpath", "", "Path to the inventory database (default: inventory.dbpath from the config file, then ~/.config/plugindepot/plugindepot.sqlite)")
}
