package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/plugindepot/plugindepot/internal/utils"
	"github.com/plugindepot/plugindepot/pkg/inventory"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Prints per-format statistics about the plugin inventory.",
	Long:  "Prints per-format statistics about the plugin inventory.",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, _ := cmd.Flags().GetString("dbpath")
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

		stats, err := db.Stats(cmd.Context())
		if err != nil {
			return err
		}

		if len(stats) == 0 {
			fmt.Println("No data in the inventory to generate stats.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)
		fmt.Fprintln(w, "FORMAT\tPLUGINS\tPRESET LOCATIONS\t")

		var totalPlugins, totalPresets int
		for _, s := range stats {
			fmt.Fprintf(w, "%s\t%d\t%d\t\n", s.Format, s.PluginCount, s.PresetLocations)
			totalPlugins += s.PluginCount
			totalPresets += s.PresetLocations
		}

		fmt.Fprintln(w, " \t \t \t")
		fmt.Fprintf(w, "TOTAL\t%d\t%d\t\n", totalPlugins, totalPresets)

		w.Flush()

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().String("dbpath", "", "Path to the inventory database (default: inventory.dbpath from the config file, then ~/.config/plugindepot/plugindepot.sqlite)")
}
