package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// uninstallCmd represents the uninstall command
var uninstallCmd = &cobra.Command{
	Use:   "uninstall <plugin>",
	Short: "Remove a plugin and its data from disk",
	Long:  "Deletes the plugin bundle, presets, libraries and preference files, skipping anything another installed plugin still claims. Use --dry-run to see what would go.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		d, err := newDepot()
		if err != nil {
			return err
		}
		list, i, err := findPlugin(cmd, d, args[0])
		if err != nil {
			return err
		}

		paths, err := d.Uninstall(cmd.Context(), list, i, dryRun)
		if err != nil {
			return err
		}

		if dryRun {
			if len(paths) == 0 {
				fmt.Println("Nothing to remove.")
				return nil
			}
			fmt.Println("Would remove:")
			for _, p := range paths {
				fmt.Println(p)
			}
			return nil
		}

		for _, p := range paths {
			fmt.Println(p)
		}
		fmt.Printf("Removed %d paths.\n", len(paths))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(uninstallCmd)
	uninstallCmd.Flags().Bool("dry-run", false, "Print the removal targets without deleting anything")
}
