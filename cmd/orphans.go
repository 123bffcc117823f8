package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// orphansCmd represents the orphans command
var orphansCmd = &cobra.Command{
	Use:   "orphans",
	Short: "Find leftovers in plugin directories",
	Long:  "Scans the plugin search roots for files and directories that no installed plugin claims, typically debris from failed installs or sloppy uninstallers.",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDepot()
		if err != nil {
			return err
		}

		orphans, err := d.DetectOrphans(cmd.Context())
		if err != nil {
			return err
		}

		if len(orphans) == 0 {
			fmt.Println("No orphans found.")
			return nil
		}
		for _, o := range orphans {
			fmt.Println(o.Path)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(orphansCmd)
}
