package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// filesCmd represents the files command
var filesCmd = &cobra.Command{
	Use:   "files <plugin>",
	Short: "List every file associated with a plugin",
	Long:  "Lists the plugin bundle plus the presets, sample libraries and preference files it owns. Select the plugin by id, install path, or exact name.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDepot()
		if err != nil {
			return err
		}
		list, i, err := findPlugin(cmd, d, args[0])
		if err != nil {
			return err
		}

		files, err := d.EnumerateFiles(cmd.Context(), list, i)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "CATEGORY\tPATH")
		for _, f := range files {
			fmt.Fprintf(w, "%s\t%s\n", f.Category, f.Path)
		}
		w.Flush()

		return nil
	},
}

func init() {
	rootCmd.AddCommand(filesCmd)
}
