package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/plugindepot/plugindepot/internal/utils"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Discover installed plugins",
	Long:  "Walks every known plugin directory and prints the installed VST2, VST3, Audio Unit and AAX plugins with their associated data counts.",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		d, err := newDepot()
		if err != nil {
			return err
		}

		list := d.Scan(cmd.Context())
		if list.Incomplete() {
			utils.Log.Warn("Scan was interrupted; results cover only part of the search roots.")
		}

		if asJSON {
			out, err := json.MarshalIndent(list.Plugins(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		}

		if list.Count() == 0 {
			fmt.Println("No plugins found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "NAME\tVERSION\tFORMAT\tVENDOR\tPRESETS\tLIBRARIES\tPREFS\tPATH")
		for _, p := range list.Plugins() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
				p.Name, p.Version, p.Format, p.Vendor, p.PresetCount, p.LibraryCount, p.PreferenceCount, p.InstallPath)
		}
		w.Flush()

		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().Bool("json", false, "Print the plugin list as JSON")
}
