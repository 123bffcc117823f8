package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/plugindepot/plugindepot/internal/utils"
	"github.com/plugindepot/plugindepot/pkg/catalog"
	"github.com/plugindepot/plugindepot/pkg/depot"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

const (
	LOGO = `	       _             _           _                  _
	 _ __ | |_   _  __ _(_)_ __   __| | ___ _ __   ___ | |_
	| '_ \| | | | |/ _` + "`" + ` | | '_ \ / _` + "`" + ` |/ _ \ '_ \ / _ \| __|
	| |_) | | |_| | (_| | | | | | (_| |  __/ |_) | (_) | |_
	| .__/|_|\__,_|\__, |_|_| |_|\__,_|\___| .__/ \___/ \__|
	|_|            |___/                   |_|

`
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "plugindepot",
	Short: "An audio plugin lifecycle manager.",
	Long: LOGO + `plugindepot discovers the VST2, VST3, Audio Unit and AAX plugins installed
on this machine, maps each one to its presets, sample libraries and
preference files, and can back them up, export them or uninstall them
without touching what other plugins still need.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.plugindepot.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".plugindepot")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := home + "/.plugindepot.yaml"
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Printf("Error creating config file: %s", err)
			}
		}
	}

	// Set default empty values for all keys
	viper.SetDefault("backups.dir", "")
	viper.SetDefault("exports.dir", "")
	viper.SetDefault("icons.cachedir", "")
	viper.SetDefault("inventory.dbpath", "")
	viper.SetDefault("scan.concurrency", 4)
	viper.SetDefault("scan.extraroots", []string{})
	viper.SetDefault("serve.username", "")
	viper.SetDefault("serve.password", "")

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	utils.SetLogLevel(levelString)
}

// newDepot builds the engine facade from the machine defaults plus
// whatever the config file adds.
func newDepot() (*depot.Depot, error) {
	cfg, err := catalog.DefaultConfig()
	if err != nil {
		return nil, err
	}
	for _, raw := range viper.GetStringSlice("scan.extraroots") {
		root, err := parseExtraRoot(raw)
		if err != nil {
			return nil, err
		}
		cfg.ExtraRoots = append(cfg.ExtraRoots, root)
	}
	cat, err := catalog.New(cfg)
	if err != nil {
		return nil, err
	}
	return depot.New(depot.Options{
		Catalog:      cat,
		Concurrency:  viper.GetInt("scan.concurrency"),
		IconCacheDir: viper.GetString("icons.cachedir"),
	})
}

// parseExtraRoot decodes one scan.extraroots entry of the form
// "FORMAT:/path", e.g. "VST3:/opt/plugins".
func parseExtraRoot(raw string) (catalog.SearchRoot, error) {
	name, dir, ok := strings.Cut(raw, ":")
	if !ok || dir == "" {
		return catalog.SearchRoot{}, fmt.Errorf("bad extra root %q, expected FORMAT:/path", raw)
	}
	f, err := catalog.ParseFormat(name)
	if err != nil {
		return catalog.SearchRoot{}, err
	}
	return catalog.SearchRoot{Dir: dir, Format: f, Scope: catalog.ScopeUser}, nil
}

// findPlugin scans and resolves a selector (plugin id, install path, or
// exact name) to an index. Commands that change or copy files must not
// act on a partial view of the machine.
func findPlugin(cmd *cobra.Command, d *depot.Depot, selector string) (*depot.PluginList, int, error) {
	list := d.Scan(cmd.Context())
	if list.Incomplete() {
		return nil, 0, fmt.Errorf("scan was interrupted before covering every search root")
	}
	i, err := list.Find(selector)
	if err != nil {
		return nil, 0, err
	}
	return list, i, nil
}
