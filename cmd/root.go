package cmd

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/davril/atomkit/internal/log"
)

// Flags
var cfgFile string
var verboseFlag bool
var logFileFlag string
var debugMode bool

var rootCmd = &cobra.Command{
	Use:   "atomkit",
	Short: "Relax crystal structures and run molecular dynamics from your terminal",
	Long: `atomkit works through sub-commands with their own options. To see the
options for a sub-command, type "atomkit sub-command -h".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Nothing to dispatch without a subcommand.
		_ = cmd.Help()
		return errors.New("a subcommand is required: relax or md")
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)
	cobra.OnInitialize(func() {
		log.Init(viper.GetBool("verbose"), viper.GetBool("debug_mode"), viper.GetString("log_file"))
	})

	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Verbose output.")
	rootCmd.PersistentFlags().StringVar(&logFileFlag, "log-file", "", "Path to the log file (default: $XDG_STATE_HOME/atomkit/atomkit.log).")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging level (overrides --verbose).")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("log_file", rootCmd.PersistentFlags().Lookup("log-file"))
	viper.BindPFlag("debug_mode", rootCmd.PersistentFlags().Lookup("debug"))

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/atomkit/config.yaml)")
	viper.BindPFlag("config_file", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	var configPath string
	if cfgFile != "" {
		configPath = cfgFile
	} else {
		xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfigHome == "" {
			home, err := os.UserHomeDir()
			cobra.CheckErr(err)
			xdgConfigHome = filepath.Join(home, ".config")
		}
		configPath = filepath.Join(xdgConfigHome, "atomkit", "config.yaml")
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	// Any variables starting with ATOMKIT_* are captured for the cli
	viper.SetEnvPrefix("ATOMKIT")
	viper.AutomaticEnv()

	viper.SetDefault("verbose", false)
	viper.SetDefault("debug_mode", false)
	viper.SetDefault("log_file", "")
	viper.SetDefault("relax.fmax", 0.1)
	viper.SetDefault("relax.max_steps", 500)
	viper.SetDefault("md.timestep", 2.0)
	viper.SetDefault("md.trajectory", "md.traj")
	viper.SetDefault("md.logfile", "md.log")
	viper.SetDefault("md.loginterval", 100)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok || os.IsNotExist(err) {
			// Defaults are enough; the config file is optional.
			return
		}
		log.Logger.Error().Err(err).Str("config_path", configPath).Msg("Error reading config file.")
		os.Exit(1)
	}
	log.Logger.Info().Str("config_file", viper.ConfigFileUsed()).Msg("Using config file.")
}
