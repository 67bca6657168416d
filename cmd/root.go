package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"apibdd/internal/config"
	"apibdd/pkg/logging"
)

var (
	// cfgFile is an explicit config file path, empty means auto-discovery.
	cfgFile string
	// logLevel controls the CLI log verbosity.
	logLevel string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "apibdd",
	Short: "BDD test automation for REST APIs",
	Long: `apibdd executes Gherkin feature files against REST APIs.
Scenarios drive HTTP requests through a configurable client with
basic or bearer authentication, and every run produces console,
HTML, and JSON reports.`,
	// SilenceUsage prevents printing the usage message on errors we
	// already report ourselves (failed scenarios, bad config).
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logging.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		logging.Init(level, os.Stderr)
		return nil
	},
}

// effectiveLogLevel picks the process log level. An explicit --log-level
// flag wins, otherwise the level from the config file applies.
func effectiveLogLevel(flagSet bool, flagValue, configValue string) (logging.LogLevel, error) {
	if !flagSet && configValue != "" {
		return logging.ParseLevel(configValue)
	}
	return logging.ParseLevel(flagValue)
}

// initLoggingFromConfig re-initializes the logger once the config file is
// loaded, since PersistentPreRunE runs before the config is available.
func initLoggingFromConfig(cfg config.Config, flagSet bool) {
	level, err := effectiveLogLevel(flagSet, logLevel, cfg.Logging.Level)
	if err != nil {
		return
	}
	logging.Init(level, os.Stderr)
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "apibdd version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		// Cobra prints the error, we just exit non-zero
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./apibdd.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newMockCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
