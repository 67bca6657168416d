package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"apibdd/internal/config"
	"apibdd/internal/data"
)

func newValidateCmd() *cobra.Command {
	var (
		env      string
		features []string
		dataDir  string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration, test data, and feature paths",
		Long: `Validate loads the configuration, resolves the target
environment, parses every test data file, and checks that the feature
paths exist, without executing any scenario.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logLevelSet := false
			if f := cmd.Flag("log-level"); f != nil {
				logLevelSet = f.Changed
			}
			return runValidate(env, features, dataDir, logLevelSet)
		},
	}

	cmd.Flags().StringVarP(&env, "env", "e", "", "environment to validate (default from config)")
	cmd.Flags().StringSliceVarP(&features, "features", "f", []string{"features"}, "feature file or directory paths")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "test data directory (default from config)")

	return cmd
}

func runValidate(env string, features []string, dataDir string, logLevelSet bool) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	initLoggingFromConfig(cfg, logLevelSet)

	environment, envName := cfg.ResolveEnvironment(env)
	fmt.Printf("✅ Configuration valid\n")
	fmt.Printf("   • Environment: %s\n", envName)
	fmt.Printf("   • Base URL: %s\n", environment.BaseURL)
	fmt.Printf("   • Auth type: %s\n", environment.Auth.Type)

	if dataDir == "" {
		dataDir = cfg.DataDir
	}
	if err := validateDataDir(dataDir); err != nil {
		return err
	}

	if err := validateFeaturePaths(features); err != nil {
		return err
	}

	fmt.Printf("\n🎉 Everything checks out\n")
	return nil
}

// validateDataDir parses every JSON/YAML file under the data directory. A
// missing directory is not an error, scenarios may not need fixtures.
func validateDataDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Printf("⚠️  No test data directory at %s\n", dir)
			return nil
		}
		return fmt.Errorf("read data directory %s: %w", dir, err)
	}

	provider := data.NewProvider(dir)
	checked := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".json" && ext != ".yaml" && ext != ".yml" {
			continue
		}
		if _, err := provider.Load(entry.Name()); err != nil {
			return fmt.Errorf("test data invalid: %w", err)
		}
		checked++
	}
	fmt.Printf("✅ Test data valid (%d files in %s)\n", checked, dir)
	return nil
}

func validateFeaturePaths(paths []string) error {
	found := 0
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("feature path %s: %w", path, err)
		}
		if info.IsDir() {
			matches, err := filepath.Glob(filepath.Join(path, "*.feature"))
			if err != nil {
				return err
			}
			found += len(matches)
			continue
		}
		found++
	}
	if found == 0 {
		return fmt.Errorf("no feature files found under %s", strings.Join(paths, ", "))
	}
	fmt.Printf("✅ Feature paths valid (%d feature files)\n", found)
	return nil
}
