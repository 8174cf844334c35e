// Command ego compiles organizational policy definitions into the
// configuration artifacts consumed by AI coding assistants.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"egokit/internal/registry"
)

var (
	// Global flags
	registryPath string
	verbose      bool

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ego",
	Short: "EgoKit - policy registry compiler for AI coding assistants",
	Long: `EgoKit compiles a hierarchical policy registry (rule charter plus
behavioral "ego" configuration) into the artifacts AI coding assistants
read: a policy document with a managed section, JSON settings, and
slash-command prompt files.

Scopes merge in precedence order (global, then team, then project);
later scopes override earlier ones rule by rule and field by field.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&registryPath, "registry", "", "path to the policy registry (default: discovered upward from the working directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(imprintCmd)
	rootCmd.AddCommand(exportPromptCmd)
	rootCmd.AddCommand(watchCmd)
}

// openRegistry resolves the registry root from the flag or by walking
// upward from the working directory.
func openRegistry() (*registry.Registry, error) {
	root := registryPath
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		root = registry.Discover(cwd)
	}
	if root == "" {
		return nil, fmt.Errorf("no policy registry found; run 'ego init' or pass --registry")
	}
	return registry.New(root).WithLogger(logger), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
