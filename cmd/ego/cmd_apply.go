package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"egokit/internal/render"
)

var (
	applyTarget string
	applyScopes []string
)

// applyCmd compiles the registry and writes artifacts into a target repo.
var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Compile the policy registry and write artifacts into a repository",
	Long: `Loads the charter, merges the requested scopes in precedence order,
renders the artifact set, and writes it into the target repository.

The primary policy document keeps human-owned content: generated text is
spliced into a marker-delimited managed section. Artifacts are written
independently; a failure partway through leaves earlier writes in place.`,
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringVarP(&applyTarget, "target", "t", ".", "target repository to write artifacts into")
	applyCmd.Flags().StringSliceVar(&applyScopes, "scope", []string{"global"}, "scope precedence, lowest first (e.g. --scope global --scope teams/backend)")
}

func runApply(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}

	effective, err := reg.Resolve(applyScopes)
	if err != nil {
		return err
	}
	logger.Debug("resolved effective configuration",
		zap.Int("rules", len(effective.Rules)),
		zap.Strings("scopes", applyScopes))

	artifacts, err := render.New(effective, time.Now()).Artifacts()
	if err != nil {
		return err
	}

	written, writeErr := render.NewWriter(applyTarget).Write(artifacts)
	for _, path := range written {
		fmt.Printf("  wrote %s\n", path)
	}
	if writeErr != nil {
		return fmt.Errorf("apply incomplete (%d of %d artifacts written): %w",
			len(written), len(artifacts), writeErr)
	}

	fmt.Printf("Applied %d rules across %d artifacts (charter v%s)\n",
		len(effective.Rules), len(written), effective.Version)
	return nil
}
