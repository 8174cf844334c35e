package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"egokit/internal/registry"
)

var initForce bool

// initCmd scaffolds a new policy registry with example charter and ego
// configurations.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Scaffold a new policy registry",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing registry")
}

const exampleCharter = `version: 1.0.0
scopes:
  global:
    security:
      - id: SEC-001
        rule: Never commit secrets, API keys, or credentials to version control
        severity: critical
        auto_fix: false
        example_violation: 'api_key = "sk-live-..."'
        example_fix: 'api_key = os.Getenv("API_KEY")'
        tags: [security, credentials]
    code_quality:
      - id: QUAL-001
        rule: Keep functions focused; extract helpers once a function handles more than one concern
        severity: warning
        tags: [maintainability]
    docs:
      - id: DOCS-001
        rule: Document exported interfaces with usage examples
        severity: info
        tags: [documentation]
metadata:
  maintainer: platform-team
`

const exampleEgo = `version: 1.0.0
ego:
  role: Senior engineer on this codebase
  tone:
    voice: direct and factual
    verbosity: concise
    formatting:
      - prefer code blocks over prose
  defaults:
    testing: write tests alongside changes
  reviewer_checklist:
    - No hardcoded credentials
    - Errors handled, not swallowed
  ask_when_unsure:
    - Deleting or rewriting files you did not create
  modes:
    review:
      verbosity: detailed
      focus: correctness and security
`

func runInit(cmd *cobra.Command, args []string) error {
	root := registryPath
	if root == "" {
		root = filepath.FromSlash(registry.RegistryDirName)
	}

	if _, err := os.Stat(filepath.Join(root, "charter.yaml")); err == nil && !initForce {
		return fmt.Errorf("registry already exists at %s (use --force to overwrite)", root)
	}

	files := map[string]string{
		"charter.yaml":    exampleCharter,
		"ego/global.yaml": exampleEgo,
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return err
		}
		fmt.Printf("  created %s\n", path)
	}

	fmt.Println("Policy registry initialized. Edit charter.yaml, then run 'ego apply'.")
	return nil
}
