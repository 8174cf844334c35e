package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"egokit/internal/render"
)

var exportScopes []string

// exportPromptCmd prints the system-prompt fragment to stdout for use
// with assistants that accept an appended system prompt.
var exportPromptCmd = &cobra.Command{
	Use:   "export-prompt",
	Short: "Print the system-prompt fragment for the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		effective, err := reg.Resolve(exportScopes)
		if err != nil {
			return err
		}
		fmt.Print(render.New(effective, time.Now()).SystemPrompt())
		return nil
	},
}

func init() {
	exportPromptCmd.Flags().StringSliceVar(&exportScopes, "scope", []string{"global"}, "scope precedence, lowest first")
}
