package cli

import (
	"fmt"

	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"github.com/AnatoleLucet/frp/internal/script"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <scenario>...",
		Short: "Check scenarios without running them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateScenarios(cmd, rootOpts, args)
		},
	}
}

func validateScenarios(cmd *cobra.Command, opts *RootOptions, paths []string) error {
	w := cmd.OutOrStdout()
	results := make([]any, 0, len(paths))
	failed := 0

	for _, path := range paths {
		result := map[string]any{"path": path, "valid": true}

		if _, err := script.Load(path); err != nil {
			failed++
			result["valid"] = false
			result["error"] = err.Error()
			if opts.Format == "text" {
				fmt.Fprintf(w, "FAIL %v\n", err)
			}
		} else if opts.Format == "text" {
			fmt.Fprintf(w, "ok   %s\n", path)
		}

		results = append(results, result)
	}

	if opts.Format == "json" {
		fmt.Fprintln(w, oj.JSON(results, &ojg.Options{Sort: true, Indent: 2}))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d scenario(s) invalid", failed, len(paths))
	}
	return nil
}
