package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AnatoleLucet/frp"
	"github.com/AnatoleLucet/frp/internal/script"
)

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	var parallel int

	cmd := &cobra.Command{
		Use:   "run <scenario>...",
		Short: "Run scenarios and print their traces",
		Long: `Run each scenario on its own engine and print the listener firings of
every transaction followed by the final value of every cell.

Scenarios are independent and may run concurrently with --parallel.
Traces are always printed in argument order.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(cmd, rootOpts, args, parallel)
		},
	}

	cmd.Flags().IntVarP(&parallel, "parallel", "p", 1, "number of scenarios run at once")

	return cmd
}

func runScenarios(cmd *cobra.Command, opts *RootOptions, paths []string, parallel int) error {
	if parallel < 1 {
		return fmt.Errorf("invalid parallelism %d: must be at least 1", parallel)
	}

	logger := opts.logger(cmd.ErrOrStderr())
	traces := make([]*script.Trace, len(paths))

	var g errgroup.Group
	g.SetLimit(parallel)
	for i, path := range paths {
		g.Go(func() error {
			s, err := script.Load(path)
			if err != nil {
				return err
			}

			logger.Debug("running scenario", "path", path, "name", s.Name, "nodes", len(s.Nodes))
			trace, err := script.Run(s, frp.WithLogger(logger.With("scenario", s.Name)))
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			traces[i] = trace
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	for _, trace := range traces {
		if opts.Format == "json" {
			fmt.Fprint(w, trace.JSON())
			continue
		}

		if len(traces) > 1 {
			fmt.Fprintf(w, "# %s\n", trace.Name)
		}
		fmt.Fprint(w, trace.Text())
	}

	return nil
}
