package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/canonic/pkg/pipeline"
)

// refineFlags holds flags for the refine command.
type refineFlags struct {
	input  inputFlags
	search searchFlags
}

// refineCommand creates the refine command.
func (c *CLI) refineCommand() *cobra.Command {
	flags := refineFlags{}

	cmd := &cobra.Command{
		Use:   "refine [file]",
		Short: "Compute the coarsest equitable refinement of a partition",
		Long: `Refine the initial partition of every graph in a file until it is
equitable: every vertex of a cell has the same number of neighbours in each
cell. Without --partition the refinement starts from a single cell.`,
		Example: `  canonic refine graph.edges
  canonic refine graph.list -p "[ 0 | 1:5 ]" -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRefine(cmd, args[0], flags)
		},
	}

	flags.input.register(cmd, true)
	flags.search.register(cmd, false)

	return cmd
}

// runRefine executes the refine command.
func (c *CLI) runRefine(cmd *cobra.Command, path string, flags refineFlags) error {
	ctx := cmd.Context()
	insts, err := flags.input.read(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, flags.search.noCache, false)
	if err != nil {
		return err
	}
	defer runner.Close()

	out := cmd.OutOrStdout()
	results := make([]*pipeline.RefineResult, 0, len(insts))
	for i, inst := range insts {
		opts, err := c.options(cmd, &flags.search, inst)
		if err != nil {
			return err
		}
		res, err := runner.Refine(ctx, inst.Graph, opts)
		if err != nil {
			return fmt.Errorf("graph %d: %w", i+1, err)
		}
		if opts.Format == pipeline.FormatText {
			if i > 0 {
				fmt.Fprintln(out)
			}
			printRefine(out, res, inst.Graph.EdgeCount())
		}
		results = append(results, res)
	}

	if flags.search.output == pipeline.FormatText {
		return nil
	}
	return encodeResults(out, flags.search.output, results)
}

func printRefine(w io.Writer, res *pipeline.RefineResult, edges int) {
	printSuccess(w, "Equitable partition %s", StyleHighlight.Render(res.Partition))
	printStats(w, res.Order, edges, res.Stats.CacheHit)
	printKeyValue(w, "cells", StyleNumber.Render(fmt.Sprint(res.NumCells)))
	discrete := "no"
	if res.Discrete {
		discrete = "yes"
	}
	printKeyValue(w, "discrete", discrete)
	printKeyValue(w, "splits", fmt.Sprintf("%d in %d generations", res.Trace.Splits(), len(res.Trace.Generations)))
}
