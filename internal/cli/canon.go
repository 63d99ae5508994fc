package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	cio "github.com/matzehuels/canonic/pkg/io"
	"github.com/matzehuels/canonic/pkg/pipeline"
)

// canonFlags holds flags for the canon command.
type canonFlags struct {
	input     inputFlags
	search    searchFlags
	record    bool
	canonical string
}

// canonCommand creates the canon command for computing canonical forms.
func (c *CLI) canonCommand() *cobra.Command {
	flags := canonFlags{}

	cmd := &cobra.Command{
		Use:   "canon [file]",
		Short: "Compute canonical labelings and automorphism groups",
		Long: `Compute the canonical labeling of every graph in a file, together with
automorphism group generators, orbits and the group size.

Isomorphic graphs get the same certificate hash. With --record the class is
added to the catalog configured in the [catalog] section.`,
		Example: `  # Canonicalize an edge list
  canonic canon petersen.edges

  # Start from a coloured partition and print JSON
  canonic canon graph.edges -p "[ 0 | 1:9 ]" -o json

  # Read stdin and print the canonical graph
  canonic generate cycle -n 6 | canonic canon - --canonical edges`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCanon(cmd, args[0], flags)
		},
	}

	flags.input.register(cmd, true)
	flags.search.register(cmd, true)
	cmd.Flags().BoolVar(&flags.record, "record", false, "add each class to the catalog")
	cmd.Flags().StringVar(&flags.canonical, "canonical", "", "also write the canonical graph in this format (edges, list, dimacs, json)")

	return cmd
}

// runCanon executes the canon command.
func (c *CLI) runCanon(cmd *cobra.Command, path string, flags canonFlags) error {
	ctx := cmd.Context()
	insts, err := flags.input.read(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}
	var emit cio.Format
	if flags.canonical != "" {
		if emit, err = cio.ParseFormat(flags.canonical); err != nil {
			return err
		}
	}

	runner, err := c.newRunner(ctx, flags.search.noCache, flags.record)
	if err != nil {
		return err
	}
	defer runner.Close()
	if flags.record && runner.Catalog == nil {
		c.Logger.Warn("no catalog configured, --record ignored")
	}

	out := cmd.OutOrStdout()
	results := make([]*pipeline.CanonResult, 0, len(insts))
	for i, inst := range insts {
		opts, err := c.options(cmd, &flags.search, inst)
		if err != nil {
			return err
		}
		opts.Record = flags.record
		newSearchProgress(c.Logger).attach(&opts)

		prog := newProgress(c.Logger)
		spinner := newSpinnerWithContext(ctx, cmd.ErrOrStderr(), fmt.Sprintf("Searching %d vertices...", inst.Graph.Order()))
		spinner.Start()
		res, err := runner.Canonicalize(ctx, inst.Graph, opts)
		spinner.Stop()
		if err != nil {
			return fmt.Errorf("graph %d: %w", i+1, err)
		}
		prog.done(fmt.Sprintf("Canonicalized %d vertices", res.Order))

		if opts.Format == pipeline.FormatText {
			if i > 0 {
				fmt.Fprintln(out)
			}
			printCanon(out, res)
		}
		if emit != "" {
			if err := cio.Write(out, emit, cio.Instance{Graph: res.CanonicalGraph()}); err != nil {
				return err
			}
		}
		results = append(results, res)
	}

	if flags.search.output == pipeline.FormatText {
		return nil
	}
	return encodeResults(out, flags.search.output, results)
}

// encodeResults writes a single result bare and a batch as a list.
func encodeResults[T any](w io.Writer, format string, results []T) error {
	if len(results) == 1 {
		return pipeline.Encode(w, format, results[0])
	}
	return pipeline.Encode(w, format, results)
}

func printCanon(w io.Writer, res *pipeline.CanonResult) {
	printSuccess(w, "Canonical form %s", StyleHighlight.Render(res.Hash[:12]))
	printStats(w, res.Order, res.Edges, res.Stats.CacheHit)
	printKeyValue(w, "hash", res.Hash)
	printKeyValue(w, "group size", StyleNumber.Render(fmt.Sprint(res.GroupSize)))
	printKeyValue(w, "orbits", formatCells(res.Orbits))
	printKeyValue(w, "labeling", fmt.Sprint(res.Labeling))
	printKeyValue(w, "generators", fmt.Sprint(len(res.Generators)))
	for _, g := range res.Generators {
		printDetail(w, "%s", formatCycles(g))
	}
	printKeyValue(w, "search", fmt.Sprintf("%d nodes, %d leaves, %d pruned", res.Search.Nodes, res.Search.Leaves, res.Search.Pruned))
	if res.Class != nil {
		printKeyValue(w, "class", fmt.Sprintf("%s (seen %d times)", res.Class.ID, res.Class.Count))
	}
}
