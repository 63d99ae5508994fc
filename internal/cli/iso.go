package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	cio "github.com/matzehuels/canonic/pkg/io"
	"github.com/matzehuels/canonic/pkg/pipeline"
)

// isoFlags holds flags for the iso command.
type isoFlags struct {
	input  inputFlags
	search searchFlags
	strict bool
}

// isoCommand creates the iso command for isomorphism testing.
func (c *CLI) isoCommand() *cobra.Command {
	flags := isoFlags{}

	cmd := &cobra.Command{
		Use:   "iso [file] [file]",
		Short: "Test whether two graphs are isomorphic",
		Long: `Compare two graphs by their canonical certificates. When they are
isomorphic the command prints a mapping from the first graph's vertices to
the second's.`,
		Example: `  canonic iso a.edges b.edges
  canonic iso a.json b.json -o json --strict`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runIso(cmd, args[0], args[1], flags)
		},
	}

	flags.input.register(cmd, false)
	flags.search.register(cmd, true)
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "exit with an error when the graphs are not isomorphic")

	return cmd
}

// errNotIsomorphic is returned by iso --strict for a negative answer.
var errNotIsomorphic = fmt.Errorf("graphs are not isomorphic")

// runIso executes the iso command.
func (c *CLI) runIso(cmd *cobra.Command, pathG, pathH string, flags isoFlags) error {
	ctx := cmd.Context()
	g, err := flags.input.readOne(cmd.InOrStdin(), pathG)
	if err != nil {
		return err
	}
	h, err := flags.input.readOne(cmd.InOrStdin(), pathH)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, flags.search.noCache, false)
	if err != nil {
		return err
	}
	defer runner.Close()

	opts, err := c.options(cmd, &flags.search, cio.Instance{})
	if err != nil {
		return err
	}
	newSearchProgress(c.Logger).attach(&opts)

	spinner := newSpinnerWithContext(ctx, cmd.ErrOrStderr(), "Comparing...")
	spinner.Start()
	res, err := runner.Compare(ctx, g.Graph, h.Graph, opts)
	spinner.Stop()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.Format == pipeline.FormatText {
		printCompare(out, res)
	} else if err := pipeline.Encode(out, opts.Format, res); err != nil {
		return err
	}
	if flags.strict && !res.Isomorphic {
		return errNotIsomorphic
	}
	return nil
}

func printCompare(w io.Writer, res *pipeline.CompareResult) {
	if !res.Isomorphic {
		printWarning(w, "Not isomorphic")
		if res.Reason != "" {
			printDetail(w, "%s", res.Reason)
		}
		return
	}
	printSuccess(w, "Isomorphic")
	printKeyValue(w, "hash", res.HashG)
	printKeyValue(w, "mapping", fmt.Sprint(res.Mapping))
	if res.Stats.CacheHit {
		printDetail(w, "%s", iconCached)
	}
}
