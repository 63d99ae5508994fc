package cli

import (
	"io"
	"time"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/canonic/pkg/errors"
	cio "github.com/matzehuels/canonic/pkg/io"
	"github.com/matzehuels/canonic/pkg/pipeline"
)

// stdinPath is the file argument that reads standard input.
const stdinPath = "-"

// =============================================================================
// Input Flags
// =============================================================================

// inputFlags select how graph files are read.
type inputFlags struct {
	format    string
	directed  bool
	partition string
}

func (f *inputFlags) register(cmd *cobra.Command, withPartition bool) {
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "input format: edges, list, dimacs, json (default: from extension, edges for stdin)")
	cmd.Flags().BoolVar(&f.directed, "directed", false, "read list input as directed")
	if withPartition {
		cmd.Flags().StringVarP(&f.partition, "partition", "p", "", `initial partition, e.g. "[ 0 | 1:3 ]"`)
	}
}

// read decodes every graph in path ("-" for stdin). A --partition flag
// replaces the partition stored in the file.
func (f *inputFlags) read(stdin io.Reader, path string) ([]cio.Instance, error) {
	var format cio.Format
	if f.format != "" {
		parsed, err := cio.ParseFormat(f.format)
		if err != nil {
			return nil, err
		}
		format = parsed
	}

	var (
		insts []cio.Instance
		err   error
	)
	if path == stdinPath {
		if format == "" {
			format = cio.FormatEdgeList
		}
		insts, err = cio.Read(stdin, format, f.directed)
	} else {
		insts, err = cio.ReadFile(path, format, f.directed)
	}
	if err != nil {
		return nil, err
	}
	if len(insts) == 0 {
		return nil, errs.New(errs.ErrCodeInvalidInput, "no graphs in %s", path)
	}

	if f.partition != "" {
		for i := range insts {
			p, err := cio.ParsePartition(f.partition, insts[i].Graph.Order())
			if err != nil {
				return nil, err
			}
			insts[i].Partition = p
		}
	}
	return insts, nil
}

// readOne is read for commands that take a single graph.
func (f *inputFlags) readOne(stdin io.Reader, path string) (cio.Instance, error) {
	insts, err := f.read(stdin, path)
	if err != nil {
		return cio.Instance{}, err
	}
	if len(insts) > 1 {
		return cio.Instance{}, errs.New(errs.ErrCodeInvalidInput, "%s holds %d graphs, expected one", path, len(insts))
	}
	return insts[0], nil
}

// =============================================================================
// Search Flags
// =============================================================================

// searchFlags tune refinement and search.
type searchFlags struct {
	descending bool
	noPrune    bool
	maxNodes   int
	timeout    time.Duration
	noCache    bool
	refresh    bool
	output     string
}

func (f *searchFlags) register(cmd *cobra.Command, withSearch bool) {
	cmd.Flags().BoolVar(&f.descending, "descending", false, "order split fragments by descending count")
	if withSearch {
		cmd.Flags().BoolVar(&f.noPrune, "no-prune", false, "visit the whole search tree")
		cmd.Flags().IntVar(&f.maxNodes, "max-nodes", pipeline.DefaultMaxNodes, "abort after this many search nodes (0 = no limit)")
		cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "abort the search after this long (0 = no limit)")
	}
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute and overwrite cached results")
	cmd.Flags().StringVarP(&f.output, "output", "o", pipeline.DefaultFormat, "output format: text, json, yaml")
}

// options builds pipeline options for inst, with config defaults for the
// flags the user did not set.
func (c *CLI) options(cmd *cobra.Command, f *searchFlags, inst cio.Instance) (pipeline.Options, error) {
	opts := pipeline.Options{
		Partition:  inst.Partition,
		Descending: f.descending,
		NoPrune:    f.noPrune,
		MaxNodes:   f.maxNodes,
		Timeout:    f.timeout,
		Format:     f.output,
		Refresh:    f.refresh,
	}
	c.setCLIDefaults(cmd, &opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return opts, err
	}
	return opts, nil
}
