package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/canonic/pkg/errors"
	cio "github.com/matzehuels/canonic/pkg/io"
	"github.com/matzehuels/canonic/pkg/partition"
	"github.com/matzehuels/canonic/pkg/pipeline"
	"github.com/matzehuels/canonic/pkg/render"
)

// Render output types and vertex colourings.
const (
	renderDOT = "dot"
	renderSVG = "svg"
	renderPNG = "png"
	renderPDF = "pdf"

	colourEquitable = "equitable"
	colourInitial   = "initial"
	colourOrbits    = "orbits"
	colourNone      = "none"
)

var (
	renderTypes   = []string{renderDOT, renderSVG, renderPNG, renderPDF}
	renderColours = []string{colourEquitable, colourInitial, colourOrbits, colourNone}
)

// renderFlags holds flags for the render command.
type renderFlags struct {
	input     inputFlags
	typ       string
	out       string
	colour    string
	canonical bool
	layout    string
	title     string
	scale     float64
	noCache   bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	flags := renderFlags{}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Draw a graph with vertices coloured by cell",
		Long: `Draw a graph as Graphviz DOT, SVG, PNG or PDF. Vertices are coloured by
the cells of the equitable refinement, the initial partition, or the
automorphism orbits. PNG and PDF output requires rsvg-convert.`,
		Example: `  canonic render petersen.edges --out petersen.svg
  canonic render graph.edges --colour orbits --canonical --type pdf --out graph.pdf
  canonic render graph.edges | dot -Tpng > graph.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args[0], flags)
		},
	}

	flags.input.register(cmd, true)
	cmd.Flags().StringVarP(&flags.typ, "type", "t", "", "output type: dot, svg, png, pdf (default: from --out extension, else dot)")
	cmd.Flags().StringVar(&flags.out, "out", "", "output file (default stdout)")
	cmd.Flags().StringVar(&flags.colour, "colour", colourEquitable, "vertex colouring: equitable, initial, orbits, none")
	cmd.Flags().BoolVar(&flags.canonical, "canonical", false, "label vertices by their canonical position")
	cmd.Flags().StringVar(&flags.layout, "layout", "", "Graphviz layout engine (neato, circo, dot, ...)")
	cmd.Flags().StringVar(&flags.title, "title", "", "title drawn above the graph")
	cmd.Flags().Float64Var(&flags.scale, "scale", 1, "PNG scale factor")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable the result cache")

	return cmd
}

// runRender executes the render command.
func (c *CLI) runRender(cmd *cobra.Command, path string, flags renderFlags) error {
	ctx := cmd.Context()
	typ, err := renderType(flags.typ, flags.out)
	if err != nil {
		return err
	}
	if err := errs.ValidateFormat(flags.colour, renderColours...); err != nil {
		return err
	}
	inst, err := flags.input.readOne(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}

	opts, err := c.renderOptions(ctx, cmd, inst, flags)
	if err != nil {
		return err
	}
	dot := render.ToDOT(inst.Graph, opts)

	data, err := convert(ctx, typ, dot, flags.scale)
	if err != nil {
		return err
	}
	if flags.out == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(flags.out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", flags.out, err)
	}
	printSuccess(cmd.ErrOrStderr(), "Rendered %s", strings.ToUpper(typ))
	printFile(cmd.ErrOrStderr(), flags.out)
	return nil
}

// renderOptions computes the colouring and labels the flags ask for.
func (c *CLI) renderOptions(ctx context.Context, cmd *cobra.Command, inst cio.Instance, flags renderFlags) (render.Options, error) {
	opts := render.Options{Title: flags.title, Layout: flags.layout}
	if flags.colour == colourInitial {
		opts.Partition = inst.Partition
	}
	needsCanon := flags.canonical || flags.colour == colourOrbits
	if flags.colour != colourEquitable && !needsCanon {
		return opts, nil
	}

	runner, err := c.newRunner(ctx, flags.noCache, false)
	if err != nil {
		return opts, err
	}
	defer runner.Close()
	popts := pipeline.Options{Partition: inst.Partition}
	c.setCLIDefaults(cmd, &popts)

	if flags.colour == colourEquitable {
		res, err := runner.Refine(ctx, inst.Graph, popts)
		if err != nil {
			return opts, err
		}
		if opts.Partition, err = partition.FromCells(res.Order, res.Cells); err != nil {
			return opts, err
		}
	}
	if needsCanon {
		res, err := runner.Canonicalize(ctx, inst.Graph, popts)
		if err != nil {
			return opts, err
		}
		if flags.canonical {
			opts.Labels = res.Labeling
		}
		if flags.colour == colourOrbits {
			if opts.Partition, err = partition.FromCells(res.Order, res.Orbits); err != nil {
				return opts, err
			}
		}
	}
	return opts, nil
}

// renderType resolves the output type from the flag or the file extension.
func renderType(typ, out string) (string, error) {
	if typ == "" {
		typ = strings.TrimPrefix(strings.ToLower(filepath.Ext(out)), ".")
		if typ == "" || typ == "gv" {
			typ = renderDOT
		}
	}
	if err := errs.ValidateFormat(typ, renderTypes...); err != nil {
		return "", err
	}
	return typ, nil
}

func convert(ctx context.Context, typ, dot string, scale float64) ([]byte, error) {
	if typ == renderDOT {
		return []byte(dot), nil
	}
	svg, err := render.RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	switch typ {
	case renderPNG:
		return render.ToPNG(ctx, svg, scale)
	case renderPDF:
		return render.ToPDF(ctx, svg)
	}
	return svg, nil
}
