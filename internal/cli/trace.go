package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	cio "github.com/matzehuels/canonic/pkg/io"
	"github.com/matzehuels/canonic/pkg/partition"
	"github.com/matzehuels/canonic/pkg/pipeline"
	"github.com/matzehuels/canonic/pkg/refine"
)

// traceStep is the partition after one refinement generation. Step 0 is the
// initial partition.
type traceStep struct {
	Generation int            `json:"generation" yaml:"generation"`
	Partition  string         `json:"partition" yaml:"partition"`
	Cells      int            `json:"cells" yaml:"cells"`
	Splits     []refine.Split `json:"splits,omitempty" yaml:"splits,omitempty"`
}

// traceFlags holds flags for the trace command.
type traceFlags struct {
	input       inputFlags
	descending  bool
	output      string
	interactive bool
}

// traceCommand creates the trace command.
func (c *CLI) traceCommand() *cobra.Command {
	flags := traceFlags{}

	cmd := &cobra.Command{
		Use:   "trace [file]",
		Short: "Show the refinement generation by generation",
		Long: `Refine the initial partition of a graph and print the partition after
every generation together with the cells that split.

With --interactive the generations open in a terminal viewer.`,
		Example: `  canonic trace petersen.edges -p "[ 0 | 1:9 ]"
  canonic trace graph.list --interactive`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTrace(cmd, args[0], flags)
		},
	}

	flags.input.register(cmd, true)
	cmd.Flags().BoolVar(&flags.descending, "descending", false, "order split fragments by descending count")
	cmd.Flags().StringVarP(&flags.output, "output", "o", pipeline.DefaultFormat, "output format: text, json, yaml")
	cmd.Flags().BoolVarP(&flags.interactive, "interactive", "i", false, "step through generations in a terminal viewer")

	return cmd
}

// runTrace executes the trace command.
func (c *CLI) runTrace(cmd *cobra.Command, path string, flags traceFlags) error {
	if err := pipeline.ValidateFormat(flags.output); err != nil {
		return err
	}
	inst, err := flags.input.readOne(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}
	steps, err := collectTrace(inst, flags.descending)
	if err != nil {
		return err
	}
	c.Logger.Debug("refinement traced", "generations", len(steps)-1, "cells", steps[len(steps)-1].Cells)

	out := cmd.OutOrStdout()
	if flags.interactive {
		p := tea.NewProgram(NewTraceModel(steps), tea.WithContext(cmd.Context()), tea.WithInput(cmd.InOrStdin()), tea.WithOutput(out))
		_, err := p.Run()
		return err
	}
	if flags.output != pipeline.FormatText {
		return pipeline.Encode(out, flags.output, steps)
	}
	fmt.Fprintln(out, traceTable(steps, -1).Render())
	return nil
}

// collectTrace refines inst's partition and snapshots it after every
// generation.
func collectTrace(inst cio.Instance, descending bool) ([]traceStep, error) {
	p := partition.Initial(inst.Graph.Order())
	if inst.Partition != nil {
		p = inst.Partition.Clone()
	}
	steps := []traceStep{{Partition: p.String(), Cells: p.NumCells()}}

	r := refine.Equitable{
		Descending: descending,
		Observe: func(gen int, p *partition.Partition) {
			steps = append(steps, traceStep{Generation: gen, Partition: p.String(), Cells: p.NumCells()})
		},
	}
	trace, err := r.Refine(inst.Graph, p, nil)
	if err != nil {
		return nil, err
	}
	for i, gen := range trace.Generations {
		steps[i+1].Splits = gen.Splits
	}
	return steps, nil
}
