package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/canonic/pkg/catalog"
	errs "github.com/matzehuels/canonic/pkg/errors"
	"github.com/matzehuels/canonic/pkg/pipeline"
)

// catalogCommand creates the catalog command and its subcommands.
func (c *CLI) catalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Record and browse isomorphism classes",
		Long: `The catalog stores one entry per isomorphism class, keyed by certificate
hash, with a count of how often the class was seen. The backend is chosen
in the [catalog] section of the config file; "badger" keeps it under
$XDG_DATA_HOME/canonic/catalog.`,
	}

	cmd.AddCommand(c.catalogAddCommand())
	cmd.AddCommand(c.catalogGetCommand())
	cmd.AddCommand(c.catalogListCommand())

	return cmd
}

// catalogAddCommand creates the "catalog add" subcommand.
func (c *CLI) catalogAddCommand() *cobra.Command {
	var (
		input  inputFlags
		search searchFlags
	)
	cmd := &cobra.Command{
		Use:   "add [file]",
		Short: "Canonicalize graphs and record their classes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			insts, err := input.read(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			runner, err := c.catalogRunner(cmd, search.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			entries := make([]catalog.Entry, 0, len(insts))
			for i, inst := range insts {
				opts, err := c.options(cmd, &search, inst)
				if err != nil {
					return err
				}
				opts.Record = true
				res, err := runner.Canonicalize(ctx, inst.Graph, opts)
				if err != nil {
					return fmt.Errorf("graph %d: %w", i+1, err)
				}
				entries = append(entries, *res.Class)
			}

			out := cmd.OutOrStdout()
			if search.output != pipeline.FormatText {
				return encodeResults(out, search.output, entries)
			}
			for _, e := range entries {
				status := "known class"
				if e.Count == 1 {
					status = "new class"
				}
				printSuccess(out, "%s %s", status, StyleHighlight.Render(e.Hash[:12]))
				printDetail(out, "seen %d times, group size %d", e.Count, e.GroupSize)
			}
			return nil
		},
	}
	input.register(cmd, true)
	search.register(cmd, true)
	return cmd
}

// catalogGetCommand creates the "catalog get" subcommand.
func (c *CLI) catalogGetCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "get [hash]",
		Short: "Show one class by certificate hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateFormat(output); err != nil {
				return err
			}
			runner, err := c.catalogRunner(cmd, true)
			if err != nil {
				return err
			}
			defer runner.Close()

			e, err := runner.Lookup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if output != pipeline.FormatText {
				return pipeline.Encode(out, output, e)
			}
			printEntry(out, e)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", pipeline.DefaultFormat, "output format: text, json, yaml")
	return cmd
}

// catalogListCommand creates the "catalog list" subcommand.
func (c *CLI) catalogListCommand() *cobra.Command {
	var (
		output string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List classes, most frequently seen first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateFormat(output); err != nil {
				return err
			}
			runner, err := c.catalogRunner(cmd, true)
			if err != nil {
				return err
			}
			defer runner.Close()

			entries, err := runner.Classes(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if output != pipeline.FormatText {
				return pipeline.Encode(out, output, entries)
			}
			if len(entries) == 0 {
				printInfo(out, "Catalog is empty")
				printNextStep(out, "Record a class", "canonic catalog add graph.edges")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(out, "%s  %s  %s\n",
					StyleHighlight.Render(e.Hash[:12]),
					StyleNumber.Render(fmt.Sprintf("%6d×", e.Count)),
					StyleDim.Render(fmt.Sprintf("n=%d m=%d |Aut|=%d", e.Order, e.Edges, e.GroupSize)))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", pipeline.DefaultFormat, "output format: text, json, yaml")
	cmd.Flags().IntVar(&limit, "limit", catalog.DefaultListLimit, "maximum number of classes")
	return cmd
}

// catalogRunner opens a runner that must have a catalog.
func (c *CLI) catalogRunner(cmd *cobra.Command, noCache bool) (*pipeline.Runner, error) {
	runner, err := c.newRunner(cmd.Context(), noCache, true)
	if err != nil {
		return nil, err
	}
	if runner.Catalog == nil {
		runner.Close()
		return nil, errs.New(errs.ErrCodeUnsupported, "no catalog configured; set [catalog] backend in %s", c.configDisplayPath())
	}
	return runner, nil
}

// configDisplayPath names the config file for messages.
func (c *CLI) configDisplayPath() string {
	if c.configPath != "" {
		return c.configPath
	}
	return "the config file"
}

func printEntry(w io.Writer, e catalog.Entry) {
	printSuccess(w, "Class %s", StyleHighlight.Render(e.ID))
	printKeyValue(w, "hash", e.Hash)
	printKeyValue(w, "order", fmt.Sprint(e.Order))
	printKeyValue(w, "edges", fmt.Sprint(e.Edges))
	printKeyValue(w, "directed", fmt.Sprint(e.Directed))
	printKeyValue(w, "group size", StyleNumber.Render(fmt.Sprint(e.GroupSize)))
	printKeyValue(w, "orbits", formatCells(e.Orbits))
	printKeyValue(w, "seen", fmt.Sprintf("%d times", e.Count))
	printKeyValue(w, "first seen", e.FirstSeen.Format(time.RFC3339))
	printKeyValue(w, "last seen", e.LastSeen.Format(time.RFC3339))
}
