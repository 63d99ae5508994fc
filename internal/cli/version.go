package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/canonic/pkg/buildinfo"
	"github.com/matzehuels/canonic/pkg/pipeline"
)

// versionCommand prints build information.
func (c *CLI) versionCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateFormat(output); err != nil {
				return err
			}
			if output != pipeline.FormatText {
				return pipeline.Encode(cmd.OutOrStdout(), output, buildinfo.Get())
			}
			fmt.Fprintln(cmd.OutOrStdout(), buildinfo.String())
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", pipeline.DefaultFormat, "output format: text, json, yaml")
	return cmd
}
