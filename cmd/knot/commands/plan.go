package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/knot/internal/ui/output"
)

func (c *CLI) newPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan [units...]",
		Short: "Print the compilation batches without compiling",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := c.app.Plan(cmd.Context(), args)
			if err != nil {
				return err
			}

			p := output.NewPrinter(cmd.OutOrStdout())
			p.Header("Batches")
			for i, b := range plan.Batches {
				p.Batch(i+1, b.String(), plan.CyclePath(b))
			}
			return nil
		},
	}
}
