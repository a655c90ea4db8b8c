package commands

import (
	"maps"
	"slices"

	"github.com/spf13/cobra"
	"go.trai.ch/knot/internal/app"
	"go.trai.ch/knot/internal/ui/output"
)

func (c *CLI) newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve [units...]",
		Short: "Compile and load units, all of them when none are given",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lazy, _ := cmd.Flags().GetBool("lazy")
			noCache, _ := cmd.Flags().GetBool("no-cache")

			artifacts, err := c.app.Resolve(cmd.Context(), args, app.ResolveOptions{
				Lazy:    lazy,
				NoCache: noCache,
			})
			if err != nil {
				return err
			}

			p := output.NewPrinter(cmd.OutOrStdout())
			for _, art := range artifacts {
				p.Resolved(art.UnitName.String(), art.Fingerprint)
				for _, k := range slices.Sorted(maps.Keys(art.Handle.Constants)) {
					p.Constant(k, art.Handle.Constants[k])
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolP("lazy", "l", false, "Resolve units one at a time instead of batch by batch")
	cmd.Flags().BoolP("no-cache", "n", false, "Ignore the artifact directory and do not write to it")
	return cmd
}
