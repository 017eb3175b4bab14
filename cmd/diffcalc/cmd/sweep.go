package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/njchilds90/diffcalc"
)

func newSweepCmd(g *globalFlags) *cobra.Command {
	var (
		in     inputFlags
		steps  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:     "sweep",
		Short:   "Show how the estimate converges for h, h/10, h/100, ...",
		Example: `  diffcalc sweep --f "exp(x)" --at 0 --h 0.1 --steps 5`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := g.load(cmd)
			if err != nil {
				return err
			}
			input, err := in.input(cmd, cfg)
			if err != nil {
				return err
			}

			rows, err := diffcalc.New(cfg.CalculatorOptions()).Sweep(cmd.Context(), input, steps)
			if err != nil {
				return err
			}
			log.Debug("swept", "function", input.Function, "rows", len(rows))

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}
			fmt.Fprint(out, diffcalc.FormatSweep(rows))
			return nil
		},
	}
	in.register(cmd)
	cmd.Flags().IntVar(&steps, "steps", 0, "number of step sizes (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print rows as JSON")
	return cmd
}
