package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/njchilds90/diffcalc"
	"github.com/njchilds90/diffcalc/internal/rpc"
)

func newEvalCmd(g *globalFlags) *cobra.Command {
	var (
		in       inputFlags
		asJSON   bool
		withPlot bool
		remote   string
		timeout  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Estimate the derivative at a point and compare with the exact value",
		Example: `  diffcalc eval --f "x**2" --at 2 --h 0.001
  diffcalc eval --f "sin(x)" --at 90 --unit degrees --h 0.01 --json
  diffcalc eval --f "exp(x)" --at 0 --remote localhost:9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := g.load(cmd)
			if err != nil {
				return err
			}
			input, err := in.input(cmd, cfg)
			if err != nil {
				return err
			}

			var res diffcalc.Result
			if remote != "" {
				res, err = evaluateRemote(cmd.Context(), remote, timeout, input)
				if err != nil {
					return err
				}
			} else {
				opts := cfg.CalculatorOptions()
				opts.DisablePlot = !withPlot
				res = diffcalc.New(opts).Evaluate(cmd.Context(), input)
			}
			log.Debug("evaluated", "function", input.Function, "point", input.Point, "step", input.Step, "status", res.Status)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(res); err != nil {
					return err
				}
			} else {
				fmt.Fprint(out, diffcalc.FormatReport(res))
			}
			return statusError(res)
		},
	}
	in.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	cmd.Flags().BoolVar(&withPlot, "plot", false, "include plot samples (JSON output)")
	cmd.Flags().StringVar(&remote, "remote", "", "evaluate on a diffcalc gRPC server at host:port")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "remote call timeout")
	return cmd
}

// evaluateRemote runs one evaluation on a gRPC server. The server's plot
// setting applies.
func evaluateRemote(ctx context.Context, target string, timeout time.Duration, in diffcalc.Input) (diffcalc.Result, error) {
	client, err := rpc.Dial(target)
	if err != nil {
		return diffcalc.Result{}, err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	res, err := client.Evaluate(ctx, in)
	if err != nil {
		return diffcalc.Result{}, fmt.Errorf("remote evaluate: %w", err)
	}
	return res, nil
}

// statusError turns a non-ok Result into a non-zero exit.
func statusError(res diffcalc.Result) error {
	switch res.Status {
	case diffcalc.StatusNeedsInput:
		return fmt.Errorf("needs input")
	case diffcalc.StatusError:
		return fmt.Errorf("evaluation failed")
	}
	return nil
}
