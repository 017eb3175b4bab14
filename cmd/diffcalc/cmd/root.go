package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/njchilds90/diffcalc"
	"github.com/njchilds90/diffcalc/internal/config"
	"github.com/njchilds90/diffcalc/internal/logging"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	cfgFile string
	verbose bool
}

// Execute runs the CLI with os.Args.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "diffcalc",
		Short: "Central-difference derivative calculator",
		Long: `diffcalc estimates f'(x) with the central difference
(f(x+h) - f(x-h)) / 2h and compares it with the exact symbolic derivative.

Functions use x as the variable and may call sin, cos, tan, exp, log, sqrt
and friends; np., numpy. and math. prefixes are accepted. The point may use
pi and arithmetic and is read in radians unless --unit degrees is given.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&g.cfgFile, "config", "", "config file (default: ./configs/diffcalc.toml or $"+config.EnvConfigPath+")")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(
		newEvalCmd(g),
		newSweepCmd(g),
		newServeCmd(g),
		newHealthCmd(g),
		newTUICmd(g),
		newVersionCmd(),
	)
	return root
}

// load reads the configuration and builds the logger for a command.
func (g *globalFlags) load(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Discover(g.cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	level := cfg.General.LogLevel
	if g.verbose {
		level = "debug"
	}
	log := logging.New(logging.Config{
		Level:  level,
		Format: cfg.General.LogFormat,
		Output: cmd.ErrOrStderr(),
	})
	log.Debug("config loaded", "path", g.cfgFile, "unit", cfg.Calculator.DefaultUnit)
	return cfg, log, nil
}

// inputFlags are the pipeline inputs shared by eval and sweep.
type inputFlags struct {
	function string
	point    string
	unit     string
	step     float64
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.function, "f", "", "function of x, e.g. \"sin(x)**2\"")
	cmd.Flags().StringVar(&f.point, "at", "", "evaluation point, e.g. \"pi/4\"")
	cmd.Flags().StringVar(&f.unit, "unit", "", "unit of the point: radians or degrees (default from config)")
	cmd.Flags().Float64Var(&f.step, "h", 0, "step size h (default from config)")
}

// input builds a diffcalc.Input, filling unset flags from cfg.
func (f *inputFlags) input(cmd *cobra.Command, cfg *config.Config) (diffcalc.Input, error) {
	in := diffcalc.Input{Function: f.function, Point: f.point, Unit: cfg.DefaultUnit(), Step: f.step}
	if cmd.Flags().Changed("unit") {
		u, err := diffcalc.ParseUnit(f.unit)
		if err != nil {
			return in, err
		}
		in.Unit = u
	}
	if !cmd.Flags().Changed("h") {
		in.Step = cfg.Calculator.DefaultStep
	}
	return in, nil
}
