package cmd

import (
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/njchilds90/diffcalc"
	"github.com/njchilds90/diffcalc/internal/tui"
)

func newTUICmd(g *globalFlags) *cobra.Command {
	var in inputFlags
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Start the interactive calculator",
		Long: `Starts the terminal calculator. Every edit recomputes the result.

Navigation:
  Tab/Enter  next field
  Shift+Tab  previous field
  Ctrl+U     toggle radians/degrees
  Esc        quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := g.load(cmd)
			if err != nil {
				return err
			}
			input, err := in.input(cmd, cfg)
			if err != nil {
				return err
			}

			model := tui.NewModel(diffcalc.New(cfg.CalculatorOptions()), tui.Options{
				Function: input.Function,
				Point:    input.Point,
				Step:     strconv.FormatFloat(input.Step, 'g', -1, 64),
				Unit:     input.Unit,
			})
			p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}
	in.register(cmd)
	return cmd
}
