// Package tui is the interactive terminal calculator: three inputs, a unit
// toggle and a result panel that is recomputed on every edit.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/njchilds90/diffcalc"
)

const (
	fieldFunction = iota
	fieldPoint
	fieldStep
	fieldCount
)

var fieldLabels = [fieldCount]string{"f(x)", "x", "h"}

// Options pre-fills the inputs.
type Options struct {
	Function string
	Point    string
	Step     string
	Unit     diffcalc.Unit
}

// Model is the bubbletea model of the calculator.
type Model struct {
	calc   *diffcalc.Calculator
	inputs []textinput.Model
	focus  int
	unit   diffcalc.Unit
	result diffcalc.Result
	width  int
}

// NewModel builds a Model and computes the initial result.
func NewModel(calc *diffcalc.Calculator, opts Options) Model {
	m := Model{calc: calc, unit: opts.Unit, width: 80}

	values := [fieldCount]string{opts.Function, opts.Point, opts.Step}
	placeholders := [fieldCount]string{"sin(x)**2 + exp(-x)", "pi/4", "0.01"}
	m.inputs = make([]textinput.Model, fieldCount)
	for i := range m.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 512
		ti.Width = 48
		ti.SetValue(values[i])
		m.inputs[i] = ti
	}
	m.inputs[fieldFunction].Focus()
	m.recompute()
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "down", "enter":
			return m, m.setFocus((m.focus + 1) % fieldCount)
		case "shift+tab", "up":
			return m, m.setFocus((m.focus + fieldCount - 1) % fieldCount)
		case "ctrl+u":
			m.toggleUnit()
			m.recompute()
			return m, nil
		}
	}

	var cmd tea.Cmd
	before := m.inputs[m.focus].Value()
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	if m.inputs[m.focus].Value() != before {
		m.recompute()
	}
	return m, cmd
}

func (m *Model) setFocus(i int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = i
	return m.inputs[m.focus].Focus()
}

func (m *Model) toggleUnit() {
	if m.unit == diffcalc.Degrees {
		m.unit = diffcalc.Radians
	} else {
		m.unit = diffcalc.Degrees
	}
}

// Input returns the current form contents. A step that is not a number is
// reported by Result as an error.
func (m Model) Input() (diffcalc.Input, error) {
	in := diffcalc.Input{
		Function: m.inputs[fieldFunction].Value(),
		Point:    m.inputs[fieldPoint].Value(),
		Unit:     m.unit,
	}
	step := strings.TrimSpace(m.inputs[fieldStep].Value())
	if step == "" {
		return in, nil
	}
	h, err := strconv.ParseFloat(step, 64)
	if err != nil {
		return in, fmt.Errorf("invalid step size %q: not a number", step)
	}
	in.Step = h
	return in, nil
}

// Result is the outcome of the last recomputation.
func (m Model) Result() diffcalc.Result { return m.result }

// Unit is the unit the point is currently read in.
func (m Model) Unit() diffcalc.Unit { return m.unit }

func (m *Model) recompute() {
	in, err := m.Input()
	if err != nil {
		m.result = diffcalc.Result{Status: diffcalc.StatusError, Message: err.Error()}
		return
	}
	m.result = m.calc.Evaluate(context.Background(), in)
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("diffcalc · central difference vs exact derivative"))
	b.WriteString("\n")

	for i, in := range m.inputs {
		label := LabelStyle.Render(fieldLabels[i])
		if i == m.focus {
			label = FocusedLabelStyle.Render(fieldLabels[i])
		}
		line := label + in.View()
		if i == fieldPoint {
			line += "  " + UnitStyle.Render("["+m.unit.String()+"]")
		}
		b.WriteString(line + "\n")
	}

	b.WriteString(m.renderResult())
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("tab/↑↓ move · ctrl+u toggle unit · esc quit"))
	return b.String()
}

func (m Model) renderResult() string {
	r := m.result
	switch r.Status {
	case diffcalc.StatusNeedsInput:
		return PanelStyle.Render(PromptStyle.Render(r.Message))
	case diffcalc.StatusError:
		return PanelStyle.Render(ErrorStyle.Render("Error: " + r.Message))
	}

	rows := []string{
		ValueStyle.Render("f'(x) = " + r.Derivative),
		fmt.Sprintf("Estimate: %s", OKStyle.Render(fmt.Sprintf("%.6f", r.Estimate))),
		fmt.Sprintf("Exact:    %s", OKStyle.Render(fmt.Sprintf("%.6f", r.Exact))),
		fmt.Sprintf("Error:    %s", ValueStyle.Render(fmt.Sprintf("%.6e", r.AbsoluteError))),
	}
	if r.Plot != nil && len(r.Plot.Curve) > 0 {
		width := m.width - 6
		if width > 72 {
			width = 72
		}
		rows = append(rows, SparkStyle.Render(Sparkline(r.Plot.Curve, width)))
	}
	return PanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
