package tui

import (
	"testing"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/diffcalc"
)

func typeText(m Model, s string) Model {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return next.(Model)
}

func press(m Model, k tea.KeyType) Model {
	next, _ := m.Update(tea.KeyMsg{Type: k})
	return next.(Model)
}

func TestModelStartsWithPrompt(t *testing.T) {
	m := NewModel(diffcalc.New(diffcalc.Options{}), Options{})
	assert.Equal(t, diffcalc.StatusNeedsInput, m.Result().Status)
	assert.Contains(t, m.View(), "Enter a function f(x) and a point to start.")
}

func TestModelRecomputesOnEdit(t *testing.T) {
	m := NewModel(diffcalc.New(diffcalc.Options{}), Options{Step: "0.001"})

	m = typeText(m, "x**2")
	assert.Equal(t, diffcalc.StatusNeedsInput, m.Result().Status)

	m = press(m, tea.KeyTab)
	m = typeText(m, "2")

	res := m.Result()
	require.Equal(t, diffcalc.StatusOK, res.Status)
	assert.InDelta(t, 4.0, res.Estimate, 1e-9)
	assert.InDelta(t, 4.0, res.Exact, 1e-12)
	assert.Contains(t, m.View(), "2*x")
}

func TestModelUnitToggle(t *testing.T) {
	m := NewModel(diffcalc.New(diffcalc.Options{}), Options{Function: "sin(x)", Point: "90", Step: "0.01"})
	require.Equal(t, diffcalc.StatusOK, m.Result().Status)
	radians := m.Result().Exact

	m = press(m, tea.KeyCtrlU)
	assert.Equal(t, diffcalc.Degrees, m.Unit())
	assert.InDelta(t, 0.0, m.Result().Exact, 1e-12)
	assert.NotEqual(t, radians, m.Result().Exact)
	assert.Contains(t, m.View(), "[degrees]")
}

func TestModelInvalidStep(t *testing.T) {
	m := NewModel(diffcalc.New(diffcalc.Options{}), Options{Function: "x", Point: "1", Step: "abc"})
	assert.Equal(t, diffcalc.StatusError, m.Result().Status)
	assert.Contains(t, m.Result().Message, "step")
}

func TestModelZeroStepNeedsInput(t *testing.T) {
	m := NewModel(diffcalc.New(diffcalc.Options{}), Options{Function: "x", Point: "1", Step: "0"})
	assert.Equal(t, diffcalc.StatusNeedsInput, m.Result().Status)
	assert.Contains(t, m.View(), "non-zero step size")
}

func TestModelQuit(t *testing.T) {
	m := NewModel(diffcalc.New(diffcalc.Options{}), Options{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestSparkline(t *testing.T) {
	pts := []diffcalc.XY{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3}}
	assert.Equal(t, "▁▃▆█", Sparkline(pts, 4))
	assert.Equal(t, 2, utf8.RuneCountInString(Sparkline(pts, 2)))
	assert.Equal(t, 4, utf8.RuneCountInString(Sparkline(pts, 40)))
	assert.Empty(t, Sparkline(nil, 10))

	flat := []diffcalc.XY{{Y: 5}, {Y: 5}}
	assert.Equal(t, "▄▄", Sparkline(flat, 2))
}
