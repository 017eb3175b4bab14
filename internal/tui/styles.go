package tui

import "github.com/charmbracelet/lipgloss"

// Color Palette
var (
	ColorPrimary   = lipgloss.Color("#8B5CF6") // Violet
	ColorSecondary = lipgloss.Color("#06B6D4") // Cyan
	ColorSuccess   = lipgloss.Color("#10B981") // Emerald
	ColorWarning   = lipgloss.Color("#F59E0B") // Amber
	ColorError     = lipgloss.Color("#EF4444") // Red
	ColorText      = lipgloss.Color("#F8FAFC") // Slate 50
	ColorTextMuted = lipgloss.Color("#94A3B8") // Slate 400
	ColorDimmed    = lipgloss.Color("#374151") // Dark Gray
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true).
			MarginBottom(1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Width(10)

	FocusedLabelStyle = LabelStyle.
				Foreground(ColorSecondary).
				Bold(true)

	UnitStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	PanelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorDimmed).
			Padding(0, 1).
			MarginTop(1)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	OKStyle = lipgloss.NewStyle().
		Foreground(ColorSuccess)

	PromptStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Italic(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	SparkStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary)

	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			MarginTop(1)
)
