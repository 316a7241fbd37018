package ui

import "github.com/charmbracelet/lipgloss"

// Color palette - using ANSI 256 colors for broad terminal support
var (
	ColorCyan    = lipgloss.Color("6")
	ColorYellow  = lipgloss.Color("3")
	ColorRed     = lipgloss.Color("1")
	ColorGreen   = lipgloss.Color("2")
	ColorBlue    = lipgloss.Color("4")
	ColorMagenta = lipgloss.Color("5")
	ColorGray    = lipgloss.Color("8")
	ColorWhite   = lipgloss.Color("15")
)

// Text styles
var (
	// Headword of a record
	WordStyle = lipgloss.NewStyle().Foreground(ColorCyan).Bold(true)

	// Part of speech
	PartOfSpeechStyle = lipgloss.NewStyle().Foreground(ColorMagenta).Italic(true)

	// Usage examples
	ExampleStyle = lipgloss.NewStyle().Foreground(ColorGray).Italic(true)

	// Status messages ("Loading dataset...", "Reloaded...")
	StatusStyle = lipgloss.NewStyle().Foreground(ColorGray).Italic(true)

	// Error messages
	ErrorStyle = lipgloss.NewStyle().Foreground(ColorRed).Bold(true)

	// Warning messages
	WarningStyle = lipgloss.NewStyle().Foreground(ColorYellow)

	// Success messages
	SuccessStyle = lipgloss.NewStyle().Foreground(ColorGreen)

	// Muted/secondary text
	MutedStyle = lipgloss.NewStyle().Foreground(ColorGray)

	// Labels (field names, headers)
	LabelStyle = lipgloss.NewStyle().Foreground(ColorCyan).Bold(true)

	// Values (field values)
	ValueStyle = lipgloss.NewStyle().Foreground(ColorWhite)

	// Prompt shown by the interactive loop
	PromptStyle = lipgloss.NewStyle().Foreground(ColorBlue).Bold(true)
)

// Tier styles, keyed by where a record was found
var (
	CacheTierStyle  = lipgloss.NewStyle().Foreground(ColorGreen).Bold(true)
	LocalTierStyle  = lipgloss.NewStyle().Foreground(ColorYellow).Bold(true)
	RemoteTierStyle = lipgloss.NewStyle().Foreground(ColorBlue).Bold(true)
)
