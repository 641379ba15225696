package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	Accent    = lipgloss.Color("#6C5CE7")
	DimGray   = lipgloss.Color("#6B7280")
	LightGray = lipgloss.Color("#9CA3AF")
	White     = lipgloss.Color("#F9FAFB")
	Gold      = lipgloss.Color("#F5C518")
	Red       = lipgloss.Color("#EF4444")
	Green     = lipgloss.Color("#10B981")
)

var (
	logoStyle = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(White).
			Background(Accent).
			Padding(0, 1)

	tabStyle = lipgloss.NewStyle().
			Foreground(LightGray).
			Padding(0, 1)

	heroStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Accent).
			Padding(0, 1)

	heroTitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	ratingStyle = lipgloss.NewStyle().
			Foreground(Gold)

	selectedStyle = lipgloss.NewStyle().
			Foreground(White).
			Background(Accent)

	errorStyle = lipgloss.NewStyle().
			Foreground(Red)

	statusStyle = lipgloss.NewStyle().
			Foreground(Green)
)
