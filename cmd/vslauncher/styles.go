package main

import "github.com/charmbracelet/lipgloss"

// Color palette for terminal output on dark backgrounds
const (
	colorPrimary   = lipgloss.Color("#7C3AED")
	colorMuted     = lipgloss.Color("#6B7280")
	colorSuccess   = lipgloss.Color("#10B981")
	colorError     = lipgloss.Color("#EF4444")
	colorWarning   = lipgloss.Color("#F59E0B")
	colorHighlight = lipgloss.Color("#3B82F6")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorError)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	highlightStyle = lipgloss.NewStyle().
			Foreground(colorHighlight)
)

// channelStyle colours a release channel: stable green, rc blue, the rest amber
func channelStyle(channel string) lipgloss.Style {
	switch channel {
	case "stable":
		return successStyle
	case "rc":
		return highlightStyle
	default:
		return warningStyle
	}
}
