package ui

import "github.com/charmbracelet/lipgloss"

// Colors used in the application chrome.
var (
	colorAccent    = lipgloss.Color("212") // Pink
	colorSecondary = lipgloss.Color("241") // Gray
)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// StatusBarKey style for key hints in the status bar.
var StatusBarKey = lipgloss.NewStyle().
	Foreground(colorAccent).
	Bold(true)

// StatusBarText style for descriptive text in the status bar.
var StatusBarText = lipgloss.NewStyle().
	Foreground(colorSecondary)

// ModeBadge style for the current view name.
var ModeBadge = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(colorAccent).
	Bold(true).
	Padding(0, 1)
