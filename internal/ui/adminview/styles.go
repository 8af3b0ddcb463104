package adminview

import "github.com/charmbracelet/lipgloss"

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("212"))

var boxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("241")).
	Padding(1, 2)

var hintStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("241"))

var noticeStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("78")).
	Bold(true)

var noticeErrStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("196")).
	Bold(true)
