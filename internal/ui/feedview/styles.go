package feedview

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent  = lipgloss.Color("212") // Pink
	colorMuted   = lipgloss.Color("241") // Gray
	colorLiked   = lipgloss.Color("203") // Red
	colorSuccess = lipgloss.Color("78")  // Green
)

// TitleStyle for the reel title.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255"))

// PlayerStyle frames the embedded-player placeholder.
var PlayerStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorMuted).
	Padding(0, 1)

// NowPlayingStyle marks the active reel.
var NowPlayingStyle = lipgloss.NewStyle().
	Foreground(colorAccent).
	Bold(true)

// CounterStyle for the like and comment counters.
var CounterStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255"))

// LikedStyle for the heart once this session liked the reel.
var LikedStyle = lipgloss.NewStyle().
	Foreground(colorLiked).
	Bold(true)

// CommentAuthorStyle for comment author names.
var CommentAuthorStyle = lipgloss.NewStyle().
	Foreground(colorAccent)

// CommentTextStyle for comment bodies.
var CommentTextStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("252"))

// HintStyle for key hints.
var HintStyle = lipgloss.NewStyle().
	Foreground(colorMuted)

// NoticeStyle for the transient notice line.
var NoticeStyle = lipgloss.NewStyle().
	Foreground(colorSuccess).
	Bold(true)

// NoticeErrStyle for failure notices.
var NoticeErrStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("196")).
	Bold(true)

// IndicatorStyle for the position dots column.
var IndicatorStyle = lipgloss.NewStyle().
	Foreground(colorMuted)

// IndicatorActiveStyle for the dot of the reel in view.
var IndicatorActiveStyle = lipgloss.NewStyle().
	Foreground(colorAccent).
	Bold(true)

// EmptyStyle for the empty-feed message.
var EmptyStyle = lipgloss.NewStyle().
	Foreground(colorMuted).
	Align(lipgloss.Center)
