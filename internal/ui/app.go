// Package ui provides the Bubble Tea TUI for reelview.
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tahmid-dev/reelview/internal/ui/adminview"
	"github.com/tahmid-dev/reelview/internal/ui/feedview"
)

type viewMode int

const (
	modeFeed viewMode = iota
	modeAdmin
)

// App is the root Bubble Tea model. It owns nothing but the two views
// and the chrome around them; all store traffic flows through the
// command factories wired into the views.
type App struct {
	mode  viewMode
	feed  feedview.Model
	admin adminview.Model

	width  int
	height int
	ready  bool
}

// NewApp assembles the root model from its two views.
func NewApp(feed feedview.Model, admin adminview.Model) App {
	return App{
		mode:  modeFeed,
		feed:  feed,
		admin: admin,
	}
}

// Init starts both views.
func (a App) Init() tea.Cmd {
	return tea.Batch(a.feed.Init(), a.admin.Init())
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		// Each view gets the full area minus the status bar.
		inner := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 1}
		var feedCmd, adminCmd tea.Cmd
		a.feed, feedCmd = a.feed.Update(inner)
		a.admin, adminCmd = a.admin.Update(inner)
		return a, tea.Batch(feedCmd, adminCmd)

	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.MouseMsg:
		if a.mode == modeFeed {
			var cmd tea.Cmd
			a.feed, cmd = a.feed.Update(msg)
			return a, cmd
		}
		return a, nil

	// Feed traffic reaches the feed view regardless of which view is
	// showing, so the feed is current the moment the viewer returns.
	case feedview.FeedUpdated, feedview.LikeResult, feedview.CommentResult,
		feedview.ShareResult, feedview.FrameMsg:
		var cmd tea.Cmd
		a.feed, cmd = a.feed.Update(msg)
		return a, cmd

	case adminview.SubmitResult, adminview.ImportResult:
		var cmd tea.Cmd
		a.admin, cmd = a.admin.Update(msg)
		return a, cmd
	}

	// Everything else (spinner ticks, cursor blinks, notice expiries)
	// fans out to both views; each ignores what it doesn't know.
	var feedCmd, adminCmd tea.Cmd
	a.feed, feedCmd = a.feed.Update(msg)
	a.admin, adminCmd = a.admin.Update(msg)
	return a, tea.Batch(feedCmd, adminCmd)
}

// handleKey processes global shortcuts, then delegates to the active
// view. Global keys stay out of the way while a text field is focused.
func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	switch a.mode {
	case modeFeed:
		if !a.feed.Composing() {
			switch msg.String() {
			case "q":
				return a, tea.Quit
			case "a", "tab":
				a.mode = modeAdmin
				return a, nil
			}
		}
		var cmd tea.Cmd
		a.feed, cmd = a.feed.Update(msg)
		return a, cmd

	default:
		if msg.String() == "esc" {
			a.mode = modeFeed
			return a, nil
		}
		var cmd tea.Cmd
		a.admin, cmd = a.admin.Update(msg)
		return a, cmd
	}
}

// View renders the active view above the status bar.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	var content string
	if a.mode == modeFeed {
		content = a.feed.View()
	} else {
		content = a.admin.View()
	}

	body := lipgloss.NewStyle().Height(a.height - 1).MaxHeight(a.height - 1).Render(content)
	return body + "\n" + a.statusBar()
}

func (a App) statusBar() string {
	badge := ModeBadge.Render("FEED")
	hint := StatusBarText.Render("watch · like · comment")
	toggle := StatusBarKey.Render("a") + StatusBarText.Render(" admin  ") +
		StatusBarKey.Render("q") + StatusBarText.Render(" quit")
	if a.mode == modeAdmin {
		badge = ModeBadge.Render("ADMIN")
		hint = StatusBarText.Render("add reels")
		toggle = StatusBarKey.Render("esc") + StatusBarText.Render(" back  ") +
			StatusBarKey.Render("ctrl+c") + StatusBarText.Render(" quit")
	}

	bar := badge + " " + hint + "  " + toggle
	return StatusBar.Width(a.width).MaxWidth(a.width).Render(bar)
}

// Mode returns the active view name (for testing).
func (a App) Mode() string {
	if a.mode == modeAdmin {
		return "admin"
	}
	return "feed"
}

// Feed returns the feed view (for testing).
func (a App) Feed() feedview.Model { return a.feed }

// Admin returns the admin view (for testing).
func (a App) Admin() adminview.Model { return a.admin }
