// Package adminview renders the ingest form for adding reels.
package adminview

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tahmid-dev/reelview/internal/ingest"
)

// SubmitResult reports the outcome of adding a single reel.
type SubmitResult struct {
	ID  string
	Err error
}

// ImportResult reports the outcome of a channel feed import.
type ImportResult struct {
	Created int
	Err     error
}

type noticeExpiredMsg struct{ id int }

// Config wires the admin view to the ingest service.
type Config struct {
	Submit func(title, url string) tea.Cmd
	Import func(feedURL string) tea.Cmd
}

type formMode int

const (
	modeSingle formMode = iota
	modeImport
)

// Model is the admin panel: a two-field form for adding one reel by
// YouTube URL, plus an import mode that pulls a whole channel feed.
type Model struct {
	cfg Config

	mode       formMode
	title      textinput.Model
	url        textinput.Model
	feedURL    textinput.Model
	focus      int
	submitting bool

	notice    string
	noticeErr bool
	noticeID  int

	width  int
	height int
}

// New creates the admin panel.
func New(cfg Config) Model {
	title := textinput.New()
	title.Prompt = "Title: "
	title.Placeholder = "My favorite clip"
	title.CharLimit = 200
	title.Focus()

	url := textinput.New()
	url.Prompt = "URL:   "
	url.Placeholder = "https://www.youtube.com/watch?v=..."
	url.CharLimit = 500

	feedURL := textinput.New()
	feedURL.Prompt = "Feed:  "
	feedURL.Placeholder = "https://www.youtube.com/feeds/videos.xml?channel_id=..."
	feedURL.CharLimit = 500

	return Model{
		cfg:     cfg,
		title:   title,
		url:     url,
		feedURL: feedURL,
	}
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case SubmitResult:
		m.submitting = false
		if msg.Err != nil {
			return m.notify(submitErrorText(msg.Err), true)
		}
		m.title.SetValue("")
		m.url.SetValue("")
		return m.notify("Reel added", false)

	case ImportResult:
		m.submitting = false
		if msg.Err != nil {
			return m.notify("Import failed: "+msg.Err.Error(), true)
		}
		m.feedURL.SetValue("")
		return m.notify(fmt.Sprintf("Imported %d reels", msg.Created), false)

	case noticeExpiredMsg:
		if msg.id == m.noticeID {
			m.notice = ""
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab", "down", "up":
		if m.mode == modeImport {
			return m, nil
		}
		// Two fields, so forward and backward are the same hop.
		m.focus = (m.focus + 1) % 2
		return m, m.applyFocus()

	case "ctrl+o":
		m.mode = modeImport
		m.title.Blur()
		m.url.Blur()
		return m, m.feedURL.Focus()

	case "ctrl+n":
		m.mode = modeSingle
		m.feedURL.Blur()
		m.focus = 0
		return m, m.applyFocus()

	case "enter":
		return m.submit()
	}

	var cmd tea.Cmd
	switch {
	case m.mode == modeImport:
		m.feedURL, cmd = m.feedURL.Update(msg)
	case m.focus == 0:
		m.title, cmd = m.title.Update(msg)
	default:
		m.url, cmd = m.url.Update(msg)
	}
	return m, cmd
}

func (m *Model) applyFocus() tea.Cmd {
	if m.focus == 0 {
		m.url.Blur()
		return m.title.Focus()
	}
	m.title.Blur()
	return m.url.Focus()
}

func (m Model) submit() (Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}

	if m.mode == modeImport {
		if m.cfg.Import == nil {
			return m, nil
		}
		m.submitting = true
		return m, m.cfg.Import(m.feedURL.Value())
	}

	if m.cfg.Submit == nil {
		return m, nil
	}
	m.submitting = true
	return m, m.cfg.Submit(m.title.Value(), m.url.Value())
}

// submitErrorText maps ingest errors to operator-facing text.
// Validation problems name the field; store problems stay generic.
func submitErrorText(err error) string {
	var verr *ingest.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	return "Failed to add reel. Check the connection and try again."
}

func (m Model) notify(text string, isErr bool) (Model, tea.Cmd) {
	m.notice = text
	m.noticeErr = isErr
	m.noticeID++
	id := m.noticeID
	return m, tea.Tick(2500*time.Millisecond, func(time.Time) tea.Msg {
		return noticeExpiredMsg{id: id}
	})
}

// View renders the form.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var body string
	switch m.mode {
	case modeImport:
		body = lipgloss.JoinVertical(lipgloss.Left,
			headerStyle.Render("Import a channel feed"),
			"",
			m.feedURL.View(),
			"",
			hintStyle.Render("enter import · ctrl+n single reel · esc back"),
		)
	default:
		body = lipgloss.JoinVertical(lipgloss.Left,
			headerStyle.Render("Add a reel"),
			"",
			m.title.View(),
			m.url.View(),
			"",
			hintStyle.Render("tab next field · enter add · ctrl+o import feed · esc back"),
		)
	}

	bottom := ""
	switch {
	case m.submitting:
		bottom = hintStyle.Render("Saving...")
	case m.notice != "" && m.noticeErr:
		bottom = noticeErrStyle.Render(m.notice)
	case m.notice != "":
		bottom = noticeStyle.Render(m.notice)
	}

	panel := boxStyle.Render(body)
	if bottom != "" {
		panel = lipgloss.JoinVertical(lipgloss.Left, panel, bottom)
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, panel)
}

// Notice returns the transient notice text (for testing).
func (m Model) Notice() string { return m.notice }

// TitleValue returns the title field contents (for testing).
func (m Model) TitleValue() string { return m.title.Value() }

// URLValue returns the URL field contents (for testing).
func (m Model) URLValue() string { return m.url.Value() }
