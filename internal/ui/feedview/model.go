package feedview

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/tahmid-dev/reelview/internal/model"
	"github.com/tahmid-dev/reelview/internal/youtube"
)

const (
	indicatorWidth        = 3
	defaultSwipeThreshold = 3
	maxVisibleComments    = 6
)

// Config wires the feed view to the outside world.
// The view does NOT hold a store client. It receives feed snapshots
// via messages and issues writes through these command factories.
type Config struct {
	Like    func(reelID string) tea.Cmd
	Comment func(reelID, text string) tea.Cmd
	Share   func(title, url string) tea.Cmd

	// SwipeThreshold is the number of rows a press-drag-release must
	// travel vertically to count as a swipe instead of a tap.
	SwipeThreshold int
}

// Model is the reel feed: one full-screen card per reel, animated
// vertical scrolling between them, and per-card interaction state.
type Model struct {
	cfg Config

	reels  []model.Reel
	cursor Cursor
	cards  map[string]*Card

	width   int
	height  int
	loading bool
	spinner spinner.Model

	// Smooth scrolling with harmonica spring physics. The position is
	// measured in card units, so a resize never invalidates it.
	spring       harmonica.Spring
	scrollPos    float64
	scrollVel    float64
	scrollTarget float64
	animating    bool

	notice    string
	noticeErr bool
	noticeID  int

	dragging   bool
	dragStartY int
}

// New creates a feed view with the given wiring.
func New(cfg Config) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorAccent)

	spring := harmonica.NewSpring(harmonica.FPS(60), 6.0, 0.8)

	return Model{
		cfg:     cfg,
		cards:   make(map[string]*Card),
		loading: true,
		spinner: s,
		spring:  spring,
	}
}

// Init starts the loading spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
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

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case FeedUpdated:
		return m.applyFeed(msg.Reels)

	case LikeResult:
		return m.applyLikeResult(msg)

	case CommentResult:
		return m.applyCommentResult(msg)

	case ShareResult:
		if msg.Err != nil {
			// The command side already logged the failure. Sharing is
			// best effort and never blocks the feed.
			return m, nil
		}
		return m.notify("Link copied to clipboard", false)

	case FrameMsg:
		return m.stepScroll()

	case noticeExpiredMsg:
		if msg.id == m.noticeID {
			m.notice = ""
		}
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input. While the comment composer is
// open it owns every key except enter and esc.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if c := m.activeCard(); c != nil && c.CommentsOpen() {
		switch msg.String() {
		case "enter":
			return m.submitComment(c)
		case "esc":
			c.CloseComments()
			return m, nil
		default:
			return m, c.UpdateDraft(msg)
		}
	}

	switch msg.String() {
	case "j", "down":
		return m.settleIf(m.cursor.Advance())

	case "k", "up":
		return m.settleIf(m.cursor.Retreat())

	case "g", "home":
		return m.settleIf(m.cursor.JumpTo(0))

	case "G", "end":
		return m.settleIf(m.cursor.JumpTo(m.cursor.Length() - 1))

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		n := int(msg.String()[0] - '1')
		return m.settleIf(m.cursor.JumpTo(n))

	case "l", " ":
		return m.likeActive()

	case "c":
		if c := m.activeCard(); c != nil {
			return m, c.ToggleComments()
		}
		return m, nil

	case "s":
		return m.shareActive()
	}

	return m, nil
}

// handleMouse maps wheel ticks and press-release drags to cursor
// intents. Intents read the cursor at dispatch time, never positions
// captured earlier, so a burst of wheel events over a feed that grew
// mid-burst still lands on a valid index.
func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelDown:
		return m.settleIf(m.cursor.Advance())

	case tea.MouseButtonWheelUp:
		return m.settleIf(m.cursor.Retreat())

	case tea.MouseButtonLeft:
		switch msg.Action {
		case tea.MouseActionPress:
			if m.onIndicator(msg.X) {
				return m.settleIf(m.cursor.JumpTo(m.indicatorIndex(msg.Y)))
			}
			m.dragging = true
			m.dragStartY = msg.Y
			return m, nil

		case tea.MouseActionRelease:
			if !m.dragging {
				return m, nil
			}
			m.dragging = false
			threshold := m.cfg.SwipeThreshold
			if threshold <= 0 {
				threshold = defaultSwipeThreshold
			}
			delta := m.dragStartY - msg.Y
			if delta >= threshold {
				return m.settleIf(m.cursor.Advance())
			}
			if delta <= -threshold {
				return m.settleIf(m.cursor.Retreat())
			}
			return m, nil
		}
	}
	return m, nil
}

// applyFeed replaces the reel slice with a fresh snapshot, keeping
// card state for reels that survived and dropping state for reels
// that vanished.
func (m Model) applyFeed(reels []model.Reel) (Model, tea.Cmd) {
	m.loading = false
	m.reels = reels
	m.cursor.SetLength(len(reels))

	seen := make(map[string]bool, len(reels))
	for _, r := range reels {
		seen[r.ID] = true
		if c, ok := m.cards[r.ID]; ok {
			c.Sync(r)
		} else {
			m.cards[r.ID] = NewCard(r)
		}
	}
	for id := range m.cards {
		if !seen[id] {
			delete(m.cards, id)
		}
	}

	return m.settle()
}

func (m Model) applyLikeResult(msg LikeResult) (Model, tea.Cmd) {
	c, ok := m.cards[msg.ReelID]
	if !ok {
		return m, nil
	}
	if msg.Err != nil {
		c.RollbackLike()
		return m.notify("Couldn't like that reel. Try again.", true)
	}
	c.ConfirmLike(msg.NewValue)
	return m.notify("Liked", false)
}

func (m Model) applyCommentResult(msg CommentResult) (Model, tea.Cmd) {
	c, ok := m.cards[msg.ReelID]
	if !ok {
		return m, nil
	}
	if msg.Err != nil {
		// Keep the draft so the author can retry.
		return m.notify("Couldn't post your comment. Try again.", true)
	}
	c.ClearDraft()
	return m.notify("Comment added", false)
}

func (m Model) likeActive() (Model, tea.Cmd) {
	c := m.activeCard()
	if c == nil || m.cfg.Like == nil {
		// No write path wired, so no optimistic bump either. A bump
		// with no store call behind it would never confirm.
		return m, nil
	}
	if !c.ToggleLike() {
		return m, nil
	}
	return m, m.cfg.Like(c.Reel().ID)
}

func (m Model) submitComment(c *Card) (Model, tea.Cmd) {
	text := c.TakeComment()
	if text == "" || m.cfg.Comment == nil {
		return m, nil
	}
	return m, m.cfg.Comment(c.Reel().ID, text)
}

func (m Model) shareActive() (Model, tea.Cmd) {
	c := m.activeCard()
	if c == nil || m.cfg.Share == nil {
		return m, nil
	}
	// Share the URL the reel was created from, so the original form
	// (short links, timestamps) survives. Older entries without one
	// get the canonical watch link.
	url := c.Reel().SourceURL
	if url == "" {
		url = youtube.WatchURL(c.Reel().VideoID)
	}
	return m, m.cfg.Share(c.Reel().Title, url)
}

// settleIf retargets the scroll animation when a cursor intent moved.
func (m Model) settleIf(moved bool) (Model, tea.Cmd) {
	if !moved {
		return m, nil
	}
	return m.settle()
}

// settle points the spring at the current cursor position and closes
// comment panels on cards that are no longer in view.
func (m Model) settle() (Model, tea.Cmd) {
	m.scrollTarget = float64(m.cursor.Index())

	activeID := ""
	if len(m.reels) > 0 {
		activeID = m.reels[m.cursor.Index()].ID
	}
	for id, c := range m.cards {
		if id != activeID {
			c.CloseComments()
		}
	}

	if m.animating {
		return m, nil
	}
	if m.scrollPos == m.scrollTarget {
		return m, nil
	}
	m.animating = true
	return m, frameTick()
}

func (m Model) stepScroll() (Model, tea.Cmd) {
	if !m.animating {
		return m, nil
	}
	m.scrollPos, m.scrollVel = m.spring.Update(m.scrollPos, m.scrollVel, m.scrollTarget)
	if math.Abs(m.scrollPos-m.scrollTarget) < 0.002 && math.Abs(m.scrollVel) < 0.002 {
		m.scrollPos = m.scrollTarget
		m.scrollVel = 0
		m.animating = false
		return m, nil
	}
	return m, frameTick()
}

func frameTick() tea.Cmd {
	return tea.Tick(time.Second/60, func(time.Time) tea.Msg {
		return FrameMsg{}
	})
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

func (m Model) activeCard() *Card {
	if len(m.reels) == 0 {
		return nil
	}
	return m.cards[m.reels[m.cursor.Index()].ID]
}

func (m Model) contentHeight() int {
	h := m.height - 1 // bottom notice line
	if h < 1 {
		h = 1
	}
	return h
}

func (m Model) contentWidth() int {
	w := m.width - indicatorWidth
	if w < 1 {
		w = 1
	}
	return w
}

func (m Model) onIndicator(x int) bool {
	return len(m.reels) > 0 && x >= m.width-indicatorWidth
}

func (m Model) indicatorTop() int {
	top := (m.contentHeight() - len(m.reels)) / 2
	if top < 0 {
		top = 0
	}
	return top
}

func (m Model) indicatorIndex(y int) int {
	return y - m.indicatorTop()
}

// View renders the feed.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading reels...")
	}
	if len(m.reels) == 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			EmptyStyle.Render("No reels yet.\nPress a to open the admin panel and add one."))
	}

	extent := m.contentHeight()
	rows := m.windowLines(extent)

	top := m.indicatorTop()
	var b strings.Builder
	for r := 0; r < extent; r++ {
		b.WriteString(padRight(rows[r], m.contentWidth()))
		b.WriteString(" ")
		b.WriteString(m.indicatorDot(r - top))
		b.WriteString("\n")
	}
	b.WriteString(m.bottomLine())
	return b.String()
}

// windowLines renders the slice of the virtual card column that is in
// view at the current animated scroll position. At most two cards can
// intersect the viewport, so only those are rendered.
func (m Model) windowLines(extent int) []string {
	top := int(math.Round(m.scrollPos * float64(extent)))
	max := (len(m.reels) - 1) * extent
	if top < 0 {
		top = 0
	}
	if top > max {
		top = max
	}

	first := top / extent
	off := top % extent

	lines := m.cardLines(first, extent)[off:]
	if len(lines) < extent && first+1 < len(m.reels) {
		lines = append(lines, m.cardLines(first+1, extent)[:extent-len(lines)]...)
	}
	for len(lines) < extent {
		lines = append(lines, "")
	}
	return lines
}

// cardLines renders one reel as exactly height lines.
func (m Model) cardLines(i int, height int) []string {
	reel := m.reels[i]
	c := m.cards[reel.ID]
	active := i == m.cursor.Index()
	w := m.contentWidth()

	var lines []string
	lines = append(lines, "")
	lines = append(lines, TitleStyle.Render(truncate(reel.Title, w-2)))
	lines = append(lines, "")

	player := youtube.EmbedURL(reel.VideoID)
	box := PlayerStyle.Width(min(w-2, lipgloss.Width(player)+4)).Render(truncate(player, w-6))
	lines = append(lines, strings.Split(box, "\n")...)

	if active {
		lines = append(lines, NowPlayingStyle.Render("▶ now playing (muted, looping)"))
	} else {
		lines = append(lines, HintStyle.Render("paused"))
	}
	lines = append(lines, "")

	heart := CounterStyle.Render("♡")
	if c != nil && c.HasLiked() {
		heart = LikedStyle.Render("♥")
	}
	likes := reel.LikeCount
	if c != nil {
		likes = c.Likes()
	}
	counters := fmt.Sprintf("%s %d   💬 %d", heart, likes, len(reel.Comments))
	lines = append(lines, counters)

	if c != nil && c.CommentsOpen() {
		lines = append(lines, "")
		lines = append(lines, m.commentLines(reel, c, w)...)
	}

	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return lines
}

func (m Model) commentLines(reel model.Reel, c *Card, w int) []string {
	var lines []string
	sorted := reel.SortedComments()
	if len(sorted) > maxVisibleComments {
		lines = append(lines, HintStyle.Render(fmt.Sprintf("… %d earlier", len(sorted)-maxVisibleComments)))
		sorted = sorted[len(sorted)-maxVisibleComments:]
	}
	for _, cm := range sorted {
		author := CommentAuthorStyle.Render(cm.Author)
		text := CommentTextStyle.Render(truncate(cm.Text, w-lipgloss.Width(cm.Author)-4))
		lines = append(lines, author+"  "+text)
	}
	if len(sorted) == 0 {
		lines = append(lines, HintStyle.Render("No comments yet."))
	}
	lines = append(lines, c.draft.View())
	return lines
}

func (m Model) indicatorDot(i int) string {
	if i < 0 || i >= len(m.reels) {
		return " "
	}
	if i == m.cursor.Index() {
		return IndicatorActiveStyle.Render("●")
	}
	return IndicatorStyle.Render("·")
}

func (m Model) bottomLine() string {
	if m.notice != "" {
		if m.noticeErr {
			return NoticeErrStyle.Render(m.notice)
		}
		return NoticeStyle.Render(m.notice)
	}
	return HintStyle.Render(fmt.Sprintf("%d/%d  ↑/↓ swipe · l like · c comments · s share · a admin · q quit",
		m.cursor.Index()+1, len(m.reels)))
}

// Composing reports whether the comment composer owns the keyboard.
// The root model uses this to keep global shortcuts out of the way
// while the viewer is typing.
func (m Model) Composing() bool {
	c := m.activeCard()
	return c != nil && c.CommentsOpen()
}

// Index returns the cursor position (for testing).
func (m Model) Index() int { return m.cursor.Index() }

// Reels returns the current feed (for testing).
func (m Model) Reels() []model.Reel { return m.reels }

// CardFor returns the interaction state for a reel ID (for testing).
func (m Model) CardFor(id string) *Card { return m.cards[id] }

// Notice returns the transient notice text (for testing).
func (m Model) Notice() string { return m.notice }

func truncate(s string, w int) string {
	if w < 1 {
		return ""
	}
	if runewidth.StringWidth(s) <= w {
		return s
	}
	return runewidth.Truncate(s, w, "…")
}

func padRight(s string, w int) string {
	gap := w - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	return s + strings.Repeat(" ", gap)
}
