package feedview

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tahmid-dev/reelview/internal/model"
)

// Card holds the per-reel interaction state that lives only in this
// session: the optimistic like counter, whether this viewer already
// liked the reel, and the comment composer. It is keyed by reel ID so
// the state survives reordering and refreshes of the feed slice.
type Card struct {
	reel model.Reel

	// localLikes is what the screen shows. It tracks the store value
	// but can run ahead of it by one while a like is in flight.
	localLikes int64
	hasLiked   bool

	// Rollback values captured at the moment of the optimistic bump.
	prevLikes int64
	prevLiked bool

	likePending bool

	commentsOpen bool
	draft        textinput.Model
}

// NewCard creates interaction state for a reel.
func NewCard(reel model.Reel) *Card {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Add a comment..."
	ti.CharLimit = 500
	return &Card{
		reel:       reel,
		localLikes: reel.LikeCount,
		draft:      ti,
	}
}

// Sync applies a fresh copy of the reel from the store. If the store's
// like count moved, the store wins and any optimistic local value is
// overwritten.
func (c *Card) Sync(reel model.Reel) {
	if reel.LikeCount != c.reel.LikeCount {
		c.localLikes = reel.LikeCount
	}
	c.reel = reel
}

// Reel returns the last synced reel.
func (c *Card) Reel() model.Reel { return c.reel }

// Likes returns the displayed like count.
func (c *Card) Likes() int64 { return c.localLikes }

// HasLiked reports whether this session already liked the reel.
func (c *Card) HasLiked() bool { return c.hasLiked }

// ToggleLike applies the optimistic bump and reports whether a store
// write should be issued. Once liked, further toggles are no-ops, so
// a double-tap never double-counts.
func (c *Card) ToggleLike() bool {
	if c.hasLiked || c.likePending {
		return false
	}
	c.prevLikes = c.localLikes
	c.prevLiked = c.hasLiked
	c.localLikes++
	c.hasLiked = true
	c.likePending = true
	return true
}

// ConfirmLike records the store's post-increment value.
func (c *Card) ConfirmLike(newValue int64) {
	c.likePending = false
	c.localLikes = newValue
}

// RollbackLike restores the exact values captured before the
// optimistic bump.
func (c *Card) RollbackLike() {
	c.likePending = false
	c.localLikes = c.prevLikes
	c.hasLiked = c.prevLiked
}

// CommentsOpen reports whether the comment panel is showing.
func (c *Card) CommentsOpen() bool { return c.commentsOpen }

// ToggleComments opens or closes the comment panel. The returned
// command, if any, starts the composer's cursor blinking.
func (c *Card) ToggleComments() tea.Cmd {
	c.commentsOpen = !c.commentsOpen
	if c.commentsOpen {
		return c.draft.Focus()
	}
	c.draft.Blur()
	return nil
}

// CloseComments closes the panel, for when the card scrolls away.
func (c *Card) CloseComments() {
	c.commentsOpen = false
	c.draft.Blur()
}

// UpdateDraft forwards a key to the comment composer.
func (c *Card) UpdateDraft(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	c.draft, cmd = c.draft.Update(msg)
	return cmd
}

// TakeComment returns the trimmed draft text, or "" when there is
// nothing to post. The draft is kept until the write succeeds.
func (c *Card) TakeComment() string {
	return strings.TrimSpace(c.draft.Value())
}

// ClearDraft empties the composer after a successful post.
func (c *Card) ClearDraft() {
	c.draft.SetValue("")
}
