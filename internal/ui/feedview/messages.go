// Package feedview renders the vertically swiped reel feed.
package feedview

import "github.com/tahmid-dev/reelview/internal/model"

// FeedUpdated carries a full replacement snapshot of the feed. A nil
// slice means the live connection reported an error and the store
// should be treated as empty until it recovers.
type FeedUpdated struct {
	Reels []model.Reel
}

// LikeResult reports the outcome of a like write. NewValue is the
// store's post-increment count and only meaningful when Err is nil.
type LikeResult struct {
	ReelID   string
	NewValue int64
	Err      error
}

// CommentResult reports the outcome of posting a comment.
type CommentResult struct {
	ReelID string
	Err    error
}

// ShareResult reports the outcome of copying a share link.
type ShareResult struct {
	Title string
	Err   error
}

// FrameMsg drives one step of the scroll animation.
type FrameMsg struct{}

// noticeExpiredMsg clears the transient notice line.
type noticeExpiredMsg struct{ id int }
