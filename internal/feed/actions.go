package feed

import (
	"context"
	"strings"

	"github.com/tahmid-dev/reelview/internal/logging"
	"github.com/tahmid-dev/reelview/internal/model"
	"github.com/tahmid-dev/reelview/internal/remote"
)

// DefaultAuthor is used when no author name is configured.
const DefaultAuthor = "Anonymous"

// Actions issues the viewer-side writes: likes and comments. Reads
// never go through here; the Synchronizer keeps the feed current.
type Actions struct {
	client remote.Client
	author string
}

// NewActions creates the write side of the feed.
func NewActions(client remote.Client, author string) *Actions {
	author = strings.TrimSpace(author)
	if author == "" {
		author = DefaultAuthor
	}
	return &Actions{client: client, author: author}
}

// Like atomically increments a reel's like counter on the server and
// returns the post-increment value. The counter only ever goes up;
// there is no unlike.
func (a *Actions) Like(ctx context.Context, reelID string) (int64, error) {
	v, err := a.client.Increment(ctx, model.LikeCountPath(reelID), 1)
	if err != nil {
		logging.Warn("like failed", "reel", reelID, "err", err)
		return 0, err
	}
	return v, nil
}

// Comment appends a comment under the reel and returns its key.
// Empty or whitespace-only text is dropped without a store call.
func (a *Actions) Comment(ctx context.Context, reelID, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}
	key, err := a.client.AppendChild(ctx, model.CommentsPath(reelID), map[string]any{
		"text":      text,
		"author":    a.author,
		"createdAt": remote.ServerTimestamp,
	})
	if err != nil {
		logging.Warn("comment failed", "reel", reelID, "err", err)
		return "", err
	}
	return key, nil
}
