// Package ingest appends new reels to the store: single reels from a
// pasted YouTube URL, and bulk imports from a channel's RSS feed.
package ingest

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"github.com/tahmid-dev/reelview/internal/logging"
	"github.com/tahmid-dev/reelview/internal/model"
	"github.com/tahmid-dev/reelview/internal/remote"
	"github.com/tahmid-dev/reelview/internal/youtube"
)

// fetchTimeout bounds the channel feed download.
const fetchTimeout = 30 * time.Second

// maxConcurrentCreates limits parallel store writes during an import.
const maxConcurrentCreates = 4

// maxImportEntries caps how many entries one import will create.
const maxImportEntries = 50

// ValidationError is client-detected bad input. It never reaches the
// network: a submit that fails validation issues zero store calls.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Service validates admin input and writes reels through the store
// client.
type Service struct {
	client remote.Client
	http   *http.Client
}

// New creates an ingest service on top of the store client.
func New(client remote.Client) *Service {
	return &Service{
		client: client,
		http:   &http.Client{Timeout: fetchTimeout},
	}
}

// Submit validates a title and YouTube URL and creates one reel.
// Returns the new reel's ID. Fails with *ValidationError before any
// store call when a field is empty or no video ID can be extracted;
// no partial item is ever created.
func (s *Service) Submit(ctx context.Context, title, url string) (string, error) {
	title = strings.TrimSpace(title)
	url = strings.TrimSpace(url)

	if title == "" {
		return "", &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if url == "" {
		return "", &ValidationError{Field: "url", Reason: "must not be empty"}
	}

	videoID, ok := youtube.ExtractVideoID(url)
	if !ok {
		return "", &ValidationError{Field: "url", Reason: "not a recognizable YouTube link"}
	}

	id, err := s.client.CreateItem(ctx, model.ReelsPath, map[string]any{
		"title":     title,
		"sourceUrl": url,
		"videoId":   videoID,
		"likeCount": 0,
		"createdAt": remote.ServerTimestamp,
	})
	if err != nil {
		return "", err
	}

	logging.Info("reel created", "id", id, "videoId", videoID)
	return id, nil
}

// ImportChannel downloads a YouTube channel RSS feed and creates one
// reel per entry, in parallel with a bounded group. Entries without an
// extractable video ID are skipped. Returns how many reels were
// created. Individual create failures abort the remaining imports.
func (s *Service) ImportChannel(ctx context.Context, feedURL string) (int, error) {
	feedURL = strings.TrimSpace(feedURL)
	if feedURL == "" {
		return 0, &ValidationError{Field: "url", Reason: "must not be empty"}
	}

	feed, err := s.fetchFeed(ctx, feedURL)
	if err != nil {
		return 0, err
	}

	entries := feed.Items
	if len(entries) > maxImportEntries {
		entries = entries[:maxImportEntries]
	}

	var created atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentCreates)

	for _, entry := range entries {
		g.Go(func() error {
			videoID, ok := youtube.ExtractVideoID(entry.Link)
			if !ok {
				logging.Warn("import skipped entry without video ID", "link", entry.Link)
				return nil
			}
			title := strings.TrimSpace(entry.Title)
			if title == "" {
				title = videoID
			}
			_, err := s.client.CreateItem(ctx, model.ReelsPath, map[string]any{
				"title":     title,
				"sourceUrl": youtube.WatchURL(videoID),
				"videoId":   videoID,
				"likeCount": 0,
				"createdAt": remote.ServerTimestamp,
			})
			if err != nil {
				return err
			}
			created.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return int(created.Load()), err
	}

	logging.Info("channel import complete", "feed", feedURL, "created", created.Load())
	return int(created.Load()), nil
}

// fetchFeed downloads and parses the channel RSS feed.
func (s *Service) fetchFeed(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, &ValidationError{Field: "url", Reason: err.Error()}
	}
	req.Header.Set("User-Agent", "reelview/1.0")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch channel feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch channel feed: HTTP %d", resp.StatusCode)
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse channel feed: %w", err)
	}
	return feed, nil
}
