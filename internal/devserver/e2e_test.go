package devserver

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tahmid-dev/reelview/internal/feed"
	"github.com/tahmid-dev/reelview/internal/ingest"
	"github.com/tahmid-dev/reelview/internal/model"
	"github.com/tahmid-dev/reelview/internal/remote"
)

// TestFullLoopAgainstDevserver drives the real store client through a
// complete session: subscribe, add a reel, like it, comment on it,
// and watch each write come back through the live stream.
func TestFullLoopAgainstDevserver(t *testing.T) {
	ts := httptest.NewServer(New().Handler())
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := remote.NewRTDB(ts.URL, "")

	updates := make(chan []model.Reel, 32)
	sync := feed.New(client, func(reels []model.Reel) {
		updates <- reels
	})
	if err := sync.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer sync.Stop()

	waitFor := func(desc string, ok func([]model.Reel) bool) []model.Reel {
		deadline := time.After(10 * time.Second)
		for {
			select {
			case reels := <-updates:
				if ok(reels) {
					return reels
				}
			case <-deadline:
				t.Fatalf("timed out waiting for %s", desc)
				return nil
			}
		}
	}

	// The stream opens with the empty store.
	waitFor("initial snapshot", func(reels []model.Reel) bool {
		return len(reels) == 0
	})

	svc := ingest.New(client)
	id, err := svc.Submit(ctx, "First reel", "https://youtu.be/dQw4w9WgXcQ")
	if err != nil {
		t.Fatal(err)
	}

	reels := waitFor("created reel", func(reels []model.Reel) bool {
		return len(reels) == 1 && reels[0].ID == id
	})
	r := reels[0]
	if r.Title != "First reel" {
		t.Fatalf("title = %q", r.Title)
	}
	if r.VideoID != "dQw4w9WgXcQ" {
		t.Fatalf("videoId = %q", r.VideoID)
	}
	if r.LikeCount != 0 {
		t.Fatalf("likeCount = %d, want 0", r.LikeCount)
	}
	if r.CreatedAt == 0 {
		t.Fatal("createdAt should be the resolved server timestamp")
	}

	actions := feed.NewActions(client, "tester")

	v, err := actions.Like(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if v != 1 {
		t.Fatalf("like returned %d, want 1", v)
	}
	waitFor("like visible in stream", func(reels []model.Reel) bool {
		return len(reels) == 1 && reels[0].LikeCount == 1
	})

	key, err := actions.Comment(ctx, id, "great clip")
	if err != nil {
		t.Fatal(err)
	}
	reels = waitFor("comment visible in stream", func(reels []model.Reel) bool {
		return len(reels) == 1 && len(reels[0].Comments) == 1
	})
	c, ok := reels[0].Comments[key]
	if !ok {
		t.Fatalf("comments = %v, want key %s", reels[0].Comments, key)
	}
	if c.Text != "great clip" || c.Author != "tester" {
		t.Fatalf("comment = %+v", c)
	}
}

// TestTwoClientsSeeEachOther checks that a write from one client
// reaches a second client's subscription.
func TestTwoClientsSeeEachOther(t *testing.T) {
	ts := httptest.NewServer(New().Handler())
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	writer := remote.NewRTDB(ts.URL, "")
	reader := remote.NewRTDB(ts.URL, "")

	updates := make(chan []model.Reel, 16)
	sync := feed.New(reader, func(reels []model.Reel) {
		updates <- reels
	})
	if err := sync.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer sync.Stop()

	id, err := ingest.New(writer).Submit(ctx, "Shared", "https://www.youtube.com/watch?v=jNQXAC9IVRw")
	if err != nil {
		t.Fatal(err)
	}

	deadline := time.After(10 * time.Second)
	for {
		select {
		case reels := <-updates:
			if len(reels) == 1 && reels[0].ID == id {
				return
			}
		case <-deadline:
			t.Fatal("second client never saw the write")
		}
	}
}
