package feed

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/tahmid-dev/reelview/internal/remote/remotetest"
)

func TestLikeReturnsNewValue(t *testing.T) {
	fake := remotetest.New()
	fake.Set("reels/r1/likeCount", int64(4))
	a := NewActions(fake, "alice")

	v, err := a.Like(context.Background(), "r1")
	if err != nil {
		t.Fatal(err)
	}
	if v != 5 {
		t.Fatalf("new value = %d, want 5", v)
	}
}

func TestLikePropagatesError(t *testing.T) {
	fake := remotetest.New()
	fake.IncrementErr = errors.New("offline")
	a := NewActions(fake, "alice")

	if _, err := a.Like(context.Background(), "r1"); err == nil {
		t.Fatal("want error")
	}
}

func TestCommentUsesConfiguredAuthor(t *testing.T) {
	fake := remotetest.New()
	a := NewActions(fake, "alice")

	key, err := a.Comment(context.Background(), "r1", "  nice  ")
	if err != nil {
		t.Fatal(err)
	}
	if key == "" {
		t.Fatal("want a comment key")
	}

	raw, ok := fake.Snapshot("reels/r1/comments")[key]
	if !ok {
		t.Fatal("stored comment missing")
	}
	var stored map[string]any
	if err := json.Unmarshal(raw, &stored); err != nil {
		t.Fatal(err)
	}
	if stored["author"] != "alice" {
		t.Fatalf("author = %v, want alice", stored["author"])
	}
	if stored["text"] != "nice" {
		t.Fatalf("text = %v, want trimmed", stored["text"])
	}
}

func TestCommentDefaultsAuthor(t *testing.T) {
	a := NewActions(remotetest.New(), "   ")
	if a.author != DefaultAuthor {
		t.Fatalf("author = %q, want %q", a.author, DefaultAuthor)
	}
}

func TestEmptyCommentIsDropped(t *testing.T) {
	fake := remotetest.New()
	a := NewActions(fake, "alice")

	key, err := a.Comment(context.Background(), "r1", "   ")
	if err != nil || key != "" {
		t.Fatalf("key=%q err=%v, want silent no-op", key, err)
	}
	if len(fake.Calls) != 0 {
		t.Fatalf("calls = %v, want none", fake.Calls)
	}
}
