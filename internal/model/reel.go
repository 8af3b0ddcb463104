// Package model defines the reel data model and the normalization of
// raw store snapshots into the ordered feed.
package model

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/tahmid-dev/reelview/internal/remote"
)

// ReelsPath is the root collection in the store.
const ReelsPath = "reels"

// LikeCountPath returns the store path of a reel's like counter.
func LikeCountPath(reelID string) string {
	return ReelsPath + "/" + reelID + "/likeCount"
}

// CommentsPath returns the store path of a reel's comment collection.
func CommentsPath(reelID string) string {
	return ReelsPath + "/" + reelID + "/comments"
}

// Millis is an epoch-milliseconds timestamp that tolerates sloppy wire
// data: numbers, numeric strings, or anything else (which coerces to
// zero so sorting stays total).
type Millis int64

// UnmarshalJSON accepts a JSON number or numeric string; any other
// shape becomes zero rather than an error.
func (m *Millis) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		if v, err := n.Int64(); err == nil {
			*m = Millis(v)
			return nil
		}
		if f, err := n.Float64(); err == nil {
			*m = Millis(int64(f))
			return nil
		}
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			*m = Millis(v)
			return nil
		}
	}
	*m = 0
	return nil
}

// Reel is one playable item. ID is the store child key, never part of
// the payload.
type Reel struct {
	ID        string     `json:"-"`
	Title     string     `json:"title"`
	SourceURL string     `json:"sourceUrl"`
	VideoID   string     `json:"videoId"`
	LikeCount int64      `json:"likeCount"`
	Comments  CommentMap `json:"comments,omitempty"`
	CreatedAt Millis     `json:"createdAt"`
}

// CommentMap holds a reel's comments keyed by child key. The store
// serves dense integer-keyed collections as arrays, and older writers
// stored an empty list for "no comments", so decoding tolerates both
// shapes.
type CommentMap map[string]Comment

// UnmarshalJSON accepts the keyed-object form, the dense-array form
// (re-keyed by index), or anything else (which becomes empty).
func (cm *CommentMap) UnmarshalJSON(data []byte) error {
	var obj map[string]Comment
	if err := json.Unmarshal(data, &obj); err == nil {
		*cm = obj
		return nil
	}
	var arr []*Comment
	if err := json.Unmarshal(data, &arr); err == nil {
		m := CommentMap{}
		for i, c := range arr {
			if c != nil {
				m[strconv.Itoa(i)] = *c
			}
		}
		*cm = m
		return nil
	}
	*cm = nil
	return nil
}

// Comment is one remark on a reel. Append-only; never edited or
// deleted. ID is the child key within the reel's comment collection.
type Comment struct {
	ID        string `json:"-"`
	Text      string `json:"text"`
	Author    string `json:"author"`
	CreatedAt Millis `json:"createdAt"`
}

// CommentCount returns the number of comments on the reel.
func (r Reel) CommentCount() int { return len(r.Comments) }

// SortedComments returns the reel's comments in insertion order:
// ascending createdAt, with the child key breaking ties. Push keys
// are themselves chronological, so the order is stable.
func (r Reel) SortedComments() []Comment {
	out := make([]Comment, 0, len(r.Comments))
	for id, c := range r.Comments {
		c.ID = id
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ReelsFromSnapshot turns a raw keyed snapshot into the feed: each key
// paired with its payload as the reel's ID, sorted strictly descending
// by createdAt. Ties break by ascending key, which makes the sort
// deterministic and idempotent. Malformed payloads degrade to
// zero-valued fields instead of poisoning the whole feed.
func ReelsFromSnapshot(snap remote.Snapshot) []Reel {
	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	reels := make([]Reel, 0, len(keys))
	for _, k := range keys {
		var r Reel
		// Errors deliberately ignored: partial decodes keep whatever
		// fields were valid.
		_ = json.Unmarshal(snap[k], &r)
		r.ID = k
		reels = append(reels, r)
	}

	sort.SliceStable(reels, func(i, j int) bool {
		return reels[i].CreatedAt > reels[j].CreatedAt
	})
	return reels
}
