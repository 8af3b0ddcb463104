// Package store provides a SQLite-backed implementation of the remote
// client interface, used for offline and development mode. The same
// four operations the RTDB backend speaks are served from a local
// database, with subscriptions re-fired after every local write.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tahmid-dev/reelview/internal/model"
	"github.com/tahmid-dev/reelview/internal/remote"
)

// Store implements remote.Client over SQLite. Concrete type, not an
// interface. All methods are safe for concurrent use via internal
// mutex.
type Store struct {
	db *sql.DB
	mu sync.RWMutex // protects database operations

	subMu sync.Mutex
	subs  []*subscriber
}

type subscriber struct {
	mu      sync.Mutex
	stopped bool
	path    string
	fn      remote.SnapshotFunc
}

func (s *subscriber) deliver(snap remote.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.fn(snap, nil)
}

func (s *subscriber) close() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
}

// Open creates a Store at the given database path, creating tables if
// they don't exist. Uses WAL mode for file-based databases; ":memory:"
// is supported for tests.
func Open(dbPath string) (*Store, error) {
	connStr := dbPath
	if dbPath == ":memory:" {
		// Shared cache so every pooled connection sees the same
		// in-memory database.
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return s, nil
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS reels (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		source_url TEXT NOT NULL DEFAULT '',
		video_id TEXT NOT NULL DEFAULT '',
		like_count INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS comments (
		id TEXT NOT NULL,
		reel_id TEXT NOT NULL,
		text TEXT NOT NULL DEFAULT '',
		author TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (reel_id, id)
	);

	CREATE INDEX IF NOT EXISTS idx_reels_created ON reels(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_comments_reel ON comments(reel_id);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

var _ remote.Client = (*Store)(nil)

// CreateItem inserts a reel under a generated key. Only the root
// reels collection is writable this way.
func (s *Store) CreateItem(ctx context.Context, path string, data map[string]any) (string, error) {
	if strings.Trim(path, "/") != model.ReelsPath {
		return "", &remote.StoreError{Op: "create", Path: path, Err: fmt.Errorf("unsupported path")}
	}

	data = remote.ResolveServerValues(data, time.Now().UnixMilli())
	id := remote.NewPushID()

	s.mu.Lock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reels (id, title, source_url, video_id, like_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, str(data["title"]), str(data["sourceUrl"]), str(data["videoId"]),
		num(data["likeCount"]), num(data["createdAt"]))
	s.mu.Unlock()

	if err != nil {
		return "", &remote.StoreError{Op: "create", Path: path, Err: err}
	}
	s.notifyAll()
	return id, nil
}

// AppendChild inserts a comment under reels/{id}/comments.
func (s *Store) AppendChild(ctx context.Context, path string, data map[string]any) (string, error) {
	reelID, field, err := childPath(path)
	if err != nil || field != "comments" {
		return "", &remote.StoreError{Op: "append", Path: path, Err: fmt.Errorf("unsupported path")}
	}

	data = remote.ResolveServerValues(data, time.Now().UnixMilli())
	id := remote.NewPushID()

	s.mu.Lock()
	res, execErr := s.db.ExecContext(ctx, `
		INSERT INTO comments (id, reel_id, text, author, created_at)
		SELECT ?, id, ?, ?, ? FROM reels WHERE id = ?
	`, id, str(data["text"]), str(data["author"]), num(data["createdAt"]), reelID)
	s.mu.Unlock()

	if execErr != nil {
		return "", &remote.StoreError{Op: "append", Path: path, Err: execErr}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Reel vanished before the write landed.
		return "", &remote.StoreError{Op: "append", Path: path, Err: fmt.Errorf("reel %s not found", reelID)}
	}
	s.notifyAll()
	return id, nil
}

// Increment atomically adjusts a reel's like counter inside a single
// UPDATE, so concurrent likers never lose updates.
func (s *Store) Increment(ctx context.Context, path string, delta int64) (int64, error) {
	reelID, field, err := childPath(path)
	if err != nil || field != "likeCount" {
		return 0, &remote.StoreError{Op: "increment", Path: path, Err: fmt.Errorf("unsupported path")}
	}

	s.mu.Lock()
	var newValue int64
	scanErr := s.db.QueryRowContext(ctx, `
		UPDATE reels SET like_count = like_count + ? WHERE id = ? RETURNING like_count
	`, delta, reelID).Scan(&newValue)
	s.mu.Unlock()

	if scanErr == sql.ErrNoRows {
		return 0, &remote.StoreError{Op: "increment", Path: path, Err: fmt.Errorf("reel %s not found", reelID)}
	}
	if scanErr != nil {
		return 0, &remote.StoreError{Op: "increment", Path: path, Err: scanErr}
	}
	s.notifyAll()
	return newValue, nil
}

// Subscribe registers fn for the reels collection, delivers the
// current contents immediately, and re-delivers after every local
// write.
func (s *Store) Subscribe(ctx context.Context, path string, fn remote.SnapshotFunc) (func(), error) {
	if strings.Trim(path, "/") != model.ReelsPath {
		return nil, &remote.StoreError{Op: "subscribe", Path: path, Err: fmt.Errorf("unsupported path")}
	}

	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, &remote.StoreError{Op: "subscribe", Path: path, Err: err}
	}

	sub := &subscriber{path: path, fn: fn}
	s.subMu.Lock()
	s.subs = append(s.subs, sub)
	s.subMu.Unlock()

	fn(snap, nil)

	return sub.close, nil
}

// notifyAll delivers a fresh snapshot to every live subscriber.
func (s *Store) notifyAll() {
	s.subMu.Lock()
	subs := append([]*subscriber(nil), s.subs...)
	s.subMu.Unlock()
	if len(subs) == 0 {
		return
	}

	snap, err := s.snapshot(context.Background())
	if err != nil {
		return
	}
	for _, sub := range subs {
		sub.deliver(snap)
	}
}

// snapshot reads the full reel collection in wire form.
func (s *Store) snapshot(ctx context.Context) (remote.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, source_url, video_id, like_count, created_at
		FROM reels
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reels := make(map[string]*model.Reel)
	for rows.Next() {
		var r model.Reel
		if err := rows.Scan(&r.ID, &r.Title, &r.SourceURL, &r.VideoID, &r.LikeCount, &r.CreatedAt); err != nil {
			return nil, err
		}
		reels[r.ID] = &r
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	crows, err := s.db.QueryContext(ctx, `
		SELECT id, reel_id, text, author, created_at FROM comments
	`)
	if err != nil {
		return nil, err
	}
	defer crows.Close()

	for crows.Next() {
		var c model.Comment
		var reelID string
		if err := crows.Scan(&c.ID, &reelID, &c.Text, &c.Author, &c.CreatedAt); err != nil {
			return nil, err
		}
		if r, ok := reels[reelID]; ok {
			if r.Comments == nil {
				r.Comments = model.CommentMap{}
			}
			r.Comments[c.ID] = c
		}
	}
	if err := crows.Err(); err != nil {
		return nil, err
	}

	snap := remote.Snapshot{}
	for id, r := range reels {
		raw, err := json.Marshal(r)
		if err != nil {
			return nil, err
		}
		snap[id] = raw
	}
	return snap, nil
}

// childPath parses "reels/{id}/{field}" paths.
func childPath(path string) (reelID, field string, err error) {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	if len(segs) != 3 || segs[0] != model.ReelsPath {
		return "", "", fmt.Errorf("unsupported path %q", path)
	}
	return segs[1], segs[2], nil
}

// str and num coerce loosely typed write payload values for SQL
// parameters.
func str(v any) string {
	s, _ := v.(string)
	return s
}

func num(v any) int64 {
	switch v := v.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case model.Millis:
		return int64(v)
	}
	return 0
}
