// Package devserver implements enough of the real-time store's HTTP
// dialect to run reelview against localhost: JSON reads and writes at
// {path}.json, server-side values, and live change streaming over SSE.
package devserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tahmid-dev/reelview/internal/logging"
	"github.com/tahmid-dev/reelview/internal/remote"
)

// Server holds the in-memory JSON tree and its change subscribers.
type Server struct {
	mu      sync.Mutex
	tree    map[string]any
	subs    map[int]*subscriber
	nextSub int

	now       func() time.Time
	keepAlive time.Duration
	router    chi.Router
}

type subscriber struct {
	root   string
	events chan event
}

type event struct {
	name string
	path string
	data any
}

// New creates an empty server.
func New() *Server {
	s := &Server{
		tree:      make(map[string]any),
		subs:      make(map[int]*subscriber),
		now:       time.Now,
		keepAlive: 30 * time.Second,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/*", s.handleGet)
	r.Put("/*", s.handlePut)
	r.Post("/*", s.handlePost)
	r.Patch("/*", s.handlePatch)
	r.Delete("/*", s.handleDelete)

	s.router = r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Start serves until the listener fails.
func (s *Server) Start(addr string) error {
	logging.Info("devserver listening", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

// storePath extracts the tree path from a request like
// GET /reels/abc.json. An empty path addresses the root.
func storePath(r *http.Request) (string, bool) {
	raw := strings.Trim(chi.URLParam(r, "*"), "/")
	if !strings.HasSuffix(raw, ".json") {
		return "", false
	}
	return strings.Trim(strings.TrimSuffix(raw, ".json"), "/"), true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	path, ok := storePath(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if strings.Contains(r.Header.Get("Accept"), "text/event-stream") {
		s.stream(w, r, path)
		return
	}

	s.mu.Lock()
	v := valueAt(s.tree, split(path))
	s.mu.Unlock()
	writeJSON(w, v)
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	path, ok := storePath(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	var body any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	resolved := s.resolve(split(path), body)
	setAt(s.tree, split(path), resolved)
	s.broadcast(path, resolved)
	s.mu.Unlock()

	writeJSON(w, resolved)
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	path, ok := storePath(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	var body any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	key := remote.NewPushID()
	child := path + "/" + key
	if path == "" {
		child = key
	}

	s.mu.Lock()
	resolved := s.resolve(split(child), body)
	setAt(s.tree, split(child), resolved)
	s.broadcast(child, resolved)
	s.mu.Unlock()

	writeJSON(w, map[string]string{"name": key})
}

func (s *Server) handlePatch(w http.ResponseWriter, r *http.Request) {
	path, ok := storePath(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	resolved := make(map[string]any, len(body))
	for k, v := range body {
		childPath := path + "/" + k
		if path == "" {
			childPath = k
		}
		rv := s.resolve(split(childPath), v)
		setAt(s.tree, split(childPath), rv)
		resolved[k] = rv
	}
	s.broadcastPatch(path, resolved)
	s.mu.Unlock()

	writeJSON(w, resolved)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	path, ok := storePath(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	s.mu.Lock()
	deleteAt(s.tree, split(path))
	s.broadcast(path, nil)
	s.mu.Unlock()

	writeJSON(w, nil)
}

// --- Streaming ---

func (s *Server) stream(w http.ResponseWriter, r *http.Request, path string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sub := &subscriber{
		root:   path,
		events: make(chan event, 64),
	}

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = sub
	initial := valueAt(s.tree, split(path))
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}()

	writeEvent(w, event{name: "put", path: "/", data: initial})
	flusher.Flush()

	keepAlive := time.NewTicker(s.keepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-sub.events:
			writeEvent(w, ev)
			flusher.Flush()
		case <-keepAlive.C:
			fmt.Fprint(w, "event: keep-alive\ndata: null\n\n")
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, ev event) {
	payload, _ := json.Marshal(map[string]any{
		"path": ev.path,
		"data": ev.data,
	})
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.name, payload)
}

// broadcast fans a mutation at path out to every subscriber whose
// root overlaps it. Callers hold s.mu.
func (s *Server) broadcast(path string, data any) {
	for _, sub := range s.subs {
		ev, ok := s.eventFor(sub.root, path, data)
		if !ok {
			continue
		}
		select {
		case sub.events <- ev:
		default:
			// Slow consumer. Drop the event; the next overlapping
			// write will carry fresh data anyway.
		}
	}
}

func (s *Server) broadcastPatch(path string, children map[string]any) {
	for _, sub := range s.subs {
		if under(path, sub.root) || path == sub.root {
			rel := "/" + strings.TrimPrefix(strings.TrimPrefix(path, sub.root), "/")
			select {
			case sub.events <- event{name: "patch", path: rel, data: children}:
			default:
			}
			continue
		}
		if ev, ok := s.eventFor(sub.root, path, nil); ok {
			ev.data = valueAt(s.tree, split(sub.root))
			select {
			case sub.events <- ev:
			default:
			}
		}
	}
}

// eventFor translates a mutation into a subscriber-relative put.
// A write below the root arrives at its relative path; a write at or
// above the root replaces the whole subtree.
func (s *Server) eventFor(root, path string, data any) (event, bool) {
	switch {
	case path == root:
		return event{name: "put", path: "/", data: data}, true
	case under(path, root):
		rel := "/" + strings.TrimPrefix(strings.TrimPrefix(path, root), "/")
		return event{name: "put", path: rel, data: data}, true
	case under(root, path):
		return event{name: "put", path: "/", data: valueAt(s.tree, split(root))}, true
	}
	return event{}, false
}

// under reports whether child is strictly below parent.
func under(child, parent string) bool {
	if parent == "" {
		return child != ""
	}
	return strings.HasPrefix(child, parent+"/")
}

// --- Server-side values ---

// resolve rewrites {".sv": ...} markers into concrete values before
// the write lands. Callers hold s.mu.
func (s *Server) resolve(path []string, v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	if sv, ok := m[".sv"]; ok && len(m) == 1 {
		return s.serverValue(path, sv)
	}
	out := make(map[string]any, len(m))
	for k, child := range m {
		childPath := append(append([]string(nil), path...), k)
		out[k] = s.resolve(childPath, child)
	}
	return out
}

func (s *Server) serverValue(path []string, sv any) any {
	switch t := sv.(type) {
	case string:
		if t == "timestamp" {
			return float64(s.now().UnixMilli())
		}
	case map[string]any:
		if inc, ok := t["increment"]; ok {
			cur, _ := valueAt(s.tree, path).(float64)
			delta, _ := inc.(float64)
			return cur + delta
		}
	}
	return nil
}

// --- Tree access (callers hold s.mu) ---

func split(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func valueAt(tree map[string]any, path []string) any {
	var cur any = tree
	for _, seg := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[seg]
	}
	if m, ok := cur.(map[string]any); ok && len(m) == 0 {
		return nil
	}
	return cur
}

func setAt(tree map[string]any, path []string, v any) {
	if len(path) == 0 {
		for k := range tree {
			delete(tree, k)
		}
		if m, ok := v.(map[string]any); ok {
			for k, child := range m {
				tree[k] = child
			}
		}
		return
	}
	if v == nil {
		deleteAt(tree, path)
		return
	}
	parent := tree
	for _, seg := range path[:len(path)-1] {
		next, ok := parent[seg].(map[string]any)
		if !ok {
			next = make(map[string]any)
			parent[seg] = next
		}
		parent = next
	}
	parent[path[len(path)-1]] = v
}

func deleteAt(tree map[string]any, path []string) {
	if len(path) == 0 {
		for k := range tree {
			delete(tree, k)
		}
		return
	}
	parent := tree
	for _, seg := range path[:len(path)-1] {
		next, ok := parent[seg].(map[string]any)
		if !ok {
			return
		}
		parent = next
	}
	delete(parent, path[len(path)-1])
}
