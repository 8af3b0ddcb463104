// Package remotetest provides an in-memory remote.Client for tests.
// It mirrors the store contract closely enough to exercise optimistic
// updates, live snapshots, and failure rollback without a network.
package remotetest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/tahmid-dev/reelview/internal/remote"
)

// Fake is an in-memory store. The zero value is not usable; call New.
type Fake struct {
	mu   sync.Mutex
	tree map[string]any
	subs []*fakeSub
	seq  int
	now  int64

	// Calls records every operation in "op path" form, so tests can
	// assert that a validation failure issued zero store calls.
	Calls []string

	// Error injection, one per operation. A non-nil value makes the
	// next calls fail with a *StoreError wrapping it.
	CreateErr    error
	AppendErr    error
	IncrementErr error
	SubscribeErr error
}

type fakeSub struct {
	path    string
	fn      remote.SnapshotFunc
	stopped bool
}

// New creates an empty fake store.
func New() *Fake {
	return &Fake{tree: make(map[string]any), now: 1000}
}

var _ remote.Client = (*Fake)(nil)

// nextKey generates deterministic, sortable child keys.
func (f *Fake) nextKey() string {
	f.seq++
	return fmt.Sprintf("key%04d", f.seq)
}

// nextNow advances the fake server clock.
func (f *Fake) nextNow() int64 {
	f.now++
	return f.now
}

func (f *Fake) CreateItem(_ context.Context, path string, data map[string]any) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls = append(f.Calls, "create "+path)
	if f.CreateErr != nil {
		return "", &remote.StoreError{Op: "create", Path: path, Err: f.CreateErr}
	}
	id := f.nextKey()
	f.setLocked(path+"/"+id, remote.ResolveServerValues(data, f.nextNow()))
	f.notifyLocked()
	return id, nil
}

func (f *Fake) AppendChild(_ context.Context, path string, data map[string]any) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls = append(f.Calls, "append "+path)
	if f.AppendErr != nil {
		return "", &remote.StoreError{Op: "append", Path: path, Err: f.AppendErr}
	}
	id := f.nextKey()
	f.setLocked(path+"/"+id, remote.ResolveServerValues(data, f.nextNow()))
	f.notifyLocked()
	return id, nil
}

func (f *Fake) Increment(_ context.Context, path string, delta int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls = append(f.Calls, "increment "+path)
	if f.IncrementErr != nil {
		return 0, &remote.StoreError{Op: "increment", Path: path, Err: f.IncrementErr}
	}

	var cur int64
	switch v := f.getLocked(path).(type) {
	case int64:
		cur = v
	case int:
		cur = int64(v)
	case float64:
		cur = int64(v)
	}
	next := cur + delta
	f.setLocked(path, next)
	f.notifyLocked()
	return next, nil
}

func (f *Fake) Subscribe(_ context.Context, path string, fn remote.SnapshotFunc) (func(), error) {
	f.mu.Lock()

	f.Calls = append(f.Calls, "subscribe "+path)
	if f.SubscribeErr != nil {
		f.mu.Unlock()
		return nil, &remote.StoreError{Op: "subscribe", Path: path, Err: f.SubscribeErr}
	}

	sub := &fakeSub{path: path, fn: fn}
	f.subs = append(f.subs, sub)
	snap := f.snapshotLocked(path)
	f.mu.Unlock()

	// Initial delivery with current contents.
	fn(snap, nil)

	stop := func() {
		f.mu.Lock()
		sub.stopped = true
		f.mu.Unlock()
	}
	return stop, nil
}

// Set writes a value directly, bypassing the Client surface. Tests
// use it to stage store contents or simulate other clients' writes.
func (f *Fake) Set(path string, value any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setLocked(path, value)
	f.notifyLocked()
}

// Delete removes a subtree, simulating an item vanishing remotely.
func (f *Fake) Delete(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setLocked(path, nil)
	f.notifyLocked()
}

// Snapshot returns the current contents of a collection path.
func (f *Fake) Snapshot(path string) remote.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked(path)
}

// Emit re-delivers the current snapshot to all live subscribers of
// path, including ones whose stop has been called. Tests use it to
// simulate a late-arriving callback racing a teardown.
func (f *Fake) Emit(path string) {
	f.mu.Lock()
	subs := append([]*fakeSub(nil), f.subs...)
	snap := f.snapshotLocked(path)
	f.mu.Unlock()

	for _, sub := range subs {
		if sub.path == path {
			sub.fn(snap, nil)
		}
	}
}

// EmitError delivers a subscription failure to live subscribers.
func (f *Fake) EmitError(path string, err error) {
	f.mu.Lock()
	subs := append([]*fakeSub(nil), f.subs...)
	f.mu.Unlock()

	for _, sub := range subs {
		if sub.path == path && !sub.stopped {
			sub.fn(nil, &remote.StoreError{Op: "subscribe", Path: path, Err: err})
		}
	}
}

// notifyLocked delivers fresh snapshots to all non-stopped
// subscribers. Caller holds f.mu; delivery happens after unlocking to
// keep callbacks reentrant.
func (f *Fake) notifyLocked() {
	type delivery struct {
		fn   remote.SnapshotFunc
		snap remote.Snapshot
	}
	var out []delivery
	for _, sub := range f.subs {
		if sub.stopped {
			continue
		}
		out = append(out, delivery{sub.fn, f.snapshotLocked(sub.path)})
	}

	f.mu.Unlock()
	for _, d := range out {
		d.fn(d.snap, nil)
	}
	f.mu.Lock()
}

func (f *Fake) snapshotLocked(path string) remote.Snapshot {
	snap := remote.Snapshot{}
	node, ok := f.getLocked(path).(map[string]any)
	if !ok {
		return snap
	}
	for k, v := range node {
		raw, err := json.Marshal(v)
		if err != nil {
			continue
		}
		snap[k] = raw
	}
	return snap
}

func (f *Fake) getLocked(path string) any {
	var node any = f.tree
	for _, seg := range strings.Split(strings.Trim(path, "/"), "/") {
		m, ok := node.(map[string]any)
		if !ok {
			return nil
		}
		node = m[seg]
	}
	return node
}

func (f *Fake) setLocked(path string, value any) {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	m := f.tree
	for i, seg := range segs {
		if i == len(segs)-1 {
			if value == nil {
				delete(m, seg)
			} else {
				m[seg] = value
			}
			return
		}
		child, ok := m[seg].(map[string]any)
		if !ok {
			child = make(map[string]any)
			m[seg] = child
		}
		m = child
	}
}
