// Package remote defines the client contract for the real-time store
// that holds all durable reel state, plus the wire conventions shared
// by its backends (push keys, server timestamps, error wrapping).
//
// The client is explicitly constructed and injected into every
// component that talks to the store. Nothing in this repository
// reaches for an ambient global handle.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
)

// Snapshot is the full contents of a subscribed collection: child key
// to raw payload. The store delivers the complete collection on every
// change; there is no incremental diffing.
type Snapshot map[string]json.RawMessage

// SnapshotFunc receives collection snapshots. A non-nil err means the
// subscription failed permanently; no further calls follow it.
type SnapshotFunc func(snap Snapshot, err error)

// Client is the four-operation store surface the rest of the
// application depends on. All operations fail with *StoreError on
// transport or permission failure.
type Client interface {
	// CreateItem writes data under a freshly generated child key of
	// path in a single write and returns the key.
	CreateItem(ctx context.Context, path string, data map[string]any) (string, error)

	// Subscribe invokes fn with the current contents of path and again
	// on every subsequent change, until the returned stop function is
	// called. Stop is idempotent, and fn is never invoked after stop
	// returns.
	Subscribe(ctx context.Context, path string, fn SnapshotFunc) (stop func(), err error)

	// Increment atomically adds delta to the counter at path and
	// returns the new value. Never implemented as read-then-write of a
	// locally cached value.
	Increment(ctx context.Context, path string, delta int64) (int64, error)

	// AppendChild is CreateItem scoped under a parent path.
	AppendChild(ctx context.Context, path string, data map[string]any) (string, error)
}

// StoreError wraps any failure from the remote store: network,
// permission, HTTP status, transaction conflict. Callers match it
// with errors.As and handle all variants the same way (rollback plus
// a transient notice).
type StoreError struct {
	Op   string // "create", "subscribe", "increment", "append"
	Path string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// storeErr wraps err unless it is already a *StoreError.
func storeErr(op, path string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*StoreError); ok {
		return err
	}
	return &StoreError{Op: op, Path: path, Err: err}
}

// serverTimestamp marks a field to be filled in by the store at write
// time. The client clock is never trusted for ordering.
type serverTimestamp struct{}

// ServerTimestamp is the sentinel value placed in write payloads where
// the store should assign its own timestamp.
var ServerTimestamp any = serverTimestamp{}

// MarshalJSON encodes the sentinel in the RTDB server-value dialect.
func (serverTimestamp) MarshalJSON() ([]byte, error) {
	return []byte(`{".sv":"timestamp"}`), nil
}

// ResolveServerValues returns a copy of data with ServerTimestamp
// sentinels replaced by now (epoch millis). Local backends, which have
// no server to defer to, call this at write time.
func ResolveServerValues(data map[string]any, now int64) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		switch v := v.(type) {
		case serverTimestamp:
			out[k] = now
		case map[string]any:
			out[k] = ResolveServerValues(v, now)
		default:
			out[k] = v
		}
	}
	return out
}
