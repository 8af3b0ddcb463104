package remote

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/tahmid-dev/reelview/internal/logging"
)

// writeTimeout bounds individual write requests. Streaming reads are
// bounded by context only.
const writeTimeout = 15 * time.Second

// reconnectInterval paces subscription reconnects after stream drops.
const reconnectInterval = 2 * time.Second

// RTDB talks the Firebase Realtime Database REST dialect: plain JSON
// writes against {base}/{path}.json and SSE streaming reads.
type RTDB struct {
	baseURL string
	auth    string

	writer   *http.Client // bounded timeout, one request per write
	streamer *http.Client // no timeout; streams live until ctx ends
}

// NewRTDB creates a client for the store rooted at baseURL
// (e.g. "https://myproject-default-rtdb.firebaseio.com"). auth may be
// empty for unauthenticated databases.
func NewRTDB(baseURL, auth string) *RTDB {
	return &RTDB{
		baseURL:  strings.TrimRight(baseURL, "/"),
		auth:     auth,
		writer:   &http.Client{Timeout: writeTimeout},
		streamer: &http.Client{},
	}
}

var _ Client = (*RTDB)(nil)

// endpoint builds the REST URL for a store path.
func (c *RTDB) endpoint(path string) string {
	u := c.baseURL + "/" + strings.Trim(path, "/") + ".json"
	if c.auth != "" {
		u += "?auth=" + c.auth
	}
	return u
}

// CreateItem generates a push key and writes data under it in a
// single PUT. The key is returned so the caller can use it as the
// item's own ID.
func (c *RTDB) CreateItem(ctx context.Context, path string, data map[string]any) (string, error) {
	id := NewPushID()
	if err := c.put(ctx, path+"/"+id, data); err != nil {
		return "", storeErr("create", path, err)
	}
	return id, nil
}

// AppendChild has the same generated-key semantics as CreateItem,
// scoped under a parent path.
func (c *RTDB) AppendChild(ctx context.Context, path string, data map[string]any) (string, error) {
	id := NewPushID()
	if err := c.put(ctx, path+"/"+id, data); err != nil {
		return "", storeErr("append", path, err)
	}
	return id, nil
}

// Increment applies a server-side atomic increment and returns the
// resolved value. The server value write form makes the store perform
// the read-modify-write, so concurrent likers never lose updates.
func (c *RTDB) Increment(ctx context.Context, path string, delta int64) (int64, error) {
	body := fmt.Sprintf(`{".sv":{"increment":%d}}`, delta)
	resp, err := c.write(ctx, http.MethodPut, path, []byte(body))
	if err != nil {
		return 0, storeErr("increment", path, err)
	}
	n, err := strconv.ParseInt(strings.TrimSpace(string(resp)), 10, 64)
	if err != nil {
		return 0, storeErr("increment", path, fmt.Errorf("unexpected response %q: %w", resp, err))
	}
	return n, nil
}

// put marshals data and PUTs it at path.
func (c *RTDB) put(ctx context.Context, path string, data map[string]any) error {
	body, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = c.write(ctx, http.MethodPut, path, body)
	return err
}

// write performs one REST write and returns the response body.
func (c *RTDB) write(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.writer.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(out)))
	}
	return out, nil
}

// Subscribe opens an SSE stream for path and keeps it open, with
// paced reconnects, until stop is called or ctx ends. Each stream
// event updates a local mirror of the subtree and fn receives the full
// contents, matching the store's whole-collection delivery model.
func (c *RTDB) Subscribe(ctx context.Context, path string, fn SnapshotFunc) (func(), error) {
	ctx, cancel := context.WithCancel(ctx)
	sub := &subscription{fn: fn}

	go c.streamLoop(ctx, path, sub)

	var once sync.Once
	stop := func() {
		once.Do(func() {
			sub.close()
			cancel()
		})
	}
	return stop, nil
}

// subscription guards callback delivery. close blocks until any
// in-flight callback returns, so a caller that has stopped never sees
// another snapshot.
type subscription struct {
	mu      sync.Mutex
	stopped bool
	fn      SnapshotFunc
}

func (s *subscription) deliver(snap Snapshot, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.fn(snap, err)
}

func (s *subscription) close() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
}

// streamLoop reconnects the SSE stream until the context ends or the
// stream fails permanently (revoked auth, forbidden path).
func (c *RTDB) streamLoop(ctx context.Context, path string, sub *subscription) {
	limiter := rate.NewLimiter(rate.Every(reconnectInterval), 1)

	for {
		if err := limiter.Wait(ctx); err != nil {
			return
		}

		err := c.stream(ctx, path, sub)
		if err == nil || ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return
		}
		if isPermanent(err) {
			logging.Error("subscription failed permanently", "path", path, "err", err)
			sub.deliver(nil, storeErr("subscribe", path, err))
			return
		}
		logging.Warn("stream dropped, reconnecting", "path", path, "err", err)
	}
}

// permanentStreamError marks stream failures that reconnecting cannot
// fix.
type permanentStreamError struct{ reason string }

func (e *permanentStreamError) Error() string { return e.reason }

func isPermanent(err error) bool {
	var p *permanentStreamError
	return errors.As(err, &p)
}

// stream runs one SSE connection, mirroring put/patch events into a
// local tree and delivering a full snapshot after each one.
func (c *RTDB) stream(ctx context.Context, path string, sub *subscription) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.streamer.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return &permanentStreamError{reason: "permission denied: HTTP " + strconv.Itoa(resp.StatusCode)}
	default:
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	var tree any
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	event, data := "", ""
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if err := handleEvent(event, data, &tree, sub); err != nil {
				return err
			}
			event, data = "", ""
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if data != "" {
				data += "\n"
			}
			data += strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return fmt.Errorf("stream closed: %w", io.ErrUnexpectedEOF)
}

// sseEvent is the payload of RTDB put and patch events.
type sseEvent struct {
	Path string          `json:"path"`
	Data json.RawMessage `json:"data"`
}

// handleEvent applies one SSE event to the mirrored tree and notifies
// the subscriber.
func handleEvent(event, data string, tree *any, sub *subscription) error {
	switch event {
	case "put", "patch":
		var ev sseEvent
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			return fmt.Errorf("malformed %s event: %w", event, err)
		}
		var value any
		if len(ev.Data) > 0 {
			if err := json.Unmarshal(ev.Data, &value); err != nil {
				return fmt.Errorf("malformed %s data: %w", event, err)
			}
		}
		if event == "put" {
			setTreePath(tree, splitTreePath(ev.Path), value)
		} else {
			patch, _ := value.(map[string]any)
			for k, v := range patch {
				setTreePath(tree, append(splitTreePath(ev.Path), k), v)
			}
		}
		sub.deliver(snapshotOf(*tree), nil)
		return nil

	case "keep-alive", "":
		return nil

	case "cancel":
		return &permanentStreamError{reason: "subscription cancelled by server"}
	case "auth_revoked":
		return &permanentStreamError{reason: "auth revoked"}
	default:
		// Unknown event types are ignored per the SSE contract.
		return nil
	}
}

// splitTreePath turns an event path like "/abc/likeCount" into
// segments. The root path "/" yields nil.
func splitTreePath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// setTreePath sets value at the segment path inside tree, creating
// intermediate maps as needed. A nil value deletes the child.
func setTreePath(tree *any, segs []string, value any) {
	if len(segs) == 0 {
		*tree = value
		return
	}

	m, ok := (*tree).(map[string]any)
	if !ok {
		m = make(map[string]any)
		*tree = m
	}

	key := segs[0]
	if len(segs) == 1 {
		if value == nil {
			delete(m, key)
		} else {
			m[key] = value
		}
		return
	}

	child := m[key]
	setTreePath(&child, segs[1:], value)
	m[key] = child
}

// snapshotOf converts the mirrored tree into the keyed Snapshot form.
// RTDB serves dense integer-keyed collections as arrays; those are
// re-keyed by index so consumers always see a map.
func snapshotOf(tree any) Snapshot {
	snap := Snapshot{}
	switch t := tree.(type) {
	case nil:
		return snap
	case map[string]any:
		for k, v := range t {
			raw, err := json.Marshal(v)
			if err != nil {
				continue
			}
			snap[k] = raw
		}
	case []any:
		for i, v := range t {
			if v == nil {
				continue
			}
			raw, err := json.Marshal(v)
			if err != nil {
				continue
			}
			snap[strconv.Itoa(i)] = raw
		}
	}
	return snap
}
