package feedview

// Cursor is the single source of truth for which reel is in view.
// Every gesture handler resolves its intent against this one mutable
// object at the moment the intent is processed, never against a
// length or index captured when a listener was attached. That rule is
// what keeps fast gestures and asynchronously growing feeds from
// producing stuck or out-of-range cursors.
type Cursor struct {
	index  int
	length int
}

// SetLength records the latest feed length and clamps the index back
// into range if the feed shrank underneath it.
func (c *Cursor) SetLength(n int) {
	if n < 0 {
		n = 0
	}
	c.length = n
	c.clamp()
}

func (c *Cursor) clamp() {
	if c.length == 0 {
		c.index = 0
		return
	}
	if c.index >= c.length {
		c.index = c.length - 1
	}
	if c.index < 0 {
		c.index = 0
	}
}

// Advance moves one item forward. No-op at the end of the feed.
// Reports whether the cursor moved.
func (c *Cursor) Advance() bool {
	if c.index < c.length-1 {
		c.index++
		return true
	}
	return false
}

// Retreat moves one item back. No-op at the start of the feed.
// Reports whether the cursor moved.
func (c *Cursor) Retreat() bool {
	if c.index > 0 {
		c.index--
		return true
	}
	return false
}

// JumpTo moves directly to index i, clamped to the feed bounds.
// Reports whether the cursor moved.
func (c *Cursor) JumpTo(i int) bool {
	if c.length == 0 {
		return false
	}
	if i < 0 {
		i = 0
	}
	if i > c.length-1 {
		i = c.length - 1
	}
	if i == c.index {
		return false
	}
	c.index = i
	return true
}

// Index returns the current position.
func (c *Cursor) Index() int { return c.index }

// Length returns the feed length the cursor was last told about.
func (c *Cursor) Length() int { return c.length }

// Offset returns the continuous positional offset for an item extent:
// a pure function of the index and the item size, recomputed by the
// caller on every resize.
func (c *Cursor) Offset(extent int) int { return c.index * extent }
