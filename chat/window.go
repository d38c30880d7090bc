package chat

import (
	"sync"
)

// Controller tracks a client's position while walking a chat's history
// backwards, page by page. It owns the accumulated items, the cursor to
// resume from, and an in-flight guard so that at most one page fetch per
// controller runs at a time.
//
// The controller is fetch-agnostic: callers obtain the next Window from it,
// run MessagePage (or any equivalent) themselves, and hand the result back
// through Finish. A failed fetch leaves the position untouched, so the same
// window can simply be retried.
type Controller struct {
	mu       sync.Mutex
	limit    int
	after    *Cursor
	items    []*Message
	seen     map[int64]struct{}
	hasMore  bool
	inFlight bool
}

// NewController returns a controller positioned at the newest message, with
// the given page size. A non-positive limit falls back to 50.
func NewController(limit int) *Controller {
	if limit <= 0 {
		limit = 50
	}
	return &Controller{
		limit:   limit,
		seen:    make(map[int64]struct{}),
		hasMore: true,
	}
}

// Window returns the window the next fetch should use.
func (c *Controller) Window() Window {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Window{After: c.after, Limit: c.limit}
}

// Begin marks a fetch as started and returns its window. It reports false,
// without changing state, when a fetch is already in flight or the history
// is exhausted.
func (c *Controller) Begin() (Window, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight || !c.hasMore {
		return Window{}, false
	}
	c.inFlight = true
	return Window{After: c.after, Limit: c.limit}, true
}

// Finish completes the fetch started by Begin. On success the page is merged
// into the accumulated items and the position advances; on error the
// position stays where Begin left it, so the next Begin retries the same
// window.
func (c *Controller) Finish(p *Page, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false
	if err != nil || p == nil {
		return
	}
	for _, m := range p.Items {
		if _, dup := c.seen[m.ID]; dup {
			continue
		}
		c.seen[m.ID] = struct{}{}
		c.items = append(c.items, m)
	}
	// Advance only strictly backwards. A stale or repeated page can never
	// move the cursor forward again.
	if p.Cursor != nil && (c.after == nil || p.Cursor.Less(*c.after)) {
		c.after = p.Cursor
		c.hasMore = p.HasMore
	} else if p.Cursor == nil {
		c.hasMore = false
	}
}

// Reset rewinds the controller to the newest message, discarding everything
// accumulated so far.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.after = nil
	c.items = nil
	c.seen = make(map[int64]struct{})
	c.hasMore = true
	c.inFlight = false
}

// Items returns a copy of the accumulated messages, newest first.
func (c *Controller) Items() []*Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Message(nil), c.items...)
}

// HasMore reports whether older messages remain to fetch.
func (c *Controller) HasMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasMore
}

// InFlight reports whether a fetch begun with Begin has not finished yet.
func (c *Controller) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// MergeOlder appends a page of older messages to an existing newest-first
// slice, dropping any message already present by id. The existing prefix is
// never reordered, so items on screen do not move when history loads.
func MergeOlder(existing []*Message, page *Page) []*Message {
	if page == nil || len(page.Items) == 0 {
		return existing
	}
	seen := make(map[int64]struct{}, len(existing))
	for _, m := range existing {
		seen[m.ID] = struct{}{}
	}
	out := existing
	for _, m := range page.Items {
		if _, dup := seen[m.ID]; dup {
			continue
		}
		out = append(out, m)
	}
	return out
}
