// Package playlist holds the ordered working set of creatives and the circular playback cursor over it.
package playlist

import (
	"github.com/samber/mo"
	"golang.org/x/exp/slices"

	"github.com/marquee-cli/marquee/creative"
	"github.com/marquee-cli/marquee/log"
)

// Cursor is a circular index into the active playlist.
//
// The playlist is only ever replaced wholesale; items are never mutated in
// place. On replacement the cursor keeps pointing at the same item by id when
// the new list still contains it, so an unrelated refresh never causes a
// visible jump or restart of whatever is on screen.
type Cursor struct {
	items []creative.Item
	index int
}

// Load replaces the working set atomically.
// Returns true when the previously-current item survived the replacement.
func (c *Cursor) Load(items []creative.Item) (kept bool) {
	previous, hadCurrent := c.Current().Get()

	c.items = items

	if len(items) == 0 {
		c.index = 0
		log.Info("playlist emptied")
		return false
	}

	if hadCurrent {
		if at := slices.IndexFunc(items, func(item creative.Item) bool {
			return item.ID == previous.ID
		}); at >= 0 {
			c.index = at
			return true
		}
	}

	c.index = 0
	return false
}

// Advance moves the cursor one position forward, wrapping around.
// Advancing an empty cursor is a no-op.
func (c *Cursor) Advance() {
	if len(c.items) == 0 {
		return
	}
	c.index = (c.index + 1) % len(c.items)
}

// Current returns the item under the cursor, or None when the playlist is empty.
func (c *Cursor) Current() mo.Option[creative.Item] {
	if len(c.items) == 0 {
		return mo.None[creative.Item]()
	}
	return mo.Some(c.items[c.index%len(c.items)])
}

// Next returns the one-ahead lookahead item, also circular.
// For a single-item playlist, Next is the current item itself.
func (c *Cursor) Next() mo.Option[creative.Item] {
	if len(c.items) == 0 {
		return mo.None[creative.Item]()
	}
	return mo.Some(c.items[(c.index+1)%len(c.items)])
}

// Len returns the number of items in the working set.
func (c *Cursor) Len() int {
	return len(c.items)
}

// Empty reports whether the cursor has no items to play.
func (c *Cursor) Empty() bool {
	return len(c.items) == 0
}

// Items returns the working set. The returned slice must not be mutated.
func (c *Cursor) Items() []creative.Item {
	return c.items
}

// Index returns the current cursor position.
func (c *Cursor) Index() int {
	return c.index
}
