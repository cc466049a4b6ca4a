package state

import (
	"context"
	"sync"
)

// CursorStore persists the Telegram "last seen update" cursor between
// polling iterations.
type CursorStore interface {
	Load(ctx context.Context) (int, error)
	Store(ctx context.Context, offset int) error
}

// MemoryCursor keeps the cursor in process memory. It resets on
// restart, which makes /start registration at-least-once.
type MemoryCursor struct {
	mu     sync.Mutex
	offset int
}

// NewMemoryCursor creates an in-memory cursor store
func NewMemoryCursor() *MemoryCursor {
	return &MemoryCursor{}
}

// Load returns the last stored offset
func (c *MemoryCursor) Load(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.offset, nil
}

// Store records the offset, never moving it backwards
func (c *MemoryCursor) Store(ctx context.Context, offset int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if offset > c.offset {
		c.offset = offset
	}
	return nil
}
