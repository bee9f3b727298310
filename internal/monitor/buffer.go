// Package monitor implements the change-monitoring subsystem: a per-directory
// double-buffered pending-change list fed by the filesystem watcher, and a
// hashed-path registry of reload callbacks drained by the host's poll calls.
package monitor

import "sync"

// Buffer is the double-buffered pending-change list for one watched
// directory. The watcher thread appends into the back list; the poller swaps
// the back/front roles under the mutex and then walks the front list with no
// lock held. The swap is an O(1) slice-header exchange, so the watcher is
// never stalled behind callback dispatch no matter how many events are
// pending.
//
// Invariant: a path appended after a swap lands in the new back list and is
// returned by some future Drain; it is never lost and never returned twice
// for the same append.
type Buffer struct {
	mu    sync.Mutex
	back  []string
	front []string
}

// NewBuffer returns an empty pending-change buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Append records a changed path. Duplicates already pending in the back list
// are dropped, so one physical change burst dispatches once per poll
// interval. Safe for concurrent use with Drain.
func (b *Buffer) Append(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, p := range b.back {
		if p == path {
			return
		}
	}
	b.back = append(b.back, path)
}

// Drain swaps the back and front roles and returns the list of paths that
// were pending at the moment of the swap. The returned slice is owned by the
// caller until the next Drain; it is reused (truncated) as the new back list
// on the call after that.
func (b *Buffer) Drain() []string {
	b.mu.Lock()
	// previous front has been fully consumed; recycle its storage
	b.back, b.front = b.front[:0], b.back
	b.mu.Unlock()
	return b.front
}

// Pending returns the number of changes waiting in the back list.
func (b *Buffer) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.back)
}
