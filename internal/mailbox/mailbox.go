// Package mailbox provides a single-slot, last-write-wins channel that never
// blocks or allocates on either end. It is the only primitive used to hand
// values to the audio goroutine.
package mailbox

import "sync/atomic"

// fresh marks the shared cell as holding a value not yet received.
const fresh = 4

// Mailbox holds at most one unread value. Send overwrites any value that has
// not been received yet, so a slow receiver only ever sees the latest one.
//
// Values live in three preallocated cells: one owned by the sender, one by
// the receiver and one shared. Send fills its own cell and swaps it with the
// shared one; Recv swaps its cell with the shared one. At most one goroutine
// may Send and one may Recv at a time.
//
// The zero value is an empty mailbox ready for use. A Mailbox must not be
// copied after first use.
type Mailbox[T any] struct {
	cells [3]T
	// shared is the shared cell's index xor 2, plus the fresh bit. front is
	// the receiver's index xor 1. The offsets make the zero value start
	// with three distinct cells.
	shared atomic.Uint32
	back   uint32
	front  uint32
}

// New returns an empty mailbox.
func New[T any]() *Mailbox[T] {
	return &Mailbox[T]{}
}

// Send stores v, dropping any unread value.
func (m *Mailbox[T]) Send(v T) {
	m.cells[m.back] = v
	old := m.shared.Swap((m.back ^ 2) | fresh)
	m.back = (old &^ fresh) ^ 2
}

// Recv returns the most recently sent value that has not been returned yet.
// The second result is false when nothing new arrived since the last Recv.
func (m *Mailbox[T]) Recv() (T, bool) {
	if m.shared.Load()&fresh == 0 {
		var zero T
		return zero, false
	}
	mine := m.front ^ 1
	old := m.shared.Swap(mine ^ 2)
	mine = (old &^ fresh) ^ 2
	m.front = mine ^ 1
	return m.cells[mine], true
}
