// Package history keeps a linear undo/redo stack of immutable snapshots.
package history

// State summarises what the history can currently do.
type State struct {
	CanUndo bool
	CanRedo bool
}

// History stores snapshots with a cursor. Index always points at a valid
// entry and the first entry is the empty value the history was created
// with. A History is not safe for concurrent use.
type History[T any] struct {
	empty   T
	entries []T
	index   int
}

// New returns a history whose only entry is empty.
func New[T any](empty T) *History[T] {
	return &History[T]{empty: empty, entries: []T{empty}}
}

// Commit drops every entry after the cursor, appends s and moves the cursor
// to it.
func (h *History[T]) Commit(s T) {
	h.entries = append(h.entries[:h.index+1:h.index+1], s)
	h.index = len(h.entries) - 1
}

// Undo moves the cursor back one entry. It reports whether the cursor moved.
func (h *History[T]) Undo() bool {
	if h.index == 0 {
		return false
	}
	h.index--
	return true
}

// Redo moves the cursor forward one entry. It reports whether the cursor
// moved.
func (h *History[T]) Redo() bool {
	if h.index >= len(h.entries)-1 {
		return false
	}
	h.index++
	return true
}

// Clear discards every snapshot and resets to the empty value.
func (h *History[T]) Clear() {
	h.entries = []T{h.empty}
	h.index = 0
}

// Current returns the snapshot under the cursor.
func (h *History[T]) Current() T { return h.entries[h.index] }

// Index returns the cursor position.
func (h *History[T]) Index() int { return h.index }

// Len returns the number of stored snapshots.
func (h *History[T]) Len() int { return len(h.entries) }

func (h *History[T]) CanUndo() bool { return h.index > 0 }

func (h *History[T]) CanRedo() bool { return h.index < len(h.entries)-1 }

// State returns CanUndo and CanRedo together.
func (h *History[T]) State() State {
	return State{CanUndo: h.CanUndo(), CanRedo: h.CanRedo()}
}
