package ledger

import (
	"fmt"

	"kalorikollen/domain"
)

// Log is an event sequence kept newest-first. Writes never touch the
// receiver; each returns a fresh slice that replaces the stored snapshot.
type Log[T any] []T

// Append puts entry at the front.
func (l Log[T]) Append(entry T) Log[T] {
	out := make(Log[T], 0, len(l)+1)
	out = append(out, entry)
	return append(out, l...)
}

// RemoveAt drops the entry at index i.
func (l Log[T]) RemoveAt(i int) (Log[T], error) {
	if i < 0 || i >= len(l) {
		return l, fmt.Errorf("%w: %d of %d", domain.ErrIndexOutOfRange, i, len(l))
	}
	out := make(Log[T], 0, len(l)-1)
	out = append(out, l[:i]...)
	return append(out, l[i+1:]...), nil
}

// RemoveFunc drops every entry for which match returns true.
func (l Log[T]) RemoveFunc(match func(T) bool) Log[T] {
	out := make(Log[T], 0, len(l))
	for _, e := range l {
		if !match(e) {
			out = append(out, e)
		}
	}
	return out
}

// Filter returns the entries for which keep returns true, in log order.
func (l Log[T]) Filter(keep func(T) bool) Log[T] {
	return l.RemoveFunc(func(e T) bool { return !keep(e) })
}
