package usecase

// Slot holds at most one item waiting for an operator decision.
// It is not safe for concurrent use; the relay guards it with its own lock.
type Slot[T any] struct {
	item *T
}

// Put stores v and reports whether an unresolved item was replaced.
func (that *Slot[T]) Put(v T) bool {
	overwritten := that.item != nil
	that.item = &v
	return overwritten
}

func (that *Slot[T]) Peek() (T, bool) {
	if that.item == nil {
		var zero T
		return zero, false
	}
	return *that.item, true
}

func (that *Slot[T]) Clear() {
	that.item = nil
}
