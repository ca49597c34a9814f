package app

// Mailbox is a single-slot, latest-wins hand-off between goroutines. Post
// never blocks: an unread value is replaced by the newer one.
type Mailbox[T any] struct {
	ch chan T
}

// NewMailbox creates an empty mailbox.
func NewMailbox[T any]() *Mailbox[T] {
	return &Mailbox[T]{ch: make(chan T, 1)}
}

// Post stores v, reporting whether an unread value was discarded to make room.
func (m *Mailbox[T]) Post(v T) (dropped bool) {
	return m.Merge(v, func(_, next T) T { return next })
}

// Merge is Post with a say in what replaces an unread value: merge receives
// the discarded value and the one about to be stored and returns what is
// stored instead.
func (m *Mailbox[T]) Merge(v T, merge func(pending, next T) T) (dropped bool) {
	for {
		select {
		case m.ch <- v:
			return dropped
		default:
		}
		select {
		case pending := <-m.ch:
			v = merge(pending, v)
			dropped = true
		default:
		}
	}
}

// C returns the channel the consumer receives from.
func (m *Mailbox[T]) C() <-chan T {
	return m.ch
}

// TryReceive returns the pending value, if any, without blocking.
func (m *Mailbox[T]) TryReceive() (T, bool) {
	select {
	case v := <-m.ch:
		return v, true
	default:
		var zero T
		return zero, false
	}
}
