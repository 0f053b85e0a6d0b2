package msgq

// waker wakes at most one goroutine waiting on C. Wakes that happen while
// nobody is waiting are remembered, so a waiter that checks its condition and
// then receives from C never misses one; it may see a stale wake instead and
// has to check again.
type waker struct {
	C chan struct{}
}

func newWaker() *waker {
	return &waker{C: make(chan struct{}, 1)}
}

func (w *waker) Wake() {
	select {
	case w.C <- struct{}{}:
	default:
	}
}
