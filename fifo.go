package msgq

import "sync"

// fifo is an unbounded ring buffer of owned messages. Callers must hold the
// embedded mutex.
type fifo struct {
	sync.Mutex
	buf  []Message
	head int
	n    int
}

func newFifo(capacity int) *fifo {
	if capacity < 1 {
		capacity = 1
	}
	return &fifo{buf: make([]Message, capacity)}
}

func (f *fifo) Push(m Message) {
	if f.n == len(f.buf) {
		f.grow()
	}
	f.buf[(f.head+f.n)%len(f.buf)] = m
	f.n++
}

// Pop returns nil when the fifo is empty.
func (f *fifo) Pop() Message {
	if f.n == 0 {
		return nil
	}
	m := f.buf[f.head]
	f.buf[f.head] = nil
	f.head = (f.head + 1) % len(f.buf)
	f.n--
	return m
}

func (f *fifo) Len() int {
	return f.n
}

func (f *fifo) Cap() int {
	return len(f.buf)
}

func (f *fifo) grow() {
	buf := make([]Message, 2*len(f.buf))
	for i := 0; i < f.n; i++ {
		buf[i] = f.buf[(f.head+i)%len(f.buf)]
	}
	f.buf = buf
	f.head = 0
}
