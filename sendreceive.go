package msgq

import (
	"log/slog"
	"time"
)

// Put takes ownership of msg and appends it to q, waking one goroutine blocked
// in Get. msg must not be used after Put returns.
func (q *Queue) Put(msg Message) {
	owned := msg.Move()
	q.messages.Lock()
	q.messages.Push(owned)
	q.messages.Unlock()
	q.metrics.recordPut()
	q.waker.Wake()
}

// Get removes the message at the head of q and returns it, blocking while q
// is empty.
//
// If timeout is zero or negative Get waits indefinitely. Otherwise, when the
// timeout elapses with q still empty, Get returns a new message of kind
// KindTimeout.
func (q *Queue) Get(timeout time.Duration) Message {
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}
	select {
	case q.turn <- struct{}{}:
	case <-expired:
		return q.expire(timeout)
	}
	defer func() { <-q.turn }()
	for {
		if msg := q.pop(); msg != nil {
			return msg
		}
		select {
		case <-q.waker.C:
		case <-expired:
			return q.expire(timeout)
		}
	}
}

func (q *Queue) pop() Message {
	q.messages.Lock()
	msg := q.messages.Pop()
	q.messages.Unlock()
	if msg != nil {
		q.metrics.recordDelivered()
	}
	return msg
}

// expire prefers a message that arrived just as the timer fired.
func (q *Queue) expire(timeout time.Duration) Message {
	if msg := q.pop(); msg != nil {
		return msg
	}
	q.metrics.recordTimeout()
	q.logger.Debug(
		"get timed out",
		slog.String("queue", q.name),
		slog.Duration("timeout", timeout),
	)
	return NewMsg(KindTimeout)
}
