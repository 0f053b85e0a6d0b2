package msgq

import (
	"fmt"
	"log/slog"
)

// Request puts msg in q and blocks until a reply to it is passed to
// RespondTo. The reply is returned to the caller.
//
// Request has no timeout. If nobody ever responds to msg.ID(), Request never
// returns.
func (q *Queue) Request(msg Message) Message {
	id := msg.ID()
	replies := q.register(id)
	defer q.unregister(id)

	q.Put(msg)

	return replies.Get(0)
}

// RespondTo hands reply to the goroutine blocked in Request for the message
// identified by reqID. If no such request is outstanding the reply is dropped.
// Either way the caller gives up ownership of reply.
func (q *Queue) RespondTo(reqID UID, reply Message) {
	q.responsesMu.Lock()
	replies, ok := q.responses[reqID]
	q.responsesMu.Unlock()

	if !ok {
		dropped := reply.Move()
		q.metrics.recordDropped()
		q.logger.Debug(
			"dropped reply to unknown request",
			slog.String("queue", q.name),
			slog.Uint64("request_id", uint64(reqID)),
			slog.Int("kind", int(dropped.Kind())),
		)
		return
	}

	replies.Put(reply)
	q.metrics.recordResponse()
}

// register must run before the request is visible to consumers, or a fast
// responder could answer before the reply queue exists.
func (q *Queue) register(id UID) *Queue {
	replies := newQueue(fmt.Sprintf("%s/reply-%d", q.name, id), q.logger)

	q.responsesMu.Lock()
	q.responses[id] = replies
	q.responsesMu.Unlock()

	q.metrics.recordRequest(1)
	q.logger.Debug(
		"request registered",
		slog.String("queue", q.name),
		slog.Uint64("request_id", uint64(id)),
	)
	return replies
}

func (q *Queue) unregister(id UID) {
	q.responsesMu.Lock()
	delete(q.responses, id)
	q.responsesMu.Unlock()

	q.metrics.recordRequest(-1)
}
