package msgq

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Queue is a FIFO of messages. Its methods are goroutine-safe.
//
// A Queue is never closed. Goroutines blocked in Get or Request on a queue
// that nobody feeds anymore stay blocked.
type Queue struct {
	name     string
	messages *fifo
	waker    *waker
	// turn admits one consumer at a time to wait on waker.
	turn    chan struct{}
	logger  *slog.Logger
	metrics Metrics

	responsesMu sync.Mutex
	responses   map[UID]*Queue
}

// New creates an empty Queue.
func New(options ...Option) *Queue {
	q := newQueue("", slog.Default())
	for _, o := range options {
		o(q)
	}
	if q.name == "" {
		q.name = uuid.Must(uuid.NewV7()).String()
	}
	return q
}

func newQueue(name string, logger *slog.Logger) *Queue {
	return &Queue{
		name:      name,
		messages:  newFifo(1),
		waker:     newWaker(),
		turn:      make(chan struct{}, 1),
		logger:    logger,
		responses: make(map[UID]*Queue),
	}
}

// Name returns the name given with WithName, or the generated one.
func (q *Queue) Name() string {
	return q.name
}

// Len returns the number of messages waiting in q.
func (q *Queue) Len() int {
	q.messages.Lock()
	defer q.messages.Unlock()
	return q.messages.Len()
}

// Metrics returns a snapshot of q's counters.
func (q *Queue) Metrics() MetricsSnapshot {
	return q.metrics.Snapshot()
}

func (q *Queue) String() string {
	return fmt.Sprintf("Queue{Name: %q}", q.name)
}
