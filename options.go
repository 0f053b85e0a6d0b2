package msgq

import "log/slog"

// Options can be passed to New.
type Option func(q *Queue)

// WithName names the queue in logs and String. By default a queue is named
// with a random UUIDv7.
func WithName(name string) Option {
	return func(q *Queue) {
		q.name = name
	}
}

// WithLogger sets the logger used for the queue's debug output. A nil logger
// is ignored and slog.Default() is kept.
func WithLogger(logger *slog.Logger) Option {
	return func(q *Queue) {
		if logger != nil {
			q.logger = logger
		}
	}
}
