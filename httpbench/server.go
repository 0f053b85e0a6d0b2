package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/echlebek/msgq"
	"golang.org/x/sync/errgroup"
)

const (
	kindEcho msgq.Kind = iota + 1
	kindEchoReply
)

type handler struct {
	q       *msgq.Queue
	logger  *slog.Logger
	maxBody int64
}

func newHandler(q *msgq.Queue, logger *slog.Logger, maxBody int64) http.Handler {
	h := &handler{q: q, logger: logger, maxBody: maxBody}
	mux := http.NewServeMux()
	mux.HandleFunc("/", h.echo)
	mux.HandleFunc("/metrics", h.metrics)
	return mux
}

// echo turns the request body into a queue request and writes back the
// reply a worker produced for it.
func (h *handler) echo(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, req.Body, h.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	reply := h.q.Request(msgq.NewDataMsg(kindEcho, body))
	data, ok := reply.(*msgq.DataMsg[[]byte])
	if !ok || reply.Kind() != kindEchoReply {
		h.logger.ErrorContext(
			req.Context(),
			"unexpected reply",
			slog.String("queue", h.q.Name()),
			slog.Int("kind", int(reply.Kind())),
		)
		http.Error(w, "unexpected reply", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := w.Write(data.Payload()); err != nil {
		h.logger.DebugContext(req.Context(), "write reply", slog.String("error", err.Error()))
	}
}

func (h *handler) metrics(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.q.Metrics()); err != nil {
		h.logger.DebugContext(req.Context(), "write metrics", slog.String("error", err.Error()))
	}
}

// work answers echo requests until ctx is done. A cancelled worker notices
// at its next Get timeout.
func work(ctx context.Context, q *msgq.Queue, timeout time.Duration, logger *slog.Logger) error {
	for ctx.Err() == nil {
		msg := q.Get(timeout)
		switch msg.Kind() {
		case msgq.KindTimeout:
		case kindEcho:
			body := msg.(*msgq.DataMsg[[]byte]).Payload()
			q.RespondTo(msg.ID(), msgq.NewDataMsg(kindEchoReply, body))
		default:
			logger.WarnContext(
				ctx,
				"ignoring message",
				slog.String("queue", q.Name()),
				slog.Int("kind", int(msg.Kind())),
				slog.Uint64("id", uint64(msg.ID())),
			)
		}
	}
	return nil
}

func startWorkers(ctx context.Context, q *msgq.Queue, cfg Config, logger *slog.Logger) *errgroup.Group {
	var g errgroup.Group
	for i := 0; i < cfg.Workers; i++ {
		g.Go(func() error {
			return work(ctx, q, cfg.GetTimeout, logger)
		})
	}
	return &g
}

// serve runs the HTTP front and its workers until ctx is done. Workers are
// stopped only after the server has drained, since in-flight handlers wait on
// them.
func serve(ctx context.Context, cfg Config, logger *slog.Logger) error {
	q := msgq.New(msgq.WithName(cfg.QueueName), msgq.WithLogger(logger))

	workCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	workers := startWorkers(workCtx, q, cfg, logger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           newHandler(q, logger, cfg.MaxBodyBytes),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info(
			"httpbench listening",
			slog.String("addr", srv.Addr),
			slog.String("queue", q.Name()),
			slog.Int("workers", cfg.Workers),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	err := g.Wait()

	stopWorkers()
	if werr := workers.Wait(); err == nil {
		err = werr
	}
	logger.Info("httpbench stopped", slog.Any("metrics", q.Metrics()))
	return err
}
