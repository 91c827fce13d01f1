// Package chatproxy relays model completions to the browser as Server-Sent Events.
package chatproxy

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/orgball2608/contentflow/internal/llm"
	"github.com/orgball2608/contentflow/internal/metrics"
	"github.com/orgball2608/contentflow/internal/render"
	"github.com/orgball2608/contentflow/pkg/logger"
	"go.uber.org/fx"
)

const StreamIDHeader = "X-Stream-Id"

type Opts struct {
	fx.In

	Provider llm.Provider
	Logger   logger.Logger
	Metrics  *metrics.Metrics
}

type Handler struct {
	provider llm.Provider
	logger   logger.Logger
	metrics  *metrics.Metrics
}

func New(opts Opts) *Handler {
	return &Handler{
		provider: opts.Provider,
		logger:   opts.Logger.WithComponent("chat_proxy"),
		metrics:  opts.Metrics,
	}
}

var Module = fx.Module("chat_proxy",
	fx.Provide(New),
)

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	streamID := uuid.NewString()
	w.Header().Set(StreamIDHeader, streamID)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.reject(w, "Invalid JSON")
		return
	}
	if req.APIKey == "" {
		h.reject(w, "API key is required")
		return
	}
	if len(req.Messages) == 0 {
		h.reject(w, "Messages are required")
		return
	}

	ctx := r.Context()
	h.metrics.ChatActive.Inc()
	defer h.metrics.ChatActive.Dec()
	defer func() { h.metrics.ChatDuration.Observe(time.Since(started).Seconds()) }()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	rc := http.NewResponseController(w)
	rc.Flush()

	// Rejections such as a bad key or overload arrive as error events.
	stream, err := h.provider.Open(ctx, req.toLLM())
	if err != nil {
		if ctx.Err() != nil {
			h.metrics.ChatStreams.WithLabelValues(metrics.OutcomeCanceled).Inc()
			return
		}
		h.logger.Warn("Failed to open chat stream", "stream_id", streamID, "error", err)
		h.metrics.ChatStreams.WithLabelValues(metrics.OutcomeError).Inc()
		writeData(w, rc, Event{Error: err.Error()})
		return
	}
	defer stream.Close()

	h.logger.Debug("Chat stream opened", "stream_id", streamID, "messages", len(req.Messages), "platform", req.Platform)

	deltas := 0
	for stream.Next() {
		if err := writeData(w, rc, Event{Text: stream.Text()}); err != nil {
			h.logger.Debug("Client went away", "stream_id", streamID, "error", err)
			h.metrics.ChatStreams.WithLabelValues(metrics.OutcomeCanceled).Inc()
			return
		}
		deltas++
		h.metrics.ChatDeltas.Inc()
	}

	if ctx.Err() != nil {
		h.logger.Debug("Chat stream canceled", "stream_id", streamID, "deltas", deltas)
		h.metrics.ChatStreams.WithLabelValues(metrics.OutcomeCanceled).Inc()
		return
	}

	if err := stream.Err(); err != nil {
		h.logger.Warn("Chat stream failed", "stream_id", streamID, "deltas", deltas, "error", err)
		h.metrics.ChatStreams.WithLabelValues(metrics.OutcomeError).Inc()
		writeData(w, rc, Event{Error: err.Error()})
		return
	}

	fmt.Fprintf(w, "data: %s\n\n", Done)
	rc.Flush()

	h.metrics.ChatStreams.WithLabelValues(metrics.OutcomeDone).Inc()
	h.logger.Info("Chat stream finished", "stream_id", streamID, "deltas", deltas, "duration", time.Since(started))
}

// Deny answers requests over the rate limit.
func (h *Handler) Deny(w http.ResponseWriter, r *http.Request) {
	h.metrics.ChatStreams.WithLabelValues(metrics.OutcomeRejected).Inc()
	render.ErrorMessage(w, http.StatusTooManyRequests, "Too many requests")
}

func (h *Handler) reject(w http.ResponseWriter, msg string) {
	h.metrics.ChatStreams.WithLabelValues(metrics.OutcomeRejected).Inc()
	render.ErrorMessage(w, http.StatusBadRequest, msg)
}

func writeData(w http.ResponseWriter, rc *http.ResponseController, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	rc.Flush()
	return nil
}
