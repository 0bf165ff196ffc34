package transport

import (
	"fmt"
	"net/http"
	"time"

	"storefront/internal/middleware"
	"storefront/internal/notify"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// EventsHandler streams stock-change events to connected clients over
// server-sent events. Each connection subscribes to the broadcast channel for
// its lifetime; events published while a client is disconnected are lost.
type EventsHandler struct {
	redis  *redis.Client
	logger *zap.Logger
}

// NewEventsHandler creates a new EventsHandler
func NewEventsHandler(redisClient *redis.Client, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{
		redis:  redisClient,
		logger: logger,
	}
}

// RegisterRoutes registers the event stream route
func (h *EventsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/events", h.Stream)
}

// Stream holds the connection open and forwards broadcasts as SSE events
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		middleware.RespondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	// The stream outlives the server's write timeout
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		h.logger.Debug("Could not clear write deadline for event stream", zap.Error(err))
	}

	sub := notify.Subscribe(r.Context(), h.redis)
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	h.logger.Debug("Event stream client connected", zap.String("remote_addr", r.RemoteAddr))

	events := sub.Channel()
	for {
		select {
		case <-r.Context().Done():
			h.logger.Debug("Event stream client disconnected", zap.String("remote_addr", r.RemoteAddr))
			return
		case msg, open := <-events:
			if !open {
				return
			}

			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", notify.StockChannel, msg.Payload); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
