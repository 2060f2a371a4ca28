package websocket

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"disciplinedash/internal/config"
	"disciplinedash/internal/infrastructure"
	"disciplinedash/pkg/contracts/domain"
	"disciplinedash/pkg/contracts/events"
)

// StatusProvider reports the current dataset state
type StatusProvider interface {
	Status() domain.DatasetStatus
}

// Handler upgrades /ws requests and attaches the connection to the hub.
// Every new client is told the current dataset state right after connecting.
type Handler struct {
	hub      *Hub
	status   StatusProvider
	opts     Options
	origins  []string
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates the upgrade handler. status may be nil.
func NewHandler(hub *Hub, status StatusProvider, cfg config.WebSocketConfig, allowedOrigins []string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	h := &Handler{
		hub:     hub,
		status:  status,
		opts:    OptionsFrom(cfg),
		origins: allowedOrigins,
		logger:  logger.With(slog.String("component", "websocket.handler")),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin:     h.checkOrigin,
		Error: func(w http.ResponseWriter, r *http.Request, status int, reason error) {
			h.logger.ErrorContext(r.Context(), "WebSocket upgrade error",
				slog.Int("status", status),
				slog.String("reason", reason.Error()),
				slog.String("origin", r.Header.Get("Origin")))
			http.Error(w, http.StatusText(status), status)
		},
	}
	return h
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	traceID := infrastructure.GetTraceID(ctx)
	if traceID == "" {
		traceID = infrastructure.GenerateTraceID()
		ctx = infrastructure.WithTraceID(ctx, traceID)
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already answered the request
		return
	}

	client := NewClient(h.hub, newUpgradedConn(conn), traceID, h.opts, h.logger)
	if h.status != nil {
		if err := client.SetGreeting(events.NewDatasetMessage(h.status.Status(), "connect", traceID)); err != nil {
			h.logger.WarnContext(ctx, "Failed to encode dataset status for client",
				slog.String("error", err.Error()))
		}
	}

	if !h.hub.Register(client) {
		h.logger.WarnContext(ctx, "Hub stopped, rejecting WebSocket client")
		conn.Close()
		return
	}

	h.logger.InfoContext(ctx, "WebSocket client connected",
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("client_id", client.ID()))

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				h.logger.ErrorContext(ctx, "WebSocket write pump panic", slog.Any("panic", rec))
			}
		}()
		client.WritePump()
	}()
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				h.logger.ErrorContext(ctx, "WebSocket read pump panic", slog.Any("panic", rec))
			}
		}()
		client.ReadPump()
	}()
}

// checkOrigin allows requests without an Origin, same-host origins and the
// configured allow-list. "*" in the list allows every origin.
func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	if u, err := url.Parse(origin); err == nil && strings.EqualFold(u.Host, r.Host) {
		return true
	}

	for _, allowed := range h.origins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}

	h.logger.WarnContext(r.Context(), "WebSocket origin check - origin not allowed",
		slog.String("origin", origin),
		slog.Any("allowed_origins", h.origins))
	return false
}
