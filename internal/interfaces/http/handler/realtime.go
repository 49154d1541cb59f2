package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/infrastructure/auth"
	"github.com/jewelry/backend/internal/infrastructure/realtime"
	"github.com/jewelry/backend/internal/interfaces/http/dto"
	"github.com/jewelry/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// SSEMessage represents one Server-Sent Events frame
type SSEMessage struct {
	Event string
	ID    string
	Data  string
}

// RealtimeHandler streams table change notifications as Server-Sent Events
type RealtimeHandler struct {
	BaseHandler
	hub        *realtime.Hub
	blacklist  auth.TokenBlacklist
	logger     *zap.Logger
	heartbeat  time.Duration
	maxClients int
}

// RealtimeOption configures a RealtimeHandler
type RealtimeOption func(*RealtimeHandler)

// WithRealtimeLogger sets the logger
func WithRealtimeLogger(logger *zap.Logger) RealtimeOption {
	return func(h *RealtimeHandler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithRealtimeHeartbeat sets the keep-alive interval
func WithRealtimeHeartbeat(interval time.Duration) RealtimeOption {
	return func(h *RealtimeHandler) {
		if interval > 0 {
			h.heartbeat = interval
		}
	}
}

// WithRealtimeBlacklist ends authenticated streams whose token is revoked.
// The check runs on every heartbeat.
func WithRealtimeBlacklist(blacklist auth.TokenBlacklist) RealtimeOption {
	return func(h *RealtimeHandler) {
		h.blacklist = blacklist
	}
}

// WithRealtimeMaxClients caps concurrent streams; zero means unlimited
func WithRealtimeMaxClients(max int) RealtimeOption {
	return func(h *RealtimeHandler) {
		h.maxClients = max
	}
}

// NewRealtimeHandler creates a new RealtimeHandler
func NewRealtimeHandler(hub *realtime.Hub, opts ...RealtimeOption) *RealtimeHandler {
	h := &RealtimeHandler{
		hub:        hub,
		logger:     zap.NewNop(),
		heartbeat:  25 * time.Second,
		maxClients: 1000,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Stream godoc
// @Summary      Subscribe to table changes
// @Description  Server-Sent Events stream of insert/update/delete/resequence notifications. Without tables, public tables are streamed (all tables for admins). orders, users, reviews and contact_submissions need an admin token; EventSource clients may pass it as access_token. An authenticated stream ends with a session_ended event when its token expires or is revoked.
// @Tags         realtime
// @Produce      text/event-stream
// @Param        tables query string false "Comma-separated table names"
// @Param        access_token query string false "Access token for clients that cannot set headers"
// @Success      200 {string} string "event stream"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /realtime/stream [get]
func (h *RealtimeHandler) Stream(c *gin.Context) {
	tables, ok := h.resolveTables(c)
	if !ok {
		return
	}

	if h.maxClients > 0 && h.hub.SubscriberCount() >= h.maxClients {
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeUnavailable, "Maximum number of realtime connections reached")
		return
	}

	sub := h.hub.Subscribe(tables...)
	defer sub.Close()

	clientID := uuid.NewString()
	log := h.logger.With(
		zap.String("client_id", clientID),
		zap.String("user_id", middleware.GetJWTUserID(c)),
		zap.Strings("tables", tables))
	log.Info("Realtime client connected")

	header := c.Writer.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	connected, _ := json.Marshal(gin.H{"client_id": clientID, "tables": tables})
	writeSSE(c.Writer, SSEMessage{Event: "connected", Data: string(connected)})
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	claims := middleware.GetJWTClaims(c)
	var expired <-chan time.Time
	if claims != nil {
		if exp := claims.GetExpiresAtTime(); !exp.IsZero() {
			timer := time.NewTimer(time.Until(exp))
			defer timer.Stop()
			expired = timer.C
		}
	}

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			log.Info("Realtime client disconnected")
			return
		case <-expired:
			log.Info("Realtime token expired, disconnecting client")
			endSession(c.Writer, "expired")
			return
		case <-ticker.C:
			if h.revoked(c, claims, log) {
				endSession(c.Writer, "revoked")
				return
			}
			writeSSE(c.Writer, SSEMessage{Event: "heartbeat", Data: fmt.Sprintf(`{"timestamp":%d}`, time.Now().Unix())})
			c.Writer.Flush()
		case evt, open := <-sub.C():
			if !open {
				log.Info("Realtime hub closed, disconnecting client")
				return
			}
			data, err := json.Marshal(evt)
			if err != nil {
				log.Error("Failed to marshal change event", zap.Error(err))
				continue
			}
			writeSSE(c.Writer, SSEMessage{
				Event: "change",
				ID:    fmt.Sprintf("%d", evt.At.UnixNano()),
				Data:  string(data),
			})
			c.Writer.Flush()
		}
	}
}

// revoked reports whether the stream's token was blacklisted since it
// connected. Blacklist errors keep the stream open.
func (h *RealtimeHandler) revoked(c *gin.Context, claims *auth.Claims, log *zap.Logger) bool {
	if claims == nil || h.blacklist == nil {
		return false
	}
	err := auth.CheckClaims(c.Request.Context(), h.blacklist, claims)
	switch {
	case err == nil:
		return false
	case errors.Is(err, auth.ErrTokenBlacklisted):
		log.Info("Realtime token revoked, disconnecting client")
		return true
	}
	log.Warn("Failed to check token revocation", zap.Error(err))
	return false
}

func endSession(w gin.ResponseWriter, reason string) {
	writeSSE(w, SSEMessage{Event: "session_ended", Data: fmt.Sprintf(`{"reason":%q}`, reason)})
	w.Flush()
}

// resolveTables validates the requested tables against the caller's role
func (h *RealtimeHandler) resolveTables(c *gin.Context) ([]string, bool) {
	claims := middleware.GetJWTClaims(c)
	isAdmin := claims != nil && claims.IsAdmin()

	var tables []string
	for _, t := range strings.Split(c.Query("tables"), ",") {
		t = strings.TrimSpace(strings.ReplaceAll(t, "-", "_"))
		if t == "" {
			continue
		}
		if !realtime.IsKnownTable(t) {
			h.BadRequest(c, "Unknown table: "+t)
			return nil, false
		}
		tables = append(tables, t)
	}

	if len(tables) == 0 {
		if isAdmin {
			// every table
			return []string{}, true
		}
		return realtime.PublicTables(), true
	}

	for _, t := range tables {
		if !realtime.IsAdminOnly(t) || isAdmin {
			continue
		}
		if claims == nil {
			h.Unauthorized(c, "Authentication required for table "+t)
		} else {
			h.Forbidden(c, "Admin role required for table "+t)
		}
		return nil, false
	}
	return tables, true
}

// writeSSE writes one event frame
func writeSSE(w io.Writer, msg SSEMessage) {
	if msg.Event != "" {
		fmt.Fprintf(w, "event: %s\n", msg.Event)
	}
	if msg.ID != "" {
		fmt.Fprintf(w, "id: %s\n", msg.ID)
	}
	fmt.Fprintf(w, "data: %s\n\n", msg.Data)
}
