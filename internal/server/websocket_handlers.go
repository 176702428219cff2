package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MeKo-Tech/barcoded/internal/i18n"
	"github.com/MeKo-Tech/barcoded/internal/render"
)

const (
	wsReadTimeout  = 60 * time.Second
	wsPingInterval = 30 * time.Second
	wsWriteTimeout = 10 * time.Second
	wsMaxMessage   = 1 << 20
)

// WebSocketRequest is a render job sent over the preview socket. Lang
// overrides the Accept-Language of the upgrade request.
type WebSocketRequest struct {
	render.Job
	Lang string `json:"lang,omitempty"`
}

// WebSocketResponse is a rendered document or an error.
type WebSocketResponse struct {
	Type        string `json:"type"` // "result" or "error"
	Status      int    `json:"status"`
	ContentType string `json:"contentType,omitempty"`
	Filename    string `json:"filename,omitempty"`
	Data        string `json:"data,omitempty"` // base64
	Message     string `json:"message,omitempty"`
}

// WebSocketConnWriter is an interface for writing WebSocket messages.
type WebSocketConnWriter interface {
	WriteMessage(messageType int, data []byte) error
}

func (s *Server) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || s.allowedOrigin(origin) != ""
		},
	}
}

// renderWebSocketHandler upgrades to a WebSocket and renders every text
// message with the same pipeline as the HTTP endpoints.
func (s *Server) renderWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	s.log.Info("WebSocket connection established", "remote_addr", r.RemoteAddr, "request_id", RequestID(r.Context()))
	lang := i18n.FromAcceptLanguage(r.Header.Get("Accept-Language"))
	s.handleWebSocketConnection(r.Context(), conn, lang)
}

// handleWebSocketConnection processes messages until the client goes away.
func (s *Server) handleWebSocketConnection(ctx context.Context, conn *websocket.Conn, lang i18n.Language) {
	conn.SetReadLimit(wsMaxMessage)
	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(wsPingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
					return
				}
			}
		}
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("WebSocket error", "error", err)
			}
			return
		}
		websocketMessagesTotal.WithLabelValues("received").Inc()
		if messageType == websocket.TextMessage {
			s.sendWebSocketResponse(conn, s.renderWebSocketMessage(ctx, data, lang))
		}
	}
}

// renderWebSocketMessage decodes and renders one message.
func (s *Server) renderWebSocketMessage(ctx context.Context, data []byte, lang i18n.Language) WebSocketResponse {
	var req WebSocketRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return WebSocketResponse{
			Type:    "error",
			Status:  http.StatusBadRequest,
			Message: fmt.Sprintf("Invalid message: %v", err),
		}
	}
	if req.Lang != "" {
		lang = i18n.FromAcceptLanguage(req.Lang)
	}

	start := time.Now()
	res, err := s.renderer.RenderJob(ctx, req.Job)
	status := render.Status(err)
	renderRequestsTotal.WithLabelValues(string(req.Kind), fmt.Sprint(status)).Inc()
	renderDuration.WithLabelValues(string(req.Kind)).Observe(time.Since(start).Seconds())
	if err != nil {
		if status == http.StatusInternalServerError {
			s.log.ErrorContext(ctx, "WebSocket render failed", "error", err)
		}
		return WebSocketResponse{Type: "error", Status: status, Message: render.Message(err, lang)}
	}
	defer res.Release()

	return WebSocketResponse{
		Type:        "result",
		Status:      http.StatusOK,
		ContentType: res.ContentType,
		Filename:    res.Filename,
		Data:        base64.StdEncoding.EncodeToString(res.Bytes()),
	}
}

// sendWebSocketResponse sends a response message over WebSocket.
func (s *Server) sendWebSocketResponse(conn WebSocketConnWriter, response WebSocketResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		s.log.Error("Failed to marshal WebSocket response", "error", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.log.Error("Failed to send WebSocket message", "error", err)
		return
	}
	websocketMessagesTotal.WithLabelValues("sent").Inc()
}
