package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/navid-fn/ecomdash/internal/service"
)

// WebSocket timeouts and intervals for live sessions.
const (
	HandshakeTimeout = 5 * time.Second
	ReadTimeout      = 60 * time.Second
	WriteTimeout     = 10 * time.Second
	PingInterval     = 30 * time.Second
)

// Live message types.
const (
	MessageSnapshot = "snapshot"
	MessageError    = "error"
)

// LiveMessage is sent to live session clients: the dashboard after each
// selection, or the reason a selection was rejected.
type LiveMessage struct {
	Type      string             `json:"type"`
	SessionID string             `json:"session_id"`
	Dashboard *DashboardResponse `json:"dashboard,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// Live upgrades to a WebSocket. The client sends SelectionQuery messages
// and receives a LiveMessage for each, starting with the current one.
func (h *SessionHandler) Live(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.sessions.Get(id); err != nil {
		abort(c, h.logger, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader has already written the HTTP error
		h.logger.Warnf("[%s] WebSocket upgrade failed: %v", id, err)
		return
	}
	defer conn.Close()

	h.logger.Infof("[%s] Live session connected", id)
	if err := h.serveLive(c, conn, id); err != nil {
		h.logger.Warnf("[%s] Live session ended: %v", id, err)
		return
	}
	h.logger.Infof("[%s] Live session closed", id)
}

func (h *SessionHandler) serveLive(c *gin.Context, conn *websocket.Conn, id string) error {
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(ReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(ReadTimeout))
	})

	readErrors := make(chan error, 1)
	messages := make(chan []byte)

	go func() {
		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				readErrors <- err
				return
			}
			conn.SetReadDeadline(time.Now().Add(ReadTimeout))

			select {
			case messages <- message:
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := h.sendSnapshot(c, conn, id); err != nil {
		return err
	}

	pingTicker := time.NewTicker(PingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case err := <-readErrors:
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				return fmt.Errorf("read: %w", err)
			}
			return nil

		case message := <-messages:
			if err := h.handleLive(c, conn, id, message); err != nil {
				return err
			}

		case <-pingTicker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(WriteTimeout)); err != nil {
				return fmt.Errorf("ping: %w", err)
			}
		}
	}
}

// handleLive applies one selection message. Rejected selections are
// reported to the client; write failures and a vanished session end the
// connection.
func (h *SessionHandler) handleLive(c *gin.Context, conn *websocket.Conn, id string, message []byte) error {
	var q SelectionQuery
	if err := json.Unmarshal(message, &q); err != nil {
		return h.reject(conn, id, fmt.Errorf("%w: %w", ErrBadRequest, err))
	}
	if err := h.apply(c, id, q); err != nil {
		return h.reject(conn, id, err)
	}
	return h.sendSnapshot(c, conn, id)
}

func (h *SessionHandler) sendSnapshot(c *gin.Context, conn *websocket.Conn, id string) error {
	resp, err := h.response(c, id)
	if err != nil {
		return h.reject(conn, id, err)
	}
	return h.write(conn, LiveMessage{Type: MessageSnapshot, SessionID: id, Dashboard: &resp.Dashboard})
}

func (h *SessionHandler) reject(conn *websocket.Conn, id string, cause error) error {
	if err := h.write(conn, LiveMessage{Type: MessageError, SessionID: id, Error: cause.Error()}); err != nil {
		return err
	}
	if errors.Is(cause, service.ErrSessionNotFound) {
		return cause
	}
	return nil
}

func (h *SessionHandler) write(conn *websocket.Conn, msg LiveMessage) error {
	conn.SetWriteDeadline(time.Now().Add(WriteTimeout))
	return conn.WriteJSON(msg)
}
