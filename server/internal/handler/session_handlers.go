package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/navid-fn/ecomdash/internal/service"
)

// SessionResponse is a session with the dashboard of its selection.
type SessionResponse struct {
	Session   service.SessionInfo `json:"session"`
	Dashboard DashboardResponse   `json:"dashboard"`
}

type SessionHandler struct {
	sessions   *service.SessionService
	dashboards *service.DashboardService
	logger     *logrus.Logger
	upgrader   websocket.Upgrader
}

func NewSessionHandler(sessions *service.SessionService, dashboards *service.DashboardService, logger *logrus.Logger) *SessionHandler {
	return &SessionHandler{
		sessions:   sessions,
		dashboards: dashboards,
		logger:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:   1024,
			WriteBufferSize:  64 * 1024,
			HandshakeTimeout: HandshakeTimeout,
		},
	}
}

func (h *SessionHandler) Create(c *gin.Context) {
	info, err := h.sessions.Create(c.Request.Context())
	if err != nil {
		abort(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, info)
}

func (h *SessionHandler) Get(c *gin.Context) {
	resp, err := h.response(c, c.Param("id"))
	if err != nil {
		abort(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SessionHandler) UpdateSelection(c *gin.Context) {
	var q SelectionQuery
	if err := c.ShouldBindJSON(&q); err != nil {
		abort(c, h.logger, fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}

	id := c.Param("id")
	if err := h.apply(c, id, q); err != nil {
		abort(c, h.logger, err)
		return
	}

	resp, err := h.response(c, id)
	if err != nil {
		abort(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SessionHandler) Delete(c *gin.Context) {
	if err := h.sessions.Delete(c.Param("id")); err != nil {
		abort(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// apply replaces the session's selection. Fields missing from q fall back
// to the whole-table defaults.
func (h *SessionHandler) apply(c *gin.Context, id string, q SelectionQuery) error {
	defaults, err := h.dashboards.DefaultSelection(c.Request.Context())
	if err != nil {
		return err
	}
	sel, err := q.Selection(defaults)
	if err != nil {
		return err
	}
	_, err = h.sessions.Select(c.Request.Context(), id, sel)
	return err
}

func (h *SessionHandler) response(c *gin.Context, id string) (SessionResponse, error) {
	d, err := h.sessions.Snapshot(c.Request.Context(), id)
	if err != nil {
		return SessionResponse{}, err
	}
	info, err := h.sessions.Get(id)
	if err != nil {
		return SessionResponse{}, err
	}
	return SessionResponse{
		Session:   info,
		Dashboard: newDashboardResponse(info.Selection, d),
	}, nil
}
