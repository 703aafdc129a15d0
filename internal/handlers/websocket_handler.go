package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/latestcomment/influence-scoring/internal/models"
	"github.com/latestcomment/influence-scoring/internal/services"
	"go.uber.org/zap"
)

// FieldUpdate is sent by the page whenever an input changes.
type FieldUpdate struct {
	Step   string            `json:"step"`
	Fields map[string]string `json:"fields"`
}

// FieldStatus answers every update with what the active step still needs.
type FieldStatus struct {
	Step    string   `json:"step"`
	Missing []string `json:"missing"`
	Error   string   `json:"error,omitempty"`
}

type WebSocketHandler struct {
	Service *services.SessionService
	logger  *zap.Logger
}

func NewWebSocketHandler(service *services.SessionService, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{Service: service, logger: logger}
}

// WebSocketMiddleware admits upgrade requests that carry a live session.
func (h *WebSocketHandler) WebSocketMiddleware(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	id, err := uuid.Parse(c.Cookies(sessionCookie))
	if err != nil {
		return fiber.ErrUnauthorized
	}
	if _, err := h.Service.GetSession(id); err != nil {
		return fiber.ErrUnauthorized
	}
	c.Locals("session", id)
	return c.Next()
}

func (h *WebSocketHandler) Upgrade() fiber.Handler {
	return websocket.New(h.HandleWebSocket)
}

func (h *WebSocketHandler) HandleWebSocket(c *websocket.Conn) {
	defer func() {
		_ = c.Close()
	}()

	id, ok := c.Locals("session").(uuid.UUID)
	if !ok {
		return
	}

	for {
		var update FieldUpdate
		if err := c.ReadJSON(&update); err != nil {
			break
		}
		if err := c.WriteJSON(h.apply(id, update)); err != nil {
			break
		}
	}
}

func (h *WebSocketHandler) apply(id uuid.UUID, update FieldUpdate) FieldStatus {
	active, missing, err := h.Service.Update(id, models.StepID(update.Step), update.Fields)
	status := FieldStatus{Step: string(active), Missing: missing}
	if active == "" {
		status.Step = update.Step
	}

	var ferr *models.FieldError
	switch {
	case err == nil:
	case errors.As(err, &ferr):
		status.Error = ferr.Error()
	default:
		h.logger.Debug("live update rejected", zap.Stringer("session", id), zap.Error(err))
		status.Error = err.Error()
	}
	return status
}
