package server

import (
	"log/slog"

	"devhub/internal/middleware"
	"devhub/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// requireUpgrade rejects plain HTTP requests to WebSocket endpoints.
func requireUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return c.Status(fiber.StatusUpgradeRequired).JSON(models.ErrorResponse{Msg: "WebSocket upgrade required"})
	}
	return c.Next()
}

// IssueWSTicket handles POST /api/ws/ticket
// @Summary Issue a single-use WebSocket ticket
// @Description Browsers cannot set headers on WebSocket requests; pass the ticket as ?ticket= within 30 seconds.
// @Tags realtime
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{ticket=string}
// @Failure 503 {object} models.ErrorResponse
// @Router /ws/ticket [post]
func (s *Server) IssueWSTicket(c *fiber.Ctx) error {
	if !s.sessions.Enabled() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{Msg: "Realtime feed unavailable"})
	}
	ticket, err := s.sessions.IssueWSTicket(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return s.fail(c, err, fiber.StatusNotFound)
	}
	return c.JSON(fiber.Map{"ticket": ticket})
}

// FeedWebsocketHandler streams feed events to the connected user.
// Authentication is handled by route middleware and userID is read from connection locals.
func (s *Server) FeedWebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		uid, _ := conn.Locals("userID").(string)
		if uid == "" || s.feedHub == nil {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"realtime feed unavailable"}`))
			_ = conn.Close()
			return
		}

		client, err := s.feedHub.Register(uid, conn)
		if err != nil {
			s.log.Warn("feed websocket registration refused",
				slog.String("user_id", uid),
				slog.String("error", err.Error()),
			)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		go client.WritePump()
		client.ReadPump()
	})
}
