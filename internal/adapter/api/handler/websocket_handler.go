package handler

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/mohamedidrisssalhi/Convo/internal/adapter/api/middleware"
	ws "github.com/mohamedidrisssalhi/Convo/internal/infrastructure/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	hub            *ws.Hub
	authMiddleware *middleware.AuthMiddleware
}

func NewWebSocketHandler(hub *ws.Hub, authMiddleware *middleware.AuthMiddleware) *WebSocketHandler {
	return &WebSocketHandler{
		hub:            hub,
		authMiddleware: authMiddleware,
	}
}

// HandleConnection upgrades the request and registers the session. Identity
// comes from the userId query parameter; when a token parameter is present it
// is verified and its UID wins over the declared userId.
func (h *WebSocketHandler) HandleConnection(c echo.Context) error {
	userID := c.QueryParam("userId")

	if token := c.QueryParam("token"); token != "" {
		uid, err := h.authMiddleware.GetUIDFromToken(c.Request().Context(), token)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
		}
		userID = uid
	}

	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "userId query parameter is required")
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Printf("WebSocket: upgrade failed for user %s: %v", userID, err)
		return err
	}

	client := ws.NewClient(userID, conn)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump(h.hub)

	return nil
}
