package router

import (
	"github.com/labstack/echo/v4"

	"github.com/mohamedidrisssalhi/Convo/internal/adapter/api/handler"
)

// SetupWebSocketRouter exposes the event channel. Auth happens inside the
// handler because browsers cannot set headers on WebSocket upgrades.
func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler) {
	e.GET("/ws", wsHandler.HandleConnection)
}
