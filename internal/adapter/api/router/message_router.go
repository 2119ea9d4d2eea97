package router

import (
	"github.com/labstack/echo/v4"

	"github.com/mohamedidrisssalhi/Convo/internal/adapter/api/handler"
	"github.com/mohamedidrisssalhi/Convo/internal/adapter/api/middleware"
)

// SetupMessageRouter sets up the direct-message routes.
func SetupMessageRouter(e *echo.Echo, messageHandler *handler.MessageHandler, authMiddleware *middleware.AuthMiddleware) {
	messages := e.Group("/v1/messages")
	messages.Use(authMiddleware.Authenticate)

	messages.GET("/users", messageHandler.GetSidebar)          // GET /v1/messages/users - Conversation sidebar
	messages.GET("/:id", messageHandler.GetDirectMessages)     // GET /v1/messages/:id - History with a peer (resets unread)
	messages.POST("/send/:id", messageHandler.SendDirectMessage) // POST /v1/messages/send/:id - Send to a peer
}
