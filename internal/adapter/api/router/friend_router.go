package router

import (
	"github.com/labstack/echo/v4"

	"github.com/mohamedidrisssalhi/Convo/internal/adapter/api/handler"
	"github.com/mohamedidrisssalhi/Convo/internal/adapter/api/middleware"
)

// SetupFriendRouter sets up the friend-graph routes.
func SetupFriendRouter(e *echo.Echo, friendHandler *handler.FriendHandler, authMiddleware *middleware.AuthMiddleware) {
	friends := e.Group("/v1/friends")
	friends.Use(authMiddleware.Authenticate)

	friends.GET("", friendHandler.ListFriends)
	friends.DELETE("/:id", friendHandler.RemoveFriend)

	friends.POST("/requests", friendHandler.SendRequest)
	friends.GET("/requests/incoming", friendHandler.ListIncomingRequests)
	friends.GET("/requests/sent", friendHandler.ListSentRequests)
	friends.POST("/requests/:id/accept", friendHandler.AcceptRequest)
	friends.POST("/requests/:id/reject", friendHandler.RejectRequest)
}
