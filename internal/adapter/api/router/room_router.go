package router

import (
	"github.com/labstack/echo/v4"

	"github.com/mohamedidrisssalhi/Convo/internal/adapter/api/handler"
	"github.com/mohamedidrisssalhi/Convo/internal/adapter/api/middleware"
)

// SetupRoomRouter sets up room management and room-message routes.
func SetupRoomRouter(e *echo.Echo, roomHandler *handler.RoomHandler, messageHandler *handler.MessageHandler, authMiddleware *middleware.AuthMiddleware) {
	rooms := e.Group("/v1/rooms")
	rooms.Use(authMiddleware.Authenticate)

	rooms.POST("", roomHandler.CreateRoom) // POST /v1/rooms - Create room
	rooms.GET("", roomHandler.ListRooms)   // GET /v1/rooms - List rooms by recent activity

	rooms.POST("/:id/join", roomHandler.JoinRoom)   // POST /v1/rooms/:id/join - Become a durable member
	rooms.POST("/:id/leave", roomHandler.LeaveRoom) // POST /v1/rooms/:id/leave - Drop durable membership

	rooms.GET("/:id/messages", messageHandler.GetRoomMessages)   // GET /v1/rooms/:id/messages - Room history (resets unread)
	rooms.POST("/:id/messages", messageHandler.SendRoomMessage)  // POST /v1/rooms/:id/messages - Send to room
}
