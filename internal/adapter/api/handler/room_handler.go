package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/mohamedidrisssalhi/Convo/internal/usecase"
	"github.com/mohamedidrisssalhi/Convo/pkg/response"
)

type RoomHandler struct {
	roomUseCase *usecase.RoomUseCase
}

func NewRoomHandler(roomUseCase *usecase.RoomUseCase) *RoomHandler {
	return &RoomHandler{
		roomUseCase: roomUseCase,
	}
}

type createRoomRequest struct {
	Name    string   `json:"name" validate:"required"`
	Members []string `json:"members"`
	Avatar  string   `json:"avatar" validate:"omitempty,url"`
}

func (h *RoomHandler) CreateRoom(c echo.Context) error {
	var req createRoomRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	room, err := h.roomUseCase.CreateRoom(c.Request().Context(), userID, usecase.CreateRoomInput{
		Name:    req.Name,
		Members: req.Members,
		Avatar:  req.Avatar,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, room)
}

func (h *RoomHandler) ListRooms(c echo.Context) error {
	rooms, err := h.roomUseCase.ListRooms(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, rooms)
}

func (h *RoomHandler) JoinRoom(c echo.Context) error {
	userID := c.Get("uid").(string)
	roomID := c.Param("id")

	room, err := h.roomUseCase.JoinRoom(c.Request().Context(), userID, roomID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, room)
}

func (h *RoomHandler) LeaveRoom(c echo.Context) error {
	userID := c.Get("uid").(string)
	roomID := c.Param("id")

	if err := h.roomUseCase.LeaveRoom(c.Request().Context(), userID, roomID); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"message": "Left room"})
}
