package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/mohamedidrisssalhi/Convo/internal/usecase"
	"github.com/mohamedidrisssalhi/Convo/pkg/response"
)

type FriendHandler struct {
	friendUseCase *usecase.FriendUseCase
}

func NewFriendHandler(friendUseCase *usecase.FriendUseCase) *FriendHandler {
	return &FriendHandler{
		friendUseCase: friendUseCase,
	}
}

type friendRequestRequest struct {
	Username string `json:"username" validate:"required"`
}

func (h *FriendHandler) SendRequest(c echo.Context) error {
	var req friendRequestRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	if err := h.friendUseCase.SendFriendRequest(c.Request().Context(), userID, req.Username); err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, map[string]string{"message": "Friend request sent"})
}

func (h *FriendHandler) AcceptRequest(c echo.Context) error {
	userID := c.Get("uid").(string)
	senderID := c.Param("id")

	if err := h.friendUseCase.AcceptFriendRequest(c.Request().Context(), userID, senderID); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"message": "Friend request accepted"})
}

func (h *FriendHandler) RejectRequest(c echo.Context) error {
	userID := c.Get("uid").(string)
	senderID := c.Param("id")

	if err := h.friendUseCase.RejectFriendRequest(c.Request().Context(), userID, senderID); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"message": "Friend request rejected"})
}

func (h *FriendHandler) RemoveFriend(c echo.Context) error {
	userID := c.Get("uid").(string)
	friendID := c.Param("id")

	if err := h.friendUseCase.RemoveFriend(c.Request().Context(), userID, friendID); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"message": "Friend removed"})
}

func (h *FriendHandler) ListFriends(c echo.Context) error {
	userID := c.Get("uid").(string)

	friends, err := h.friendUseCase.ListFriends(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, friends)
}

func (h *FriendHandler) ListIncomingRequests(c echo.Context) error {
	userID := c.Get("uid").(string)

	requests, err := h.friendUseCase.ListIncomingRequests(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, requests)
}

func (h *FriendHandler) ListSentRequests(c echo.Context) error {
	userID := c.Get("uid").(string)

	requests, err := h.friendUseCase.ListSentRequests(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, requests)
}
