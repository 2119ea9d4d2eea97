package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/mohamedidrisssalhi/Convo/internal/usecase"
	"github.com/mohamedidrisssalhi/Convo/pkg/response"
)

type MessageHandler struct {
	messageUseCase *usecase.MessageUseCase
}

func NewMessageHandler(messageUseCase *usecase.MessageUseCase) *MessageHandler {
	return &MessageHandler{
		messageUseCase: messageUseCase,
	}
}

type sendMessageRequest struct {
	Text  string `json:"text"`
	Image string `json:"image" validate:"omitempty,url"`
}

// GetSidebar returns direct-conversation summaries for the authenticated
// user, ordered by most recent activity.
func (h *MessageHandler) GetSidebar(c echo.Context) error {
	userID := c.Get("uid").(string)

	summaries, err := h.messageUseCase.ListConversations(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, summaries)
}

// GetDirectMessages returns the history with a peer and resets the caller's
// unread counter for that peer.
func (h *MessageHandler) GetDirectMessages(c echo.Context) error {
	userID := c.Get("uid").(string)
	peerID := c.Param("id")

	messages, err := h.messageUseCase.GetDirectMessages(c.Request().Context(), userID, peerID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, messages)
}

func (h *MessageHandler) SendDirectMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)
	receiverID := c.Param("id")

	message, err := h.messageUseCase.SendDirectMessage(c.Request().Context(), userID, receiverID, usecase.SendMessageInput{
		Text:  req.Text,
		Image: req.Image,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

func (h *MessageHandler) GetRoomMessages(c echo.Context) error {
	userID := c.Get("uid").(string)
	roomID := c.Param("id")

	messages, err := h.messageUseCase.GetRoomMessages(c.Request().Context(), userID, roomID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, messages)
}

func (h *MessageHandler) SendRoomMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)
	roomID := c.Param("id")

	message, err := h.messageUseCase.SendRoomMessage(c.Request().Context(), userID, roomID, usecase.SendMessageInput{
		Text:  req.Text,
		Image: req.Image,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}
