package handler

import (
	"net/http"

	"dispatch/internal/delivery/http/response"
	"dispatch/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ChatHandler holds dependencies for conversation handlers.
type ChatHandler struct {
	uc usecase.ChatUsecase
}

// NewChatHandler is the constructor for ChatHandler, injected by Fx.
func NewChatHandler(uc usecase.ChatUsecase) *ChatHandler {
	return &ChatHandler{uc: uc}
}

// Send appends a message to the request's conversation.
func (h *ChatHandler) Send(c echo.Context) error {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid request id")
	}

	var input usecase.SendMessageInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid message input")
	}
	input.RequestID = requestID
	if err := c.Validate(&input); err != nil {
		return errors.WithStack(err)
	}

	msg, err := h.uc.SendMessage(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, msg, "Message sent")
}

// List returns the request's conversation, oldest first.
func (h *ChatHandler) List(c echo.Context) error {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid request id")
	}

	msgs, err := h.uc.Messages(c.Request().Context(), requestID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, msgs, "")
}

// Unread returns the participant's unread counter for the request.
func (h *ChatHandler) Unread(c echo.Context) error {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid request id")
	}
	participantID, err := uuid.Parse(c.Param("participantId"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid participant id")
	}

	count, err := h.uc.UnreadCount(c.Request().Context(), participantID, requestID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]int{"unread": count}, "")
}

// MarkRead zeroes the participant's unread counter for the request.
func (h *ChatHandler) MarkRead(c echo.Context) error {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid request id")
	}
	participantID, err := uuid.Parse(c.Param("participantId"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid participant id")
	}

	if err := h.uc.MarkConversationRead(c.Request().Context(), participantID, requestID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Conversation marked read")
}
