package api

import (
	"net/http"

	"github.com/kentzie123/LJA-Admin-Chat-Server/internal/auth"
	"github.com/kentzie123/LJA-Admin-Chat-Server/internal/models"
	"github.com/kentzie123/LJA-Admin-Chat-Server/internal/service"
	"github.com/labstack/echo/v4"
)

// MessageHandler handles the /messages endpoints.
type MessageHandler struct {
	service *service.MessageService
}

// NewMessageHandler creates a MessageHandler.
func NewMessageHandler(svc *service.MessageService) *MessageHandler {
	return &MessageHandler{service: svc}
}

// attachmentRequest is decoded as sent; payload problems surface from the
// uploader as DECODE_FAILED.
type attachmentRequest struct {
	Data    string `json:"data"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	IsImage bool   `json:"isImage"`
	Size    int64  `json:"size"`
}

type sendMessageRequest struct {
	Text        *string             `json:"text"`
	Attachments []attachmentRequest `json:"attachments"`
}

func (r sendMessageRequest) input() service.SendInput {
	in := service.SendInput{Text: r.Text}
	if len(r.Attachments) > 0 {
		in.Attachments = make([]models.AttachmentUpload, len(r.Attachments))
		for i, a := range r.Attachments {
			in.Attachments[i] = models.AttachmentUpload{
				Data:    a.Data,
				Name:    a.Name,
				Type:    a.Type,
				IsImage: a.IsImage,
				Size:    a.Size,
			}
		}
	}
	return in
}

type loadMoreQuery struct {
	ReceiverID string `query:"receiver_id"`
	OldestDate string `query:"oldestDate"`
	Limit      int    `query:"limit" validate:"min=0,max=100"`
}

// bindSend decodes and validates a send request body.
func bindSend(c echo.Context) (sendMessageRequest, *ErrorDetail) {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return req, &ErrorDetail{Code: "INVALID_BODY", Message: "invalid request body"}
	}
	if err := c.Validate(&req); err != nil {
		return req, &ErrorDetail{Code: "VALIDATION_FAILED", Message: validationMessage(err)}
	}
	return req, nil
}

// SendMessage handles POST /messages/:id. The sender is the authenticated
// user and the path id is the receiver.
func (h *MessageHandler) SendMessage(c echo.Context) error {
	senderID := auth.GetUserID(c)
	if senderID == "" {
		return Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
	}

	req, bad := bindSend(c)
	if bad != nil {
		return Error(c, http.StatusBadRequest, bad.Code, bad.Message)
	}

	msg, err := h.service.SendAsUser(c.Request().Context(), senderID, c.Param("id"), req.input())
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusCreated, msg)
}

// ClientSendMessage handles POST /messages/clientSending/:clientId. The
// anonymous client writes to the support identity.
func (h *MessageHandler) ClientSendMessage(c echo.Context) error {
	req, bad := bindSend(c)
	if bad != nil {
		return Error(c, http.StatusBadRequest, bad.Code, bad.Message)
	}

	msg, err := h.service.SendAsClient(c.Request().Context(), c.Param("clientId"), req.input())
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusCreated, msg)
}

// GetMessages handles GET /messages/get/:senderId, returning the full
// conversation between senderId and the support identity, newest first.
func (h *MessageHandler) GetMessages(c echo.Context) error {
	messages, err := h.service.GetMessages(c.Request().Context(), c.Param("senderId"))
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusOK, messages)
}

// LoadMoreMessages handles GET /messages/loadMore.
func (h *MessageHandler) LoadMoreMessages(c echo.Context) error {
	senderID := auth.GetUserID(c)
	if senderID == "" {
		return Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
	}

	var q loadMoreQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_QUERY", "invalid query parameters")
	}
	if err := c.Validate(&q); err != nil {
		return Error(c, http.StatusBadRequest, "VALIDATION_FAILED", validationMessage(err))
	}

	messages, err := h.service.LoadMoreMessages(c.Request().Context(), senderID, q.ReceiverID, q.OldestDate, q.Limit)
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusOK, messages)
}
