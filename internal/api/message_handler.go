package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/converselab/converse-api/internal/service"
)

// MessageHandler handles the asynchronous message-send endpoint.
type MessageHandler struct {
	messageService service.MessageService
	validator      *validator.Validate
}

// NewMessageHandler creates a new MessageHandler with the given dependencies.
func NewMessageHandler(messageService service.MessageService) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		validator:      validator.New(),
	}
}

// Send handles POST /conversations/{conversationID}/messages. It returns
// 202 Accepted with a task token immediately; the reply is generated in the
// background and retrieved by polling the task endpoint.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	conversationID, err := getPathID(r, "conversationID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req SendMessageRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	task, err := h.messageService.SendMessage(r.Context(), userID, conversationID, req.Content)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to accept message")
		return
	}

	RespondWithJSON(w, r, http.StatusAccepted, SendMessageResponse{
		TaskID:  task.Token,
		Status:  string(task.Status),
		Message: "Message accepted, poll the task for the reply",
	})
}
