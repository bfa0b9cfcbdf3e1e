package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/converselab/converse-api/internal/service"
)

// ConversationHandler handles conversation-related API requests.
type ConversationHandler struct {
	conversationService service.ConversationService
	validator           *validator.Validate
}

// NewConversationHandler creates a new ConversationHandler with the given dependencies.
func NewConversationHandler(conversationService service.ConversationService) *ConversationHandler {
	return &ConversationHandler{
		conversationService: conversationService,
		validator:           validator.New(),
	}
}

// Create handles POST /conversations.
func (h *ConversationHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req CreateConversationRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	conversation, err := h.conversationService.CreateConversation(r.Context(), userID, req.Title)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create conversation")
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, ConversationResponse{
		ID:        conversation.ID,
		Title:     conversation.Title,
		CreatedAt: conversation.CreatedAt,
		Messages:  nil,
	})
}

// Get handles GET /conversations/{conversationID}.
func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	conversationID, err := getPathID(r, "conversationID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	result, err := h.conversationService.GetConversation(r.Context(), conversationID, userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve conversation")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, ConversationResponse{
		ID:        result.Conversation.ID,
		Title:     result.Conversation.Title,
		CreatedAt: result.Conversation.CreatedAt,
		Messages:  result.Messages,
	})
}

// List handles GET /conversations.
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	results, err := h.conversationService.ListConversations(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list conversations")
		return
	}

	responses := make([]ConversationResponse, 0, len(results))
	for _, result := range results {
		responses = append(responses, ConversationResponse{
			ID:        result.Conversation.ID,
			Title:     result.Conversation.Title,
			CreatedAt: result.Conversation.CreatedAt,
			Messages:  result.Messages,
		})
	}

	RespondWithJSON(w, r, http.StatusOK, responses)
}

// Delete handles DELETE /conversations/{conversationID}.
func (h *ConversationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	conversationID, err := getPathID(r, "conversationID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.conversationService.DeleteConversation(r.Context(), conversationID, userID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete conversation")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
