package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/converselab/converse-api/internal/service"
)

// FeedbackHandler handles feedback-related API requests.
type FeedbackHandler struct {
	feedbackService service.FeedbackService
	validator       *validator.Validate
}

// NewFeedbackHandler creates a new FeedbackHandler with the given dependencies.
func NewFeedbackHandler(feedbackService service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{
		feedbackService: feedbackService,
		validator:       validator.New(),
	}
}

// Create handles POST /feedback.
func (h *FeedbackHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req CreateFeedbackRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	feedback, err := h.feedbackService.CreateFeedback(r.Context(), userID, req.Type, req.Content)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create feedback")
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, feedback)
}

// List handles GET /feedback.
func (h *FeedbackHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	limit, offset := paginationParams(r)
	items, total, err := h.feedbackService.ListFeedback(r.Context(), userID, limit, offset)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list feedback")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, ListResponse{Items: items, Total: total})
}

// Get handles GET /feedback/{feedbackID}.
func (h *FeedbackHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	feedbackID, err := getPathID(r, "feedbackID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	feedback, err := h.feedbackService.GetFeedback(r.Context(), feedbackID, userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve feedback")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, feedback)
}
