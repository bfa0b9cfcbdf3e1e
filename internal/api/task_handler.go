package api

import (
	"net/http"

	"github.com/converselab/converse-api/internal/service"
)

// TaskHandler handles the task status polling endpoint.
type TaskHandler struct {
	messageService service.MessageService
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(messageService service.MessageService) *TaskHandler {
	return &TaskHandler{
		messageService: messageService,
	}
}

// GetStatus handles GET /tasks/{taskID}. Tokens that don't exist and tokens
// owned by someone else both get the same 404.
func (h *TaskHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	token, err := getPathUUID(r, "taskID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.messageService.GetTaskStatus(r.Context(), token, userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve task")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, NewTaskStatusResponse(task))
}
