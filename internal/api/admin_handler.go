package api

import (
	"net/http"
	"strconv"

	"github.com/converselab/converse-api/internal/service"
	"github.com/converselab/converse-api/internal/store"
)

// AdminHandler handles admin console API requests.
type AdminHandler struct {
	adminService service.AdminService
}

// NewAdminHandler creates a new AdminHandler with the given dependencies.
func NewAdminHandler(adminService service.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

// ListAttachments handles GET /admin/attachments with optional filters:
// user_id, file_type, recognition_status, and search (matches filenames,
// descriptions, and tags).
func (h *AdminHandler) ListAttachments(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUserID(w, r); !ok {
		return
	}

	filter := store.AttachmentFilter{
		FileType:          r.URL.Query().Get("file_type"),
		RecognitionStatus: r.URL.Query().Get("recognition_status"),
		Search:            r.URL.Query().Get("search"),
	}
	if v := r.URL.Query().Get("user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			RespondWithError(w, r, http.StatusBadRequest, "Invalid user_id filter")
			return
		}
		filter.UserID = id
	}

	limit, offset := paginationParams(r)
	items, total, err := h.adminService.ListAllAttachments(r.Context(), filter, limit, offset)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list attachments")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, ListResponse{Items: items, Total: total})
}

// GetStats handles GET /admin/stats.
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUserID(w, r); !ok {
		return
	}

	stats, err := h.adminService.GetUsageStats(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load usage stats")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, stats)
}
