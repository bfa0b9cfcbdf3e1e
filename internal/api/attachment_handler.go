package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/converselab/converse-api/internal/service"
)

// AttachmentHandler handles file attachment API requests.
type AttachmentHandler struct {
	attachmentService service.AttachmentService
	maxUploadBytes    int64
}

// NewAttachmentHandler creates a new AttachmentHandler with the given dependencies.
// maxUploadBytes caps the multipart form size accepted by the upload endpoint.
func NewAttachmentHandler(attachmentService service.AttachmentService, maxUploadBytes int64) *AttachmentHandler {
	return &AttachmentHandler{
		attachmentService: attachmentService,
		maxUploadBytes:    maxUploadBytes,
	}
}

// Upload handles POST /attachments/upload (multipart form, field "file").
func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	// Leave headroom for the multipart framing around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+1024)

	file, header, err := r.FormFile("file")
	if err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Missing or invalid file field")
		return
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			slog.Warn("failed to close upload stream", "error", cerr)
		}
	}()

	attachment, err := h.attachmentService.Upload(r.Context(), userID, header.Filename, file)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to upload file")
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, attachment)
}

// List handles GET /attachments.
func (h *AttachmentHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	limit, offset := paginationParams(r)
	items, total, err := h.attachmentService.ListAttachments(r.Context(), userID, limit, offset)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list attachments")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, ListResponse{Items: items, Total: total})
}

// Get handles GET /attachments/{attachmentID}.
func (h *AttachmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	attachmentID, err := getPathID(r, "attachmentID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	attachment, err := h.attachmentService.GetAttachment(r.Context(), attachmentID, userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve attachment")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, attachment)
}

// Update handles PATCH /attachments/{attachmentID}, applying a partial
// metadata update. Omitted fields are left unchanged.
func (h *AttachmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	attachmentID, err := getPathID(r, "attachmentID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req UpdateAttachmentRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	attachment, err := h.attachmentService.UpdateAttachment(r.Context(), attachmentID, userID,
		service.AttachmentUpdate{
			Description: req.Description,
			Tags:        req.Tags,
			Shared:      req.Shared,
		})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update attachment")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, attachment)
}

// Download handles GET /attachments/{attachmentID}/download, streaming the
// stored file with its original filename.
func (h *AttachmentHandler) Download(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	attachmentID, err := getPathID(r, "attachmentID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	attachment, f, err := h.attachmentService.OpenAttachment(r.Context(), attachmentID, userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to open attachment")
		return
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			slog.Warn("failed to close attachment file", "error", cerr)
		}
	}()

	w.Header().Set("Content-Type", attachment.FileType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", attachment.Filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", attachment.FileSize))

	if _, err := io.Copy(w, f); err != nil {
		slog.Error("failed to stream attachment",
			"error", err,
			"attachment_id", attachment.ID)
	}
}

// Delete handles DELETE /attachments/{attachmentID}.
func (h *AttachmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	attachmentID, err := getPathID(r, "attachmentID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.attachmentService.DeleteAttachment(r.Context(), attachmentID, userID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete attachment")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
