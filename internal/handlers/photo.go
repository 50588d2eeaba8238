package handlers

import (
	"encoding/json"
	"net/http"

	"shared-house-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// PhotoHandler handles photo upload HTTP requests
type PhotoHandler struct {
	photoService *services.PhotoService
}

// NewPhotoHandler creates a new photo handler
func NewPhotoHandler(photoService *services.PhotoService) *PhotoHandler {
	return &PhotoHandler{
		photoService: photoService,
	}
}

// UploadURLRequest represents the request body for a pre-signed upload URL
type UploadURLRequest struct {
	Kind        string `json:"kind"`
	ContentType string `json:"content_type"`
}

// UploadURL handles POST /api/v1/photos/upload-url
func (h *PhotoHandler) UploadURL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req UploadURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Kind == "" {
		req.Kind = services.PhotoKindChecklist
	}
	if req.ContentType == "" {
		req.ContentType = "image/jpeg"
	}

	resp, err := h.photoService.PresignUpload(ctx, req.Kind, req.ContentType)
	if err != nil {
		log.Error().Err(err).Str("kind", req.Kind).Msg("Failed to generate upload URL")
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}
