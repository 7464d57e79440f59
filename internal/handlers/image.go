package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"party-photo-backend/internal/middleware"
	"party-photo-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// maxUploadSize bounds image uploads to 10 MB.
const maxUploadSize = 10 << 20

// ImageHandler handles image-related HTTP requests
type ImageHandler struct {
	imageService *services.ImageService
	userService  *services.UserService
}

// NewImageHandler creates a new image handler
func NewImageHandler(imageService *services.ImageService, userService *services.UserService) *ImageHandler {
	return &ImageHandler{
		imageService: imageService,
		userService:  userService,
	}
}

// UploadImage handles POST /api/v1/images. The body is multipart form data
// with the blob in the "file" field and an optional "event_id" field.
func (h *ImageHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, "Image exceeds the 10MB limit or the form is malformed", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, "image file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		respondError(w, "Only image uploads are allowed", http.StatusBadRequest)
		return
	}

	var eventID *string
	if v := r.FormValue("event_id"); v != "" {
		eventID = &v
	}

	user, err := h.userService.GetByID(ctx, userID)
	if err != nil {
		respondError(w, "User not found", statusFromError(err))
		return
	}

	image, err := h.imageService.UploadImage(ctx, file, header.Size, header.Filename, contentType, user.ID, user.Name, user.Avatar, eventID)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("filename", header.Filename).
			Msg("Failed to upload image")
		respondError(w, err.Error(), statusFromError(err))
		return
	}

	respondJSON(w, http.StatusCreated, image)
}

// GetImages handles GET /api/v1/images. An optional event_id query parameter
// restricts the feed to one event.
func (h *ImageHandler) GetImages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var eventID *string
	if v := r.URL.Query().Get("event_id"); v != "" {
		eventID = &v
	}

	images, err := h.imageService.GetAllImages(ctx, eventID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list images")
		respondError(w, "Failed to list images", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"images": images})
}

// DeleteImage handles DELETE /api/v1/images/{id}
func (h *ImageHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	imageID := chi.URLParam(r, "id")

	if err := h.imageService.DeleteImage(ctx, imageID, userID); err != nil {
		log.Error().
			Err(err).
			Str("image_id", imageID).
			Str("user_id", userID).
			Msg("Failed to delete image")
		respondError(w, err.Error(), statusFromError(err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// AddCommentRequest is the body of POST /api/v1/images/{id}/comments
type AddCommentRequest struct {
	Content string `json:"content"`
}

// AddComment handles POST /api/v1/images/{id}/comments
func (h *ImageHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	imageID := chi.URLParam(r, "id")

	var req AddCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.userService.GetByID(ctx, userID)
	if err != nil {
		respondError(w, "User not found", statusFromError(err))
		return
	}

	comment, err := h.imageService.AddComment(ctx, imageID, req.Content, user.ID, user.Name, user.Avatar)
	if err != nil {
		log.Error().
			Err(err).
			Str("image_id", imageID).
			Str("user_id", userID).
			Msg("Failed to add comment")
		respondError(w, err.Error(), statusFromError(err))
		return
	}

	respondJSON(w, http.StatusCreated, comment)
}

// LikeImage handles PUT /api/v1/images/{id}/like
func (h *ImageHandler) LikeImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	imageID := chi.URLParam(r, "id")

	if err := h.imageService.LikeImage(ctx, imageID, userID); err != nil {
		respondError(w, err.Error(), statusFromError(err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// UnlikeImage handles DELETE /api/v1/images/{id}/like
func (h *ImageHandler) UnlikeImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	imageID := chi.URLParam(r, "id")

	if err := h.imageService.UnlikeImage(ctx, imageID, userID); err != nil {
		respondError(w, err.Error(), statusFromError(err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
