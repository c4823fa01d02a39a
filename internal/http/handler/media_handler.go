package handler

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/induskill/marketplace-api/internal/storage"
	"go.uber.org/zap"
)

// MediaHandler streams course images kept in local storage
type MediaHandler struct {
	storage storage.Storage
	logger  *zap.Logger
}

func NewMediaHandler(store storage.Storage, logger *zap.Logger) *MediaHandler {
	return &MediaHandler{storage: store, logger: logger}
}

// Serve godoc
// @Summary Serve a stored course image
// @Tags Media
// @Produce octet-stream
// @Param path path string true "Storage key"
// @Success 200 {file} binary
// @Failure 404 {object} domain.APIError
// @Router /media/{path} [get]
func (h *MediaHandler) Serve(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(chi.URLParam(r, "*"), "/")

	rc, err := h.storage.Download(r.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidPath) {
			respondWithError(w, http.StatusNotFound, "File not found")
			return
		}
		h.logger.Error("failed to read media", zap.String("key", key), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to read file")
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("media stream interrupted", zap.String("key", key), zap.Error(err))
	}
}
