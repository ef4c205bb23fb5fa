package http

import (
	"io"
	"net/http"
	"path/filepath"

	"github.com/gorilla/mux"

	"assetdesk-backend/internal/logger"
	"assetdesk-backend/internal/storage"
)

// PhotoHandler serves stored item photos from the storage backend.
type PhotoHandler struct {
	store storage.StorageInterface
}

func NewPhotoHandler(store storage.StorageInterface) *PhotoHandler {
	return &PhotoHandler{store: store}
}

// ServePhoto streams a stored photo by its key. Keys look like
// items/{itemID}/{uuid}.{ext}, so the route captures the rest of the path.
func (h *PhotoHandler) ServePhoto(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	if key == "" {
		http.Error(w, "missing photo key", http.StatusBadRequest)
		return
	}

	file, err := h.store.ReadFile(r.Context(), key)
	if err != nil {
		http.Error(w, "photo not found", http.StatusNotFound)
		return
	}
	defer file.Close()

	contentType := "application/octet-stream"
	switch filepath.Ext(key) {
	case ".jpg", ".jpeg":
		contentType = "image/jpeg"
	case ".png":
		contentType = "image/png"
	case ".gif":
		contentType = "image/gif"
	case ".webp":
		contentType = "image/webp"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := io.Copy(w, file); err != nil {
		logger.Warn("Failed to stream photo", "key", key, "error", err)
	}
}
