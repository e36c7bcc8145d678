package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"yatube/internal/logger"
	"yatube/internal/middleware"
	"yatube/internal/storage"
)

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Media redirects to a short lived link of an uploaded image.
func (h *Handlers) Media(w http.ResponseWriter, r *http.Request) {
	object := mux.Vars(r)["object"]
	if !strings.HasPrefix(object, storage.ImagePrefix) || strings.Contains(object, "..") {
		h.NotFound(w, r)
		return
	}

	link, err := h.Storage.GetImageURL(r.Context(), object)
	if err != nil {
		logger.Warn.Printf("id=%s: ссылка на %s: %v", middleware.RequestID(r.Context()), object, err)
		h.NotFound(w, r)
		return
	}

	http.Redirect(w, r, link, http.StatusFound)
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.DB.HealthCheck(ctx); err != nil {
		logger.Error.Printf("health: %v", err)
		writeJSON(w, HealthResponse{Status: "unavailable", Database: err.Error()}, http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, HealthResponse{Status: "ok", Database: "ok"}, http.StatusOK)
}
