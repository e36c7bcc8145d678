package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"yatube/internal/logger"
	"yatube/internal/middleware"
	"yatube/internal/render"
	"yatube/internal/repository"
	"yatube/internal/service"
)

func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// renderPage writes a template with the current user filled in.
func (h *Handlers) renderPage(w http.ResponseWriter, r *http.Request, status int, page string, view render.View) {
	view.CurrentUser = service.CurrentUser(r.Context())

	out, err := h.Render.Bytes(page, view)
	if err != nil {
		logger.Error.Printf("id=%s: %v", middleware.RequestID(r.Context()), err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(out)
}

func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, http.StatusNotFound, render.PageNotFound, render.View{Path: r.URL.Path})
}

func (h *Handlers) Forbidden(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, http.StatusForbidden, render.PageForbidden, render.View{Path: r.URL.Path})
}

func (h *Handlers) ServerError(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, http.StatusInternalServerError, render.PageServer, render.View{Path: r.URL.Path})
}

// handleError maps service and repository errors onto responses.
func (h *Handlers) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		h.NotFound(w, r)
	case errors.Is(err, service.ErrForbidden):
		h.Forbidden(w, r)
	case errors.Is(err, service.ErrUnauthorized):
		target := middleware.LoginURL + "?" + url.Values{"next": {r.URL.RequestURI()}}.Encode()
		http.Redirect(w, r, target, http.StatusFound)
	default:
		logger.Error.Printf("id=%s %s %s: %v", middleware.RequestID(r.Context()), r.Method, r.URL.Path, err)
		h.ServerError(w, r)
	}
}
