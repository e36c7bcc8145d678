package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"yatube/internal/service"
)

func (h *Handlers) Follow(w http.ResponseWriter, r *http.Request) {
	author, err := h.FollowService.Follow(r.Context(), service.CurrentUser(r.Context()), mux.Vars(r)["username"])
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	http.Redirect(w, r, profileURL(author.Username), http.StatusFound)
}

func (h *Handlers) Unfollow(w http.ResponseWriter, r *http.Request) {
	author, err := h.FollowService.Unfollow(r.Context(), service.CurrentUser(r.Context()), mux.Vars(r)["username"])
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	http.Redirect(w, r, profileURL(author.Username), http.StatusFound)
}
