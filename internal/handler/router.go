package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"yatube/internal/middleware"
)

func NewRouter(h *Handlers) *mux.Router {
	r := mux.NewRouter().StrictSlash(true)
	private := func(f http.HandlerFunc) http.Handler {
		return middleware.RequireLogin(f)
	}

	r.HandleFunc("/", h.Index).Methods(http.MethodGet)
	r.HandleFunc("/group/{slug}/", h.GroupPosts).Methods(http.MethodGet)
	r.HandleFunc("/profile/{username}/", h.Profile).Methods(http.MethodGet)
	r.HandleFunc("/posts/{post_id:[0-9]+}/", h.PostDetail).Methods(http.MethodGet)
	r.Handle("/posts/{post_id:[0-9]+}/comment/", private(h.AddComment)).Methods(http.MethodPost)
	r.Handle("/posts/{post_id:[0-9]+}/edit/", private(h.EditPost)).Methods(http.MethodGet, http.MethodPost)
	r.Handle("/posts/{post_id:[0-9]+}/delete/", private(h.DeletePost)).Methods(http.MethodPost)
	r.Handle("/create/", private(h.CreatePost)).Methods(http.MethodGet, http.MethodPost)

	r.Handle("/follow-feed/", private(h.FollowIndex)).Methods(http.MethodGet)
	r.Handle("/follow/{username}/", private(h.Follow)).Methods(http.MethodGet)
	r.Handle("/unfollow/{username}/", private(h.Unfollow)).Methods(http.MethodGet)

	auth := r.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/signup/", h.Signup).Methods(http.MethodGet, http.MethodPost)
	auth.HandleFunc("/login/", h.Login).Methods(http.MethodGet, http.MethodPost)
	auth.HandleFunc("/logout/", h.Logout).Methods(http.MethodGet)

	r.HandleFunc("/media/{object:.+}", h.Media).Methods(http.MethodGet)
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(h.NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(h.NotFound)

	return r
}

// Routes is the full application handler: router plus middlewares.
func (h *Handlers) Routes() http.Handler {
	return middleware.Chain(NewRouter(h),
		middleware.Auth(h.AuthService, h.Cfg),
		middleware.Recover(http.HandlerFunc(h.ServerError)),
		middleware.Logging,
		middleware.Gzip,
	)
}
