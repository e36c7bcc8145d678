package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"yatube/internal/render"
	"yatube/internal/service"
)

const (
	cacheHeader   = "X-Cache"
	renderTimeout = 10 * time.Second
)

// Index serves the global feed through the page cache.
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	rawPage := r.URL.Query().Get("page")

	viewer := ""
	user := service.CurrentUser(r.Context())
	if user != nil {
		viewer = user.Username
	}

	// every request waiting on key shares the render, so it outlives this client
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), renderTimeout)
	defer cancel()

	key := h.Pages.Key(rawPage, viewer)
	body, hit, err := h.Pages.GetOrRender(key, h.Now(), func() ([]byte, error) {
		feed, err := h.FeedService.Feed(ctx, service.All(), rawPage)
		if err != nil {
			return nil, err
		}
		return h.Render.Bytes(render.PageIndex, render.View{
			CurrentUser: user,
			Posts:       feed.Posts,
			Page:        &feed.Page,
		})
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	if hit {
		w.Header().Set(cacheHeader, "HIT")
	} else {
		w.Header().Set(cacheHeader, "MISS")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (h *Handlers) GroupPosts(w http.ResponseWriter, r *http.Request) {
	feed, err := h.FeedService.Feed(r.Context(), service.ByGroup(mux.Vars(r)["slug"]), r.URL.Query().Get("page"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.renderPage(w, r, http.StatusOK, render.PageGroup, render.View{
		Posts: feed.Posts,
		Page:  &feed.Page,
		Group: feed.Group,
	})
}

func (h *Handlers) Profile(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	profile, err := h.UserService.Profile(r.Context(), username, service.CurrentUser(r.Context()))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	feed, err := h.FeedService.Feed(r.Context(), service.ByAuthor(username), r.URL.Query().Get("page"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.renderPage(w, r, http.StatusOK, render.PageProfile, render.View{
		Posts:     feed.Posts,
		Page:      &feed.Page,
		Author:    profile.Author,
		PostCount: profile.PostCount,
		Following: profile.Following,
	})
}

func (h *Handlers) PostDetail(w http.ResponseWriter, r *http.Request) {
	postID, ok := postIDFromPath(r)
	if !ok {
		h.NotFound(w, r)
		return
	}

	detail, err := h.FeedService.PostDetail(r.Context(), postID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.renderPage(w, r, http.StatusOK, render.PagePostDetail, render.View{
		Post:      detail.Post,
		PostCount: detail.AuthorPosts,
		Comments:  detail.Comments,
	})
}

func (h *Handlers) FollowIndex(w http.ResponseWriter, r *http.Request) {
	user := service.CurrentUser(r.Context())
	if user == nil {
		h.handleError(w, r, service.ErrUnauthorized)
		return
	}

	feed, err := h.FeedService.Feed(r.Context(), service.ByFollowed(user.UserID), r.URL.Query().Get("page"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.renderPage(w, r, http.StatusOK, render.PageFollow, render.View{
		Posts: feed.Posts,
		Page:  &feed.Page,
	})
}

func postIDFromPath(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["post_id"], 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
