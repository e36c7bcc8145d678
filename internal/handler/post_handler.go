package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"yatube/internal/models"
	"yatube/internal/render"
	"yatube/internal/service"
	"yatube/internal/validation"
)

const defaultUploadSize = 10 << 20

func profileURL(username string) string {
	return fmt.Sprintf("/profile/%s/", username)
}

func postURL(postID int64) string {
	return fmt.Sprintf("/posts/%d/", postID)
}

// parsePostForm decodes the post form and the optional image.
func (h *Handlers) parsePostForm(w http.ResponseWriter, r *http.Request) (service.PostInput, *service.Upload, error) {
	var in service.PostInput

	limit := h.Cfg.MaxUploadSize
	if limit <= 0 {
		limit = defaultUploadSize
	}

	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return in, nil, validation.Errors{{Field: "image", Tag: "image"}}
	}
	if err := r.ParseForm(); err != nil {
		return in, nil, fmt.Errorf("ошибка разбора формы: %w", err)
	}

	if err := h.Decoder.Decode(&in, r.PostForm); err != nil {
		return in, nil, fmt.Errorf("ошибка разбора формы: %w", err)
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return in, nil, nil
		}
		return in, nil, fmt.Errorf("ошибка чтения файла: %w", err)
	}

	return in, &service.Upload{FileName: header.Filename, Size: header.Size, Reader: file}, nil
}

func (h *Handlers) renderPostForm(w http.ResponseWriter, r *http.Request, view render.View, err error) {
	errs, ok := validation.AsErrors(err)
	if err != nil && !ok {
		h.handleError(w, r, err)
		return
	}

	groups, gerr := h.PostService.Groups(r.Context())
	if gerr != nil {
		h.handleError(w, r, gerr)
		return
	}
	view.Groups = groups
	view.Errors = errs.Messages()

	h.renderPage(w, r, http.StatusOK, render.PageCreatePost, view)
}

func formValues(r *http.Request, fields ...string) map[string]string {
	values := make(map[string]string, len(fields))
	for _, field := range fields {
		values[field] = r.PostForm.Get(field)
	}
	return values
}

func postFormValues(post *models.Post) map[string]string {
	values := map[string]string{"text": post.Text}
	if post.GroupID != nil {
		values["group"] = strconv.FormatInt(*post.GroupID, 10)
	}
	return values
}

func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	user := service.CurrentUser(r.Context())

	if r.Method == http.MethodGet {
		h.renderPostForm(w, r, render.View{}, nil)
		return
	}

	in, upload, err := h.parsePostForm(w, r)
	if err == nil {
		_, err = h.PostService.CreatePost(r.Context(), user, in, upload)
	}
	if err != nil {
		h.renderPostForm(w, r, render.View{Form: formValues(r, "text", "group")}, err)
		return
	}

	http.Redirect(w, r, profileURL(user.Username), http.StatusFound)
}

// EditPost sends anyone but the author to the author's profile.
func (h *Handlers) EditPost(w http.ResponseWriter, r *http.Request) {
	user := service.CurrentUser(r.Context())
	postID, ok := postIDFromPath(r)
	if !ok {
		h.NotFound(w, r)
		return
	}

	if r.Method == http.MethodGet {
		post, err := h.PostService.GetPost(r.Context(), postID)
		if err != nil {
			h.handleError(w, r, err)
			return
		}
		if service.AssertOwner(user, post) == service.Denied {
			http.Redirect(w, r, profileURL(post.AuthorUsername), http.StatusFound)
			return
		}
		h.renderPostForm(w, r, render.View{Post: post, IsEdit: true, Form: postFormValues(post)}, nil)
		return
	}

	in, upload, err := h.parsePostForm(w, r)
	var post *models.Post
	if err == nil {
		post, err = h.PostService.UpdatePost(r.Context(), user, postID, in, upload)
	} else {
		var lookupErr error
		post, lookupErr = h.PostService.GetPost(r.Context(), postID)
		switch {
		case lookupErr != nil:
			err = lookupErr
		case service.AssertOwner(user, post) == service.Denied:
			err = service.ErrForbidden
		}
	}

	switch {
	case err == nil:
		http.Redirect(w, r, postURL(postID), http.StatusFound)
	case errors.Is(err, service.ErrForbidden) && post != nil:
		http.Redirect(w, r, profileURL(post.AuthorUsername), http.StatusFound)
	case post == nil:
		h.handleError(w, r, err)
	default:
		h.renderPostForm(w, r, render.View{Post: post, IsEdit: true, Form: formValues(r, "text", "group")}, err)
	}
}

func (h *Handlers) DeletePost(w http.ResponseWriter, r *http.Request) {
	user := service.CurrentUser(r.Context())
	postID, ok := postIDFromPath(r)
	if !ok {
		h.NotFound(w, r)
		return
	}

	if _, err := h.PostService.DeletePost(r.Context(), user, postID); err != nil {
		h.handleError(w, r, err)
		return
	}

	http.Redirect(w, r, profileURL(user.Username), http.StatusFound)
}

// AddComment always returns to the post, an invalid comment is dropped.
func (h *Handlers) AddComment(w http.ResponseWriter, r *http.Request) {
	user := service.CurrentUser(r.Context())
	postID, ok := postIDFromPath(r)
	if !ok {
		h.NotFound(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, postURL(postID), http.StatusFound)
		return
	}

	var in service.CommentInput
	if err := h.Decoder.Decode(&in, r.PostForm); err != nil {
		http.Redirect(w, r, postURL(postID), http.StatusFound)
		return
	}

	_, err := h.PostService.AddComment(r.Context(), user, postID, in)
	if err != nil {
		if _, invalid := validation.AsErrors(err); !invalid {
			h.handleError(w, r, err)
			return
		}
	}

	http.Redirect(w, r, postURL(postID), http.StatusFound)
}
