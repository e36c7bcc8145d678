package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"yatube/internal/middleware"
	"yatube/internal/render"
	"yatube/internal/service"
	"yatube/internal/validation"
)

// safeNext keeps redirects on this site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Host != "" || u.Scheme != "" {
		return "/"
	}
	return next
}

func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		h.renderPage(w, r, http.StatusOK, render.PageSignup, render.View{})
		return
	}

	if err := r.ParseForm(); err != nil {
		h.handleError(w, r, err)
		return
	}

	var in service.SignupInput
	if err := h.Decoder.Decode(&in, r.PostForm); err != nil {
		h.handleError(w, r, err)
		return
	}

	_, access, refresh, err := h.AuthService.Register(r.Context(), in)
	if err != nil {
		errs, ok := validation.AsErrors(err)
		if !ok {
			h.handleError(w, r, err)
			return
		}
		h.renderPage(w, r, http.StatusOK, render.PageSignup, render.View{
			Form:   formValues(r, "first_name", "last_name", "username", "email"),
			Errors: errs.Messages(),
		})
		return
	}

	middleware.SetAuthCookies(w, h.Cfg, access, refresh)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		h.renderPage(w, r, http.StatusOK, render.PageLogin, render.View{Next: r.URL.Query().Get("next")})
		return
	}

	if err := r.ParseForm(); err != nil {
		h.handleError(w, r, err)
		return
	}

	var in service.LoginInput
	if err := h.Decoder.Decode(&in, r.PostForm); err != nil {
		h.handleError(w, r, err)
		return
	}

	_, access, refresh, err := h.AuthService.Login(r.Context(), in)
	if err != nil {
		var messages map[string][]string
		switch errs, ok := validation.AsErrors(err); {
		case ok:
			messages = errs.Messages()
		case errors.Is(err, service.ErrInvalidCredentials):
			messages = map[string][]string{"__all__": {
				"Пожалуйста, введите правильные имя пользователя и пароль. Оба поля могут быть чувствительны к регистру.",
			}}
		default:
			h.handleError(w, r, err)
			return
		}
		h.renderPage(w, r, http.StatusOK, render.PageLogin, render.View{
			Form:   formValues(r, "username"),
			Errors: messages,
			Next:   in.Next,
		})
		return
	}

	middleware.SetAuthCookies(w, h.Cfg, access, refresh)
	http.Redirect(w, r, safeNext(in.Next), http.StatusFound)
}

// Logout revokes the refresh token and renders the page as an anonymous user.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if user := service.CurrentUser(r.Context()); user != nil {
		if err := h.AuthService.Logout(r.Context(), user.UserID); err != nil {
			h.handleError(w, r, err)
			return
		}
	}

	middleware.ClearAuthCookies(w, h.Cfg)
	r = r.WithContext(service.ContextWithUser(r.Context(), nil))
	h.renderPage(w, r, http.StatusOK, render.PageLoggedOut, render.View{})
}
