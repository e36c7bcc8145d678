package middleware

import (
	"context"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/xid"

	"yatube/internal/config"
	"yatube/internal/logger"
	"yatube/internal/service"
)

const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"

	RequestIDHeader = "X-Request-ID"
	LoginURL        = "/auth/login/"
)

type Middleware func(http.Handler) http.Handler

// Chain wraps h so that the last middleware runs first.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for _, m := range middlewares {
		h = m(h)
	}
	return h
}

type requestIDKey struct{}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Logging tags every request with an id and logs it once it is served.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = xid.New().String()
		}
		w.Header().Set(RequestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))

		logger.Info.Printf("%s %s %d %s id=%s", r.Method, r.URL.RequestURI(), rec.status, time.Since(start), id)
	})
}

// Recover turns a panic into the response of onPanic.
func Recover(onPanic http.Handler) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					logger.Error.Printf("panic id=%s: %v\n%s", RequestID(r.Context()), err, debug.Stack())
					onPanic.ServeHTTP(w, r)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func Gzip(next http.Handler) http.Handler {
	return gzhttp.GzipHandler(next)
}

// Auth resolves the user of the request from the access token. An expired
// access token is renewed from the refresh cookie. Anonymous requests pass
// through untouched.
//
// A failed refresh leaves the cookies alone: parallel requests carry the same
// refresh token and only one of them wins the rotation, the others must not
// overwrite the cookies it has just set.
func Auth(auth service.AuthService, cfg *config.Config) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if token := accessToken(r); token != "" {
				if user, err := auth.GetUserFromToken(ctx, token); err == nil {
					next.ServeHTTP(w, r.WithContext(service.ContextWithUser(ctx, user)))
					return
				}
			}

			if c, err := r.Cookie(RefreshCookie); err == nil && c.Value != "" {
				user, access, refresh, err := auth.RefreshTokens(ctx, c.Value)
				if err != nil {
					next.ServeHTTP(w, r)
					return
				}
				SetAuthCookies(w, cfg, access, refresh)
				ctx = service.ContextWithUser(ctx, user)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func accessToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return strings.TrimSpace(parts[1])
		}
	}
	if c, err := r.Cookie(AccessCookie); err == nil {
		return c.Value
	}
	return ""
}

// RequireLogin sends anonymous users to the login page and back afterwards.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if service.CurrentUser(r.Context()) == nil {
			target := LoginURL + "?" + url.Values{"next": {r.URL.RequestURI()}}.Encode()
			http.Redirect(w, r, target, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func SetAuthCookies(w http.ResponseWriter, cfg *config.Config, access, refresh string) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessCookie,
		Value:    access,
		Path:     "/",
		MaxAge:   int(cfg.AccessTokenDuration.Seconds()),
		HttpOnly: true,
		Secure:   cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookie,
		Value:    refresh,
		Path:     "/",
		MaxAge:   int(cfg.RefreshTokenDuration.Seconds()),
		HttpOnly: true,
		Secure:   cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearAuthCookies(w http.ResponseWriter, cfg *config.Config) {
	for _, name := range []string{AccessCookie, RefreshCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   cfg.SecureCookies,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
