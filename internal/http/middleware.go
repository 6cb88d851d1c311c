package http

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/xlaiver/cl4projectsurebet-vip/internal/auth"
	"github.com/xlaiver/cl4projectsurebet-vip/internal/session"
)

type contextKey int

const sessionIDKey contextKey = iota

const (
	SessionCookie      = "storefront_session"
	SessionTokenHeader = "X-Session-Token"
)

// SessionMiddleware resolves the caller's session from a Bearer token or the
// session cookie. Missing or invalid tokens start a new session.
func SessionMiddleware(tokens *session.Tokens, secureCookie bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sid, ok := sessionFromRequest(r, tokens); ok {
				next.ServeHTTP(w, r.WithContext(withSessionID(r.Context(), sid)))
				return
			}

			sid := session.NewSessionID()
			token, err := tokens.Issue(sid)
			if err != nil {
				slog.ErrorContext(r.Context(), "failed to issue session token", "error", err)
				respondError(w, http.StatusInternalServerError, "internal_error", "could not start session")
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    token,
				Path:     "/",
				MaxAge:   int(tokens.TTL().Seconds()),
				HttpOnly: true,
				Secure:   secureCookie,
				SameSite: http.SameSiteLaxMode,
			})
			w.Header().Set(SessionTokenHeader, token)
			next.ServeHTTP(w, r.WithContext(withSessionID(r.Context(), sid)))
		})
	}
}

func sessionFromRequest(r *http.Request, tokens *session.Tokens) (string, bool) {
	var raw string
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		raw = strings.TrimPrefix(h, "Bearer ")
	} else if c, err := r.Cookie(SessionCookie); err == nil {
		raw = c.Value
	}
	if raw == "" {
		return "", false
	}
	sid, err := tokens.Parse(raw)
	if err != nil {
		return "", false
	}
	return sid, true
}

func withSessionID(ctx context.Context, sid string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sid)
}

func sessionIDFromContext(ctx context.Context) string {
	if sid, ok := ctx.Value(sessionIDKey).(string); ok {
		return sid
	}
	return ""
}

// RateLimit rejects requests once the client IP exceeds the limiter's budget.
func RateLimit(limiter *auth.LoginLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(clientIP(r)) {
				w.Header().Set("Retry-After", strconv.Itoa(5))
				respondRetryable(w, http.StatusTooManyRequests, "rate_limited", "too many sign-in attempts")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = strings.TrimSuffix(strings.TrimPrefix(r.RemoteAddr, "["), "]")
	}
	return ip
}

// RequestLogger logs one structured line per request.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			logger.InfoContext(r.Context(), "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
