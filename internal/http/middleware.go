package http

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/fjod/go_storefront/pkg/logger"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	SessionCookie   = "cart_session"
	AdminCodeHeader = "X-Admin-Code"

	sessionMaxAge = 30 * 24 * 60 * 60
)

type ctxKey int

const (
	sessionKey ctxKey = iota
	requestIDKey
)

// SessionMiddleware identifies the shopper by the cart_session cookie,
// issuing a new one when missing or malformed.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var session string
		if c, err := r.Cookie(SessionCookie); err == nil {
			if _, err := uuid.Parse(c.Value); err == nil {
				session = c.Value
			}
		}
		if session == "" {
			session = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    session,
				Path:     "/",
				MaxAge:   sessionMaxAge,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), sessionKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDMiddleware echoes the request id and scopes the request logger to it.
func RequestIDMiddleware(log *zap.Logger) func(http.Handler) http.Handler {
	log = logger.OrNop(log)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := middleware.GetReqID(r.Context())
			if requestID == "" {
				requestID = r.Header.Get("X-Request-ID")
			}
			if requestID == "" {
				requestID = uuid.NewString()
			}

			ctx := context.WithValue(r.Context(), requestIDKey, requestID)
			ctx = logger.WithContext(ctx, log.With(zap.String("request_id", requestID)))
			w.Header().Set("X-Request-ID", requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AccessLog writes one structured line per request.
func AccessLog(log *zap.Logger) func(http.Handler) http.Handler {
	log = logger.OrNop(log)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.FromContext(r.Context(), log).Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)))
		})
	}
}

// AdminCodeMiddleware guards admin routes with the shared access code.
func AdminCodeMiddleware(code string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(AdminCodeHeader)
			if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(code)) != 1 {
				respondError(w, http.StatusUnauthorized, "invalid_admin_code", "missing or invalid admin access code")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func getSession(ctx context.Context) string {
	if session, ok := ctx.Value(sessionKey).(string); ok {
		return session
	}
	return ""
}
