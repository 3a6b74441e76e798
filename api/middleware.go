package api

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

// IdempotencyKeyHeader carries the caller's key on mutating routes
const IdempotencyKeyHeader = "Idempotency-Key"

const maxIdempotencyKeyLength = 128

type contextKey string

const (
	ctxAccountID      contextKey = "account_id"
	ctxReferrerID     contextKey = "referrer_id"
	ctxIdempotencyKey contextKey = "idempotency_key"
)

// AccountIDFromContext returns the verified account id, 0 if absent
func AccountIDFromContext(ctx context.Context) int64 {
	if v, ok := ctx.Value(ctxAccountID).(int64); ok {
		return v
	}
	return 0
}

func referrerFromContext(ctx context.Context) *int64 {
	if v, ok := ctx.Value(ctxReferrerID).(int64); ok {
		return &v
	}
	return nil
}

func idempotencyKeyFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxIdempotencyKey).(string); ok {
		return v
	}
	return ""
}

// Auth validates a bearer token and seeds the request context with the account id
func Auth(secret, issuer string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimSpace(r.Header.Get("Authorization"))
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				writeUnauthorized(w, "missing credentials")
				return
			}

			claims, err := ParseAccessToken(secret, issuer, token)
			if err != nil {
				log.WithError(err).Debug("Rejected access token")
				writeUnauthorized(w, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), ctxAccountID, claims.UserID)
			if claims.ReferrerID != nil {
				ctx = context.WithValue(ctx, ctxReferrerID, *claims.ReferrerID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ServiceToken guards routes called by trusted collaborators
func ServiceToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get("X-Service-Token")
			if token == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
				writeUnauthorized(w, "invalid service token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireIdempotencyKey rejects mutating requests without a usable key
func RequireIdempotencyKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
		if key == "" || len(key) > maxIdempotencyKeyLength {
			writeError(w, r, newValidationError(IdempotencyKeyHeader+" header is required (max 128 characters)"))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxIdempotencyKey, key)))
	})
}

// RequestLogger logs every request with logrus
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		log.WithFields(log.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      ww.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"request_id":  middleware.GetReqID(r.Context()),
		}).Info("Request completed")
	})
}
