package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/LaughingJackalope/agentrouter/pkg/ctxutil"
)

const (
	RequestIDHeader = "X-Request-Id"
	ActorHeader     = "X-Actor"

	maxRequestIDLen = 128
)

// RequestID reuses the caller's X-Request-Id or generates one, stores it in
// the context and echoes it in the response.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
			if id == "" || len(id) > maxRequestIDLen {
				id = uuid.New().String()
			}
			w.Header().Set(RequestIDHeader, id)
			next.ServeHTTP(w, r.WithContext(ctxutil.WithRequestID(r.Context(), id)))
		})
	}
}

// Actor stores the X-Actor header, when present, as the mutation actor.
func Actor() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if actor := strings.TrimSpace(r.Header.Get(ActorHeader)); actor != "" {
				r = r.WithContext(ctxutil.WithActor(r.Context(), actor))
			}
			next.ServeHTTP(w, r)
		})
	}
}
