// Package api implements C6: the authenticated HTTP surface plus the
// unauthenticated auth/token and health endpoints. Routing and CORS
// grounded on go-server/internal/server/server.go's ServeMux +
// corsMiddleware composition; handler contracts are §6's endpoint
// table and §4.6's auth flow.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/mysocial/relay/internal/auth"
	"github.com/mysocial/relay/internal/cache"
	"github.com/mysocial/relay/internal/crypto"
	"github.com/mysocial/relay/internal/db"
	"github.com/mysocial/relay/internal/gateway"
	"github.com/mysocial/relay/internal/walletauth"
)

// Server hosts the request API and the WebSocket upgrade endpoint on
// one HTTP listener, matching relay-api's combined crate.
type Server struct {
	httpServer *http.Server
	log        zerolog.Logger
}

func NewServer(addr string, database *db.DB, c *cache.Cache, sealer *crypto.Sealer, authManager *auth.Manager, verifier walletauth.SignatureVerifier, log zerolog.Logger) *Server {
	h := &handlers{db: database, cache: c, sealer: sealer, auth: authManager, verifier: verifier, log: log}
	gw := gateway.New(database, c, authManager, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.health)
	mux.HandleFunc("/ws", gw.ServeHTTP)
	mux.HandleFunc("/api/v1/auth/token", h.authToken)
	mux.HandleFunc("/api/v1/notifications", authManager.Middleware(h.notifications))
	mux.HandleFunc("/api/v1/notifications/counts", authManager.Middleware(h.notificationCounts))
	mux.HandleFunc("/api/v1/notifications/", authManager.Middleware(h.markNotificationRead))
	mux.HandleFunc("/api/v1/messages", authManager.Middleware(h.messages))
	mux.HandleFunc("/api/v1/conversations", authManager.Middleware(h.conversations))
	mux.HandleFunc("/api/v1/preferences", authManager.Middleware(h.preferences))
	mux.HandleFunc("/api/v1/device-tokens", authManager.Middleware(h.registerDeviceToken))

	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      corsMiddleware(loggingMiddleware(log, mux)),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		log: log,
	}
}

func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func loggingMiddleware(log zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("request handled")
	})
}
