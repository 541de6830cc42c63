// Package api exposes the scrub core over HTTP: a single-record scrub
// endpoint behind bearer-token auth, tenant/policy management, and
// redaction-event queries.
package api

import (
	"net/http"
	"time"

	"github.com/iscp-sec/guardian/internal/chread"
	"github.com/iscp-sec/guardian/internal/engine"
	"github.com/iscp-sec/guardian/internal/storage"
	"github.com/iscp-sec/guardian/internal/store"
	"go.uber.org/zap"
)

// Dependencies holds shared state injected into all HTTP handlers.
type Dependencies struct {
	Store  *store.Store // nil when Postgres is not configured
	Base   engine.Config
	Writer storage.EventWriter
	Reader *chread.Reader // nil if ClickHouse unavailable
	Logger *zap.Logger
	// StaticKey enables single-tenant auth without Postgres.
	StaticKey string
	CacheTTL  time.Duration
}

// NewRouter builds the HTTP mux with all routes wired up.
func NewRouter(deps *Dependencies) http.Handler {
	mux := http.NewServeMux()

	// Scrub endpoint (auth required via Bearer gsk_ token, or the static key)
	mux.HandleFunc("POST /v1/scrub", deps.authMiddleware(deps.handleScrub))

	// Tenant and policy management (no auth — dashboard auth added later)
	mux.HandleFunc("POST /api/guardian/tenants", deps.handleCreateTenant)
	mux.HandleFunc("GET /api/guardian/tenants/{tenant_id}/policy", deps.handleGetPolicy)
	mux.HandleFunc("PUT /api/guardian/tenants/{tenant_id}/policy", deps.handleReplacePolicy)

	// Redaction events (ClickHouse)
	mux.HandleFunc("GET /api/guardian/events", deps.handleListEvents)
	mux.HandleFunc("GET /api/guardian/runs/{run_id}/stats", deps.handleRunStats)

	// Health check
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return corsMiddleware(requestLogging(mux, deps.Logger))
}
