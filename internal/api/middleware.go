package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/iscp-sec/guardian/internal/engine"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// contextKey is an unexported type for context keys to avoid collisions.
type contextKey int

const tenantCtxKey contextKey = iota

// authTenant holds the authenticated tenant context for a request.
type authTenant struct {
	ID        string
	Name      string
	Overrides *engine.Overrides // nil = server defaults
}

// tenantFromContext extracts the authenticated tenant from the request context.
func tenantFromContext(ctx context.Context) *authTenant {
	v, _ := ctx.Value(tenantCtxKey).(*authTenant)
	return v
}

// --- Auth cache (stale-while-revalidate) ---

type cacheEntry struct {
	tenant     *authTenant
	expiresAt  time.Time
	refreshing atomic.Bool
}

type authCache struct {
	store sync.Map // map[string]*cacheEntry (keyed by full API key)
	ttl   time.Duration
}

func newAuthCache(ttl time.Duration) *authCache {
	return &authCache{ttl: ttl}
}

func (c *authCache) get(key string) (tenant *authTenant, hit bool, needsRefresh bool) {
	v, ok := c.store.Load(key)
	if !ok {
		return nil, false, false
	}
	entry := v.(*cacheEntry)
	if time.Now().Before(entry.expiresAt) {
		return entry.tenant, true, false // fresh
	}
	// Stale — return value but signal refresh needed (only one goroutine refreshes)
	needsRefresh = entry.refreshing.CompareAndSwap(false, true)
	return entry.tenant, true, needsRefresh
}

func (c *authCache) set(key string, tenant *authTenant) {
	c.store.Store(key, &cacheEntry{
		tenant:    tenant,
		expiresAt: time.Now().Add(c.ttl),
	})
}

// --- Auth middleware ---

// authMiddleware returns an http.HandlerFunc that validates Bearer gsk_
// tokens (or the static key) and injects the tenant into the request
// context.
func (d *Dependencies) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	cache := newAuthCache(d.CacheTTL)

	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := extractBearerToken(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, ErrorResp{Detail: "Missing or invalid Authorization header"})
			return
		}

		// Static single-tenant mode when Postgres is not configured.
		if d.Store == nil {
			if d.StaticKey == "" ||
				subtle.ConstantTimeCompare([]byte(token), []byte(d.StaticKey)) != 1 {
				writeJSON(w, http.StatusUnauthorized, ErrorResp{Detail: "Invalid API key"})
				return
			}
			ctx := context.WithValue(r.Context(), tenantCtxKey, &authTenant{ID: "default", Name: "default"})
			next(w, r.WithContext(ctx))
			return
		}

		if len(token) < 8 || !strings.HasPrefix(token, "gsk_") {
			writeJSON(w, http.StatusUnauthorized, ErrorResp{Detail: "Invalid API key format"})
			return
		}

		// Cache lookup
		tenant, hit, needsRefresh := cache.get(token)
		if hit && needsRefresh {
			// Stale hit — return stale immediately, refresh in background
			go d.refreshAuth(cache, token)
		}
		if hit && tenant != nil {
			ctx := context.WithValue(r.Context(), tenantCtxKey, tenant)
			next(w, r.WithContext(ctx))
			return
		}

		// Cache miss — synchronous lookup
		tenant, err := d.authenticateToken(r.Context(), token)
		if err != nil {
			d.Logger.Warn("auth failed", zap.Error(err))
			writeJSON(w, http.StatusUnauthorized, ErrorResp{Detail: "Invalid API key"})
			return
		}

		cache.set(token, tenant)
		ctx := context.WithValue(r.Context(), tenantCtxKey, tenant)
		next(w, r.WithContext(ctx))
	}
}

// authenticateToken validates an API key against Postgres and returns the
// tenant context.
func (d *Dependencies) authenticateToken(ctx context.Context, token string) (*authTenant, error) {
	prefix := token[:8]
	tw, err := d.Store.LookupByPrefix(ctx, prefix)
	if err != nil {
		return nil, err
	}
	if tw == nil {
		return nil, fmt.Errorf("tenant not found for prefix")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(tw.APIKeyHash), []byte(token)); err != nil {
		return nil, err
	}

	return &authTenant{
		ID:        tw.ID,
		Name:      tw.Name,
		Overrides: parseScrubConfig(tw.ScrubConfig.String),
	}, nil
}

// refreshAuth refreshes the cache entry in the background.
func (d *Dependencies) refreshAuth(cache *authCache, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	tenant, err := d.authenticateToken(ctx, token)
	if err != nil {
		d.Logger.Warn("background auth refresh failed", zap.Error(err))
		return
	}
	cache.set(token, tenant)
}

// parseScrubConfig converts a JSONB scrub_config into engine.Overrides.
func parseScrubConfig(raw string) *engine.Overrides {
	if raw == "" || raw == "{}" || raw == "null" {
		return nil
	}
	var o engine.Overrides
	if err := json.Unmarshal([]byte(raw), &o); err != nil {
		return nil
	}
	return &o
}

// extractBearerToken extracts the token from "Authorization: Bearer <token>".
func extractBearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", false
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return "", false
	}
	return strings.TrimSpace(auth[len(prefix):]), true
}

// --- JSON helpers ---

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// readJSON decodes a JSON request body into the given pointer.
func readJSON(r *http.Request, v interface{}) error {
	defer func() { _ = r.Body.Close() }()
	return json.NewDecoder(r.Body).Decode(v)
}

// --- Request logging ---

func requestLogging(next http.Handler, logger *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", sw.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// --- CORS ---

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
