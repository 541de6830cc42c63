package api

import (
	"encoding/json"
	"net/http"

	"github.com/iscp-sec/guardian/internal/engine"
	"go.uber.org/zap"
)

// handleCreateTenant creates a tenant with a fresh API key. The plaintext
// key appears only in this response.
func (d *Dependencies) handleCreateTenant(w http.ResponseWriter, r *http.Request) {
	if d.Store == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResp{Detail: "Tenant management requires Postgres"})
		return
	}

	var req CreateTenantReq
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "Invalid JSON body"})
		return
	}
	if len(req.Name) < 1 || len(req.Name) > 255 {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "Field 'name' must be 1-255 characters"})
		return
	}

	tenant, apiKey, err := d.Store.CreateTenant(r.Context(), req.Name)
	if err != nil {
		d.Logger.Error("create tenant failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "Failed to create tenant"})
		return
	}

	writeJSON(w, http.StatusCreated, CreateTenantResp{
		ID:           tenant.ID,
		Name:         tenant.Name,
		APIKey:       apiKey,
		APIKeyPrefix: tenant.APIKeyPrefix,
		CreatedAt:    tenant.CreatedAt,
	})
}

// handleGetPolicy returns a tenant's scrub policy.
func (d *Dependencies) handleGetPolicy(w http.ResponseWriter, r *http.Request) {
	if d.Store == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResp{Detail: "Policy management requires Postgres"})
		return
	}

	tenantID := r.PathValue("tenant_id")
	policy, err := d.Store.GetPolicy(r.Context(), tenantID)
	if err != nil {
		d.Logger.Error("get policy failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "Failed to fetch policy"})
		return
	}
	if policy == nil {
		writeJSON(w, http.StatusNotFound, ErrorResp{Detail: "Policy not found"})
		return
	}

	writeJSON(w, http.StatusOK, PolicyResp{
		ID:          policy.ID,
		TenantID:    policy.TenantID,
		ScrubConfig: policy.ScrubConfig,
		CreatedAt:   policy.CreatedAt,
		UpdatedAt:   policy.UpdatedAt,
	})
}

// handleReplacePolicy overwrites a tenant's scrub policy. The config is
// validated as engine.Overrides before it is stored.
func (d *Dependencies) handleReplacePolicy(w http.ResponseWriter, r *http.Request) {
	if d.Store == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResp{Detail: "Policy management requires Postgres"})
		return
	}

	tenantID := r.PathValue("tenant_id")

	var req ReplacePolicyReq
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "Invalid JSON body"})
		return
	}
	if len(req.ScrubConfig) == 0 {
		req.ScrubConfig = json.RawMessage(`{}`)
	}
	var o engine.Overrides
	if err := json.Unmarshal(req.ScrubConfig, &o); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "Field 'scrub_config' is not a valid scrub configuration"})
		return
	}

	policy, err := d.Store.ReplacePolicy(r.Context(), tenantID, req.ScrubConfig)
	if err != nil {
		d.Logger.Error("replace policy failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "Failed to update policy"})
		return
	}
	if policy == nil {
		writeJSON(w, http.StatusNotFound, ErrorResp{Detail: "Policy not found"})
		return
	}

	writeJSON(w, http.StatusOK, PolicyResp{
		ID:          policy.ID,
		TenantID:    policy.TenantID,
		ScrubConfig: policy.ScrubConfig,
		CreatedAt:   policy.CreatedAt,
		UpdatedAt:   policy.UpdatedAt,
	})
}
