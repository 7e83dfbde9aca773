package httpapi

import (
	"net/http"
	"strings"

	"jobsearch-engine/internal/logging"
	"jobsearch-engine/internal/secrets"
)

type SecretsHandler struct {
	Deps Deps
}

type setAdzunaKeyReq struct {
	AppKey string `json:"app_key"`
}

type setHunterKeyReq struct {
	APIKey string `json:"api_key"`
}

// SetAdzunaKey stores the key in the OS keychain and rebuilds the engine so
// the Adzuna adapter becomes available.
func (h SecretsHandler) SetAdzunaKey(w http.ResponseWriter, r *http.Request) {
	var req setAdzunaKeyReq
	if err := decodeBody(r, &req, false); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if !h.store(w, r, secrets.AdzunaAccount, req.AppKey) {
		return
	}
	if h.Deps.OnConfig != nil {
		h.Deps.OnConfig(h.Deps.config())
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h SecretsHandler) SetHunterKey(w http.ResponseWriter, r *http.Request) {
	var req setHunterKeyReq
	if err := decodeBody(r, &req, false); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if h.store(w, r, secrets.HunterAccount, req.APIKey) {
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h SecretsHandler) store(w http.ResponseWriter, r *http.Request, account, value string) bool {
	if strings.TrimSpace(value) == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_key", "key is required")
		return false
	}
	if err := secrets.Set(account, strings.TrimSpace(value)); err != nil {
		logging.FromContext(r.Context()).WithError(err).WithField("account", account).Error("store secret")
		WriteError(w, r, http.StatusInternalServerError, "keyring_failed", "failed to store key: "+err.Error())
		return false
	}
	return true
}
