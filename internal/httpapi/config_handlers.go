package httpapi

import (
	"net/http"
	"path/filepath"

	"jobsearch-engine/internal/config"
	"jobsearch-engine/internal/logging"
)

type ConfigHandler struct {
	Deps Deps
}

func (h ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.Deps.config())
}

// Put validates and persists a full config, reloads it from disk and swaps
// it in for subsequent searches.
func (h ConfigHandler) Put(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var incoming config.Config
	if err := decodeBody(r, &incoming, true); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	normalized, vr := config.NormalizeAndValidate(incoming)
	if !vr.OK() {
		WriteJSON(w, http.StatusBadRequest, vr)
		return
	}

	if err := config.SaveAtomic(h.Deps.UserCfgPath, normalized); err != nil {
		log.WithError(err).Error("save config")
		WriteError(w, r, http.StatusInternalServerError, "save_failed", err.Error())
		return
	}

	saved, err := h.Deps.LoadCfg()
	if err != nil {
		log.WithError(err).Error("reload config")
		WriteError(w, r, http.StatusInternalServerError, "reload_failed", "saved but reload failed: "+err.Error())
		return
	}
	h.Deps.CfgVal.Store(saved)
	if h.Deps.OnConfig != nil {
		h.Deps.OnConfig(saved)
	}
	log.Info("config updated")
	WriteJSON(w, http.StatusOK, saved)
}

func (h ConfigHandler) Path(w http.ResponseWriter, r *http.Request) {
	abs, _ := filepath.Abs(h.Deps.UserCfgPath)
	WriteJSON(w, http.StatusOK, map[string]any{"path": abs})
}

func (h ConfigHandler) Validate(w http.ResponseWriter, r *http.Request) {
	_, vr := config.NormalizeAndValidate(h.Deps.config())
	WriteJSON(w, http.StatusOK, vr)
}
