package httpapi

import (
	"net/http"
	"path/filepath"

	"newsdesk-engine/internal/config"
)

// ConfigHandler exposes the running configuration read-only. The cleanup
// secret is never serialized.
type ConfigHandler struct {
	Config      config.Config
	UserCfgPath string
}

func (h ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.Config)
}

func (h ConfigHandler) Path(w http.ResponseWriter, r *http.Request) {
	abs, _ := filepath.Abs(h.UserCfgPath)
	WriteJSON(w, http.StatusOK, map[string]any{"path": abs})
}

func (h ConfigHandler) Validate(w http.ResponseWriter, r *http.Request) {
	_, vr := config.NormalizeAndValidate(h.Config)
	WriteJSON(w, http.StatusOK, vr)
}
