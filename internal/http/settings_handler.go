package httpapi

import (
	"net/http"

	"smarthub/internal/service"

	"go.uber.org/zap"
)

// SettingsHandler PUT/GET /settings
type SettingsHandler struct {
	settings *service.SettingsService
	logger   *zap.Logger
}

func NewSettingsHandler(settings *service.SettingsService, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{settings: settings, logger: logger}
}

func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateSettingsRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeError(w, r, h.logger, invalidBody(err))
		return
	}

	pref, err := h.settings.UpdateSettings(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, pref)
}

func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	pref, err := h.settings.GetSettings(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, pref)
}
