package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"smarthub/internal/domain"
	"smarthub/internal/service"

	"go.uber.org/zap"
)

// SensorHandler 设备上报与图表查询
type SensorHandler struct {
	actuation *service.ActuationService
	readings  *service.ReadingsService
	logger    *zap.Logger
}

func NewSensorHandler(actuation *service.ActuationService, readings *service.ReadingsService, logger *zap.Logger) *SensorHandler {
	return &SensorHandler{actuation: actuation, readings: readings, logger: logger}
}

// Update POST /update
func (h *SensorHandler) Update(w http.ResponseWriter, r *http.Request) {
	var update domain.SensorUpdate
	if err := readBodyJSON(r, maxBodyBytes, &update); err != nil {
		writeError(w, r, h.logger, invalidBody(err))
		return
	}

	sample, err := h.actuation.Update(r.Context(), update)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, sample)
}

// Graph GET /graph?size=N
func (h *SensorHandler) Graph(w http.ResponseWriter, r *http.Request) {
	size, err := service.ParseGraphSize(r.URL.Query().Get("size"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	samples, err := h.readings.Graph(r.Context(), size)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, samples)
}

// ExportGraph GET /graph/export?size=N，返回 xlsx
func (h *SensorHandler) ExportGraph(w http.ResponseWriter, r *http.Request) {
	size, err := service.ParseGraphSize(r.URL.Query().Get("size"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	samples, err := h.readings.Graph(r.Context(), size)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	data, err := GenerateSamplesExport(samples)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	filename := fmt.Sprintf("samples_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Output GET /output
func (h *SensorHandler) Output(w http.ResponseWriter, r *http.Request) {
	snap, err := h.readings.Output(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
