package httpapi

import (
	"net/http"

	"smarthub/internal/domain"
	"smarthub/internal/service"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type TankHandler struct {
	tanks  *service.TankService
	logger *zap.Logger
}

func NewTankHandler(tanks *service.TankService, logger *zap.Logger) *TankHandler {
	return &TankHandler{tanks: tanks, logger: logger}
}

func (h *TankHandler) ListTanks(w http.ResponseWriter, r *http.Request) {
	tanks, err := h.tanks.ListTanks(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tanks)
}

func (h *TankHandler) GetTank(w http.ResponseWriter, r *http.Request) {
	tank, err := h.tanks.GetTank(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tank)
}

func (h *TankHandler) CreateTank(w http.ResponseWriter, r *http.Request) {
	var req service.CreateTankRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeError(w, r, h.logger, invalidBody(err))
		return
	}
	tank, err := h.tanks.CreateTank(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, tank)
}

// UpdateTank PATCH /tank/{id}，只更新请求里出现的字段
func (h *TankHandler) UpdateTank(w http.ResponseWriter, r *http.Request) {
	var patch domain.TankPatch
	if err := readBodyJSON(r, maxBodyBytes, &patch); err != nil {
		writeError(w, r, h.logger, invalidBody(err))
		return
	}
	tank, err := h.tanks.UpdateTank(r.Context(), mux.Vars(r)["id"], patch)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tank)
}

func (h *TankHandler) DeleteTank(w http.ResponseWriter, r *http.Request) {
	if err := h.tanks.DeleteTank(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
