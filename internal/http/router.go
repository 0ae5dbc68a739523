package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Router 基于 gorilla/mux，按模块注册路由
type Router struct {
	mux    *mux.Router
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	m := mux.NewRouter()
	m.Use(requestIDMiddleware)
	m.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, Fail("route not found"))
	})
	m.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, Fail("method not allowed"))
	})
	return &Router{mux: m, logger: logger}
}

// Use appends route-level middleware (runs after a route matched).
func (r *Router) Use(mw ...mux.MiddlewareFunc) {
	r.mux.Use(mw...)
}

func (r *Router) Handle(path string, h http.HandlerFunc, methods ...string) {
	route := r.mux.HandleFunc(path, h)
	if len(methods) > 0 {
		route.Methods(methods...)
	}
}

// HandleHandler 支持 http.Handler 接口（用于 /metrics 等）
func (r *Router) HandleHandler(path string, h http.Handler) {
	r.mux.Handle(path, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterSettingsRoutes 用户偏好
func (r *Router) RegisterSettingsRoutes(h *SettingsHandler) {
	r.Handle("/settings", h.UpdateSettings, http.MethodPut)
	r.Handle("/settings", h.GetSettings, http.MethodGet)
}

// RegisterSensorRoutes 采样上报 + 决策 + 查询
func (r *Router) RegisterSensorRoutes(h *SensorHandler) {
	r.Handle("/update", h.Update, http.MethodPost)
	r.Handle("/graph", h.Graph, http.MethodGet)
	r.Handle("/graph/export", h.ExportGraph, http.MethodGet)
	r.Handle("/output", h.Output, http.MethodGet)
}

func (r *Router) RegisterProfileRoutes(h *ProfileHandler) {
	r.Handle("/profile", h.GetProfile, http.MethodGet)
	r.Handle("/profile", h.CreateProfile, http.MethodPost)
}

func (r *Router) RegisterTankRoutes(h *TankHandler) {
	r.Handle("/tank", h.ListTanks, http.MethodGet)
	r.Handle("/tank", h.CreateTank, http.MethodPost)
	r.Handle("/tank/{id}", h.GetTank, http.MethodGet)
	r.Handle("/tank/{id}", h.UpdateTank, http.MethodPatch)
	r.Handle("/tank/{id}", h.DeleteTank, http.MethodDelete)
}

// RegisterOpsRoutes /health 与 /metrics
func (r *Router) RegisterOpsRoutes(health *HealthHandler, metrics http.Handler) {
	r.Handle("/health", health.ServeHTTP, http.MethodGet)
	if metrics != nil {
		r.HandleHandler("/metrics", metrics)
	}
}
