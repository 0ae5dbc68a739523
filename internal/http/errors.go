package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"smarthub/internal/schedule"
	"smarthub/internal/service"
	"smarthub/internal/store"

	"go.uber.org/zap"
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, schedule.ErrInvalidDuration),
		errors.Is(err, schedule.ErrInvalidTimeOfDay),
		errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError 统一错误响应；5xx 不向客户端暴露内部错误细节
func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	status := statusFor(err)
	message := err.Error()

	var nf *service.NotFoundError
	switch {
	case errors.As(err, &nf):
		message = nf.Message
	case status == http.StatusInternalServerError:
		logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", RequestIDFrom(r.Context())),
			zap.Error(err),
		)
		message = "internal server error"
	case status == http.StatusBadGateway:
		logger.Warn("Upstream failure", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeJSON(w, status, Fail(message))
}

// invalidBody wraps a JSON decode failure as malformed input.
func invalidBody(err error) error {
	return fmt.Errorf("%w: %v", service.ErrInvalidInput, err)
}
