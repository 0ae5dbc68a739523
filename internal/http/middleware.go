package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-Id"

type ctxKey int

const requestIDKey ctxKey = iota

// RequestIDFrom returns the request id stored by requestIDMiddleware.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// requestIDMiddleware 透传或生成 X-Request-Id
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// corsMethods/corsHeaders 默认放行的方法和请求头；预检时额外放行所请求的头
var (
	corsMethods = []string{
		http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
		http.MethodDelete, http.MethodOptions, http.MethodHead,
	}
	corsHeaders = []string{
		"Accept", "Accept-Language", "Authorization", "Content-Type",
		"Content-Language", "Origin", "X-Requested-With", requestIDHeader,
	}
)

// Wrap adds the outer middleware chain: panic recovery, access log and CORS.
func Wrap(h http.Handler, origins []string, logger *zap.Logger) http.Handler {
	stdLog := zap.NewStdLog(logger.Named("http"))

	h = allowAnyHeaders(h, origins)
	h = handlers.CombinedLoggingHandler(stdLog.Writer(), h)
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(stdLog),
		handlers.PrintRecoveryStack(true),
	)(h)
}

func corsHandler(h http.Handler, origins, headers []string) http.Handler {
	return handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods(corsMethods),
		handlers.AllowedHeaders(headers),
		handlers.ExposedHeaders([]string{requestIDHeader}),
		handlers.AllowCredentials(),
	)(h)
}

// allowAnyHeaders 预检请求放行 Access-Control-Request-Headers 中列出的任意请求头
func allowAnyHeaders(h http.Handler, origins []string) http.Handler {
	base := corsHandler(h, origins, corsHeaders)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested := r.Header.Get("Access-Control-Request-Headers")
		if r.Method != http.MethodOptions || requested == "" {
			base.ServeHTTP(w, r)
			return
		}
		headers := append([]string{}, corsHeaders...)
		for _, name := range strings.Split(requested, ",") {
			if name = strings.TrimSpace(name); name != "" {
				headers = append(headers, name)
			}
		}
		corsHandler(h, origins, headers).ServeHTTP(w, r)
	})
}
