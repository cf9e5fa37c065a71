package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/dskvich/artloop/pkg/api/handler"
	"github.com/dskvich/artloop/pkg/logger"
)

const RequestIDHeader = "X-Request-Id"

// NewRouter serves the command surface to the desktop front end.
func NewRouter(invoker handler.Invoker, allowedOrigins []string) http.Handler {
	invoke := handler.NewInvoke(invoker)

	r := mux.NewRouter()
	r.Use(requestID)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodGet)
	r.HandleFunc("/commands", invoke.List).Methods(http.MethodGet)
	r.HandleFunc("/invoke/{command}", invoke.Invoke).Methods(http.MethodPost)

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{RequestIDHeader},
	})
	return c.Handler(r)
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		ctx := logger.ContextWithRequestID(r.Context(), id)
		started := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		slog.DebugContext(ctx, "Request served", "method", r.Method, "path", r.URL.Path, "elapsed", time.Since(started))
	})
}
