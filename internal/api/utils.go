package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"flex-design-backend/internal/api/middleware"
	"flex-design-backend/internal/env"
	"flex-design-backend/internal/queue"
)

type apiFunc func(http.ResponseWriter, *http.Request) error

func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func (s *APIServer) MakeHTTPHandleFunc(f apiFunc, authMiddleware ...middleware.Middleware) http.HandlerFunc {
	corsConfig := middleware.DefaultCORSConfig(env.GetList(env.CORSAllowedOrigins, nil))

	baseHandler := func(w http.ResponseWriter, r *http.Request) {
		errc := make(chan error, 1)

		job := queue.Job{
			Fn: func() error {
				return f(w, r)
			},
			Errc: errc,
		}

		s.requestQueueManager.EnqueueJob(job)

		err := <-errc
		if err == nil {
			return
		}

		requestID := w.Header().Get(middleware.RequestIDHeader)
		var httpErr *HTTPError
		if errors.As(err, &httpErr) {
			if httpErr.StatusCode >= http.StatusInternalServerError {
				s.log.Error("Request failed", "request_id", requestID, "status", httpErr.StatusCode, "error", httpErr.ErrorLog)
			} else {
				s.log.Warn("Request rejected", "request_id", requestID, "status", httpErr.StatusCode, "error", httpErr.ErrorLog)
			}
			_ = WriteJSON(w, httpErr.StatusCode, ApiError{Error: httpErr.Message})
			return
		}

		s.log.Error("Request failed", "request_id", requestID, "error", err)
		_ = WriteJSON(w, http.StatusInternalServerError, ApiError{Error: "Internal server error"})
	}

	middlewares := []middleware.Middleware{
		middleware.CORS(corsConfig),
		middleware.Logging(s.log),
	}

	finalHandler := func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		if len(authMiddleware) > 0 {
			authHandler := baseHandler
			for _, m := range authMiddleware {
				authHandler = m(authHandler)
			}
			authHandler(w, r)
		} else {
			baseHandler(w, r)
		}
	}

	return middleware.Chain(finalHandler, middlewares...)
}
