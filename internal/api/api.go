package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"flex-design-backend/internal/logger"
	"flex-design-backend/internal/queue"

	"github.com/prometheus/client_golang/prometheus"
)

type RouteRegistrar func(mux *http.ServeMux, s *APIServer)

type APIServer struct {
	listenAddr          string
	requestQueueManager *queue.RequestQueueManager
	backend             *Backend
	routeRegistrars     []RouteRegistrar
	metrics             *metrics
	log                 *logger.Logger
}

func NewAPIServer(listenAddr string, rqm *queue.RequestQueueManager, backend *Backend, registrars ...RouteRegistrar) *APIServer {
	log := logger.Nop()
	if backend != nil && backend.Log != nil {
		log = backend.Log
	}

	return &APIServer{
		listenAddr:          listenAddr,
		requestQueueManager: rqm,
		backend:             backend,
		routeRegistrars:     registrars,
		metrics:             newMetrics(prometheus.DefaultRegisterer, listenAddr, rqm),
		log:                 log.With("listen_addr", listenAddr),
	}
}

// Handler builds the routed and instrumented handler without listening.
func (s *APIServer) Handler() http.Handler {
	mux := http.NewServeMux()

	for _, reg := range s.routeRegistrars {
		reg(mux, s)
	}

	mux.Handle("/metrics", s.metrics.metricsHandler())

	return s.metrics.instrument(mux)
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *APIServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.listenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("Server listening", "addr", "http://localhost"+s.listenAddr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	s.log.Info("Server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if s.requestQueueManager != nil {
		s.requestQueueManager.Shutdown()
	}
	s.log.Info("Server stopped")
	return nil
}

func (s *APIServer) Backend() *Backend {
	return s.backend
}

func (s *APIServer) Log() *logger.Logger {
	return s.log
}
