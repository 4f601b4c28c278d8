// Package server serves the dashboard over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/alexanderramin/ridewait/internal/service"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Config holds server settings.
type Config struct {
	Addr        string
	Title       string
	Ride        string
	ChartWidth  int
	ChartHeight int
}

// DefaultAddr matches the port the dashboard has always listened on.
const DefaultAddr = "127.0.0.1:8050"

// Server is the dashboard web UI and JSON API.
type Server struct {
	cfg     Config
	svc     service.DashboardService
	logger  *zap.SugaredLogger
	assets  fs.FS
	index   *htmltemplate.Template
	handler http.Handler
}

// New builds the router. The index template is parsed once here.
func New(svc service.DashboardService, cfg Config, logger *zap.SugaredLogger) (*Server, error) {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Ride == "" {
		cfg.Ride = "Spaceship Earth"
	}
	if cfg.Title == "" {
		cfg.Title = cfg.Ride + " Wait Times"
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	s := &Server{
		cfg:    cfg,
		svc:    svc,
		logger: logger.Named("server"),
		assets: Assets(),
	}

	index, err := htmltemplate.New("index.html.tmpl").ParseFS(s.assets, "index.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing index template: %w", err)
	}
	s.index = index
	s.handler = s.setupRouter()
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) setupRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(s.requestLogMiddleware)

	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(s.assets))))

	pages := router.NewRoute().Subrouter()
	pages.Use(s.sessionMiddleware)
	pages.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	pages.HandleFunc("/submit", s.handleSubmitForm).Methods(http.MethodPost)
	pages.HandleFunc("/reset", s.handleResetForm).Methods(http.MethodPost)
	pages.HandleFunc("/chart.png", s.handleChart(formatPNG)).Methods(http.MethodGet)
	pages.HandleFunc("/chart.svg", s.handleChart(formatSVG)).Methods(http.MethodGet)

	api := pages.PathPrefix("/api").Subrouter()
	api.HandleFunc("/submit", s.handleAPISubmit).Methods(http.MethodPost)
	api.HandleFunc("/figure", s.handleAPIFigure).Methods(http.MethodGet)
	api.HandleFunc("/reset", s.handleAPIReset).Methods(http.MethodPost)

	return router
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infow("listening", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}
