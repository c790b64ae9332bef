package apiserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jobhive/jobhive/internal/auth"
	"github.com/jobhive/jobhive/internal/config"
	"github.com/jobhive/jobhive/internal/events"
	handlers "github.com/jobhive/jobhive/internal/handlers/v1"
	"github.com/jobhive/jobhive/internal/service"
	"github.com/jobhive/jobhive/internal/store"
	"github.com/jobhive/jobhive/pkg/middleware"
	"go.uber.org/zap"
)

const (
	gracefulShutdownTimeout = 5 * time.Second
)

type Server struct {
	cfg      *config.Config
	store    store.Store
	listener net.Listener
}

// New returns a new instance of a jobhive server.
func New(
	cfg *config.Config,
	store store.Store,
	listener net.Listener,
) *Server {
	return &Server{
		cfg:      cfg,
		store:    store,
		listener: listener,
	}
}

func (s *Server) Run(ctx context.Context) error {
	zap.S().Named("api_server").Info("Initializing API server")

	authenticator := auth.NewHeaderAuthenticator()

	router := chi.NewRouter()
	router.Use(
		cors.Handler(cors.Options{
			AllowedOrigins:   []string{s.cfg.Service.BaseUrl},
			AllowedMethods:   []string{"GET", "PUT", "POST", "DELETE", "HEAD", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
		middleware.RequestID,
		middleware.Logger(),
		chiMiddleware.Recoverer,
	)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	eventProducer := events.NewEventProducer(&events.StdoutWriter{})
	defer func() {
		_ = eventProducer.Close()
	}()

	cascadeSrv := service.NewCascadeService(s.store, eventProducer)
	transitionSrv := service.NewTransitionService(s.store, eventProducer,
		service.WithBulkLimit(s.cfg.Service.BulkLimit))
	searchSrv := service.NewSearchService(s.store, s.cfg.Service.DefaultPageSize, s.cfg.Service.MaxPageSize)
	jobSrv := service.NewJobService(s.store, cascadeSrv)
	applicationSrv := service.NewApplicationService(s.store)
	userSrv := service.NewUserService(s.store, cascadeSrv)

	handler := handlers.NewServiceHandler(transitionSrv, searchSrv, jobSrv, applicationSrv, userSrv)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(authenticator.Authenticator)
		handler.Routes(r)
	})

	srv := &http.Server{
		Addr:    s.cfg.Service.Address,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		zap.S().Named("api_server").Infof("Shutdown signal received: %s", ctx.Err())
		ctxTimeout, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()

		srv.SetKeepAlivesEnabled(false)
		_ = srv.Shutdown(ctxTimeout)
	}()

	zap.S().Named("api_server").Infof("Listening on %s...", s.listener.Addr().String())
	if err := srv.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
