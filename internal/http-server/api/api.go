package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"parcelsync/internal/config"
	handlererrors "parcelsync/internal/http-server/handlers/errors"
	"parcelsync/internal/http-server/handlers/parcel"
	"parcelsync/internal/http-server/handlers/region"
	"parcelsync/internal/http-server/handlers/webhook"
	"parcelsync/internal/http-server/middleware/authenticate"
	"parcelsync/internal/http-server/middleware/timeout"
	"parcelsync/internal/lib/sl"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

type Handler interface {
	authenticate.Authenticate
	parcel.Core
	webhook.Core
	region.Core
}

func New(conf *config.Config, log *slog.Logger, handler Handler) *Server {
	server := &Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
	}

	httpLog := slog.NewLogLogger(log.Handler(), slog.LevelError)
	server.httpServer = &http.Server{
		Handler:           NewRouter(conf, log, handler),
		ErrorLog:          httpLog,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return server
}

func NewRouter(conf *config.Config, log *slog.Logger, handler Handler) http.Handler {
	router := chi.NewRouter()
	router.Use(timeout.Timeout(conf.Listen.Timeout))
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(render.SetContentType(render.ContentTypeJSON))
	router.Use(authenticate.New(log, handler))

	router.NotFound(handlererrors.NotFound(log))
	router.MethodNotAllowed(handlererrors.NotAllowed(log))

	router.Route("/parcels", func(v1 chi.Router) {
		v1.Post("/webhook/status", webhook.StatusChange(log, handler))
		v1.Route("/orders/{id}", func(r chi.Router) {
			r.Post("/", parcel.Create(log, handler))
			r.Get("/", parcel.Info(log, handler))
		})
		v1.Post("/test", parcel.TestConnection(log, handler))
		v1.Get("/regions", region.List(log, handler))
	})

	return router
}

// Run serves until ctx is cancelled, then shuts the server down gracefully.
func (s *Server) Run(ctx context.Context) error {
	serverAddress := net.JoinHostPort(s.conf.Listen.BindIP, s.conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return fmt.Errorf("listen %s: %w", serverAddress, err)
	}

	s.log.Info("starting api server", slog.String("address", serverAddress))

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(listener)
	}()

	select {
	case err = <-serveErr:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err = <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info("api server stopped")
	return nil
}
