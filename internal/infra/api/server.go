package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"club-bridge/internal/config"
	"club-bridge/internal/infra/i18n"
	"club-bridge/internal/usecase"
)

// Server exposes the email capability links and the digest pages.
type Server struct {
	digest usecase.DigestUseCase
	subs   usecase.SubscriptionUseCase
	tr     *i18n.Translator
	pages  *Pages
	cfg    config.HTTPConfig
	log    *zerolog.Logger
	now    func() time.Time

	server *http.Server
}

func NewServer(
	digest usecase.DigestUseCase,
	subs usecase.SubscriptionUseCase,
	tr *i18n.Translator,
	links usecase.Links,
	cfg config.HTTPConfig,
	logger *zerolog.Logger,
) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 15 * time.Second
	}
	l := logger.With().Str("component", "HTTP").Logger()
	return &Server{
		digest: digest,
		subs:   subs,
		tr:     tr,
		pages:  NewPages(tr, links),
		cfg:    cfg,
		log:    &l,
		now:    time.Now,
	}
}

// Router builds the chi mux with all routes wired.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(
		TraceID(),
		RequestLog(s.log),
		Recover(s.log),
		middleware.StripSlashes,
	)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(Timeout(s.cfg.RequestTimeout))

		r.Route("/email", func(r chi.Router) {
			r.Get("/confirm/{user_id}/{secret}", s.handleConfirm)
			r.Get("/unsubscribe/{user_id}/{secret}", s.handleUnsubscribe)
			r.Get("/digest/{digest_type}/{user_id}/{secret}", s.handleSetDigest)
		})
		r.Route("/digest", func(r chi.Router) {
			r.Get("/daily/{user_slug}", s.handleDaily)
			r.Get("/weekly", s.handleWeekly)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.renderMessage(w, http.StatusNotFound, s.tr.T("not_found_title"), "")
	})
	return r
}

// Start blocks serving on cfg.Port until Shutdown.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info().Int("port", s.cfg.Port).Msg("http server listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
