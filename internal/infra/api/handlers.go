package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"club-bridge/internal/domain"
	"club-bridge/internal/infra/logging"
)

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	err := s.subs.ConfirmEmail(r.Context(), chi.URLParam(r, "user_id"), chi.URLParam(r, "secret"))
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.renderMessage(w, http.StatusOK, s.tr.T("email_confirmed_title"), s.tr.T("email_confirmed_message"))
}

func (s *Server) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	err := s.subs.UnsubscribeAll(r.Context(), chi.URLParam(r, "user_id"), chi.URLParam(r, "secret"))
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.renderMessage(w, http.StatusOK, s.tr.T("email_unsubscribed_title"), s.tr.T("email_unsubscribed_message"))
}

func (s *Server) handleSetDigest(w http.ResponseWriter, r *http.Request) {
	dt, err := s.subs.SetDigest(r.Context(), chi.URLParam(r, "user_id"), chi.URLParam(r, "secret"), chi.URLParam(r, "digest_type"))
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	prefix := "digest_" + string(dt)
	s.renderMessage(w, http.StatusOK, s.tr.T(prefix+"_title"), s.tr.T(prefix+"_message"))
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	d, err := s.digest.Daily(r.Context(), chi.URLParam(r, "user_slug"), s.now())
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, PageDaily, d)
}

func (s *Server) handleWeekly(w http.ResponseWriter, r *http.Request) {
	d, err := s.digest.Weekly(r.Context(), s.now())
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, PageWeekly, d)
}

// renderError maps missing or empty results to 404 and everything else to 500.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrEmptyDigest) {
		s.renderMessage(w, http.StatusNotFound, s.tr.T("not_found_title"), "")
		return
	}
	logging.With(r.Context(), s.log).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func (s *Server) renderMessage(w http.ResponseWriter, code int, title, msg string) {
	s.render(w, nil, code, PageMessage, struct {
		Title   string
		Message string
	}{title, msg})
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, code int, name string, data interface{}) {
	body, err := s.pages.Execute(name, data)
	if err != nil {
		l := s.log
		if r != nil {
			l = logging.With(r.Context(), s.log)
		}
		l.Error().Err(err).Str("template", name).Msg("render failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(body)
}
