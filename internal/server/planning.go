package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/orgball2608/contentflow/internal/domain"
	"github.com/orgball2608/contentflow/internal/render"
	"github.com/orgball2608/contentflow/pkg/errors"
)

const dayLayout = "2006-01-02"

func (s *Server) parseDay(raw string) (time.Time, error) {
	day, err := time.ParseInLocation(dayLayout, raw, s.cfg.Location())
	if err != nil {
		return time.Time{}, errors.WrapWithCode(errors.ErrInvalidInput, "invalid_day", "day must be YYYY-MM-DD")
	}
	return day, nil
}

func (s *Server) handleWeekly(w http.ResponseWriter, r *http.Request) {
	start := time.Now().In(s.cfg.Location())
	if raw := r.URL.Query().Get("week"); raw != "" {
		day, err := s.parseDay(raw)
		if err != nil {
			s.fail(w, err)
			return
		}
		start = day
	}

	week, err := s.planner.WeekGrid(r.Context(), start)
	if err != nil {
		s.fail(w, err)
		return
	}
	render.JSON(w, http.StatusOK, week)
}

func (s *Server) handleMoveToDay(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Day string `json:"day"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	day, err := s.parseDay(req.Day)
	if err != nil {
		s.fail(w, err)
		return
	}

	post, err := s.planner.MoveToDay(r.Context(), chi.URLParam(r, "id"), day)
	s.track("move", err)
	if err != nil {
		s.fail(w, err)
		return
	}
	render.JSON(w, http.StatusOK, post)
}

func (s *Server) handleGetCadence(w http.ResponseWriter, r *http.Request) {
	cadence, err := s.store.Cadence(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	render.JSON(w, http.StatusOK, cadence)
}

func (s *Server) handleSaveCadence(w http.ResponseWriter, r *http.Request) {
	var cadence domain.WeeklyCadence
	if err := decode(r, &cadence); err != nil {
		s.fail(w, err)
		return
	}
	saved, err := s.store.SaveCadence(r.Context(), cadence)
	s.track("cadence", err)
	if err != nil {
		s.fail(w, err)
		return
	}
	render.JSON(w, http.StatusOK, saved)
}

func (s *Server) handleGetFormats(w http.ResponseWriter, r *http.Request) {
	formats, err := s.store.Formats(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	render.JSON(w, http.StatusOK, formats)
}

func (s *Server) handleAddFormat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Platform domain.Platform `json:"platform"`
		Format   string          `json:"format"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	formats, err := s.store.AddFormat(r.Context(), req.Platform, req.Format)
	s.track("format", err)
	if err != nil {
		s.fail(w, err)
		return
	}
	render.JSON(w, http.StatusOK, formats)
}
