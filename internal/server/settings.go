package server

import (
	"mime"
	"net/http"

	"github.com/orgball2608/contentflow/internal/domain"
	"github.com/orgball2608/contentflow/internal/feedimport"
	"github.com/orgball2608/contentflow/internal/playbook"
	"github.com/orgball2608/contentflow/internal/render"
	"github.com/orgball2608/contentflow/internal/settings"
	"github.com/orgball2608/contentflow/pkg/errors"
)

type settingsResponse struct {
	APIKey    string         `json:"apiKey"`
	HasAPIKey bool           `json:"hasApiKey"`
	Theme     settings.Theme `json:"theme"`
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	key, err := s.settings.APIKey(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	theme, err := s.settings.Theme(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	render.JSON(w, http.StatusOK, settingsResponse{
		APIKey:    settings.MaskKey(key),
		HasAPIKey: key != "",
		Theme:     theme,
	})
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var req struct {
		APIKey *string         `json:"apiKey"`
		Theme  *settings.Theme `json:"theme"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}

	ctx := r.Context()
	if req.Theme != nil {
		err := s.settings.SetTheme(ctx, *req.Theme)
		s.track("settings", err)
		if err != nil {
			s.fail(w, err)
			return
		}
	}
	if req.APIKey != nil {
		err := s.settings.SetAPIKey(ctx, *req.APIKey)
		s.track("settings", err)
		if err != nil {
			s.fail(w, err)
			return
		}
	}
	s.handleGetSettings(w, r)
}

func (s *Server) handlePlaybook(w http.ResponseWriter, r *http.Request) {
	p, err := domain.ParsePlatform(r.URL.Query().Get("platform"))
	if err != nil {
		s.fail(w, invalid(err))
		return
	}
	render.JSON(w, http.StatusOK, playbook.For(p))
}

// handleImport takes either {"url", "platform", "status"} as JSON or a raw
// feed document with platform and status in the query.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var result feedimport.Result

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req struct {
			URL      string `json:"url"`
			Platform string `json:"platform"`
			Status   string `json:"status"`
		}
		if err := decode(r, &req); err != nil {
			s.fail(w, err)
			return
		}
		if req.URL == "" {
			s.fail(w, errors.WrapWithCode(errors.ErrInvalidInput, "url_required", "url is required"))
			return
		}
		opts, err := importOptions(req.Platform, req.Status)
		if err != nil {
			s.fail(w, err)
			return
		}
		result, err = s.importer.ImportURL(r.Context(), req.URL, opts)
		s.track("import", err)
		if err != nil {
			s.fail(w, err)
			return
		}
	} else {
		q := r.URL.Query()
		opts, err := importOptions(q.Get("platform"), q.Get("status"))
		if err != nil {
			s.fail(w, err)
			return
		}
		result, err = s.importer.ImportReader(r.Context(), r.Body, opts)
		s.track("import", err)
		if err != nil {
			s.fail(w, err)
			return
		}
	}

	render.JSON(w, http.StatusOK, result)
}

func importOptions(platform, status string) (feedimport.Options, error) {
	var opts feedimport.Options
	p, err := domain.ParsePlatform(platform)
	if err != nil {
		return opts, invalid(err)
	}
	opts.Platform = p
	if status != "" {
		st, err := domain.ParseStatus(status)
		if err != nil {
			return opts, invalid(err)
		}
		opts.Status = st
	}
	return opts, nil
}
