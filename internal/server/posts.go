package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/orgball2608/contentflow/internal/domain"
	"github.com/orgball2608/contentflow/internal/feed"
	"github.com/orgball2608/contentflow/internal/render"
	"github.com/orgball2608/contentflow/pkg/errors"
	"github.com/orgball2608/contentflow/pkg/formatter"
)

type relatedResponse struct {
	Posts []domain.Post `json:"posts"`
	Tree  *feed.Node    `json:"tree"`
}

// parseFilter reads platform and status from the query. platform=doc selects docs.
func parseFilter(r *http.Request) (feed.Filter, error) {
	var f feed.Filter
	q := r.URL.Query()

	if raw := q.Get("platform"); raw != "" {
		p, err := domain.ParsePlatform(raw)
		if err != nil {
			return f, invalid(err)
		}
		if p.IsDoc() {
			f.Docs = true
		}
		f.Platform = p
	}
	if raw := q.Get("status"); raw != "" {
		st, err := domain.ParseStatus(raw)
		if err != nil {
			return f, invalid(err)
		}
		f.Status = st
	}
	return f, nil
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	posts, err := s.store.List(r.Context(), f)
	if err != nil {
		s.fail(w, err)
		return
	}
	render.JSON(w, http.StatusOK, posts)
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var in domain.NewPost
	if err := decode(r, &in); err != nil {
		s.fail(w, err)
		return
	}
	post, err := s.store.Create(r.Context(), in)
	s.track("create", err)
	if err != nil {
		s.fail(w, err)
		return
	}
	render.JSON(w, http.StatusCreated, post)
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	post, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	render.JSON(w, http.StatusOK, post)
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	var patch domain.PostPatch
	if err := decode(r, &patch); err != nil {
		s.fail(w, err)
		return
	}
	post, err := s.store.Update(r.Context(), chi.URLParam(r, "id"), patch)
	s.track("update", err)
	if err != nil {
		s.fail(w, err)
		return
	}
	render.JSON(w, http.StatusOK, post)
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.store.Delete(r.Context(), id)
	s.track("delete", err)
	if err != nil {
		s.fail(w, err)
		return
	}
	if err := s.history.Clear(r.Context(), id); err != nil {
		s.logger.Warn("Failed to clear chat history", "post_id", id, "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScheduledFor *int64 `json:"scheduledFor"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	post, err := s.store.Reschedule(r.Context(), chi.URLParam(r, "id"), req.ScheduledFor)
	s.track("schedule", err)
	if err != nil {
		s.fail(w, err)
		return
	}
	render.JSON(w, http.StatusOK, post)
}

func (s *Server) handlePin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Pinned bool `json:"pinned"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	post, err := s.store.SetPinned(r.Context(), chi.URLParam(r, "id"), req.Pinned)
	s.track("pin", err)
	if err != nil {
		s.fail(w, err)
		return
	}
	render.JSON(w, http.StatusOK, post)
}

func (s *Server) handleRelated(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	posts, err := s.store.Related(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	tree, err := s.store.Tree(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	render.JSON(w, http.StatusOK, relatedResponse{Posts: posts, Tree: tree})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	post, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	md, err := formatter.HTMLToMarkdown(post.Body)
	if err != nil {
		s.fail(w, errors.Wrap(err, "convert to markdown"))
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", formatter.MarkdownFilename(post.Body, post.ID)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(strings.TrimSpace(md) + "\n"))
}

func (s *Server) handleGetChat(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.history.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	render.JSON(w, http.StatusOK, msgs)
}

func (s *Server) handleClearChat(w http.ResponseWriter, r *http.Request) {
	err := s.history.Clear(r.Context(), chi.URLParam(r, "id"))
	s.track("clear_chat", err)
	if err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
