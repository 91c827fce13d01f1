package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/orgball2608/contentflow/internal/chat/chatimpl"
	"github.com/orgball2608/contentflow/internal/chatproxy"
	"github.com/orgball2608/contentflow/internal/domain"
	"github.com/orgball2608/contentflow/internal/feed/feedimpl"
	"github.com/orgball2608/contentflow/internal/feedimport"
	mock_llm "github.com/orgball2608/contentflow/internal/llm/mocks"
	"github.com/orgball2608/contentflow/internal/metrics"
	mock_notifier "github.com/orgball2608/contentflow/internal/notifier/mocks"
	"github.com/orgball2608/contentflow/internal/planner"
	"github.com/orgball2608/contentflow/internal/planner/plannerimpl"
	"github.com/orgball2608/contentflow/internal/playbook"
	"github.com/orgball2608/contentflow/internal/repositories/kv"
	"github.com/orgball2608/contentflow/internal/settings"
	"github.com/orgball2608/contentflow/pkg/config"
	"github.com/orgball2608/contentflow/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.Timezone = "UTC"
	cfg.Chat.RateLimitRequests = 1
	cfg.Chat.RateLimitPer = time.Minute
	cfg.Chat.RateLimitBurst = 1

	storage := kv.NewMemory()
	log := logger.NewNop()
	m := metrics.New()
	ctrl := gomock.NewController(t)

	store := feedimpl.New(feedimpl.Opts{Storage: storage, Logger: log})
	history := chatimpl.New(chatimpl.Opts{Storage: storage, Logger: log})

	return New(Opts{
		Config:   cfg,
		Logger:   log,
		Metrics:  m,
		Store:    store,
		History:  history,
		Settings: settings.New(storage),
		Planner: plannerimpl.New(plannerimpl.Opts{
			Store:    store,
			History:  history,
			Notifier: mock_notifier.NewMockNotifier(ctrl),
			Metrics:  m,
			Logger:   log,
			Config:   cfg,
		}),
		Importer: feedimport.New(feedimport.Opts{Store: store, Metrics: m, Logger: log}),
		Chat:     chatproxy.New(chatproxy.Opts{Provider: mock_llm.NewMockProvider(ctrl), Logger: log, Metrics: m}),
	})
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func createPost(t *testing.T, s *Server, body string) domain.Post {
	t.Helper()
	w := do(t, s, http.MethodPost, "/api/posts", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeBody[domain.Post](t, w)
}

func TestHealthz(t *testing.T) {
	w := do(t, newServer(t), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestPostLifecycle(t *testing.T) {
	s := newServer(t)

	post := createPost(t, s, `{"body":"<p>Hello</p>","platform":"linkedin"}`)
	assert.Equal(t, domain.StatusIdea, post.Status)
	doc := createPost(t, s, `{"body":"<p>Notes</p>","platform":null}`)

	w := do(t, s, http.MethodGet, "/api/posts/"+post.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, post.ID, decodeBody[domain.Post](t, w).ID)

	w = do(t, s, http.MethodPatch, "/api/posts/"+post.ID, `{"status":"draft","title":"Hi"}`)
	require.Equal(t, http.StatusOK, w.Code)
	updated := decodeBody[domain.Post](t, w)
	assert.Equal(t, domain.StatusDraft, updated.Status)
	assert.Equal(t, "Hi", updated.Title)

	w = do(t, s, http.MethodGet, "/api/posts?platform=linkedin", "")
	require.Equal(t, http.StatusOK, w.Code)
	listed := decodeBody[[]domain.Post](t, w)
	require.Len(t, listed, 1)
	assert.Equal(t, post.ID, listed[0].ID)

	w = do(t, s, http.MethodGet, "/api/posts?platform=doc", "")
	listed = decodeBody[[]domain.Post](t, w)
	require.Len(t, listed, 1)
	assert.Equal(t, doc.ID, listed[0].ID)

	w = do(t, s, http.MethodGet, "/api/posts?status=draft", "")
	assert.Len(t, decodeBody[[]domain.Post](t, w), 1)

	w = do(t, s, http.MethodDelete, "/api/posts/"+post.ID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, s, http.MethodGet, "/api/posts/"+post.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotEmpty(t, decodeBody[map[string]string](t, w)["error"])
}

func TestBadRequests(t *testing.T) {
	s := newServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"unknown platform filter", http.MethodGet, "/api/posts?platform=myspace", "", http.StatusBadRequest},
		{"unknown status filter", http.MethodGet, "/api/posts?status=done", "", http.StatusBadRequest},
		{"invalid json", http.MethodPost, "/api/posts", "{", http.StatusBadRequest},
		{"unknown platform on create", http.MethodPost, "/api/posts", `{"platform":"myspace"}`, http.StatusBadRequest},
		{"missing post", http.MethodPatch, "/api/posts/nope123", `{"title":"x"}`, http.StatusNotFound},
		{"bad week", http.MethodGet, "/api/weekly?week=03/10/2025", "", http.StatusBadRequest},
		{"unknown theme", http.MethodPut, "/api/settings", `{"theme":"sepia"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
		})
	}
}

func TestPinLimitConflict(t *testing.T) {
	s := newServer(t)

	for i := 0; i < domain.MaxPinned; i++ {
		p := createPost(t, s, fmt.Sprintf(`{"body":"<p>%d</p>","platform":"twitter"}`, i))
		w := do(t, s, http.MethodPut, "/api/posts/"+p.ID+"/pin", `{"pinned":true}`)
		require.Equal(t, http.StatusOK, w.Code)
	}

	extra := createPost(t, s, `{"body":"<p>one more</p>","platform":"twitter"}`)
	w := do(t, s, http.MethodPut, "/api/posts/"+extra.ID+"/pin", `{"pinned":true}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRelated(t *testing.T) {
	s := newServer(t)

	root := createPost(t, s, `{"body":"<p>root</p>","platform":"newsletter"}`)
	child := createPost(t, s, fmt.Sprintf(`{"body":"<p>child</p>","platform":"linkedin","sourceId":%q}`, root.ID))

	w := do(t, s, http.MethodGet, "/api/posts/"+child.ID+"/related", "")
	require.Equal(t, http.StatusOK, w.Code)

	var got struct {
		Posts []domain.Post `json:"posts"`
		Tree  struct {
			Post     domain.Post `json:"post"`
			Children []struct {
				Post domain.Post `json:"post"`
			} `json:"children"`
		} `json:"tree"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got.Posts, 2)
	assert.Equal(t, root.ID, got.Tree.Post.ID)
	require.Len(t, got.Tree.Children, 1)
	assert.Equal(t, child.ID, got.Tree.Children[0].Post.ID)
}

func TestExport(t *testing.T) {
	s := newServer(t)
	post := createPost(t, s, `{"body":"<p>Hello World</p>","platform":"linkedin"}`)

	w := do(t, s, http.MethodGet, "/api/posts/"+post.ID+"/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="hello-world.md"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "Hello World\n", w.Body.String())
}

func TestWeeklyScheduling(t *testing.T) {
	s := newServer(t)
	post := createPost(t, s, `{"body":"<p>Plan</p>","platform":"linkedin"}`)

	wednesday := time.Date(2025, 3, 12, 10, 30, 0, 0, time.UTC)
	w := do(t, s, http.MethodPut, "/api/posts/"+post.ID+"/schedule", fmt.Sprintf(`{"scheduledFor":%d}`, wednesday.UnixMilli()))
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, s, http.MethodGet, "/api/weekly?week=2025-03-12", "")
	require.Equal(t, http.StatusOK, w.Code)
	week := decodeBody[planner.Week](t, w)
	assert.True(t, week.Start.Equal(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)))
	require.NotEmpty(t, week.Rows)
	assert.Equal(t, domain.PlatformLinkedIn, week.Rows[0].Platform)
	require.Len(t, week.Rows[0].Days[2].Posts, 1)
	assert.Equal(t, post.ID, week.Rows[0].Days[2].Posts[0].ID)

	w = do(t, s, http.MethodPut, "/api/weekly/"+post.ID, `{"day":"2025-03-14"}`)
	require.Equal(t, http.StatusOK, w.Code)
	moved := decodeBody[domain.Post](t, w)
	require.NotNil(t, moved.ScheduledFor)
	assert.Equal(t, time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC).UnixMilli(), *moved.ScheduledFor)

	w = do(t, s, http.MethodPut, "/api/posts/"+post.ID+"/schedule", `{"scheduledFor":null}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decodeBody[domain.Post](t, w).ScheduledFor)
}

func TestCadenceAndFormats(t *testing.T) {
	s := newServer(t)

	w := do(t, s, http.MethodPut, "/api/cadence", `{"linkedin":[true,false,true]}`)
	require.Equal(t, http.StatusOK, w.Code)
	cadence := decodeBody[domain.WeeklyCadence](t, w)
	assert.Equal(t, []bool{true, false, true, false, false, false, false}, cadence[domain.PlatformLinkedIn])
	assert.Len(t, cadence[domain.PlatformTikTok], 7)

	w = do(t, s, http.MethodPost, "/api/formats", `{"platform":"youtube","format":"Livestream"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decodeBody[domain.UserFormats](t, w)[domain.PlatformYouTube], "Livestream")

	w = do(t, s, http.MethodPost, "/api/formats", `{"platform":null,"format":"Memo"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSettingsMasksKey(t *testing.T) {
	s := newServer(t)

	w := do(t, s, http.MethodPut, "/api/settings", `{"apiKey":"sk-ant-secret-1234","theme":"dark"}`)
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeBody[settingsResponse](t, w)
	assert.Equal(t, "**************1234", got.APIKey)
	assert.True(t, got.HasAPIKey)
	assert.Equal(t, settings.ThemeDark, got.Theme)

	w = do(t, s, http.MethodPut, "/api/settings", `{"apiKey":""}`)
	got = decodeBody[settingsResponse](t, w)
	assert.False(t, got.HasAPIKey)
	assert.Equal(t, settings.ThemeDark, got.Theme)
}

func TestPlaybook(t *testing.T) {
	s := newServer(t)

	w := do(t, s, http.MethodGet, "/api/playbooks?platform=tiktok", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, playbook.For(domain.PlatformTikTok).Name, decodeBody[playbook.Playbook](t, w).Name)

	w = do(t, s, http.MethodGet, "/api/playbooks", "")
	assert.Equal(t, playbook.For(domain.NoPlatform).Name, decodeBody[playbook.Playbook](t, w).Name)
}

const rss = `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Blog</title>
<item><title>First</title><description>One</description></item>
<item><title>Second</title><description>Two</description></item>
</channel></rss>`

func TestImportRawFeed(t *testing.T) {
	s := newServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/import?platform=newsletter", strings.NewReader(rss))
	req.Header.Set("Content-Type", "application/rss+xml")
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	res := decodeBody[feedimport.Result](t, w)
	assert.Equal(t, "Blog", res.Title)
	assert.Len(t, res.Imported, 2)

	w = do(t, s, http.MethodPost, "/api/import", `{"platform":"newsletter"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatRateLimited(t *testing.T) {
	s := newServer(t)

	w := do(t, s, http.MethodPost, "/api/chat", "{")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodPost, "/api/chat", "{")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newServer(t)
	createPost(t, s, `{"body":"<p>x</p>","platform":"linkedin"}`)

	w := do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `contentflow_api_writes_total{operation="create",result="ok"} 1`)
}
