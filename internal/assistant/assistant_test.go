package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/orgball2608/contentflow/internal/chat/chatimpl"
	"github.com/orgball2608/contentflow/internal/chatproxy"
	"github.com/orgball2608/contentflow/internal/domain"
	"github.com/orgball2608/contentflow/internal/feed/feedimpl"
	"github.com/orgball2608/contentflow/internal/playbook"
	"github.com/orgball2608/contentflow/internal/repositories/kv"
	"github.com/orgball2608/contentflow/internal/settings"
	"github.com/orgball2608/contentflow/pkg/config"
	"github.com/orgball2608/contentflow/pkg/errors"
	"github.com/orgball2608/contentflow/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	assistant *Assistant
	history   *chatimpl.HistoryImpl
	settings  *settings.StoreImpl
	post      domain.Post
}

func setup(t *testing.T, proxyURL string) fixture {
	t.Helper()
	ctx := context.Background()
	storage := kv.NewMemory()
	log := logger.NewNop()

	store := feedimpl.New(feedimpl.Opts{Storage: storage, Logger: log})
	history := chatimpl.New(chatimpl.Opts{Storage: storage, Logger: log})
	st := settings.New(storage)
	require.NoError(t, st.SetAPIKey(ctx, "sk-test"))

	post, err := store.Create(ctx, domain.NewPost{
		Body:     "<p>Draft&nbsp;about <b>shipping</b></p>",
		Title:    "Shipping",
		Platform: domain.PlatformLinkedIn,
	})
	require.NoError(t, err)

	example, err := store.Create(ctx, domain.NewPost{Body: "<p>My voice</p>", Platform: domain.PlatformLinkedIn})
	require.NoError(t, err)
	_, err = store.SetPinned(ctx, example.ID, true)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Chat.ProxyURL = proxyURL

	return fixture{
		assistant: New(Opts{Store: store, History: history, Settings: st, Config: cfg, Logger: log}),
		history:   history,
		settings:  st,
		post:      post,
	}
}

func writeEvent(w http.ResponseWriter, data string) {
	fmt.Fprintf(w, "data: %s\n\n", data)
	w.(http.Flusher).Flush()
}

func TestSendStreamsReply(t *testing.T) {
	var got chatproxy.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "text/event-stream")
		writeEvent(w, `{"text":"Hello"}`)
		writeEvent(w, `not json`)
		writeEvent(w, `{"text":" world"}`)
		writeEvent(w, chatproxy.Done)
	}))
	defer srv.Close()

	f := setup(t, srv.URL)
	var deltas []string
	res, err := f.assistant.Send(context.Background(), f.post.ID, "Make it punchier", "hook", func(s string) {
		deltas = append(deltas, s)
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Hello", " world"}, deltas)
	assert.Equal(t, "Hello world", res.Reply)
	assert.False(t, res.Aborted)

	assert.Equal(t, "sk-test", got.APIKey)
	assert.Equal(t, playbook.For(domain.PlatformLinkedIn).SystemPrompt, got.SystemPrompt)
	assert.Equal(t, "Draft about shipping", got.CurrentContent)
	assert.Equal(t, "Shipping", got.CurrentTitle)
	assert.Equal(t, domain.PlatformLinkedIn, got.Platform)
	assert.Equal(t, []chatproxy.ExamplePost{{Body: "My voice"}}, got.ExamplePosts)
	assert.Equal(t, []chatproxy.Message{{Role: domain.RoleUser, Content: "Make it punchier"}}, got.Messages)

	saved, err := f.history.Load(context.Background(), f.post.ID)
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, "hook", saved[0].QuickActionID)
	assert.Equal(t, domain.RoleAssistant, saved[1].Role)
	assert.Equal(t, "Hello world", saved[1].Content)
}

func TestSendIncludesHistory(t *testing.T) {
	var got chatproxy.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeEvent(w, `{"text":"ok"}`)
	}))
	defer srv.Close()

	f := setup(t, srv.URL)
	ctx := context.Background()
	_, err := f.assistant.Send(ctx, f.post.ID, "first", "", nil)
	require.NoError(t, err)
	_, err = f.assistant.Send(ctx, f.post.ID, "second", "", nil)
	require.NoError(t, err)

	assert.Equal(t, []chatproxy.Message{
		{Role: domain.RoleUser, Content: "first"},
		{Role: domain.RoleAssistant, Content: "ok"},
		{Role: domain.RoleUser, Content: "second"},
	}, got.Messages)

	saved, err := f.history.Load(ctx, f.post.ID)
	require.NoError(t, err)
	assert.Len(t, saved, 4)
}

func TestSendWithoutAPIKey(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	f := setup(t, srv.URL)
	require.NoError(t, f.settings.SetAPIKey(context.Background(), ""))

	_, err := f.assistant.Send(context.Background(), f.post.ID, "hi", "", nil)
	assert.True(t, errors.Is(err, errors.ErrNoAPIKey))
	assert.False(t, called)
}

func TestSendStreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEvent(w, `{"error":"Overloaded"}`)
	}))
	defer srv.Close()

	f := setup(t, srv.URL)
	res, err := f.assistant.Send(context.Background(), f.post.ID, "hi", "", nil)
	require.Error(t, err)
	assert.Equal(t, "Overloaded", err.Error())
	require.Len(t, res.Messages, 1)
	assert.Equal(t, domain.RoleUser, res.Messages[0].Role)

	saved, err := f.history.Load(context.Background(), f.post.ID)
	require.NoError(t, err)
	assert.Len(t, saved, 1)
}

func TestSendProxyRejects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Messages are required"}`))
	}))
	defer srv.Close()

	f := setup(t, srv.URL)
	_, err := f.assistant.Send(context.Background(), f.post.ID, "hi", "", nil)
	require.Error(t, err)
	assert.Equal(t, "Messages are required", err.Error())
}

func TestSendProxyFailsWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	f := setup(t, srv.URL)
	_, err := f.assistant.Send(context.Background(), f.post.ID, "hi", "", nil)
	require.Error(t, err)
	assert.Equal(t, "HTTP 502", err.Error())
}

func TestSendAbortKeepsPartialReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEvent(w, `{"text":"Half a th"}`)
		<-r.Context().Done()
	}))
	defer srv.Close()

	f := setup(t, srv.URL)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	res, err := f.assistant.Send(ctx, f.post.ID, "hi", "", func(string) { cancel() })
	require.NoError(t, err)
	assert.True(t, res.Aborted)
	assert.Equal(t, "Half a th", res.Reply)

	saved, err := f.history.Load(context.Background(), f.post.ID)
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, "Half a th", saved[1].Content)
}

func TestSendUnknownPost(t *testing.T) {
	f := setup(t, "http://127.0.0.1:0")
	_, err := f.assistant.Send(context.Background(), "missing", "hi", "", nil)
	assert.True(t, errors.IsNotFound(err))
}
