// Package assistant drives a drafting conversation about one post through the
// chat proxy, keeping the per-post history up to date.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"
	"github.com/orgball2608/contentflow/internal/chat"
	"github.com/orgball2608/contentflow/internal/chatproxy"
	"github.com/orgball2608/contentflow/internal/domain"
	"github.com/orgball2608/contentflow/internal/feed"
	"github.com/orgball2608/contentflow/internal/playbook"
	"github.com/orgball2608/contentflow/internal/settings"
	"github.com/orgball2608/contentflow/pkg/config"
	"github.com/orgball2608/contentflow/pkg/errors"
	"github.com/orgball2608/contentflow/pkg/formatter"
	"github.com/orgball2608/contentflow/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Store    feed.Store
	History  chat.History
	Settings settings.Store
	Config   *config.Config
	Logger   logger.Logger
}

type Assistant struct {
	store    feed.Store
	history  chat.History
	settings settings.Store
	logger   logger.Logger

	proxyURL string
	client   *http.Client
	now      func() time.Time
}

// Result is the conversation after a Send.
type Result struct {
	Messages []domain.ChatMessage `json:"messages"`
	Reply    string               `json:"reply"`
	// Aborted is set when ctx ended the stream; the partial reply is kept.
	Aborted bool `json:"aborted"`
}

func New(opts Opts) *Assistant {
	return &Assistant{
		store:    opts.Store,
		history:  opts.History,
		settings: opts.Settings,
		logger:   opts.Logger.WithComponent("assistant"),
		proxyURL: opts.Config.Chat.ProxyURL,
		client:   &http.Client{},
		now:      time.Now,
	}
}

var Module = fx.Module("assistant",
	fx.Provide(New),
)

// Send asks about postID. onText, when set, receives each text delta.
func (a *Assistant) Send(ctx context.Context, postID, content, quickActionID string, onText func(string)) (Result, error) {
	apiKey, err := a.settings.APIKey(ctx)
	if err != nil {
		return Result{}, err
	}
	if apiKey == "" {
		return Result{}, errors.WrapWithCode(errors.ErrNoAPIKey, "no_api_key",
			"No API key configured. Add your Anthropic API key in Settings.")
	}

	post, err := a.store.Get(ctx, postID)
	if err != nil {
		return Result{}, err
	}
	pinned, err := a.store.Pinned(ctx, post.Platform)
	if err != nil {
		return Result{}, err
	}
	messages, err := a.history.Load(ctx, postID)
	if err != nil {
		return Result{}, err
	}

	messages = append(messages, chat.NewMessage(domain.RoleUser, content, quickActionID, a.now().UnixMilli()))
	req := buildRequest(post, pinned, messages, apiKey)
	messages = append(messages, chat.NewMessage(domain.RoleAssistant, "", "", a.now().UnixMilli()))
	last := len(messages) - 1

	reply, streamErr := a.stream(ctx, req, func(text string) {
		messages[last].Content += text
		if onText != nil {
			onText(text)
		}
	})

	// ctx may be done already; history is written regardless.
	saveCtx := context.WithoutCancel(ctx)

	switch {
	case streamErr == nil:
		return Result{Messages: messages, Reply: reply}, a.history.Save(saveCtx, postID, messages)

	case ctx.Err() != nil:
		a.logger.Info("Reply stopped", "post_id", postID, "partial_chars", len(reply))
		return Result{Messages: messages, Reply: reply, Aborted: true}, a.history.Save(saveCtx, postID, messages)

	default:
		if messages[last].Content == "" {
			messages = messages[:last]
		}
		if err := a.history.Save(saveCtx, postID, messages); err != nil {
			a.logger.Error("Failed to save chat history", "post_id", postID, "error", err)
		}
		return Result{Messages: messages, Reply: reply}, streamErr
	}
}

func buildRequest(post domain.Post, pinned []domain.Post, messages []domain.ChatMessage, apiKey string) chatproxy.Request {
	req := chatproxy.Request{
		SystemPrompt:       playbook.For(post.Platform).SystemPrompt,
		CurrentContent:     formatter.StripHTML(post.Body),
		CurrentTitle:       post.Title,
		CurrentDescription: post.Description,
		Platform:           post.Platform,
		APIKey:             apiKey,
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, chatproxy.Message{Role: m.Role, Content: m.Content})
	}
	for _, p := range pinned {
		req.ExamplePosts = append(req.ExamplePosts, chatproxy.ExamplePost{Body: formatter.StripHTML(p.Body), Title: p.Title})
	}
	return req
}

// stream posts req to the proxy and reads events until [DONE] or EOF.
func (a *Assistant) stream(ctx context.Context, req chatproxy.Request, onText func(string)) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.proxyURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var failure chatproxy.Event
		if err := json.NewDecoder(resp.Body).Decode(&failure); err != nil || failure.Error == "" {
			return "", fmt.Errorf("HTTP %d", resp.StatusCode)
		}
		return "", errors.New(failure.Error)
	}

	var reply string
	decoder := ssestream.NewDecoder(resp)
	for decoder.Next() {
		data := bytes.TrimSpace(decoder.Event().Data)
		if string(data) == chatproxy.Done {
			return reply, nil
		}

		var ev chatproxy.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			continue
		}
		if ev.Error != "" {
			return reply, errors.New(ev.Error)
		}
		if ev.Text != "" {
			reply += ev.Text
			onText(ev.Text)
		}
	}
	return reply, decoder.Err()
}
