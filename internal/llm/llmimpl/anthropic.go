package llmimpl

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"
	"github.com/orgball2608/contentflow/internal/domain"
	"github.com/orgball2608/contentflow/internal/llm"
	"github.com/orgball2608/contentflow/pkg/config"
	"github.com/orgball2608/contentflow/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

// AnthropicImpl talks to the Messages API. The key travels with each request,
// so a client is built per call.
type AnthropicImpl struct {
	baseURL   string
	model     string
	maxTokens int64
	logger    logger.Logger
}

var _ llm.Provider = (*AnthropicImpl)(nil)

func New(opts Opts) *AnthropicImpl {
	return &AnthropicImpl{
		baseURL:   opts.Config.Anthropic.BaseURL,
		model:     opts.Config.Anthropic.Model,
		maxTokens: opts.Config.Anthropic.MaxTokens,
		logger:    opts.Logger.WithComponent("anthropic"),
	}
}

var Module = fx.Module("llm",
	fx.Provide(
		fx.Annotate(New, fx.As(new(llm.Provider))),
	),
)

func (a *AnthropicImpl) Open(ctx context.Context, req llm.Request) (llm.Stream, error) {
	client := anthropic.NewClient(
		option.WithAPIKey(req.APIKey),
		option.WithBaseURL(a.baseURL),
		option.WithMaxRetries(0),
	)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		Messages:  toMessageParams(req.Messages),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	stream := client.Messages.NewStreaming(ctx, params)
	if err := stream.Err(); err != nil {
		stream.Close()
		a.logger.Warn("Failed to open completion stream", "model", a.model, "error", err)
		return nil, err
	}

	return &anthropicStream{stream: stream}, nil
}

func toMessageParams(messages []llm.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))
	for _, m := range messages {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == domain.RoleAssistant {
			out = append(out, anthropic.NewAssistantMessage(block))
			continue
		}
		out = append(out, anthropic.NewUserMessage(block))
	}
	return out
}

type anthropicStream struct {
	stream *ssestream.Stream[anthropic.MessageStreamEventUnion]
	text   string
}

// Next skips every event but text deltas.
func (s *anthropicStream) Next() bool {
	for s.stream.Next() {
		event, ok := s.stream.Current().AsAny().(anthropic.ContentBlockDeltaEvent)
		if !ok {
			continue
		}
		delta, ok := event.Delta.AsAny().(anthropic.TextDelta)
		if !ok || delta.Text == "" {
			continue
		}
		s.text = delta.Text
		return true
	}
	return false
}

func (s *anthropicStream) Text() string { return s.text }

func (s *anthropicStream) Err() error { return s.stream.Err() }

func (s *anthropicStream) Close() error { return s.stream.Close() }
