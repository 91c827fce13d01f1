package chatimpl

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/orgball2608/contentflow/internal/chat"
	"github.com/orgball2608/contentflow/internal/domain"
	"github.com/orgball2608/contentflow/internal/repositories/kv"
	"github.com/orgball2608/contentflow/pkg/errors"
	"github.com/orgball2608/contentflow/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Storage kv.Repository
	Logger  logger.Logger
}

type HistoryImpl struct {
	storage kv.Repository
	logger  logger.Logger
}

var _ chat.History = (*HistoryImpl)(nil)

func New(opts Opts) *HistoryImpl {
	return &HistoryImpl{
		storage: opts.Storage,
		logger:  opts.Logger.WithComponent("chat_history"),
	}
}

var Module = fx.Module("chat_history",
	fx.Provide(
		fx.Annotate(New, fx.As(new(chat.History))),
	),
)

func (h *HistoryImpl) Load(ctx context.Context, postID string) ([]domain.ChatMessage, error) {
	raw, err := h.storage.Get(ctx, domain.ChatKey(postID))
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			h.logger.Warn("Failed to read chat history", "post_id", postID, "error", err)
		}
		return []domain.ChatMessage{}, nil
	}

	var messages []domain.ChatMessage
	if err := json.Unmarshal([]byte(raw), &messages); err != nil || messages == nil {
		h.logger.Warn("Ignoring malformed chat history", "post_id", postID)
		return []domain.ChatMessage{}, nil
	}
	return messages, nil
}

func (h *HistoryImpl) Save(ctx context.Context, postID string, messages []domain.ChatMessage) error {
	if messages == nil {
		messages = []domain.ChatMessage{}
	}
	data, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("failed to encode chat history: %w", err)
	}
	if err := h.storage.Set(ctx, domain.ChatKey(postID), string(data)); err != nil {
		return fmt.Errorf("failed to save chat history for %s: %w", postID, err)
	}
	return nil
}

func (h *HistoryImpl) Clear(ctx context.Context, postID string) error {
	if err := h.storage.Delete(ctx, domain.ChatKey(postID)); err != nil {
		return fmt.Errorf("failed to clear chat history for %s: %w", postID, err)
	}
	return nil
}

func (h *HistoryImpl) PostIDs(ctx context.Context) ([]string, error) {
	keys, err := h.storage.Keys(ctx, domain.ChatKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat histories: %w", err)
	}

	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, strings.TrimPrefix(k, domain.ChatKeyPrefix))
	}
	return ids, nil
}
