package chat

import (
	"context"

	"github.com/orgball2608/contentflow/internal/domain"
)

//go:generate go run go.uber.org/mock/mockgen -source=chat.go -destination=mocks/mock.go
type History interface {
	// Load returns the messages stored for postID. Missing or malformed history is empty.
	Load(ctx context.Context, postID string) ([]domain.ChatMessage, error)
	Save(ctx context.Context, postID string, messages []domain.ChatMessage) error
	Clear(ctx context.Context, postID string) error

	// PostIDs lists posts that have stored history.
	PostIDs(ctx context.Context) ([]string, error)
}

// NewMessage stamps a message with a fresh id and the current time.
func NewMessage(role domain.Role, content, quickActionID string, nowMillis int64) domain.ChatMessage {
	return domain.ChatMessage{
		ID:            domain.NewID(),
		Role:          role,
		Content:       content,
		Timestamp:     nowMillis,
		QuickActionID: quickActionID,
	}
}
