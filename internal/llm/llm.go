// Package llm opens streaming completions against a language model.
package llm

import (
	"context"

	"github.com/orgball2608/contentflow/internal/domain"
)

type Message struct {
	Role    domain.Role
	Content string
}

type Request struct {
	APIKey   string
	System   string
	Messages []Message
}

//go:generate go run go.uber.org/mock/mockgen -source=llm.go -destination=mocks/mock.go
type Provider interface {
	// Open starts a completion. An error means nothing was streamed.
	Open(ctx context.Context, req Request) (Stream, error)
}

// Stream yields text deltas until Next returns false; Err then reports
// whether the stream ended cleanly.
type Stream interface {
	Next() bool
	Text() string
	Err() error
	Close() error
}
