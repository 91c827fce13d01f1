// Package feed is the single source of truth for posts.
package feed

import (
	"context"
	"time"

	"github.com/orgball2608/contentflow/internal/domain"
)

// Filter narrows List. Zero value lists everything.
type Filter struct {
	Platform domain.Platform
	Docs     bool
	Status   domain.Status
}

//go:generate go run go.uber.org/mock/mockgen -source=feed.go -destination=mocks/mock.go
type Store interface {
	// Load returns the whole feed as stored.
	Load(ctx context.Context) (domain.Feed, error)

	Create(ctx context.Context, in domain.NewPost) (domain.Post, error)
	Update(ctx context.Context, id string, patch domain.PostPatch) (domain.Post, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (domain.Post, error)

	// List returns matching posts, newest first.
	List(ctx context.Context, filter Filter) ([]domain.Post, error)

	// ScheduledFor returns the posts of platform scheduled on day's calendar date.
	ScheduledFor(ctx context.Context, platform domain.Platform, day time.Time) ([]domain.Post, error)

	// Reschedule sets or, with nil, clears scheduledFor.
	// Writing the value a post already has changes nothing.
	Reschedule(ctx context.Context, id string, scheduledFor *int64) (domain.Post, error)

	// Related returns every post in id's derivation chain, oldest first.
	Related(ctx context.Context, id string) ([]domain.Post, error)
	Tree(ctx context.Context, id string) (*Node, error)

	SetPinned(ctx context.Context, id string, pinned bool) (domain.Post, error)
	Pinned(ctx context.Context, platform domain.Platform) ([]domain.Post, error)

	Cadence(ctx context.Context) (domain.WeeklyCadence, error)
	SaveCadence(ctx context.Context, cadence domain.WeeklyCadence) (domain.WeeklyCadence, error)

	Formats(ctx context.Context) (domain.UserFormats, error)
	AddFormat(ctx context.Context, platform domain.Platform, format string) (domain.UserFormats, error)
}

// Node is a post with the posts repurposed from it.
type Node struct {
	Post     domain.Post `json:"post"`
	Children []*Node     `json:"children"`
}
