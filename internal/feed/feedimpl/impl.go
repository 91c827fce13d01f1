package feedimpl

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/orgball2608/contentflow/internal/domain"
	"github.com/orgball2608/contentflow/internal/feed"
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

type StoreImpl struct {
	storage kv.Repository
	logger  logger.Logger
	now     func() time.Time

	mu   sync.Mutex
	last domain.Feed
}

var _ feed.Store = (*StoreImpl)(nil)

func New(opts Opts) *StoreImpl {
	return &StoreImpl{
		storage: opts.Storage,
		logger:  opts.Logger.WithComponent("feed"),
		now:     time.Now,
	}
}

var Module = fx.Module("feed",
	fx.Provide(
		fx.Annotate(New, fx.As(new(feed.Store))),
	),
)

func (s *StoreImpl) Load(ctx context.Context) (domain.Feed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx)
}

func (s *StoreImpl) Create(ctx context.Context, in domain.NewPost) (domain.Post, error) {
	if in.Platform != domain.NoPlatform && !in.Platform.Valid() {
		return domain.Post{}, invalid("unknown platform %q", in.Platform)
	}
	if in.Status == "" {
		in.Status = domain.StatusIdea
	}
	if !in.Status.Valid() {
		return domain.Post{}, invalid("unknown status %q", in.Status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load(ctx)
	if err != nil {
		return domain.Post{}, err
	}

	now := s.now().UnixMilli()
	created := now
	if in.CreatedAt > 0 {
		created = in.CreatedAt
	}

	post := domain.Post{
		ID:           uniqueID(f.Items),
		Type:         domain.PostType,
		CreatedAt:    created,
		UpdatedAt:    now,
		Body:         in.Body,
		Status:       in.Status,
		Platform:     in.Platform,
		Title:        in.Title,
		Description:  in.Description,
		Format:       in.Format,
		SourceID:     in.SourceID,
		ScheduledFor: in.ScheduledFor,
	}

	f.Items = append(f.Items, post)
	if err := s.save(ctx, f); err != nil {
		return post, err
	}

	s.logger.Debug("Post created", "id", post.ID, "platform", post.Platform, "source_id", post.SourceID)
	return post, nil
}

func (s *StoreImpl) Update(ctx context.Context, id string, patch domain.PostPatch) (domain.Post, error) {
	if patch.Platform != nil && *patch.Platform != domain.NoPlatform && !patch.Platform.Valid() {
		return domain.Post{}, invalid("unknown platform %q", *patch.Platform)
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return domain.Post{}, invalid("unknown status %q", *patch.Status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load(ctx)
	if err != nil {
		return domain.Post{}, err
	}
	i := find(f.Items, id)
	if i < 0 {
		return domain.Post{}, notFound(id)
	}

	before := f.Items[i]
	post := before
	patch.Apply(&post)
	if post.SourceID == post.ID {
		return domain.Post{}, invalid("post %s cannot be repurposed from itself", id)
	}
	newlyPinned := post.Pinned && (!before.Pinned || before.Platform != post.Platform)
	if newlyPinned && pinnedExcept(f.Items, post.Platform, id) >= domain.MaxPinned {
		return domain.Post{}, pinLimit(post.Platform)
	}

	post.UpdatedAt = s.now().UnixMilli()
	f.Items[i] = post
	return post, s.save(ctx, f)
}

func (s *StoreImpl) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load(ctx)
	if err != nil {
		return err
	}
	i := find(f.Items, id)
	if i < 0 {
		return notFound(id)
	}

	f.Items = append(f.Items[:i], f.Items[i+1:]...)
	if err := s.save(ctx, f); err != nil {
		return err
	}

	s.logger.Debug("Post deleted", "id", id)
	return nil
}

func (s *StoreImpl) Get(ctx context.Context, id string) (domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.read(ctx)
	i := find(f.Items, id)
	if i < 0 {
		return domain.Post{}, notFound(id)
	}
	return f.Items[i], nil
}

func (s *StoreImpl) List(ctx context.Context, filter feed.Filter) ([]domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return filter.Apply(s.read(ctx).Items), nil
}

func (s *StoreImpl) ScheduledFor(ctx context.Context, platform domain.Platform, day time.Time) ([]domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return feed.ScheduledOn(s.read(ctx).Items, platform, day), nil
}

func (s *StoreImpl) Reschedule(ctx context.Context, id string, scheduledFor *int64) (domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load(ctx)
	if err != nil {
		return domain.Post{}, err
	}
	i := find(f.Items, id)
	if i < 0 {
		return domain.Post{}, notFound(id)
	}

	post := f.Items[i]
	if sameSchedule(post.ScheduledFor, scheduledFor) {
		return post, nil
	}

	if scheduledFor == nil {
		post.ScheduledFor = nil
	} else {
		at := *scheduledFor
		post.ScheduledFor = &at
	}
	post.UpdatedAt = s.now().UnixMilli()
	f.Items[i] = post

	if err := s.save(ctx, f); err != nil {
		return post, err
	}

	s.logger.Debug("Post rescheduled", "id", id, "scheduled_for", scheduledFor)
	return post, nil
}

func (s *StoreImpl) Related(ctx context.Context, id string) ([]domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.read(ctx).Items
	if find(items, id) < 0 {
		return nil, notFound(id)
	}
	return feed.RelatedOf(items, id), nil
}

func (s *StoreImpl) Tree(ctx context.Context, id string) (*feed.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.read(ctx).Items
	if find(items, id) < 0 {
		return nil, notFound(id)
	}
	return feed.TreeOf(items, id), nil
}

func (s *StoreImpl) SetPinned(ctx context.Context, id string, pinned bool) (domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load(ctx)
	if err != nil {
		return domain.Post{}, err
	}
	i := find(f.Items, id)
	if i < 0 {
		return domain.Post{}, notFound(id)
	}

	post := f.Items[i]
	if post.Pinned == pinned {
		return post, nil
	}
	if pinned && feed.CountPinned(f.Items, post.Platform) >= domain.MaxPinned {
		return post, pinLimit(post.Platform)
	}

	post.Pinned = pinned
	post.UpdatedAt = s.now().UnixMilli()
	f.Items[i] = post
	return post, s.save(ctx, f)
}

func (s *StoreImpl) Pinned(ctx context.Context, platform domain.Platform) ([]domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return feed.PinnedOf(s.read(ctx).Items, platform), nil
}

func (s *StoreImpl) Cadence(ctx context.Context) (domain.WeeklyCadence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cadence domain.WeeklyCadence
	if ok, _ := s.readJSON(ctx, domain.CadenceKey, &cadence); !ok {
		return domain.DefaultCadence(), nil
	}
	return cadence.Normalize(), nil
}

func (s *StoreImpl) SaveCadence(ctx context.Context, cadence domain.WeeklyCadence) (domain.WeeklyCadence, error) {
	for p := range cadence {
		if !p.Valid() {
			return nil, invalid("unknown platform %q", p)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cadence = cadence.Normalize()
	return cadence, s.writeJSON(ctx, domain.CadenceKey, cadence)
}

func (s *StoreImpl) Formats(ctx context.Context) (domain.UserFormats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	formats, err := s.formats(ctx)
	if err != nil {
		s.logger.Warn("Failed to read formats, serving defaults", "error", err)
		return domain.DefaultFormats(), nil
	}
	return formats, nil
}

func (s *StoreImpl) AddFormat(ctx context.Context, platform domain.Platform, format string) (domain.UserFormats, error) {
	if !platform.Valid() {
		return nil, invalid("unknown platform %q", platform)
	}
	format = strings.TrimSpace(format)
	if format == "" {
		return nil, invalid("format is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	formats, err := s.formats(ctx)
	if err != nil {
		return nil, err
	}
	for _, f := range formats[platform] {
		if f == format {
			return formats, nil
		}
	}
	formats[platform] = append(formats[platform], format)
	return formats, s.writeJSON(ctx, domain.FormatsKey, formats)
}

func (s *StoreImpl) formats(ctx context.Context) (domain.UserFormats, error) {
	var formats domain.UserFormats
	ok, err := s.readJSON(ctx, domain.FormatsKey, &formats)
	if err != nil {
		return nil, err
	}
	if !ok || formats == nil {
		return domain.DefaultFormats(), nil
	}
	return formats, nil
}

func (s *StoreImpl) save(ctx context.Context, f domain.Feed) error {
	if f.Items == nil {
		f.Items = []domain.Post{}
	}
	if err := s.writeJSON(ctx, domain.FeedKey, f); err != nil {
		return err
	}
	s.remember(f)
	return nil
}

func (s *StoreImpl) writeJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.storage.Set(ctx, key, string(data)); err != nil {
		s.logger.Error("Failed to write storage", "key", key, "error", err)
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// readJSON decodes key into v. Missing and malformed values report false,
// read failures an error.
func (s *StoreImpl) readJSON(ctx context.Context, key string, v any) (bool, error) {
	raw, err := s.storage.Get(ctx, key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return false, nil
		}
		s.logger.Warn("Failed to read storage", "key", key, "error", err)
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		s.logger.Warn("Ignoring malformed value", "key", key, "error", err)
		return false, nil
	}
	return true, nil
}

func find(items []domain.Post, id string) int {
	for i, p := range items {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func uniqueID(items []domain.Post) string {
	for {
		id := domain.NewID()
		if find(items, id) < 0 {
			return id
		}
	}
}

func pinnedExcept(items []domain.Post, platform domain.Platform, id string) int {
	n := 0
	for _, p := range items {
		if p.ID != id && p.Pinned && p.Platform == platform {
			n++
		}
	}
	return n
}

func sameSchedule(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func notFound(id string) error {
	return errors.WrapWithCode(errors.ErrNotFound, "post_not_found", fmt.Sprintf("post %s", id))
}

func invalid(format string, args ...any) error {
	return errors.WrapWithCode(errors.ErrInvalidInput, "invalid_input", fmt.Sprintf(format, args...))
}

func pinLimit(platform domain.Platform) error {
	return errors.WrapWithCode(errors.ErrPinLimit, "pin_limit",
		fmt.Sprintf("max %d pinned examples for %s", domain.MaxPinned, platform.Label()))
}
