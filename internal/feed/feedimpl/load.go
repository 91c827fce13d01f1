package feedimpl

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/orgball2608/contentflow/internal/domain"
	"github.com/orgball2608/contentflow/internal/repositories/kv"
	"github.com/orgball2608/contentflow/pkg/errors"
)

// storedFeed distinguishes a missing items array from an empty one.
type storedFeed struct {
	Items *[]domain.Post `json:"items"`
}

type legacyDocuments struct {
	Docs *[]struct {
		ID        string `json:"id"`
		Content   string `json:"content"`
		CreatedAt int64  `json:"createdAt"`
		UpdatedAt int64  `json:"updatedAt"`
	} `json:"docs"`
}

// load reads the feed. Missing and malformed documents fall back to the
// legacy keys and then to an empty feed. Read failures are returned so that
// no caller writes back a feed it could not see. Callers hold s.mu.
func (s *StoreImpl) load(ctx context.Context) (domain.Feed, error) {
	raw, err := s.storage.Get(ctx, domain.FeedKey)
	switch {
	case err == nil:
		var stored storedFeed
		if err := json.Unmarshal([]byte(raw), &stored); err == nil && stored.Items != nil {
			items := *stored.Items
			for i := range items {
				normalize(&items[i])
			}
			return s.remember(domain.Feed{Items: items}), nil
		}
		s.logger.Warn("Feed document is malformed, trying legacy storage")
	case errors.Is(err, kv.ErrNotFound):
	default:
		return domain.Feed{}, fmt.Errorf("failed to read %s: %w", domain.FeedKey, err)
	}

	for _, migrate := range []func(context.Context) (domain.Feed, bool, error){
		s.migrateLegacyFeed,
		s.migrateLegacyDocuments,
	} {
		f, ok, err := migrate(ctx)
		if err != nil {
			return domain.Feed{}, err
		}
		if ok {
			return s.remember(f), nil
		}
	}
	return s.remember(domain.Feed{Items: []domain.Post{}}), nil
}

// read is load for operations that never write. A read failure serves the
// last feed seen by this store, or an empty one.
func (s *StoreImpl) read(ctx context.Context) domain.Feed {
	f, err := s.load(ctx)
	if err == nil {
		return f
	}
	s.logger.Warn("Failed to read feed, serving last known feed", "items", len(s.last.Items), "error", err)
	if s.last.Items == nil {
		return domain.Feed{Items: []domain.Post{}}
	}
	return domain.Feed{Items: slices.Clone(s.last.Items)}
}

// remember keeps a copy of f as the last known good feed.
func (s *StoreImpl) remember(f domain.Feed) domain.Feed {
	s.last = domain.Feed{Items: slices.Clone(f.Items)}
	return f
}

func (s *StoreImpl) migrateLegacyFeed(ctx context.Context) (domain.Feed, bool, error) {
	raw, ok, err := s.legacy(ctx, domain.LegacyFeedKey)
	if !ok {
		return domain.Feed{}, false, err
	}

	var stored storedFeed
	if err := json.Unmarshal([]byte(raw), &stored); err != nil || stored.Items == nil {
		s.logger.Warn("Legacy feed is malformed, skipping", "key", domain.LegacyFeedKey)
		return domain.Feed{}, false, nil
	}

	items := *stored.Items
	for i := range items {
		normalize(&items[i])
	}
	return s.finishMigration(ctx, domain.LegacyFeedKey, domain.Feed{Items: items}), true, nil
}

func (s *StoreImpl) migrateLegacyDocuments(ctx context.Context) (domain.Feed, bool, error) {
	raw, ok, err := s.legacy(ctx, domain.LegacyDocumentsKey)
	if !ok {
		return domain.Feed{}, false, err
	}

	var stored legacyDocuments
	if err := json.Unmarshal([]byte(raw), &stored); err != nil || stored.Docs == nil {
		s.logger.Warn("Legacy documents are malformed, skipping", "key", domain.LegacyDocumentsKey)
		return domain.Feed{}, false, nil
	}

	items := make([]domain.Post, 0, len(*stored.Docs))
	for _, doc := range *stored.Docs {
		items = append(items, domain.Post{
			ID:        doc.ID,
			Type:      domain.PostType,
			Body:      doc.Content,
			Status:    domain.StatusIdea,
			Platform:  domain.NoPlatform,
			CreatedAt: doc.CreatedAt,
			UpdatedAt: doc.UpdatedAt,
		})
	}
	return s.finishMigration(ctx, domain.LegacyDocumentsKey, domain.Feed{Items: items}), true, nil
}

func (s *StoreImpl) legacy(ctx context.Context, key string) (string, bool, error) {
	raw, err := s.storage.Get(ctx, key)
	switch {
	case err == nil:
		return raw, true, nil
	case errors.Is(err, kv.ErrNotFound):
		return "", false, nil
	default:
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
}

func (s *StoreImpl) finishMigration(ctx context.Context, from string, f domain.Feed) domain.Feed {
	if err := s.save(ctx, f); err != nil {
		s.logger.Error("Failed to save migrated feed", "from", from, "error", err)
		return f
	}
	s.logger.Info("Migrated legacy feed", "from", from, "items", len(f.Items))
	return f
}

// normalize upgrades legacy notes in place: type becomes post, a missing
// status becomes idea and unknown platforms become docs.
func normalize(p *domain.Post) {
	if p.Type == "" || p.Type == "note" {
		p.Type = domain.PostType
	}
	if p.Status == "" {
		p.Status = domain.StatusIdea
	}
	if p.Platform != domain.NoPlatform && !p.Platform.Valid() {
		p.Platform = domain.NoPlatform
	}
}
