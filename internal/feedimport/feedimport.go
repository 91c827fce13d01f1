// Package feedimport turns RSS and Atom items into posts.
package feedimport

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/orgball2608/contentflow/internal/domain"
	"github.com/orgball2608/contentflow/internal/feed"
	"github.com/orgball2608/contentflow/internal/metrics"
	"github.com/orgball2608/contentflow/pkg/errors"
	"github.com/orgball2608/contentflow/pkg/logger"
	"go.uber.org/fx"
)

const fetchTimeout = 30 * time.Second

type Options struct {
	Platform domain.Platform
	// Status of the created posts, published when empty.
	Status domain.Status
}

type Result struct {
	Title    string        `json:"title"`
	Imported []domain.Post `json:"imported"`
	Skipped  int           `json:"skipped"`
}

type Opts struct {
	fx.In

	Store   feed.Store
	Metrics *metrics.Metrics
	Logger  logger.Logger
}

type Importer struct {
	store   feed.Store
	parser  *gofeed.Parser
	metrics *metrics.Metrics
	logger  logger.Logger
}

func New(opts Opts) *Importer {
	return &Importer{
		store:   opts.Store,
		parser:  gofeed.NewParser(),
		metrics: opts.Metrics,
		logger:  opts.Logger.WithComponent("feed_import"),
	}
}

var Module = fx.Module("feed_import",
	fx.Provide(New),
)

// ImportURL fetches and imports the feed at url.
func (i *Importer) ImportURL(ctx context.Context, url string, opts Options) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	parsed, err := i.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return Result{}, errors.WrapWithCode(errors.ErrBadRequest, "feed_fetch", fmt.Sprintf("fetch %s: %v", url, err))
	}
	return i.importFeed(ctx, parsed, opts)
}

// ImportReader imports a feed document read from r.
func (i *Importer) ImportReader(ctx context.Context, r io.Reader, opts Options) (Result, error) {
	parsed, err := i.parser.Parse(r)
	if err != nil {
		return Result{}, errors.WrapWithCode(errors.ErrBadRequest, "feed_parse", fmt.Sprintf("parse feed: %v", err))
	}
	return i.importFeed(ctx, parsed, opts)
}

func (i *Importer) importFeed(ctx context.Context, parsed *gofeed.Feed, opts Options) (Result, error) {
	if opts.Status == "" {
		opts.Status = domain.StatusPublished
	}

	existing, err := i.store.List(ctx, feed.Filter{Platform: opts.Platform, Docs: opts.Platform.IsDoc()})
	if err != nil {
		return Result{}, err
	}
	seen := make(map[string]bool, len(existing))
	for _, p := range existing {
		seen[dedupeKey(p.Title, p.Body)] = true
	}

	result := Result{Title: parsed.Title, Imported: []domain.Post{}}
	for _, item := range parsed.Items {
		in := toNewPost(item, opts)
		key := dedupeKey(in.Title, in.Body)
		if seen[key] || (in.Title == "" && in.Body == "") {
			result.Skipped++
			continue
		}
		seen[key] = true

		post, err := i.store.Create(ctx, in)
		if err != nil {
			return result, err
		}
		result.Imported = append(result.Imported, post)
		i.metrics.ImportedPosts.Inc()
	}

	i.logger.Info("Feed imported",
		"feed", parsed.Title,
		"platform", opts.Platform,
		"imported", len(result.Imported),
		"skipped", result.Skipped)
	return result, nil
}

func toNewPost(item *gofeed.Item, opts Options) domain.NewPost {
	body := item.Content
	if body == "" {
		body = item.Description
	}

	in := domain.NewPost{
		Title:    item.Title,
		Body:     body,
		Platform: opts.Platform,
		Status:   opts.Status,
	}
	switch {
	case item.PublishedParsed != nil:
		in.CreatedAt = item.PublishedParsed.UnixMilli()
	case item.UpdatedParsed != nil:
		in.CreatedAt = item.UpdatedParsed.UnixMilli()
	}
	if item.Content != "" && item.Description != "" {
		in.Description = item.Description
	}
	return in
}

func dedupeKey(title, body string) string {
	return title + "\x00" + body
}
