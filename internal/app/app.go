package app

import (
	"context"

	"github.com/orgball2608/contentflow/internal/chat/chatimpl"
	"github.com/orgball2608/contentflow/internal/chatproxy"
	"github.com/orgball2608/contentflow/internal/feed/feedimpl"
	"github.com/orgball2608/contentflow/internal/feedimport"
	"github.com/orgball2608/contentflow/internal/llm/llmimpl"
	"github.com/orgball2608/contentflow/internal/metrics"
	"github.com/orgball2608/contentflow/internal/notifier/notifierimpl"
	"github.com/orgball2608/contentflow/internal/planner"
	"github.com/orgball2608/contentflow/internal/planner/plannerimpl"
	"github.com/orgball2608/contentflow/internal/repositories/kv"
	"github.com/orgball2608/contentflow/internal/server"
	"github.com/orgball2608/contentflow/internal/settings"
	"github.com/orgball2608/contentflow/pkg/config"
	"github.com/orgball2608/contentflow/pkg/logger"
	"go.uber.org/fx"
)

// Storage is the part of the graph shared with contentctl: config, logging
// and the stores on top of the key/value substrate.
var Storage = fx.Options(
	fx.Provide(
		config.New,
		logger.FxOption,
		metrics.New,
	),
	kv.Module,
	feedimpl.Module,
	chatimpl.Module,
	settings.Module,
)

var Module = fx.Options(
	Storage,
	llmimpl.Module,
	chatproxy.Module,
	notifierimpl.Module,
	plannerimpl.Module,
	feedimport.Module,
	server.Module,
	fx.Invoke(run),
)

func run(lc fx.Lifecycle, log logger.Logger, p planner.Planner) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if err := p.Schedule(ctx); err != nil {
				log.Error("Failed to schedule planner jobs", "error", err)
				cancel()
				return err
			}
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
