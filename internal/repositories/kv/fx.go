package kv

import (
	"context"

	"github.com/orgball2608/contentflow/pkg/config"
	"github.com/orgball2608/contentflow/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In
	LC fx.Lifecycle

	Config *config.Config
	Logger logger.Logger
}

func New(opts Opts) (Repository, error) {
	repo, closeFn, err := Open(context.Background(), opts.Config, opts.Logger)
	if err != nil {
		return nil, err
	}

	opts.LC.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return closeFn()
		},
	})
	return repo, nil
}

var Module = fx.Module("kv_repository",
	fx.Provide(New),
)
