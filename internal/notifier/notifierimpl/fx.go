package notifierimpl

import (
	"github.com/orgball2608/contentflow/internal/notifier"
	"github.com/orgball2608/contentflow/pkg/config"
	"github.com/orgball2608/contentflow/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

// New picks Telegram when a token and chat are configured.
func New(opts Opts) (notifier.Notifier, error) {
	log := opts.Logger.WithComponent("notifier")

	tg := opts.Config.Telegram
	if tg.Token == "" || tg.ChatID == 0 {
		log.Info("Telegram is not configured, notifications go to the log")
		return &LogImpl{Logger: log}, nil
	}
	return NewTelegram(tg.Token, tg.APIEndpoint, tg.ChatID, log)
}

var Module = fx.Module("notifier",
	fx.Provide(New),
)
