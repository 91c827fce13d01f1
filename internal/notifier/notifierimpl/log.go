package notifierimpl

import (
	"context"

	"github.com/orgball2608/contentflow/internal/notifier"
	"github.com/orgball2608/contentflow/pkg/logger"
)

// LogImpl writes messages to the log when no bot is configured.
type LogImpl struct {
	Logger logger.Logger
}

var _ notifier.Notifier = (*LogImpl)(nil)

func (l *LogImpl) Send(_ context.Context, title, body string) error {
	l.Logger.Info(title, "body", body)
	return nil
}
