// Command contentctl works with the local content store from the terminal.
package main

import (
	"context"
	"os"

	"github.com/orgball2608/contentflow/internal/app"
	"github.com/orgball2608/contentflow/internal/assistant"
	"github.com/orgball2608/contentflow/internal/chat"
	"github.com/orgball2608/contentflow/internal/feed"
	"github.com/orgball2608/contentflow/internal/feedimport"
	"github.com/orgball2608/contentflow/pkg/config"
	"github.com/orgball2608/contentflow/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "contentctl",
	Short: "Manage drafts, schedules and assistant chats",
	Long: `contentctl reads and writes the same store as the contentflow server.
Storage is selected with STORAGE_DRIVER and friends, exactly like the server.

The chat command streams through the server's /api/chat endpoint (CHAT_PROXY_URL),
so the server must be running for it.`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(postsCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(importCmd)
}

type deps struct {
	Store     feed.Store
	History   chat.History
	Assistant *assistant.Assistant
	Importer  *feedimport.Importer
}

// withDeps starts the storage graph for the duration of fn. Logs go to stderr
// so they never mix with command output.
func withDeps(ctx context.Context, fn func(d deps) error) error {
	var d deps
	a := fx.New(
		fx.NopLogger,
		app.Storage,
		assistant.Module,
		feedimport.Module,
		fx.Decorate(func(_ logger.Logger, cfg *config.Config) logger.Logger {
			return logger.New(logger.Opts{Env: cfg.App.Env, Output: os.Stderr})
		}),
		fx.Populate(&d.Store, &d.History, &d.Assistant, &d.Importer),
	)
	if err := a.Start(ctx); err != nil {
		return err
	}
	defer a.Stop(context.Background())

	return fn(d)
}
