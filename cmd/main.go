package main

import (
	"context"
	"os"

	"github.com/orgball2608/contentflow/internal/app"
	"github.com/orgball2608/contentflow/pkg/logger"
	"go.uber.org/fx"
)

func main() {
	os.Exit(run())
}

func run() int {
	log := logger.New(logger.Opts{})
	contentflow := fx.New(
		fx.Logger(log),
		app.Module,
	)

	startCtx, cancel := context.WithTimeout(context.Background(), contentflow.StartTimeout())
	defer cancel()
	if err := contentflow.Start(startCtx); err != nil {
		log.Error("Failed to start contentflow", "error", err)
		return 1
	}

	// fx listens for SIGINT and SIGTERM
	sig := <-contentflow.Wait()
	log.Info("Shutting down", "signal", sig.Signal)

	stopCtx, cancel := context.WithTimeout(context.Background(), contentflow.StopTimeout())
	defer cancel()
	if err := contentflow.Stop(stopCtx); err != nil {
		log.Error("Failed to stop contentflow", "error", err)
		return 1
	}
	return sig.ExitCode
}
