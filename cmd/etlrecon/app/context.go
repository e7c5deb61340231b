package app

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/agentstation/etlrecon/pkg/logging"
)

// ContextWithSignals creates a context that is cancelled when the application
// receives an interrupt or termination signal. An interrupted comparison
// leaves partial reports behind; the next run regenerates them.
func ContextWithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// Context returns a background context carrying the application logger.
func (a *App) Context() context.Context {
	return logging.WithLogger(context.Background(), a.logger)
}
