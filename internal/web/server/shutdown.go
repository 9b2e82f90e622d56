package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// DefaultSignals stop the server gracefully
var DefaultSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}

// SignalContext returns a context cancelled on the first of signals, or of
// DefaultSignals when none are given.
func SignalContext(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	if len(signals) == 0 {
		signals = DefaultSignals
	}
	return signal.NotifyContext(parent, signals...)
}

// RunUntilSignal runs s until SIGINT or SIGTERM
func RunUntilSignal(s *Server) error {
	ctx, stop := SignalContext(context.Background())
	defer stop()
	return s.Run(ctx)
}
