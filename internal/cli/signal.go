package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// SignalContext is cancelled by the first shutdown signal and remembers it,
// so commands can tell an operator interrupt from a navigation error.
type SignalContext struct {
	context.Context
	Cancel context.CancelFunc

	received atomic.Value
}

// NewSignalContext watches sigs, or SIGINT and SIGTERM when none are given.
func NewSignalContext(parent context.Context, sigs ...os.Signal) *SignalContext {
	if len(sigs) == 0 {
		sigs = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)
	return watchSignals(parent, ch, func() { signal.Stop(ch) })
}

func watchSignals(parent context.Context, ch <-chan os.Signal, stop func()) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{Context: ctx, Cancel: cancel}
	go func() {
		defer stop()
		select {
		case sig := <-ch:
			sc.received.Store(sig)
			cancel()
		case <-ctx.Done():
		}
	}()
	return sc
}

// Signal returns the signal that cancelled the context, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sig, _ := sc.received.Load().(os.Signal)
	return sig
}

// Interrupted reports whether err is the cancellation a signal caused.
func (sc *SignalContext) Interrupted(err error) bool {
	return sc.Signal() != nil && errors.Is(err, sc.Err())
}
