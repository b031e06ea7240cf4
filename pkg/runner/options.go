package runner

import (
	"log/slog"

	"github.com/aretw0/casenav/pkg/domain"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithAuth sets the credentials forwarded on every request.
func WithAuth(auth domain.Auth) Option {
	return func(r *Runner) {
		r.Auth = auth
	}
}

// WithMaxSteps ends the loop after n commands. Zero means no limit.
func WithMaxSteps(n int) Option {
	return func(r *Runner) {
		r.MaxSteps = n
	}
}
