package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"

	"github.com/aretw0/casenav/pkg/domain"
)

// Navigator is the part of the engine the runner drives.
type Navigator interface {
	Advance(ctx context.Context, req domain.NavigationRequest) (*domain.Response, error)
	Details(ctx context.Context, req domain.DetailRequest) (*domain.EntityDetail, error)
}

// Runner walks one session interactively: each command becomes a
// navigation request whose selections are the full path from the root.
type Runner struct {
	Handler  IOHandler
	Logger   *slog.Logger
	Auth     domain.Auth
	MaxSteps int
}

// NewRunner creates a Runner reading from stdin and writing to stdout.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(nil, nil)
	}
	return r
}

// state is what the runner remembers between commands.
type state struct {
	sessionID string
	path      []string
	queryData map[string]any
	last      *domain.Response
}

// Run redraws the session's current screen and then loops on commands
// until the handler reports io.EOF or ErrQuit, or ctx is done.
// The last response shown is returned.
func (r *Runner) Run(ctx context.Context, nav Navigator, sessionID string) (*domain.Response, error) {
	st := &state{sessionID: sessionID, queryData: map[string]any{}}

	resp, err := nav.Advance(ctx, domain.NavigationRequest{SessionID: sessionID, Auth: r.Auth})
	if err != nil {
		return nil, err
	}
	if err := r.show(ctx, st, resp); err != nil {
		return st.last, err
	}

	for step := 0; r.MaxSteps == 0 || step < r.MaxSteps; step++ {
		if err := ctx.Err(); err != nil {
			return st.last, err
		}
		cmd, err := r.Handler.Input(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, ErrQuit) {
				return st.last, nil
			}
			var bad *InputError
			if errors.As(err, &bad) {
				if err := r.Handler.SystemOutput(ctx, bad.Error()); err != nil {
					return st.last, err
				}
				continue
			}
			return st.last, err
		}
		if cmd.Kind == CommandQuit {
			return st.last, nil
		}

		if cmd.Kind == CommandDetails {
			if err := r.details(ctx, nav, st, cmd.Arg); err != nil {
				return st.last, err
			}
			continue
		}

		req, msg := r.request(st, cmd)
		if msg != "" {
			if err := r.Handler.SystemOutput(ctx, msg); err != nil {
				return st.last, err
			}
			continue
		}
		resp, err := nav.Advance(ctx, req)
		if err != nil {
			return st.last, err
		}
		r.Logger.Debug("Runner advanced",
			"session_id", sessionID,
			"selections", len(req.Selections),
			"consumed", resp.Consumed,
			"screen", resp.Type,
		)
		if err := r.show(ctx, st, resp); err != nil {
			return st.last, err
		}
	}
	return st.last, nil
}

func (r *Runner) show(ctx context.Context, st *state, resp *domain.Response) error {
	st.last = resp
	st.path = slices.Clone(resp.Selections)
	return r.Handler.Output(ctx, resp)
}

// request maps cmd onto a navigation request. A non-empty message means the
// command does not apply to the current screen.
func (r *Runner) request(st *state, cmd Command) (domain.NavigationRequest, string) {
	req := domain.NavigationRequest{SessionID: st.sessionID, Auth: r.Auth}
	last := st.last

	switch cmd.Kind {
	case CommandSelect:
		req.Selections = append(slices.Clone(st.path), cmd.Arg)
		req.QueryData = st.queryData
	case CommandRedraw:
	case CommandBack:
		if len(st.path) == 0 {
			return req, "Already at the root"
		}
		req.Selections = slices.Clone(st.path[:len(st.path)-1])
		req.QueryData = st.queryData
		req.Restart = len(req.Selections) == 0
	case CommandHome:
		req.Restart = true
	case CommandSearch:
		if last == nil || last.Type != domain.ScreenQuery {
			return req, "Nothing to search on this screen"
		}
		if len(st.path) == 0 {
			return req, "Search needs at least one selection"
		}
		inputs := make(map[string]any, len(cmd.Inputs))
		for k, v := range cmd.Inputs {
			inputs[k] = v
		}
		st.queryData = maps.Clone(st.queryData)
		st.queryData[last.QueryKey] = map[string]any{"execute": true, "inputs": inputs}
		req.QueryData = st.queryData
		// The query runs as its screen is reached, so the path is replayed.
		req.Selections = slices.Clone(st.path)
	case CommandNext, CommandPrev:
		if last == nil || last.Page == nil {
			return req, "This screen has no pages"
		}
		offset := last.Page.Offset + last.Page.PageSize
		if cmd.Kind == CommandPrev {
			offset = max(last.Page.Offset-last.Page.PageSize, 0)
		}
		req.Offset = offset
	case CommandFilter:
		if last == nil || last.Type != domain.ScreenEntity {
			return req, "Only entity lists can be filtered"
		}
		req.SearchText = cmd.Arg
	default:
		return req, fmt.Sprintf("Unsupported command %d", cmd.Kind)
	}
	return req, ""
}

func (r *Runner) details(ctx context.Context, nav Navigator, st *state, entityID string) error {
	if st.last == nil || st.last.Type != domain.ScreenEntity {
		return r.Handler.SystemOutput(ctx, "Details are only available on entity lists")
	}
	detail, err := nav.Details(ctx, domain.DetailRequest{
		SessionID:  st.sessionID,
		Selections: st.path,
		EntityID:   entityID,
		Auth:       r.Auth,
	})
	switch {
	case errors.Is(err, domain.ErrEntityNotFound):
		return r.Handler.SystemOutput(ctx, fmt.Sprintf("No entity %q on this list", entityID))
	case errors.Is(err, domain.ErrNotEntityScreen):
		return r.Handler.SystemOutput(ctx, "Details are not available on this screen")
	}
	if err != nil {
		return err
	}
	return r.Handler.Detail(ctx, detail)
}
