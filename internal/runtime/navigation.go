package runtime

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/aretw0/casenav/pkg/domain"
	"github.com/aretw0/casenav/pkg/ports"
)

// navigation is the outcome of replaying selections from the root.
type navigation struct {
	screen       domain.Screen
	applied      []string
	titles       []string
	notification *domain.Notification
}

// Advance resets the session to the root and applies in.Selections in order,
// running query and sync side effects as their screens are reached.
// Empty selections redraw the current screen without touching the frame,
// unless in.Restart asks for the root first.
// The session is persisted once, after navigation completes.
func (e *Engine) Advance(ctx context.Context, s *domain.Session, ev ports.Evaluator, in Input) (resp *domain.Response, err error) {
	start := time.Now()
	consumed := 0
	defer func() {
		e.emitAdvance(ctx, &domain.AdvanceEvent{SessionID: s.ID, Consumed: consumed, Duration: time.Since(start), Err: err})
	}()

	if s.Context == nil {
		s.Context = domain.NewEvalContext()
	}

	if len(in.Selections) == 0 {
		if in.Restart {
			ev.ResetToRoot(s.Context)
			s.Selections = nil
			s.Breadcrumbs = nil
		}
		return e.redraw(ctx, s, ev, in)
	}

	nav, err := e.navigate(ctx, s, ev, in, true)
	if err != nil {
		return nil, err
	}
	consumed = len(nav.applied)

	s.Selections = nav.applied
	s.Breadcrumbs = nav.titles

	resp, err = e.respond(ctx, s, ev, nav.screen, in.Offset, in.SearchText, false)
	if err != nil {
		return nil, err
	}
	resp.Consumed = consumed
	resp.Notification = nav.notification

	if err := e.persist(ctx, s); err != nil {
		return nil, err
	}

	e.logger.Debug("Session advanced",
		"session_id", s.ID,
		"selections", len(in.Selections),
		"consumed", consumed,
		"screen", resp.Type,
	)
	return resp, nil
}

func (e *Engine) redraw(ctx context.Context, s *domain.Session, ev ports.Evaluator, in Input) (*domain.Response, error) {
	screen, err := ev.NextScreen(s.Context)
	if err != nil {
		return nil, &domain.SessionNavigationError{SessionID: s.ID, Op: "redraw", Err: err}
	}
	if len(s.Breadcrumbs) == 0 {
		s.Breadcrumbs = []string{ev.AppTitle()}
	}
	resp, err := e.respond(ctx, s, ev, screen, in.Offset, in.SearchText, true)
	if err != nil {
		return nil, err
	}
	if err := e.persist(ctx, s); err != nil {
		return nil, err
	}
	return resp, nil
}

// navigate runs the selection loop. With sideEffects false no query or sync
// is attempted; the loop simply stops on their screens.
func (e *Engine) navigate(ctx context.Context, s *domain.Session, ev ports.Evaluator, in Input, sideEffects bool) (*navigation, error) {
	ec := s.Context
	ev.ResetToRoot(ec)

	nav := &navigation{titles: []string{ev.AppTitle()}}

loop:
	for i, selection := range in.Selections {
		screen, err := e.nextScreen(ec, ev)
		if err != nil {
			return nil, &domain.SessionNavigationError{SessionID: s.ID, Op: "next screen", Err: err}
		}
		if screen == nil {
			nav.notification = overflow(selection, i)
			break
		}

		title := ev.Title(ec, screen, selection)
		if err := ev.ApplySelection(ec, screen, selection); err != nil {
			var invalid *domain.InvalidSelectionError
			if errors.As(err, &invalid) {
				e.logger.Debug("Selection rejected", "session_id", s.ID, "selection", selection, "reason", invalid.Reason)
				nav.notification = overflow(selection, i)
				break
			}
			return nil, &domain.SessionNavigationError{SessionID: s.ID, Op: "apply selection", Err: err}
		}
		nav.applied = append(nav.applied, selection)
		nav.titles = append(nav.titles, title)

		if !sideEffects {
			continue
		}

		next, err := e.nextScreen(ec, ev)
		if err != nil {
			return nil, &domain.SessionNavigationError{SessionID: s.ID, Op: "next screen", Err: err}
		}

		if q, ok := next.(*domain.QueryScreen); ok {
			if entry, ok := in.QueryData.Lookup(q.ID); ok && entry.Execute {
				note := e.doQuery(ctx, s, ev, q, entry, in.Auth)
				nav.notification = note
				if note.Error {
					break loop
				}
				next, err = e.nextScreen(ec, ev)
				if err != nil {
					return nil, &domain.SessionNavigationError{SessionID: s.ID, Op: "next screen", Err: err}
				}
			}
		}

		if sync, ok := next.(*domain.SyncScreen); ok {
			s.Selections = slices.Clone(nav.applied)
			s.Breadcrumbs = slices.Clone(nav.titles)
			note, err := e.doSync(ctx, s, ev, sync, in.Auth)
			if err != nil {
				return nil, err
			}
			nav.notification = note
			break loop
		}
	}

	screen, err := e.nextScreen(ec, ev)
	if err != nil {
		return nil, &domain.SessionNavigationError{SessionID: s.ID, Op: "next screen", Err: err}
	}
	nav.screen = screen
	return nav, nil
}

// nextScreen derives the current screen, applying auto-selections on the way.
func (e *Engine) nextScreen(ec *domain.EvalContext, ev ports.Evaluator) (domain.Screen, error) {
	for range maxAutoSkips {
		screen, err := ev.NextScreen(ec)
		if err != nil {
			return nil, err
		}
		list, ok := screen.(*domain.EntityScreen)
		if !ok || !ev.IsAutoSkippable(screen) || len(list.Entities) == 0 {
			return screen, nil
		}
		if err := ev.ApplySelection(ec, screen, list.Entities[0].ID); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("more than %d consecutive auto-selections", maxAutoSkips)
}

// Details navigates selections without side effects or persistence and
// returns the detail view of entityID on the resulting entity list.
func (e *Engine) Details(ctx context.Context, s *domain.Session, ev ports.Evaluator, selections []string, entityID string) (*domain.EntityDetail, error) {
	scratch := s.Clone()
	if scratch.Context == nil {
		scratch.Context = domain.NewEvalContext()
	}

	nav, err := e.navigate(ctx, scratch, ev, Input{Selections: selections}, false)
	if err != nil {
		return nil, err
	}
	if nav.notification != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidRequest, nav.notification.Message)
	}

	list, ok := nav.screen.(*domain.EntityScreen)
	if !ok {
		return nil, fmt.Errorf("%w: reached %s screen", domain.ErrNotEntityScreen, domain.TypeOf(nav.screen))
	}
	return ev.Detail(scratch.Context, list, entityID)
}

func overflow(selection string, index int) *domain.Notification {
	return domain.Failure(fmt.Sprintf("Overflowed selections with selection %s at index %d", selection, index+1))
}
