package runtime

import (
	"context"
	"strconv"

	"github.com/aretw0/casenav/pkg/domain"
	"github.com/aretw0/casenav/pkg/ports"
)

// Rebuild recomputes a session's selections from its recorded frame.
//
// The frame is read from a snapshot while a fresh frame is written from the
// root. Each recorded step matches at most once, so replay always terminates.
// Recorded query and sync resolutions are reused without contacting remote
// services. Replay stops quietly at the first screen no recorded step matches;
// a matched selection that cannot be applied is a FrameInconsistencyError.
func (e *Engine) Rebuild(ctx context.Context, s *domain.Session, ev ports.Evaluator) (*domain.Response, error) {
	if s.Context == nil {
		s.Context = domain.NewEvalContext()
	}
	ec := s.Context
	steps := ec.Frame.Snapshot()
	used := make([]bool, len(steps))

	claim := func(match func(domain.Step) bool) (domain.Step, bool) {
		for i, st := range steps {
			if !used[i] && match(st) {
				used[i] = true
				return st, true
			}
		}
		return domain.Step{}, false
	}

	ev.ResetToRoot(ec)
	selections := []string{}
	titles := []string{ev.AppTitle()}

	for range len(steps) + 1 {
		screen, err := e.nextScreen(ec, ev)
		if err != nil {
			return nil, &domain.SessionNavigationError{SessionID: s.ID, Op: "rebuild", Err: err}
		}

		var (
			selection string
			matched   domain.Step
			ok        bool
		)

		switch sc := screen.(type) {
		case nil:
		case *domain.MenuScreen:
			selection, matched, ok = matchMenu(sc, claim)

		case *domain.EntityScreen:
			selection, matched, ok = matchEntity(ec, ev, sc, claim)

		case *domain.QueryScreen:
			if st, found := claim(func(st domain.Step) bool { return st.Type == domain.StepQuery && st.ID == sc.ID }); found {
				if err := ev.MarkResolved(ec, sc); err != nil {
					return nil, &domain.FrameInconsistencyError{Selection: sc.ID, Step: st, Err: err}
				}
				continue
			}

		case *domain.SyncScreen:
			if st, found := claim(func(st domain.Step) bool { return st.Type == domain.StepSync && st.ID == sc.ID }); found {
				if err := ev.MarkResolved(ec, sc); err != nil {
					return nil, &domain.FrameInconsistencyError{Selection: sc.ID, Step: st, Err: err}
				}
				continue
			}

		default:
			return nil, &domain.UnknownScreenError{Screen: screen}
		}

		if !ok {
			break
		}

		title := ev.Title(ec, screen, selection)
		if err := ev.ApplySelection(ec, screen, selection); err != nil {
			return nil, &domain.FrameInconsistencyError{Selection: selection, Step: matched, Err: err}
		}
		selections = append(selections, selection)
		titles = append(titles, title)
	}

	screen, err := e.nextScreen(ec, ev)
	if err != nil {
		return nil, &domain.SessionNavigationError{SessionID: s.ID, Op: "rebuild", Err: err}
	}

	s.Selections = selections
	s.Breadcrumbs = titles

	resp, err := e.respond(ctx, s, ev, screen, 0, "", false)
	if err != nil {
		return nil, err
	}
	resp.Consumed = len(selections)
	if err := e.persist(ctx, s); err != nil {
		return nil, err
	}

	e.logger.Debug("Session rebuilt", "session_id", s.ID, "steps", len(steps), "selections", len(selections))
	return resp, nil
}

type claimFunc func(match func(domain.Step) bool) (domain.Step, bool)

// matchMenu selects the first option whose command id was recorded.
func matchMenu(sc *domain.MenuScreen, claim claimFunc) (string, domain.Step, bool) {
	for i, c := range sc.Commands {
		if st, ok := claim(func(st domain.Step) bool { return st.Type == domain.StepCommand && st.ID == c.ID }); ok {
			return strconv.Itoa(i), st, true
		}
	}
	return "", domain.Step{}, false
}

// matchEntity takes the earliest recorded step for the screen's datum. An
// action step replays as "action N"; a datum step replays as the reference
// whose resolved value equals the recorded value.
func matchEntity(ec *domain.EvalContext, ev ports.Evaluator, sc *domain.EntityScreen, claim claimFunc) (string, domain.Step, bool) {
	st, ok := claim(func(st domain.Step) bool {
		return (st.Type == domain.StepDatum || st.Type == domain.StepAction) && st.ID == sc.DatumID
	})
	if !ok {
		return "", domain.Step{}, false
	}
	if st.Type == domain.StepAction {
		return "action " + st.Value, st, true
	}
	for _, ref := range sc.References() {
		value, err := ev.ResolveSelectionValue(ec, sc, ref)
		if err == nil && value == st.Value {
			return ref, st, true
		}
	}
	return "", domain.Step{}, false
}
