package runtime

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/aretw0/casenav/pkg/domain"
	"github.com/aretw0/casenav/pkg/ports"
)

// respond turns a screen into a response. A nil screen hands off to form
// entry; with redraw set the form session already issued is returned again.
func (e *Engine) respond(ctx context.Context, s *domain.Session, ev ports.Evaluator, screen domain.Screen, offset int, searchText string, redraw bool) (*domain.Response, error) {
	resp := &domain.Response{
		Type:        domain.TypeOf(screen),
		SessionID:   s.ID,
		Breadcrumbs: slices.Clone(s.Breadcrumbs),
		Selections:  slices.Clone(s.Selections),
	}
	if resp.Selections == nil {
		resp.Selections = []string{}
	}

	switch sc := screen.(type) {
	case nil:
		form := s.Form.Clone()
		if !redraw || form == nil {
			var err error
			if form, err = e.handOff(ctx, s, ev); err != nil {
				return nil, err
			}
		}
		resp.Title = form.Title
		resp.Form = form

	case *domain.MenuScreen:
		s.Form = nil
		resp.Title = sc.Title
		for i, c := range sc.Commands {
			resp.Commands = append(resp.Commands, domain.CommandView{Index: i, ID: c.ID, Title: c.Title})
		}

	case *domain.EntityScreen:
		s.Form = nil
		resp.Title = sc.Title
		e.renderEntities(resp, sc, offset, searchText)

	case *domain.QueryScreen:
		s.Form = nil
		resp.Title = sc.Title
		resp.QueryKey = sc.ID
		resp.Displays = slices.Clone(sc.Prompts)

	case *domain.SyncScreen:
		s.Form = nil
		resp.Title = sc.Title

	default:
		return nil, &domain.UnknownScreenError{Screen: screen}
	}

	e.emitScreen(ctx, s, resp.Type)
	return resp, nil
}

// renderEntities filters by searchText and returns the page starting at offset.
func (e *Engine) renderEntities(resp *domain.Response, sc *domain.EntityScreen, offset int, searchText string) {
	for _, c := range sc.Columns {
		resp.Headers = append(resp.Headers, c.Header)
	}
	resp.Actions = slices.Clone(sc.Actions)

	rows := make([]domain.EntityView, 0, len(sc.Entities))
	needle := strings.ToLower(strings.TrimSpace(searchText))
	for _, ent := range sc.Entities {
		row := domain.EntityView{ID: ent.ID}
		for _, c := range sc.Columns {
			row.Data = append(row.Data, ent.Property(c.Property))
		}
		if needle != "" && !matches(row, needle) {
			continue
		}
		rows = append(rows, row)
	}

	total := len(rows)
	size := e.pageSize
	if offset < 0 {
		offset = 0
	}
	if offset >= total && total > 0 {
		offset = ((total - 1) / size) * size
	}
	end := min(offset+size, total)

	resp.Entities = rows[offset:end]
	resp.Page = &domain.Page{
		Offset:     offset,
		PageSize:   size,
		TotalCount: total,
		PageCount:  (total + size - 1) / size,
		Current:    offset / size,
	}
}

func matches(row domain.EntityView, needle string) bool {
	if strings.Contains(strings.ToLower(row.ID), needle) {
		return true
	}
	for _, v := range row.Data {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}

// handOff builds the form session for a completed navigation, persists it
// and records it on the menu session.
func (e *Engine) handOff(ctx context.Context, s *domain.Session, ev ports.Evaluator) (*domain.FormSession, error) {
	form, err := ev.FormEntry(s.Context)
	if err != nil {
		return nil, &domain.SessionNavigationError{SessionID: s.ID, Op: "form entry", Err: err}
	}
	form.ID = e.newID()
	form.MenuSessionID = s.ID
	form.AppID = s.AppID
	form.Username = s.Username
	form.Domain = s.Domain
	form.RestoreAs = s.RestoreAs
	form.CreatedAt = time.Now().UTC()

	if e.forms != nil {
		if err := e.forms.SaveForm(ctx, form); err != nil {
			return nil, &domain.SessionNavigationError{SessionID: s.ID, Op: "save form session", Err: fmt.Errorf("form %s: %w", form.ID, err)}
		}
	}
	s.Form = form.Clone()
	e.logger.Info("Form entry started", "session_id", s.ID, "form_session_id", form.ID, "form_id", form.FormID)
	return form, nil
}
