package suite

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/aretw0/casenav/pkg/domain"
)

const actionPrefix = "action "

// Evaluator interprets an application definition against an evaluation context.
// It is stateless: everything it derives lives in the EvalContext it is given.
type Evaluator struct {
	def     *Definition
	menus   map[string]*Menu
	entries map[string]*Entry
	queries map[string]*Query
	posts   map[string]*Post

	// datums indexes every datum by id and instance, nested action datums included.
	datums map[datumKey]*Datum
}

type datumKey struct {
	id       string
	instance string
}

// NewEvaluator indexes a validated definition.
func NewEvaluator(def *Definition) *Evaluator {
	e := &Evaluator{
		def:     def,
		menus:   make(map[string]*Menu),
		entries: make(map[string]*Entry),
		queries: make(map[string]*Query),
		posts:   make(map[string]*Post),
		datums:  make(map[datumKey]*Datum),
	}
	for i := range def.Menus {
		m := &def.Menus[i]
		e.menus[m.ID] = m
		e.indexDatums(m.Requires)
	}
	for i := range def.Entries {
		en := &def.Entries[i]
		e.entries[en.ID] = en
		e.indexDatums(en.Requires)
	}
	for i := range def.Queries {
		e.queries[def.Queries[i].ID] = &def.Queries[i]
	}
	for i := range def.Posts {
		e.posts[def.Posts[i].ID] = &def.Posts[i]
	}
	return e
}

func (e *Evaluator) indexDatums(reqs []Requirement) {
	for _, r := range reqs {
		if r.Datum == nil {
			continue
		}
		e.datums[datumKey{r.Datum.ID, instanceOf(r.Datum)}] = r.Datum
		for _, a := range r.Datum.Actions {
			e.indexDatums(a.Requires)
		}
	}
}

func instanceOf(d *Datum) string {
	if d.Instance == "" {
		return CaseDB
	}
	return d.Instance
}

// Definition returns the application definition.
func (e *Evaluator) Definition() *Definition { return e.def }

func (e *Evaluator) AppTitle() string {
	if e.def.Title != "" {
		return e.def.Title
	}
	return e.def.ID
}

// ResetToRoot clears the frame. Query instances and answers are kept: a
// query instance is only visible once its query step is back in the frame.
func (e *Evaluator) ResetToRoot(ec *domain.EvalContext) {
	ec.Frame.Reset()
	if ec.Instances == nil {
		ec.Instances = make(map[string]*domain.Instance)
	}
	if ec.Answers == nil {
		ec.Answers = make(map[string]map[string]string)
	}
}

// chain returns the commands selected so far, starting at the root menu.
func (e *Evaluator) chain(ec *domain.EvalContext) []string {
	chain := []string{RootMenu}
	for _, s := range ec.Frame.Steps {
		if s.Type == domain.StepCommand {
			chain = append(chain, s.ID)
		}
	}
	return chain
}

func (e *Evaluator) NextScreen(ec *domain.EvalContext) (domain.Screen, error) {
	chain := e.chain(ec)
	for _, id := range chain {
		reqs, err := e.requiresOf(id)
		if err != nil {
			return nil, err
		}
		s, err := e.pending(ec, reqs)
		if err != nil || s != nil {
			return s, err
		}
	}

	current := chain[len(chain)-1]
	if m, ok := e.menus[current]; ok {
		return e.menuScreen(m), nil
	}
	return nil, nil
}

func (e *Evaluator) requiresOf(commandID string) ([]Requirement, error) {
	if m, ok := e.menus[commandID]; ok {
		return m.Requires, nil
	}
	if en, ok := e.entries[commandID]; ok {
		return en.Requires, nil
	}
	return nil, fmt.Errorf("unknown command %q", commandID)
}

// pending returns the screen of the first unsatisfied requirement.
func (e *Evaluator) pending(ec *domain.EvalContext, reqs []Requirement) (domain.Screen, error) {
	for _, r := range reqs {
		switch {
		case r.Datum != nil:
			d := r.Datum
			if act, ok := ec.Frame.Find(domain.StepAction, d.ID); ok {
				if idx, err := strconv.Atoi(act.Value); err == nil && idx >= 0 && idx < len(d.Actions) {
					s, err := e.pending(ec, d.Actions[idx].Requires)
					if err != nil || s != nil {
						return s, err
					}
				}
			}
			if ec.Frame.Has(domain.StepDatum, d.ID) {
				continue
			}
			return e.entityScreen(ec, d), nil

		case r.Query != "":
			if ec.Frame.Has(domain.StepQuery, r.Query) {
				continue
			}
			return e.queryScreen(ec, e.queries[r.Query]), nil

		case r.Post != "":
			if ec.Frame.Has(domain.StepSync, r.Post) {
				continue
			}
			p := e.posts[r.Post]
			if !e.postRelevant(ec, p) {
				continue
			}
			return &domain.SyncScreen{ID: p.ID, Title: p.Title}, nil

		case r.Assert != nil:
			if r.Assert.CaseExists == "" {
				continue
			}
			if !e.caseExists(ec, datumValue(ec, r.Assert.CaseExists)) {
				msg := r.Assert.Message
				if msg == "" {
					msg = fmt.Sprintf("case %q is not available locally", datumValue(ec, r.Assert.CaseExists))
				}
				return nil, fmt.Errorf("assertion failed: %s", msg)
			}
		}
	}
	return nil, nil
}

func (e *Evaluator) menuScreen(m *Menu) *domain.MenuScreen {
	s := &domain.MenuScreen{ID: m.ID, Title: m.Title}
	if s.Title == "" && m.ID == RootMenu {
		s.Title = e.AppTitle()
	}
	for _, c := range m.Commands {
		s.Commands = append(s.Commands, domain.Command{ID: c, Title: e.commandTitle(c)})
	}
	return s
}

func (e *Evaluator) commandTitle(id string) string {
	if m, ok := e.menus[id]; ok {
		return m.Title
	}
	if en, ok := e.entries[id]; ok {
		return en.Title
	}
	return id
}

func (e *Evaluator) instance(ec *domain.EvalContext, id string) *domain.Instance {
	if id == CaseDB {
		return ec.CaseDB
	}
	return ec.Instances[id]
}

func (e *Evaluator) entityScreen(ec *domain.EvalContext, d *Datum) *domain.EntityScreen {
	s := &domain.EntityScreen{
		DatumID:    d.ID,
		InstanceID: instanceOf(d),
		Title:      d.Title,
		Columns:    d.Columns,
		AutoSelect: d.AutoSelect,
	}
	if inst := e.instance(ec, s.InstanceID); inst != nil {
		for _, ent := range inst.Entities {
			if d.CaseType != "" && ent.Type != d.CaseType {
				continue
			}
			s.Entities = append(s.Entities, ent)
		}
	}
	for _, a := range d.Actions {
		s.Actions = append(s.Actions, a.Title)
	}
	return s
}

func (e *Evaluator) queryScreen(ec *domain.EvalContext, q *Query) *domain.QueryScreen {
	s := &domain.QueryScreen{ID: q.ID, Title: q.Title, URL: q.URL}
	answers := ec.Answers[q.ID]
	for _, p := range q.Prompts {
		s.Prompts = append(s.Prompts, domain.QueryPrompt{
			Key:     p.Key,
			Label:   p.Label,
			Default: p.Default,
			Answer:  answers[p.Key],
		})
	}
	return s
}

func (e *Evaluator) ApplySelection(ec *domain.EvalContext, screen domain.Screen, selection string) error {
	switch s := screen.(type) {
	case *domain.MenuScreen:
		idx, err := strconv.Atoi(selection)
		if err != nil || idx < 0 || idx >= len(s.Commands) {
			return &domain.InvalidSelectionError{Selection: selection, Screen: domain.ScreenMenu, Reason: "no such option"}
		}
		ec.Frame.Push(domain.Step{Type: domain.StepCommand, ID: s.Commands[idx].ID})
		return nil

	case *domain.EntityScreen:
		if idx, ok := parseAction(selection); ok {
			if idx < 0 || idx >= len(s.Actions) {
				return &domain.InvalidSelectionError{Selection: selection, Screen: domain.ScreenEntity, Reason: "no such action"}
			}
			ec.Frame.Push(domain.Step{Type: domain.StepAction, ID: s.DatumID, Value: strconv.Itoa(idx)})
			return nil
		}
		value, err := e.ResolveSelectionValue(ec, s, selection)
		if err != nil {
			return &domain.InvalidSelectionError{Selection: selection, Screen: domain.ScreenEntity, Reason: err.Error()}
		}
		ec.Frame.Push(domain.Step{Type: domain.StepDatum, ID: s.DatumID, Value: value})
		return nil

	case *domain.QueryScreen:
		return &domain.InvalidSelectionError{Selection: selection, Screen: domain.ScreenQuery, Reason: "query has not been executed"}

	case *domain.SyncScreen:
		return &domain.InvalidSelectionError{Selection: selection, Screen: domain.ScreenSync, Reason: "sync is pending"}

	case nil:
		return &domain.InvalidSelectionError{Selection: selection, Screen: domain.ScreenForm, Reason: "navigation is complete"}
	}
	return &domain.UnknownScreenError{Screen: screen}
}

func parseAction(selection string) (int, bool) {
	rest, ok := strings.CutPrefix(selection, actionPrefix)
	if !ok {
		return 0, false
	}
	idx, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil {
		return -1, true
	}
	return idx, true
}

func (e *Evaluator) Title(ec *domain.EvalContext, screen domain.Screen, selection string) string {
	switch s := screen.(type) {
	case *domain.MenuScreen:
		if idx, err := strconv.Atoi(selection); err == nil && idx >= 0 && idx < len(s.Commands) {
			return s.Commands[idx].Title
		}
	case *domain.EntityScreen:
		if idx, ok := parseAction(selection); ok && idx >= 0 && idx < len(s.Actions) {
			return s.Actions[idx]
		}
		for _, ent := range s.Entities {
			if ent.ID != selection {
				continue
			}
			if len(s.Columns) > 0 {
				if v := ent.Property(s.Columns[0].Property); v != "" {
					return v
				}
			}
			return ent.ID
		}
	case *domain.QueryScreen:
		return s.Title
	case *domain.SyncScreen:
		return s.Title
	}
	return selection
}

func (e *Evaluator) IsAutoSkippable(screen domain.Screen) bool {
	s, ok := screen.(*domain.EntityScreen)
	return ok && s.AutoSelect && len(s.Entities) == 1
}

func (e *Evaluator) ResolveSelectionValue(ec *domain.EvalContext, screen *domain.EntityScreen, ref string) (string, error) {
	for _, ent := range screen.Entities {
		if ent.ID != ref {
			continue
		}
		d := e.datums[datumKey{screen.DatumID, screen.InstanceID}]
		if d == nil || d.Value == "" {
			return ent.ID, nil
		}
		return ent.Property(d.Value), nil
	}
	return "", fmt.Errorf("%w: %s", domain.ErrEntityNotFound, ref)
}

func (e *Evaluator) QueryRequest(ec *domain.EvalContext, screen *domain.QueryScreen, inputs map[string]string) (domain.RemoteRequest, error) {
	q, ok := e.queries[screen.ID]
	if !ok {
		return domain.RemoteRequest{}, fmt.Errorf("unknown query %q", screen.ID)
	}
	if ec.Answers == nil {
		ec.Answers = make(map[string]map[string]string)
	}
	answers := ec.Answers[q.ID]
	if answers == nil {
		answers = make(map[string]string)
		ec.Answers[q.ID] = answers
	}

	params := url.Values{}
	for _, p := range q.Prompts {
		if v, ok := inputs[p.Key]; ok {
			answers[p.Key] = v
		}
		v := answers[p.Key]
		if v == "" {
			v = p.Default
		}
		if v != "" {
			params.Set(p.Key, v)
		}
	}
	return domain.RemoteRequest{URL: q.URL, Params: params}, nil
}

func (e *Evaluator) InstallQueryResult(ec *domain.EvalContext, screen *domain.QueryScreen, body []byte) error {
	q, ok := e.queries[screen.ID]
	if !ok {
		return fmt.Errorf("unknown query %q", screen.ID)
	}
	inst, err := ParseInstance(q.Instance, body)
	if err != nil {
		return err
	}
	if ec.Instances == nil {
		ec.Instances = make(map[string]*domain.Instance)
	}
	ec.Instances[inst.ID] = inst
	return e.MarkResolved(ec, screen)
}

func (e *Evaluator) SyncRequest(ec *domain.EvalContext, screen *domain.SyncScreen) (*domain.RemoteRequest, error) {
	p, ok := e.posts[screen.ID]
	if !ok || p.URL == "" {
		return nil, nil
	}
	params := url.Values{}
	for k, tmpl := range p.Params {
		params.Set(k, expand(ec, tmpl))
	}
	return &domain.RemoteRequest{URL: p.URL, Params: params}, nil
}

func (e *Evaluator) LoadRestore(ec *domain.EvalContext, restore []byte) error {
	inst, err := ParseInstance(CaseDB, restore)
	if err != nil {
		return fmt.Errorf("invalid restore: %w", err)
	}
	ec.CaseDB = inst
	return nil
}

func (e *Evaluator) CompleteSync(ec *domain.EvalContext, screen *domain.SyncScreen, restore []byte) error {
	if err := e.LoadRestore(ec, restore); err != nil {
		return err
	}
	return e.MarkResolved(ec, screen)
}

func (e *Evaluator) MarkResolved(ec *domain.EvalContext, screen domain.Screen) error {
	switch sc := screen.(type) {
	case *domain.QueryScreen:
		if _, ok := e.queries[sc.ID]; !ok {
			return fmt.Errorf("unknown query %q", sc.ID)
		}
		ec.Frame.Push(domain.Step{Type: domain.StepQuery, ID: sc.ID})
	case *domain.SyncScreen:
		if _, ok := e.posts[sc.ID]; !ok {
			return fmt.Errorf("unknown post %q", sc.ID)
		}
		ec.Frame.Push(domain.Step{Type: domain.StepSync, ID: sc.ID})
	default:
		return fmt.Errorf("%s screens cannot be resolved", domain.TypeOf(screen))
	}
	return nil
}

func (e *Evaluator) ClearVolatiles(ec *domain.EvalContext) {
	ec.ClearVolatiles()
}

func (e *Evaluator) FormEntry(ec *domain.EvalContext) (*domain.FormSession, error) {
	chain := e.chain(ec)
	en, ok := e.entries[chain[len(chain)-1]]
	if !ok {
		return nil, fmt.Errorf("navigation did not reach a form")
	}
	data := make(map[string]string)
	for _, s := range ec.Frame.Steps {
		if s.Type == domain.StepDatum {
			data[s.ID] = s.Value
		}
	}
	return &domain.FormSession{FormID: en.Form, Title: en.Title, Data: data}, nil
}

func (e *Evaluator) Detail(ec *domain.EvalContext, screen *domain.EntityScreen, entityID string) (*domain.EntityDetail, error) {
	for _, ent := range screen.Entities {
		if ent.ID != entityID {
			continue
		}
		cols := screen.Columns
		if d := e.datums[datumKey{screen.DatumID, screen.InstanceID}]; d != nil && len(d.Detail) > 0 {
			cols = d.Detail
		}
		detail := &domain.EntityDetail{ID: ent.ID, Title: screen.Title}
		for _, c := range cols {
			detail.Fields = append(detail.Fields, domain.EntityField{Header: c.Header, Value: ent.Property(c.Property)})
		}
		return detail, nil
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrEntityNotFound, entityID)
}

func (e *Evaluator) postRelevant(ec *domain.EvalContext, p *Post) bool {
	if p.RelevantUnlessLocal == "" {
		return true
	}
	return !e.caseExists(ec, datumValue(ec, p.RelevantUnlessLocal))
}

// caseExists looks a case up in local storage. Results are cached as volatiles
// until local storage changes.
func (e *Evaluator) caseExists(ec *domain.EvalContext, caseID string) bool {
	key := "case_exists:" + caseID
	if v, ok := ec.Volatile(key); ok {
		return v == "true"
	}
	_, found := ec.CaseDB.Lookup(caseID)
	ec.SetVolatile(key, strconv.FormatBool(found))
	return found
}

func datumValue(ec *domain.EvalContext, id string) string {
	var v string
	for _, s := range ec.Frame.Steps {
		if s.Type == domain.StepDatum && s.ID == id {
			v = s.Value
		}
	}
	return v
}

// expand replaces a whole-value "{datum}" reference with the datum's value.
func expand(ec *domain.EvalContext, tmpl string) string {
	if ref, ok := strings.CutPrefix(tmpl, "{"); ok {
		if ref, ok = strings.CutSuffix(ref, "}"); ok {
			return datumValue(ec, ref)
		}
	}
	return tmpl
}
