package dsl

import (
	"github.com/aretw0/casenav/pkg/domain"
	"github.com/aretw0/casenav/pkg/suite"
)

// Requirement is anything that can stand in a requires list.
type Requirement interface {
	Requirement() suite.Requirement
}

type requirement suite.Requirement

func (r requirement) Requirement() suite.Requirement { return suite.Requirement(r) }

// RunQuery requires the remote search id to run before navigation continues.
func RunQuery(id string) Requirement { return requirement{Query: id} }

// RunPost requires the remote post id, typically a case claim.
func RunPost(id string) Requirement { return requirement{Post: id} }

// CaseExists fails navigation when the case chosen for datum is not stored locally.
func CaseExists(datum, message string) Requirement {
	return requirement{Assert: &suite.Assert{CaseExists: datum, Message: message}}
}

func requirements(reqs []Requirement) []suite.Requirement {
	out := make([]suite.Requirement, len(reqs))
	for i, r := range reqs {
		out[i] = r.Requirement()
	}
	return out
}

// MenuBuilder provides a fluent API for configuring a menu.
type MenuBuilder struct {
	menu suite.Menu
}

func (m *MenuBuilder) Title(title string) *MenuBuilder {
	m.menu.Title = title
	return m
}

func (m *MenuBuilder) Commands(ids ...string) *MenuBuilder {
	m.menu.Commands = append(m.menu.Commands, ids...)
	return m
}

func (m *MenuBuilder) Requires(reqs ...Requirement) *MenuBuilder {
	m.menu.Requires = append(m.menu.Requires, requirements(reqs)...)
	return m
}

// EntryBuilder provides a fluent API for configuring a form entry.
// The form id defaults to the entry id.
type EntryBuilder struct {
	entry suite.Entry
}

func (e *EntryBuilder) Title(title string) *EntryBuilder {
	e.entry.Title = title
	return e
}

func (e *EntryBuilder) Form(form string) *EntryBuilder {
	e.entry.Form = form
	return e
}

func (e *EntryBuilder) Requires(reqs ...Requirement) *EntryBuilder {
	e.entry.Requires = append(e.entry.Requires, requirements(reqs)...)
	return e
}

// DatumBuilder configures a case list. It is itself a Requirement.
type DatumBuilder struct {
	datum suite.Datum
}

// Datum starts a case list that records the chosen entity under id.
func Datum(id, title string) *DatumBuilder {
	return &DatumBuilder{datum: suite.Datum{ID: id, Title: title}}
}

// CaseType lists local cases of the given type.
func (d *DatumBuilder) CaseType(caseType string) *DatumBuilder {
	d.datum.CaseType = caseType
	return d
}

// Instance lists the results of a remote search instead of local cases.
func (d *DatumBuilder) Instance(id string) *DatumBuilder {
	d.datum.Instance = id
	return d
}

func (d *DatumBuilder) Column(header, property string) *DatumBuilder {
	d.datum.Columns = append(d.datum.Columns, domain.Column{Header: header, Property: property})
	return d
}

func (d *DatumBuilder) Detail(header, property string) *DatumBuilder {
	d.datum.Detail = append(d.datum.Detail, domain.Column{Header: header, Property: property})
	return d
}

// AutoSelect skips the list when it holds exactly one entity.
func (d *DatumBuilder) AutoSelect() *DatumBuilder {
	d.datum.AutoSelect = true
	return d
}

// Action adds an alternative to picking a listed entity.
func (d *DatumBuilder) Action(title string, reqs ...Requirement) *DatumBuilder {
	d.datum.Actions = append(d.datum.Actions, suite.Action{Title: title, Requires: requirements(reqs)})
	return d
}

func (d *DatumBuilder) Requirement() suite.Requirement {
	datum := d.datum
	return suite.Requirement{Datum: &datum}
}

// QueryBuilder configures a remote search. The result instance defaults to the query id.
type QueryBuilder struct {
	query suite.Query
}

func (q *QueryBuilder) Title(title string) *QueryBuilder {
	q.query.Title = title
	return q
}

func (q *QueryBuilder) URL(url string) *QueryBuilder {
	q.query.URL = url
	return q
}

func (q *QueryBuilder) Instance(id string) *QueryBuilder {
	q.query.Instance = id
	return q
}

func (q *QueryBuilder) Prompt(key, label, defaultValue string) *QueryBuilder {
	q.query.Prompts = append(q.query.Prompts, suite.Prompt{Key: key, Label: label, Default: defaultValue})
	return q
}

// PostBuilder configures a remote post.
type PostBuilder struct {
	post suite.Post
}

func (p *PostBuilder) Title(title string) *PostBuilder {
	p.post.Title = title
	return p
}

func (p *PostBuilder) URL(url string) *PostBuilder {
	p.post.URL = url
	return p
}

// Param adds a form parameter. "{datum}" placeholders take the datum's value.
func (p *PostBuilder) Param(key, value string) *PostBuilder {
	if p.post.Params == nil {
		p.post.Params = make(map[string]string)
	}
	p.post.Params[key] = value
	return p
}

// RelevantUnlessLocal skips the post when the datum's case is already stored locally.
func (p *PostBuilder) RelevantUnlessLocal(datum string) *PostBuilder {
	p.post.RelevantUnlessLocal = datum
	return p
}
