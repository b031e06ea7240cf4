package dsl

import (
	"fmt"

	"github.com/aretw0/casenav/pkg/adapters/memory"
	"github.com/aretw0/casenav/pkg/suite"
	"gopkg.in/yaml.v3"
)

// Builder manages the definition construction. Menus, entries, queries and
// posts keep the order they were first added in.
type Builder struct {
	def suite.Definition

	menus   map[string]*MenuBuilder
	entries map[string]*EntryBuilder
	queries map[string]*QueryBuilder
	posts   map[string]*PostBuilder
	order   []func(*suite.Definition)
}

// New creates a builder for the app id with the given title.
func New(id, title string) *Builder {
	return &Builder{
		def:     suite.Definition{ID: id, Title: title},
		menus:   make(map[string]*MenuBuilder),
		entries: make(map[string]*EntryBuilder),
		queries: make(map[string]*QueryBuilder),
		posts:   make(map[string]*PostBuilder),
	}
}

// Root is shorthand for the root menu.
func (b *Builder) Root(commands ...string) *MenuBuilder {
	return b.Menu(suite.RootMenu).Commands(commands...)
}

// Menu returns the builder of menu id, creating it on first use.
func (b *Builder) Menu(id string) *MenuBuilder {
	if mb, ok := b.menus[id]; ok {
		return mb
	}
	mb := &MenuBuilder{menu: suite.Menu{ID: id}}
	b.menus[id] = mb
	b.order = append(b.order, func(d *suite.Definition) { d.Menus = append(d.Menus, mb.menu) })
	return mb
}

// Entry returns the builder of form entry id, creating it on first use.
func (b *Builder) Entry(id string) *EntryBuilder {
	if eb, ok := b.entries[id]; ok {
		return eb
	}
	eb := &EntryBuilder{entry: suite.Entry{ID: id, Form: id}}
	b.entries[id] = eb
	b.order = append(b.order, func(d *suite.Definition) { d.Entries = append(d.Entries, eb.entry) })
	return eb
}

// Query returns the builder of remote search id, creating it on first use.
func (b *Builder) Query(id string) *QueryBuilder {
	if qb, ok := b.queries[id]; ok {
		return qb
	}
	qb := &QueryBuilder{query: suite.Query{ID: id, Instance: id}}
	b.queries[id] = qb
	b.order = append(b.order, func(d *suite.Definition) { d.Queries = append(d.Queries, qb.query) })
	return qb
}

// Post returns the builder of remote post id, creating it on first use.
func (b *Builder) Post(id string) *PostBuilder {
	if pb, ok := b.posts[id]; ok {
		return pb
	}
	pb := &PostBuilder{post: suite.Post{ID: id}}
	b.posts[id] = pb
	b.order = append(b.order, func(d *suite.Definition) { d.Posts = append(d.Posts, pb.post) })
	return pb
}

// Build assembles and validates the definition.
func (b *Builder) Build() (*suite.Definition, error) {
	def := b.def
	for _, add := range b.order {
		add(&def)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// YAML renders the definition in the format the file loader reads.
func (b *Builder) YAML() ([]byte, error) {
	def, err := b.Build()
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(def)
}

// Loader builds the definition into an in-memory loader for suite.NewRegistry.
func (b *Builder) Loader() (*memory.Loader, error) {
	data, err := b.YAML()
	if err != nil {
		return nil, fmt.Errorf("failed to build memory loader: %w", err)
	}
	loader := memory.NewLoader(nil)
	loader.Add(b.def.ID, data)
	return loader, nil
}
