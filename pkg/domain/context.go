package domain

import "maps"

// Entity is one row of instance data, typically a case.
type Entity struct {
	ID         string            `json:"id"`
	Type       string            `json:"type,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
}

// Property returns a named property. "id" and "type" resolve to the entity fields.
func (e Entity) Property(name string) string {
	switch name {
	case "id", "case_id":
		return e.ID
	case "type", "case_type":
		return e.Type
	}
	return e.Properties[name]
}

// Instance is a named set of entities: local case storage or a query result.
type Instance struct {
	ID       string   `json:"id"`
	Entities []Entity `json:"entities"`
}

// Lookup finds an entity by id.
func (i *Instance) Lookup(id string) (Entity, bool) {
	if i == nil {
		return Entity{}, false
	}
	for _, e := range i.Entities {
		if e.ID == id {
			return e, true
		}
	}
	return Entity{}, false
}

// Clone returns a deep copy of the instance.
func (i *Instance) Clone() *Instance {
	if i == nil {
		return nil
	}
	out := &Instance{ID: i.ID, Entities: make([]Entity, len(i.Entities))}
	for idx, e := range i.Entities {
		e.Properties = maps.Clone(e.Properties)
		out.Entities[idx] = e
	}
	return out
}

// EvalContext is the evaluation state owned by one session: the stack frame,
// local storage, query-scoped instances and prompt answers. Only the
// evaluation engine interprets its contents.
type EvalContext struct {
	Frame Frame `json:"frame"`

	// CaseDB is the local entity storage populated by restores.
	CaseDB *Instance `json:"casedb,omitempty"`

	// Instances holds query-scoped data keyed by instance id.
	Instances map[string]*Instance `json:"instances,omitempty"`

	// Answers holds prompt answers keyed by query id, then prompt key.
	Answers map[string]map[string]string `json:"answers,omitempty"`

	// Volatiles caches values derived from current data. Never persisted;
	// must be cleared whenever local storage changes.
	Volatiles map[string]string `json:"-"`
}

// NewEvalContext returns an empty context.
func NewEvalContext() *EvalContext {
	return &EvalContext{
		Instances: make(map[string]*Instance),
		Answers:   make(map[string]map[string]string),
	}
}

// Clone returns a deep copy. Volatiles are not carried over.
func (c *EvalContext) Clone() *EvalContext {
	if c == nil {
		return nil
	}
	out := &EvalContext{
		Frame:     Frame{Steps: c.Frame.Snapshot()},
		CaseDB:    c.CaseDB.Clone(),
		Instances: make(map[string]*Instance, len(c.Instances)),
		Answers:   make(map[string]map[string]string, len(c.Answers)),
	}
	for k, v := range c.Instances {
		out.Instances[k] = v.Clone()
	}
	for k, v := range c.Answers {
		out.Answers[k] = maps.Clone(v)
	}
	return out
}

// Volatile returns a cached derived value.
func (c *EvalContext) Volatile(key string) (string, bool) {
	v, ok := c.Volatiles[key]
	return v, ok
}

// SetVolatile caches a derived value.
func (c *EvalContext) SetVolatile(key, value string) {
	if c.Volatiles == nil {
		c.Volatiles = make(map[string]string)
	}
	c.Volatiles[key] = value
}

// ClearVolatiles drops every cached derived value.
func (c *EvalContext) ClearVolatiles() {
	c.Volatiles = nil
}
