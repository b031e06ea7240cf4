package suite

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/casenav/pkg/domain"
	"gopkg.in/yaml.v3"
)

// RootMenu is the id of the menu every session starts at.
const RootMenu = "root"

// CaseDB is the instance id of local case storage.
const CaseDB = "casedb"

// Definition describes an installable application.
type Definition struct {
	ID      string  `yaml:"id" json:"id"`
	Title   string  `yaml:"title" json:"title"`
	Menus   []Menu  `yaml:"menus" json:"menus"`
	Entries []Entry `yaml:"entries" json:"entries"`
	Queries []Query `yaml:"queries" json:"queries"`
	Posts   []Post  `yaml:"posts" json:"posts"`
}

// Menu lists commands (submenus or entries). Requirements are resolved before the list is shown.
type Menu struct {
	ID       string        `yaml:"id" json:"id"`
	Title    string        `yaml:"title" json:"title"`
	Requires []Requirement `yaml:"requires" json:"requires"`
	Commands []string      `yaml:"commands" json:"commands"`
}

// Entry leads to a form once its requirements are satisfied.
type Entry struct {
	ID       string        `yaml:"id" json:"id"`
	Title    string        `yaml:"title" json:"title"`
	Form     string        `yaml:"form" json:"form"`
	Requires []Requirement `yaml:"requires" json:"requires"`
}

// Requirement is exactly one of a datum, a query, a post or an assertion.
type Requirement struct {
	Datum  *Datum  `yaml:"datum,omitempty" json:"datum,omitempty"`
	Query  string  `yaml:"query,omitempty" json:"query,omitempty"`
	Post   string  `yaml:"post,omitempty" json:"post,omitempty"`
	Assert *Assert `yaml:"assert,omitempty" json:"assert,omitempty"`
}

// Datum asks the user to pick one entity of an instance.
type Datum struct {
	ID       string `yaml:"id" json:"id"`
	Title    string `yaml:"title" json:"title"`
	Instance string `yaml:"instance" json:"instance"`
	CaseType string `yaml:"case_type" json:"case_type"`

	// Value is the entity property recorded as the datum value. Defaults to the entity id.
	Value string `yaml:"value" json:"value"`

	AutoSelect bool            `yaml:"auto_select" json:"auto_select"`
	Columns    []domain.Column `yaml:"columns" json:"columns"`
	Detail     []domain.Column `yaml:"detail" json:"detail"`
	Actions    []Action        `yaml:"actions" json:"actions"`
}

// Action is an alternative to picking an entity, e.g. searching remotely and claiming a case.
type Action struct {
	Title    string        `yaml:"title" json:"title"`
	Requires []Requirement `yaml:"requires" json:"requires"`
}

// Query is a remote search whose results become a query-scoped instance.
type Query struct {
	ID       string   `yaml:"id" json:"id"`
	Title    string   `yaml:"title" json:"title"`
	URL      string   `yaml:"url" json:"url"`
	Instance string   `yaml:"instance" json:"instance"`
	Prompts  []Prompt `yaml:"prompts" json:"prompts"`
}

// Prompt is one search input.
type Prompt struct {
	Key     string `yaml:"key" json:"key"`
	Label   string `yaml:"label" json:"label"`
	Default string `yaml:"default" json:"default"`
}

// Post is a remote side effect followed by a restore.
type Post struct {
	ID    string `yaml:"id" json:"id"`
	Title string `yaml:"title" json:"title"`
	URL   string `yaml:"url" json:"url"`

	// Params are sent form-encoded. "{datum}" values are replaced by the datum's value.
	Params map[string]string `yaml:"params" json:"params"`

	// RelevantUnlessLocal names a datum; the post is skipped when that case already exists locally.
	RelevantUnlessLocal string `yaml:"relevant_unless_local" json:"relevant_unless_local"`
}

// Assert fails navigation when its condition does not hold.
type Assert struct {
	// CaseExists names a datum whose value must exist in local storage.
	CaseExists string `yaml:"case_exists" json:"case_exists"`
	Message    string `yaml:"message" json:"message"`
}

// Parse decodes a YAML (or JSON, which is valid YAML) definition and validates it.
func Parse(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse app definition: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// ParseJSON decodes a JSON definition.
func ParseJSON(data []byte) (*Definition, error) {
	var def Definition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse app definition: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// Validate checks references between menus, entries, queries and posts.
func (d *Definition) Validate() error {
	if d.ID == "" {
		return errors.New("app definition: missing id")
	}

	commands := make(map[string]bool)
	queries := make(map[string]bool)
	posts := make(map[string]bool)
	for _, m := range d.Menus {
		if commands[m.ID] {
			return fmt.Errorf("app %s: duplicate command %q", d.ID, m.ID)
		}
		commands[m.ID] = true
	}
	for _, e := range d.Entries {
		if commands[e.ID] {
			return fmt.Errorf("app %s: duplicate command %q", d.ID, e.ID)
		}
		commands[e.ID] = true
	}
	for _, q := range d.Queries {
		queries[q.ID] = true
	}
	for _, p := range d.Posts {
		posts[p.ID] = true
	}

	hasRoot := false
	var errs []error
	for _, m := range d.Menus {
		if m.ID == RootMenu {
			hasRoot = true
		}
		for _, c := range m.Commands {
			if !commands[c] {
				errs = append(errs, fmt.Errorf("menu %s: unknown command %q", m.ID, c))
			}
		}
		errs = append(errs, checkRequires(m.ID, m.Requires, queries, posts)...)
	}
	for _, e := range d.Entries {
		errs = append(errs, checkRequires(e.ID, e.Requires, queries, posts)...)
	}
	if !hasRoot {
		errs = append(errs, fmt.Errorf("missing %q menu", RootMenu))
	}
	if len(errs) > 0 {
		return fmt.Errorf("app %s: %w", d.ID, errors.Join(errs...))
	}
	return nil
}

func checkRequires(owner string, reqs []Requirement, queries, posts map[string]bool) []error {
	var errs []error
	for i, r := range reqs {
		set := 0
		if r.Datum != nil {
			set++
			if r.Datum.ID == "" {
				errs = append(errs, fmt.Errorf("%s: requirement %d: datum without id", owner, i))
			}
			for _, a := range r.Datum.Actions {
				errs = append(errs, checkRequires(owner+"/"+r.Datum.ID, a.Requires, queries, posts)...)
			}
		}
		if r.Query != "" {
			set++
			if !queries[r.Query] {
				errs = append(errs, fmt.Errorf("%s: unknown query %q", owner, r.Query))
			}
		}
		if r.Post != "" {
			set++
			if !posts[r.Post] {
				errs = append(errs, fmt.Errorf("%s: unknown post %q", owner, r.Post))
			}
		}
		if r.Assert != nil {
			set++
		}
		if set != 1 {
			errs = append(errs, fmt.Errorf("%s: requirement %d must set exactly one of datum, query, post, assert", owner, i))
		}
	}
	return errs
}
