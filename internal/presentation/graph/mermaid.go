package graph

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/casenav/pkg/domain"
	"github.com/aretw0/casenav/pkg/suite"
)

// Overlay marks a session's progress on the graph. Steps is the session frame.
type Overlay struct {
	Steps []domain.Step
}

type stepKey struct {
	typ domain.StepType
	id  string
}

type generator struct {
	def *suite.Definition
	sb  strings.Builder

	// owner command -> requirement step -> node ids
	reqNodes map[string]map[stepKey][]string
}

// GenerateMermaid renders an application as a Mermaid flowchart.
// Shapes:
//   - root menu: ((Circle))
//   - menu: [Rectangle]
//   - form entry: [/Parallelogram/]
//   - case list: [(Cylinder)]
//   - remote search or claim: [[Subroutine]]
//   - assertion: {Rhombus}
//
// Entity-list actions are drawn as dotted edges. A non-nil overlay styles
// the nodes the session has passed through.
func GenerateMermaid(def *suite.Definition, overlay *Overlay) string {
	g := &generator{def: def, reqNodes: make(map[string]map[stepKey][]string)}
	g.sb.WriteString("graph TD\n")

	menus := make(map[string]suite.Menu, len(def.Menus))
	for _, m := range def.Menus {
		menus[m.ID] = m
		if m.ID == suite.RootMenu {
			title := m.Title
			if title == "" {
				title = def.Title
			}
			g.node(m.ID, "((", title, "))")
			continue
		}
		g.node(m.ID, "[", m.Title, "]")
	}
	for _, en := range def.Entries {
		g.node(en.ID, "[/", en.Title, "/]")
	}

	for _, m := range def.Menus {
		for i, cmd := range m.Commands {
			reqs := menus[cmd].Requires
			if en, ok := g.entry(cmd); ok {
				reqs = en.Requires
			}
			first := g.chain(cmd, sanitizeMermaidID(cmd), reqs, cmd)
			fmt.Fprintf(&g.sb, "    %s -- \"%d\" --> %s\n", sanitizeMermaidID(m.ID), i, first)
		}
	}

	if overlay != nil {
		g.overlay(overlay)
	}
	return g.sb.String()
}

func (g *generator) entry(id string) (suite.Entry, bool) {
	for _, en := range g.def.Entries {
		if en.ID == id {
			return en, true
		}
	}
	return suite.Entry{}, false
}

func (g *generator) node(id, opener, label, closer string) {
	fmt.Fprintf(&g.sb, "    %s%s\"%s\"%s\n", sanitizeMermaidID(id), opener, escapeLabel(label), closer)
}

// chain draws reqs as a path ending at end and returns the id of its first node.
func (g *generator) chain(owner, prefix string, reqs []suite.Requirement, end string) string {
	ids := make([]string, len(reqs))
	for i := range reqs {
		ids[i] = prefix + "__" + strconv.Itoa(i)
	}
	next := func(i int) string {
		if i+1 < len(ids) {
			return ids[i+1]
		}
		return sanitizeMermaidID(end)
	}

	for i, r := range reqs {
		id := ids[i]
		switch {
		case r.Datum != nil:
			fmt.Fprintf(&g.sb, "    %s[(\"%s\")]\n", id, escapeLabel(r.Datum.Title))
			g.track(owner, stepKey{domain.StepDatum, r.Datum.ID}, id)
			for ai, act := range r.Datum.Actions {
				first := g.chain(owner, id+"_a"+strconv.Itoa(ai), act.Requires, next(i))
				fmt.Fprintf(&g.sb, "    %s -. \"%s\" .-> %s\n", id, escapeLabel(act.Title), first)
			}
		case r.Query != "":
			fmt.Fprintf(&g.sb, "    %s[[\"%s\"]]\n", id, escapeLabel(g.queryTitle(r.Query)))
			g.track(owner, stepKey{domain.StepQuery, r.Query}, id)
		case r.Post != "":
			fmt.Fprintf(&g.sb, "    %s[[\"%s\"]]\n", id, escapeLabel(g.postTitle(r.Post)))
			g.track(owner, stepKey{domain.StepSync, r.Post}, id)
		case r.Assert != nil:
			fmt.Fprintf(&g.sb, "    %s{\"exists %s\"}\n", id, escapeLabel(r.Assert.CaseExists))
		}
		fmt.Fprintf(&g.sb, "    %s --> %s\n", id, next(i))
	}

	if len(ids) == 0 {
		return sanitizeMermaidID(end)
	}
	return ids[0]
}

func (g *generator) track(owner string, key stepKey, id string) {
	byKey, ok := g.reqNodes[owner]
	if !ok {
		byKey = make(map[stepKey][]string)
		g.reqNodes[owner] = byKey
	}
	byKey[key] = append(byKey[key], id)
}

func (g *generator) queryTitle(id string) string {
	for _, q := range g.def.Queries {
		if q.ID == id && q.Title != "" {
			return q.Title
		}
	}
	return id
}

func (g *generator) postTitle(id string) string {
	for _, p := range g.def.Posts {
		if p.ID == id && p.Title != "" {
			return p.Title
		}
	}
	return id
}

func (g *generator) overlay(o *Overlay) {
	g.sb.WriteString("\n    %% Overlay Styles\n")
	g.sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
	g.sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

	visited := []string{sanitizeMermaidID(suite.RootMenu)}
	var current []string
	var owners []string
	for _, step := range o.Steps {
		var ids []string
		if step.Type == domain.StepCommand {
			owners = append(owners, step.ID)
			ids = []string{sanitizeMermaidID(step.ID)}
		} else {
			for _, owner := range owners {
				ids = append(ids, g.reqNodes[owner][stepKey{step.Type, step.ID}]...)
			}
		}
		if len(ids) > 0 {
			visited = append(visited, ids...)
			current = ids
		}
	}

	seen := make(map[string]bool)
	for _, id := range visited {
		if !seen[id] {
			seen[id] = true
			fmt.Fprintf(&g.sb, "    class %s visited;\n", id)
		}
	}
	for _, id := range current {
		fmt.Fprintf(&g.sb, "    class %s current;\n", id)
	}
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	return strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_").Replace(id)
}
