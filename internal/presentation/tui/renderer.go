package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/casenav/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// Renderer prints navigation responses as terminal markdown.
type Renderer struct {
	term *glamour.TermRenderer
}

// NewRenderer returns a glamour-backed renderer. An empty style picks the
// terminal's light or dark theme automatically.
func NewRenderer(style string) (*Renderer, error) {
	opt := glamour.WithAutoStyle()
	if style != "" {
		opt = glamour.WithStandardStyle(style)
	}
	r, err := glamour.NewTermRenderer(opt, glamour.WithWordWrap(100))
	if err != nil {
		return nil, err
	}
	return &Renderer{term: r}, nil
}

// Render formats resp for the terminal.
func (r *Renderer) Render(resp *domain.Response) (string, error) {
	return r.term.Render(Markdown(resp))
}

// RenderDetail formats an entity detail for the terminal.
func (r *Renderer) RenderDetail(d *domain.EntityDetail) (string, error) {
	return r.term.Render(DetailMarkdown(d))
}

// Markdown describes a response as markdown.
func Markdown(resp *domain.Response) string {
	var b strings.Builder

	if len(resp.Breadcrumbs) > 0 {
		fmt.Fprintf(&b, "_%s_\n\n", strings.Join(resp.Breadcrumbs, " › "))
	}
	if resp.Title != "" {
		fmt.Fprintf(&b, "# %s\n\n", resp.Title)
	}
	if n := resp.Notification; n != nil {
		prefix := "ℹ"
		if n.Error {
			prefix = "⚠"
		}
		fmt.Fprintf(&b, "> %s %s\n\n", prefix, n.Message)
	}

	switch resp.Type {
	case domain.ScreenMenu:
		for _, c := range resp.Commands {
			fmt.Fprintf(&b, "%d. %s\n", c.Index, c.Title)
		}
	case domain.ScreenEntity:
		writeEntities(&b, resp)
	case domain.ScreenQuery:
		fmt.Fprintf(&b, "Search `%s`\n\n", resp.QueryKey)
		for _, p := range resp.Displays {
			value := p.Answer
			if value == "" {
				value = p.Default
			}
			fmt.Fprintf(&b, "- **%s** (`%s`): %s\n", p.Label, p.Key, value)
		}
	case domain.ScreenSync:
		b.WriteString("Waiting for remote sync.\n")
	case domain.ScreenForm:
		if resp.Form != nil {
			fmt.Fprintf(&b, "Form entry: **%s** (`%s`)\n\nForm session `%s`\n", resp.Form.Title, resp.Form.FormID, resp.Form.ID)
		}
	}

	if len(resp.Selections) > 0 {
		fmt.Fprintf(&b, "\nSelections: `%s`\n", strings.Join(resp.Selections, " "))
	}
	return b.String()
}

func writeEntities(b *strings.Builder, resp *domain.Response) {
	if len(resp.Entities) == 0 {
		b.WriteString("_No entities._\n")
	} else {
		fmt.Fprintf(b, "| id | %s |\n", strings.Join(resp.Headers, " | "))
		fmt.Fprintf(b, "|---%s|\n", strings.Repeat("|---", len(resp.Headers)))
		for _, e := range resp.Entities {
			fmt.Fprintf(b, "| %s | %s |\n", e.ID, strings.Join(e.Data, " | "))
		}
	}
	if p := resp.Page; p != nil && p.PageCount > 1 {
		fmt.Fprintf(b, "\nPage %d of %d (%d total)\n", p.Current+1, p.PageCount, p.TotalCount)
	}
	for i, a := range resp.Actions {
		fmt.Fprintf(b, "\n- `action %d`: %s", i, a)
	}
	if len(resp.Actions) > 0 {
		b.WriteString("\n")
	}
}

// DetailMarkdown describes an entity detail as markdown.
func DetailMarkdown(d *domain.EntityDetail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", d.Title)
	for _, f := range d.Fields {
		fmt.Fprintf(&b, "- **%s**: %s\n", f.Header, f.Value)
	}
	return b.String()
}
