package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/casenav/internal/presentation/tui"
	"github.com/aretw0/casenav/pkg/domain"
)

// Printer writes command results as indented JSON or rendered markdown.
type Printer struct {
	Out      io.Writer
	JSON     bool
	renderer *tui.Renderer
}

// NewPrinter prepares a printer. The glamour renderer is only built for terminal output.
func NewPrinter(out io.Writer, jsonMode bool, style string) (*Printer, error) {
	p := &Printer{Out: out, JSON: jsonMode}
	if !jsonMode {
		r, err := tui.NewRenderer(style)
		if err != nil {
			return nil, fmt.Errorf("renderer: %w", err)
		}
		p.renderer = r
	}
	return p, nil
}

// Response prints a navigation response.
func (p *Printer) Response(resp *domain.Response) error {
	if p.JSON {
		return p.encode(resp)
	}
	out, err := p.renderer.Render(resp)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(p.Out, out)
	return err
}

// Detail prints an entity detail.
func (p *Printer) Detail(d *domain.EntityDetail) error {
	if p.JSON {
		return p.encode(d)
	}
	out, err := p.renderer.RenderDetail(d)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(p.Out, out)
	return err
}

// Value prints any value as JSON, whatever the mode.
func (p *Printer) Value(v any) error {
	return p.encode(v)
}

func (p *Printer) encode(v any) error {
	enc := json.NewEncoder(p.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
