package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/casenav/pkg/domain"
)

// ContentRenderer turns screens into display text.
type ContentRenderer interface {
	Render(resp *domain.Response) (string, error)
	RenderDetail(detail *domain.EntityDetail) (string, error)
}

// TextHandler implements the line-oriented terminal interface.
type TextHandler struct {
	Reader   *bufio.Reader
	Writer   io.Writer
	Renderer ContentRenderer
	Prompt   string

	inputChan chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the content renderer.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// WithPrompt sets the text written before each read.
func WithPrompt(prompt string) TextHandlerOption {
	return func(h *TextHandler) {
		h.Prompt = prompt
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Reader:   bufio.NewReader(r),
		Writer:   w,
		Renderer: PlainRenderer{},
		Prompt:   "> ",
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// The pump reads in the background so Input can honour ctx cancellation.
func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult)
		go h.pump()
	})
}

func (h *TextHandler) pump() {
	defer close(h.inputChan)
	for {
		text, err := h.Reader.ReadString('\n')
		if text != "" {
			h.inputChan <- inputResult{text: text}
		}
		if err != nil {
			if err != io.EOF {
				h.inputChan <- inputResult{err: err}
			}
			return
		}
	}
}

func (h *TextHandler) Output(_ context.Context, resp *domain.Response) error {
	out, err := h.Renderer.Render(resp)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(h.Writer, strings.TrimRight(out, "\n"))
	return err
}

func (h *TextHandler) Detail(_ context.Context, detail *domain.EntityDetail) error {
	out, err := h.Renderer.RenderDetail(detail)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(h.Writer, strings.TrimRight(out, "\n"))
	return err
}

func (h *TextHandler) SystemOutput(_ context.Context, msg string) error {
	_, err := fmt.Fprintf(h.Writer, "! %s\n", msg)
	return err
}

func (h *TextHandler) Input(ctx context.Context) (Command, error) {
	h.initPump()
	if h.Prompt != "" {
		fmt.Fprint(h.Writer, h.Prompt)
	}

	select {
	case <-ctx.Done():
		return Command{}, ctx.Err()
	case res, ok := <-h.inputChan:
		if !ok {
			return Command{}, io.EOF
		}
		if res.err != nil {
			return Command{}, res.err
		}
		line := strings.TrimRight(res.text, "\r\n")
		cmd, err := ParseCommand(line)
		if err != nil {
			return Command{}, &InputError{Line: line, Err: err}
		}
		return cmd, nil
	}
}

// PlainRenderer is the renderer used when none is configured.
type PlainRenderer struct{}

func (PlainRenderer) Render(resp *domain.Response) (string, error) {
	var b strings.Builder
	if len(resp.Breadcrumbs) > 0 {
		fmt.Fprintf(&b, "[%s]\n", strings.Join(resp.Breadcrumbs, " > "))
	}
	if n := resp.Notification; n != nil {
		if n.Error {
			fmt.Fprintf(&b, "ERROR: %s\n", n.Message)
		} else {
			fmt.Fprintf(&b, "%s\n", n.Message)
		}
	}

	switch resp.Type {
	case domain.ScreenMenu:
		for _, c := range resp.Commands {
			fmt.Fprintf(&b, "%d) %s\n", c.Index, c.Title)
		}
	case domain.ScreenEntity:
		if len(resp.Headers) > 0 {
			fmt.Fprintf(&b, "   %s\n", strings.Join(resp.Headers, " | "))
		}
		for _, e := range resp.Entities {
			fmt.Fprintf(&b, "%s: %s\n", e.ID, strings.Join(e.Data, " | "))
		}
		for i, a := range resp.Actions {
			fmt.Fprintf(&b, "action %d) %s\n", i, a)
		}
		if p := resp.Page; p != nil && p.PageCount > 1 {
			fmt.Fprintf(&b, "page %d/%d\n", p.Current+1, p.PageCount)
		}
	case domain.ScreenQuery:
		fmt.Fprintf(&b, "search %s\n", resp.QueryKey)
		for _, d := range resp.Displays {
			fmt.Fprintf(&b, "  %s (%s)", d.Key, d.Label)
			if d.Default != "" {
				fmt.Fprintf(&b, " [%s]", d.Default)
			}
			b.WriteByte('\n')
		}
	case domain.ScreenForm:
		if resp.Form != nil {
			fmt.Fprintf(&b, "form %s (%s)\n", resp.Form.FormID, resp.Form.ID)
		}
	default:
		fmt.Fprintf(&b, "%s\n", resp.Type)
	}
	return b.String(), nil
}

func (PlainRenderer) RenderDetail(d *domain.EntityDetail) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n", d.Title, d.ID)
	for _, f := range d.Fields {
		fmt.Fprintf(&b, "  %s: %s\n", f.Header, f.Value)
	}
	return b.String(), nil
}
