package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/casenav/pkg/domain"
)

// Event is one JSON line written by JSONHandler.
type Event struct {
	Type     string               `json:"type"`
	Response *domain.Response     `json:"response,omitempty"`
	Detail   *domain.EntityDetail `json:"detail,omitempty"`
	Message  string               `json:"message,omitempty"`
}

// Event types.
const (
	EventScreen  = "screen"
	EventDetail  = "detail"
	EventMessage = "message"
)

// jsonCommand is the object form of an input line:
// {"command":"search","inputs":{"name":"Grace"}} or {"command":"select","arg":"1"}.
type jsonCommand struct {
	Command string            `json:"command"`
	Arg     string            `json:"arg"`
	Inputs  map[string]string `json:"inputs"`
}

// JSONHandler implements IOHandler over JSON Lines, for driving the runner
// from another process.
type JSONHandler struct {
	Reader  *bufio.Reader
	Encoder *json.Encoder
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Encoder: json.NewEncoder(w),
	}
}

func (h *JSONHandler) Output(_ context.Context, resp *domain.Response) error {
	return h.Encoder.Encode(Event{Type: EventScreen, Response: resp})
}

func (h *JSONHandler) Detail(_ context.Context, detail *domain.EntityDetail) error {
	return h.Encoder.Encode(Event{Type: EventDetail, Detail: detail})
}

func (h *JSONHandler) SystemOutput(_ context.Context, msg string) error {
	return h.Encoder.Encode(Event{Type: EventMessage, Message: msg})
}

// Input accepts a command object, a JSON string, or a bare text line.
// Strings and text lines follow ParseCommand.
func (h *JSONHandler) Input(ctx context.Context) (Command, error) {
	if err := ctx.Err(); err != nil {
		return Command{}, err
	}
	text, err := h.Reader.ReadString('\n')
	if err != nil && (err != io.EOF || text == "") {
		return Command{}, err
	}
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "{") {
		var raw jsonCommand
		if err := json.Unmarshal([]byte(text), &raw); err != nil {
			return Command{}, &InputError{Line: text, Err: err}
		}
		cmd, err := raw.command()
		if err != nil {
			return Command{}, &InputError{Line: text, Err: err}
		}
		return cmd, nil
	}

	var line string
	if err := json.Unmarshal([]byte(text), &line); err != nil {
		line = text
	}
	cmd, err := ParseCommand(line)
	if err != nil {
		return Command{}, &InputError{Line: line, Err: err}
	}
	return cmd, nil
}

func (c jsonCommand) command() (Command, error) {
	name := strings.ToLower(c.Command)
	switch name {
	case "select":
		if c.Arg == "" {
			return Command{}, fmt.Errorf("select needs an arg")
		}
		return Command{Kind: CommandSelect, Arg: c.Arg}, nil
	case "", "redraw":
		return Command{Kind: CommandRedraw}, nil
	}
	kind, ok := commandNames[name]
	if !ok {
		return Command{}, fmt.Errorf("unknown command %q", c.Command)
	}
	if kind == CommandDetails && c.Arg == "" {
		return Command{}, fmt.Errorf("details needs an arg")
	}
	return Command{Kind: kind, Arg: c.Arg, Inputs: c.Inputs}, nil
}
