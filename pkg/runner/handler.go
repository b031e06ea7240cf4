package runner

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/casenav/pkg/domain"
)

// ErrQuit is returned by an IOHandler when the user asks to leave the loop.
var ErrQuit = errors.New("quit")

// InputError is a rejected input line. The runner reports it and keeps going.
type InputError struct {
	Line string
	Err  error
}

func (e *InputError) Error() string { return e.Err.Error() }

func (e *InputError) Unwrap() error { return e.Err }

// IOHandler moves screens out to the user and commands back in.
type IOHandler interface {
	// Output renders a navigation response.
	Output(ctx context.Context, resp *domain.Response) error

	// Detail renders an entity detail view.
	Detail(ctx context.Context, detail *domain.EntityDetail) error

	// Input blocks for the next command. io.EOF or ErrQuit ends the loop.
	Input(ctx context.Context) (Command, error)

	// SystemOutput reports runner-level messages such as rejected commands.
	SystemOutput(ctx context.Context, msg string) error
}

// CommandKind tells the runner how to turn a Command into a request.
type CommandKind int

const (
	// CommandSelect appends Arg to the selection path.
	CommandSelect CommandKind = iota
	// CommandRedraw shows the current screen again.
	CommandRedraw
	// CommandBack drops the last selection.
	CommandBack
	// CommandHome returns to the application root.
	CommandHome
	// CommandSearch executes the current query screen with Inputs.
	CommandSearch
	// CommandNext and CommandPrev page through an entity list.
	CommandNext
	CommandPrev
	// CommandFilter narrows an entity list to rows containing Arg.
	CommandFilter
	// CommandDetails shows the entity Arg of the current list.
	CommandDetails
	// CommandQuit ends the loop.
	CommandQuit
)

// Command is one parsed user instruction.
type Command struct {
	Kind   CommandKind       `json:"-"`
	Arg    string            `json:"arg,omitempty"`
	Inputs map[string]string `json:"inputs,omitempty"`
}

// CommandPrefix marks runner commands; anything else is a selection.
const CommandPrefix = ":"

var commandNames = map[string]CommandKind{
	"back":    CommandBack,
	"home":    CommandHome,
	"search":  CommandSearch,
	"next":    CommandNext,
	"prev":    CommandPrev,
	"filter":  CommandFilter,
	"details": CommandDetails,
	"quit":    CommandQuit,
	"exit":    CommandQuit,
}

// ParseCommand reads one input line.
//
//	""                      redraw
//	1, action 0, <case id>  selection
//	:back  :home  :quit
//	:search name=Grace district=North
//	:next  :prev  :filter <text>  :details <entity id>
func ParseCommand(line string) (Command, error) {
	clean, err := SanitizeInput(line)
	if err != nil {
		return Command{}, err
	}
	clean = strings.TrimSpace(clean)
	if clean == "" {
		return Command{Kind: CommandRedraw}, nil
	}
	if !strings.HasPrefix(clean, CommandPrefix) {
		return Command{Kind: CommandSelect, Arg: clean}, nil
	}

	name, rest, _ := strings.Cut(strings.TrimPrefix(clean, CommandPrefix), " ")
	kind, ok := commandNames[strings.ToLower(name)]
	if !ok {
		return Command{}, fmt.Errorf("unknown command %q", CommandPrefix+name)
	}
	cmd := Command{Kind: kind, Arg: strings.TrimSpace(rest)}

	switch kind {
	case CommandSearch:
		inputs, err := parseInputs(cmd.Arg)
		if err != nil {
			return Command{}, err
		}
		cmd.Arg, cmd.Inputs = "", inputs
	case CommandDetails:
		if cmd.Arg == "" {
			return Command{}, fmt.Errorf("%sdetails needs an entity id", CommandPrefix)
		}
	}
	return cmd, nil
}

func parseInputs(raw string) (map[string]string, error) {
	inputs := make(map[string]string)
	for _, field := range strings.Fields(raw) {
		prompt, value, ok := strings.Cut(field, "=")
		if !ok || prompt == "" {
			return nil, fmt.Errorf("search input %q: expected <prompt>=<value>", field)
		}
		if unq, err := strconv.Unquote(value); err == nil {
			value = unq
		}
		inputs[prompt] = value
	}
	return inputs, nil
}
