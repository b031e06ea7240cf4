package domain

// ScreenType tags the variant of a Screen in responses.
type ScreenType string

const (
	ScreenMenu   ScreenType = "menu"
	ScreenEntity ScreenType = "entity"
	ScreenQuery  ScreenType = "query"
	ScreenSync   ScreenType = "sync"
	ScreenForm   ScreenType = "form"
)

// Screen is the interaction the user currently faces.
// The set of variants is closed: MenuScreen, EntityScreen, QueryScreen and
// SyncScreen. A nil Screen means the session is ready for form entry.
type Screen interface {
	ScreenType() ScreenType
	screen()
}

// Command is one selectable option of a menu.
type Command struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// MenuScreen lists commands addressed by zero-based index.
type MenuScreen struct {
	ID       string
	Title    string
	Commands []Command
}

func (*MenuScreen) ScreenType() ScreenType { return ScreenMenu }
func (*MenuScreen) screen()                {}

// Column describes one displayed property of an entity list.
type Column struct {
	Header   string `json:"header"`
	Property string `json:"property"`
}

// EntityScreen lists entities for one datum. Entities are selected by id;
// actions are selected with "action N".
type EntityScreen struct {
	DatumID    string
	InstanceID string
	Title      string
	Columns    []Column
	Entities   []Entity
	Actions    []string

	// AutoSelect marks screens that may be skipped when exactly one entity is listed.
	AutoSelect bool
}

func (*EntityScreen) ScreenType() ScreenType { return ScreenEntity }
func (*EntityScreen) screen()                {}

// References returns the ids of the listed entities in display order.
func (s *EntityScreen) References() []string {
	refs := make([]string, len(s.Entities))
	for i, e := range s.Entities {
		refs[i] = e.ID
	}
	return refs
}

// QueryPrompt is one input of a remote search.
type QueryPrompt struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Default string `json:"default,omitempty"`
	Answer  string `json:"answer,omitempty"`
}

// QueryScreen asks for a remote search before navigation can continue.
type QueryScreen struct {
	ID      string
	Title   string
	URL     string
	Prompts []QueryPrompt
}

func (*QueryScreen) ScreenType() ScreenType { return ScreenQuery }
func (*QueryScreen) screen()                {}

// SyncScreen requires a remote post and restore before navigation can continue.
type SyncScreen struct {
	ID    string
	Title string
}

func (*SyncScreen) ScreenType() ScreenType { return ScreenSync }
func (*SyncScreen) screen()                {}

// TypeOf returns the tag for a screen, ScreenForm for nil.
func TypeOf(s Screen) ScreenType {
	if s == nil {
		return ScreenForm
	}
	return s.ScreenType()
}
