package domain

// Notification is a user-facing message attached to a response.
// Error marks it as a failure; either way the response itself succeeded.
type Notification struct {
	Message string `json:"message"`
	Error   bool   `json:"error"`
}

// Info builds a non-error notification.
func Info(msg string) *Notification { return &Notification{Message: msg} }

// Failure builds an error notification.
func Failure(msg string) *Notification { return &Notification{Message: msg, Error: true} }

// CommandView is a menu option as sent to the client.
type CommandView struct {
	Index int    `json:"index"`
	ID    string `json:"id"`
	Title string `json:"title"`
}

// EntityView is one row of an entity list.
type EntityView struct {
	ID   string   `json:"id"`
	Data []string `json:"data"`
}

// Page describes the window of an entity list that was returned.
type Page struct {
	Offset     int `json:"offset"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
	PageCount  int `json:"page_count"`
	Current    int `json:"current_page"`
}

// EntityField is a labelled value of an entity detail.
type EntityField struct {
	Header string `json:"header"`
	Value  string `json:"value"`
}

// EntityDetail is the detail view of one entity.
type EntityDetail struct {
	ID     string        `json:"id"`
	Title  string        `json:"title"`
	Fields []EntityField `json:"fields"`
}

// Response is the result of a navigation call.
type Response struct {
	Type         ScreenType    `json:"type"`
	SessionID    string        `json:"session_id"`
	Title        string        `json:"title,omitempty"`
	Breadcrumbs  []string      `json:"breadcrumbs"`
	Selections   []string      `json:"selections"`
	Consumed     int           `json:"consumed"`
	Notification *Notification `json:"notification,omitempty"`

	// Menu
	Commands []CommandView `json:"commands,omitempty"`

	// Entity list
	Headers  []string     `json:"headers,omitempty"`
	Entities []EntityView `json:"entities,omitempty"`
	Actions  []string     `json:"actions,omitempty"`
	Page     *Page        `json:"page,omitempty"`

	// Query
	QueryKey string        `json:"query_key,omitempty"`
	Displays []QueryPrompt `json:"displays,omitempty"`

	// Form entry
	Form *FormSession `json:"form,omitempty"`
}
