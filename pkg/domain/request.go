package domain

// InstallRequest creates a session for one user of one application.
type InstallRequest struct {
	Username             string `json:"username" validate:"required"`
	Domain               string `json:"domain" validate:"required"`
	AppID                string `json:"app_id" validate:"required"`
	Locale               string `json:"locale" validate:"omitempty,bcp47_language_tag"`
	RestoreAs            string `json:"restore_as,omitempty"`
	OneQuestionPerScreen bool   `json:"one_question_per_screen,omitempty"`
	Auth                 Auth   `json:"-"`
}

// NavigationRequest advances a session. Selections are the full path from the root.
type NavigationRequest struct {
	SessionID  string         `json:"session_id" validate:"required"`
	Selections []string       `json:"selections"`
	Offset     int            `json:"offset" validate:"gte=0"`
	SearchText string         `json:"search_text,omitempty"`
	QueryData  map[string]any `json:"query_data,omitempty"`

	// Restart clears the frame before an empty-selection redraw, showing the root.
	Restart bool `json:"restart,omitempty"`
	Auth    Auth `json:"-"`
}

// DetailRequest asks for the detail view of an entity on the list reached by Selections.
type DetailRequest struct {
	SessionID  string   `json:"session_id" validate:"required"`
	Selections []string `json:"selections"`
	EntityID   string   `json:"entity_id" validate:"required"`
	Auth       Auth     `json:"-"`
}
