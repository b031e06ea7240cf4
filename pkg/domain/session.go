package domain

import (
	"net/url"
	"slices"
	"time"
)

// Session represents one user's navigation through an installed application.
type Session struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Domain   string `json:"domain"`
	AppID    string `json:"app_id"`
	Locale   string `json:"locale,omitempty"`

	// RestoreAs lets a real user act as another user for data access.
	RestoreAs string `json:"restore_as,omitempty"`

	OneQuestionPerScreen bool `json:"one_question_per_screen,omitempty"`

	// Selections is the ordered path that produced the current screen.
	Selections []string `json:"selections"`

	// Breadcrumbs are the titles of the last navigation, app title first.
	Breadcrumbs []string `json:"breadcrumbs,omitempty"`

	// Context is owned exclusively by this session.
	Context *EvalContext `json:"context"`

	// Form is the form session issued when navigation last reached form
	// entry. A redraw returns it again instead of issuing a new one.
	Form *FormSession `json:"form,omitempty"`

	// Envelope carries the sealed form of the session when persisted through
	// an encrypting store. Empty for plain sessions.
	Envelope string `json:"envelope,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession creates a session positioned at the application root.
func NewSession(id, username, domain, appID string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:         id,
		Username:   username,
		Domain:     domain,
		AppID:      appID,
		Selections: []string{},
		Context:    NewEvalContext(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// EffectiveUser is the user whose data the session reads.
func (s *Session) EffectiveUser() string {
	if s.RestoreAs != "" {
		return s.RestoreAs
	}
	return s.Username
}

// Identity returns the tenant/user scope of the session.
func (s *Session) Identity() Identity {
	return Identity{Domain: s.Domain, Username: s.Username, AsUser: s.RestoreAs}
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Selections = slices.Clone(s.Selections)
	out.Breadcrumbs = slices.Clone(s.Breadcrumbs)
	out.Context = s.Context.Clone()
	out.Form = s.Form.Clone()
	return &out
}

// Identity scopes shared resources (such as cached query results) to a tenant and user.
type Identity struct {
	Domain   string `json:"domain"`
	Username string `json:"username"`
	AsUser   string `json:"as_user,omitempty"`
}

// Scope renders the identity as a cache-key prefix. Each part is path
// escaped and joined with "/", so distinct identities never share a scope.
func (i Identity) Scope() string {
	scope := url.PathEscape(i.Domain) + "/" + url.PathEscape(i.Username)
	if i.AsUser != "" {
		scope += "/" + url.PathEscape(i.AsUser)
	}
	return scope
}

// Auth carries the caller's credentials to remote endpoints.
type Auth struct {
	// Token is forwarded as a bearer token when set.
	Token string `json:"-"`

	// SessionCookie is forwarded as the upstream session cookie when set.
	SessionCookie string `json:"-"`
}
