package domain

import (
	"maps"
	"time"
)

// FormSession is created when navigation reaches form entry.
// Form filling happens elsewhere; this record only captures how it was reached.
type FormSession struct {
	ID            string            `json:"id"`
	MenuSessionID string            `json:"menu_session_id"`
	AppID         string            `json:"app_id"`
	Username      string            `json:"username"`
	Domain        string            `json:"domain"`
	RestoreAs     string            `json:"restore_as,omitempty"`
	FormID        string            `json:"form_id"`
	Title         string            `json:"title"`
	Data          map[string]string `json:"data,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

// Clone returns a deep copy of the form session.
func (f *FormSession) Clone() *FormSession {
	if f == nil {
		return nil
	}
	out := *f
	out.Data = maps.Clone(f.Data)
	return &out
}
