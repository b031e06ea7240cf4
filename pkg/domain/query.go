package domain

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// QueryEntry controls one remote search: whether to run it and with which prompt answers.
type QueryEntry struct {
	Execute bool              `json:"execute" mapstructure:"execute"`
	Inputs  map[string]string `json:"inputs,omitempty" mapstructure:"inputs"`
}

// QueryData maps a query key to its entry. An absent key means "do not run".
type QueryData map[string]QueryEntry

// Lookup returns the entry for key.
func (q QueryData) Lookup(key string) (QueryEntry, bool) {
	if q == nil {
		return QueryEntry{}, false
	}
	e, ok := q[key]
	return e, ok
}

// ShouldExecute reports whether the query for key was requested.
func (q QueryData) ShouldExecute(key string) bool {
	e, ok := q.Lookup(key)
	return ok && e.Execute
}

// DecodeQueryData converts a loosely typed payload (as decoded from JSON)
// into QueryData. Scalars are coerced, so {"execute": "true"} is accepted.
func DecodeQueryData(raw map[string]any) (QueryData, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(QueryData, len(raw))
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &out,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid query data: %w", err)
	}
	return out, nil
}

// RemoteRequest is a form POST to a remote endpoint.
type RemoteRequest struct {
	URL    string
	Params url.Values
}

// QueryCacheKey identifies a cached search result.
type QueryCacheKey struct {
	Identity Identity
	URL      string
	Params   url.Values
}

// String renders the key as scope/escaped-url?sorted-params. url.Values.Encode sorts by key.
func (k QueryCacheKey) String() string {
	var b strings.Builder
	b.WriteString(k.Identity.Scope())
	b.WriteByte('/')
	b.WriteString(url.PathEscape(k.URL))
	if enc := k.Params.Encode(); enc != "" {
		b.WriteByte('?')
		b.WriteString(enc)
	}
	return b.String()
}
