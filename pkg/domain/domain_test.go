package domain

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrame(t *testing.T) {
	var f Frame
	f.Push(Step{Type: StepCommand, ID: "m1"})
	f.Push(Step{Type: StepDatum, ID: "case_id", Value: "c1"})
	f.Push(Step{Type: StepCommand, ID: "m1-f0"})

	assert.Equal(t, 3, f.Len())

	step, ok := f.Find(StepDatum, "case_id")
	require.True(t, ok)
	assert.Equal(t, "c1", step.Value)

	last, ok := f.Last(StepCommand)
	require.True(t, ok)
	assert.Equal(t, "m1-f0", last.ID)

	snap := f.Snapshot()
	snap[0].ID = "mutated"
	assert.Equal(t, "m1", f.Steps[0].ID, "snapshot must be detached")

	f.Reset()
	assert.Zero(t, f.Len())
	assert.False(t, f.Has(StepCommand, "m1"))
}

func TestSession_CloneIsDeep(t *testing.T) {
	s := NewSession("s1", "worker", "demo", "app")
	s.Selections = []string{"1"}
	s.Context.Frame.Push(Step{Type: StepCommand, ID: "m1"})
	s.Context.Instances["results"] = &Instance{ID: "results", Entities: []Entity{
		{ID: "e1", Properties: map[string]string{"name": "Ada"}},
	}}
	s.Context.Answers["search"] = map[string]string{"name": "Ada"}
	s.Context.SetVolatile("k", "v")

	c := s.Clone()
	c.Selections[0] = "2"
	c.Context.Frame.Steps[0].ID = "m2"
	c.Context.Instances["results"].Entities[0].Properties["name"] = "Grace"
	c.Context.Answers["search"]["name"] = "Grace"

	assert.Equal(t, "1", s.Selections[0])
	assert.Equal(t, "m1", s.Context.Frame.Steps[0].ID)
	assert.Equal(t, "Ada", s.Context.Instances["results"].Entities[0].Properties["name"])
	assert.Equal(t, "Ada", s.Context.Answers["search"]["name"])
	assert.Nil(t, c.Context.Volatiles, "volatiles are not carried by clones")
}

func TestEvalContext_VolatilesNotSerialized(t *testing.T) {
	ec := NewEvalContext()
	ec.SetVolatile("exists:c1", "true")

	b, err := json.Marshal(ec)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "exists:c1")

	ec.ClearVolatiles()
	_, ok := ec.Volatile("exists:c1")
	assert.False(t, ok)
}

func TestIdentity_Scope(t *testing.T) {
	assert.Equal(t, "demo/alice", Identity{Domain: "demo", Username: "alice"}.Scope())
	assert.Equal(t, "demo/alice/bob", Identity{Domain: "demo", Username: "alice", AsUser: "bob"}.Scope())

	colliding := [][2]Identity{
		{{Domain: "demo_x", Username: "worker"}, {Domain: "demo", Username: "x_worker"}},
		{{Domain: "demo", Username: "x", AsUser: "y"}, {Domain: "demo", Username: "x_y"}},
		{{Domain: "demo", Username: "x", AsUser: "y"}, {Domain: "demo", Username: "x/y"}},
		{{Domain: "a/b", Username: "c"}, {Domain: "a", Username: "b/c"}},
	}
	for _, pair := range colliding {
		assert.NotEqual(t, pair[0].Scope(), pair[1].Scope(), "%+v vs %+v", pair[0], pair[1])
	}
}

func TestQueryCacheKey_String(t *testing.T) {
	id := Identity{Domain: "demo", Username: "alice"}

	a := QueryCacheKey{Identity: id, URL: "https://x/search", Params: url.Values{"b": {"2"}, "a": {"1"}}}
	b := QueryCacheKey{Identity: id, URL: "https://x/search", Params: url.Values{"a": {"1"}, "b": {"2"}}}
	assert.Equal(t, "demo/alice/https:%2F%2Fx%2Fsearch?a=1&b=2", a.String())
	assert.Equal(t, a.String(), b.String(), "parameter order must not matter")

	c := QueryCacheKey{Identity: id, URL: "https://x/search", Params: url.Values{"a": {"1"}, "b": {"3"}}}
	assert.NotEqual(t, a.String(), c.String())

	d := QueryCacheKey{Identity: Identity{Domain: "demo", Username: "alice", AsUser: "bob"}, URL: a.URL, Params: a.Params}
	assert.NotEqual(t, a.String(), d.String())

	e := QueryCacheKey{Identity: Identity{Domain: "demo", Username: "alice"}, URL: "bob/" + a.URL, Params: a.Params}
	assert.NotEqual(t, d.String(), e.String())
}

func TestDecodeQueryData(t *testing.T) {
	tests := []struct {
		name    string
		raw     map[string]any
		want    QueryData
		wantErr bool
	}{
		{name: "empty", raw: nil, want: nil},
		{
			name: "typed",
			raw: map[string]any{
				"case_search.m1": map[string]any{"execute": true, "inputs": map[string]any{"name": "Ada"}},
			},
			want: QueryData{"case_search.m1": {Execute: true, Inputs: map[string]string{"name": "Ada"}}},
		},
		{
			name: "weakly typed",
			raw: map[string]any{
				"q": map[string]any{"execute": "true", "inputs": map[string]any{"age": 42}},
			},
			want: QueryData{"q": {Execute: true, Inputs: map[string]string{"age": "42"}}},
		},
		{
			name:    "malformed",
			raw:     map[string]any{"q": "nope"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeQueryData(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	var qd QueryData
	assert.False(t, qd.ShouldExecute("missing"))
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, ScreenForm, TypeOf(nil))
	assert.Equal(t, ScreenMenu, TypeOf(&MenuScreen{}))
	assert.Equal(t, ScreenEntity, TypeOf(&EntityScreen{}))
	assert.Equal(t, ScreenQuery, TypeOf(&QueryScreen{}))
	assert.Equal(t, ScreenSync, TypeOf(&SyncScreen{}))
}

func TestErrors(t *testing.T) {
	inner := &InvalidSelectionError{Selection: "9", Screen: ScreenMenu, Reason: "out of range"}
	err := &SessionNavigationError{SessionID: "s1", Op: "advance", Err: inner}

	var target *InvalidSelectionError
	assert.ErrorAs(t, err, &target)
	assert.Equal(t, "9", target.Selection)
	assert.Contains(t, (&UnknownScreenError{}).Error(), "unable to recognize next screen")
}
