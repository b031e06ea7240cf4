package suite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/casenav/pkg/adapters/memory"
	"github.com/aretw0/casenav/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const claimedCaseID = "0156fa3e-093e-4136-b95c-01b13dae66c6"

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

func newCaseClaim(t *testing.T) (*Evaluator, *domain.EvalContext) {
	t.Helper()
	def, err := Parse(loadFixture(t, "caseclaim.yaml"))
	require.NoError(t, err)
	ev := NewEvaluator(def)

	ec := domain.NewEvalContext()
	require.NoError(t, ev.LoadRestore(ec, loadFixture(t, "restore.json")))
	ev.ResetToRoot(ec)
	return ev, ec
}

func apply(t *testing.T, ev *Evaluator, ec *domain.EvalContext, selection string) domain.Screen {
	t.Helper()
	screen, err := ev.NextScreen(ec)
	require.NoError(t, err)
	require.NoError(t, ev.ApplySelection(ec, screen, selection))
	next, err := ev.NextScreen(ec)
	require.NoError(t, err)
	return next
}

func TestEvaluator_RootMenu(t *testing.T) {
	ev, ec := newCaseClaim(t)

	screen, err := ev.NextScreen(ec)
	require.NoError(t, err)

	menu, ok := screen.(*domain.MenuScreen)
	require.True(t, ok)
	assert.Equal(t, "Case Claim", menu.Title)
	require.Len(t, menu.Commands, 4)
	assert.Equal(t, "Follow Up", menu.Commands[1].Title)
	assert.Equal(t, "Case Claim", ev.AppTitle())
}

func TestEvaluator_MenuToForm(t *testing.T) {
	ev, ec := newCaseClaim(t)

	next := apply(t, ev, ec, "0")
	require.IsType(t, &domain.MenuScreen{}, next)

	next = apply(t, ev, ec, "0")
	assert.Nil(t, next, "entry without requirements goes straight to form entry")

	form, err := ev.FormEntry(ec)
	require.NoError(t, err)
	assert.Equal(t, "register", form.FormID)
}

func TestEvaluator_InvalidSelections(t *testing.T) {
	ev, ec := newCaseClaim(t)
	root, err := ev.NextScreen(ec)
	require.NoError(t, err)

	var invalid *domain.InvalidSelectionError
	for _, sel := range []string{"4", "-1", "abc"} {
		err := ev.ApplySelection(ec, root, sel)
		require.ErrorAs(t, err, &invalid, sel)
	}
	assert.Zero(t, ec.Frame.Len(), "invalid selections must not touch the frame")

	entities := apply(t, ev, ec, "1")
	err = ev.ApplySelection(ec, entities, "no-such-case")
	require.ErrorAs(t, err, &invalid)
	err = ev.ApplySelection(ec, entities, "action 7")
	require.ErrorAs(t, err, &invalid)
}

func TestEvaluator_EntityListFiltersByCaseType(t *testing.T) {
	ev, ec := newCaseClaim(t)

	next := apply(t, ev, ec, "1")
	list, ok := next.(*domain.EntityScreen)
	require.True(t, ok)
	assert.Equal(t, "case_id", list.DatumID)
	assert.Equal(t, []string{"c-1", "c-2"}, list.References())
	assert.Equal(t, []string{"Open Cases", "Search All Cases"}, list.Actions)

	value, err := ev.ResolveSelectionValue(ec, list, "c-2")
	require.NoError(t, err)
	assert.Equal(t, "c-2", value)
	assert.Equal(t, "Grace", ev.Title(ec, list, "c-2"))

	detail, err := ev.Detail(ec, list, "c-1")
	require.NoError(t, err)
	require.Len(t, detail.Fields, 3)
	assert.Equal(t, "36", detail.Fields[2].Value)

	_, err = ev.Detail(ec, list, "missing")
	assert.ErrorIs(t, err, domain.ErrEntityNotFound)

	next = apply(t, ev, ec, "c-1")
	menu, ok := next.(*domain.MenuScreen)
	require.True(t, ok)
	assert.Len(t, menu.Commands, 2)
}

func TestEvaluator_CaseClaimAction(t *testing.T) {
	ev, ec := newCaseClaim(t)

	apply(t, ev, ec, "1")
	next := apply(t, ev, ec, "action 1")
	query, ok := next.(*domain.QueryScreen)
	require.True(t, ok)
	assert.Equal(t, "case_search.m1", query.ID)

	req, err := ev.QueryRequest(ec, query, map[string]string{"name": "Claimed"})
	require.NoError(t, err)
	assert.Equal(t, "Claimed", req.Params.Get("name"))
	assert.Equal(t, "north", req.Params.Get("district"), "defaults fill unanswered prompts")

	require.NoError(t, ev.InstallQueryResult(ec, query, loadFixture(t, "search.json")))
	next, err = ev.NextScreen(ec)
	require.NoError(t, err)
	results, ok := next.(*domain.EntityScreen)
	require.True(t, ok)
	assert.Equal(t, []string{claimedCaseID}, results.References())

	require.NoError(t, ev.ApplySelection(ec, results, claimedCaseID))
	next, err = ev.NextScreen(ec)
	require.NoError(t, err)
	sync, ok := next.(*domain.SyncScreen)
	require.True(t, ok)

	syncReq, err := ev.SyncRequest(ec, sync)
	require.NoError(t, err)
	require.NotNil(t, syncReq)
	assert.Equal(t, claimedCaseID, syncReq.Params.Get("case_id"))

	require.NoError(t, ev.CompleteSync(ec, sync, loadFixture(t, "restore_claimed.json")))
	next, err = ev.NextScreen(ec)
	require.NoError(t, err)
	menu, ok := next.(*domain.MenuScreen)
	require.True(t, ok)
	assert.Equal(t, "m1", menu.ID)
	assert.Len(t, menu.Commands, 2)
}

func TestEvaluator_MarkResolved(t *testing.T) {
	ev, ec := newCaseClaim(t)

	apply(t, ev, ec, "1")
	next := apply(t, ev, ec, "action 1")
	query, ok := next.(*domain.QueryScreen)
	require.True(t, ok)

	require.NoError(t, ev.MarkResolved(ec, query))
	last, ok := ec.Frame.Last(domain.StepQuery)
	require.True(t, ok)
	assert.Equal(t, "case_search.m1", last.ID)

	steps := ec.Frame.Len()
	assert.Error(t, ev.MarkResolved(ec, &domain.QueryScreen{ID: "nope"}))
	assert.Error(t, ev.MarkResolved(ec, &domain.SyncScreen{ID: "nope"}))
	assert.Error(t, ev.MarkResolved(ec, &domain.MenuScreen{ID: "m1"}))
	assert.Equal(t, steps, ec.Frame.Len(), "rejected resolutions leave the frame alone")
}

func TestEvaluator_StaleVolatilesBreakAssertions(t *testing.T) {
	ev, ec := newCaseClaim(t)

	apply(t, ev, ec, "1")
	query := apply(t, ev, ec, "action 1").(*domain.QueryScreen)
	require.NoError(t, ev.InstallQueryResult(ec, query, loadFixture(t, "search.json")))
	results := apply(t, ev, ec, claimedCaseID)
	sync, ok := results.(*domain.SyncScreen)
	require.True(t, ok)

	// Seed the cache the way a relevancy check before the sync would.
	assert.False(t, ev.caseExists(ec, claimedCaseID))

	require.NoError(t, ev.CompleteSync(ec, sync, loadFixture(t, "restore_claimed.json")))
	_, err := ev.NextScreen(ec)
	assert.ErrorContains(t, err, "Claimed case is missing", "stale volatile still says the case is absent")

	ev.ClearVolatiles(ec)
	next, err := ev.NextScreen(ec)
	require.NoError(t, err)
	assert.IsType(t, &domain.MenuScreen{}, next)
}

func TestEvaluator_PostSkippedWhenCaseIsLocal(t *testing.T) {
	ev, ec := newCaseClaim(t)

	next := apply(t, ev, ec, "2")
	query, ok := next.(*domain.QueryScreen)
	require.True(t, ok)

	body, err := EncodeInstance([]domain.Entity{{ID: "c-1", Type: "patient", Properties: map[string]string{"name": "Ada"}}})
	require.NoError(t, err)
	require.NoError(t, ev.InstallQueryResult(ec, query, body))

	next, err = ev.NextScreen(ec)
	require.NoError(t, err)
	list, ok := next.(*domain.EntityScreen)
	require.True(t, ok)
	assert.True(t, ev.IsAutoSkippable(list))

	next = apply(t, ev, ec, "c-1")
	assert.IsType(t, &domain.MenuScreen{}, next, "claim is not relevant for a case already in local storage")
}

func TestEvaluator_UnconfiguredPost(t *testing.T) {
	ev, ec := newCaseClaim(t)

	next := apply(t, ev, ec, "3")
	sync, ok := next.(*domain.SyncScreen)
	require.True(t, ok)

	req, err := ev.SyncRequest(ec, sync)
	require.NoError(t, err)
	assert.Nil(t, req)
}

func TestEvaluator_ResetToRoot(t *testing.T) {
	ev, ec := newCaseClaim(t)
	apply(t, ev, ec, "1")
	ec.Instances["results"] = &domain.Instance{ID: "results"}
	ec.Answers["case_search.m1"] = map[string]string{"name": "Ada"}

	ev.ResetToRoot(ec)
	assert.Zero(t, ec.Frame.Len())
	assert.Contains(t, ec.Instances, "results")
	assert.Equal(t, "Ada", ec.Answers["case_search.m1"]["name"], "answers survive a reset")
	require.NotNil(t, ec.CaseDB)

	next, err := ev.NextScreen(ec)
	require.NoError(t, err)
	assert.IsType(t, &domain.MenuScreen{}, next, "reset positions the context at the root")
}

func TestRegistry(t *testing.T) {
	loader := memory.NewLoader(map[string]string{"caseclaim": string(loadFixture(t, "caseclaim.yaml"))})
	reg := NewRegistry(loader)
	ctx := context.Background()

	ev, err := reg.Evaluator(ctx, "caseclaim")
	require.NoError(t, err)
	again, err := reg.Evaluator(ctx, "caseclaim")
	require.NoError(t, err)
	assert.Same(t, ev, again)

	_, err = reg.Evaluator(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrAppNotFound)

	apps, err := reg.Apps(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"caseclaim"}, apps)

	loader.Add("renamed", loadFixture(t, "caseclaim.yaml"))
	_, err = reg.Evaluator(ctx, "renamed")
	assert.ErrorContains(t, err, `declares id "caseclaim"`)
}

func TestParse_Validation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{name: "missing id", yaml: "title: x", wantErr: "missing id"},
		{name: "missing root", yaml: "id: a\nmenus: [{id: m0}]", wantErr: `missing "root" menu`},
		{name: "unknown command", yaml: "id: a\nmenus: [{id: root, commands: [nope]}]", wantErr: `unknown command "nope"`},
		{
			name:    "unknown query",
			yaml:    "id: a\nmenus: [{id: root, requires: [{query: q}]}]",
			wantErr: `unknown query "q"`,
		},
		{
			name:    "ambiguous requirement",
			yaml:    "id: a\nqueries: [{id: q}]\nposts: [{id: p}]\nmenus: [{id: root, requires: [{query: q, post: p}]}]",
			wantErr: "exactly one",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseInstance(t *testing.T) {
	inst, err := ParseInstance("results", loadFixture(t, "search.json"))
	require.NoError(t, err)
	assert.Equal(t, "results", inst.ID)
	require.Len(t, inst.Entities, 1)

	_, err = ParseInstance("results", []byte("<html>"))
	assert.Error(t, err)

	_, err = ParseInstance("results", []byte(`{"entities":[{"type":"patient"}]}`))
	assert.ErrorContains(t, err, "has no id")
}
