package dsl_test

import (
	"context"
	"testing"

	"github.com/aretw0/casenav"
	"github.com/aretw0/casenav/pkg/domain"
	"github.com/aretw0/casenav/pkg/dsl"
	"github.com/aretw0/casenav/pkg/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clinic() *dsl.Builder {
	app := dsl.New("clinic", "Clinic")
	app.Root("register", "follow-up")
	app.Entry("register").Title("Register")
	app.Menu("follow-up").Title("Follow Up").
		Requires(dsl.Datum("case_id", "Patients").
			CaseType("patient").
			Column("Name", "name").
			Detail("Age", "age").
			Action("Search",
				dsl.RunQuery("search"),
				dsl.Datum("case_id", "Results").Instance("search").Column("Name", "name"),
				dsl.RunPost("claim"),
				dsl.CaseExists("case_id", "missing"),
			)).
		Commands("visit")
	app.Entry("visit").Title("Visit").Form("visit-form")
	app.Query("search").Title("Search").URL("https://remote.test/search/").Prompt("name", "Name", "")
	app.Post("claim").Title("Claim").URL("https://remote.test/claim/").
		Param("case_id", "{case_id}").
		RelevantUnlessLocal("case_id")
	return app
}

func TestBuilder_Build(t *testing.T) {
	def, err := clinic().Build()
	require.NoError(t, err)

	assert.Equal(t, "clinic", def.ID)
	require.Len(t, def.Menus, 2)
	assert.Equal(t, suite.RootMenu, def.Menus[0].ID)
	assert.Equal(t, []string{"register", "follow-up"}, def.Menus[0].Commands)

	require.Len(t, def.Entries, 2)
	assert.Equal(t, "register", def.Entries[0].Form, "form defaults to the entry id")
	assert.Equal(t, "visit-form", def.Entries[1].Form)

	datum := def.Menus[1].Requires[0].Datum
	require.NotNil(t, datum)
	assert.Equal(t, "patient", datum.CaseType)
	require.Len(t, datum.Actions, 1)
	assert.Len(t, datum.Actions[0].Requires, 4)
	assert.Equal(t, "search", def.Queries[0].Instance, "instance defaults to the query id")
	assert.Equal(t, "case_id", def.Posts[0].RelevantUnlessLocal)
}

func TestBuilder_YAMLRoundTrip(t *testing.T) {
	data, err := clinic().YAML()
	require.NoError(t, err)
	got, err := suite.Parse(data)
	require.NoError(t, err)

	datum := got.Menus[1].Requires[0].Datum
	require.NotNil(t, datum)
	assert.Equal(t, []domain.Column{{Header: "Name", Property: "name"}}, datum.Columns)
	require.Len(t, datum.Actions[0].Requires, 4)
	assert.Equal(t, "case_id", datum.Actions[0].Requires[3].Assert.CaseExists)
	assert.Equal(t, map[string]string{"case_id": "{case_id}"}, got.Posts[0].Params)
}

func TestBuilder_Invalid(t *testing.T) {
	app := dsl.New("broken", "Broken")
	app.Root("missing")
	_, err := app.Build()
	assert.ErrorContains(t, err, `unknown command "missing"`)

	_, err = dsl.New("", "").Build()
	assert.Error(t, err)

	_, err = app.Loader()
	assert.Error(t, err)
}

func TestBuilder_Loader(t *testing.T) {
	loader, err := clinic().Loader()
	require.NoError(t, err)

	eng, err := casenav.New(suite.NewRegistry(loader))
	require.NoError(t, err)

	ctx := context.Background()
	resp, err := eng.Install(ctx, domain.InstallRequest{Username: "nurse", Domain: "demo", AppID: "clinic"})
	require.NoError(t, err)
	assert.Equal(t, "Clinic", resp.Title)
	require.Len(t, resp.Commands, 2)
	assert.Equal(t, "Follow Up", resp.Commands[1].Title)

	resp, err = eng.Advance(ctx, domain.NavigationRequest{SessionID: resp.SessionID, Selections: []string{"0"}})
	require.NoError(t, err)
	assert.Equal(t, domain.ScreenForm, resp.Type)
	assert.Equal(t, "register", resp.Form.FormID)
}
