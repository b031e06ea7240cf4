/*
Package casenav is a session navigation engine for case management
applications.

An application is a tree of menus whose commands lead to forms. Reaching a
form may require choosing an entity from a list, running a remote search or
claiming a case on a remote server. casenav keeps one session per user,
replays the user's full selection path from the root on every request and
returns the screen the user is facing: a menu, an entity list, a query
prompt, a pending sync or the form hand-off.

# Concept

Every call to Advance resets the session to its root and applies the given
selections in order. Remote searches run only when the caller asks for them
through query data, and a successful sync ends the request. Because the
path is always replayed, a client can retry a request, go back or jump to
any point simply by sending a different path.

The engine is hexagonal: application definitions, session storage, query
caching, remote transport and locking are ports (see pkg/ports) with
adapters for memory, files, SQLite, Redis and HTTP.

# Usage

	apps := suite.NewRegistry(file.NewLoader("./apps"))

	eng, err := casenav.New(apps,
		casenav.WithStore(file.New(".casenav/sessions")),
		casenav.WithQueryCache(memory.NewQueryCache()),
	)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	resp, err := eng.Install(ctx, domain.InstallRequest{
		Username: "worker",
		Domain:   "demo",
		AppID:    "caseclaim",
	})
	if err != nil {
		log.Fatal(err)
	}

	// Follow Up, then the second entity-list action.
	resp, err = eng.Advance(ctx, domain.NavigationRequest{
		SessionID:  resp.SessionID,
		Selections: []string{"1", "action 1"},
		QueryData: map[string]any{
			"case_search.m1": map[string]any{"execute": true},
		},
	})
*/
package casenav
