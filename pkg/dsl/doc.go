/*
Package dsl builds casenav app definitions in Go.

It is the programmatic alternative to YAML definition files, useful for
generated apps, tests, and IDE autocompletion.

Example usage:

	app := dsl.New("clinic", "Clinic")
	app.Root("visit", "follow-up")
	app.Entry("visit").Title("Record Visit")
	app.Menu("follow-up").Title("Follow Up").
		Requires(dsl.Datum("case_id", "Patients").
			CaseType("patient").
			Column("Name", "name").
			Action("Search", dsl.RunQuery("search"), dsl.Datum("case_id", "Results").Instance("search"), dsl.RunPost("claim"))).
		Commands("visit")
	app.Query("search").URL("https://example.org/search/").Prompt("name", "Name", "")
	app.Post("claim").URL("https://example.org/claim/").Param("case_id", "{case_id}")

	loader, err := app.Loader()
	// ... pass loader to suite.NewRegistry(...)
*/
package dsl
