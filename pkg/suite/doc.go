/*
Package suite is a small application evaluation engine.

An application is a YAML definition of menus and entries. Entries lead to
forms once their requirements are satisfied; requirements pick entities
(datums), run remote searches (queries), perform remote side effects followed
by a restore (posts), or assert conditions on local storage.

The Evaluator derives the current screen purely from the frame recorded in
an EvalContext, which makes navigation replayable from the root.
*/
package suite
