/*
Package domain contains the core models of the casenav navigation engine.

It defines sessions, the evaluation context they own, the stack frame that
records how a session reached its current position, and the closed set of
screens a user can face. The package is kept free of I/O and persistence.

# Key Entities

  - Session: a user's navigation through one installed application.
  - EvalContext: frame, local case storage and query-scoped instances.
  - Screen: MenuScreen, EntityScreen, QueryScreen or SyncScreen; nil means form entry.
  - Response: what the caller renders after a navigation call.
*/
package domain
