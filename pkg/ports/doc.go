/*
Package ports defines the driven ports (interfaces) of the casenav engine.

These interfaces decouple navigation from the evaluation engine, storage
backends and remote transports.

# Key Interfaces

  - Evaluator: derives screens from an evaluation context and applies selections.
  - SessionStore / FormSessionStore: persist menu and form sessions.
  - SearchClient / SyncClient: remote search and sync transport.
  - QueryCache: shared, identity-scoped cache of search results.
  - DistributedLocker: cross-replica mutual exclusion per session.
*/
package ports
