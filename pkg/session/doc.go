/*
Package session serializes access to menu sessions.

Every navigation call holds the session's lock for its whole duration, so a
session is never advanced twice concurrently. An optional distributed locker
extends the guarantee across replicas sharing one store.
*/
package session
