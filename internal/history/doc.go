// Package history persists command activity to SQLite.
//
// Two tables back this package:
//
//	command_log      one row per delivery attempt, newest-first queries
//	session_summary  one row per completed session
//
// The command recorder hangs off the dispatch path as an observer, so a
// database outage degrades to lost history rather than lost commands.
//
// Usage:
//
//	store := history.NewStore(db.DB, sessionID, logger)
//	dispatcher := dispatch.New(table, session, sender, logger, store.Recorder())
//	...
//	store.SaveSessionSummary(ctx, snapshot)
package history
