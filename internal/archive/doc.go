// Package archive persists the inbound chat log to PostgreSQL.
//
// The Writer observes a realtime.Manager, queues every decoded message in a
// bounded Buffer and inserts them in batches. Rows are keyed by a name-based
// UUID so a replayed batch never duplicates a message.
package archive
