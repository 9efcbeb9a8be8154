// Package router implements inbound message routing for a chat session.
//
// The Router:
//   - Observes a realtime.Manager and queues decoded messages without blocking it
//   - Dispatches each message to the handlers registered for its type
//   - Tracks whether the assistant is currently typing
//   - Counts routed, unhandled and dropped messages
package router
