// Package metrics provides Prometheus metrics for a chat session.
//
// Key metrics:
//   - Connection status (one-hot gauge) and status transitions
//   - Scheduled reconnect attempts and their delays
//   - Inbound messages by type, outbound frames by kind
//   - Frames dropped because they were not valid JSON objects
//
// Server exposes the registry on /metrics next to a /health probe.
package metrics
