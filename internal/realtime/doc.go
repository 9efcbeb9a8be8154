// Package realtime implements the Realtime Connection Manager.
//
// The Connection Manager:
//   - Owns exactly one logical push channel per session identity
//   - Opens at most one transport at a time (open or opening)
//   - Sends a ping envelope every heartbeat interval and refreshes idle connections
//   - Retries abnormal closes with linear backoff (base delay x attempt), up to a fixed cap
//   - Accepts recovery triggers (visible, online, offline) from the hosting application
//
// Every transport callback, timer and trigger is turned into an event and handled by a
// single goroutine, so state transitions never race with each other.
package realtime
