// Package environment turns host events into connection recovery triggers.
//
// The Environment Monitor:
//   - Probes backend reachability and reports online/offline transitions
//   - Maps SIGCONT (process resumed in the foreground) to a visibility change
//   - Maps SIGUSR1 to a manual reconnect
package environment
