// Package poller implements the REST Poller component.
//
// The REST Poller:
//   - Calls the LTP snapshot endpoint on a fixed interval
//   - Acts as the redundant ingestion path when the feed is silent
//   - Reports a full snapshot every cycle (not change-gated)
//   - Throttles failure diagnostics to every Nth consecutive failure
//   - Emits one recovery notification when a failure streak ends
package poller
