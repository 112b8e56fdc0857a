// Package feed implements the Streaming Client component.
//
// The Streaming Client:
//   - Maintains a persistent WebSocket connection to the Dhan feed
//   - Authenticates, subscribes the resolved instrument set, and receives
//   - Extracts LTPs with ordered multi-key probing (see extract.go)
//   - Routes genuine price changes to the notifier via the tick store
//   - Reconnects after a fixed delay, indefinitely, until stopped
package feed
