// Package instrument implements the Instrument Resolver component.
//
// The Instrument Resolver:
//   - Maps human symbols to (segment, security id) pairs
//   - Classifies symbols into NSE_EQ / NSE_INDEX / BSE_INDEX segments
//   - Reverse-maps wire security ids to readable labels
//   - Patches unknown symbols from the scrip-master catalog, best-effort
package instrument
