// Package api provides access to the Dhan market-data HTTP endpoints:
// the LTP snapshot endpoint and the scrip-master catalog CSV.
package api
