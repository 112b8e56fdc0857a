// Package database provides the optional Postgres mirror of the latest
// LTP per instrument key. Only the most recent value is stored; the
// mirror exists so a restarted process can show where prices stood, not
// as tick history.
package database
