// Package sqlite provides SQLite-backed persistence for Teton Tracker
// metadata. It implements the driven storage ports over a single database
// file with embedded schema migrations.
package sqlite
