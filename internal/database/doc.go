// Package database stores generated attendance reports in SQLite.
//
// AttendanceDB keeps two tables:
//   - reports: every generated report as JSON with summary columns
//   - attendance: one row per attendee record, keyed by a SHA3 fingerprint
//     so re-running the same range updates rows instead of duplicating them
//
// The driver is modernc.org/sqlite, a CGO-free SQLite, and the file lives in
// the XDG data directory by default.
package database
