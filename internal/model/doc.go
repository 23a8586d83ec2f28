// Package model defines the data structures shared by zoomreport.
//
// This package contains the following main types:
//   - Attendee: One participant record of one meeting
//   - AttendanceReport: All records of a date range plus per-day statistics
//     and the failures recorded in continue-on-error mode
//   - AttendeeSummary: Participation aggregated per attendee name
//
// The zoom, pipeline, report and database packages all use these types, so
// they live here to keep imports one-directional. Every type serializes to
// JSON for report output and database storage.
package model
