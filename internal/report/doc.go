// Package report writes attendance reports.
//
// Writers for each output format implement the Writer interface:
//   - SimpleWriter: human-readable text for the terminal
//   - JSONWriter and FullJSONWriter: JSON for tool integration
//   - CSVWriter: one row per attendee record for spreadsheets
//   - MarkdownWriter: a Markdown document with tables and a chart
//
// NewWriter picks the writer for a Format.
package report
