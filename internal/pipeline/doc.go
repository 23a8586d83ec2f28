// Package pipeline generates attendance reports by walking a date range.
//
// For each day the Generator scrapes the meeting list, then fetches the
// participant list of every meeting on it. Records keep day, meeting and
// attendee order so the same portal state always yields the same report.
//
// Participant lists of one day can be fetched concurrently with
// WithConcurrency. errgroup bounds the number of goroutines and results
// are written into an index-addressed slice, so concurrency never changes
// the output order.
//
// By default the first error aborts generation. WithContinueOnError
// records failed days and meetings in the report and moves on.
package pipeline
