package zoom

import (
	"errors"
	"fmt"
)

// Scraping errors.
// These describe a portal response whose structure does not match what the
// report pages are expected to contain. They usually mean the session
// cookies expired and the portal served a login page instead.
var (
	// ErrMeetingTableNotFound is returned when the report page has no
	// <table id="meeting_list">.
	ErrMeetingTableNotFound = errors.New("meeting list table not found in report page")

	// ErrMissingDataID is returned when an anchor in the meeting table
	// has no data-id attribute.
	ErrMissingDataID = errors.New("meeting anchor has no data-id attribute")

	// ErrTotalRecordsNotFound is returned when the report page has no
	// <span name="totalRecords">.
	ErrTotalRecordsNotFound = errors.New("totalRecords element not found in report page")

	// ErrInvalidTotalRecords is returned when the totalRecords text is not an integer.
	ErrInvalidTotalRecords = errors.New("totalRecords is not an integer")

	// ErrAttendeesMissing is returned when the participant response has no
	// attendees array.
	ErrAttendeesMissing = errors.New("participant response has no attendees key")

	// ErrMissingField is returned when an attendee object lacks a required field.
	ErrMissingField = errors.New("attendee is missing a required field")

	// ErrBodyTooLarge is returned when a response exceeds the body size limit.
	ErrBodyTooLarge = errors.New("response body too large")

	// ErrInvalidProxyAddress is returned when the proxy address format is invalid.
	// Expected format is "host:port".
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")
)

// StatusError is returned when the portal answers with a non-2xx status.
type StatusError struct {
	// URL is the requested URL.
	URL string

	// StatusCode is the HTTP status code.
	StatusCode int

	// Status is the status line text, e.g. "403 Forbidden".
	Status string
}

// Error implements error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %s from %s", e.Status, e.URL)
}
