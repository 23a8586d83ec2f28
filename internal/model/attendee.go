package model

import (
	"math"
)

// secondsPerMinute converts the portal's second-based durations.
const secondsPerMinute = 60

// Attendee is one person's participation in one meeting.
//
// The JSON keys match the report columns the portal itself shows
// ("Join Time", "Leave Time"), so exported files line up with what users
// see in the browser.
type Attendee struct {
	// ID is the participant identifier assigned by the portal.
	ID string `json:"id"`

	// Name is the display name used in the meeting.
	Name string `json:"name"`

	// Duration is the time spent in the meeting in whole minutes,
	// rounded up from the portal's second-based value.
	Duration int `json:"duration"`

	// JoinTime is the join timestamp exactly as the portal formats it.
	JoinTime string `json:"Join Time"`

	// LeaveTime is the leave timestamp exactly as the portal formats it.
	LeaveTime string `json:"Leave Time"`

	// MeetingID is the meeting the record belongs to.
	MeetingID string `json:"meetingId,omitempty"`

	// Day is the report day (YYYY-MM-DD) on which the meeting was listed.
	Day string `json:"day,omitempty"`
}

// DurationMinutes converts seconds to whole minutes, rounding up.
// 125 seconds is 3 minutes; 120 seconds is exactly 2.
func DurationMinutes(seconds float64) int {
	return int(math.Ceil(seconds / secondsPerMinute))
}

// Meeting groups the attendees fetched for one meeting identifier.
type Meeting struct {
	// ID is the opaque identifier taken from the report table.
	ID string `json:"id"`

	// Day is the report day the meeting was listed under.
	Day string `json:"day"`

	// Attendees are the records in the order the portal returned them.
	Attendees []Attendee `json:"attendees"`
}
