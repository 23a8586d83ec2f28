package model

import (
	"sort"
	"time"
)

// AttendanceReport is the result of scraping every meeting in a date range.
type AttendanceReport struct {
	// AccountID is the account the report was generated for.
	AccountID string `json:"accountId"`

	// From and To are the inclusive report days (YYYY-MM-DD).
	From string `json:"from"`
	To   string `json:"to"`

	// GeneratedAt is when report generation started.
	GeneratedAt time.Time `json:"generatedAt"`

	// Records are all attendee records in day, meeting, attendee order.
	Records []Attendee `json:"records"`

	// Days holds per-day meeting statistics in ascending day order.
	Days []DayStat `json:"days"`

	// Failures lists days or meetings that could not be fetched.
	// It is only populated when generation continues past errors.
	Failures []Failure `json:"failures,omitempty"`
}

// DayStat summarizes a single report day.
type DayStat struct {
	// Day is the report day (YYYY-MM-DD).
	Day string `json:"day"`

	// Meetings is the number of meeting IDs visible on the report page.
	Meetings int `json:"meetings"`

	// TotalRecords is the count the page claims, which may exceed
	// Meetings when results span several pages.
	TotalRecords int `json:"totalRecords"`
}

// Failure describes a day or meeting that could not be fetched.
type Failure struct {
	Day       string `json:"day"`
	MeetingID string `json:"meetingId,omitempty"`
	Message   string `json:"message"`
}

// NewAttendanceReport creates an empty report for the given account and range.
func NewAttendanceReport(accountID, from, to string) *AttendanceReport {
	return &AttendanceReport{
		AccountID:   accountID,
		From:        from,
		To:          to,
		GeneratedAt: time.Now(),
		Records:     make([]Attendee, 0),
		Days:        make([]DayStat, 0),
		Failures:    make([]Failure, 0),
	}
}

// MeetingCount returns the number of meetings found across all days.
func (r *AttendanceReport) MeetingCount() int {
	total := 0
	for _, d := range r.Days {
		total += d.Meetings
	}
	return total
}

// TotalMinutes returns the sum of all attendee durations.
func (r *AttendanceReport) TotalMinutes() int {
	total := 0
	for _, a := range r.Records {
		total += a.Duration
	}
	return total
}

// HasFailures reports whether any day or meeting failed.
func (r *AttendanceReport) HasFailures() bool {
	return len(r.Failures) > 0
}

// TruncatedDays returns the days whose total record count exceeds the
// number of meetings visible on the first page.
func (r *AttendanceReport) TruncatedDays() []DayStat {
	truncated := make([]DayStat, 0)
	for _, d := range r.Days {
		if d.TotalRecords > d.Meetings {
			truncated = append(truncated, d)
		}
	}
	return truncated
}

// AttendeeSummary aggregates one attendee's participation across meetings.
type AttendeeSummary struct {
	Name     string `json:"name"`
	Meetings int    `json:"meetings"`
	Minutes  int    `json:"minutes"`
}

// SummarizeByName aggregates records per attendee name, ordered by total
// minutes descending, then by name.
func (r *AttendanceReport) SummarizeByName() []AttendeeSummary {
	index := make(map[string]*AttendeeSummary)
	for _, a := range r.Records {
		s, ok := index[a.Name]
		if !ok {
			s = &AttendeeSummary{Name: a.Name}
			index[a.Name] = s
		}
		s.Meetings++
		s.Minutes += a.Duration
	}

	summaries := make([]AttendeeSummary, 0, len(index))
	for _, s := range index {
		summaries = append(summaries, *s)
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Minutes != summaries[j].Minutes {
			return summaries[i].Minutes > summaries[j].Minutes
		}
		return summaries[i].Name < summaries[j].Name
	})
	return summaries
}
