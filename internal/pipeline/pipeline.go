package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/zoomreport/internal/calendar"
	"github.com/nao1215/zoomreport/internal/model"
	"github.com/nao1215/zoomreport/internal/zoom"
)

// Source is the portal the generator reads from. *zoom.Client implements it.
type Source interface {
	// ReportURL builds the meeting list URL for one day.
	ReportURL(day calendar.Date, accountID string) (string, error)

	// ParticipantsURL builds the participant list URL for one meeting.
	ParticipantsURL(meetingID, accountID string) (string, error)

	// MeetingIDs fetches and parses a meeting list page.
	MeetingIDs(ctx context.Context, reportURL string) (*zoom.MeetingPage, error)

	// Participants fetches and parses a participant list.
	Participants(ctx context.Context, participantsURL string) ([]model.Attendee, error)
}

// Generator walks a date range day by day and collects the attendees of
// every meeting listed on each day.
type Generator struct {
	// source is the portal client.
	source Source

	// logger is used for structured logging during generation.
	logger *slog.Logger

	// continueOnError records failed days and meetings in the report
	// instead of aborting the whole run.
	continueOnError bool

	// concurrency is the maximum number of participant lists fetched at
	// the same time for one day.
	concurrency int
}

// Option is a function that configures a Generator.
type Option func(*Generator)

// WithLogger sets a custom logger for the generator.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// WithContinueOnError configures the generator to keep going when a day or
// meeting cannot be fetched. Failures are logged and recorded in
// AttendanceReport.Failures.
//
// The default stops at the first error, since an early failure usually
// means the session cookies are no longer valid.
func WithContinueOnError(continueOnError bool) Option {
	return func(g *Generator) {
		g.continueOnError = continueOnError
	}
}

// WithConcurrency sets how many participant lists of one day may be fetched
// at the same time. Values below 1 are ignored. Default is 1.
func WithConcurrency(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.concurrency = n
		}
	}
}

// NewGenerator creates a Generator reading from source.
func NewGenerator(source Source, opts ...Option) *Generator {
	g := &Generator{
		source:      source,
		concurrency: 1,
	}

	for _, opt := range opts {
		opt(g)
	}

	if g.logger == nil {
		g.logger = slog.Default()
	}

	return g
}

// Generate collects attendance for every day of r.
//
// Records are appended in day order, then meeting order as listed on the
// report page, then attendee order as returned by the portal. Unless
// WithContinueOnError is set, the first error aborts generation and no
// report is returned. Context cancellation always aborts.
func (g *Generator) Generate(ctx context.Context, accountID string, r calendar.Range) (*model.AttendanceReport, error) {
	report := model.NewAttendanceReport(accountID, r.From.String(), r.To.String())

	g.logger.Info("generating attendance report",
		"from", r.From.String(),
		"to", r.To.String(),
		"days", r.Len(),
		"concurrency", g.concurrency,
	)

	for _, day := range r.Days() {
		if err := ctx.Err(); err != nil {
			g.logger.Warn("report generation cancelled", "day", day.String(), "reason", err)
			return nil, err
		}

		if err := g.collectDay(ctx, report, day, accountID); err != nil {
			if !g.continueOnError || isCancellation(ctx, err) {
				return nil, err
			}
			g.logger.Error("day failed", "day", day.String(), "error", err)
			report.Failures = append(report.Failures, model.Failure{
				Day:     day.String(),
				Message: err.Error(),
			})
		}
	}

	g.logger.Info("attendance report complete",
		"records", len(report.Records),
		"meetings", report.MeetingCount(),
		"failures", len(report.Failures),
	)

	return report, nil
}

// collectDay scrapes the meeting list of one day and appends the attendees
// of each meeting to report. An error from the meeting list itself is
// returned; meeting-level errors are returned or recorded depending on
// continueOnError.
func (g *Generator) collectDay(ctx context.Context, report *model.AttendanceReport, day calendar.Date, accountID string) error {
	reportURL, err := g.source.ReportURL(day, accountID)
	if err != nil {
		return err
	}

	g.logger.Info("collecting day", "day", day.String())

	page, err := g.source.MeetingIDs(ctx, reportURL)
	if err != nil {
		return fmt.Errorf("failed to list meetings for %s: %w", day, err)
	}

	if page.Truncated() {
		g.logger.Warn("report page lists fewer meetings than the portal reports, only the first page is read",
			"day", day.String(),
			"visible", len(page.IDs),
			"total", page.Total,
		)
	}

	results, err := g.fetchMeetings(ctx, day, page.IDs, accountID)
	if err != nil {
		return err
	}

	report.Days = append(report.Days, model.DayStat{
		Day:          day.String(),
		Meetings:     len(page.IDs),
		TotalRecords: page.Total,
	})

	for i, res := range results {
		if res.err != nil {
			report.Failures = append(report.Failures, model.Failure{
				Day:       day.String(),
				MeetingID: page.IDs[i],
				Message:   res.err.Error(),
			})
			continue
		}
		report.Records = append(report.Records, res.meeting.Attendees...)
	}

	return nil
}

// isCancellation reports whether err was caused by ctx being done.
func isCancellation(ctx context.Context, err error) bool {
	return ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded))
}
