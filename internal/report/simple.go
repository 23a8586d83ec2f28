package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/zoomreport/internal/model"
)

// ruleWidth is the width of the separator lines.
const ruleWidth = 70

// SimpleWriter outputs human-readable text reports for terminal display.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with nothing to show are printed.
	showEmpty bool

	// verbose adds the per-day breakdown and every attendee record.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.AttendanceReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writeAttendees(&sb, report)
	w.writeDays(&sb, report)
	w.writeRecords(&sb, report)
	w.writeProblems(&sb, report)
	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

// writeSection writes a section title between separator lines.
func writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n\n")
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.AttendanceReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("                     ZOOM ATTENDANCE REPORT\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Account:    %s\n", report.AccountID)
	fmt.Fprintf(sb, "Range:      %s .. %s\n", report.From, report.To)
	fmt.Fprintf(sb, "Generated:  %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	if report.HasFailures() {
		fmt.Fprintf(sb, "Status:     INCOMPLETE (%d failure(s))\n", len(report.Failures))
	} else {
		sb.WriteString("Status:     Complete\n")
	}
	sb.WriteString("\n")
}

// writeSummary writes the totals section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.AttendanceReport) {
	writeSection(sb, "SUMMARY")

	fmt.Fprintf(sb, "  Days:       %d\n", len(report.Days))
	fmt.Fprintf(sb, "  Meetings:   %d\n", report.MeetingCount())
	fmt.Fprintf(sb, "  Records:    %d\n", len(report.Records))
	fmt.Fprintf(sb, "  Minutes:    %d\n", report.TotalMinutes())
	sb.WriteString("\n")
}

// writeAttendees writes the per-attendee totals.
func (w *SimpleWriter) writeAttendees(sb *strings.Builder, report *model.AttendanceReport) {
	summaries := report.SummarizeByName()
	if len(summaries) == 0 && !w.showEmpty {
		return
	}

	writeSection(sb, "ATTENDEES")

	if len(summaries) == 0 {
		sb.WriteString("  No attendees found\n\n")
		return
	}

	for _, s := range summaries {
		fmt.Fprintf(sb, "  %-40s %4d meeting(s) %6d min\n", s.Name, s.Meetings, s.Minutes)
	}
	sb.WriteString("\n")
}

// writeDays writes the per-day meeting counts in verbose mode.
func (w *SimpleWriter) writeDays(sb *strings.Builder, report *model.AttendanceReport) {
	if !w.verbose {
		return
	}
	if len(report.Days) == 0 && !w.showEmpty {
		return
	}

	writeSection(sb, "DAYS")

	for _, d := range report.Days {
		fmt.Fprintf(sb, "  %s  %3d meeting(s)\n", d.Day, d.Meetings)
	}
	sb.WriteString("\n")
}

// writeRecords writes every attendee record in verbose mode.
func (w *SimpleWriter) writeRecords(sb *strings.Builder, report *model.AttendanceReport) {
	if !w.verbose {
		return
	}
	if len(report.Records) == 0 && !w.showEmpty {
		return
	}

	writeSection(sb, "RECORDS")

	for _, a := range report.Records {
		fmt.Fprintf(sb, "  [%s] %s (%s)\n", a.Day, a.Name, a.ID)
		fmt.Fprintf(sb, "    %s - %s, %d min\n", a.JoinTime, a.LeaveTime, a.Duration)
	}
	sb.WriteString("\n")
}

// writeProblems writes truncated days and failures.
func (w *SimpleWriter) writeProblems(sb *strings.Builder, report *model.AttendanceReport) {
	truncated := report.TruncatedDays()
	if len(truncated) == 0 && !report.HasFailures() {
		return
	}

	writeSection(sb, "WARNINGS")

	for _, d := range truncated {
		fmt.Fprintf(sb, "  [!] %s: only %d of %d meetings were listed on the first page\n",
			d.Day, d.Meetings, d.TotalRecords)
	}
	for _, f := range report.Failures {
		if f.MeetingID != "" {
			fmt.Fprintf(sb, "  [x] %s meeting %s: %s\n", f.Day, f.MeetingID, f.Message)
		} else {
			fmt.Fprintf(sb, "  [x] %s: %s\n", f.Day, f.Message)
		}
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("Report generated by zoomreport\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
}
