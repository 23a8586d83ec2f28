package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/zoomreport/internal/model"
)

// maxChartSlices limits the attendees shown in the minutes pie chart.
const maxChartSlices = 10

// MarkdownWriter outputs reports in Markdown format for documentation and
// sharing, using the nao1215/markdown builder.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.AttendanceReport) (int, error) {
	cw := &countingWriter{w: w.output}
	md := markdown.NewMarkdown(cw)

	w.writeHeader(md, report)
	w.writeAlert(md, report)
	w.writeAttendees(md, report)
	w.writeDays(md, report)
	w.writeRecords(md, report)
	w.writeFailures(md, report)
	w.writeFooter(md)

	err := md.Build()
	return cw.n, err
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.AttendanceReport) {
	md.H1("Zoom Attendance Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Account", "`" + report.AccountID + "`"},
			{"Range", report.From + " .. " + report.To},
			{"Generated", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Meetings", strconv.Itoa(report.MeetingCount())},
			{"Records", strconv.Itoa(len(report.Records))},
			{"Total Minutes", strconv.Itoa(report.TotalMinutes())},
		},
	})
	md.PlainText("")
}

// writeAlert writes an alert describing how complete the report is.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.AttendanceReport) {
	truncated := report.TruncatedDays()
	switch {
	case report.HasFailures():
		md.Cautionf("%d day(s) or meeting(s) could not be fetched. The report is incomplete.", len(report.Failures))
	case len(truncated) > 0:
		md.Warningf("%d day(s) list more meetings than the first report page shows. Only the first page was read.", len(truncated))
	case len(report.Records) == 0:
		md.Note("No attendance records were found in this range.")
	default:
		md.Tip("All listed meetings were fetched.")
	}
	md.PlainText("")
}

// writeAttendees writes the per-attendee totals and a minutes chart.
func (w *MarkdownWriter) writeAttendees(md *markdown.Markdown, report *model.AttendanceReport) {
	md.H2("Attendees")
	md.PlainText("")

	summaries := report.SummarizeByName()
	if len(summaries) == 0 {
		md.PlainText("No attendees found.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(summaries))
	for i, s := range summaries {
		rows[i] = []string{escapeCell(s.Name), strconv.Itoa(s.Meetings), strconv.Itoa(s.Minutes)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Name", "Meetings", "Minutes"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writePieChart(md, summaries)
}

// writePieChart writes a mermaid pie chart of minutes per attendee.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, summaries []model.AttendeeSummary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Minutes by Attendee"),
		piechart.WithShowData(true),
	)

	slices := 0
	for _, s := range summaries {
		if slices == maxChartSlices {
			break
		}
		if s.Minutes <= 0 {
			continue
		}
		chart.LabelAndIntValue(strings.ReplaceAll(s.Name, `"`, "'"), uint64(s.Minutes))
		slices++
	}
	if slices == 0 {
		return
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeDays writes the per-day meeting counts.
func (w *MarkdownWriter) writeDays(md *markdown.Markdown, report *model.AttendanceReport) {
	if len(report.Days) == 0 {
		return
	}

	md.H2("Days")
	md.PlainText("")

	rows := make([][]string, 0, len(report.Days))
	for _, d := range report.Days {
		if d.Meetings == 0 && d.TotalRecords == 0 {
			continue
		}
		rows = append(rows, []string{d.Day, strconv.Itoa(d.Meetings), strconv.Itoa(d.TotalRecords)})
	}
	if len(rows) == 0 {
		md.PlainText("No meetings were held in this range.")
		md.PlainText("")
		return
	}

	md.Table(markdown.TableSet{
		Header: []string{"Day", "Meetings Read", "Meetings Listed"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeRecords writes every attendee record inside a collapsible block.
func (w *MarkdownWriter) writeRecords(md *markdown.Markdown, report *model.AttendanceReport) {
	if len(report.Records) == 0 {
		return
	}

	md.H2("Records")
	md.PlainText("")

	rows := make([][]string, len(report.Records))
	for i, a := range report.Records {
		rows[i] = []string{a.Day, escapeCell(a.Name), strconv.Itoa(a.Duration), a.JoinTime, a.LeaveTime}
	}

	table := markdown.NewMarkdown(io.Discard)
	table.Table(markdown.TableSet{
		Header: []string{"Day", "Name", "Minutes", "Join Time", "Leave Time"},
		Rows:   rows,
	})
	md.Details(strconv.Itoa(len(rows))+" records", "\n"+table.String())
	md.PlainText("")
}

// writeFailures writes the failures recorded in continue-on-error mode.
func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, report *model.AttendanceReport) {
	if !report.HasFailures() {
		return
	}

	md.H2("Failures")
	md.PlainText("")

	rows := make([][]string, len(report.Failures))
	for i, f := range report.Failures {
		meeting := f.MeetingID
		if meeting == "" {
			meeting = "-"
		}
		rows[i] = []string{f.Day, escapeCell(meeting), escapeCell(f.Message)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Day", "Meeting", "Error"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by zoomreport*")
}

// escapeCell keeps a value from splitting a table row.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
