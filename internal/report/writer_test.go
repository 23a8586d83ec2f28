package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/zoomreport/internal/model"
)

// createTestReport creates a report with sample data for testing.
func createTestReport() *model.AttendanceReport {
	report := model.NewAttendanceReport("acct-1", "2024-03-01", "2024-03-02")
	report.GeneratedAt = time.Date(2024, time.March, 3, 9, 0, 0, 0, time.UTC)
	report.Days = []model.DayStat{
		{Day: "2024-03-01", Meetings: 1, TotalRecords: 1},
		{Day: "2024-03-02", Meetings: 1, TotalRecords: 3},
	}
	report.Records = []model.Attendee{
		{ID: "u1", Name: "Alice", Duration: 30, JoinTime: "09:00", LeaveTime: "09:30", MeetingID: "m1", Day: "2024-03-01"},
		{ID: "u2", Name: "Bob, Jr.", Duration: 10, JoinTime: "09:05", LeaveTime: "09:15", MeetingID: "m1", Day: "2024-03-01"},
		{ID: "u1", Name: "Alice", Duration: 45, JoinTime: "10:00", LeaveTime: "10:45", MeetingID: "m2", Day: "2024-03-02"},
	}
	return report
}

// TestSimpleWriter tests the human-readable report writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header and summary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewSimpleWriter(&buf).Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("expected %d bytes reported, got %d", buf.Len(), n)
		}

		output := buf.String()
		for _, want := range []string{
			"ZOOM ATTENDANCE REPORT",
			"acct-1",
			"2024-03-01 .. 2024-03-02",
			"Status:     Complete",
			"Records:    3",
			"Minutes:    85",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("lists attendees by total minutes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		alice := strings.Index(output, "Alice")
		bob := strings.Index(output, "Bob, Jr.")
		if alice < 0 || bob < 0 || alice > bob {
			t.Errorf("expected Alice before Bob in attendee list:\n%s", output)
		}
	})

	t.Run("warns about truncated days and failures", func(t *testing.T) {
		t.Parallel()

		report := createTestReport()
		report.Failures = append(report.Failures, model.Failure{Day: "2024-03-02", MeetingID: "m3", Message: "boom"})

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "only 1 of 3 meetings") {
			t.Error("expected truncation warning")
		}
		if !strings.Contains(output, "meeting m3: boom") {
			t.Error("expected failure line")
		}
		if !strings.Contains(output, "INCOMPLETE") {
			t.Error("expected incomplete status")
		}
	})

	t.Run("verbose adds records", func(t *testing.T) {
		t.Parallel()

		var quiet, verbose bytes.Buffer
		if _, err := NewSimpleWriter(&quiet).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := NewSimpleWriter(&verbose, WithVerbose(true)).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if strings.Contains(quiet.String(), "RECORDS") {
			t.Error("expected no records section without verbose")
		}
		if !strings.Contains(verbose.String(), "RECORDS") || !strings.Contains(verbose.String(), "10:00 - 10:45, 45 min") {
			t.Error("expected records section with verbose")
		}
	})

	t.Run("show empty prints empty attendee section", func(t *testing.T) {
		t.Parallel()

		empty := model.NewAttendanceReport("a", "2024-03-01", "2024-03-01")

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithShowEmpty(true)).Write(empty); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "No attendees found") {
			t.Error("expected empty attendee section")
		}
	})
}

// TestJSONWriter tests the JSON report writers.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes compact report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded model.AttendanceReport
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded.AccountID != "acct-1" || len(decoded.Records) != 3 {
			t.Errorf("unexpected report: %+v", decoded)
		}
		if strings.Contains(buf.String(), "\n  ") {
			t.Error("expected compact output")
		}
	})

	t.Run("records only uses portal column names", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithRecordsOnly()).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var records []map[string]any
		if err := json.Unmarshal(buf.Bytes(), &records); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("expected 3 records, got %d", len(records))
		}
		for _, key := range []string{"id", "name", "duration", "Join Time", "Leave Time"} {
			if _, ok := records[0][key]; !ok {
				t.Errorf("expected key %q in record", key)
			}
		}
	})

	t.Run("full writer wraps with version and summary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewFullJSONWriter(&buf, "v1.2.3", WithPrettyPrint()).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded JSONReport
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded.Version != "v1.2.3" {
			t.Errorf("expected version v1.2.3, got %q", decoded.Version)
		}
		if len(decoded.Summary) != 2 || decoded.Summary[0].Name != "Alice" || decoded.Summary[0].Minutes != 75 {
			t.Errorf("unexpected summary: %+v", decoded.Summary)
		}
		if !strings.Contains(buf.String(), "\n  \"version\"") {
			t.Error("expected indented output")
		}
	})
}

// TestCSVWriter tests the CSV report writer.
func TestCSVWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n, err := NewCSVWriter(&buf).Write(createTestReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != buf.Len() {
		t.Errorf("expected %d bytes reported, got %d", buf.Len(), n)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d", len(rows))
	}
	if strings.Join(rows[0], ",") != "id,name,duration,Join Time,Leave Time,meetingId,day" {
		t.Errorf("unexpected header: %v", rows[0])
	}
	if rows[2][1] != "Bob, Jr." {
		t.Errorf("expected quoted name to round trip, got %q", rows[2][1])
	}
	if rows[3][2] != "45" || rows[3][6] != "2024-03-02" {
		t.Errorf("unexpected last row: %v", rows[3])
	}
}

// TestCSVWriterEscapesFormulas tests that cells a spreadsheet would
// evaluate are written as text.
func TestCSVWriterEscapesFormulas(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want string
	}{
		{name: "=HYPERLINK(\"http://x\")", want: "'=HYPERLINK(\"http://x\")"},
		{name: "+1 555", want: "'+1 555"},
		{name: "-2+3", want: "'-2+3"},
		{name: "@SUM(A1)", want: "'@SUM(A1)"},
		{name: "\tTab", want: "'\tTab"},
		{name: "Alice", want: "Alice"},
		{name: "Mary-Jane", want: "Mary-Jane"},
		{name: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rep := createTestReport()
			rep.Records = []model.Attendee{{ID: "u1", Name: tt.name, Duration: 1, MeetingID: "m1", Day: "2024-03-01"}}

			var buf bytes.Buffer
			if _, err := NewCSVWriter(&buf).Write(rep); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			rows, err := csv.NewReader(&buf).ReadAll()
			if err != nil {
				t.Fatalf("invalid CSV: %v", err)
			}
			if len(rows) != 2 {
				t.Fatalf("expected header plus 1 row, got %d", len(rows))
			}
			if rows[1][1] != tt.want {
				t.Errorf("expected name cell %q, got %q", tt.want, rows[1][1])
			}
		})
	}
}

// TestMarkdownWriter tests the Markdown report writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes tables and chart", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewMarkdownWriter(&buf).Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("expected %d bytes reported, got %d", buf.Len(), n)
		}

		output := buf.String()
		for _, want := range []string{
			"# Zoom Attendance Report",
			"## Attendees",
			"| Alice | 2 | 75 |",
			"```mermaid",
			"Minutes by Attendee",
			"<details><summary>3 records</summary>",
			"[!WARNING]",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q\n%s", want, output)
			}
		}
	})

	t.Run("escapes pipes and lists failures", func(t *testing.T) {
		t.Parallel()

		report := createTestReport()
		report.Records[0].Name = "A|B"
		report.Failures = append(report.Failures, model.Failure{Day: "2024-03-02", Message: "status 500"})

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, `A\|B`) {
			t.Error("expected pipe to be escaped")
		}
		if !strings.Contains(output, "## Failures") || !strings.Contains(output, "[!CAUTION]") {
			t.Error("expected failure section and caution alert")
		}
	})

	t.Run("empty report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		empty := model.NewAttendanceReport("a", "2024-03-01", "2024-03-01")
		if _, err := NewMarkdownWriter(&buf).Write(empty); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "No attendees found.") {
			t.Error("expected empty attendee notice")
		}
		if strings.Contains(buf.String(), "```mermaid") {
			t.Error("expected no chart for empty report")
		}
	})
}

// TestNewWriter tests writer selection by format.
func TestNewWriter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format Format
		want   string
	}{
		{FormatText, "ZOOM ATTENDANCE REPORT"},
		{"", "ZOOM ATTENDANCE REPORT"},
		{FormatJSON, `"version": "dev"`},
		{FormatCSV, "id,name,duration"},
		{FormatMarkdown, "# Zoom Attendance Report"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			w, err := NewWriter(tt.format, &buf, "dev")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if _, err := w.Write(createTestReport()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("expected output to contain %q", tt.want)
			}
		})
	}

	t.Run("unknown format", func(t *testing.T) {
		t.Parallel()

		if _, err := NewWriter("xml", &bytes.Buffer{}, "dev"); !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("expected ErrUnknownFormat, got %v", err)
		}
	})
}
