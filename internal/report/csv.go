package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/zoomreport/internal/model"
)

// csvHeader lists the columns in output order. The attendee columns use
// the same names as the JSON keys.
var csvHeader = []string{"id", "name", "duration", "Join Time", "Leave Time", "meetingId", "day"}

// CSVWriter outputs one row per attendee record, for spreadsheets.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the header row followed by every record in report order.
func (w *CSVWriter) Write(report *model.AttendanceReport) (int, error) {
	cw := &countingWriter{w: w.output}
	csvw := csv.NewWriter(cw)

	if err := csvw.Write(csvHeader); err != nil {
		return cw.n, err
	}

	for _, a := range report.Records {
		row := []string{
			escapeFormula(a.ID),
			escapeFormula(a.Name),
			strconv.Itoa(a.Duration),
			escapeFormula(a.JoinTime),
			escapeFormula(a.LeaveTime),
			escapeFormula(a.MeetingID),
			a.Day,
		}
		if err := csvw.Write(row); err != nil {
			return cw.n, err
		}
	}

	csvw.Flush()
	return cw.n, csvw.Error()
}

// escapeFormula prefixes a portal-supplied cell with a single quote when a
// spreadsheet would evaluate it as a formula.
func escapeFormula(cell string) string {
	if cell != "" && strings.ContainsRune("=+-@\t\r", rune(cell[0])) {
		return "'" + cell
	}
	return cell
}
