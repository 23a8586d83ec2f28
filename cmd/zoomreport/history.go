package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/zoomreport/internal/calendar"
	"github.com/nao1215/zoomreport/internal/config"
	"github.com/nao1215/zoomreport/internal/database"
	"github.com/nao1215/zoomreport/internal/report"
)

var (
	// errHistoryModes is returned when more than one history mode is selected.
	errHistoryModes = errors.New("--list, --id and --totals are mutually exclusive")

	// errHistoryFormat is returned when --csv or --markdown is used without --id.
	errHistoryFormat = errors.New("--csv and --markdown require --id")
)

// NewHistoryCmd creates the history command.
// This command reads reports stored by 'zoomreport report'.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show previously generated reports",
		Long: `History reads the reports stored in the history database by 'zoomreport report'.

Without flags it lists the stored reports, newest first. Attendee records are
stored once per account, day, meeting and join time, so running the same
range twice does not double count in --totals.

Examples:
  # List all stored reports
  zoomreport history

  # List reports of one account
  zoomreport history --account 123456789

  # Print stored report 3 again, as Markdown
  zoomreport history --id 3 --markdown

  # Minutes per attendee across every stored run in March 2024
  zoomreport history --totals --account 123456789 --from 2024-03-01 --to 2024-03-31`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("list", "l", false, "List stored reports (default)")
	cmd.Flags().Int64P("id", "i", 0, "Print the stored report with this ID")
	cmd.Flags().Bool("totals", false, "Print minutes per attendee across all stored reports")

	cmd.Flags().StringP("account", "a", "", "Only reports of this account (required with --totals)")
	cmd.Flags().String("from", "", "With --totals, first day to include (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "With --totals, last day to include (YYYY-MM-DD)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false, "Output JSON")
	cmd.Flags().Bool("csv", false, "With --id, output CSV")
	cmd.Flags().BoolP("markdown", "m", false, "With --id, output Markdown")

	cmd.Flags().String("db-dir", "", "History database directory (default: XDG data directory)")

	return cmd
}

// historyOptions holds the parsed history flags.
type historyOptions struct {
	id        int64
	totals    bool
	accountID string
	from      string
	to        string
	format    report.Format
	dbDir     string
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	opts, err := parseHistoryFlags(cmd)
	if err != nil {
		return err
	}

	// Open the existing database only; history never creates one
	db, err := database.Open(opts.dbDir, database.Options{CreateIfNotExists: false})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	switch {
	case opts.id > 0:
		return showStoredReport(ctx, out, db, opts)
	case opts.totals:
		return showAttendeeTotals(ctx, out, db, opts)
	default:
		return listStoredReports(ctx, out, db, opts)
	}
}

// parseHistoryFlags reads and validates the history flags.
// Validation happens before the database is opened.
func parseHistoryFlags(cmd *cobra.Command) (*historyOptions, error) {
	flags := cmd.Flags()
	opts := &historyOptions{
		format: report.FormatText,
		dbDir:  config.XDGDataDir(),
	}

	list, err := flags.GetBool("list")
	if err != nil {
		return nil, err
	}
	if opts.id, err = flags.GetInt64("id"); err != nil {
		return nil, err
	}
	if opts.totals, err = flags.GetBool("totals"); err != nil {
		return nil, err
	}
	if opts.accountID, err = flags.GetString("account"); err != nil {
		return nil, err
	}
	if opts.from, err = flags.GetString("from"); err != nil {
		return nil, err
	}
	if opts.to, err = flags.GetString("to"); err != nil {
		return nil, err
	}
	if flags.Changed("db-dir") {
		if opts.dbDir, err = flags.GetString("db-dir"); err != nil {
			return nil, err
		}
	}

	modes := 0
	for _, set := range []bool{list, opts.id > 0, opts.totals} {
		if set {
			modes++
		}
	}
	if modes > 1 {
		return nil, errHistoryModes
	}
	if opts.totals && opts.accountID == "" {
		return nil, config.ErrNoAccountID
	}
	for _, day := range []string{opts.from, opts.to} {
		if day == "" {
			continue
		}
		if _, err := calendar.ParseDate(day); err != nil {
			return nil, err
		}
	}

	formats := 0
	for name, format := range map[string]report.Format{
		"json":     report.FormatJSON,
		"csv":      report.FormatCSV,
		"markdown": report.FormatMarkdown,
	} {
		set, err := flags.GetBool(name)
		if err != nil {
			return nil, err
		}
		if set {
			opts.format = format
			formats++
		}
	}
	if formats > 1 {
		return nil, config.ErrConflictingReportFormats
	}
	if opts.id == 0 && (opts.format == report.FormatCSV || opts.format == report.FormatMarkdown) {
		return nil, errHistoryFormat
	}

	return opts, nil
}

// showStoredReport prints one stored report in the selected format.
func showStoredReport(ctx context.Context, out io.Writer, db *database.AttendanceDB, opts *historyOptions) error {
	stored, err := db.GetReport(ctx, opts.id)
	if err != nil {
		return err
	}

	writer, err := report.NewWriter(opts.format, out, getVersion())
	if err != nil {
		return err
	}
	_, err = writer.Write(stored)
	return err
}

// listStoredReports prints the metadata of stored reports, newest first.
func listStoredReports(ctx context.Context, out io.Writer, db *database.AttendanceDB, opts *historyOptions) error {
	metas, err := db.ListReports(ctx, opts.accountID)
	if err != nil {
		return err
	}

	if opts.format == report.FormatJSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(metas)
	}

	if len(metas) == 0 {
		fmt.Fprintln(out, "No stored reports found.")
		fmt.Fprintln(out, "\nUse 'zoomreport report' to generate one.")
		return nil
	}

	fmt.Fprintf(out, "Stored reports (%d):\n\n", len(metas))
	fmt.Fprintf(out, "  %-6s  %-20s  %-14s  %-24s  %8s  %8s  %8s  %s\n",
		"ID", "Date", "Account", "Range", "Meetings", "Records", "Minutes", "Status")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 108))

	for _, meta := range metas {
		status := "complete"
		if meta.Failures > 0 {
			status = fmt.Sprintf("%d failure(s)", meta.Failures)
		}
		fmt.Fprintf(out, "  %-6d  %-20s  %-14s  %-24s  %8d  %8d  %8d  %s\n",
			meta.ID,
			meta.Timestamp.Format("2006-01-02 15:04:05"),
			meta.AccountID,
			meta.From+" .. "+meta.To,
			meta.Meetings,
			meta.Records,
			meta.TotalMinutes,
			status,
		)
	}

	fmt.Fprintln(out, "\nUse 'zoomreport history --id <id>' to print a stored report.")
	return nil
}

// showAttendeeTotals prints minutes per attendee across stored reports.
func showAttendeeTotals(ctx context.Context, out io.Writer, db *database.AttendanceDB, opts *historyOptions) error {
	totals, err := db.AttendeeTotals(ctx, opts.accountID, opts.from, opts.to)
	if err != nil {
		return err
	}

	if opts.format == report.FormatJSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(totals)
	}

	if len(totals) == 0 {
		fmt.Fprintf(out, "No attendance stored for account %s\n", opts.accountID)
		return nil
	}

	span := "all stored days"
	if opts.from != "" || opts.to != "" {
		span = fmt.Sprintf("%s .. %s", orOpen(opts.from), orOpen(opts.to))
	}
	fmt.Fprintf(out, "Attendance of account %s, %s:\n\n", opts.accountID, span)
	fmt.Fprintf(out, "  %-32s  %8s  %8s\n", "Name", "Meetings", "Minutes")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 52))
	for _, s := range totals {
		fmt.Fprintf(out, "  %-32s  %8d  %8d\n", s.Name, s.Meetings, s.Minutes)
	}

	return nil
}

// orOpen renders an empty range bound.
func orOpen(day string) string {
	if day == "" {
		return "*"
	}
	return day
}
