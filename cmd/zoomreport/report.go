package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/zoomreport/internal/config"
	"github.com/nao1215/zoomreport/internal/cookie"
	"github.com/nao1215/zoomreport/internal/database"
	"github.com/nao1215/zoomreport/internal/model"
	"github.com/nao1215/zoomreport/internal/pipeline"
	"github.com/nao1215/zoomreport/internal/report"
	"github.com/nao1215/zoomreport/internal/zoom"
)

// errRecordsOnlyFormat is returned when --records-only is used without --json.
var errRecordsOnlyFormat = errors.New("--records-only requires --json")

// NewReportCmd creates the report command.
func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate an attendance report for a date range",
		Long: `Report walks every day of the selected range, lists the meetings held that
day on the Zoom portal and fetches each meeting's participants.

The range is the current month unless --month/--year or --from/--to is given.
Every generated report is stored in the history database (see 'zoomreport
history') unless --no-db is set.

Examples:
  # Current month, human-readable
  zoomreport report --cookies cookies.txt --account 123456789

  # February 2024 as CSV
  zoomreport report --cookies cookies.txt --account 123456789 --month 2 --year 2024 --csv -o feb.csv

  # One week, four participant lists at a time, keep going on errors
  zoomreport report --from 2024-03-04 --to 2024-03-10 --concurrency 4 --continue-on-error

Configuration file (.zoomreport) example:
  accountId: "123456789"
  cookieFile: cookies.txt
  timeout: 90s`,
		Args: cobra.NoArgs,
		RunE: runReportCmd,
	}

	// Session flags
	cmd.Flags().String("cookies", "",
		"File containing the Cookie header of a logged-in portal session")
	cmd.Flags().StringP("account", "a", "",
		"Zoom account ID whose meetings are reported")
	cmd.Flags().Bool("strict-cookies", false,
		"Fail when the cookie file contains malformed fragments")

	// Range flags
	cmd.Flags().Int("month", 0, "Month to report (1-12, default: current month)")
	cmd.Flags().Int("year", 0, "Year of --month (default: current year)")
	cmd.Flags().String("from", "", "First day of an explicit range (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "Last day of an explicit range (YYYY-MM-DD)")

	// Connection flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each portal request")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy address (host:port)")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent to the portal")
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Number of participant lists fetched at the same time")
	cmd.Flags().Bool("continue-on-error", false,
		"Record failed days and meetings in the report instead of aborting")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .zoomreport in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false, "Output JSON report")
	cmd.Flags().Bool("csv", false, "Output CSV report (one row per attendee record)")
	cmd.Flags().BoolP("markdown", "m", false, "Output Markdown report")
	cmd.Flags().Bool("records-only", false,
		"With --json, output only the attendee records")
	cmd.Flags().Bool("details", false,
		"With the text report, list every day and record")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// History flags
	cmd.Flags().Bool("no-db", false, "Do not store the report in the history database")
	cmd.Flags().String("db-dir", "", "History database directory (default: XDG data directory)")

	return cmd
}

// outputOptions holds presentation flags that do not affect scraping.
type outputOptions struct {
	recordsOnly bool
	details     bool
}

// runReportCmd executes the report command.
func runReportCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	var opts outputOptions
	if opts.recordsOnly, err = cmd.Flags().GetBool("records-only"); err != nil {
		return err
	}
	if opts.details, err = cmd.Flags().GetBool("details"); err != nil {
		return err
	}
	if opts.recordsOnly && !cfg.JSONReport {
		return errRecordsOnlyFormat
	}

	logger, err := setupLogger(cmd)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runReport(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, opts, logger)
}

// buildConfig creates a Config from defaults, the config file, the
// environment and the flags that were set on the command line, in that
// order of precedence.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	if err := config.LoadEnv(); err != nil {
		return nil, err
	}

	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use defaults if no file is found.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		file.Apply(cfg, filepath.Dir(configPath))
	} else if cfg.ConfigFilePath != "" {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	config.ApplyEnv(cfg, os.LookupEnv)

	stringFlags := map[string]*string{
		"cookies":    &cfg.CookieFile,
		"account":    &cfg.AccountID,
		"from":       &cfg.From,
		"to":         &cfg.To,
		"proxy":      &cfg.ProxyAddress,
		"user-agent": &cfg.UserAgent,
		"output":     &cfg.ReportFile,
		"db-dir":     &cfg.DBDir,
	}
	for name, dst := range stringFlags {
		if !flags.Changed(name) {
			continue
		}
		if *dst, err = flags.GetString(name); err != nil {
			return nil, err
		}
	}

	intFlags := map[string]*int{
		"month":       &cfg.Month,
		"year":        &cfg.Year,
		"concurrency": &cfg.Concurrency,
	}
	for name, dst := range intFlags {
		if !flags.Changed(name) {
			continue
		}
		if *dst, err = flags.GetInt(name); err != nil {
			return nil, err
		}
	}

	boolFlags := map[string]*bool{
		"strict-cookies":    &cfg.StrictCookies,
		"continue-on-error": &cfg.ContinueOnError,
		"json":              &cfg.JSONReport,
		"csv":               &cfg.CSVReport,
		"markdown":          &cfg.MarkdownReport,
	}
	for name, dst := range boolFlags {
		if *dst, err = flags.GetBool(name); err != nil {
			return nil, err
		}
	}

	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}

	noDB, err := flags.GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB
	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, nil
}

// runReport loads the session, generates the report, writes it and stores
// it in the history database. Progress goes to status, the report to out
// unless a report file is configured.
func runReport(ctx context.Context, out, status io.Writer, cfg *config.Config, opts outputOptions, logger *slog.Logger) error {
	parsed, err := cookie.LoadFile(cfg.CookieFile)
	if err != nil {
		return err
	}
	if len(parsed.Skipped) > 0 {
		logger.Warn("skipped malformed cookie fragments",
			"file", cfg.CookieFile,
			"count", len(parsed.Skipped),
		)
	}
	if err := parsed.Check(cfg.StrictCookies); err != nil {
		return fmt.Errorf("cookie file %s: %w", cfg.CookieFile, err)
	}
	logger.Debug("session loaded", "file", cfg.CookieFile, "names", parsed.Jar.Names())

	r, err := cfg.Range(time.Now())
	if err != nil {
		return fmt.Errorf("invalid report range: %w", err)
	}

	httpClient, err := zoom.NewHTTPClient(zoom.TransportOptions{
		Timeout:      cfg.Timeout,
		ProxyAddress: cfg.ProxyAddress,
	})
	if err != nil {
		return fmt.Errorf("failed to create HTTP client: %w", err)
	}

	client := zoom.NewClient(httpClient, parsed.Jar,
		zoom.WithReportURL(cfg.ReportURL),
		zoom.WithParticipantsURL(cfg.ParticipantsURL),
		zoom.WithUserAgent(cfg.UserAgent),
		zoom.WithMaxBodySize(cfg.MaxBodySize),
		zoom.WithLogger(logger),
	)

	generator := pipeline.NewGenerator(client,
		pipeline.WithLogger(logger),
		pipeline.WithContinueOnError(cfg.ContinueOnError),
		pipeline.WithConcurrency(cfg.Concurrency),
	)

	fmt.Fprintf(status, "Generating report for account %s, %s (%d days)...\n",
		cfg.AccountID, r, r.Len())
	startTime := time.Now()

	attendance, err := generator.Generate(ctx, cfg.AccountID, r)
	if err != nil {
		return fmt.Errorf("report failed: %w", err)
	}

	fmt.Fprintf(status, "Report completed in %s: %d meetings, %d records\n",
		time.Since(startTime).Round(time.Millisecond), attendance.MeetingCount(), len(attendance.Records))
	if attendance.HasFailures() {
		fmt.Fprintf(status, "Warning: %d day(s) or meeting(s) failed; the report is incomplete\n",
			len(attendance.Failures))
	}

	if err := outputReport(out, cfg, opts, attendance); err != nil {
		return err
	}

	if cfg.SaveToDB {
		id, err := saveReport(ctx, cfg.DBDir, attendance, logger)
		if err != nil {
			// The report is already written; history is best effort.
			logger.Error("failed to save report to history", "error", err)
			fmt.Fprintf(status, "Warning: report not saved to history: %v\n", err)
		} else {
			fmt.Fprintf(status, "Saved to history as report %d\n", id)
		}
	}

	return nil
}

// reportFormat maps the format flags to a report.Format.
func reportFormat(cfg *config.Config) report.Format {
	switch {
	case cfg.JSONReport:
		return report.FormatJSON
	case cfg.CSVReport:
		return report.FormatCSV
	case cfg.MarkdownReport:
		return report.FormatMarkdown
	default:
		return report.FormatText
	}
}

// newReportWriter returns the writer for the configured format.
func newReportWriter(output io.Writer, cfg *config.Config, opts outputOptions) (report.Writer, error) {
	switch format := reportFormat(cfg); {
	case format == report.FormatJSON && opts.recordsOnly:
		return report.NewJSONWriter(output, report.WithPrettyPrint(), report.WithRecordsOnly()), nil
	case format == report.FormatText:
		return report.NewSimpleWriter(output,
			report.WithVerbose(opts.details),
			report.WithShowEmpty(true),
		), nil
	default:
		return report.NewWriter(format, output, getVersion())
	}
}

// outputReport writes the report to the configured file, or to out.
func outputReport(out io.Writer, cfg *config.Config, opts outputOptions, attendance *model.AttendanceReport) error {
	if cfg.ReportFile == "" {
		return writeReport(out, cfg, opts, attendance)
	}

	// Create directories if they don't exist
	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Reports contain attendee names, so they are readable by the owner only
	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	return closeOutput(f, writeReport(f, cfg, opts, attendance))
}

// writeReport renders attendance to output in the configured format.
func writeReport(output io.Writer, cfg *config.Config, opts outputOptions, attendance *model.AttendanceReport) error {
	writer, err := newReportWriter(output, cfg, opts)
	if err != nil {
		return err
	}
	if _, err := writer.Write(attendance); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// closeOutput closes the report file. A close failure means the file is
// incomplete, so it is returned unless writing already failed.
func closeOutput(f io.Closer, writeErr error) error {
	if err := f.Close(); err != nil && writeErr == nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	return writeErr
}

// saveReport stores the report in the history database in dbDir.
func saveReport(ctx context.Context, dbDir string, attendance *model.AttendanceReport, logger *slog.Logger) (int64, error) {
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return 0, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	id, err := db.SaveReport(ctx, attendance)
	if err != nil {
		return 0, err
	}

	logger.Info("report saved to database", "id", id, "path", db.Path())
	return id, nil
}
