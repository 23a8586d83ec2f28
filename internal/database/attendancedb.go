package database

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/sha3"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/zoomreport/internal/model"
)

// FileName is the name of the database file inside the database directory.
const FileName = "zoomreport.db"

// ErrReportNotFound is returned when no stored report has the requested ID.
var ErrReportNotFound = errors.New("report not found")

// AttendanceDB provides SQLite-based storage for generated attendance
// reports and the attendee records they contain.
type AttendanceDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures AttendanceDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates an AttendanceDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*AttendanceDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (run a report first)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file; mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	adb := &AttendanceDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := adb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return adb, nil
}

// Path returns the path of the database file.
func (adb *AttendanceDB) Path() string {
	return adb.dbPath
}

// Close closes the database connection.
func (adb *AttendanceDB) Close() error {
	return adb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (adb *AttendanceDB) createTables() error {
	schema := `
	-- Reports store every generated report as JSON plus summary columns
	CREATE TABLE IF NOT EXISTS reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		account_id TEXT NOT NULL,
		range_from TEXT NOT NULL,
		range_to TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		meeting_count INTEGER NOT NULL,
		record_count INTEGER NOT NULL,
		total_minutes INTEGER NOT NULL,
		failure_count INTEGER NOT NULL,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_account ON reports(account_id);
	CREATE INDEX IF NOT EXISTS idx_reports_timestamp ON reports(timestamp);

	-- Attendance holds one row per attendee record across all runs.
	-- The fingerprint makes re-running a range update rows instead of
	-- duplicating them.
	CREATE TABLE IF NOT EXISTS attendance (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		fingerprint TEXT NOT NULL UNIQUE,
		report_id INTEGER NOT NULL REFERENCES reports(id),
		account_id TEXT NOT NULL,
		day TEXT NOT NULL,
		meeting_id TEXT NOT NULL,
		attendee_id TEXT NOT NULL,
		name TEXT NOT NULL,
		duration INTEGER NOT NULL,
		join_time TEXT NOT NULL,
		leave_time TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_attendance_account_day ON attendance(account_id, day);
	CREATE INDEX IF NOT EXISTS idx_attendance_name ON attendance(name);
	`

	_, err := adb.db.ExecContext(context.Background(), schema)
	return err
}

// Fingerprint identifies an attendee record independently of the run that
// fetched it. It is the hex SHA3-256 of the account, day, meeting, attendee
// and join/leave times.
func Fingerprint(accountID string, a model.Attendee) string {
	parts := []string{accountID, a.Day, a.MeetingID, a.ID, a.JoinTime, a.LeaveTime}
	sum := sha3.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:])
}

// SaveReport stores report and upserts its attendee records in a single
// transaction. It returns the ID of the new report row.
func (adb *AttendanceDB) SaveReport(ctx context.Context, report *model.AttendanceReport) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	tx, err := adb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // no-op after commit
	}()

	res, err := tx.ExecContext(ctx, `
	INSERT INTO reports (account_id, range_from, range_to, meeting_count, record_count, total_minutes, failure_count, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		report.AccountID,
		report.From,
		report.To,
		report.MeetingCount(),
		len(report.Records),
		report.TotalMinutes(),
		len(report.Failures),
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save report: %w", err)
	}

	reportID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get report id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO attendance (fingerprint, report_id, account_id, day, meeting_id, attendee_id, name, duration, join_time, leave_time)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(fingerprint) DO UPDATE SET
		report_id = excluded.report_id,
		name = excluded.name,
		duration = excluded.duration
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare attendance insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range report.Records {
		if _, err := stmt.ExecContext(ctx,
			Fingerprint(report.AccountID, a),
			reportID,
			report.AccountID,
			a.Day,
			a.MeetingID,
			a.ID,
			a.Name,
			a.Duration,
			a.JoinTime,
			a.LeaveTime,
		); err != nil {
			return 0, fmt.Errorf("failed to save attendee %s: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit report: %w", err)
	}

	return reportID, nil
}

// ReportMetadata contains summary information about a stored report.
// This is used for listing history without loading the full report.
type ReportMetadata struct {
	ID           int64     `json:"id"`
	AccountID    string    `json:"accountId"`
	From         string    `json:"from"`
	To           string    `json:"to"`
	Timestamp    time.Time `json:"timestamp"`
	Meetings     int       `json:"meetings"`
	Records      int       `json:"records"`
	TotalMinutes int       `json:"totalMinutes"`
	Failures     int       `json:"failures"`
}

// ListReports returns metadata of all stored reports, newest first.
// An empty accountID lists every account.
func (adb *AttendanceDB) ListReports(ctx context.Context, accountID string) ([]ReportMetadata, error) {
	query := `
	SELECT id, account_id, range_from, range_to, timestamp, meeting_count, record_count, total_minutes, failure_count
	FROM reports
	WHERE (? = '' OR account_id = ?)
	ORDER BY timestamp DESC, id DESC
	`

	rows, err := adb.db.QueryContext(ctx, query, accountID, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	results := make([]ReportMetadata, 0)
	for rows.Next() {
		var meta ReportMetadata
		var timestamp string

		if err := rows.Scan(
			&meta.ID, &meta.AccountID, &meta.From, &meta.To, &timestamp,
			&meta.Meetings, &meta.Records, &meta.TotalMinutes, &meta.Failures,
		); err != nil {
			return nil, fmt.Errorf("failed to scan report metadata: %w", err)
		}

		meta.Timestamp = parseTimestamp(timestamp)
		results = append(results, meta)
	}

	return results, rows.Err()
}

// GetReport retrieves a stored report by its database ID.
func (adb *AttendanceDB) GetReport(ctx context.Context, id int64) (*model.AttendanceReport, error) {
	var reportJSON string
	err := adb.db.QueryRowContext(ctx, `SELECT report_json FROM reports WHERE id = ?`, id).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrReportNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	var report model.AttendanceReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// AttendeeTotals aggregates every stored attendee record of accountID
// whose day lies in [from, to] (YYYY-MM-DD, inclusive). Empty bounds are
// open. Results are ordered by total minutes descending, then by name.
func (adb *AttendanceDB) AttendeeTotals(ctx context.Context, accountID, from, to string) ([]model.AttendeeSummary, error) {
	query := `
	SELECT name, COUNT(DISTINCT meeting_id), SUM(duration)
	FROM attendance
	WHERE account_id = ?
		AND (? = '' OR day >= ?)
		AND (? = '' OR day <= ?)
	GROUP BY name
	ORDER BY SUM(duration) DESC, name ASC
	`

	rows, err := adb.db.QueryContext(ctx, query, accountID, from, from, to, to)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate attendance: %w", err)
	}
	defer rows.Close()

	totals := make([]model.AttendeeSummary, 0)
	for rows.Next() {
		var s model.AttendeeSummary
		if err := rows.Scan(&s.Name, &s.Meetings, &s.Minutes); err != nil {
			return nil, fmt.Errorf("failed to scan attendance totals: %w", err)
		}
		totals = append(totals, s)
	}

	return totals, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
