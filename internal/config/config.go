package config

import (
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/zoomreport/internal/calendar"
	"github.com/nao1215/zoomreport/internal/zoom"
)

// Default configuration values.
const (
	// DefaultReportURL is the portal page that lists meetings for a range.
	DefaultReportURL = zoom.DefaultReportURL

	// DefaultParticipantsURL is the JSON endpoint listing one meeting's
	// participants.
	DefaultParticipantsURL = zoom.DefaultParticipantsURL

	// DefaultTimeout bounds each portal request. Report pages for busy
	// accounts can take a while to render, so this is generous.
	DefaultTimeout = 60 * time.Second

	// DefaultConcurrency fetches participant lists one at a time.
	DefaultConcurrency = 1

	// DefaultUserAgent is sent with every request.
	DefaultUserAgent = zoom.DefaultUserAgent

	// DefaultMaxBodySize limits the response body size read per request.
	DefaultMaxBodySize = zoom.DefaultMaxBodySize

	// AppName is the application name used for XDG directory paths.
	AppName = "zoomreport"
)

// Config holds all configuration options for zoomreport.
// It is populated from defaults, the config file, the environment and CLI
// flags, in increasing order of precedence, and passed down explicitly.
type Config struct {
	// ReportURL is the meeting list endpoint.
	ReportURL string

	// ParticipantsURL is the participant list endpoint.
	ParticipantsURL string

	// AccountID is the portal account whose meetings are reported.
	AccountID string

	// CookieFile is the path to the captured Cookie header.
	CookieFile string

	// StrictCookies fails the run when the cookie file contains fragments
	// that are not "name=value" pairs. Otherwise they are skipped with a
	// warning.
	StrictCookies bool

	// Month and Year select a whole month. Zero means the current one.
	Month int
	Year  int

	// From and To select an explicit inclusive range (YYYY-MM-DD).
	// They take the place of Month and Year and must be set together.
	From string
	To   string

	// Timeout is the overall timeout of each HTTP request.
	Timeout time.Duration

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" format.
	ProxyAddress string

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// Concurrency is how many participant lists of one day are fetched
	// at the same time.
	Concurrency int

	// ContinueOnError records failed days and meetings instead of aborting.
	ContinueOnError bool

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, .zoomreport is searched in the current and home directories.
	ConfigFilePath string

	// JSONReport, CSVReport and MarkdownReport select the output format.
	// At most one may be set; none means the human-readable report.
	JSONReport     bool
	CSVReport      bool
	MarkdownReport bool

	// ReportFile is the output file path. Empty means stdout.
	ReportFile string

	// DBDir is the directory of the SQLite history database.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB stores generated reports in the history database.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		ReportURL:       DefaultReportURL,
		ParticipantsURL: DefaultParticipantsURL,
		Timeout:         DefaultTimeout,
		UserAgent:       DefaultUserAgent,
		MaxBodySize:     DefaultMaxBodySize,
		Concurrency:     DefaultConcurrency,
		DBDir:           XDGDataDir(),
		SaveToDB:        true,
	}
}

// XDGDataDir returns the XDG data directory for zoomreport.
// On Linux: ~/.local/share/zoomreport
// On macOS: ~/Library/Application Support/zoomreport
// On Windows: %LOCALAPPDATA%\zoomreport
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for zoomreport.
// It is the last place FindConfigFile looks.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found as a sentinel error.
func (c *Config) Validate() error {
	if c.AccountID == "" {
		return ErrNoAccountID
	}

	if c.CookieFile == "" {
		return ErrNoCookieFile
	}

	if !isHTTPURL(c.ReportURL) || !isHTTPURL(c.ParticipantsURL) {
		return ErrInvalidEndpoint
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	formats := 0
	for _, set := range []bool{c.JSONReport, c.CSVReport, c.MarkdownReport} {
		if set {
			formats++
		}
	}
	if formats > 1 {
		return ErrConflictingReportFormats
	}

	if c.Month < 0 || c.Month > 12 {
		return ErrInvalidMonth
	}

	if c.Year < 0 {
		return ErrInvalidYear
	}

	if (c.From == "") != (c.To == "") {
		return ErrIncompleteRange
	}

	if c.From != "" && (c.Month != 0 || c.Year != 0) {
		return ErrConflictingRange
	}

	return nil
}

// Range resolves the report range: From/To if set, otherwise the whole of
// Month/Year, each defaulting to now's.
func (c *Config) Range(now time.Time) (calendar.Range, error) {
	if c.From == "" {
		return calendar.MonthRange(c.Month, c.Year, now)
	}

	from, err := calendar.ParseDate(c.From)
	if err != nil {
		return calendar.Range{}, err
	}
	to, err := calendar.ParseDate(c.To)
	if err != nil {
		return calendar.Range{}, err
	}
	return calendar.NewRange(from, to)
}

// isHTTPURL reports whether s is an absolute http or https URL.
func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
