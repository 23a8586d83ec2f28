package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoAccountID is returned when no account ID was given by flag,
	// environment or config file.
	ErrNoAccountID = errors.New("no account ID specified: use --account, ZOOMREPORT_ACCOUNT_ID or accountId in the config file")

	// ErrNoCookieFile is returned when no cookie file was given.
	ErrNoCookieFile = errors.New("no cookie file specified: use --cookies, ZOOMREPORT_COOKIE_FILE or cookieFile in the config file")

	// ErrInvalidEndpoint is returned when a portal URL is not an absolute
	// http(s) URL.
	ErrInvalidEndpoint = errors.New("invalid portal endpoint: must be an absolute http or https URL")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidConcurrency is returned when the concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrConflictingReportFormats is returned when more than one of
	// --json, --csv and --markdown is given.
	ErrConflictingReportFormats = errors.New("conflicting report formats: use only one of --json, --csv and --markdown")

	// ErrInvalidMonth is returned when the month is outside 1-12.
	ErrInvalidMonth = errors.New("invalid month: must be between 1 and 12")

	// ErrInvalidYear is returned when the year is negative.
	ErrInvalidYear = errors.New("invalid year: must be positive")

	// ErrIncompleteRange is returned when only one of --from and --to is set.
	ErrIncompleteRange = errors.New("incomplete range: --from and --to must be used together")

	// ErrConflictingRange is returned when --from/--to is combined with
	// --month/--year.
	ErrConflictingRange = errors.New("conflicting range: use either --from/--to or --month/--year")
)
