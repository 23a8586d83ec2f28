// Package log provides slog loggers that never print session cookies.
//
// SecureHandler wraps any slog.Handler and masks attribute values when
// either the key names a credential (cookie, authorization, Zoom session
// cookie names such as _zm_ssid) or the value looks like one (a Cookie
// header, a JWT, a bearer token). Masking applies in verbose mode too,
// so debug logs can be shared safely.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Debug("requesting portal page", "cookie", jar.Header()) // cookie=***REDACTED***
//	slog.SetDefault(logger)
package log
