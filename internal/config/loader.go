package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".zoomreport"

// Environment variables read by ApplyEnv.
const (
	EnvAccountID  = "ZOOMREPORT_ACCOUNT_ID"
	EnvCookieFile = "ZOOMREPORT_COOKIE_FILE"
)

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .zoomreport configuration file.
// Zero values leave the corresponding Config field untouched.
type File struct {
	ReportURL       string        `yaml:"reportURL,omitempty"`
	ParticipantsURL string        `yaml:"participantsURL,omitempty"`
	AccountID       string        `yaml:"accountId,omitempty"`
	CookieFile      string        `yaml:"cookieFile,omitempty"`
	Timeout         time.Duration `yaml:"timeout,omitempty"`
	UserAgent       string        `yaml:"userAgent,omitempty"`
	Proxy           string        `yaml:"proxy,omitempty"`
	Concurrency     int           `yaml:"concurrency,omitempty"`
}

// Apply copies every value set in the file into cfg.
// A relative cookieFile is resolved against baseDir, the directory of the
// config file, so the file works from any working directory.
func (f *File) Apply(cfg *Config, baseDir string) {
	if f.ReportURL != "" {
		cfg.ReportURL = f.ReportURL
	}
	if f.ParticipantsURL != "" {
		cfg.ParticipantsURL = f.ParticipantsURL
	}
	if f.AccountID != "" {
		cfg.AccountID = f.AccountID
	}
	if f.CookieFile != "" {
		cfg.CookieFile = f.CookieFile
		if !filepath.IsAbs(f.CookieFile) && baseDir != "" {
			cfg.CookieFile = filepath.Join(baseDir, f.CookieFile)
		}
	}
	if f.Timeout > 0 {
		cfg.Timeout = f.Timeout
	}
	if f.UserAgent != "" {
		cfg.UserAgent = f.UserAgent
	}
	if f.Proxy != "" {
		cfg.ProxyAddress = f.Proxy
	}
	if f.Concurrency > 0 {
		cfg.Concurrency = f.Concurrency
	}
}

// LoadConfigFile loads a configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .zoomreport in the current directory
// 3. Look for .zoomreport in the user's home directory
// 4. Look for config.yaml in the XDG config directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), "config.yaml"))

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}

	return ""
}

// LoadEnv loads variables from the given .env files into the process
// environment without overriding variables that are already set. With no
// arguments it reads ./.env. Missing files are not an error.
func LoadEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}

	existing := make([]string, 0, len(filenames))
	for _, name := range filenames {
		if _, err := os.Stat(name); err == nil {
			existing = append(existing, name)
		}
	}
	if len(existing) == 0 {
		return nil
	}

	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load environment file: %w", err)
	}
	return nil
}

// ApplyEnv copies the zoomreport environment variables found by lookup
// into cfg. Pass os.LookupEnv in production.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvAccountID); ok && v != "" {
		cfg.AccountID = v
	}
	if v, ok := lookup(EnvCookieFile); ok && v != "" {
		cfg.CookieFile = v
	}
}
