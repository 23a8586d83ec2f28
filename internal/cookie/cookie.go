package cookie

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
)

var (
	// ErrNoCookies is returned when a cookie header yields no pairs at all.
	ErrNoCookies = errors.New("no cookies found")

	// ErrMalformedCookie is returned in strict mode when fragments were skipped.
	ErrMalformedCookie = errors.New("malformed cookie fragments")
)

// Jar maps cookie names to their values.
// It is built once per run and treated as read-only afterwards.
type Jar map[string]string

// ParseResult contains the parsed cookie jar and the fragments that
// could not be parsed. Malformed fragments never reach the jar.
type ParseResult struct {
	// Jar holds every well-formed name=value pair.
	Jar Jar

	// Skipped lists fragments that did not contain exactly one '='.
	Skipped []string
}

// Check reports whether the result is usable. An empty jar is always an
// error; skipped fragments are an error only when strict is set. Fragment
// contents are never included in the error.
func (r *ParseResult) Check(strict bool) error {
	if len(r.Jar) == 0 {
		return ErrNoCookies
	}
	if strict && len(r.Skipped) > 0 {
		return fmt.Errorf("%w: %d skipped", ErrMalformedCookie, len(r.Skipped))
	}
	return nil
}

// LoadFile reads a cookie header from path and parses it.
// The header may be wrapped across several physical lines; line breaks are
// removed before parsing. A missing file returns an error wrapping
// os.ErrNotExist.
func LoadFile(path string) (*ParseResult, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided cookie path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to read cookie file: %w", err)
	}
	return Parse(string(data)), nil
}

// Parse parses a raw cookie header string such as "a=1; b=2".
func Parse(raw string) *ParseResult {
	raw = strings.NewReplacer("\r", "", "\n", "").Replace(raw)

	result := &ParseResult{
		Jar:     make(Jar),
		Skipped: make([]string, 0),
	}

	for _, fragment := range strings.Split(raw, ";") {
		if strings.TrimSpace(fragment) == "" {
			continue
		}

		parts := strings.Split(fragment, "=")
		if len(parts) != 2 {
			result.Skipped = append(result.Skipped, strings.TrimSpace(fragment))
			continue
		}

		result.Jar[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}

	return result
}

// Names returns the cookie names in sorted order.
func (j Jar) Names() []string {
	names := make([]string, 0, len(j))
	for name := range j {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Header renders the jar as a Cookie header value ("a=1; b=2").
// Values are written as captured, without quoting or byte filtering.
func (j Jar) Header() string {
	pairs := make([]string, 0, len(j))
	for _, name := range j.Names() {
		pairs = append(pairs, name+"="+j[name])
	}
	return strings.Join(pairs, "; ")
}

// AddTo sets the Cookie header of req to the jar's header value.
// An empty jar leaves req unchanged.
func (j Jar) AddTo(req *http.Request) {
	if len(j) == 0 {
		return
	}
	req.Header.Set("Cookie", j.Header())
}
