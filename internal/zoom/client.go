package zoom

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/nao1215/zoomreport/internal/calendar"
	"github.com/nao1215/zoomreport/internal/cookie"
	"github.com/nao1215/zoomreport/internal/model"
)

// Default portal endpoints.
const (
	// DefaultReportURL lists the meetings held in a date range as HTML.
	DefaultReportURL = "https://zoom.us/account/my/report"

	// DefaultParticipantsURL returns the participants of one meeting as JSON.
	DefaultParticipantsURL = "https://us06web.zoom.us/account/my/report/participants/list"

	// DefaultUserAgent is sent with every request. The portal serves
	// different markup to unknown clients, so a browser string is used.
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"

	// DefaultMaxBodySize limits how much of a response body is read.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB
)

// Client fetches report pages and participant lists from the Zoom web
// portal, authenticating every request with the captured session cookies.
type Client struct {
	// httpClient performs the requests. See NewHTTPClient.
	httpClient *http.Client

	// jar is attached to every request. It is never modified.
	jar cookie.Jar

	// reportURL is the meeting list endpoint.
	reportURL string

	// participantsURL is the participant list endpoint.
	participantsURL string

	// userAgent is the User-Agent header to use.
	userAgent string

	// maxBodySize limits the size of response bodies to read.
	maxBodySize int64

	// logger receives request-level debug output.
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithReportURL overrides the meeting list endpoint.
func WithReportURL(u string) Option {
	return func(c *Client) {
		c.reportURL = u
	}
}

// WithParticipantsURL overrides the participant list endpoint.
func WithParticipantsURL(u string) Option {
	return func(c *Client) {
		c.participantsURL = u
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size.
func WithMaxBodySize(size int64) Option {
	return func(c *Client) {
		if size > 0 {
			c.maxBodySize = size
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Client that sends jar with every request.
// If httpClient is nil, http.DefaultClient is used.
func NewClient(httpClient *http.Client, jar cookie.Jar, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	c := &Client{
		httpClient:      httpClient,
		jar:             jar,
		reportURL:       DefaultReportURL,
		participantsURL: DefaultParticipantsURL,
		userAgent:       DefaultUserAgent,
		maxBodySize:     DefaultMaxBodySize,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c
}

// ReportURL builds the meeting list URL for a single day.
// The day is used as both ends of the range so each page lists one day.
func (c *Client) ReportURL(day calendar.Date, accountID string) (string, error) {
	return withQuery(c.reportURL, url.Values{
		"from": {day.USFormat()},
		"to":   {day.USFormat()},
		"id":   {accountID},
	})
}

// ParticipantsURL builds the participant list URL for one meeting.
func (c *Client) ParticipantsURL(meetingID, accountID string) (string, error) {
	return withQuery(c.participantsURL, url.Values{
		"meetingId": {meetingID},
		"accountId": {accountID},
	})
}

// MeetingIDs fetches a report page and extracts the meeting identifiers and
// the total record count. Only the first page of results is read.
func (c *Client) MeetingIDs(ctx context.Context, reportURL string) (*MeetingPage, error) {
	body, err := c.get(ctx, reportURL, "text/html,application/xhtml+xml")
	if err != nil {
		return nil, err
	}

	page, err := ParseMeetingPage(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse report page: %w", err)
	}
	return page, nil
}

// Participants fetches the participant list of one meeting.
func (c *Client) Participants(ctx context.Context, participantsURL string) ([]model.Attendee, error) {
	body, err := c.get(ctx, participantsURL, "application/json")
	if err != nil {
		return nil, err
	}

	attendees, err := ParseParticipants(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse participant list: %w", err)
	}
	return attendees, nil
}

// get performs an authenticated GET and returns the UTF-8 decoded body.
// A body larger than maxBodySize is an error rather than a truncated page.
func (c *Client) get(ctx context.Context, rawURL, accept string) (io.Reader, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	c.jar.AddTo(req)

	c.logger.Debug("requesting portal page", "url", rawURL, "jarSize", len(c.jar))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", rawURL, err)
	}
	if int64(len(data)) > c.maxBodySize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrBodyTooLarge, rawURL, c.maxBodySize)
	}

	return transform.NewReader(bytes.NewReader(data), unicode.UTF8BOM.NewDecoder()), nil
}

// withQuery appends values to base, keeping any query already present.
func withQuery(base string, values url.Values) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint URL %q: %w", base, err)
	}

	q := u.Query()
	for k, vs := range values {
		for _, v := range vs {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
