package zoom

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/zoomreport/internal/calendar"
	"github.com/nao1215/zoomreport/internal/cookie"
)

const twoMeetingsHTML = `<html><body>
<table id="meeting_list">
  <tr><td><a href="#" data-id="A">Standup</a></td></tr>
  <tr><td><a href="#" data-id="B">Review</a></td></tr>
</table>
<span name="totalRecords">2</span>
</body></html>`

func TestParseMeetingPage(t *testing.T) {
	t.Parallel()

	t.Run("extracts ids and total", func(t *testing.T) {
		t.Parallel()

		page, err := ParseMeetingPage(strings.NewReader(twoMeetingsHTML))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(page.IDs) != 2 || page.IDs[0] != "A" || page.IDs[1] != "B" {
			t.Errorf("expected [A B], got %v", page.IDs)
		}
		if page.Total != 2 {
			t.Errorf("expected total 2, got %d", page.Total)
		}
		if page.Truncated() {
			t.Error("expected page not to be truncated")
		}
	})

	t.Run("ignores anchors outside the table", func(t *testing.T) {
		t.Parallel()

		html := `<a data-id="outside">x</a>
<table id="other"><tr><td><a data-id="nope">x</a></td></tr></table>
<table id="meeting_list"><tr><td><a data-id="inside">x</a></td></tr></table>
<span name="totalRecords"> 7 </span>`

		page, err := ParseMeetingPage(strings.NewReader(html))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(page.IDs) != 1 || page.IDs[0] != "inside" {
			t.Errorf("expected [inside], got %v", page.IDs)
		}
		if page.Total != 7 {
			t.Errorf("expected total 7, got %d", page.Total)
		}
		if !page.Truncated() {
			t.Error("expected page to be truncated")
		}
	})

	t.Run("keeps anchors placed directly in the table", func(t *testing.T) {
		t.Parallel()

		html := `<table id="meeting_list"><a data-id="A">x</a><a data-id="B">y</a></table><span name="totalRecords">2</span>`
		page, err := ParseMeetingPage(strings.NewReader(html))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(page.IDs) != 2 || page.IDs[0] != "A" || page.IDs[1] != "B" {
			t.Errorf("expected [A B], got %v", page.IDs)
		}
		if page.Total != 2 {
			t.Errorf("expected total 2, got %d", page.Total)
		}
	})

	t.Run("includes nested tables and stops at the closing tag", func(t *testing.T) {
		t.Parallel()

		html := `<table id="meeting_list"><tr><td>
<table><tr><td><a data-id="nested">x</a></td></tr></table>
<a data-id="after-nested">y</a>
</td></tr></table>
<a data-id="outside">z</a>
<span name="totalRecords"><b>2</b></span>`
		page, err := ParseMeetingPage(strings.NewReader(html))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(page.IDs) != 2 || page.IDs[0] != "nested" || page.IDs[1] != "after-nested" {
			t.Errorf("expected [nested after-nested], got %v", page.IDs)
		}
		if page.Total != 2 {
			t.Errorf("expected total 2, got %d", page.Total)
		}
	})

	t.Run("empty table yields no ids", func(t *testing.T) {
		t.Parallel()

		html := `<table id="meeting_list"><tr><td>No data</td></tr></table><span name="totalRecords">0</span>`
		page, err := ParseMeetingPage(strings.NewReader(html))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(page.IDs) != 0 {
			t.Errorf("expected no ids, got %v", page.IDs)
		}
	})

	errorTests := []struct {
		name    string
		html    string
		wantErr error
	}{
		{
			name:    "missing table",
			html:    `<span name="totalRecords">2</span>`,
			wantErr: ErrMeetingTableNotFound,
		},
		{
			name:    "missing span",
			html:    `<table id="meeting_list"><tr><td><a data-id="A">x</a></td></tr></table>`,
			wantErr: ErrTotalRecordsNotFound,
		},
		{
			name:    "anchor without data-id",
			html:    `<table id="meeting_list"><tr><td><a href="/x">x</a></td></tr></table><span name="totalRecords">1</span>`,
			wantErr: ErrMissingDataID,
		},
		{
			name:    "non-numeric total",
			html:    `<table id="meeting_list"></table><span name="totalRecords">many</span>`,
			wantErr: ErrInvalidTotalRecords,
		},
	}

	for _, tt := range errorTests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseMeetingPage(strings.NewReader(tt.html))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParseParticipants(t *testing.T) {
	t.Parallel()

	t.Run("normalizes attendee", func(t *testing.T) {
		t.Parallel()

		body := `{"attendees":[{"id":"u1","name":"Alice","duration":125,"joinTimeStr":"10:00","leaveTimeStr":"10:03"}]}`
		attendees, err := ParseParticipants(strings.NewReader(body))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(attendees) != 1 {
			t.Fatalf("expected 1 attendee, got %d", len(attendees))
		}

		a := attendees[0]
		if a.ID != "u1" || a.Name != "Alice" {
			t.Errorf("unexpected identity: %+v", a)
		}
		if a.Duration != 3 {
			t.Errorf("expected duration 3, got %d", a.Duration)
		}
		if a.JoinTime != "10:00" || a.LeaveTime != "10:03" {
			t.Errorf("unexpected times: %+v", a)
		}
	})

	t.Run("preserves order and ignores extra keys", func(t *testing.T) {
		t.Parallel()

		body := `{"total":2,"attendees":[
			{"id":"u2","name":"Bob","duration":60,"joinTimeStr":"a","leaveTimeStr":"b","email":"bob@example.com"},
			{"id":"u1","name":"Alice","duration":61.5,"joinTimeStr":"c","leaveTimeStr":"d"}
		]}`
		attendees, err := ParseParticipants(strings.NewReader(body))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(attendees) != 2 || attendees[0].ID != "u2" || attendees[1].ID != "u1" {
			t.Fatalf("unexpected order: %+v", attendees)
		}
		if attendees[0].Duration != 1 || attendees[1].Duration != 2 {
			t.Errorf("unexpected durations: %d, %d", attendees[0].Duration, attendees[1].Duration)
		}
	})

	t.Run("empty attendees array", func(t *testing.T) {
		t.Parallel()

		attendees, err := ParseParticipants(strings.NewReader(`{"attendees":[]}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(attendees) != 0 {
			t.Errorf("expected no attendees, got %d", len(attendees))
		}
	})

	t.Run("missing attendees key", func(t *testing.T) {
		t.Parallel()

		_, err := ParseParticipants(strings.NewReader(`{"status":"ok"}`))
		if !errors.Is(err, ErrAttendeesMissing) {
			t.Errorf("expected ErrAttendeesMissing, got %v", err)
		}
	})

	t.Run("null attendees", func(t *testing.T) {
		t.Parallel()

		_, err := ParseParticipants(strings.NewReader(`{"attendees":null}`))
		if !errors.Is(err, ErrAttendeesMissing) {
			t.Errorf("expected ErrAttendeesMissing, got %v", err)
		}
	})

	t.Run("missing attendee field", func(t *testing.T) {
		t.Parallel()

		body := `{"attendees":[{"id":"u1","name":"Alice","joinTimeStr":"a","leaveTimeStr":"b"}]}`
		_, err := ParseParticipants(strings.NewReader(body))
		if !errors.Is(err, ErrMissingField) {
			t.Errorf("expected ErrMissingField, got %v", err)
		}
	})

	t.Run("malformed JSON", func(t *testing.T) {
		t.Parallel()

		if _, err := ParseParticipants(strings.NewReader(`<html>login</html>`)); err == nil {
			t.Error("expected error for malformed JSON")
		}
	})
}

func TestClientURLs(t *testing.T) {
	t.Parallel()

	c := NewClient(nil, cookie.Jar{}, WithReportURL("https://example.com/report"), WithParticipantsURL("https://example.com/list?x=1"))

	t.Run("report URL embeds day and account", func(t *testing.T) {
		t.Parallel()

		raw, err := c.ReportURL(calendar.Date{Year: 2024, Month: time.March, Day: 5}, "acct-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		u, err := url.Parse(raw)
		if err != nil {
			t.Fatalf("invalid URL %q: %v", raw, err)
		}
		q := u.Query()
		if q.Get("from") != "03/05/2024" || q.Get("to") != "03/05/2024" {
			t.Errorf("unexpected range: from=%q to=%q", q.Get("from"), q.Get("to"))
		}
		if q.Get("id") != "acct-1" {
			t.Errorf("expected id acct-1, got %q", q.Get("id"))
		}
		if u.Path != "/report" {
			t.Errorf("unexpected path %q", u.Path)
		}
	})

	t.Run("participants URL escapes meeting id and keeps query", func(t *testing.T) {
		t.Parallel()

		raw, err := c.ParticipantsURL("sFkY/d8T+g==", "acct-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		u, err := url.Parse(raw)
		if err != nil {
			t.Fatalf("invalid URL %q: %v", raw, err)
		}
		q := u.Query()
		if q.Get("meetingId") != "sFkY/d8T+g==" {
			t.Errorf("meeting id did not round trip: %q", q.Get("meetingId"))
		}
		if q.Get("accountId") != "acct-1" {
			t.Errorf("expected accountId acct-1, got %q", q.Get("accountId"))
		}
		if q.Get("x") != "1" {
			t.Errorf("expected existing query to be kept, got %q", raw)
		}
	})

	t.Run("invalid endpoint is reported", func(t *testing.T) {
		t.Parallel()

		bad := NewClient(nil, cookie.Jar{}, WithReportURL("://bad"))
		if _, err := bad.ReportURL(calendar.Date{Year: 2024, Month: time.March, Day: 5}, "a"); err == nil {
			t.Error("expected error for invalid endpoint")
		}
	})
}

func TestClientRequests(t *testing.T) {
	t.Parallel()

	t.Run("sends cookies and parses report page", func(t *testing.T) {
		t.Parallel()

		type seen struct {
			cookie string
			ua     string
		}
		seenCh := make(chan seen, 1)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, _ := r.Cookie("_zm_ssid")
			value := ""
			if c != nil {
				value = c.Value
			}
			seenCh <- seen{cookie: value, ua: r.UserAgent()}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = io.WriteString(w, "\ufeff"+twoMeetingsHTML)
		}))
		defer server.Close()

		client := NewClient(server.Client(), cookie.Jar{"_zm_ssid": "secret"}, WithUserAgent("test-agent"))
		page, err := client.MeetingIDs(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(page.IDs) != 2 {
			t.Errorf("expected 2 ids, got %v", page.IDs)
		}

		got := <-seenCh
		if got.cookie != "secret" {
			t.Errorf("expected cookie to be sent, got %q", got.cookie)
		}
		if got.ua != "test-agent" {
			t.Errorf("expected user agent test-agent, got %q", got.ua)
		}
	})

	t.Run("sends cookie values unmodified", func(t *testing.T) {
		t.Parallel()

		parsed := cookie.Parse(`a=1; b=x y; c=p,q; d={"k":"v"}; e=ok`)

		headerCh := make(chan string, 1)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			headerCh <- r.Header.Get("Cookie")
			_, _ = io.WriteString(w, `{"attendees":[]}`)
		}))
		defer server.Close()

		client := NewClient(server.Client(), parsed.Jar)
		if _, err := client.Participants(context.Background(), server.URL); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := `a=1; b=x y; c=p,q; d={"k":"v"}; e=ok`
		if got := <-headerCh; got != want {
			t.Errorf("expected Cookie header %q, got %q", want, got)
		}
	})

	t.Run("oversized body is an error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, twoMeetingsHTML)
		}))
		defer server.Close()

		client := NewClient(server.Client(), cookie.Jar{}, WithMaxBodySize(int64(len(twoMeetingsHTML)-1)))
		if _, err := client.MeetingIDs(context.Background(), server.URL); !errors.Is(err, ErrBodyTooLarge) {
			t.Errorf("expected ErrBodyTooLarge, got %v", err)
		}

		exact := NewClient(server.Client(), cookie.Jar{}, WithMaxBodySize(int64(len(twoMeetingsHTML))))
		if _, err := exact.MeetingIDs(context.Background(), server.URL); err != nil {
			t.Errorf("expected body at the limit to be read, got %v", err)
		}
	})

	t.Run("fetches participants", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"attendees":[{"id":"u1","name":"Alice","duration":125,"joinTimeStr":"10:00","leaveTimeStr":"10:03"}]}`)
		}))
		defer server.Close()

		client := NewClient(server.Client(), cookie.Jar{})
		attendees, err := client.Participants(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(attendees) != 1 || attendees[0].Duration != 3 {
			t.Errorf("unexpected attendees: %+v", attendees)
		}
	})

	t.Run("non-2xx status returns StatusError", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "forbidden", http.StatusForbidden)
		}))
		defer server.Close()

		client := NewClient(server.Client(), cookie.Jar{})
		_, err := client.MeetingIDs(context.Background(), server.URL)

		var statusErr *StatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("expected StatusError, got %v", err)
		}
		if statusErr.StatusCode != http.StatusForbidden {
			t.Errorf("expected 403, got %d", statusErr.StatusCode)
		}
	})

	t.Run("login page surfaces structure error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `<html><body><form id="login"></form></body></html>`)
		}))
		defer server.Close()

		client := NewClient(server.Client(), cookie.Jar{})
		_, err := client.MeetingIDs(context.Background(), server.URL)
		if !errors.Is(err, ErrMeetingTableNotFound) {
			t.Errorf("expected ErrMeetingTableNotFound, got %v", err)
		}
	})

	t.Run("cancelled context aborts request", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, twoMeetingsHTML)
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		client := NewClient(server.Client(), cookie.Jar{})
		if _, err := client.MeetingIDs(ctx, server.URL); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestNewHTTPClient(t *testing.T) {
	t.Parallel()

	t.Run("direct connection", func(t *testing.T) {
		t.Parallel()

		c, err := NewHTTPClient(TransportOptions{Timeout: 5 * time.Second})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.Timeout != 5*time.Second {
			t.Errorf("expected timeout 5s, got %v", c.Timeout)
		}
		if c.Jar != nil {
			t.Error("expected no automatic cookie jar")
		}
	})

	t.Run("socks5 proxy", func(t *testing.T) {
		t.Parallel()

		if _, err := NewHTTPClient(TransportOptions{ProxyAddress: "127.0.0.1:9050"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("invalid proxy address", func(t *testing.T) {
		t.Parallel()

		for _, addr := range []string{"localhost", ":9050", "host:0", "host:70000", "host:abc"} {
			if _, err := NewHTTPClient(TransportOptions{ProxyAddress: addr}); !errors.Is(err, ErrInvalidProxyAddress) {
				t.Errorf("%q: expected ErrInvalidProxyAddress, got %v", addr, err)
			}
		}
	})
}
