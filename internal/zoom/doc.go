// Package zoom scrapes meeting attendance from the Zoom web portal.
//
// # Architecture
//
// The portal has no public endpoint for per-meeting attendance of a
// personal account, so the package reads the same pages the browser does:
//
//   - The report page (HTML) lists the meetings held in a date range. Each
//     row of <table id="meeting_list"> has an anchor whose data-id is the
//     meeting identifier, and <span name="totalRecords"> holds the count.
//   - The participant endpoint (JSON) returns the attendees of one meeting.
//
// Requests are authenticated with session cookies captured from a logged-in
// browser (see package cookie). The cookies are attached explicitly to each
// request; no process-wide session state exists.
//
// # Limitations
//
// Only the first page of report results is read. MeetingPage.Truncated tells
// the caller when the portal claims more records than were visible.
//
// # Usage
//
//	httpClient, err := zoom.NewHTTPClient(zoom.TransportOptions{Timeout: time.Minute})
//	client := zoom.NewClient(httpClient, jar)
//	reportURL, _ := client.ReportURL(day, accountID)
//	page, err := client.MeetingIDs(ctx, reportURL)
package zoom
