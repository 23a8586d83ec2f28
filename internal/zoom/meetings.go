package zoom

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Identifiers of the report page elements we read.
const (
	meetingTableID     = "meeting_list"
	totalRecordsName   = "totalRecords"
	meetingIDAttribute = "data-id"
	htmlElementTable   = "table"
	htmlElementSpan    = "span"
	htmlElementAnchor  = "a"
	htmlAttributeID    = "id"
	htmlAttributeName  = "name"
)

// MeetingPage is the information extracted from one report page.
type MeetingPage struct {
	// IDs are the meeting identifiers in document order.
	IDs []string

	// Total is the number of records the portal reports for the range.
	// It can exceed len(IDs) when the results span several pages.
	Total int
}

// Truncated reports whether the page shows fewer meetings than the total.
func (p *MeetingPage) Truncated() bool {
	return p.Total > len(p.IDs)
}

// ParseMeetingPage extracts meeting identifiers and the total record count
// from report page HTML.
//
// Every <a> between the start and end tags of <table id="meeting_list">
// contributes its data-id attribute. The page is read as a token stream,
// so anchors placed directly in the table without cells are kept. The
// total comes from the text of the first <span name="totalRecords">.
func ParseMeetingPage(r io.Reader) (*MeetingPage, error) {
	z := html.NewTokenizer(r)

	page := &MeetingPage{IDs: make([]string, 0)}
	var (
		foundTable bool
		tableDepth int
		foundSpan  bool
		spanDepth  int
		total      strings.Builder
	)

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if errors.Is(z.Err(), io.EOF) {
				break
			}
			return nil, z.Err()
		}

		tok := z.Token()
		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			opens := tt == html.StartTagToken
			switch tok.Data {
			case htmlElementTable:
				switch {
				case tableDepth > 0 && opens:
					tableDepth++
				case !foundTable && attrEquals(tok, htmlAttributeID, meetingTableID):
					foundTable = true
					if opens {
						tableDepth = 1
					}
				}
			case htmlElementAnchor:
				if tableDepth == 0 {
					continue
				}
				id, ok := getAttr(tok, meetingIDAttribute)
				if !ok {
					return nil, ErrMissingDataID
				}
				page.IDs = append(page.IDs, id)
			case htmlElementSpan:
				switch {
				case spanDepth > 0 && opens:
					spanDepth++
				case !foundSpan && attrEquals(tok, htmlAttributeName, totalRecordsName):
					foundSpan = true
					if opens {
						spanDepth = 1
					}
				}
			}
		case html.EndTagToken:
			switch tok.Data {
			case htmlElementTable:
				if tableDepth > 0 {
					tableDepth--
				}
			case htmlElementSpan:
				if spanDepth > 0 {
					spanDepth--
				}
			}
		case html.TextToken:
			if spanDepth > 0 {
				total.WriteString(tok.Data)
			}
		}
	}

	if !foundTable {
		return nil, ErrMeetingTableNotFound
	}
	if !foundSpan {
		return nil, ErrTotalRecordsNotFound
	}

	text := strings.TrimSpace(total.String())
	n, err := strconv.Atoi(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTotalRecords, text)
	}
	page.Total = n

	return page, nil
}

// attrEquals reports whether tok has attribute key with value val.
func attrEquals(tok html.Token, key, val string) bool {
	v, ok := getAttr(tok, key)
	return ok && v == val
}

// getAttr retrieves an attribute value from a start tag token.
// The boolean distinguishes a missing attribute from an empty one.
func getAttr(tok html.Token, key string) (string, bool) {
	for _, attr := range tok.Attr {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}
