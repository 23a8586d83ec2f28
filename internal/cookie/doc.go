// Package cookie loads browser session cookies captured from the Zoom web
// portal. The input is a single Cookie header value, copied from the
// browser's developer tools, optionally wrapped over several lines.
//
// # Usage
//
//	result, err := cookie.LoadFile("cookies.txt")
//	if err != nil {
//	    return err
//	}
//	if len(result.Skipped) > 0 {
//	    logger.Warn("skipped malformed cookie fragments", "count", len(result.Skipped))
//	}
//	client := zoom.NewClient(httpClient, result.Jar)
package cookie
