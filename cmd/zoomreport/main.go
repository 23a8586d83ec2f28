// Package main provides the entry point for the zoomreport CLI.
//
// zoomreport builds attendance reports for a Zoom account by scraping the
// web portal's meeting reports with a captured browser session.
//
// Usage:
//
//	zoomreport report --cookies cookies.txt --account 123456789
//	zoomreport report --cookies cookies.txt --account 123456789 --month 2 --year 2024 --csv
//	zoomreport history --list
//
// See --help for all available options.
package main

// main is the entry point for zoomreport.
func main() {
	Execute()
}
