// Package calendar provides the date arithmetic behind a monthly
// attendance report: finding the last day of a month and iterating the
// days of a reporting range.
package calendar
