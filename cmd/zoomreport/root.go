package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	seclog "github.com/nao1215/zoomreport/internal/log"
)

// errUnknownLogFormat is returned when --log-format is neither text nor json.
var errUnknownLogFormat = errors.New("unknown log format (use text or json)")

// NewRootCmd creates the root command for zoomreport.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "zoomreport",
		Short: "Attendance reports from the Zoom web portal",
		Long: `zoomreport collects who attended which meeting of a Zoom account, and for
how long, by reading the portal's meeting reports with the session cookies of
a logged-in browser.

Copy the Cookie request header of any zoom.us page from your browser's
developer tools into a file and pass it with --cookies.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().String("log-format", "text", "Log output format: text or json")

	cmd.AddCommand(NewReportCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates the redacting logger selected by --verbose and
// --log-format. Logs go to the command's stderr.
func setupLogger(cmd *cobra.Command) (*slog.Logger, error) {
	verbose := getVerboseFlag(cmd)

	format, err := cmd.Flags().GetString("log-format")
	if err != nil {
		format = "text"
	}

	switch format {
	case "", "text":
		return seclog.NewSecureLogger(cmd.ErrOrStderr(), verbose), nil
	case "json":
		return seclog.NewSecureJSONLogger(cmd.ErrOrStderr(), verbose), nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownLogFormat, format)
	}
}
