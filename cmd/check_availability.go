package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/agentdesk/internal/availability"
	"github.com/teemow/agentdesk/internal/cal"
	"github.com/teemow/agentdesk/internal/config"
	"github.com/teemow/agentdesk/internal/logging"
	"github.com/teemow/agentdesk/internal/server"
	"github.com/teemow/agentdesk/internal/validation"
)

func newCheckAvailabilityCmd() *cobra.Command {
	var (
		date     string
		timeZone string
	)

	cmd := &cobra.Command{
		Use:   "check-availability",
		Short: "Print the calendar owner's availability for a date",
		Long: `Run the availability check once against Cal.com and print the same
text the calendar_check_availability tool returns: the owner's working hours
on that date and the busy intervals inside them.

Requires CAL_API_KEY.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			logger, err := logging.Setup(logging.Options{
				Level:  cfg.Log.Level,
				Format: cfg.Log.Format,
				Writer: os.Stderr,
			})
			if err != nil {
				return fmt.Errorf("failed to set up logging: %w", err)
			}

			sc := server.NewServerContext(cmd.Context(), logging.WithOperation(logger, "check_availability"))
			defer func() {
				_ = sc.Shutdown()
			}()
			if err := sc.Connect(sc.Context(), cfg, []server.Toolset{server.ToolsetBooking}); err != nil {
				return err
			}

			return runCheckAvailability(sc.Context(), sc.CalClient(), cmd.OutOrStdout(), date, timeZone)
		},
	}

	cmd.Flags().StringVar(&date, "date", time.Now().Format(time.DateOnly), "Date to check (YYYY-MM-DD)")
	cmd.Flags().StringVar(&timeZone, "tz", "", "IANA time zone to show the hours in (default: the owner's time zone)")

	return cmd
}

// runCheckAvailability prints the availability text for date. A day
// without a working window is reported, not treated as a failure.
func runCheckAvailability(ctx context.Context, client *cal.Client, out io.Writer, date, timeZone string) error {
	date, err := validation.Date("date", date)
	if err != nil {
		return err
	}
	var viewer *time.Location
	if timeZone != "" {
		if viewer, err = validation.TimeZone("tz", timeZone); err != nil {
			return err
		}
	}

	day, err := client.CheckAvailability(ctx, date, viewer)
	if err != nil {
		var notFound *availability.NotFoundError
		if errors.As(err, &notFound) {
			_, err = fmt.Fprintln(out, notFound.Error())
			return err
		}
		return fmt.Errorf("checking availability: %w", err)
	}

	_, err = fmt.Fprintln(out, day.Text())
	return err
}
