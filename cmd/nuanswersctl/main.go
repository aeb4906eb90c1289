package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"nuanswers/internal"
	"nuanswers/internal/config"
	"nuanswers/internal/container"
	"nuanswers/internal/export"
	"nuanswers/internal/migration"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "nuanswersctl",
		Short:         "NuAnswers operations: schema, data export/import and tutoring hours",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newMigrateCmd(),
		newExportCmd(),
		newImportCmd(),
		newHoursCmd(),
	)
	return rootCmd
}

// open loads configuration and, when withDB is set, connects the record store.
// Log output goes to stderr so exports can be piped.
func open(ctx context.Context, withDB bool) (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := internal.NewLoggerTo(os.Stderr, internal.ParseLogLevel(cfg.Logging.Level), cfg.Logging.Pretty)

	c, err := container.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	if withDB {
		if err := c.InitWithDatabase(ctx); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the record store tables",
		Long: `Create the registrations, feedback, topics and completions tables.

The migration is idempotent. DATABASE_URL and DATABASE_DRIVER select the store.

Example: DATABASE_DRIVER=sqlite DATABASE_URL=nuanswers.db nuanswersctl migrate`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := open(ctx, true)
			if err != nil {
				return err
			}
			defer c.Shutdown(ctx)

			fmt.Fprintf(cmd.OutOrStdout(), "Schema %s ready (%s)\n", migration.NewRunner().Version(), c.Config.Database.Driver)
			return nil
		},
	}
}

func newExportCmd() *cobra.Command {
	var format, out, from, to string
	var majors, campuses []string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export registrations as CSV or Excel",
		Long: `Export registration rows, newest first.

Dates are calendar days in the tutoring time zone; both bounds are inclusive.
--major and --campus may be repeated or comma-separated.

Example: nuanswersctl export --format xlsx --out march.xlsx --from 2025-03-01 --to 2025-03-31 --major Finance`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := open(ctx, true)
			if err != nil {
				return err
			}
			defer c.Shutdown(ctx)

			filter, err := export.ParseFilter(from, to, majors, campuses, c.Gate.Location())
			if err != nil {
				return err
			}
			recs, err := c.Records.ListRegistrations(ctx, filter)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}

			switch strings.ToLower(format) {
			case "csv":
				err = export.WriteRegistrationsCSV(w, recs)
			case "xlsx":
				err = export.WriteRegistrationsXLSX(w, recs)
			default:
				return fmt.Errorf("unknown format %q (use csv or xlsx)", format)
			}
			if err != nil {
				return err
			}
			if w != cmd.OutOrStdout() {
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d registrations to %s\n", len(recs), out)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "csv", "Output format: csv|xlsx")
	cmd.Flags().StringVar(&out, "out", "-", "Output file (- for stdout)")
	cmd.Flags().StringVar(&from, "from", "", "First day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Last day to include (YYYY-MM-DD)")
	cmd.Flags().StringSliceVar(&majors, "major", nil, "Restrict to majors")
	cmd.Flags().StringSliceVar(&campuses, "campus", nil, "Restrict to campuses")
	return cmd
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [csv-file]",
		Short: "Insert registrations from an exported CSV",
		Long: `Insert every row of a CSV written by "nuanswersctl export --format csv"
or the admin dashboard. Rows receive new ids; the file is validated before anything is written.

Example: nuanswersctl import nuanswers_registration_data.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			recs, err := export.ReadRegistrationsCSV(f)
			if err != nil {
				return err
			}

			c, err := open(ctx, true)
			if err != nil {
				return err
			}
			defer c.Shutdown(ctx)

			for i := range recs {
				if err := c.Records.InsertRegistration(ctx, &recs[i]); err != nil {
					return fmt.Errorf("row %d: %w", i+1, err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d registrations\n", len(recs))
			return nil
		},
	}
}

func newHoursCmd() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "hours",
		Short: "Show whether in-person tutoring is in session",
		Long: `Evaluate the tutoring schedule (TUTORING_SCHEDULE, TUTORING_TIMEZONE) now or at --at.

Example: nuanswersctl hours --at 2025-03-03T11:00:00-05:00`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := open(cmd.Context(), false)
			if err != nil {
				return err
			}

			when := time.Now()
			if at != "" {
				if when, err = time.Parse(time.RFC3339, at); err != nil {
					return fmt.Errorf("invalid --at (use RFC3339): %w", err)
				}
			}

			in, diag := c.Gate.At(when)
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "In session:\t%t\n", in)
			fmt.Fprintf(tw, "Current time:\t%s (%s) %s\n", diag.CurrentTime, diag.CurrentTime24, diag.TimeZone)
			fmt.Fprintf(tw, "Day:\t%s\n", diag.Day)
			fmt.Fprintf(tw, "Fractional hour:\t%.2f\n", diag.FractionHour)
			fmt.Fprintf(tw, "Tested range:\t%s\n", diag.TestedRange())
			fmt.Fprintf(tw, "Reason:\t%s\n", diag.Reason)
			fmt.Fprintf(tw, "Schedule:\t%s\n", c.Gate.Schedule())
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "Evaluate at this instant (RFC3339) instead of now")
	return cmd
}
