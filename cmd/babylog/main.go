package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"babylog/internal/bootstrap"
	conflictdto "babylog/internal/modules/conflict/dto"
	"babylog/internal/modules/tracking/dto"
	"babylog/internal/platform/clock"
	"babylog/internal/platform/config"
	apperrors "babylog/internal/platform/errors"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type globalFlags struct {
	dataDir string
	babyID  string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "babylog",
		Short:         "Track feeds, sleep and pumping sessions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.dataDir, "data", ".babylog", "data directory")
	root.PersistentFlags().StringVar(&flags.babyID, "baby", "", "baby id (defaults to config baby_id)")

	root.AddCommand(
		newTUICmd(flags),
		newStartCmd(flags),
		newPauseCmd(flags),
		newResumeCmd(flags),
		newSwitchCmd(flags),
		newAdjustCmd(flags),
		newRebalanceCmd(flags),
		newStopCmd(flags),
		newCancelCmd(flags),
		newStatusCmd(flags),
		newWatchCmd(flags),
		newLogCmd(flags),
		newCheckCmd(flags),
		newTimelineCmd(flags),
		newExportCmd(flags),
		newConfigCmd(flags),
	)
	return root
}

func loadApp(ctx context.Context, flags *globalFlags) (*bootstrap.App, error) {
	cfg, err := config.New(flags.dataDir)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(flags.babyID) != "" {
		cfg.BabyID = flags.babyID
	}
	return bootstrap.New(ctx, cfg)
}

// withApp runs fn against a loaded app and always closes it.
func withApp(flags *globalFlags, fn func(ctx context.Context, app *bootstrap.App) error) error {
	ctx := context.Background()
	app, err := loadApp(ctx, flags)
	if err != nil {
		return err
	}
	runErr := fn(ctx, app)
	return errors.Join(runErr, app.Close(ctx))
}

func newTUICmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the live session board",
		RunE: func(_ *cobra.Command, _ []string) error {
			return withApp(flags, func(_ context.Context, app *bootstrap.App) error {
				return bootstrap.RunTUI(app)
			})
		},
	}
}

func newStartCmd(flags *globalFlags) *cobra.Command {
	var at, status, notes string
	var fieldPairs []string
	var force bool
	cmd := &cobra.Command{
		Use:   "start <nursing|pumping|sleep>",
		Short: "Start a timed session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseWhen(at, time.Now())
			if err != nil {
				return err
			}
			fields, err := parseFields(fieldPairs)
			if err != nil {
				return err
			}
			return withApp(flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.TrackingCLI.Start(ctx, app.Config.BabyID, args[0], start, status, notes, fields, force)
				if err != nil {
					return withConflictHint(err)
				}
				printWarnings(cmd.OutOrStdout(), out.Warnings)
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "started %s (%s) status=%s at=%s\n",
					out.Session.Kind, out.Session.ID, out.Session.Status, out.Session.StartTime.Format(time.RFC3339))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "start time: 15m, 08:50 or RFC3339 (default now)")
	cmd.Flags().StringVar(&status, "status", "", "initial status: left|right for nursing, running|paused for pumping")
	cmd.Flags().StringVar(&notes, "notes", "", "notes")
	cmd.Flags().StringSliceVar(&fieldPairs, "field", nil, "extra field key=value")
	cmd.Flags().BoolVar(&force, "force", false, "override advisory conflicts")
	return cmd
}

func newPauseCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "pause <nursing|pumping>",
		Short: "Pause a running session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.TrackingCLI.Pause(ctx, app.Config.BabyID, args[0])
				if err != nil {
					return err
				}
				printSession(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
}

func newResumeCmd(flags *globalFlags) *cobra.Command {
	var side string
	cmd := &cobra.Command{
		Use:   "resume <nursing|pumping>",
		Short: "Resume a paused session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.TrackingCLI.Resume(ctx, app.Config.BabyID, args[0], side)
				if err != nil {
					return err
				}
				printSession(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&side, "side", "", "nursing side: left|right (default left)")
	return cmd
}

func newSwitchCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "switch",
		Short: "Switch the nursing side",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.TrackingCLI.SwitchSide(ctx, app.Config.BabyID)
				if err != nil {
					return err
				}
				printSession(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
}

func newAdjustCmd(flags *globalFlags) *cobra.Command {
	var at, status string
	var force bool
	cmd := &cobra.Command{
		Use:   "adjust <kind> --at <time>",
		Short: "Correct when a session began",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseWhen(at, time.Now())
			if err != nil {
				return err
			}
			if start.IsZero() {
				return fmt.Errorf("--at is required")
			}
			return withApp(flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.TrackingCLI.AdjustStart(ctx, app.Config.BabyID, args[0], start, status, force)
				if err != nil {
					return withConflictHint(err)
				}
				printWarnings(cmd.OutOrStdout(), out.Warnings)
				printSession(cmd.OutOrStdout(), out.Session)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "new start time: 15m, 08:50 or RFC3339")
	cmd.Flags().StringVar(&status, "status", "", "status for a session created by the adjustment")
	cmd.Flags().BoolVar(&force, "force", false, "override advisory conflicts")
	return cmd
}

func newRebalanceCmd(flags *globalFlags) *cobra.Command {
	var left time.Duration
	cmd := &cobra.Command{
		Use:   "rebalance --left <duration>",
		Short: "Set the nursing left/right split, keeping the total",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.TrackingCLI.Rebalance(ctx, app.Config.BabyID, left)
				if err != nil {
					return err
				}
				printSession(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&left, "left", 0, "time on the left side")
	return cmd
}

func newStopCmd(flags *globalFlags) *cobra.Command {
	var at, notes string
	var fieldPairs []string
	cmd := &cobra.Command{
		Use:   "stop <kind>",
		Short: "Finish a session and save it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			end, err := parseWhen(at, time.Now())
			if err != nil {
				return err
			}
			fields, err := parseFields(fieldPairs)
			if err != nil {
				return err
			}
			return withApp(flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.TrackingCLI.Stop(ctx, app.Config.BabyID, args[0], end, notes, fields)
				if err != nil {
					return err
				}
				printRecord(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "end time: 15m, 08:50 or RFC3339 (default now)")
	cmd.Flags().StringVar(&notes, "notes", "", "final notes")
	cmd.Flags().StringSliceVar(&fieldPairs, "field", nil, "extra field key=value")
	return cmd
}

func newCancelCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <kind>",
		Short: "Discard a session without saving",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, func(ctx context.Context, app *bootstrap.App) error {
				if err := app.TrackingCLI.Cancel(ctx, app.Config.BabyID, args[0]); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s discarded\n", args[0])
				return nil
			})
		},
	}
}

func newStatusCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List running sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(ctx context.Context, app *bootstrap.App) error {
				sessions, err := app.TrackingCLI.Status(ctx, app.Config.BabyID)
				if err != nil {
					return err
				}
				if len(sessions) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no running sessions")
					return nil
				}
				for _, s := range sessions {
					printSession(cmd.OutOrStdout(), s)
				}
				return nil
			})
		},
	}
}

func newWatchCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <kind>",
		Short: "Show a live clock for a session until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, func(ctx context.Context, app *bootstrap.App) error {
				live, err := app.TrackingCLI.Watch(ctx, app.Config.BabyID, args[0])
				if err != nil {
					return err
				}
				ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
				defer cancel()

				w := cmd.OutOrStdout()
				render := func(s dto.ActiveSessionOutput) {
					_, _ = fmt.Fprintf(w, "\r%s %-7s %s   ", s.Kind, s.Status, formatSeconds(s.TotalSeconds))
				}
				render(live.Snapshot())
				stop := live.Run(clock.SystemScheduler{}, app.Config.TickInterval, render)
				<-ctx.Done()
				stop()
				_, _ = fmt.Fprintln(w)
				return nil
			})
		},
	}
}

func newLogCmd(flags *globalFlags) *cobra.Command {
	var start, end, notes string
	var fieldPairs []string
	var force bool
	cmd := &cobra.Command{
		Use:   "log <kind>",
		Short: "Record a complete entry such as a diaper change or a past bottle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			from, err := parseWhen(start, now)
			if err != nil {
				return err
			}
			to, err := parseWhen(end, now)
			if err != nil {
				return err
			}
			fields, err := parseFields(fieldPairs)
			if err != nil {
				return err
			}
			return withApp(flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.TrackingCLI.Log(ctx, app.Config.BabyID, args[0], from, to, notes, fields, force)
				if err != nil {
					return withConflictHint(err)
				}
				printWarnings(cmd.OutOrStdout(), out.Warnings)
				printRecord(cmd.OutOrStdout(), out.Record)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "start time (default now)")
	cmd.Flags().StringVar(&end, "end", "", "end time (default start)")
	cmd.Flags().StringVar(&notes, "notes", "", "notes")
	cmd.Flags().StringSliceVar(&fieldPairs, "field", nil, "extra field key=value")
	cmd.Flags().BoolVar(&force, "force", false, "override advisory conflicts")
	return cmd
}

func newCheckCmd(flags *globalFlags) *cobra.Command {
	var start, end string
	cmd := &cobra.Command{
		Use:   "check <kind>",
		Short: "Report conflicts for a proposed activity without recording it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			from, err := parseWhen(start, now)
			if err != nil {
				return err
			}
			to, err := parseWhen(end, now)
			if err != nil {
				return err
			}
			return withApp(flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.ConflictCLI.Check(ctx, app.Config.BabyID, args[0], from, to)
				if err != nil {
					return err
				}
				if len(out.Conflicts) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "clear")
					return nil
				}
				for _, c := range out.Conflicts {
					printConflict(cmd.OutOrStdout(), c)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "proposed start (default now)")
	cmd.Flags().StringVar(&end, "end", "", "proposed end (default open)")
	return cmd
}

func newTimelineCmd(flags *globalFlags) *cobra.Command {
	var day string
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "List saved entries for a day",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := parseDay(day, time.Now())
			if err != nil {
				return err
			}
			from := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
			return withApp(flags, func(ctx context.Context, app *bootstrap.App) error {
				records, err := app.TrackingCLI.Timeline(ctx, app.Config.BabyID, from, from.AddDate(0, 0, 1))
				if err != nil {
					return err
				}
				if len(records) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no entries")
					return nil
				}
				for _, r := range records {
					printRecord(cmd.OutOrStdout(), r)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&day, "day", "", "day as YYYY-MM-DD (default today, UTC)")
	return cmd
}

func newExportCmd(flags *globalFlags) *cobra.Command {
	var day string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a day's entries to a markdown journal note",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := parseDay(day, time.Now())
			if err != nil {
				return err
			}
			return withApp(flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.TrackingCLI.Export(ctx, app.Config.BabyID, d)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "exported %d entries to %s\n", out.Entries, out.Path)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&day, "day", "", "day as YYYY-MM-DD (default today, UTC)")
	return cmd
}

func newConfigCmd(flags *globalFlags) *cobra.Command {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration commands"}
	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a default config.yaml into the data directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Default(flags.dataDir)
			if strings.TrimSpace(flags.babyID) != "" {
				cfg.BabyID = flags.babyID
			}
			if err := config.Write(cfg); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote config for baby %s in %s\n", cfg.BabyID, cfg.DataDir)
			return nil
		},
	})
	return cfgCmd
}

// withConflictHint tells the user how to override an advisory conflict.
func withConflictHint(err error) error {
	if errors.Is(err, apperrors.ErrOverrideRequired) {
		return fmt.Errorf("%w (rerun with --force to record anyway)", err)
	}
	return err
}

func printWarnings(w io.Writer, warnings []string) {
	for _, warning := range warnings {
		_, _ = fmt.Fprintf(w, "warning: overrode %s\n", warning)
	}
}

func printSession(w io.Writer, s dto.ActiveSessionOutput) {
	_, _ = fmt.Fprintf(w, "%s\t%s\t%s\tsince=%s", s.Kind, s.Status, formatSeconds(s.TotalSeconds), s.StartTime.Format(time.RFC3339))
	if s.Kind == "nursing" {
		_, _ = fmt.Fprintf(w, "\tleft=%s right=%s paused=%s", formatSeconds(s.LeftSeconds), formatSeconds(s.RightSeconds), formatSeconds(s.PausedSeconds))
	}
	_, _ = fmt.Fprintln(w)
}

func printRecord(w io.Writer, r dto.RecordOutput) {
	_, _ = fmt.Fprintf(w, "%s\t%s\t%s-%s\t%s", r.ID, r.Kind, r.StartTime.Format(time.RFC3339), r.EndTime.Format(time.RFC3339), formatSeconds(r.Seconds))
	if r.Notes != "" {
		_, _ = fmt.Fprintf(w, "\t%s", r.Notes)
	}
	_, _ = fmt.Fprintln(w)
}

func printConflict(w io.Writer, c conflictdto.ConflictOutput) {
	label := "blocking"
	if c.Overridable {
		label = "advisory"
	}
	_, _ = fmt.Fprintf(w, "%s (%s): %s\n", c.Kind, label, c.Message)
	for _, a := range c.Activities {
		_, _ = fmt.Fprintf(w, "  - %s %s\n", a.ID, a.Description)
	}
}
