package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aretw0/remindme"
	"github.com/aretw0/remindme/pkg/adapters/lifecycle"
	"github.com/aretw0/remindme/pkg/core"
)

var watchInclude string

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Route reminders whenever a note changes",
	Long: `Watch the vault and run the reminder pipeline on every note that is created
or modified. Notes written by a run are seen again, but their reminders are
already negated, so the rerun changes nothing. Stop with Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		s, err := loadSettings(viper.GetViper())
		if err != nil {
			return err
		}
		logger := slog.Default()
		opts := append(s.options(logger),
			remindme.WithWatchDebounce(s.Watch.QuietPeriod),
			remindme.WithWatcherErrorHandler(func(err error) {
				logger.Error("watcher failed", "error", err)
			}),
		)
		vault, err := remindme.New(ctx, s.Vault, opts...)
		if err != nil {
			return fmt.Errorf("open vault: %w", err)
		}

		events, err := vault.Service.Watch(ctx, watchInclude)
		if err != nil {
			return err
		}
		source := lifecycle.NewSource(events)
		if err := source.Start(ctx); err != nil {
			return err
		}
		logger.Info("watching", "vault", s.Vault, "include", watchInclude, "quiet_period", s.Watch.QuietPeriod)

		out := cmd.OutOrStdout()
		// Runs are sequential so two runs never touch the same notes at once.
		for e := range source.Events() {
			ev, ok := e.(core.Event)
			if !ok || ev.Type == core.EventDelete {
				continue
			}
			report, err := vault.Runner.Run(ctx, ev.ID)
			if err != nil {
				logger.Warn("run rejected", "note", ev.ID, "error", err)
				continue
			}
			if report.Extracted > 0 || len(report.Failures) > 0 {
				printReport(out, report)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchInclude, "include", "", `only watch notes matching the glob, e.g. "journal/**/*.md"`)
	watchCmd.Flags().Duration("quiet-period", defaultQuietPeriod, "how long a note must stay unchanged before it is processed")
	_ = viper.BindPFlag("watch.quiet_period", watchCmd.Flags().Lookup("quiet-period"))
}
