package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aretw0/remindme"
)

var errIncomplete = errors.New("some reminders were left in place")

var (
	saveInclude string
	saveDryRun  bool
)

// saveCmd represents the save command
var saveCmd = &cobra.Command{
	Use:   "save [note-id]",
	Short: "Route the reminders of a note to their daily notes",
	Long: `Route every reminder of the given note, or of the active note when no id
is given. With --include, every note whose path matches the glob is processed
in turn. Reminders that could not be routed stay in place for the next run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if saveInclude != "" && len(args) > 0 {
			return errors.New("a note id and --include cannot be combined")
		}
		ctx := cmd.Context()

		s, err := loadSettings(viper.GetViper())
		if err != nil {
			return err
		}
		opts := s.options(slog.Default())
		if saveDryRun {
			opts = append(opts, remindme.WithReadOnly(true))
		}
		vault, err := remindme.New(ctx, s.Vault, opts...)
		if err != nil {
			return fmt.Errorf("open vault: %w", err)
		}

		sources := []string{""}
		if len(args) == 1 {
			sources = args
		}
		if saveInclude != "" {
			if sources, err = vault.Service.MatchNotes(ctx, saveInclude); err != nil {
				return err
			}
			if len(sources) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no notes match %s\n", saveInclude)
				return nil
			}
		}

		out := cmd.OutOrStdout()
		incomplete := false
		for _, source := range sources {
			if saveDryRun {
				p, err := vault.Runner.Preview(ctx, source)
				if err != nil {
					return err
				}
				printPreview(out, p)
				incomplete = incomplete || len(p.Failures) > 0
				continue
			}
			report, err := vault.Runner.Run(ctx, source)
			if err != nil {
				return err
			}
			printReport(out, report)
			incomplete = incomplete || report.Err() != nil
		}
		if incomplete {
			return errIncomplete
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(saveCmd)
	saveCmd.Flags().StringVar(&saveInclude, "include", "", `process every note matching the glob, e.g. "journal/**/*.md"`)
	saveCmd.Flags().BoolVarP(&saveDryRun, "dry-run", "n", false, "print the changes as a diff without writing")
}
