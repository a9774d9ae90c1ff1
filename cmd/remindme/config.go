package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/remindme"
	"github.com/aretw0/remindme/pkg/reminder"
)

// settings is the effective configuration: remindme.yaml, REMINDME_* variables and flags.
type settings struct {
	reminder.Config `yaml:",inline" mapstructure:",squash"`

	Vault             string        `yaml:"vault,omitempty" mapstructure:"vault"`
	ActiveNote        string        `yaml:"active_note,omitempty" mapstructure:"active_note"`
	DailyNotesFolder  string        `yaml:"daily_notes_folder" mapstructure:"daily_notes_folder"`
	DateLayout        string        `yaml:"date_layout" mapstructure:"date_layout"`
	DailyNoteTemplate string        `yaml:"daily_note_template,omitempty" mapstructure:"daily_note_template"`
	Concurrency       int           `yaml:"concurrency,omitempty" mapstructure:"concurrency"`
	Git               gitSettings   `yaml:"git" mapstructure:"git"`
	Watch             watchSettings `yaml:"watch" mapstructure:"watch"`
	Logging           logSettings   `yaml:"logging" mapstructure:"logging"`
}

type watchSettings struct {
	// QuietPeriod is how long a note must stay unchanged before watch processes it,
	// so a half-typed reminder saved by an autosaving editor is not routed early.
	QuietPeriod time.Duration `yaml:"quiet_period" mapstructure:"quiet_period"`
}

type gitSettings struct {
	// Enabled is nil when unset: Git is then used only if the vault already is a repository.
	Enabled *bool `yaml:"enabled,omitempty" mapstructure:"enabled"`
	Commit  bool  `yaml:"commit" mapstructure:"commit"`
}

type logSettings struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

func loadSettings(v *viper.Viper) (settings, error) {
	var s settings
	if err := v.Unmarshal(&s); err != nil {
		return s, fmt.Errorf("decode config: %w", err)
	}
	if s.Vault == "" {
		s.Vault = vaultDir()
	}
	s.Config = s.Config.WithDefaults()
	return s, nil
}

// options translates the settings into vault options.
func (s settings) options(logger *slog.Logger) []remindme.Option {
	opts := []remindme.Option{
		remindme.WithLogger(logger),
		remindme.WithReminderConfig(s.Config),
		remindme.WithDailyNotes(s.DailyNotesFolder, s.DateLayout),
		remindme.WithActiveNote(s.ActiveNote),
		remindme.WithCommit(s.Git.Commit),
		remindme.WithConcurrency(s.Concurrency),
	}
	if s.DailyNoteTemplate != "" {
		opts = append(opts, remindme.WithDailyTemplate(s.DailyNoteTemplate))
	}
	if s.Git.Enabled != nil {
		opts = append(opts, remindme.WithVersioning(*s.Git.Enabled))
	}
	return opts
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(viper.GetViper())
		if err != nil {
			return err
		}
		if err := s.Validate(); err != nil {
			return err
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(s)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
