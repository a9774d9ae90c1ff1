package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aretw0/remindme"
	"github.com/aretw0/remindme/pkg/reminder"
)

var (
	cfgFile   string
	verbose   bool
	configErr error
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "remindme",
	Short: "Route inline reminders in markdown notes to the daily notes they are due on",
	Long: `remindme scans a note for reminder lines such as

  - /remind call the dentist @ next friday

appends each one as a checklist item under the reminder header of the daily
note it resolves to, and strikes the line out in the source note.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configErr != nil {
			return configErr
		}
		level := viper.GetString("logging.level")
		if verbose {
			level = "debug"
		}
		logger, err := newLogger(cmd.ErrOrStderr(), level, viper.GetString("logging.format"))
		if err != nil {
			return err
		}
		slog.SetDefault(logger)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: remindme.yaml at the vault root)")
	flags.String("vault", "", "vault directory (default: nearest vault root above the working directory)")
	flags.String("active", "", "note processed when no note id is given (default: most recently modified note)")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("log-format", "text", "log format: text or json")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	bindFlags(viper.GetViper())
}

func bindFlags(v *viper.Viper) {
	flags := rootCmd.PersistentFlags()
	_ = v.BindPFlag("vault", flags.Lookup("vault"))
	_ = v.BindPFlag("active_note", flags.Lookup("active"))
	_ = v.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = v.BindPFlag("logging.format", flags.Lookup("log-format"))
}

func initConfig() {
	configErr = nil
	viper.SetEnvPrefix("REMINDME")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
	setDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(vaultDir())
		viper.SetConfigName(strings.TrimSuffix(configFileName, ".yaml"))
		viper.SetConfigType("yaml")
	}
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			configErr = fmt.Errorf("read config: %w", err)
		}
	}
}

const (
	configFileName     = "remindme.yaml"
	defaultQuietPeriod = 3 * time.Second
)

func setDefaults(v *viper.Viper) {
	d := reminder.DefaultConfig()
	v.SetDefault("triggers", d.Triggers)
	v.SetDefault("negation_marker", d.NegationMarker)
	v.SetDefault("separator", d.Separator)
	v.SetDefault("default_when", d.DefaultWhen)
	v.SetDefault("header", d.Header)
	v.SetDefault("list_markers", d.ListMarkers)
	v.SetDefault("daily_notes_folder", "")
	v.SetDefault("date_layout", "2006-01-02")
	v.SetDefault("daily_note_template", "")
	v.SetDefault("concurrency", 0)
	v.SetDefault("git.commit", true)
	v.SetDefault("watch.quiet_period", defaultQuietPeriod)
}

// vaultDir is the --vault flag, or the nearest vault root, or the working directory.
func vaultDir() string {
	if dir := viper.GetString("vault"); dir != "" {
		return dir
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	if root, err := remindme.FindRoot(cwd); err == nil {
		return root
	}
	return cwd
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}
