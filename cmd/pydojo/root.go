package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"pydojo/internal/app"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type rootOptions struct {
	dataDir       string
	curriculumDir string
	logPath       string
	theme         string
	format        string
	width         int
	ascii         bool
	debug         bool
}

type runFunc func(cmd *cobra.Command, a *app.App, args []string) error

func newRootCmd() *cobra.Command {
	o := &rootOptions{}
	root := &cobra.Command{
		Use:           "pydojo",
		Short:         "Learn Python in the terminal",
		Long:          "pydojo teaches Python basics with short lessons, graded exercises and quizzes.\nProgress, streaks and badges are kept in a local data directory.",
		Version:       app.AppVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("pydojo {{.Version}}\n")

	pf := root.PersistentFlags()
	pf.StringVar(&o.dataDir, "data-dir", "", "directory for progress and settings (env PYDOJO_DATA_DIR)")
	pf.StringVar(&o.curriculumDir, "curriculum-dir", "", "load lessons from this directory instead of the built-in set")
	pf.StringVar(&o.logPath, "log-path", "", "append JSON logs to this file")
	pf.StringVar(&o.theme, "theme", "", "style variant: modern_arcade, cozy_clean or retro_terminal")
	pf.StringVar(&o.format, "format", "", "output format: text or json")
	pf.IntVar(&o.width, "width", 0, "render width in columns (default: terminal width)")
	pf.BoolVar(&o.ascii, "ascii", false, "plain ASCII output without colors or emoji")
	pf.BoolVar(&o.debug, "debug", false, "log debug events")

	root.AddCommand(
		newDashboardCmd(o),
		newLessonsCmd(o),
		newLessonCmd(o),
		newRunCmd(o),
		newCompleteCmd(o),
		newQuizCmd(o),
		newFavoriteCmd(o),
		newNoteCmd(o),
		newBadgesCmd(o),
		newResetCmd(o),
		newLoginCmd(o),
		newLogoutCmd(o),
		newWhoAmICmd(o),
		newPasswdCmd(o),
		newSuggestCmd(o),
		newThemeCmd(o),
		newDevCmd(o),
	)
	root.AddCommand(newManCmd(root))
	return root
}

// config layers flags over the environment over defaults.
func (o *rootOptions) config(cmd *cobra.Command) (app.Config, error) {
	cfg, err := app.LoadConfig(nil)
	if err != nil {
		return app.Config{}, err
	}
	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.DataDir = o.dataDir
	}
	if flags.Changed("curriculum-dir") {
		cfg.CurriculumDir = o.curriculumDir
	}
	if flags.Changed("log-path") {
		cfg.LogPath = o.logPath
	}
	if flags.Changed("theme") {
		cfg.UI.StyleVariant = o.theme
	}
	if flags.Changed("format") {
		cfg.OutputFormat = o.format
	}
	if flags.Changed("width") {
		cfg.UI.Width = o.width
	}
	if flags.Changed("ascii") {
		cfg.UI.ASCIIOnly = o.ascii
	} else if !stdoutIsTerminal() {
		cfg.UI.ASCIIOnly = true
	}
	if flags.Changed("debug") {
		cfg.Debug = o.debug
	}
	if cfg.UI.Width == 0 {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
			cfg.UI.Width = w
		}
	}
	if err := cfg.Validate(); err != nil {
		return app.Config{}, err
	}
	return cfg, nil
}

func (o *rootOptions) open(cmd *cobra.Command) (*app.App, error) {
	cfg, err := o.config(cmd)
	if err != nil {
		return nil, err
	}
	return app.New(cmd.Context(), cfg)
}

// learning wraps commands that touch progress: they honor the login gate and
// greet the learner with any streak or welcome toasts.
func (o *rootOptions) learning(fn runFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := o.open(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		if _, err := a.RequireUser(cmd.Context()); err != nil {
			return err
		}
		info := a.Start(cmd.Context())
		if !jsonOutput(a) {
			fmt.Fprint(cmd.OutOrStdout(), a.View().Toasts(info.Toasts))
		}
		return fn(cmd, a, args)
	}
}

func (o *rootOptions) plain(fn runFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := o.open(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, a, args)
	}
}

func jsonOutput(a *app.App) bool {
	return a.Config().OutputFormat == string(app.FormatJSON)
}

// emit writes v as JSON in json mode, otherwise the text rendering.
func emit(w io.Writer, a *app.App, v any, text string) error {
	if jsonOutput(a) {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := io.WriteString(w, text)
	return err
}

func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func stdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
