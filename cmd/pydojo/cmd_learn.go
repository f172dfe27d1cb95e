package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"pydojo/internal/app"

	"github.com/spf13/cobra"
)

func newLessonsCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "lessons",
		Aliases: []string{"modules", "ls"},
		Short:   "List modules, lessons and quizzes",
		Args:    cobra.NoArgs,
		RunE: o.learning(func(cmd *cobra.Command, a *app.App, _ []string) error {
			listings := a.ModuleListings(cmd.Context())
			return emit(cmd.OutOrStdout(), a, listings, a.View().Modules(listings))
		}),
	}
}

func newLessonCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lesson <lesson-id>",
		Short: "Show a lesson's content and starter code",
		Args:  cobra.ExactArgs(1),
		RunE: o.learning(func(cmd *cobra.Command, a *app.App, args []string) error {
			page, err := a.LessonPage(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), a, page, a.View().Lesson(page))
		}),
	}
}

func newRunCmd(o *rootOptions) *cobra.Command {
	var showCode bool
	cmd := &cobra.Command{
		Use:   "run <lesson-id> <file.py|->",
		Short: "Grade your code against a lesson's exercise",
		Long:  "Simulates the program (assignments, print and f-strings), grades it against the\nlesson's checks and completes the lesson when every required check passes.\nUse - to read the code from stdin.",
		Args:  cobra.ExactArgs(2),
		RunE: o.learning(func(cmd *cobra.Command, a *app.App, args []string) error {
			source, err := readSource(cmd.InOrStdin(), args[1])
			if err != nil {
				return err
			}
			out, err := a.RunExercise(cmd.Context(), args[0], source)
			if err != nil {
				return err
			}
			var b strings.Builder
			v := a.View()
			if showCode {
				b.WriteString(v.Code(source) + "\n")
			}
			b.WriteString(v.Grade(app.GradeView(out.Grade)))
			if len(out.StyleHints) > 0 {
				b.WriteString(v.Suggestions(nil, out.StyleHints))
			}
			b.WriteString(v.Toasts(out.Toasts))
			if out.NextLessonID != "" && out.Grade.Passed {
				fmt.Fprintf(&b, "Next up: pydojo lesson %s\n", out.NextLessonID)
			}
			return emit(cmd.OutOrStdout(), a, out, b.String())
		}),
	}
	cmd.Flags().BoolVar(&showCode, "show-code", false, "echo the submitted code with syntax highlighting")
	return cmd
}

func newCompleteCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <lesson-id>",
		Short: "Mark a reading lesson as done",
		Args:  cobra.ExactArgs(1),
		RunE: o.learning(func(cmd *cobra.Command, a *app.App, args []string) error {
			out, err := a.CompleteReading(cmd.Context(), args[0])
			if errors.Is(err, app.ErrNeedsExercise) {
				return fmt.Errorf("%w; submit it with `pydojo run %s <file.py>`", err, args[0])
			}
			if err != nil {
				return err
			}
			text := a.View().Toasts(out.Toasts)
			if !out.Completed {
				text = "Lesson already completed.\n"
			}
			if out.NextLessonID != "" {
				text += fmt.Sprintf("Next up: pydojo lesson %s\n", out.NextLessonID)
			}
			return emit(cmd.OutOrStdout(), a, out, text)
		}),
	}
}

func newFavoriteCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "favorite <lesson-id>",
		Aliases: []string{"fav"},
		Short:   "Toggle a lesson as favorite",
		Args:    cobra.ExactArgs(1),
		RunE: o.learning(func(cmd *cobra.Command, a *app.App, args []string) error {
			on, err := a.ToggleFavorite(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			text := fmt.Sprintf("Removed %s from favorites.\n", args[0])
			if on {
				text = fmt.Sprintf("Added %s to favorites.\n", args[0])
			}
			return emit(cmd.OutOrStdout(), a, map[string]any{"lesson_id": args[0], "favorite": on}, text)
		}),
	}
}

func newNoteCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "note <lesson-id> [text...]",
		Short: "Save a note on a lesson (no text clears it)",
		Args:  cobra.MinimumNArgs(1),
		RunE: o.learning(func(cmd *cobra.Command, a *app.App, args []string) error {
			text := strings.Join(args[1:], " ")
			if err := a.SetNote(cmd.Context(), args[0], text); err != nil {
				return err
			}
			msg := "Note saved.\n"
			if strings.TrimSpace(text) == "" {
				msg = "Note cleared.\n"
			}
			return emit(cmd.OutOrStdout(), a, map[string]any{"lesson_id": args[0], "note": text}, msg)
		}),
	}
}

func readSource(stdin io.Reader, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
