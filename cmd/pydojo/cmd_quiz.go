package main

import (
	"fmt"

	"pydojo/internal/app"

	"github.com/spf13/cobra"
)

func newQuizCmd(o *rootOptions) *cobra.Command {
	var lineMode bool
	cmd := &cobra.Command{
		Use:   "quiz <quiz-id>",
		Short: "Take a quiz",
		Long:  "Takes a quiz full-screen when run in a terminal. With --lines, or when stdin\nis not a terminal, answers are read one per line (option id or number).",
		Args:  cobra.ExactArgs(1),
		RunE: o.learning(func(cmd *cobra.Command, a *app.App, args []string) error {
			ctx := cmd.Context()
			if lineMode || jsonOutput(a) || !stdinIsTerminal() || !stdoutIsTerminal() {
				transcript := cmd.OutOrStdout()
				if jsonOutput(a) {
					transcript = cmd.ErrOrStderr()
				}
				out, err := a.PlayQuiz(ctx, args[0], cmd.InOrStdin(), transcript)
				if err != nil {
					return err
				}
				return emit(cmd.OutOrStdout(), a, out, "")
			}

			out, finished, err := a.PlayQuizScreen(ctx, args[0], cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if !finished {
				fmt.Fprintln(cmd.OutOrStdout(), "Quiz abandoned. Nothing was recorded.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Score %d%% (%d of %d), best %d%% over %d attempt(s).\n",
				out.Result.Score, out.Result.Correct, out.Result.Total, out.BestScore, out.Attempts)
			fmt.Fprint(cmd.OutOrStdout(), a.View().Toasts(out.Toasts))
			return nil
		}),
	}
	cmd.Flags().BoolVar(&lineMode, "lines", false, "read answers line by line instead of the full-screen player")
	return cmd
}
