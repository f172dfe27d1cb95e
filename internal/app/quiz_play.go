package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"pydojo/internal/curriculum"
	"pydojo/internal/quiz"
	"pydojo/internal/ui"
)

// PlayQuiz runs an interactive quiz over line-oriented input. Each question
// gets its own countdown when the quiz declares a time limit; a question that
// runs out of time moves on with no answer.
func (a *App) PlayQuiz(ctx context.Context, quizID string, in io.Reader, out io.Writer) (QuizOutcome, error) {
	q, err := a.catalog.Quiz(quizID)
	if err != nil {
		return QuizOutcome{}, err
	}
	if len(q.Questions) == 0 {
		return QuizOutcome{}, fmt.Errorf("quiz %s has no questions", quizID)
	}
	a.Start(ctx)
	view := a.View()
	sess := quiz.NewSession(q)

	fmt.Fprintf(out, "%s (%d questions, pass at %d%%)\n", q.Title, len(q.Questions), q.PassingScore)
	if q.TimeLimitSeconds > 0 {
		fmt.Fprintf(out, "You have %ds per question. Type the option id, or \"hint\".\n\n", q.TimeLimitSeconds)
	} else {
		fmt.Fprint(out, "Type the option id, or \"hint\".\n\n")
	}

	readCtx, stopReading := context.WithCancel(ctx)
	defer stopReading()
	lines := readLines(readCtx, in)
	limit := time.Duration(q.TimeLimitSeconds) * time.Second
	tick := time.Duration(a.cfg.Gameplay.QuizTickMS) * time.Millisecond

	for !sess.Finished() {
		question, ok := sess.Current()
		if !ok {
			break
		}
		fmt.Fprint(out, view.Question(questionView(sess, question, limit, "")))
		cd := quiz.StartCountdown(ctx, limit, tick)
		answered := false
		for !answered {
			select {
			case <-ctx.Done():
				cd.Stop()
				return QuizOutcome{}, ctx.Err()
			case <-cd.Expired():
				cd.Stop()
				fmt.Fprint(out, view.Answer(ui.AnswerView{TimedOut: true, CorrectText: correctText(question)}))
				sess.TimeUp()
				answered = true
			case line, open := <-lines:
				if !open {
					cd.Stop()
					sess.TimeUp()
					answered = true
					continue
				}
				input := strings.TrimSpace(line)
				switch {
				case input == "":
					continue
				case strings.EqualFold(input, "hint"):
					hint := question.Hint
					if hint == "" {
						hint = "No hint for this one."
					}
					fmt.Fprint(out, view.Question(questionView(sess, question, cd.Remaining(), hint)))
					continue
				}
				id := resolveOption(question, input)
				if err := sess.Select(id); err != nil {
					fmt.Fprintf(out, "Pick one of: %s\n", strings.Join(optionIDs(question), ", "))
					continue
				}
				cd.Stop()
				res, err := sess.Submit()
				if err != nil {
					return QuizOutcome{}, err
				}
				fmt.Fprint(out, view.Answer(ui.AnswerView{
					Correct:     res.Correct,
					CorrectText: res.Answer.Text,
					Explanation: res.Explanation,
				}))
				sess.Next()
				answered = true
			}
		}
		fmt.Fprintln(out)
	}

	res := sess.Result()
	outcome, err := a.SubmitQuiz(ctx, quizID, res)
	if err != nil {
		return QuizOutcome{}, err
	}
	fmt.Fprint(out, view.QuizResult(ui.QuizResultView{
		Title:     q.Title,
		Score:     res.Score,
		Correct:   res.Correct,
		Total:     res.Total,
		Passing:   q.PassingScore,
		Passed:    res.Passed,
		Perfect:   res.Perfect,
		BestScore: outcome.BestScore,
	}))
	fmt.Fprint(out, view.Toasts(outcome.Toasts))
	return outcome, nil
}

// PlayQuizScreen runs the full-screen quiz player. The bool is false when the
// learner quit before the last question, in which case nothing is recorded.
func (a *App) PlayQuizScreen(ctx context.Context, quizID string, in io.Reader, out io.Writer) (QuizOutcome, bool, error) {
	q, err := a.catalog.Quiz(quizID)
	if err != nil {
		return QuizOutcome{}, false, err
	}
	if len(q.Questions) == 0 {
		return QuizOutcome{}, false, fmt.Errorf("quiz %s has no questions", quizID)
	}
	a.Start(ctx)
	root := ui.NewQuizRoot(ui.QuizOptions{
		Quiz:    q,
		Variant: a.cfg.UI.StyleVariant,
		ASCII:   a.cfg.UI.ASCIIOnly,
		Tick:    time.Duration(a.cfg.Gameplay.QuizTickMS) * time.Millisecond,
	})
	if err := ui.RunQuiz(ctx, root, in, out); err != nil {
		return QuizOutcome{}, false, fmt.Errorf("quiz screen: %w", err)
	}
	res, ok := root.Result()
	if !ok {
		a.logger.Info("quiz.abandoned", map[string]any{"quiz_id": quizID})
		return QuizOutcome{}, false, nil
	}
	outcome, err := a.SubmitQuiz(ctx, quizID, res)
	return outcome, err == nil, err
}

// readLines feeds scanned lines to the returned channel until input ends or
// ctx is cancelled.
func readLines(ctx context.Context, in io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case ch <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

func questionView(sess *quiz.Session, q curriculum.Question, remaining time.Duration, hint string) ui.QuestionView {
	qv := ui.QuestionView{
		Index:     sess.Index(),
		Total:     sess.Len(),
		Prompt:    q.Prompt,
		Remaining: remaining,
		Hint:      hint,
	}
	for _, o := range q.Options {
		qv.Options = append(qv.Options, ui.OptionView{ID: o.ID, Text: o.Text})
	}
	return qv
}

// resolveOption accepts an option id in any case, or its 1-based position.
func resolveOption(q curriculum.Question, input string) string {
	for _, o := range q.Options {
		if strings.EqualFold(o.ID, input) {
			return o.ID
		}
	}
	if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(q.Options) {
		return q.Options[n-1].ID
	}
	return input
}

func optionIDs(q curriculum.Question) []string {
	ids := make([]string, 0, len(q.Options))
	for _, o := range q.Options {
		ids = append(ids, o.ID)
	}
	return ids
}

func correctText(q curriculum.Question) string {
	if o, ok := q.CorrectOption(); ok {
		return o.Text
	}
	return ""
}
