package ui

import (
	"strings"
	"testing"
	"time"

	"pydojo/internal/curriculum"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
)

func sampleQuiz(limit int) curriculum.Quiz {
	return curriculum.Quiz{
		QuizID:           "basics_quiz",
		Title:            "Basics",
		PassingScore:     50,
		TimeLimitSeconds: limit,
		Questions: []curriculum.Question{
			{
				ID:     "q1",
				Prompt: "2 + 2?",
				Hint:   "count on your fingers",
				Options: []curriculum.Option{
					{ID: "a", Text: "3"},
					{ID: "b", Text: "4", Correct: true},
				},
				Explanation: "two plus two is four",
			},
			{
				ID:     "q2",
				Prompt: "Which is a bool?",
				Options: []curriculum.Option{
					{ID: "a", Text: "True", Correct: true},
					{ID: "b", Text: "\"True\""},
				},
			},
		},
	}
}

func press(v *QuizRoot, code rune, text string) {
	_, _ = v.Update(tea.KeyPressMsg{Code: code, Text: text})
}

func TestQuizRootArrowAndEnterAnswers(t *testing.T) {
	v := NewQuizRoot(QuizOptions{Quiz: sampleQuiz(0), ASCII: true})

	press(v, tea.KeyDown, "")
	press(v, tea.KeyEnter, "")
	if !v.revealed || !v.answer.Correct {
		t.Fatalf("expected correct answer revealed, got %#v", v.answer)
	}
	if !strings.Contains(v.Render(), "Correct!") {
		t.Fatalf("expected correct banner in view")
	}
	press(v, tea.KeyEnter, "")
	if v.revealed || v.sess.Index() != 1 {
		t.Fatalf("expected to advance to question 2")
	}

	press(v, 'b', "b")
	press(v, tea.KeyEnter, "")
	res, ok := v.Result()
	if !ok {
		t.Fatalf("expected finished quiz")
	}
	if res.Correct != 1 || res.Score != 50 || !res.Passed {
		t.Fatalf("unexpected result: %#v", res)
	}
	if !strings.Contains(v.Render(), "Passed (needed 50%)") {
		t.Fatalf("expected result screen, got:\n%s", v.Render())
	}
}

func TestQuizRootHintToggle(t *testing.T) {
	v := NewQuizRoot(QuizOptions{Quiz: sampleQuiz(0), ASCII: true})
	press(v, '?', "?")
	if !strings.Contains(v.Render(), "Hint: count on your fingers") {
		t.Fatalf("expected hint in view")
	}
	press(v, '?', "?")
	if strings.Contains(v.Render(), "Hint:") {
		t.Fatalf("expected hint hidden again")
	}
}

func TestQuizRootTimesOutQuestion(t *testing.T) {
	v := NewQuizRoot(QuizOptions{Quiz: sampleQuiz(1), ASCII: true, Tick: 500 * time.Millisecond})
	_, _ = v.Update(clockMsg(time.Now()))
	if v.revealed {
		t.Fatalf("question should still be open after half the limit")
	}
	_, _ = v.Update(clockMsg(time.Now()))
	if !v.revealed || !v.timedOut {
		t.Fatalf("expected timeout after the full limit")
	}
	if content := ansi.Strip(v.Render()); !strings.Contains(content, "Time's up! The answer is: 4") {
		t.Fatalf("expected timeout banner, got:\n%s", content)
	}
	press(v, 'a', "a")
	if v.sess.Index() != 0 {
		t.Fatalf("answers are locked once time is up")
	}
	press(v, tea.KeyEnter, "")
	if v.sess.Index() != 1 || v.remaining != time.Second {
		t.Fatalf("expected next question with a fresh timer, index=%d remaining=%s", v.sess.Index(), v.remaining)
	}
}

func TestQuizRootQuitEarlyHasNoResult(t *testing.T) {
	v := NewQuizRoot(QuizOptions{Quiz: sampleQuiz(0), ASCII: true})
	press(v, tea.KeyEsc, "")
	if _, ok := v.Result(); ok {
		t.Fatalf("quitting early must not produce a result")
	}
}

func TestOptionIndexAcceptsIDsAndPositions(t *testing.T) {
	q := sampleQuiz(0).Questions[0]
	if i, ok := optionIndex(q, "B"); !ok || i != 1 {
		t.Fatalf("expected id match, got %d %v", i, ok)
	}
	if i, ok := optionIndex(q, "1"); !ok || i != 0 {
		t.Fatalf("expected position match, got %d %v", i, ok)
	}
	if _, ok := optionIndex(q, "9"); ok {
		t.Fatalf("out of range position must not match")
	}
}

func TestTrimForWidth(t *testing.T) {
	if got := trimForWidth("hello world", 5); got != "hell~" {
		t.Fatalf("unexpected trim: %q", got)
	}
	if got := trimForWidth("hi", 5); got != "hi" {
		t.Fatalf("unexpected trim: %q", got)
	}
}
