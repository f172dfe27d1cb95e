package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"

	"pydojo/internal/completion"
	"pydojo/internal/notify"
	"pydojo/internal/progress"
)

var fixedNow = time.Date(2026, time.April, 10, 12, 0, 0, 0, time.UTC)

func newASCIIRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer(Options{ASCII: true, Width: 80, Now: func() time.Time { return fixedNow }})
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return r
}

func TestDashboardASCII(t *testing.T) {
	r := newASCIIRenderer(t)
	out := r.Dashboard(DashboardState{
		Username:         "admin",
		Level:            2,
		XP:               1250,
		XPToNext:         50,
		LevelPercent:     50,
		StreakDays:       1,
		LastActive:       fixedNow.Add(-48 * time.Hour),
		LessonsDone:      3,
		TimeSpentMinutes: 95,
		CodeRuns:         12,
		Passes:           4,
		Modules: []ModuleRow{
			{ID: "fundamentals", Title: "Python Fundamentals", Done: 2, Total: 3, Percent: 67, Current: true},
		},
		RecentRuns: []RunRow{{LessonID: "fundamentals_fstrings", Verdict: "partial", Attempt: 2, At: fixedNow.Add(-time.Hour)}},
		Tip:        "💪 Keep going!",
	})
	for _, want := range []string{
		"Level 2", "1,250 XP", "@admin",
		"[##########----------]  50%",
		"Streak: 1 day", "2 days ago", "1h 35m",
		"Python Fundamentals", "2/3",
		"PARTIAL fundamentals_fstrings attempt 2, 1 hour ago",
		"Keep going!",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("dashboard missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "💪") || strings.Contains(out, "\x1b[") {
		t.Fatalf("ascii output must be plain:\n%s", out)
	}
}

func TestLastActiveNever(t *testing.T) {
	r := newASCIIRenderer(t)
	if out := r.Dashboard(DashboardState{Level: 1}); !strings.Contains(out, "Last active: never") {
		t.Fatalf("expected never:\n%s", out)
	}
}

func TestToastsASCIIDropsEmoji(t *testing.T) {
	r := newASCIIRenderer(t)
	toasts := notify.Toasts(notify.Data{LevelUp: &notify.LevelUp{NewLevel: 2, PreviousLevel: 1}})
	out := r.Toasts(toasts)
	if !strings.Contains(out, "* Level Up! You've reached level 2!") {
		t.Fatalf("unexpected toast output %q", out)
	}
	if strings.Contains(out, "🎉") {
		t.Fatalf("emoji must be stripped: %q", out)
	}
}

func TestGradeRendersChecksAndHint(t *testing.T) {
	r := newASCIIRenderer(t)
	out := r.Grade(GradeView{
		LessonID: "fundamentals_variables_intro",
		Verdict:  "partial",
		Attempt:  3,
		Feedback: "Almost there!",
		Output:   "Python is 4 years old\n",
		Hint:     "Use an f-string.",
		Motivate: true,
		Checks: []CheckLine{
			{ID: "name", Description: "name is set", Required: true, Passed: true},
			{ID: "out", Description: "prints the sentence", Required: true, Message: "Check the number."},
		},
		Suggestions: []string{"name"},
	})
	for _, want := range []string{
		"PARTIAL fundamentals_variables_intro (attempt 3)",
		"[x] name is set",
		"[ ] prints the sentence",
		"Check the number.",
		"  Python is 4 years old",
		"Hint: Use an f-string.",
		"Did you mean: name",
		"Don't give up!",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("grade output missing %q:\n%s", want, out)
		}
	}
}

func TestCodeASCIINumbersLines(t *testing.T) {
	r := newASCIIRenderer(t)
	got := r.Code("name = \"Python\"\nprint(name)\n")
	want := "  1 | name = \"Python\"\n  2 | print(name)\n"
	if got != want {
		t.Fatalf("unexpected code rendering %q", got)
	}
}

func TestCodeHighlightedKeepsSource(t *testing.T) {
	r, err := NewRenderer(Options{Variant: "retro_terminal", Width: 100})
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out := ansi.Strip(r.Code("print(\"hi\")"))
	if !strings.Contains(out, "print(\"hi\")") {
		t.Fatalf("highlighted code lost text: %q", out)
	}
}

func TestLessonPageMarkdownAndStarter(t *testing.T) {
	r := newASCIIRenderer(t)
	out := r.Lesson(LessonPage{
		LessonID:    "fundamentals_variables_intro",
		Title:       "Variables",
		ModuleTitle: "Python Fundamentals",
		Difficulty:  "beginner",
		Minutes:     15,
		XP:          25,
		ContentMD:   "# Storing values\n\nUse `name = value` to create a variable.",
		StarterCode: "name = \"\"\n",
		HasExercise: true,
		Favorite:    true,
		Note:        "remember quotes",
	})
	for _, want := range []string{"Variables *", "beginner | 15 min | 25 XP", "Storing values", "1 | name = \"\"", "pydojo run fundamentals_variables_intro", "remember quotes"} {
		if !strings.Contains(out, want) {
			t.Fatalf("lesson page missing %q:\n%s", want, out)
		}
	}
}

func TestBadgesCountsEarned(t *testing.T) {
	r := newASCIIRenderer(t)
	var rows []BadgeRow
	for _, a := range progress.Achievements() {
		rows = append(rows, BadgeRow{Achievement: a, Earned: a.ID == progress.BadgeFirstLesson})
	}
	out := r.Badges(rows)
	if !strings.Contains(out, "[x] First Steps! [common, +10 XP]") {
		t.Fatalf("expected earned first lesson badge:\n%s", out)
	}
	if !strings.Contains(out, "1 of 10 badges earned") {
		t.Fatalf("expected earned count:\n%s", out)
	}
}

func TestQuizViews(t *testing.T) {
	r := newASCIIRenderer(t)
	q := r.Question(QuestionView{Index: 1, Total: 4, Prompt: "Which is a string?", Remaining: 29600 * time.Millisecond, Options: []OptionView{{ID: "a", Text: "\"5\""}, {ID: "b", Text: "5"}}})
	if !strings.Contains(q, "Question 2 of 4  time: 30s left") || !strings.Contains(q, "  a) \"5\"") {
		t.Fatalf("unexpected question view:\n%s", q)
	}
	a := r.Answer(AnswerView{TimedOut: true, CorrectText: "\"5\"", Explanation: "Quotes make strings."})
	if !strings.HasPrefix(a, "Time's up! The answer is: \"5\"") {
		t.Fatalf("unexpected answer view %q", a)
	}
	res := r.QuizResult(QuizResultView{Title: "Basics", Score: 75, Correct: 3, Total: 4, Passing: 70, Passed: true, BestScore: 75})
	if !strings.Contains(res, "3 of 4 correct") || !strings.Contains(res, "Passed (needed 70%)") {
		t.Fatalf("unexpected result view:\n%s", res)
	}
}

func TestSuggestionsView(t *testing.T) {
	r := newASCIIRenderer(t)
	out := r.Suggestions(completion.Suggest("pri", 3), []string{"Use f-strings"})
	if !strings.Contains(out, "print") || !strings.Contains(out, "Tip: Use f-strings") {
		t.Fatalf("unexpected suggestions:\n%s", out)
	}
	if empty := r.Suggestions(nil, nil); !strings.Contains(empty, "No completions.") {
		t.Fatalf("expected empty marker, got %q", empty)
	}
}

func TestThemeVariantsFallback(t *testing.T) {
	for _, v := range ThemeVariants() {
		if got := ThemeForVariant(v).Name; got != v {
			t.Fatalf("variant %q resolved to %q", v, got)
		}
	}
	if got := ThemeForVariant("unknown").Name; got != "modern_arcade" {
		t.Fatalf("expected fallback theme, got %q", got)
	}
}
