package ui

import (
	"time"

	"pydojo/internal/completion"
	"pydojo/internal/notify"
	"pydojo/internal/progress"
)

// View turns app state into terminal text. Implementations never write to
// the terminal themselves.
type View interface {
	Dashboard(state DashboardState) string
	Modules(modules []ModuleListing) string
	Lesson(page LessonPage) string
	Code(source string) string
	Grade(g GradeView) string
	Toasts(toasts []notify.Toast) string
	Badges(rows []BadgeRow) string
	Suggestions(items []completion.Suggestion, hints []string) string
	Question(q QuestionView) string
	Answer(a AnswerView) string
	QuizResult(r QuizResultView) string
}

type LayoutMode int

const (
	LayoutWide LayoutMode = iota
	LayoutMedium
	LayoutNarrow
)

type DashboardState struct {
	Username         string
	Level            int
	XP               int
	XPToNext         int
	LevelPercent     int
	StreakDays       int
	LastActive       time.Time
	StartDate        time.Time
	LessonsDone      int
	QuizzesDone      int
	BadgeCount       int
	TimeSpentMinutes int
	CodeRuns         int
	Passes           int
	CurrentModule    string
	Modules          []ModuleRow
	RecentRuns       []RunRow
	Tip              string
}

type ModuleRow struct {
	ID      string
	Title   string
	Done    int
	Total   int
	Percent int
	Current bool
}

type RunRow struct {
	LessonID string
	Verdict  string
	Attempt  int
	At       time.Time
}

type ModuleListing struct {
	ModuleID string
	Title    string
	Percent  int
	Lessons  []LessonRow
	Quizzes  []QuizRow
}

type LessonRow struct {
	LessonID   string
	Title      string
	Difficulty string
	Minutes    int
	XP         int
	Completed  bool
	Favorite   bool
}

type QuizRow struct {
	QuizID    string
	Title     string
	Questions int
	BestScore int
	Attempts  int
	Completed bool
}

type LessonPage struct {
	LessonID    string
	Title       string
	ModuleTitle string
	Difficulty  string
	Minutes     int
	XP          int
	ContentMD   string
	StarterCode string
	Note        string
	HasExercise bool
	Completed   bool
	Favorite    bool
}

type GradeView struct {
	LessonID    string
	Verdict     string
	Attempt     int
	Feedback    string
	Output      string
	Hint        string
	Motivate    bool
	Checks      []CheckLine
	Diff        string
	Suggestions []string
}

type CheckLine struct {
	ID          string
	Description string
	Required    bool
	Passed      bool
	Message     string
}

type BadgeRow struct {
	Achievement progress.Achievement
	Earned      bool
}

type QuestionView struct {
	Index     int
	Total     int
	Prompt    string
	Options   []OptionView
	Remaining time.Duration
	Hint      string
}

type OptionView struct {
	ID   string
	Text string
}

type AnswerView struct {
	Correct     bool
	TimedOut    bool
	CorrectText string
	Explanation string
}

type QuizResultView struct {
	Title     string
	Score     int
	Correct   int
	Total     int
	Passing   int
	Passed    bool
	Perfect   bool
	BestScore int
}
