package app

import (
	"pydojo/internal/grading"
	"pydojo/internal/notify"
	"pydojo/internal/progress"
	"pydojo/internal/quiz"
)

type StartInfo struct {
	FirstTime  bool                  `json:"first_time"`
	Streak     progress.StreakChange `json:"streak"`
	StreakDays int                   `json:"streak_days"`
	NewBadges  []string              `json:"new_badges,omitempty"`
	Toasts     []notify.Toast        `json:"toasts,omitempty"`
}

// RunOutcome is everything one exercise submission produced.
type RunOutcome struct {
	LessonID     string                    `json:"lesson_id"`
	Attempt      int                       `json:"attempt"`
	Grade        grading.Result            `json:"grade"`
	Completed    bool                      `json:"completed"`
	Completion   progress.CompletionResult `json:"completion,omitzero"`
	NewBadges    []string                  `json:"new_badges,omitempty"`
	Toasts       []notify.Toast            `json:"toasts,omitempty"`
	StyleHints   []string                  `json:"style_hints,omitempty"`
	NextLessonID string                    `json:"next_lesson_id,omitempty"`
}

type LessonOutcome struct {
	LessonID     string                    `json:"lesson_id"`
	Completed    bool                      `json:"completed"`
	Completion   progress.CompletionResult `json:"completion,omitzero"`
	NewBadges    []string                  `json:"new_badges,omitempty"`
	Toasts       []notify.Toast            `json:"toasts,omitempty"`
	NextLessonID string                    `json:"next_lesson_id,omitempty"`
}

type QuizOutcome struct {
	Result     quiz.Result               `json:"result"`
	Completed  bool                      `json:"completed"`
	Completion progress.CompletionResult `json:"completion,omitzero"`
	BestScore  int                       `json:"best_score"`
	Attempts   int                       `json:"attempts"`
	NewBadges  []string                  `json:"new_badges,omitempty"`
	Toasts     []notify.Toast            `json:"toasts,omitempty"`
}
