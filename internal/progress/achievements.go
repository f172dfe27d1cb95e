package progress

import (
	"slices"
	"strings"
)

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

type AchievementType string

const (
	TypeFirstTime  AchievementType = "first_time"
	TypeCompletion AchievementType = "completion"
	TypeStreak     AchievementType = "streak"
	TypeLevel      AchievementType = "level"
)

// Achievement is a static catalog entry. XPBonus is shown to the learner but
// is not added to the record.
type Achievement struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Icon        string          `json:"icon"`
	Type        AchievementType `json:"type"`
	XPBonus     int             `json:"xp_bonus,omitempty"`
	Rarity      Rarity          `json:"rarity"`
}

const (
	BadgeFirstLesson    = "first_lesson"
	BadgeFirstQuiz      = "first_quiz"
	BadgePerfectQuiz    = "perfect_quiz"
	BadgeWeekStreak     = "week_streak"
	BadgeMonthStreak    = "month_streak"
	BadgeLevel5         = "level_5"
	BadgeLevel10        = "level_10"
	BadgeModuleComplete = "module_complete"
	BadgeSpeedLearner   = "speed_learner"
	BadgeCodeMaster     = "code_master"
)

const (
	speedLearnerLessons = 5
	codeMasterRuns      = 50
)

var achievements = []Achievement{
	{ID: BadgeFirstLesson, Title: "First Steps!", Description: "Completed your first Python lesson", Icon: "🎯", Type: TypeFirstTime, XPBonus: 10, Rarity: RarityCommon},
	{ID: BadgeFirstQuiz, Title: "Quiz Master", Description: "Completed your first quiz", Icon: "🧠", Type: TypeFirstTime, XPBonus: 20, Rarity: RarityCommon},
	{ID: BadgePerfectQuiz, Title: "Perfectionist", Description: "Scored 100% on a quiz", Icon: "💯", Type: TypeCompletion, XPBonus: 50, Rarity: RarityRare},
	{ID: BadgeWeekStreak, Title: "Dedicated Learner", Description: "Maintained a 7-day learning streak", Icon: "🔥", Type: TypeStreak, XPBonus: 100, Rarity: RarityRare},
	{ID: BadgeMonthStreak, Title: "Python Devotee", Description: "Maintained a 30-day learning streak", Icon: "🏆", Type: TypeStreak, XPBonus: 500, Rarity: RarityEpic},
	{ID: BadgeLevel5, Title: "Rising Star", Description: "Reached level 5", Icon: "⭐", Type: TypeLevel, Rarity: RarityRare},
	{ID: BadgeLevel10, Title: "Python Padawan", Description: "Reached level 10", Icon: "🌟", Type: TypeLevel, Rarity: RarityEpic},
	{ID: BadgeModuleComplete, Title: "Module Master", Description: "Completed an entire learning module", Icon: "📚", Type: TypeCompletion, XPBonus: 200, Rarity: RarityRare},
	{ID: BadgeSpeedLearner, Title: "Speed Learner", Description: "Completed 5 lessons in one day", Icon: "⚡", Type: TypeCompletion, XPBonus: 75, Rarity: RarityRare},
	{ID: BadgeCodeMaster, Title: "Code Master", Description: "Successfully ran 50 code snippets", Icon: "💻", Type: TypeCompletion, XPBonus: 150, Rarity: RarityEpic},
}

func Achievements() []Achievement {
	return slices.Clone(achievements)
}

func LookupAchievement(id string) (Achievement, bool) {
	for _, a := range achievements {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}

type ActionKind string

const (
	ActionLesson  ActionKind = "lesson"
	ActionQuiz    ActionKind = "quiz"
	ActionStreak  ActionKind = "streak"
	ActionCodeRun ActionKind = "code_run"
)

// Action describes what just happened to the record being evaluated.
type Action struct {
	Kind  ActionKind
	ID    string
	Score int
	// Day is the calendar day key of the action, used by the per-day rule.
	Day string
	// ModuleID and ModuleTotal let the module rule check completion without
	// a catalog dependency. A zero total disables the rule.
	ModuleID    string
	ModuleTotal int
}

// Evaluate returns the badge ids newly earned by rec after action. It reads
// only its arguments and never returns a badge rec already holds.
func Evaluate(rec Record, action Action) []string {
	var earned []string
	add := func(id string, cond bool) {
		if cond && !rec.HasBadge(id) && !slices.Contains(earned, id) {
			earned = append(earned, id)
		}
	}

	switch action.Kind {
	case ActionLesson:
		add(BadgeFirstLesson, len(rec.CompletedLessons) == 1)
		add(BadgeSpeedLearner, action.Day != "" && rec.LessonsOn(action.Day) >= speedLearnerLessons)
		add(BadgeModuleComplete, action.ModuleTotal > 0 && countWithPrefix(rec.CompletedLessons, action.ModuleID) >= action.ModuleTotal)
	case ActionQuiz:
		add(BadgeFirstQuiz, len(rec.CompletedQuizzes) == 1)
		add(BadgePerfectQuiz, action.Score == 100)
	case ActionCodeRun:
		add(BadgeCodeMaster, rec.CodeRuns >= codeMasterRuns)
	}

	add(BadgeWeekStreak, rec.StreakDays == 7)
	add(BadgeMonthStreak, rec.StreakDays == 30)
	add(BadgeLevel5, rec.Level == 5)
	add(BadgeLevel10, rec.Level == 10)
	return earned
}

func countWithPrefix(ids []string, prefix string) int {
	if prefix == "" {
		return 0
	}
	n := 0
	for _, id := range ids {
		if strings.HasPrefix(id, prefix) {
			n++
		}
	}
	return n
}
