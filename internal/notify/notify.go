package notify

import (
	"fmt"

	"pydojo/internal/progress"
)

type Kind string

const (
	KindLevelUp        Kind = "level_up"
	KindXP             Kind = "xp_gained"
	KindLessonComplete Kind = "lesson_complete"
	KindQuizComplete   Kind = "quiz_complete"
	KindStreak         Kind = "streak_update"
	KindAchievement    Kind = "achievement"
	KindWelcome        Kind = "welcome"
	KindMotivation     Kind = "motivation"
)

type LevelUp struct {
	NewLevel      int `json:"newLevel"`
	PreviousLevel int `json:"previousLevel"`
}

type StreakUpdate struct {
	Days        int  `json:"days"`
	IsNewRecord bool `json:"isNewRecord,omitempty"`
}

type LessonComplete struct {
	LessonTitle string `json:"lessonTitle"`
	ModuleTitle string `json:"moduleTitle"`
}

type QuizComplete struct {
	Score   int  `json:"score"`
	Perfect bool `json:"perfect,omitempty"`
}

// Data mirrors what a caller knows after an action. Any field may be empty.
type Data struct {
	XPGained       int                   `json:"xpGained,omitempty"`
	LevelUp        *LevelUp              `json:"levelUp,omitempty"`
	StreakUpdate   *StreakUpdate         `json:"streakUpdate,omitempty"`
	LessonComplete *LessonComplete       `json:"lessonComplete,omitempty"`
	QuizComplete   *QuizComplete         `json:"quizComplete,omitempty"`
	Achievement    *progress.Achievement `json:"achievement,omitempty"`
}

// Toast is one user-visible notification. DurationMS is a display hint.
type Toast struct {
	Kind        Kind            `json:"kind"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	DurationMS  int             `json:"duration_ms"`
	Rarity      progress.Rarity `json:"rarity,omitempty"`
}

// FromCompletion builds the payload for a lesson or quiz completion.
func FromCompletion(res progress.CompletionResult) Data {
	d := Data{XPGained: res.XPGained}
	if res.LeveledUp {
		d.LevelUp = &LevelUp{NewLevel: res.NewLevel, PreviousLevel: res.PreviousLevel}
	}
	return d
}

// Toasts renders payload data in display order. The XP toast is dropped when
// a level-up toast is present.
func Toasts(d Data) []Toast {
	var out []Toast
	if d.LevelUp != nil {
		out = append(out, Toast{
			Kind:        KindLevelUp,
			Title:       "🎉 Level Up!",
			Description: fmt.Sprintf("You've reached level %d! Keep up the great work!", d.LevelUp.NewLevel),
			DurationMS:  5000,
		})
	}
	if d.XPGained > 0 && d.LevelUp == nil {
		out = append(out, Toast{Kind: KindXP, Title: fmt.Sprintf("+%d XP", d.XPGained), Description: "Experience points earned!", DurationMS: 3000})
	}
	if d.LessonComplete != nil {
		out = append(out, Toast{
			Kind:        KindLessonComplete,
			Title:       "✅ Lesson Complete!",
			Description: fmt.Sprintf("Great job completing %q", d.LessonComplete.LessonTitle),
			DurationMS:  4000,
		})
	}
	if d.QuizComplete != nil {
		t := Toast{Kind: KindQuizComplete, Title: "📝 Quiz Complete!", Description: fmt.Sprintf("You scored %d%%", d.QuizComplete.Score), DurationMS: 4000}
		if d.QuizComplete.Perfect {
			t.Title = "🎯 Perfect Score!"
			t.Description += " - Outstanding!"
		}
		out = append(out, t)
	}
	if d.StreakUpdate != nil {
		desc := "Keep the momentum going!"
		if d.StreakUpdate.IsNewRecord {
			desc = "New personal record!"
		}
		out = append(out, Toast{Kind: KindStreak, Title: fmt.Sprintf("🔥 %d Day Streak!", d.StreakUpdate.Days), Description: desc, DurationMS: 4000})
	}
	if d.Achievement != nil {
		out = append(out, AchievementToast(*d.Achievement))
	}
	return out
}

var rarityMarks = map[progress.Rarity]string{
	progress.RarityCommon:    "🎖️",
	progress.RarityRare:      "🏅",
	progress.RarityEpic:      "🏆",
	progress.RarityLegendary: "👑",
}

func AchievementToast(a progress.Achievement) Toast {
	desc := fmt.Sprintf("%s %s: %s", rarityMarks[a.Rarity], a.Title, a.Description)
	if a.XPBonus > 0 {
		desc += fmt.Sprintf(" (+%d XP)", a.XPBonus)
	}
	return Toast{
		Kind:        KindAchievement,
		Title:       a.Icon + " Achievement Unlocked!",
		Description: desc,
		DurationMS:  6000,
		Rarity:      a.Rarity,
	}
}

// Achievements turns newly earned badge ids into toasts, skipping ids that
// are not in the catalog.
func Achievements(ids []string) []Toast {
	out := []Toast{}
	for _, id := range ids {
		a, ok := progress.LookupAchievement(id)
		if !ok {
			continue
		}
		out = append(out, AchievementToast(a))
	}
	return out
}

func Welcome(firstTime bool) Toast {
	if firstTime {
		return Toast{Kind: KindWelcome, Title: "🎉 Welcome to pydojo!", Description: "Start your Python learning adventure and earn XP, badges, and achievements!", DurationMS: 6000}
	}
	return Toast{Kind: KindWelcome, Title: "👋 Welcome back!", Description: "Ready to continue your Python journey?", DurationMS: 4000}
}

var motivationalMessages = []string{
	"Keep coding! Every line of code makes you better.",
	"You're doing great! Python mastery is within reach.",
	"Consistency is key! Small steps lead to big achievements.",
	"Debug your way to success! Every error is a learning opportunity.",
	"Python is powerful, and so are you!",
}

// Motivation picks a message by seed so callers control the rotation.
func Motivation(seed int) Toast {
	i := seed % len(motivationalMessages)
	if i < 0 {
		i += len(motivationalMessages)
	}
	return Toast{Kind: KindMotivation, Title: "💪 Keep Going!", Description: motivationalMessages[i], DurationMS: 4000}
}
