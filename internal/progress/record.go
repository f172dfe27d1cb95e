package progress

import (
	"maps"
	"slices"
	"time"
)

const DefaultModule = "fundamentals"

// Record is the learner's durable progress. Level is derived from XPPoints
// and is recomputed whenever XP changes or a record is loaded.
type Record struct {
	CurrentModule    string            `json:"currentModule"`
	CompletedLessons []string          `json:"completedLessons"`
	CompletedQuizzes []string          `json:"completedQuizzes"`
	XPPoints         int               `json:"xpPoints"`
	Level            int               `json:"level"`
	Badges           []string          `json:"badges"`
	StreakDays       int               `json:"streakDays"`
	LastActiveDate   time.Time         `json:"lastActiveDate,omitzero"`
	StartDate        time.Time         `json:"startDate,omitzero"`
	TotalTimeSpent   int               `json:"totalTimeSpent"`
	Favorites        []string          `json:"favorites"`
	Notes            map[string]string `json:"notes"`
	DailyLessons     map[string]int    `json:"dailyLessons"`
	CodeRuns         int               `json:"codeRuns"`
}

func DefaultRecord(now time.Time) Record {
	return Record{
		CurrentModule:    DefaultModule,
		CompletedLessons: []string{},
		CompletedQuizzes: []string{},
		Level:            1,
		Badges:           []string{},
		StartDate:        now,
		Favorites:        []string{},
		Notes:            map[string]string{},
		DailyLessons:     map[string]int{},
	}
}

func (r Record) Clone() Record {
	out := r
	out.CompletedLessons = slices.Clone(r.CompletedLessons)
	out.CompletedQuizzes = slices.Clone(r.CompletedQuizzes)
	out.Badges = slices.Clone(r.Badges)
	out.Favorites = slices.Clone(r.Favorites)
	out.Notes = maps.Clone(r.Notes)
	out.DailyLessons = maps.Clone(r.DailyLessons)
	return out
}

func (r Record) HasLesson(id string) bool { return slices.Contains(r.CompletedLessons, id) }
func (r Record) HasQuiz(id string) bool { return slices.Contains(r.CompletedQuizzes, id) }
func (r Record) HasBadge(id string) bool { return slices.Contains(r.Badges, id) }
func (r Record) IsFavorite(id string) bool { return slices.Contains(r.Favorites, id) }
func (r Record) LessonsOn(day string) int { return r.DailyLessons[day] }
func (r Record) XPToNextLevel() int { return XPPerLevel - XPIntoLevel(r.XPPoints) }
func (r Record) LevelProgressPercent() int { return XPIntoLevel(r.XPPoints) * 100 / XPPerLevel }

// normalize repairs a decoded record: nil collections become empty, duplicate
// ids are dropped, negative counters are zeroed and the level is re-derived.
func (r *Record) normalize(now time.Time) {
	if r.CurrentModule == "" {
		r.CurrentModule = DefaultModule
	}
	r.CompletedLessons = dedupe(r.CompletedLessons)
	r.CompletedQuizzes = dedupe(r.CompletedQuizzes)
	r.Badges = dedupe(r.Badges)
	r.Favorites = dedupe(r.Favorites)
	if r.Notes == nil {
		r.Notes = map[string]string{}
	}
	if r.DailyLessons == nil {
		r.DailyLessons = map[string]int{}
	}
	r.XPPoints = max(0, r.XPPoints)
	r.StreakDays = max(0, r.StreakDays)
	r.TotalTimeSpent = max(0, r.TotalTimeSpent)
	r.CodeRuns = max(0, r.CodeRuns)
	r.Level = LevelFor(r.XPPoints)
	if r.StartDate.IsZero() {
		r.StartDate = now
	}
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
