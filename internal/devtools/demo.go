package devtools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"pydojo/internal/progress"
)

// Scenario is a named progress fixture for demos and manual testing.
type Scenario struct {
	Name        string
	Description string
	build       func(now time.Time, loc *time.Location) progress.Record
}

func (s Scenario) Record(now time.Time, loc *time.Location) progress.Record {
	return s.build(now, loc)
}

type Manager struct {
	loc *time.Location
}

func NewManager(loc *time.Location) *Manager {
	if loc == nil {
		loc = time.Local
	}
	return &Manager{loc: loc}
}

var scenarios = []Scenario{
	{
		Name:        "fresh",
		Description: "brand new learner",
		build: func(now time.Time, _ *time.Location) progress.Record {
			return progress.DefaultRecord(now)
		},
	},
	{
		Name:        "streak_6",
		Description: "six day streak, last active yesterday",
		build: func(now time.Time, loc *time.Location) progress.Record {
			rec := veteranBase(now, 45)
			rec.StreakDays = 6
			rec.LastActiveDate = now.In(loc).AddDate(0, 0, -1)
			return rec
		},
	},
	{
		Name:        "level_up_ready",
		Description: "ten XP short of level 2",
		build: func(now time.Time, _ *time.Location) progress.Record {
			rec := veteranBase(now, 90)
			rec.LastActiveDate = now
			return rec
		},
	},
	{
		Name:        "speed_run",
		Description: "four lessons finished today",
		build: func(now time.Time, loc *time.Location) progress.Record {
			rec := veteranBase(now, 60)
			rec.LastActiveDate = now
			rec.DailyLessons = map[string]int{progress.DayKey(now, loc): 4}
			return rec
		},
	},
	{
		Name:        "veteran",
		Description: "level 9, 29 day streak, 49 code runs",
		build: func(now time.Time, loc *time.Location) progress.Record {
			rec := veteranBase(now, 890)
			rec.StreakDays = 29
			rec.LastActiveDate = now.In(loc).AddDate(0, 0, -1)
			rec.CodeRuns = 49
			rec.CompletedQuizzes = []string{"python_basics_variables_quiz"}
			rec.Badges = []string{progress.BadgeFirstLesson, progress.BadgeFirstQuiz, progress.BadgeWeekStreak, progress.BadgeLevel5}
			rec.TotalTimeSpent = 600
			return rec
		},
	},
}

func veteranBase(now time.Time, xp int) progress.Record {
	rec := progress.DefaultRecord(now)
	rec.StartDate = now.AddDate(0, -1, 0)
	rec.XPPoints = xp
	rec.Level = progress.LevelFor(xp)
	rec.CompletedLessons = []string{"fundamentals_variables_intro"}
	rec.Badges = []string{progress.BadgeFirstLesson}
	rec.StreakDays = 1
	return rec
}

func (m *Manager) Names() []string {
	out := make([]string, 0, len(scenarios))
	for _, s := range scenarios {
		out = append(out, s.Name)
	}
	return out
}

func (m *Manager) Resolve(name string) (Scenario, bool) {
	i := slices.IndexFunc(scenarios, func(s Scenario) bool { return s.Name == strings.TrimSpace(name) })
	if i < 0 {
		return Scenario{}, false
	}
	return scenarios[i], true
}

// Seed overwrites the stored progress record with the named scenario.
func (m *Manager) Seed(ctx context.Context, store progress.Store, name string, now time.Time) (progress.Record, error) {
	s, ok := m.Resolve(name)
	if !ok {
		return progress.Record{}, fmt.Errorf("unknown scenario %q (known: %s)", name, strings.Join(m.Names(), ", "))
	}
	rec := s.Record(now, m.loc)
	if err := store.SaveRecord(ctx, rec); err != nil {
		return progress.Record{}, fmt.Errorf("seed %s: %w", name, err)
	}
	return rec, nil
}

// SetState notes the last seeded scenario so a developer can tell which
// fixture the local data dir holds.
func (m *Manager) SetState(ctx context.Context, cacheDir string, state string) error {
	_ = ctx
	if cacheDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		cacheDir = filepath.Join(home, ".cache", "pydojo")
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return err
	}
	payload := map[string]any{
		"scenario":  strings.TrimSpace(state),
		"seeded_at": time.Now().UTC().Format(time.RFC3339),
	}
	b, _ := json.Marshal(payload)
	return os.WriteFile(filepath.Join(cacheDir, "dev_state.json"), b, 0o644)
}
