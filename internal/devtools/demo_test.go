package devtools

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"pydojo/internal/progress"
)

type memKV map[string]string

func (m memKV) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

func (m memKV) Put(_ context.Context, key, value string) error {
	m[key] = value
	return nil
}

var seedNow = time.Date(2026, time.June, 15, 9, 30, 0, 0, time.UTC)

func loadSeeded(t *testing.T, name string) (*progress.Engine, progress.LoadResult) {
	t.Helper()
	store := progress.NewKVStore(memKV{})
	m := NewManager(time.UTC)
	if _, err := m.Seed(context.Background(), store, name, seedNow); err != nil {
		t.Fatalf("seed %s: %v", name, err)
	}
	e := progress.NewEngine(store, progress.WithClock(func() time.Time { return seedNow }), progress.WithLocation(time.UTC))
	return e, e.Load(context.Background())
}

func TestResolveKnownAndUnknown(t *testing.T) {
	m := NewManager(nil)
	for _, name := range m.Names() {
		if _, ok := m.Resolve(name); !ok {
			t.Fatalf("expected %q to resolve", name)
		}
	}
	if _, ok := m.Resolve("nope"); ok {
		t.Fatalf("unknown scenario should not resolve")
	}
	if _, err := m.Seed(context.Background(), progress.NewKVStore(memKV{}), "nope", seedNow); err == nil {
		t.Fatalf("expected error for unknown scenario")
	}
}

func TestStreakScenarioEarnsWeekBadgeOnLoad(t *testing.T) {
	e, res := loadSeeded(t, "streak_6")
	if res.FirstTime || res.StreakDays != 7 || res.Streak != progress.StreakContinued {
		t.Fatalf("unexpected load result %#v", res)
	}
	if !slices.Contains(res.NewBadges, progress.BadgeWeekStreak) {
		t.Fatalf("expected week streak badge, got %v", res.NewBadges)
	}
	if !e.Progress().HasBadge(progress.BadgeWeekStreak) {
		t.Fatalf("badge should be stored")
	}
}

func TestLevelUpReadyScenario(t *testing.T) {
	e, _ := loadSeeded(t, "level_up_ready")
	res, ok := e.CompleteLesson(context.Background(), "fundamentals_fstrings", 15)
	if !ok || !res.LeveledUp || res.NewLevel != 2 {
		t.Fatalf("expected level up, got %#v ok=%v", res, ok)
	}
}

func TestSpeedRunScenario(t *testing.T) {
	e, _ := loadSeeded(t, "speed_run")
	res, ok := e.CompleteLesson(context.Background(), "fundamentals_booleans", 15)
	if !ok || !slices.Contains(res.NewBadges, progress.BadgeSpeedLearner) {
		t.Fatalf("expected speed learner, got %#v", res)
	}
}

func TestVeteranScenario(t *testing.T) {
	e, res := loadSeeded(t, "veteran")
	if !slices.Contains(res.NewBadges, progress.BadgeMonthStreak) {
		t.Fatalf("expected month streak on load, got %v", res.NewBadges)
	}
	if e.Progress().Level != 9 {
		t.Fatalf("expected level 9, got %d", e.Progress().Level)
	}
	if got := e.RecordCodeRun(context.Background()); !slices.Contains(got, progress.BadgeCodeMaster) {
		t.Fatalf("expected code master on 50th run, got %v", got)
	}
}

func TestSetStateWritesFile(t *testing.T) {
	dir := t.TempDir()
	if err := NewManager(time.UTC).SetState(context.Background(), dir, " veteran "); err != nil {
		t.Fatalf("set state: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "dev_state.json"))
	if err != nil {
		t.Fatalf("read state: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(b, &payload); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if payload["scenario"] != "veteran" {
		t.Fatalf("unexpected payload %#v", payload)
	}
}
