package progress

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"
)

type memStore struct {
	rec     *Record
	saves   int
	loadErr error
	saveErr error
}

func (m *memStore) LoadRecord(context.Context) (*Record, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.rec == nil {
		return nil, nil
	}
	r := m.rec.Clone()
	return &r, nil
}

func (m *memStore) SaveRecord(_ context.Context, rec Record) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.rec = &rec
	return nil
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestEngine(store Store, c *clock, opts ...Option) *Engine {
	opts = append([]Option{WithClock(c.now), WithLocation(time.UTC)}, opts...)
	return NewEngine(store, opts...)
}

func day(d int) time.Time {
	return time.Date(2026, 3, d, 10, 0, 0, 0, time.UTC)
}

func TestLoadFirstTimeSeedsDefaults(t *testing.T) {
	store := &memStore{}
	c := &clock{t: day(1)}
	e := newTestEngine(store, c)
	res := e.Load(context.Background())
	if !res.FirstTime || res.StreakDays != 1 {
		t.Fatalf("unexpected load result %#v", res)
	}
	rec := e.Progress()
	if rec.Level != 1 || rec.XPPoints != 0 || rec.CurrentModule != DefaultModule {
		t.Fatalf("unexpected defaults %#v", rec)
	}
	if !rec.StartDate.Equal(day(1)) || !rec.LastActiveDate.Equal(day(1)) {
		t.Fatalf("expected start and last active at load time")
	}
	if store.saves != 1 {
		t.Fatalf("expected first load to persist, saves=%d", store.saves)
	}
}

func TestLoadStreakRule(t *testing.T) {
	cases := []struct {
		name       string
		lastActive time.Time
		streak     int
		want       int
		change     StreakChange
	}{
		{name: "same day", lastActive: day(10).Add(-5 * time.Hour), streak: 4, want: 4, change: StreakUnchanged},
		{name: "yesterday", lastActive: day(9), streak: 4, want: 5, change: StreakContinued},
		{name: "late yesterday", lastActive: day(9).Add(13 * time.Hour), streak: 2, want: 3, change: StreakContinued},
		{name: "three day gap", lastActive: day(7), streak: 4, want: 1, change: StreakReset},
		{name: "never active", streak: 0, want: 1, change: StreakReset},
	}
	for _, tc := range cases {
		rec := DefaultRecord(day(1))
		rec.StreakDays = tc.streak
		rec.LastActiveDate = tc.lastActive
		e := newTestEngine(&memStore{rec: &rec}, &clock{t: day(10)})
		res := e.Load(context.Background())
		if res.StreakDays != tc.want || res.Streak != tc.change {
			t.Fatalf("%s: got streak %d (%s), want %d (%s)", tc.name, res.StreakDays, res.Streak, tc.want, tc.change)
		}
	}
}

func TestLoadFailureFallsBackToDefaults(t *testing.T) {
	store := &memStore{loadErr: errors.New("disk gone")}
	e := newTestEngine(store, &clock{t: day(3)})
	res := e.Load(context.Background())
	if res.FirstTime {
		t.Fatalf("load failure is not a first-time load")
	}
	if store.saves != 0 {
		t.Fatalf("expected no save after a failed load, saves=%d", store.saves)
	}
	if got := e.Progress(); got.XPPoints != 0 || got.StreakDays != 1 {
		t.Fatalf("expected defaults, got %#v", got)
	}
}

func TestLoadFailureKeepsStoredRecord(t *testing.T) {
	rec := DefaultRecord(day(1))
	rec.XPPoints = 450
	rec.CompletedLessons = []string{"a", "b"}
	store := &memStore{rec: &rec, loadErr: errors.New("database is locked")}
	e := newTestEngine(store, &clock{t: day(3)})
	e.Load(context.Background())
	if store.saves != 0 {
		t.Fatalf("expected no save after a failed load, saves=%d", store.saves)
	}
	if store.rec.XPPoints != 450 || len(store.rec.CompletedLessons) != 2 {
		t.Fatalf("stored record changed: %#v", store.rec)
	}
}

func TestLoadRederivesLevel(t *testing.T) {
	rec := DefaultRecord(day(1))
	rec.XPPoints = 250
	rec.Level = 9
	rec.LastActiveDate = day(5)
	e := newTestEngine(&memStore{rec: &rec}, &clock{t: day(5)})
	e.Load(context.Background())
	if got := e.Progress().Level; got != 3 {
		t.Fatalf("expected level 3 from 250 xp, got %d", got)
	}
}

func TestCompleteLessonIsIdempotent(t *testing.T) {
	store := &memStore{}
	e := newTestEngine(store, &clock{t: day(2)})
	e.Load(context.Background())
	if _, ok := e.CompleteLesson(context.Background(), "fundamentals_1", 25); !ok {
		t.Fatalf("first completion should apply")
	}
	if res, ok := e.CompleteLesson(context.Background(), "fundamentals_1", 25); ok || res.XPGained != 0 {
		t.Fatalf("second completion should be a no-op, got %#v", res)
	}
	rec := e.Progress()
	if rec.XPPoints != 25 || len(rec.CompletedLessons) != 1 {
		t.Fatalf("expected xp awarded once, got %#v", rec)
	}
	if store.rec == nil || store.rec.XPPoints != 25 {
		t.Fatalf("expected persisted record with 25 xp")
	}
}

func TestLevelUpAcrossBoundary(t *testing.T) {
	rec := DefaultRecord(day(1))
	rec.XPPoints = 95
	rec.LastActiveDate = day(4)
	e := newTestEngine(&memStore{rec: &rec}, &clock{t: day(4)})
	e.Load(context.Background())
	res, ok := e.CompleteLesson(context.Background(), "loops_1", 25)
	if !ok || !res.LeveledUp || res.NewLevel != 2 || res.PreviousLevel != 1 || res.TotalXP != 120 {
		t.Fatalf("unexpected level up result %#v", res)
	}
	for xp, want := range map[int]int{0: 1, 99: 1, 100: 2, 199: 2, 200: 3} {
		if got := LevelFor(xp); got != want {
			t.Fatalf("LevelFor(%d)=%d want %d", xp, got, want)
		}
	}
}

func TestEndToEndLessonThenPerfectQuiz(t *testing.T) {
	e := newTestEngine(&memStore{}, &clock{t: day(6)})
	e.Load(context.Background())
	l, ok := e.CompleteLesson(context.Background(), "L1", 25)
	if !ok || l.XPGained != 25 || l.LeveledUp || l.NewLevel != 1 || l.TotalXP != 25 {
		t.Fatalf("unexpected lesson result %#v", l)
	}
	q, ok := e.CompleteQuiz(context.Background(), "Q1", 100, 30)
	if !ok || q.XPGained != 30 || q.LeveledUp || q.NewLevel != 1 || q.TotalXP != 55 || q.Score != 100 {
		t.Fatalf("unexpected quiz result %#v", q)
	}
	if !slices.Contains(q.NewBadges, BadgePerfectQuiz) || !slices.Contains(q.NewBadges, BadgeFirstQuiz) {
		t.Fatalf("expected perfect and first quiz badges, got %v", q.NewBadges)
	}
	badges := e.Progress().Badges
	n := 0
	for _, b := range badges {
		if b == BadgePerfectQuiz {
			n++
		}
	}
	if n != 1 {
		t.Fatalf("expected perfect_quiz exactly once, got %v", badges)
	}
	if e.Progress().XPPoints != 55 {
		t.Fatalf("badge bonuses must not change xp")
	}
}

func TestToggleFavoriteTwiceIsIdentity(t *testing.T) {
	e := newTestEngine(&memStore{}, &clock{t: day(2)})
	e.Load(context.Background())
	before := e.Progress().Favorites
	if !e.ToggleFavorite(context.Background(), "fundamentals_1") {
		t.Fatalf("first toggle should favorite")
	}
	if !e.Progress().IsFavorite("fundamentals_1") {
		t.Fatalf("expected favorite stored")
	}
	if e.ToggleFavorite(context.Background(), "fundamentals_1") {
		t.Fatalf("second toggle should unfavorite")
	}
	if !slices.Equal(before, e.Progress().Favorites) {
		t.Fatalf("expected favorites restored, got %v", e.Progress().Favorites)
	}
}

func TestAwardBadgeOnce(t *testing.T) {
	e := newTestEngine(&memStore{}, &clock{t: day(2)})
	e.Load(context.Background())
	if !e.AwardBadge(context.Background(), "custom") {
		t.Fatalf("expected new badge")
	}
	if e.AwardBadge(context.Background(), "custom") {
		t.Fatalf("expected duplicate award to be a no-op")
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	c := &clock{t: day(2)}
	e := newTestEngine(&memStore{}, c)
	e.Load(context.Background())
	e.CompleteLesson(context.Background(), "fundamentals_1", 40)
	e.AddNote(context.Background(), "fundamentals_1", "remember f-strings")
	c.t = day(8)
	e.Reset(context.Background())
	rec := e.Progress()
	if rec.XPPoints != 0 || len(rec.CompletedLessons) != 0 || len(rec.Badges) != 0 || len(rec.Notes) != 0 {
		t.Fatalf("expected cleared record, got %#v", rec)
	}
	if rec.StreakDays != 1 || !rec.StartDate.Equal(day(8)) || !rec.LastActiveDate.Equal(day(8)) {
		t.Fatalf("expected reseeded dates and streak, got %#v", rec)
	}
}

func TestCompletionPercentage(t *testing.T) {
	e := newTestEngine(&memStore{}, &clock{t: day(2)}, WithModuleTotals(map[string]int{"fundamentals": 3, "loops": 0}))
	e.Load(context.Background())
	e.CompleteLesson(context.Background(), "fundamentals_1", 10)
	e.CompleteLesson(context.Background(), "fundamentals_2", 10)
	e.CompleteLesson(context.Background(), "loops_1", 10)
	if got := e.CompletionPercentage("fundamentals"); got != 67 {
		t.Fatalf("expected 67, got %d", got)
	}
	if got := e.CompletionPercentage("unknown"); got != 0 {
		t.Fatalf("unknown module should be 0, got %d", got)
	}
	if got := e.CompletionPercentage("loops"); got != 0 {
		t.Fatalf("zero-total module should be 0, got %d", got)
	}
}

func TestCompletionPercentageLoadsStoredRecord(t *testing.T) {
	rec := DefaultRecord(day(1))
	rec.CompletedLessons = []string{"fundamentals_1", "fundamentals_2"}
	rec.LastActiveDate = day(2)
	e := newTestEngine(&memStore{rec: &rec}, &clock{t: day(2)}, WithModuleTotals(map[string]int{"fundamentals": 4}))
	if got := e.CompletionPercentage("fundamentals"); got != 50 {
		t.Fatalf("expected 50 before an explicit load, got %d", got)
	}
}

func TestModuleCompleteAndSpeedLearner(t *testing.T) {
	e := newTestEngine(&memStore{}, &clock{t: day(2)}, WithModuleTotals(map[string]int{"fundamentals": 5}))
	e.Load(context.Background())
	var last CompletionResult
	for _, id := range []string{"fundamentals_1", "fundamentals_2", "fundamentals_3", "fundamentals_4", "fundamentals_5"} {
		last, _ = e.CompleteLesson(context.Background(), id, 10)
	}
	if !slices.Contains(last.NewBadges, BadgeModuleComplete) || !slices.Contains(last.NewBadges, BadgeSpeedLearner) {
		t.Fatalf("expected module_complete and speed_learner, got %v", last.NewBadges)
	}
	if got := e.CompletionPercentage("fundamentals"); got != 100 {
		t.Fatalf("expected 100, got %d", got)
	}
}

func TestRecordCodeRunUnlocksCodeMaster(t *testing.T) {
	rec := DefaultRecord(day(1))
	rec.CodeRuns = 49
	rec.LastActiveDate = day(2)
	e := newTestEngine(&memStore{rec: &rec}, &clock{t: day(2)})
	e.Load(context.Background())
	if got := e.RecordCodeRun(context.Background()); !slices.Equal(got, []string{BadgeCodeMaster}) {
		t.Fatalf("expected code_master, got %v", got)
	}
	if got := e.RecordCodeRun(context.Background()); len(got) != 0 {
		t.Fatalf("code_master should not repeat, got %v", got)
	}
}

func TestSaveFailureKeepsMemoryState(t *testing.T) {
	e := newTestEngine(&memStore{saveErr: errors.New("read-only")}, &clock{t: day(2)})
	e.Load(context.Background())
	res, ok := e.CompleteLesson(context.Background(), "fundamentals_1", 25)
	if !ok || res.TotalXP != 25 {
		t.Fatalf("expected completion despite save failure, got %#v", res)
	}
	if e.Progress().XPPoints != 25 {
		t.Fatalf("expected in-memory xp to survive")
	}
}

func TestOperationsLoadLazily(t *testing.T) {
	rec := DefaultRecord(day(1))
	rec.XPPoints = 40
	rec.LastActiveDate = day(2)
	e := newTestEngine(&memStore{rec: &rec}, &clock{t: day(2)})
	res, ok := e.CompleteLesson(context.Background(), "fundamentals_9", 10)
	if !ok || res.TotalXP != 50 {
		t.Fatalf("expected stored xp to be loaded first, got %#v", res)
	}
}

func TestTimeNotesAndModule(t *testing.T) {
	e := newTestEngine(&memStore{}, &clock{t: day(2)})
	e.Load(context.Background())
	e.AddTimeSpent(context.Background(), 15)
	e.AddTimeSpent(context.Background(), -3)
	e.SetCurrentModule(context.Background(), "loops")
	e.AddNote(context.Background(), "loops_1", "range stops early")
	e.AddNote(context.Background(), "loops_2", "tmp")
	e.AddNote(context.Background(), "loops_2", "  ")
	rec := e.Progress()
	if rec.TotalTimeSpent != 15 || rec.CurrentModule != "loops" {
		t.Fatalf("unexpected record %#v", rec)
	}
	if len(rec.Notes) != 1 || rec.Notes["loops_1"] != "range stops early" {
		t.Fatalf("unexpected notes %#v", rec.Notes)
	}
}
