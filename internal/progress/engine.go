package progress

import (
	"context"
	"math"
	"slices"
	"strings"
	"sync"
	"time"
)

type Logger interface {
	Info(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
}

type nopLogger struct{}

func (nopLogger) Info(string, map[string]any)  {}
func (nopLogger) Error(string, map[string]any) {}

type LoadResult struct {
	FirstTime  bool
	Streak     StreakChange
	StreakDays int
	NewBadges  []string
}

type CompletionResult struct {
	XPGained      int
	LeveledUp     bool
	NewLevel      int
	PreviousLevel int
	TotalXP       int
	Score         int
	NewBadges     []string
}

// Engine is the single writer of the progress record. Every mutating call
// computes the next record, saves it through the Store and returns. Store
// failures are logged and the in-memory record stays authoritative.
type Engine struct {
	mu     sync.Mutex
	store  Store
	log    Logger
	now    func() time.Time
	loc    *time.Location
	totals map[string]int

	rec    Record
	loaded bool
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithLogger(l Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

func WithLocation(loc *time.Location) Option {
	return func(e *Engine) { e.loc = loc }
}

// WithModuleTotals supplies the lesson count of each module.
func WithModuleTotals(totals map[string]int) Option {
	return func(e *Engine) { e.totals = totals }
}

func NewEngine(store Store, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		log:    nopLogger{},
		now:    time.Now,
		loc:    time.Local,
		totals: map[string]int{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.rec = DefaultRecord(e.now())
	return e
}

func (e *Engine) SetModuleTotals(totals map[string]int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.totals = totals
}

// Load reads the stored record, or starts a fresh one, and applies the daily
// streak rule once.
func (e *Engine) Load(ctx context.Context) LoadResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loadLocked(ctx)
}

func (e *Engine) loadLocked(ctx context.Context) LoadResult {
	now := e.now()
	var (
		stored *Record
		err    error
	)
	if e.store != nil {
		stored, err = e.store.LoadRecord(ctx)
	}
	res := LoadResult{}
	switch {
	case err != nil:
		e.log.Error("progress.load_failed", map[string]any{"error": err.Error()})
		e.rec = DefaultRecord(now)
	case stored == nil:
		res.FirstTime = true
		e.rec = DefaultRecord(now)
	default:
		e.rec = stored.Clone()
		e.rec.normalize(now)
	}
	e.loaded = true

	res.Streak = ApplyStreak(&e.rec, now, e.loc)
	res.StreakDays = e.rec.StreakDays
	res.NewBadges = e.awardLocked(Evaluate(e.rec, Action{Kind: ActionStreak, Day: DayKey(now, e.loc)}))
	// A failed read must not overwrite what is stored with defaults.
	if err == nil && (res.FirstTime || res.Streak != StreakUnchanged || len(res.NewBadges) > 0) {
		e.saveLocked(ctx)
	}
	e.log.Info("progress.loaded", map[string]any{
		"first_time":  res.FirstTime,
		"streak":      string(res.Streak),
		"streak_days": res.StreakDays,
		"xp":          e.rec.XPPoints,
	})
	return res
}

func (e *Engine) ensureLoaded(ctx context.Context) {
	if !e.loaded {
		e.loadLocked(ctx)
	}
}

// CompleteLesson awards xp for lessonID once. The bool is false when the
// lesson was already complete and nothing changed.
func (e *Engine) CompleteLesson(ctx context.Context, lessonID string, xp int) (CompletionResult, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureLoaded(ctx)
	if e.rec.HasLesson(lessonID) {
		return CompletionResult{}, false
	}
	now := e.now()
	day := DayKey(now, e.loc)
	e.rec.CompletedLessons = append(e.rec.CompletedLessons, lessonID)
	e.rec.DailyLessons[day]++
	res := e.gainLocked(xp, now)

	moduleID := e.moduleForLocked(lessonID)
	res.NewBadges = e.awardLocked(Evaluate(e.rec, Action{
		Kind:        ActionLesson,
		ID:          lessonID,
		Day:         day,
		ModuleID:    moduleID,
		ModuleTotal: e.totals[moduleID],
	}))
	e.saveLocked(ctx)
	e.log.Info("lesson.completed", map[string]any{"lesson_id": lessonID, "xp": res.XPGained, "total_xp": res.TotalXP, "leveled_up": res.LeveledUp})
	return res, true
}

// CompleteQuiz is CompleteLesson keyed on quizzes, with score carried into
// the result and the achievement rules.
func (e *Engine) CompleteQuiz(ctx context.Context, quizID string, score, xp int) (CompletionResult, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureLoaded(ctx)
	if e.rec.HasQuiz(quizID) {
		return CompletionResult{}, false
	}
	now := e.now()
	e.rec.CompletedQuizzes = append(e.rec.CompletedQuizzes, quizID)
	res := e.gainLocked(xp, now)
	res.Score = score
	res.NewBadges = e.awardLocked(Evaluate(e.rec, Action{Kind: ActionQuiz, ID: quizID, Score: score, Day: DayKey(now, e.loc)}))
	e.saveLocked(ctx)
	e.log.Info("quiz.completed", map[string]any{"quiz_id": quizID, "score": score, "xp": res.XPGained, "total_xp": res.TotalXP})
	return res, true
}

func (e *Engine) gainLocked(xp int, now time.Time) CompletionResult {
	xp = max(0, xp)
	prev := e.rec.Level
	e.rec.XPPoints += xp
	e.rec.Level = LevelFor(e.rec.XPPoints)
	e.rec.LastActiveDate = now
	return CompletionResult{
		XPGained:      xp,
		LeveledUp:     e.rec.Level > prev,
		NewLevel:      e.rec.Level,
		PreviousLevel: prev,
		TotalXP:       e.rec.XPPoints,
	}
}

// ToggleFavorite flips membership of lessonID and returns the new state.
func (e *Engine) ToggleFavorite(ctx context.Context, lessonID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureLoaded(ctx)
	favorited := !e.rec.IsFavorite(lessonID)
	if favorited {
		e.rec.Favorites = append(e.rec.Favorites, lessonID)
	} else {
		e.rec.Favorites = slices.DeleteFunc(e.rec.Favorites, func(id string) bool { return id == lessonID })
	}
	e.rec.LastActiveDate = e.now()
	e.saveLocked(ctx)
	return favorited
}

// AwardBadge adds badgeID and reports whether it was new.
func (e *Engine) AwardBadge(ctx context.Context, badgeID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureLoaded(ctx)
	if len(e.awardLocked([]string{badgeID})) == 0 {
		return false
	}
	e.rec.LastActiveDate = e.now()
	e.saveLocked(ctx)
	return true
}

func (e *Engine) awardLocked(ids []string) []string {
	var added []string
	for _, id := range ids {
		if id == "" || e.rec.HasBadge(id) {
			continue
		}
		e.rec.Badges = append(e.rec.Badges, id)
		added = append(added, id)
		e.log.Info("badge.awarded", map[string]any{"badge_id": id})
	}
	return added
}

// Reset returns the record to defaults with a fresh one-day streak.
func (e *Engine) Reset(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.now()
	e.rec = DefaultRecord(now)
	e.rec.StreakDays = 1
	e.rec.LastActiveDate = now
	e.loaded = true
	e.saveLocked(ctx)
	e.log.Info("progress.reset", nil)
}

// CompletionPercentage is the rounded share of moduleID's lessons completed,
// clamped to 100. Unknown modules report 0.
func (e *Engine) CompletionPercentage(moduleID string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureLoaded(context.Background())
	total := e.totals[moduleID]
	if moduleID == "" || total <= 0 {
		return 0
	}
	done := countWithPrefix(e.rec.CompletedLessons, moduleID)
	return min(100, int(math.Round(float64(done)/float64(total)*100)))
}

// AddNote stores text against lessonID. Blank text removes the note.
func (e *Engine) AddNote(ctx context.Context, lessonID, text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureLoaded(ctx)
	if strings.TrimSpace(text) == "" {
		delete(e.rec.Notes, lessonID)
	} else {
		e.rec.Notes[lessonID] = text
	}
	e.rec.LastActiveDate = e.now()
	e.saveLocked(ctx)
}

func (e *Engine) SetCurrentModule(ctx context.Context, moduleID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureLoaded(ctx)
	if moduleID == "" || moduleID == e.rec.CurrentModule {
		return
	}
	e.rec.CurrentModule = moduleID
	e.rec.LastActiveDate = e.now()
	e.saveLocked(ctx)
}

func (e *Engine) AddTimeSpent(ctx context.Context, minutes int) {
	if minutes <= 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureLoaded(ctx)
	e.rec.TotalTimeSpent += minutes
	e.rec.LastActiveDate = e.now()
	e.saveLocked(ctx)
}

// RecordCodeRun counts one successful simulator run and returns any badges
// it unlocked.
func (e *Engine) RecordCodeRun(ctx context.Context) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureLoaded(ctx)
	now := e.now()
	e.rec.CodeRuns++
	e.rec.LastActiveDate = now
	added := e.awardLocked(Evaluate(e.rec, Action{Kind: ActionCodeRun, Day: DayKey(now, e.loc)}))
	e.saveLocked(ctx)
	return added
}

// Progress returns a copy of the current record.
func (e *Engine) Progress() Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rec.Clone()
}

func (e *Engine) moduleForLocked(lessonID string) string {
	best := ""
	for id := range e.totals {
		if strings.HasPrefix(lessonID, id) && len(id) > len(best) {
			best = id
		}
	}
	return best
}

func (e *Engine) saveLocked(ctx context.Context) {
	if e.store == nil {
		return
	}
	if err := e.store.SaveRecord(ctx, e.rec.Clone()); err != nil {
		e.log.Error("progress.save_failed", map[string]any{"error": err.Error()})
	}
}
