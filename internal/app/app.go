package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"pydojo/internal/auth"
	"pydojo/internal/completion"
	"pydojo/internal/curriculum"
	"pydojo/internal/devtools"
	"pydojo/internal/grading"
	"pydojo/internal/notify"
	"pydojo/internal/progress"
	"pydojo/internal/quiz"
	"pydojo/internal/state"
	"pydojo/internal/telemetry"
	"pydojo/internal/ui"

	"github.com/google/uuid"
)

const (
	AppVersion = "0.1.0"

	settingStyleVariant = "ui.style_variant"
)

var (
	ErrNoExercise     = errors.New("lesson has no exercise")
	ErrNeedsExercise  = errors.New("lesson is completed by passing its exercise")
	ErrLoginRequired  = errors.New("login required")
	ErrUnknownVariant = errors.New("unknown theme variant")
)

type App struct {
	cfg Config

	logger   *telemetry.Logger
	store    Store
	catalog  *curriculum.Catalog
	engine   *progress.Engine
	grader   grading.Grader
	auth     *auth.Service
	demo     devtools.Seeder
	renderer *ui.Renderer

	loc        *time.Location
	now        func() time.Time
	bcryptCost int
	sessionID  string

	started   bool
	startInfo StartInfo
}

type Option func(*App)

func WithClock(now func() time.Time) Option { return func(a *App) { a.now = now } }

// WithBcryptCost lowers hashing cost for tests.
func WithBcryptCost(cost int) Option { return func(a *App) { a.bcryptCost = cost } }

func New(ctx context.Context, cfg Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, err
	}

	logger, err := telemetry.NewJSONLogger(cfg.LogPath, cfg.Debug)
	if err != nil {
		return nil, err
	}

	store, err := state.NewSQLite(filepath.Join(cfg.DataDir, "state.db"))
	if err != nil {
		_ = logger.Close()
		return nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		_ = store.Close()
		_ = logger.Close()
		return nil, err
	}

	catalog, err := loadCatalog(ctx, cfg.CurriculumDir)
	if err != nil {
		_ = store.Close()
		_ = logger.Close()
		return nil, err
	}

	a := &App{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		catalog:   catalog,
		grader:    grading.NewGrader(),
		loc:       cfg.Location(),
		now:       time.Now,
		sessionID: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.cfg.UI.StyleVariant == "" {
		if settings, err := store.LoadSettings(ctx); err == nil && slices.Contains(ui.ThemeVariants(), settings[settingStyleVariant]) {
			a.cfg.UI.StyleVariant = settings[settingStyleVariant]
		}
	}
	renderer, err := ui.NewRenderer(ui.Options{
		Variant: a.cfg.UI.StyleVariant,
		ASCII:   a.cfg.UI.ASCIIOnly,
		Width:   a.cfg.UI.Width,
		Now:     a.now,
	})
	if err != nil {
		_ = store.Close()
		_ = logger.Close()
		return nil, err
	}
	a.renderer = renderer

	a.engine = progress.NewEngine(progress.NewKVStore(store),
		progress.WithClock(a.now),
		progress.WithLogger(logger),
		progress.WithLocation(a.loc),
		progress.WithModuleTotals(catalog.ModuleTotals()),
	)
	authOpts := []auth.Option{auth.WithClock(a.now), auth.WithLogger(logger)}
	if a.bcryptCost > 0 {
		authOpts = append(authOpts, auth.WithCost(a.bcryptCost))
	}
	a.auth = auth.NewService(store, authOpts...)
	if err := a.auth.Init(ctx, cfg.AdminPassword); err != nil {
		_ = store.Close()
		_ = logger.Close()
		return nil, fmt.Errorf("init auth: %w", err)
	}
	a.demo = devtools.NewManager(a.loc)

	logger.Info("app.start", map[string]any{"session": a.sessionID, "data_dir": cfg.DataDir, "modules": len(catalog.Modules())})
	return a, nil
}

func loadCatalog(ctx context.Context, dir string) (*curriculum.Catalog, error) {
	loader := curriculum.NewLoader()
	var (
		modules []curriculum.Module
		err     error
	)
	if strings.TrimSpace(dir) != "" {
		modules, err = loader.LoadDir(ctx, dir)
	} else {
		modules, err = loader.LoadBuiltin(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("load curriculum: %w", err)
	}
	if len(modules) == 0 {
		return nil, fmt.Errorf("no modules available")
	}
	return curriculum.NewCatalog(modules)
}

func (a *App) Close() {
	a.logger.Info("app.stop", map[string]any{"session": a.sessionID})
	if a.store != nil {
		_ = a.store.Close()
	}
	_ = a.logger.Close()
}

func (a *App) Config() Config { return a.cfg }
func (a *App) View() ui.View { return a.renderer }
func (a *App) Catalog() *curriculum.Catalog { return a.catalog }

// Start loads progress once per process and reports the session greeting.
func (a *App) Start(ctx context.Context) StartInfo {
	if a.started {
		return a.startInfo
	}
	res := a.engine.Load(ctx)
	info := StartInfo{
		FirstTime:  res.FirstTime,
		Streak:     res.Streak,
		StreakDays: res.StreakDays,
		NewBadges:  res.NewBadges,
	}
	if res.FirstTime {
		info.Toasts = append(info.Toasts, notify.Welcome(true))
	}
	if res.Streak == progress.StreakContinued {
		info.Toasts = append(info.Toasts, notify.Toasts(notify.Data{StreakUpdate: &notify.StreakUpdate{Days: res.StreakDays}})...)
	}
	info.Toasts = append(info.Toasts, notify.Achievements(res.NewBadges)...)
	a.started = true
	a.startInfo = info
	return info
}

// RequireUser enforces the login gate when it is enabled.
func (a *App) RequireUser(ctx context.Context) (auth.User, error) {
	if !a.cfg.RequireLogin {
		return auth.User{}, nil
	}
	u, err := a.auth.Current(ctx)
	if err != nil {
		return auth.User{}, fmt.Errorf("%w: run `pydojo login` first", ErrLoginRequired)
	}
	return u, nil
}

func (a *App) Login(ctx context.Context, username, password string) (auth.User, error) {
	return a.auth.Login(ctx, username, password)
}

func (a *App) Logout(ctx context.Context) error {
	return a.auth.Logout(ctx)
}

func (a *App) WhoAmI(ctx context.Context) (auth.User, error) {
	return a.auth.Current(ctx)
}

func (a *App) ResetPassword(ctx context.Context, username, password string) error {
	return a.auth.ResetPassword(ctx, username, password)
}

// RunExercise simulates source against a lesson's exercise, grades it,
// records the run and, on a pass, completes the lesson.
func (a *App) RunExercise(ctx context.Context, lessonID, source string) (RunOutcome, error) {
	lesson, err := a.catalog.Lesson(lessonID)
	if err != nil {
		return RunOutcome{}, err
	}
	if lesson.Exercise == nil {
		return RunOutcome{}, fmt.Errorf("%s: %w", lessonID, ErrNoExercise)
	}
	a.Start(ctx)
	a.engine.SetCurrentModule(ctx, lesson.ModuleID)

	prior, err := a.store.CountLessonRuns(ctx, lessonID)
	if err != nil {
		a.logger.Error("code_runs.count_failed", map[string]any{"lesson_id": lessonID, "error": err.Error()})
	}
	attempt := prior + 1
	started := a.now()
	result, err := a.grader.Grade(ctx, grading.Request{
		AppVersion:            AppVersion,
		LessonID:              lessonID,
		RunID:                 uuid.NewString(),
		Attempt:               attempt,
		StartedAt:             started,
		FinishedAt:            a.now(),
		Source:                source,
		ExpectedOutput:        lesson.Exercise.ExpectedOutput,
		Hint:                  lesson.Exercise.Hint,
		PartialMessage:        lesson.Exercise.PartialMessage,
		Checks:                exerciseChecks(lesson.Exercise),
		HintAfterAttempts:     a.cfg.Gameplay.HintAfterAttempts,
		MotivateAfterAttempts: a.cfg.Gameplay.MotivateAfterAttempts,
	})
	if err != nil {
		return RunOutcome{}, fmt.Errorf("grade %s: %w", lessonID, err)
	}
	if _, err := a.store.RecordCodeRun(ctx, state.CodeRun{
		ID:         result.Run.RunID,
		LessonID:   lessonID,
		Attempt:    attempt,
		Verdict:    string(result.Verdict),
		Source:     source,
		Output:     result.Output,
		StartTS:    started,
		DurationMS: result.Run.DurationMS,
	}); err != nil {
		a.logger.Error("code_runs.record_failed", map[string]any{"lesson_id": lessonID, "error": err.Error()})
	}
	a.logger.Info("exercise.graded", map[string]any{"lesson_id": lessonID, "attempt": attempt, "verdict": string(result.Verdict)})

	out := RunOutcome{
		LessonID:   lessonID,
		Attempt:    attempt,
		Grade:      result,
		StyleHints: completion.ContextualHints(source),
	}
	if !result.Passed {
		if result.Motivate {
			out.Toasts = append(out.Toasts, notify.Motivation(attempt))
		}
		return out, nil
	}

	out.NewBadges = append(out.NewBadges, a.engine.RecordCodeRun(ctx)...)
	lo := a.completeLesson(ctx, lesson)
	out.Completed = lo.Completed
	out.Completion = lo.Completion
	out.NewBadges = append(out.NewBadges, lo.NewBadges...)
	out.NextLessonID = lo.NextLessonID
	if lo.Completed {
		out.Toasts = append(out.Toasts, a.lessonToasts(lesson, lo.Completion)...)
	}
	out.Toasts = append(out.Toasts, notify.Achievements(out.NewBadges)...)
	return out, nil
}

// CompleteReading marks a lesson without an exercise as read.
func (a *App) CompleteReading(ctx context.Context, lessonID string) (LessonOutcome, error) {
	lesson, err := a.catalog.Lesson(lessonID)
	if err != nil {
		return LessonOutcome{}, err
	}
	if lesson.Exercise != nil {
		return LessonOutcome{}, fmt.Errorf("%s: %w", lessonID, ErrNeedsExercise)
	}
	a.Start(ctx)
	a.engine.SetCurrentModule(ctx, lesson.ModuleID)
	out := a.completeLesson(ctx, lesson)
	if out.Completed {
		out.Toasts = append(out.Toasts, a.lessonToasts(lesson, out.Completion)...)
	}
	out.Toasts = append(out.Toasts, notify.Achievements(out.NewBadges)...)
	return out, nil
}

func (a *App) completeLesson(ctx context.Context, lesson curriculum.Lesson) LessonOutcome {
	out := LessonOutcome{LessonID: lesson.LessonID}
	if next, ok := a.catalog.NextLesson(lesson.LessonID); ok {
		out.NextLessonID = next.LessonID
	}
	res, ok := a.engine.CompleteLesson(ctx, lesson.LessonID, lesson.XPReward)
	if !ok {
		return out
	}
	a.engine.AddTimeSpent(ctx, lesson.EstimatedMinutes)
	out.Completed = true
	out.Completion = res
	out.NewBadges = res.NewBadges
	return out
}

func (a *App) lessonToasts(lesson curriculum.Lesson, res progress.CompletionResult) []notify.Toast {
	d := notify.FromCompletion(res)
	moduleTitle := lesson.ModuleID
	if m, err := a.catalog.Module(lesson.ModuleID); err == nil {
		moduleTitle = m.Title
	}
	d.LessonComplete = &notify.LessonComplete{LessonTitle: lesson.Title, ModuleTitle: moduleTitle}
	return notify.Toasts(d)
}

// SubmitQuiz records a finished quiz attempt. XP is granted on the first
// finish whether or not the learner passed.
func (a *App) SubmitQuiz(ctx context.Context, quizID string, res quiz.Result) (QuizOutcome, error) {
	q, err := a.catalog.Quiz(quizID)
	if err != nil {
		return QuizOutcome{}, err
	}
	a.Start(ctx)
	if err := a.store.UpsertQuizScore(ctx, state.QuizScoreUpdate{
		QuizID:       quizID,
		Score:        res.Score,
		Passed:       res.Passed,
		LastPlayedTS: a.now(),
	}); err != nil {
		a.logger.Error("quiz_scores.upsert_failed", map[string]any{"quiz_id": quizID, "error": err.Error()})
	}

	out := QuizOutcome{Result: res, BestScore: res.Score, Attempts: 1}
	if scores, err := a.store.GetQuizScores(ctx); err == nil {
		if s, ok := scores[quizID]; ok {
			out.BestScore = s.BestScore
			out.Attempts = s.Attempts
		}
	}

	comp, ok := a.engine.CompleteQuiz(ctx, quizID, res.Score, q.XPReward)
	d := notify.Data{QuizComplete: &notify.QuizComplete{Score: res.Score, Perfect: res.Perfect}}
	if ok {
		out.Completed = true
		out.Completion = comp
		out.NewBadges = comp.NewBadges
		fc := notify.FromCompletion(comp)
		d.XPGained = fc.XPGained
		d.LevelUp = fc.LevelUp
	}
	out.Toasts = append(notify.Toasts(d), notify.Achievements(out.NewBadges)...)
	return out, nil
}

func (a *App) ToggleFavorite(ctx context.Context, lessonID string) (bool, error) {
	if _, err := a.catalog.Lesson(lessonID); err != nil {
		return false, err
	}
	a.Start(ctx)
	return a.engine.ToggleFavorite(ctx, lessonID), nil
}

func (a *App) SetNote(ctx context.Context, lessonID, text string) error {
	if _, err := a.catalog.Lesson(lessonID); err != nil {
		return err
	}
	a.Start(ctx)
	a.engine.AddNote(ctx, lessonID, text)
	return nil
}

func (a *App) Reset(ctx context.Context) {
	a.engine.Reset(ctx)
	a.started = false
}

func (a *App) Progress(ctx context.Context) progress.Record {
	a.Start(ctx)
	return a.engine.Progress()
}

func (a *App) SetTheme(ctx context.Context, variant string) error {
	if !slices.Contains(ui.ThemeVariants(), variant) {
		return fmt.Errorf("%w %q (known: %s)", ErrUnknownVariant, variant, strings.Join(ui.ThemeVariants(), ", "))
	}
	if err := a.store.SaveSettings(ctx, map[string]string{settingStyleVariant: variant}); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	return nil
}

// SeedScenario replaces stored progress with a named fixture and reloads it.
func (a *App) SeedScenario(ctx context.Context, name string) (StartInfo, error) {
	if _, err := a.demo.Seed(ctx, progress.NewKVStore(a.store), name, a.now()); err != nil {
		return StartInfo{}, err
	}
	if err := a.demo.SetState(ctx, filepath.Join(a.cfg.DataDir, "dev"), name); err != nil {
		a.logger.Error("dev_state.write_failed", map[string]any{"scenario": name, "error": err.Error()})
	}
	a.started = false
	return a.Start(ctx), nil
}

func (a *App) ScenarioNames() []string { return a.demo.Names() }

func (a *App) Suggest(text string, cursor int) ([]completion.Suggestion, []string) {
	return completion.Suggest(text, cursor), completion.ContextualHints(text)
}

func exerciseChecks(ex *curriculum.Exercise) []grading.CheckSpec {
	out := make([]grading.CheckSpec, 0, len(ex.Checks))
	for _, c := range ex.Checks {
		required := c.Required == nil || *c.Required
		out = append(out, grading.CheckSpec{
			ID:            c.ID,
			Type:          c.Type,
			Description:   c.Description,
			Required:      required,
			OnFailMessage: c.OnFailMessage,
			OnPassMessage: c.OnPassMessage,
			Identifier:    c.Identifier,
			Expected:      c.Expected,
			Normalize:     grading.NormalizeSpec(c.Normalize),
			Pattern:       c.Pattern,
			Equals:        c.Equals,
			Min:           c.Min,
			Max:           c.Max,
		})
	}
	return out
}
