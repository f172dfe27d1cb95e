package app

import (
	"context"

	"pydojo/internal/grading"
	"pydojo/internal/notify"
	"pydojo/internal/progress"
	"pydojo/internal/ui"
)

func (a *App) DashboardState(ctx context.Context) ui.DashboardState {
	rec := a.Progress(ctx)
	st := ui.DashboardState{
		Level:            rec.Level,
		XP:               rec.XPPoints,
		XPToNext:         rec.XPToNextLevel(),
		LevelPercent:     rec.LevelProgressPercent(),
		StreakDays:       rec.StreakDays,
		LastActive:       rec.LastActiveDate,
		StartDate:        rec.StartDate,
		LessonsDone:      len(rec.CompletedLessons),
		QuizzesDone:      len(rec.CompletedQuizzes),
		BadgeCount:       len(rec.Badges),
		TimeSpentMinutes: rec.TotalTimeSpent,
		CodeRuns:         rec.CodeRuns,
		CurrentModule:    rec.CurrentModule,
		Tip:              notify.Motivation(len(rec.CompletedLessons) + rec.CodeRuns).Description,
	}
	if u, err := a.auth.Current(ctx); err == nil {
		st.Username = u.Username
	}
	if sum, err := a.store.GetSummary(ctx); err == nil {
		st.Passes = sum.Passes
	} else {
		a.logger.Error("summary.load_failed", map[string]any{"error": err.Error()})
	}
	if runs, err := a.store.RecentCodeRuns(ctx, 5); err == nil {
		for _, r := range runs {
			st.RecentRuns = append(st.RecentRuns, ui.RunRow{LessonID: r.LessonID, Verdict: r.Verdict, Attempt: r.Attempt, At: r.StartTS})
		}
	}
	totals := a.catalog.ModuleTotals()
	for _, m := range a.catalog.Modules() {
		done := 0
		for _, l := range m.LoadedLessons {
			if rec.HasLesson(l.LessonID) {
				done++
			}
		}
		st.Modules = append(st.Modules, ui.ModuleRow{
			ID:      m.ModuleID,
			Title:   m.Title,
			Done:    done,
			Total:   totals[m.ModuleID],
			Percent: a.engine.CompletionPercentage(m.ModuleID),
			Current: m.ModuleID == rec.CurrentModule,
		})
	}
	return st
}

func (a *App) ModuleListings(ctx context.Context) []ui.ModuleListing {
	rec := a.Progress(ctx)
	scores, err := a.store.GetQuizScores(ctx)
	if err != nil {
		a.logger.Error("quiz_scores.load_failed", map[string]any{"error": err.Error()})
	}
	out := make([]ui.ModuleListing, 0, len(a.catalog.Modules()))
	for _, m := range a.catalog.Modules() {
		ml := ui.ModuleListing{ModuleID: m.ModuleID, Title: m.Title, Percent: a.engine.CompletionPercentage(m.ModuleID)}
		for _, l := range m.LoadedLessons {
			ml.Lessons = append(ml.Lessons, ui.LessonRow{
				LessonID:   l.LessonID,
				Title:      l.Title,
				Difficulty: l.Difficulty,
				Minutes:    l.EstimatedMinutes,
				XP:         l.XPReward,
				Completed:  rec.HasLesson(l.LessonID),
				Favorite:   rec.IsFavorite(l.LessonID),
			})
		}
		for _, q := range m.Quizzes {
			s := scores[q.QuizID]
			ml.Quizzes = append(ml.Quizzes, ui.QuizRow{
				QuizID:    q.QuizID,
				Title:     q.Title,
				Questions: len(q.Questions),
				BestScore: s.BestScore,
				Attempts:  s.Attempts,
				Completed: rec.HasQuiz(q.QuizID),
			})
		}
		out = append(out, ml)
	}
	return out
}

func (a *App) LessonPage(ctx context.Context, lessonID string) (ui.LessonPage, error) {
	lesson, err := a.catalog.Lesson(lessonID)
	if err != nil {
		return ui.LessonPage{}, err
	}
	rec := a.Progress(ctx)
	page := ui.LessonPage{
		LessonID:    lesson.LessonID,
		Title:       lesson.Title,
		ModuleTitle: lesson.ModuleID,
		Difficulty:  lesson.Difficulty,
		Minutes:     lesson.EstimatedMinutes,
		XP:          lesson.XPReward,
		ContentMD:   lesson.ContentMD,
		Note:        rec.Notes[lesson.LessonID],
		HasExercise: lesson.Exercise != nil,
		Completed:   rec.HasLesson(lesson.LessonID),
		Favorite:    rec.IsFavorite(lesson.LessonID),
	}
	if page.ContentMD == "" {
		page.ContentMD = lesson.SummaryMD
	}
	if m, err := a.catalog.Module(lesson.ModuleID); err == nil {
		page.ModuleTitle = m.Title
	}
	if lesson.Exercise != nil {
		page.StarterCode = lesson.Exercise.StarterCode
	}
	return page, nil
}

func (a *App) BadgeRows(ctx context.Context) []ui.BadgeRow {
	rec := a.Progress(ctx)
	catalog := progress.Achievements()
	out := make([]ui.BadgeRow, 0, len(catalog))
	for _, ach := range catalog {
		out = append(out, ui.BadgeRow{Achievement: ach, Earned: rec.HasBadge(ach.ID)})
	}
	return out
}

// GradeView flattens a grading result for display.
func GradeView(res grading.Result) ui.GradeView {
	gv := ui.GradeView{
		LessonID:    res.LessonID,
		Verdict:     string(res.Verdict),
		Attempt:     res.Run.Attempt,
		Feedback:    res.Feedback,
		Output:      res.Output,
		Hint:        res.Hint,
		Motivate:    res.Motivate,
		Suggestions: res.Suggestions,
	}
	for _, c := range res.Checks {
		desc := c.Description
		if desc == "" {
			desc = c.Summary
		}
		gv.Checks = append(gv.Checks, ui.CheckLine{
			ID:          c.ID,
			Description: desc,
			Required:    c.Required,
			Passed:      c.Passed,
			Message:     c.Message,
		})
	}
	for _, art := range res.Artifacts {
		if art.Kind == "unified_diff" {
			gv.Diff = art.TextPreview
			break
		}
	}
	return gv
}
