package app

import (
	"context"

	"pydojo/internal/state"
)

type Store interface {
	EnsureSchema(ctx context.Context) error
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	RecordCodeRun(ctx context.Context, run state.CodeRun) (string, error)
	CountLessonRuns(ctx context.Context, lessonID string) (int, error)
	RecentCodeRuns(ctx context.Context, limit int) ([]state.CodeRun, error)
	UpsertQuizScore(ctx context.Context, update state.QuizScoreUpdate) error
	GetQuizScores(ctx context.Context) (map[string]state.QuizScore, error)
	SaveSettings(ctx context.Context, values map[string]string) error
	LoadSettings(ctx context.Context) (map[string]string, error)
	GetSummary(ctx context.Context) (state.Summary, error)
	Close() error
}

var _ Store = (*state.SQLiteStore)(nil)
