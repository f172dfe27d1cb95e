package state

import (
	"context"
	"time"
)

type Store interface {
	EnsureSchema(ctx context.Context) error
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	RecordCodeRun(ctx context.Context, run CodeRun) (string, error)
	CountLessonRuns(ctx context.Context, lessonID string) (int, error)
	RecentCodeRuns(ctx context.Context, limit int) ([]CodeRun, error)
	UpsertQuizScore(ctx context.Context, update QuizScoreUpdate) error
	GetQuizScores(ctx context.Context) (map[string]QuizScore, error)
	SaveSettings(ctx context.Context, values map[string]string) error
	LoadSettings(ctx context.Context) (map[string]string, error)
	GetSummary(ctx context.Context) (Summary, error)
	Close() error
}

type CodeRun struct {
	ID         string
	LessonID   string
	Attempt    int
	Verdict    string
	Source     string
	Output     string
	StartTS    time.Time
	DurationMS int64
}

type QuizScoreUpdate struct {
	QuizID       string
	Score        int
	Passed       bool
	LastPlayedTS time.Time
}

type QuizScore struct {
	QuizID       string
	Attempts     int
	BestScore    int
	LastScore    int
	PassedCount  int
	LastPlayedTS time.Time
}

type Summary struct {
	CodeRuns     int
	Passes       int
	Partials     int
	QuizAttempts int
}
