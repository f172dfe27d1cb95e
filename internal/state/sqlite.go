package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv_store (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_ts TEXT NOT NULL DEFAULT (datetime('now'))
		);`,
		`CREATE TABLE IF NOT EXISTS code_runs (
			id TEXT PRIMARY KEY,
			lesson_id TEXT NOT NULL,
			attempt INTEGER NOT NULL DEFAULT 1,
			verdict TEXT NOT NULL,
			output TEXT NOT NULL DEFAULT '',
			start_ts TEXT NOT NULL,
			duration_ms INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS code_runs_lesson ON code_runs(lesson_id);`,
		`CREATE TABLE IF NOT EXISTS quiz_scores (
			quiz_id TEXT PRIMARY KEY,
			attempts INTEGER NOT NULL DEFAULT 0,
			best_score INTEGER NOT NULL DEFAULT 0,
			last_score INTEGER NOT NULL DEFAULT 0,
			passed_count INTEGER NOT NULL DEFAULT 0,
			last_played_ts TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS app_settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	// Backfill databases created before code_runs.source existed.
	if _, err := s.db.ExecContext(ctx, `ALTER TABLE code_runs ADD COLUMN source TEXT NOT NULL DEFAULT ''`); err != nil {
		msg := strings.ToLower(err.Error())
		if !strings.Contains(msg, "duplicate column name") {
			return fmt.Errorf("ensure schema alter code_runs.source: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *SQLiteStore) Put(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv_store(key, value, updated_ts) VALUES(?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_ts = excluded.updated_ts
	`, key, value, time.Now().UTC().Format(timeLayout))
	return err
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv_store WHERE key = ?`, key)
	return err
}

func (s *SQLiteStore) RecordCodeRun(ctx context.Context, run CodeRun) (string, error) {
	id := strings.TrimSpace(run.ID)
	if id == "" {
		id = uuid.NewString()
	}
	start := run.StartTS
	if start.IsZero() {
		start = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO code_runs(id, lesson_id, attempt, verdict, source, output, start_ts, duration_ms) VALUES(?,?,?,?,?,?,?,?)`,
		id,
		run.LessonID,
		max(1, run.Attempt),
		run.Verdict,
		run.Source,
		run.Output,
		start.UTC().Format(timeLayout),
		max(0, run.DurationMS),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *SQLiteStore) CountLessonRuns(ctx context.Context, lessonID string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM code_runs WHERE lesson_id = ?`, lessonID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *SQLiteStore) RecentCodeRuns(ctx context.Context, limit int) ([]CodeRun, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, lesson_id, attempt, verdict, source, output, start_ts, duration_ms
		FROM code_runs
		ORDER BY start_ts DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []CodeRun{}
	for rows.Next() {
		var (
			run      CodeRun
			startRaw string
		)
		if err := rows.Scan(&run.ID, &run.LessonID, &run.Attempt, &run.Verdict, &run.Source, &run.Output, &startRaw, &run.DurationMS); err != nil {
			return nil, err
		}
		if t, err := time.Parse(timeLayout, startRaw); err == nil {
			run.StartTS = t
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLiteStore) UpsertQuizScore(ctx context.Context, update QuizScoreUpdate) error {
	quizID := strings.TrimSpace(update.QuizID)
	if quizID == "" {
		return nil
	}
	playTS := update.LastPlayedTS
	if playTS.IsZero() {
		playTS = time.Now().UTC()
	}
	score := min(100, max(0, update.Score))
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO quiz_scores(quiz_id, attempts, best_score, last_score, passed_count, last_played_ts)
		VALUES(?, 1, ?, ?, ?, ?)
		ON CONFLICT(quiz_id) DO UPDATE SET
			attempts = quiz_scores.attempts + 1,
			best_score = CASE
				WHEN excluded.best_score > quiz_scores.best_score THEN excluded.best_score
				ELSE quiz_scores.best_score
			END,
			last_score = excluded.last_score,
			passed_count = quiz_scores.passed_count + excluded.passed_count,
			last_played_ts = excluded.last_played_ts
	`,
		quizID,
		score,
		score,
		ifThen(update.Passed, 1, 0),
		playTS.UTC().Format(timeLayout),
	)
	return err
}

func (s *SQLiteStore) GetQuizScores(ctx context.Context) (map[string]QuizScore, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT quiz_id, attempts, best_score, last_score, passed_count, last_played_ts
		FROM quiz_scores
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]QuizScore{}
	for rows.Next() {
		var (
			qs         QuizScore
			lastPlayed string
		)
		if err := rows.Scan(&qs.QuizID, &qs.Attempts, &qs.BestScore, &qs.LastScore, &qs.PassedCount, &lastPlayed); err != nil {
			return nil, err
		}
		if t, err := time.Parse(timeLayout, lastPlayed); err == nil {
			qs.LastPlayedTS = t
		}
		out[qs.QuizID] = qs
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLiteStore) SaveSettings(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	for key, value := range values {
		k := strings.TrimSpace(key)
		if k == "" {
			continue
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO app_settings(key, value) VALUES(?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, k, value); err != nil {
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	return nil
}

func (s *SQLiteStore) LoadSettings(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM app_settings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLiteStore) GetSummary(ctx context.Context) (Summary, error) {
	var out Summary
	row := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) as code_runs,
			COALESCE(SUM(CASE WHEN verdict = 'pass' THEN 1 ELSE 0 END),0) as passes,
			COALESCE(SUM(CASE WHEN verdict = 'partial' THEN 1 ELSE 0 END),0) as partials,
			(SELECT COALESCE(SUM(attempts),0) FROM quiz_scores) as quiz_attempts
		FROM code_runs
	`)
	if err := row.Scan(&out.CodeRuns, &out.Passes, &out.Partials, &out.QuizAttempts); err != nil {
		return Summary{}, err
	}
	return out, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func ifThen(cond bool, a, b int) int {
	if cond {
		return a
	}
	return b
}
