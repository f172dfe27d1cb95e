package curriculum

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuiltinCatalogLoadsExpectedModules(t *testing.T) {
	modules, err := NewLoader().LoadBuiltin(context.Background())
	if err != nil {
		t.Fatalf("load builtin: %v", err)
	}
	if len(modules) != 2 || modules[0].ModuleID != "fundamentals" || modules[1].ModuleID != "control_flow" {
		t.Fatalf("unexpected modules %#v", modules)
	}

	got := []string{}
	for _, l := range modules[0].LoadedLessons {
		got = append(got, l.LessonID)
	}
	want := []string{"fundamentals_variables_intro", "fundamentals_fstrings", "fundamentals_booleans"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("manifest order mismatch: got %v want %v", got, want)
	}
	if len(modules[1].LoadedLessons) != 2 || modules[1].LoadedLessons[0].LessonID != "control_flow_conditions" {
		t.Fatalf("expected scanned lessons sorted by id, got %#v", modules[1].LoadedLessons)
	}

	intro := modules[0].LoadedLessons[0]
	if intro.Exercise == nil || len(intro.Exercise.Checks) == 0 {
		t.Fatalf("expected intro exercise with checks")
	}
	for _, c := range intro.Exercise.Checks {
		if c.Required == nil {
			t.Fatalf("check %s should have required defaulted", c.ID)
		}
	}
	if intro.ModuleID != "fundamentals" {
		t.Fatalf("expected module id hydrated, got %q", intro.ModuleID)
	}
}

func TestCatalogLookups(t *testing.T) {
	modules, err := NewLoader().LoadBuiltin(context.Background())
	if err != nil {
		t.Fatalf("load builtin: %v", err)
	}
	c, err := NewCatalog(modules)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if _, err := c.Lesson("missing_lesson"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	q, err := c.Quiz("python_basics_variables_quiz")
	if err != nil {
		t.Fatalf("quiz: %v", err)
	}
	if q.PassingScore != 70 || q.XPReward != 25 || len(q.Questions) != 4 {
		t.Fatalf("unexpected quiz %#v", q)
	}
	m, err := c.ModuleForLesson("fundamentals_fstrings")
	if err != nil || m.ModuleID != "fundamentals" {
		t.Fatalf("unexpected module %q err=%v", m.ModuleID, err)
	}
	totals := c.ModuleTotals()
	if totals["fundamentals"] != 3 || totals["control_flow"] != 2 {
		t.Fatalf("unexpected totals %#v", totals)
	}
	next, ok := c.NextLesson("fundamentals_variables_intro")
	if !ok || next.LessonID != "fundamentals_fstrings" {
		t.Fatalf("unexpected next lesson %q", next.LessonID)
	}
	if _, ok := c.NextLesson("fundamentals_booleans"); ok {
		t.Fatalf("last lesson has no next")
	}
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDirRejectsLessonOutsideModulePrefix(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "strings", "module.yaml"), "kind: module\nschema_version: 1\nmodule_id: strings\ntitle: Strings\n")
	writeFile(t, filepath.Join(root, "strings", "lessons", "a", "lesson.yaml"), "kind: lesson\nschema_version: 1\nlesson_id: loops_one\ntitle: Wrong\n")
	if _, err := NewLoader().LoadDir(context.Background(), root); err == nil || !strings.Contains(err.Error(), "prefixed") {
		t.Fatalf("expected prefix error, got %v", err)
	}
}

func TestLoadDirAppliesDefaults(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "strings", "module.yaml"), `kind: module
schema_version: 1
module_id: strings
title: Strings
total_lessons: 4
quizzes:
  - quiz_id: strings_quiz
    questions:
      - id: q1
        prompt: pick
        options:
          - {id: a, text: yes, correct: true}
          - {id: b, text: no}
`)
	writeFile(t, filepath.Join(root, "strings", "lessons", "a", "lesson.yaml"), `kind: lesson
schema_version: 1
lesson_id: strings_slicing
title: Slicing
exercise:
  checks:
    - id: out
      type: output_contains
      expected: ell
`)
	modules, err := NewLoader().LoadDir(context.Background(), root)
	if err != nil {
		t.Fatalf("load dir: %v", err)
	}
	l := modules[0].LoadedLessons[0]
	if l.XPReward != 15 || l.EstimatedMinutes != 15 || l.Difficulty != "beginner" {
		t.Fatalf("expected lesson defaults, got %#v", l)
	}
	q := modules[0].Quizzes[0]
	if q.PassingScore != 70 || q.XPReward != 20 {
		t.Fatalf("expected quiz defaults, got %#v", q)
	}
	c, err := NewCatalog(modules)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if c.ModuleTotals()["strings"] != 4 {
		t.Fatalf("declared total_lessons should win")
	}
}

func TestLoadContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewLoader().LoadBuiltin(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
