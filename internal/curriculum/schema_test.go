package curriculum

import "testing"

func TestModuleValidateRejectsUnsupportedSchemaVersion(t *testing.T) {
	m := Module{Kind: ModuleKind, SchemaVersion: SupportedSchemaVersion + 1, ModuleID: "fundamentals", Title: "x"}
	if err := m.Validate(); err == nil {
		t.Fatalf("expected unsupported schema version error")
	}
}

func TestLessonValidateRequiresAtLeastOneRequiredCheck(t *testing.T) {
	required := false
	l := Lesson{
		Kind:          LessonKind,
		SchemaVersion: 1,
		LessonID:      "fundamentals_x",
		Title:         "x",
		Exercise: &Exercise{Checks: []CheckSpec{
			{ID: "c1", Type: "output_contains", Required: &required, Expected: "hi"},
		}},
	}
	if err := l.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLessonValidateBindingCheckNeedsIdentifier(t *testing.T) {
	l := Lesson{
		Kind:          LessonKind,
		SchemaVersion: 1,
		LessonID:      "fundamentals_x",
		Title:         "x",
		Exercise:      &Exercise{Checks: []CheckSpec{{ID: "c1", Type: "binding_equals", Expected: "5"}}},
	}
	if err := l.Validate(); err == nil {
		t.Fatalf("expected missing identifier error")
	}
}

func TestQuizValidate(t *testing.T) {
	q := Quiz{
		QuizID:       "basics_quiz",
		PassingScore: 70,
		Questions: []Question{{
			ID:      "q1",
			Options: []Option{{ID: "a", Correct: true}, {ID: "b", Correct: true}},
		}},
	}
	if err := q.Validate(); err == nil {
		t.Fatalf("expected exactly-one-correct error")
	}
	q.Questions[0].Options[1].Correct = false
	if err := q.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q.PassingScore = 120
	if err := q.Validate(); err == nil {
		t.Fatalf("expected passing score range error")
	}
}
