package quiz

import (
	"context"
	"errors"
	"testing"
	"time"

	"pydojo/internal/curriculum"
)

func sampleQuiz() curriculum.Quiz {
	q := func(id string) curriculum.Question {
		return curriculum.Question{
			ID:          id,
			Explanation: "because",
			Options:     []curriculum.Option{{ID: "a", Text: "right", Correct: true}, {ID: "b", Text: "wrong"}},
		}
	}
	return curriculum.Quiz{QuizID: "basics_quiz", PassingScore: 70, Questions: []curriculum.Question{q("q1"), q("q2"), q("q3")}}
}

func TestSessionScoresRoundedPercentage(t *testing.T) {
	s := NewSession(sampleQuiz())
	answers := []string{"a", "a", "b"}
	for i, a := range answers {
		if err := s.Select(a); err != nil {
			t.Fatalf("select %d: %v", i, err)
		}
		res, err := s.Submit()
		if err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		if res.Correct != (a == "a") || res.Answer.ID != "a" {
			t.Fatalf("unexpected answer result %#v", res)
		}
		done := s.Next()
		if done != (i == len(answers)-1) {
			t.Fatalf("unexpected finished state at %d", i)
		}
	}
	r := s.Result()
	if r.Score != 67 || r.Correct != 2 || r.Passed || r.Perfect {
		t.Fatalf("unexpected result %#v", r)
	}
}

func TestSessionRequiresSelectionAndLocksAnswer(t *testing.T) {
	s := NewSession(sampleQuiz())
	if _, err := s.Submit(); !errors.Is(err, ErrNoSelection) {
		t.Fatalf("expected ErrNoSelection, got %v", err)
	}
	if err := s.Select("z"); !errors.Is(err, ErrUnknownOption) {
		t.Fatalf("expected ErrUnknownOption, got %v", err)
	}
	_ = s.Select("b")
	if _, err := s.Submit(); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := s.Select("a"); !errors.Is(err, ErrAnswerLocked) {
		t.Fatalf("expected ErrAnswerLocked, got %v", err)
	}
}

func TestSessionTimeUpSkipsQuestion(t *testing.T) {
	s := NewSession(sampleQuiz())
	s.TimeUp()
	s.TimeUp()
	_ = s.Select("a")
	if !s.TimeUp() {
		t.Fatalf("expected finish after last question")
	}
	if _, ok := s.Current(); ok {
		t.Fatalf("finished session has no current question")
	}
	if r := s.Result(); r.Score != 33 || r.Correct != 1 {
		t.Fatalf("selection kept on time-up should count, got %#v", r)
	}
}

func TestCountdownExpires(t *testing.T) {
	c := StartCountdown(context.Background(), 30*time.Millisecond, 5*time.Millisecond)
	defer c.Stop()
	select {
	case <-c.Expired():
	case <-time.After(2 * time.Second):
		t.Fatalf("countdown did not expire")
	}
	if c.Remaining() != 0 {
		t.Fatalf("expected zero remaining, got %v", c.Remaining())
	}
}

func TestCountdownStopAndCancel(t *testing.T) {
	c := StartCountdown(context.Background(), time.Hour, time.Millisecond)
	c.Stop()
	c.Stop()
	select {
	case <-c.Expired():
		t.Fatalf("stopped countdown must not expire")
	default:
	}

	ctx, cancel := context.WithCancel(context.Background())
	c = StartCountdown(ctx, 0, time.Millisecond)
	cancel()
	c.Stop()
	if c.Remaining() != 0 {
		t.Fatalf("untimed countdown should report zero")
	}
}
