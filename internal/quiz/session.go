package quiz

import (
	"errors"
	"fmt"
	"math"

	"pydojo/internal/curriculum"
)

var (
	ErrNoSelection   = errors.New("no answer selected")
	ErrUnknownOption = errors.New("unknown option")
	ErrAnswerLocked  = errors.New("answer already submitted")
	ErrFinished      = errors.New("quiz finished")
)

type AnswerResult struct {
	QuestionID  string
	Correct     bool
	Selected    curriculum.Option
	Answer      curriculum.Option
	Explanation string
}

type Result struct {
	QuizID  string `json:"quiz_id"`
	Score   int    `json:"score"`
	Correct int    `json:"correct"`
	Total   int    `json:"total"`
	Passed  bool   `json:"passed"`
	Perfect bool   `json:"perfect"`
}

// Session walks one attempt at a quiz: select, submit, next. A timed-out
// question is skipped with whatever was selected so far.
type Session struct {
	quiz     curriculum.Quiz
	index    int
	selected map[string]string
	revealed bool
	finished bool
}

func NewSession(q curriculum.Quiz) *Session {
	return &Session{quiz: q, selected: map[string]string{}}
}

func (s *Session) Quiz() curriculum.Quiz { return s.quiz }
func (s *Session) Index() int { return s.index }
func (s *Session) Len() int { return len(s.quiz.Questions) }
func (s *Session) Finished() bool { return s.finished }
func (s *Session) Revealed() bool { return s.revealed }

func (s *Session) Current() (curriculum.Question, bool) {
	if s.finished || s.index >= len(s.quiz.Questions) {
		return curriculum.Question{}, false
	}
	return s.quiz.Questions[s.index], true
}

func (s *Session) Select(optionID string) error {
	q, ok := s.Current()
	if !ok {
		return ErrFinished
	}
	if s.revealed {
		return ErrAnswerLocked
	}
	for _, o := range q.Options {
		if o.ID == optionID {
			s.selected[q.ID] = optionID
			return nil
		}
	}
	return fmt.Errorf("%w %q for question %s", ErrUnknownOption, optionID, q.ID)
}

// Submit locks in the current selection and reveals the answer.
func (s *Session) Submit() (AnswerResult, error) {
	q, ok := s.Current()
	if !ok {
		return AnswerResult{}, ErrFinished
	}
	id, ok := s.selected[q.ID]
	if !ok {
		return AnswerResult{}, ErrNoSelection
	}
	s.revealed = true
	answer, _ := q.CorrectOption()
	res := AnswerResult{QuestionID: q.ID, Answer: answer, Explanation: q.Explanation}
	for _, o := range q.Options {
		if o.ID == id {
			res.Selected = o
			res.Correct = o.Correct
		}
	}
	return res, nil
}

// Next advances and reports whether the quiz is now finished.
func (s *Session) Next() bool {
	if s.finished {
		return true
	}
	s.revealed = false
	if s.index >= len(s.quiz.Questions)-1 {
		s.finished = true
		return true
	}
	s.index++
	return false
}

func (s *Session) TimeUp() bool {
	return s.Next()
}

func (s *Session) Correct() int {
	n := 0
	for _, q := range s.quiz.Questions {
		id, ok := s.selected[q.ID]
		if !ok {
			continue
		}
		for _, o := range q.Options {
			if o.ID == id && o.Correct {
				n++
			}
		}
	}
	return n
}

// Score is the rounded percentage of correctly answered questions.
func (s *Session) Score() int {
	if len(s.quiz.Questions) == 0 {
		return 0
	}
	return int(math.Round(float64(s.Correct()) / float64(len(s.quiz.Questions)) * 100))
}

func (s *Session) Result() Result {
	score := s.Score()
	return Result{
		QuizID:  s.quiz.QuizID,
		Score:   score,
		Correct: s.Correct(),
		Total:   len(s.quiz.Questions),
		Passed:  score >= s.quiz.PassingScore,
		Perfect: score == 100,
	}
}
