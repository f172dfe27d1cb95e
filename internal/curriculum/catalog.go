package curriculum

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")

// Catalog indexes loaded modules for lookups. It is read-only once built.
type Catalog struct {
	modules []Module
	lessons map[string]Lesson
	quizzes map[string]quizEntry
	byID    map[string]int
}

type quizEntry struct {
	quiz     Quiz
	moduleID string
}

func NewCatalog(modules []Module) (*Catalog, error) {
	c := &Catalog{
		modules: modules,
		lessons: map[string]Lesson{},
		quizzes: map[string]quizEntry{},
		byID:    map[string]int{},
	}
	for i, m := range modules {
		if _, ok := c.byID[m.ModuleID]; ok {
			return nil, fmt.Errorf("duplicate module_id %q", m.ModuleID)
		}
		c.byID[m.ModuleID] = i
		for _, l := range m.LoadedLessons {
			if _, ok := c.lessons[l.LessonID]; ok {
				return nil, fmt.Errorf("duplicate lesson_id %q", l.LessonID)
			}
			c.lessons[l.LessonID] = l
		}
		for _, q := range m.Quizzes {
			if _, ok := c.quizzes[q.QuizID]; ok {
				return nil, fmt.Errorf("duplicate quiz_id %q", q.QuizID)
			}
			c.quizzes[q.QuizID] = quizEntry{quiz: q, moduleID: m.ModuleID}
		}
	}
	return c, nil
}

func (c *Catalog) Modules() []Module {
	return c.modules
}

func (c *Catalog) Module(id string) (Module, error) {
	i, ok := c.byID[id]
	if !ok {
		return Module{}, fmt.Errorf("module %s: %w", id, ErrNotFound)
	}
	return c.modules[i], nil
}

func (c *Catalog) Lesson(id string) (Lesson, error) {
	l, ok := c.lessons[id]
	if !ok {
		return Lesson{}, fmt.Errorf("lesson %s: %w", id, ErrNotFound)
	}
	return l, nil
}

func (c *Catalog) Quiz(id string) (Quiz, error) {
	q, ok := c.quizzes[id]
	if !ok {
		return Quiz{}, fmt.Errorf("quiz %s: %w", id, ErrNotFound)
	}
	return q.quiz, nil
}

func (c *Catalog) ModuleForLesson(lessonID string) (Module, error) {
	l, err := c.Lesson(lessonID)
	if err != nil {
		return Module{}, err
	}
	return c.Module(l.ModuleID)
}

// ModuleTotals maps each module id to its lesson count. A module's declared
// total_lessons wins over the number of lessons actually shipped.
func (c *Catalog) ModuleTotals() map[string]int {
	out := make(map[string]int, len(c.modules))
	for _, m := range c.modules {
		total := m.TotalLessons
		if total == 0 {
			total = len(m.LoadedLessons)
		}
		out[m.ModuleID] = total
	}
	return out
}

// NextLesson returns the lesson after lessonID within its module.
func (c *Catalog) NextLesson(lessonID string) (Lesson, bool) {
	m, err := c.ModuleForLesson(lessonID)
	if err != nil {
		return Lesson{}, false
	}
	for i, l := range m.LoadedLessons {
		if l.LessonID == lessonID && i+1 < len(m.LoadedLessons) {
			return m.LoadedLessons[i+1], true
		}
	}
	return Lesson{}, false
}
