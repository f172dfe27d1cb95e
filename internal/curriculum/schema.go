package curriculum

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	ModuleKind             = "module"
	LessonKind             = "lesson"
	SupportedSchemaVersion = 1
)

var idPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{2,63}$`)

type Module struct {
	Kind          string      `yaml:"kind"`
	SchemaVersion int         `yaml:"schema_version"`
	ModuleID      string      `yaml:"module_id"`
	Title         string      `yaml:"title"`
	Order         int         `yaml:"order"`
	Difficulty    string      `yaml:"difficulty"`
	SummaryMD     string      `yaml:"summary_md"`
	EstimatedTime string      `yaml:"estimated_time"`
	TotalLessons  int         `yaml:"total_lessons"`
	Lessons       []LessonRef `yaml:"lessons"`
	Quizzes       []Quiz      `yaml:"quizzes"`

	Path          string   `yaml:"-"`
	LoadedLessons []Lesson `yaml:"-"`
}

type LessonRef struct {
	LessonID string `yaml:"lesson_id"`
	Path     string `yaml:"path"`
	Enabled  *bool  `yaml:"enabled"`
}

type Lesson struct {
	Kind             string    `yaml:"kind"`
	SchemaVersion    int       `yaml:"schema_version"`
	LessonID         string    `yaml:"lesson_id"`
	Title            string    `yaml:"title"`
	SummaryMD        string    `yaml:"summary_md"`
	ContentMD        string    `yaml:"content_md"`
	Difficulty       string    `yaml:"difficulty"`
	EstimatedMinutes int       `yaml:"estimated_minutes"`
	XPReward         int       `yaml:"xp_reward"`
	Tags             []string  `yaml:"tags"`
	Exercise         *Exercise `yaml:"exercise"`

	Path     string `yaml:"-"`
	ModuleID string `yaml:"-"`
}

type Exercise struct {
	StarterCode    string      `yaml:"starter_code"`
	ExpectedOutput string      `yaml:"expected_output"`
	Hint           string      `yaml:"hint"`
	PartialMessage string      `yaml:"partial_message"`
	Solution       string      `yaml:"solution"`
	Checks         []CheckSpec `yaml:"checks"`
}

type CheckSpec struct {
	ID            string `yaml:"id"`
	Type          string `yaml:"type"`
	Description   string `yaml:"description"`
	Required      *bool  `yaml:"required"`
	OnFailMessage string `yaml:"on_fail_message"`
	OnPassMessage string `yaml:"on_pass_message"`

	Identifier string        `yaml:"identifier"`
	Expected   string        `yaml:"expected"`
	Normalize  NormalizeSpec `yaml:"normalize"`

	Pattern string `yaml:"pattern"`
	Equals  int    `yaml:"equals"`
	Min     *int   `yaml:"min"`
	Max     *int   `yaml:"max"`
}

type NormalizeSpec struct {
	TrimTrailingWhitespace bool `yaml:"trim_trailing_whitespace"`
	TrimFinalNewline       bool `yaml:"trim_final_newline"`
	IgnoreCase             bool `yaml:"ignore_case"`
}

type Quiz struct {
	QuizID           string     `yaml:"quiz_id"`
	Title            string     `yaml:"title"`
	Description      string     `yaml:"description"`
	PassingScore     int        `yaml:"passing_score"`
	XPReward         int        `yaml:"xp_reward"`
	TimeLimitSeconds int        `yaml:"time_limit_seconds"`
	Questions        []Question `yaml:"questions"`
}

type Question struct {
	ID          string   `yaml:"id"`
	Prompt      string   `yaml:"prompt"`
	Difficulty  string   `yaml:"difficulty"`
	Options     []Option `yaml:"options"`
	Explanation string   `yaml:"explanation"`
	Hint        string   `yaml:"hint"`
}

type Option struct {
	ID      string `yaml:"id"`
	Text    string `yaml:"text"`
	Correct bool   `yaml:"correct"`
}

func (q Question) CorrectOption() (Option, bool) {
	for _, o := range q.Options {
		if o.Correct {
			return o, true
		}
	}
	return Option{}, false
}

func (m Module) Validate() error {
	if m.Kind != ModuleKind {
		return fmt.Errorf("kind must be %q", ModuleKind)
	}
	if m.SchemaVersion == 0 {
		return fmt.Errorf("schema_version is required")
	}
	if m.SchemaVersion > SupportedSchemaVersion {
		return fmt.Errorf("unsupported module schema_version %d (max supported %d)", m.SchemaVersion, SupportedSchemaVersion)
	}
	if !idPattern.MatchString(m.ModuleID) {
		return fmt.Errorf("invalid module_id %q", m.ModuleID)
	}
	if m.Title == "" {
		return fmt.Errorf("title is required")
	}
	if m.TotalLessons < 0 {
		return fmt.Errorf("total_lessons must be >= 0")
	}
	seen := map[string]struct{}{}
	for _, l := range m.Lessons {
		if l.LessonID == "" {
			return fmt.Errorf("lessons[].lesson_id is required")
		}
		if _, ok := seen[l.LessonID]; ok {
			return fmt.Errorf("duplicate lesson_id %q in module.yaml", l.LessonID)
		}
		seen[l.LessonID] = struct{}{}
	}
	seenQuiz := map[string]struct{}{}
	for _, q := range m.Quizzes {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("quiz %q: %w", q.QuizID, err)
		}
		if _, ok := seenQuiz[q.QuizID]; ok {
			return fmt.Errorf("duplicate quiz_id %q", q.QuizID)
		}
		seenQuiz[q.QuizID] = struct{}{}
	}
	return nil
}

func (l Lesson) Validate() error {
	if l.Kind != LessonKind {
		return fmt.Errorf("kind must be %q", LessonKind)
	}
	if l.SchemaVersion == 0 {
		return fmt.Errorf("schema_version is required")
	}
	if l.SchemaVersion > SupportedSchemaVersion {
		return fmt.Errorf("unsupported lesson schema_version %d (max supported %d)", l.SchemaVersion, SupportedSchemaVersion)
	}
	if !idPattern.MatchString(l.LessonID) {
		return fmt.Errorf("invalid lesson_id %q", l.LessonID)
	}
	if l.Title == "" {
		return fmt.Errorf("title is required")
	}
	if l.XPReward < 0 {
		return fmt.Errorf("xp_reward must be >= 0")
	}
	if l.Exercise == nil {
		return nil
	}
	seenChecks := map[string]struct{}{}
	requiredCount := 0
	for _, c := range l.Exercise.Checks {
		if c.ID == "" {
			return fmt.Errorf("checks[].id is required")
		}
		if _, ok := seenChecks[c.ID]; ok {
			return fmt.Errorf("duplicate checks id %q", c.ID)
		}
		seenChecks[c.ID] = struct{}{}
		if c.Required == nil || *c.Required {
			requiredCount++
		}
		if strings.HasPrefix(c.Type, "binding_") && c.Identifier == "" {
			return fmt.Errorf("check %q needs an identifier", c.ID)
		}
	}
	if requiredCount == 0 {
		return fmt.Errorf("exercise must have at least one required check")
	}
	return nil
}

func (q Quiz) Validate() error {
	if !idPattern.MatchString(q.QuizID) {
		return fmt.Errorf("invalid quiz_id %q", q.QuizID)
	}
	if q.PassingScore < 0 || q.PassingScore > 100 {
		return fmt.Errorf("passing_score must be 0..100")
	}
	if q.TimeLimitSeconds < 0 {
		return fmt.Errorf("time_limit_seconds must be >= 0")
	}
	if len(q.Questions) == 0 {
		return fmt.Errorf("questions must contain at least one item")
	}
	seen := map[string]struct{}{}
	for _, question := range q.Questions {
		if question.ID == "" {
			return fmt.Errorf("questions[].id is required")
		}
		if _, ok := seen[question.ID]; ok {
			return fmt.Errorf("duplicate question id %q", question.ID)
		}
		seen[question.ID] = struct{}{}
		if len(question.Options) < 2 {
			return fmt.Errorf("question %q needs at least two options", question.ID)
		}
		correct := 0
		for _, o := range question.Options {
			if o.Correct {
				correct++
			}
		}
		if correct != 1 {
			return fmt.Errorf("question %q must have exactly one correct option", question.ID)
		}
	}
	return nil
}
