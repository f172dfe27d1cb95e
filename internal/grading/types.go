package grading

import "time"

const (
	ResultKind    = "grader_result"
	SchemaVersion = 1
)

type Verdict string

const (
	VerdictPass    Verdict = "pass"
	VerdictPartial Verdict = "partial"
	VerdictFail    Verdict = "fail"
)

// Check categories. A partial verdict means every required binding check
// held while an output check did not.
const (
	CategoryBinding = "binding"
	CategoryOutput  = "output"
)

type Request struct {
	AppVersion string
	LessonID   string

	RunID      string
	Attempt    int
	StartedAt  time.Time
	FinishedAt time.Time

	Source         string
	ExpectedOutput string
	Hint           string
	PartialMessage string
	Checks         []CheckSpec

	HintAfterAttempts     int
	MotivateAfterAttempts int
}

type CheckSpec struct {
	ID            string
	Type          string
	Description   string
	Required      bool
	OnFailMessage string
	OnPassMessage string

	Identifier string
	Expected   string
	Normalize  NormalizeSpec

	Pattern string
	Equals  int
	Min     *int
	Max     *int
}

type NormalizeSpec struct {
	TrimTrailingWhitespace bool
	TrimFinalNewline       bool
	IgnoreCase             bool
}

type Result struct {
	Kind          string `json:"kind"`
	SchemaVersion int    `json:"schema_version"`

	AppVersion string `json:"app_version,omitempty"`
	LessonID   string `json:"lesson_id"`

	Run         RunInfo           `json:"run"`
	Verdict     Verdict           `json:"verdict"`
	Passed      bool              `json:"passed"`
	Output      string            `json:"output"`
	Bindings    map[string]string `json:"bindings,omitempty"`
	Checks      []CheckResult     `json:"checks"`
	Artifacts   []Artifact        `json:"artifacts,omitempty"`
	Feedback    string            `json:"feedback"`
	Hint        string            `json:"hint,omitempty"`
	Motivate    bool              `json:"motivate,omitempty"`
	Suggestions []string          `json:"suggestions,omitempty"`
}

type RunInfo struct {
	RunID            string `json:"run_id"`
	Attempt          int    `json:"attempt"`
	StartedAtUnixMS  int64  `json:"started_at_unix_ms"`
	FinishedAtUnixMS int64  `json:"finished_at_unix_ms"`
	DurationMS       int64  `json:"duration_ms"`
}

type CheckResult struct {
	ID          string        `json:"id"`
	Type        string        `json:"type"`
	Category    string        `json:"category"`
	Description string        `json:"description,omitempty"`
	Required    bool          `json:"required"`
	Passed      bool          `json:"passed"`
	Summary     string        `json:"summary,omitempty"`
	Message     string        `json:"message,omitempty"`
	Artifacts   []ArtifactRef `json:"artifacts,omitempty"`
}

type ArtifactRef struct {
	Kind string `json:"kind"`
	Ref  string `json:"ref"`
}

type Artifact struct {
	Ref         string `json:"ref"`
	Kind        string `json:"kind"`
	Title       string `json:"title,omitempty"`
	TextPreview string `json:"text_preview,omitempty"`
}

type evaluation struct {
	Passed   bool
	Summary  string
	Message  string
	Artifact *Artifact
}
