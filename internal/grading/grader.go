package grading

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"pydojo/internal/completion"
	"pydojo/internal/simulator"
)

type evaluatorFunc func(context.Context, simulator.Result, CheckSpec) (evaluation, error)

type DefaultGrader struct {
	registry   map[string]evaluatorFunc
	categories map[string]string
}

func NewGrader() *DefaultGrader {
	g := &DefaultGrader{registry: map[string]evaluatorFunc{}, categories: map[string]string{}}
	g.register("binding_equals", CategoryBinding, g.evalBindingEquals)
	g.register("binding_exists", CategoryBinding, g.evalBindingExists)
	g.register("output_contains", CategoryOutput, g.evalOutputContains)
	g.register("output_equals", CategoryOutput, g.evalOutputEquals)
	g.register("output_matches_regex", CategoryOutput, g.evalOutputMatchesRegex)
	g.register("output_lines_count", CategoryOutput, g.evalOutputLinesCount)
	return g
}

func (g *DefaultGrader) register(checkType, category string, fn evaluatorFunc) {
	g.registry[checkType] = fn
	g.categories[checkType] = category
}

// KnownCheckType reports whether the grader can evaluate checkType.
func (g *DefaultGrader) KnownCheckType(checkType string) bool {
	_, ok := g.registry[checkType]
	return ok
}

func (g *DefaultGrader) Grade(ctx context.Context, req Request) (Result, error) {
	if req.FinishedAt.IsZero() {
		req.FinishedAt = time.Now()
	}
	if req.StartedAt.IsZero() {
		req.StartedAt = req.FinishedAt
	}

	run := simulator.Run(req.Source)
	result := Result{
		Kind:          ResultKind,
		SchemaVersion: SchemaVersion,
		AppVersion:    req.AppVersion,
		LessonID:      req.LessonID,
		Run: RunInfo{
			RunID:            req.RunID,
			Attempt:          max(1, req.Attempt),
			StartedAtUnixMS:  req.StartedAt.UnixMilli(),
			FinishedAtUnixMS: req.FinishedAt.UnixMilli(),
			DurationMS:       max(0, req.FinishedAt.Sub(req.StartedAt).Milliseconds()),
		},
		Output:   run.Output,
		Bindings: run.Bindings.Rendered(),
	}

	requiredFailed := false
	bindingRequired := 0
	bindingFailed := false
	outputFailed := false

	for _, check := range req.Checks {
		eval, err := g.evaluateCheck(ctx, run, check)
		if err != nil {
			return Result{}, err
		}
		msg := eval.Message
		if !eval.Passed && check.OnFailMessage != "" {
			msg = check.OnFailMessage
		}
		if eval.Passed && check.OnPassMessage != "" {
			msg = check.OnPassMessage
		}
		category := g.categories[check.Type]
		cr := CheckResult{
			ID:          check.ID,
			Type:        check.Type,
			Category:    category,
			Description: check.Description,
			Required:    check.Required,
			Passed:      eval.Passed,
			Summary:     eval.Summary,
			Message:     msg,
		}
		if eval.Artifact != nil {
			result.Artifacts = append(result.Artifacts, *eval.Artifact)
			cr.Artifacts = append(cr.Artifacts, ArtifactRef{Kind: eval.Artifact.Kind, Ref: eval.Artifact.Ref})
		}
		if check.Required {
			if category == CategoryBinding {
				bindingRequired++
			}
			if !eval.Passed {
				requiredFailed = true
				if category == CategoryBinding {
					bindingFailed = true
				} else {
					outputFailed = true
				}
			}
		}
		result.Checks = append(result.Checks, cr)
	}

	switch {
	case !requiredFailed:
		result.Verdict = VerdictPass
	case bindingRequired > 0 && !bindingFailed && outputFailed:
		result.Verdict = VerdictPartial
	default:
		result.Verdict = VerdictFail
	}
	result.Passed = result.Verdict == VerdictPass

	if !result.Passed && len(result.Artifacts) == 0 && req.ExpectedOutput != "" {
		result.Artifacts = append(result.Artifacts, Artifact{
			Ref:         "diff_expected_output",
			Kind:        "unified_diff",
			Title:       "output vs expected",
			TextPreview: buildUnifiedDiff(req.ExpectedOutput, run.Output),
		})
	}

	hintAfter := defaultInt(req.HintAfterAttempts, 2)
	motivateAfter := defaultInt(req.MotivateAfterAttempts, 3)
	switch result.Verdict {
	case VerdictPass:
		result.Feedback = "Excellent work! All checks passed."
	case VerdictPartial:
		result.Feedback = firstNonEmpty(req.PartialMessage, "Almost there! Your variables are right, now print them using an f-string.")
		result.Motivate = result.Run.Attempt >= motivateAfter
	default:
		result.Feedback = "Keep trying! Create the variables and use print statements."
	}
	if result.Verdict == VerdictFail && req.Hint != "" && result.Run.Attempt >= hintAfter {
		result.Hint = req.Hint
		result.Feedback += " Hint revealed below!"
	}
	result.Suggestions = placeholderSuggestions(run)
	return result, nil
}

func (g *DefaultGrader) evaluateCheck(ctx context.Context, run simulator.Result, check CheckSpec) (evaluation, error) {
	evaluator, ok := g.registry[check.Type]
	if !ok {
		return evaluation{Passed: false, Summary: "unknown check", Message: "unknown check type: " + check.Type}, nil
	}
	return evaluator(ctx, run, check)
}

func (g *DefaultGrader) evalBindingEquals(_ context.Context, run simulator.Result, check CheckSpec) (evaluation, error) {
	got, ok := run.Bindings.Get(check.Identifier)
	if !ok {
		return evaluation{Passed: false, Summary: "variable missing", Message: fmt.Sprintf("create a variable named %s", check.Identifier)}, nil
	}
	want := simulator.Classify(check.Expected)
	if got.Equal(want) {
		return evaluation{Passed: true, Summary: "variable matches", Message: "ok"}, nil
	}
	return evaluation{
		Passed:  false,
		Summary: "variable mismatch",
		Message: fmt.Sprintf("%s is %s (%s), expected %s (%s)", check.Identifier, got.Render(), got.Kind(), want.Render(), want.Kind()),
	}, nil
}

func (g *DefaultGrader) evalBindingExists(_ context.Context, run simulator.Result, check CheckSpec) (evaluation, error) {
	if _, ok := run.Bindings.Get(check.Identifier); ok {
		return evaluation{Passed: true, Summary: "variable defined", Message: "ok"}, nil
	}
	return evaluation{Passed: false, Summary: "variable missing", Message: fmt.Sprintf("create a variable named %s", check.Identifier)}, nil
}

func (g *DefaultGrader) evalOutputContains(_ context.Context, run simulator.Result, check CheckSpec) (evaluation, error) {
	actual := normalizeText(run.Output, check.Normalize)
	needle := normalizeText(check.Expected, check.Normalize)
	if strings.Contains(actual, needle) {
		return evaluation{Passed: true, Summary: "output contains text", Message: "ok"}, nil
	}
	return evaluation{Passed: false, Summary: "text not printed", Message: fmt.Sprintf("output should contain %q", check.Expected)}, nil
}

func (g *DefaultGrader) evalOutputEquals(_ context.Context, run simulator.Result, check CheckSpec) (evaluation, error) {
	expected := normalizeText(check.Expected, check.Normalize)
	actual := normalizeText(run.Output, check.Normalize)
	if actual == expected {
		return evaluation{Passed: true, Summary: "output matches", Message: "ok"}, nil
	}
	artifact := Artifact{
		Ref:         "diff_" + safeID(check.ID),
		Kind:        "unified_diff",
		Title:       "output vs expected",
		TextPreview: buildUnifiedDiff(expected, actual),
	}
	return evaluation{Passed: false, Summary: "output mismatch", Message: "printed output differs", Artifact: &artifact}, nil
}

func (g *DefaultGrader) evalOutputMatchesRegex(_ context.Context, run simulator.Result, check CheckSpec) (evaluation, error) {
	r, err := regexp.Compile(check.Pattern)
	if err != nil {
		return evaluation{}, fmt.Errorf("check %s: %w", check.ID, err)
	}
	if r.MatchString(run.Output) {
		return evaluation{Passed: true, Summary: "output matches pattern", Message: "ok"}, nil
	}
	return evaluation{Passed: false, Summary: "pattern not found", Message: "output does not match the expected shape"}, nil
}

func (g *DefaultGrader) evalOutputLinesCount(_ context.Context, run simulator.Result, check CheckSpec) (evaluation, error) {
	count := len(run.Lines)
	if check.Equals > 0 {
		if count == check.Equals {
			return evaluation{Passed: true, Summary: "line count matches", Message: "ok"}, nil
		}
		return evaluation{Passed: false, Summary: "line count mismatch", Message: fmt.Sprintf("expected %d lines got %d", check.Equals, count)}, nil
	}
	if check.Min != nil && count < *check.Min {
		return evaluation{Passed: false, Summary: "line count below minimum", Message: fmt.Sprintf("min %d got %d", *check.Min, count)}, nil
	}
	if check.Max != nil && count > *check.Max {
		return evaluation{Passed: false, Summary: "line count above maximum", Message: fmt.Sprintf("max %d got %d", *check.Max, count)}, nil
	}
	return evaluation{Passed: true, Summary: "line count within range", Message: "ok"}, nil
}

func placeholderSuggestions(run simulator.Result) []string {
	if len(run.Unresolved) == 0 {
		return nil
	}
	names := run.Bindings.Names()
	out := []string{}
	for _, missing := range run.Unresolved {
		if best, ok := completion.DidYouMean(missing, names); ok {
			out = append(out, fmt.Sprintf("Did you mean {%s} instead of {%s}?", best, missing))
			continue
		}
		out = append(out, fmt.Sprintf("{%s} is not defined yet. Assign it before printing.", missing))
	}
	return out
}

func normalizeText(s string, n NormalizeSpec) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if n.TrimTrailingWhitespace {
		lines := strings.Split(s, "\n")
		for i, line := range lines {
			lines[i] = strings.TrimRight(line, " \t")
		}
		s = strings.Join(lines, "\n")
	}
	if n.TrimFinalNewline {
		s = strings.TrimSuffix(s, "\n")
	}
	if n.IgnoreCase {
		s = strings.ToLower(s)
	}
	return s
}

func buildUnifiedDiff(expected, actual string) string {
	exp := strings.Split(strings.TrimSuffix(expected, "\n"), "\n")
	act := strings.Split(strings.TrimSuffix(actual, "\n"), "\n")
	maxLen := max(len(exp), len(act))
	var b strings.Builder
	b.WriteString("--- expected\n+++ actual\n")
	for i := 0; i < maxLen; i++ {
		var e, a string
		if i < len(exp) {
			e = exp[i]
		}
		if i < len(act) {
			a = act[i]
		}
		if e == a {
			continue
		}
		if e != "" {
			b.WriteString("-" + e + "\n")
		}
		if a != "" {
			b.WriteString("+" + a + "\n")
		}
	}
	return b.String()
}

var unsafeIDChars = regexp.MustCompile(`[^a-zA-Z0-9_.-]+`)

func safeID(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "artifact"
	}
	return unsafeIDChars.ReplaceAllString(s, "_")
}

func defaultInt(value, fallback int) int {
	if value == 0 {
		return fallback
	}
	return value
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return a
	}
	return b
}
