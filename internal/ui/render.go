package ui

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	pbar "charm.land/bubbles/v2/progress"
	"charm.land/lipgloss/v2"
	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/glamour"
	"github.com/dustin/go-humanize"

	"pydojo/internal/completion"
	"pydojo/internal/notify"
)

type Options struct {
	Variant string
	ASCII   bool
	Width   int
	Now     func() time.Time
}

// Renderer is the terminal View. ASCII mode drops colour, borders and emoji
// so output stays stable in pipes and logs.
type Renderer struct {
	theme Theme
	ascii bool
	width int
	now   func() time.Time
	md    *glamour.TermRenderer
	bar   pbar.Model
}

var _ View = (*Renderer)(nil)

func NewRenderer(opts Options) (*Renderer, error) {
	theme := ThemeForVariant(opts.Variant)
	width := ContentWidth(opts.Width)
	style := "dark"
	if opts.ASCII {
		style = "ascii"
	}
	md, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width-4),
	)
	if err != nil {
		return nil, fmt.Errorf("markdown renderer: %w", err)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	bar := pbar.New(
		pbar.WithWidth(min(30, width/3)),
		pbar.WithColors(theme.BarStart, theme.BarEnd),
	)
	return &Renderer{theme: theme, ascii: opts.ASCII, width: width, now: now, md: md, bar: bar}, nil
}

func (r *Renderer) Theme() Theme { return r.theme }

func (r *Renderer) Dashboard(s DashboardState) string {
	header := fmt.Sprintf("pydojo  Level %d  %s XP", s.Level, humanize.Comma(int64(s.XP)))
	if s.Username != "" {
		header += "  @" + s.Username
	}

	stats := []string{
		"Level progress " + r.progressBar(s.LevelPercent),
		fmt.Sprintf("%d XP to level %d", s.XPToNext, s.Level+1),
		fmt.Sprintf("Streak: %d %s", s.StreakDays, plural(s.StreakDays, "day", "days")),
		"Last active: " + r.since(s.LastActive),
		fmt.Sprintf("Lessons %d  Quizzes %d  Badges %d", s.LessonsDone, s.QuizzesDone, s.BadgeCount),
		fmt.Sprintf("Code runs %s (%s passed)", humanize.Comma(int64(s.CodeRuns)), humanize.Comma(int64(s.Passes))),
		"Time spent: " + formatMinutes(s.TimeSpentMinutes),
	}
	if !s.StartDate.IsZero() {
		stats = append(stats, "Learning since "+s.StartDate.Format("Jan 2, 2006"))
	}

	modLines := make([]string, 0, len(s.Modules))
	for _, m := range s.Modules {
		marker := "  "
		if m.Current {
			marker = r.paint(r.theme.Accent, "> ")
		}
		modLines = append(modLines, fmt.Sprintf("%s%s", marker, m.Title))
		modLines = append(modLines, fmt.Sprintf("  %s %d/%d", r.progressBar(m.Percent), m.Done, m.Total))
	}
	if len(modLines) == 0 {
		modLines = append(modLines, r.paint(r.theme.Muted, "No modules loaded."))
	}

	var body string
	if !r.ascii && DetermineLayoutMode(r.width) == LayoutWide {
		half := r.width / 2
		left := r.panel("Progress", stats, half)
		right := r.panel("Modules", modLines, r.width-half)
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	} else {
		body = r.panel("Progress", stats, r.width) + "\n" + r.panel("Modules", modLines, r.width)
	}

	parts := []string{r.paint(r.theme.Header, header), body}
	if len(s.RecentRuns) > 0 {
		runs := make([]string, 0, len(s.RecentRuns))
		for _, run := range s.RecentRuns {
			runs = append(runs, fmt.Sprintf("%s %s attempt %d, %s", r.verdictLabel(run.Verdict), run.LessonID, run.Attempt, r.since(run.At)))
		}
		parts = append(parts, r.panel("Recent runs", runs, r.width))
	}
	if s.Tip != "" {
		parts = append(parts, r.paint(r.theme.Info, r.text(s.Tip)))
	}
	return strings.Join(parts, "\n") + "\n"
}

func (r *Renderer) Modules(modules []ModuleListing) string {
	var b strings.Builder
	for i, m := range modules {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s %s\n", r.paint(r.theme.PanelTitle, m.Title), r.paint(r.theme.Muted, "("+m.ModuleID+")"))
		fmt.Fprintf(&b, "  %s\n", r.progressBar(m.Percent))
		for _, l := range m.Lessons {
			fav := ""
			if l.Favorite {
				fav = r.pick(" *", " ★")
			}
			fmt.Fprintf(&b, "  %s %s %s%s\n", r.check(l.Completed), l.LessonID, l.Title, fav)
			fmt.Fprintf(&b, "      %s\n", r.paint(r.theme.Muted, fmt.Sprintf("%s, %d min, %d XP", l.Difficulty, l.Minutes, l.XP)))
		}
		for _, q := range m.Quizzes {
			line := fmt.Sprintf("  %s quiz %s %s (%d %s)", r.check(q.Completed), q.QuizID, q.Title, q.Questions, plural(q.Questions, "question", "questions"))
			if q.Attempts > 0 {
				line += fmt.Sprintf(", best %d%% in %d %s", q.BestScore, q.Attempts, plural(q.Attempts, "attempt", "attempts"))
			}
			b.WriteString(line + "\n")
		}
	}
	if len(modules) == 0 {
		b.WriteString("No modules found.\n")
	}
	return b.String()
}

func (r *Renderer) Lesson(p LessonPage) string {
	var b strings.Builder
	title := p.Title
	if p.Favorite {
		title += r.pick(" *", " ★")
	}
	b.WriteString(r.paint(r.theme.Header, title) + "\n")
	meta := fmt.Sprintf("%s | %s | %d min | %d XP", p.ModuleTitle, p.Difficulty, p.Minutes, p.XP)
	if p.Completed {
		meta += " | completed"
	}
	b.WriteString(r.paint(r.theme.Muted, meta) + "\n")
	if strings.TrimSpace(p.ContentMD) != "" {
		b.WriteString(r.markdown(p.ContentMD))
	}
	if p.HasExercise && strings.TrimSpace(p.StarterCode) != "" {
		b.WriteString("\n" + r.paint(r.theme.PanelTitle, "Starter code") + "\n")
		b.WriteString(r.Code(p.StarterCode))
		b.WriteString(r.paint(r.theme.Muted, fmt.Sprintf("Run it with: pydojo run %s <file.py>", p.LessonID)) + "\n")
	}
	if !p.HasExercise && !p.Completed {
		b.WriteString(r.paint(r.theme.Muted, fmt.Sprintf("Mark as read with: pydojo complete %s", p.LessonID)) + "\n")
	}
	if p.Note != "" {
		b.WriteString("\n" + r.paint(r.theme.PanelTitle, "Your note") + "\n" + p.Note + "\n")
	}
	return b.String()
}

// Code highlights Python source. ASCII mode prints numbered plain lines.
func (r *Renderer) Code(source string) string {
	src := strings.TrimRight(source, "\n")
	if r.ascii {
		lines := strings.Split(src, "\n")
		var b strings.Builder
		for i, line := range lines {
			fmt.Fprintf(&b, "%3d | %s\n", i+1, line)
		}
		return b.String()
	}
	var b strings.Builder
	if err := quick.Highlight(&b, src, "python", "terminal256", r.theme.CodeStyle); err != nil {
		return src + "\n"
	}
	out := b.String()
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out
}

func (r *Renderer) Grade(g GradeView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s (attempt %d)\n", r.verdictLabel(g.Verdict), g.LessonID, g.Attempt)
	if g.Feedback != "" {
		b.WriteString(r.text(g.Feedback) + "\n")
	}
	for _, c := range g.Checks {
		desc := c.Description
		if desc == "" {
			desc = c.ID
		}
		if !c.Required {
			desc += " (optional)"
		}
		fmt.Fprintf(&b, "  %s %s\n", r.check(c.Passed), desc)
		if c.Message != "" && !c.Passed {
			fmt.Fprintf(&b, "      %s\n", r.paint(r.theme.Muted, r.text(c.Message)))
		}
	}
	if g.Output != "" {
		b.WriteString(r.paint(r.theme.PanelTitle, "Output") + "\n")
		for _, line := range strings.Split(strings.TrimRight(g.Output, "\n"), "\n") {
			b.WriteString("  " + line + "\n")
		}
	}
	if g.Diff != "" {
		b.WriteString(r.paint(r.theme.PanelTitle, "Expected vs actual") + "\n")
		b.WriteString(g.Diff)
		if !strings.HasSuffix(g.Diff, "\n") {
			b.WriteString("\n")
		}
	}
	if g.Hint != "" {
		b.WriteString(r.paint(r.theme.Info, "Hint: "+r.text(g.Hint)) + "\n")
	}
	for _, s := range g.Suggestions {
		b.WriteString(r.paint(r.theme.Info, "Did you mean: "+s) + "\n")
	}
	if g.Motivate {
		b.WriteString(r.paint(r.theme.Partial, "Don't give up! Take another look at the hint and try again.") + "\n")
	}
	return b.String()
}

func (r *Renderer) Toasts(toasts []notify.Toast) string {
	var b strings.Builder
	for _, t := range toasts {
		title := r.text(t.Title)
		desc := r.text(t.Description)
		if r.ascii {
			fmt.Fprintf(&b, "* %s %s\n", title, desc)
			continue
		}
		style := r.theme.Toast
		if rs, ok := r.theme.Rarity[t.Rarity]; ok {
			title = rs.Render(title)
		} else {
			title = r.theme.Accent.Render(title)
		}
		b.WriteString(style.Render(title+"\n"+desc) + "\n")
	}
	return b.String()
}

func (r *Renderer) Badges(rows []BadgeRow) string {
	var b strings.Builder
	earned := 0
	for _, row := range rows {
		a := row.Achievement
		name := a.Title
		if !r.ascii {
			name = a.Icon + " " + name
			if rs, ok := r.theme.Rarity[a.Rarity]; ok && row.Earned {
				name = rs.Render(name)
			}
		}
		if row.Earned {
			earned++
		} else {
			name = r.paint(r.theme.Muted, name)
		}
		fmt.Fprintf(&b, "%s %s [%s, +%d XP]\n", r.check(row.Earned), name, a.Rarity, a.XPBonus)
		fmt.Fprintf(&b, "      %s\n", r.text(a.Description))
	}
	fmt.Fprintf(&b, "%d of %d badges earned\n", earned, len(rows))
	return b.String()
}

func (r *Renderer) Suggestions(items []completion.Suggestion, hints []string) string {
	var b strings.Builder
	for _, s := range items {
		fmt.Fprintf(&b, "  %-12s %s %s\n", s.Text, r.paint(r.theme.Muted, "("+string(s.Type)+")"), s.Description)
	}
	if len(items) == 0 {
		b.WriteString(r.paint(r.theme.Muted, "No completions.") + "\n")
	}
	for _, h := range hints {
		b.WriteString(r.paint(r.theme.Info, "Tip: "+r.text(h)) + "\n")
	}
	return b.String()
}

func (r *Renderer) Question(q QuestionView) string {
	var b strings.Builder
	head := fmt.Sprintf("Question %d of %d", q.Index+1, q.Total)
	if q.Remaining > 0 {
		head += fmt.Sprintf("  %s %ds left", r.pick("time:", "⏱"), int(q.Remaining.Round(time.Second)/time.Second))
	}
	b.WriteString(r.paint(r.theme.PanelTitle, head) + "\n")
	b.WriteString(q.Prompt + "\n")
	for _, o := range q.Options {
		fmt.Fprintf(&b, "  %s) %s\n", o.ID, o.Text)
	}
	if q.Hint != "" {
		b.WriteString(r.paint(r.theme.Muted, "Hint: "+q.Hint) + "\n")
	}
	return b.String()
}

func (r *Renderer) Answer(a AnswerView) string {
	var head string
	switch {
	case a.TimedOut:
		head = r.paint(r.theme.Fail, "Time's up!")
	case a.Correct:
		head = r.paint(r.theme.Pass, "Correct!")
	default:
		head = r.paint(r.theme.Fail, "Not quite.")
	}
	out := head
	if !a.Correct && a.CorrectText != "" {
		out += " The answer is: " + a.CorrectText
	}
	out += "\n"
	if a.Explanation != "" {
		out += r.paint(r.theme.Muted, a.Explanation) + "\n"
	}
	return out
}

func (r *Renderer) QuizResult(res QuizResultView) string {
	var b strings.Builder
	b.WriteString(r.paint(r.theme.Header, res.Title+" results") + "\n")
	fmt.Fprintf(&b, "%s  %d of %d correct\n", r.progressBar(res.Score), res.Correct, res.Total)
	switch {
	case res.Perfect:
		b.WriteString(r.paint(r.theme.Pass, "Perfect score!") + "\n")
	case res.Passed:
		b.WriteString(r.paint(r.theme.Pass, fmt.Sprintf("Passed (needed %d%%)", res.Passing)) + "\n")
	default:
		b.WriteString(r.paint(r.theme.Fail, fmt.Sprintf("Not passed yet (needed %d%%)", res.Passing)) + "\n")
	}
	if res.BestScore > 0 {
		fmt.Fprintf(&b, "Best score: %d%%\n", res.BestScore)
	}
	return b.String()
}

func (r *Renderer) markdown(md string) string {
	out, err := r.md.Render(md)
	if err != nil {
		return md + "\n"
	}
	return out
}

func (r *Renderer) panel(title string, lines []string, width int) string {
	body := strings.Join(lines, "\n")
	if r.ascii {
		rule := strings.Repeat("=", min(width, max(utf8.RuneCountInString(title), 20)))
		return title + "\n" + rule + "\n" + body
	}
	return r.theme.Panel.Width(width).Render(r.theme.PanelTitle.Render(title) + "\n" + body)
}

func (r *Renderer) progressBar(percent int) string {
	p := min(100, max(0, percent))
	if r.ascii {
		const w = 20
		filled := p * w / 100
		return "[" + strings.Repeat("#", filled) + strings.Repeat("-", w-filled) + fmt.Sprintf("] %3d%%", p)
	}
	return r.bar.ViewAs(float64(p) / 100)
}

func (r *Renderer) verdictLabel(verdict string) string {
	switch verdict {
	case "pass":
		return r.paint(r.theme.Pass, "PASS")
	case "partial":
		return r.paint(r.theme.Partial, "PARTIAL")
	default:
		return r.paint(r.theme.Fail, "FAIL")
	}
}

func (r *Renderer) check(ok bool) string {
	if ok {
		return r.paint(r.theme.Pass, r.pick("[x]", "✔"))
	}
	return r.paint(r.theme.Muted, r.pick("[ ]", "·"))
}

func (r *Renderer) since(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.RelTime(t, r.now(), "ago", "from now")
}

func (r *Renderer) paint(s lipgloss.Style, text string) string {
	if r.ascii {
		return text
	}
	return s.Render(text)
}

func (r *Renderer) pick(ascii, fancy string) string {
	if r.ascii {
		return ascii
	}
	return fancy
}

// text strips emoji and other non-ASCII runes in ASCII mode.
func (r *Renderer) text(s string) string {
	if !r.ascii {
		return s
	}
	var b strings.Builder
	for _, c := range s {
		if c < utf8.RuneSelf {
			b.WriteRune(c)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func formatMinutes(total int) string {
	if total < 60 {
		return fmt.Sprintf("%dm", max(0, total))
	}
	return fmt.Sprintf("%dh %02dm", total/60, total%60)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
