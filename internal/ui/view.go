package ui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"pydojo/internal/curriculum"
	"pydojo/internal/quiz"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/progress"
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/x/ansi"
)

type clockMsg time.Time

type animateMsg time.Time

type quizKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Choose key.Binding
	Hint   key.Binding
	Quit   key.Binding
}

func (k quizKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Choose, k.Hint, k.Quit}
}

func (k quizKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down, k.Choose}, {k.Hint, k.Quit}}
}

type QuizOptions struct {
	Quiz    curriculum.Quiz
	Variant string
	ASCII   bool
	// Tick is how often the question timer counts down. Zero means one second.
	Tick time.Duration
}

// QuizRoot is the full-screen quiz player. It owns a quiz.Session and gives
// each question its own countdown when the quiz has a time limit.
type QuizRoot struct {
	theme Theme
	ascii bool
	sess  *quiz.Session

	limit     time.Duration
	tick      time.Duration
	remaining time.Duration

	cursor   int
	hintOpen bool
	revealed bool
	timedOut bool
	answer   quiz.AnswerResult
	done     bool
	quit     bool
	result   quiz.Result

	cols int

	help     help.Model
	keymap   quizKeyMap
	timerBar progress.Model
	scoreBar progress.Model
	spin     spinner.Model
	spring   harmonica.Spring
	scorePos float64
	scoreVel float64
}

func NewQuizRoot(opts QuizOptions) *QuizRoot {
	theme := ThemeForVariant(opts.Variant)
	tick := opts.Tick
	if tick <= 0 {
		tick = time.Second
	}
	limit := time.Duration(opts.Quiz.TimeLimitSeconds) * time.Second

	h := help.New()
	h.Styles = help.DefaultDarkStyles()

	r := &QuizRoot{
		theme:     theme,
		ascii:     opts.ASCII,
		sess:      quiz.NewSession(opts.Quiz),
		limit:     limit,
		tick:      tick,
		remaining: limit,
		cols:      80,
		help:      h,
		timerBar:  progress.New(progress.WithWidth(20), progress.WithColors(theme.BarEnd, theme.BarStart)),
		scoreBar:  progress.New(progress.WithWidth(30), progress.WithColors(theme.BarStart, theme.BarEnd), progress.WithScaled(true)),
		spin:      spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(theme.Accent)),
		spring:    harmonica.NewSpring(harmonica.FPS(60), 10.0, 0.8),
	}
	r.keymap = quizKeyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j", "tab"), key.WithHelp("↓/j", "down")),
		Choose: key.NewBinding(key.WithKeys("enter", "space"), key.WithHelp("enter", "choose")),
		Hint:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "hint")),
		Quit:   key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
	}
	return r
}

// Result reports the final score. ok is false when the learner quit early.
func (r *QuizRoot) Result() (quiz.Result, bool) {
	if !r.done || r.quit {
		return quiz.Result{}, false
	}
	return r.result, true
}

func (r *QuizRoot) Init() tea.Cmd {
	cmds := []tea.Cmd{spinnerTickCmd(r.spin)}
	if r.limit > 0 {
		cmds = append(cmds, clockTickCmd(r.tick))
	}
	return tea.Batch(cmds...)
}

func (r *QuizRoot) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		r.cols = msg.Width
		return r, nil
	case clockMsg:
		return r, r.onClock()
	case animateMsg:
		target := float64(r.result.Score) / 100
		r.scorePos, r.scoreVel = r.spring.Update(r.scorePos, r.scoreVel, target)
		if abs(r.scorePos-target) > 0.001 || abs(r.scoreVel) > 0.001 {
			return r, animateTickCmd()
		}
		r.scorePos, r.scoreVel = target, 0
		return r, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		r.spin, cmd = r.spin.Update(msg)
		return r, cmd
	case tea.KeyPressMsg:
		return r.handleKey(msg)
	}
	return r, nil
}

func (r *QuizRoot) onClock() tea.Cmd {
	if r.done || r.limit <= 0 {
		return nil
	}
	if r.revealed {
		return clockTickCmd(r.tick)
	}
	r.remaining = max(0, r.remaining-r.tick)
	if r.remaining == 0 {
		r.timedOut = true
		r.revealed = true
		q, _ := r.sess.Current()
		answer, _ := q.CorrectOption()
		r.answer = quiz.AnswerResult{QuestionID: q.ID, Answer: answer, Explanation: q.Explanation}
	}
	return clockTickCmd(r.tick)
}

func (r *QuizRoot) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, r.keymap.Quit) {
		if !r.done {
			r.quit = true
		}
		return r, tea.Quit
	}
	if r.done {
		if key.Matches(msg, r.keymap.Choose) {
			return r, tea.Quit
		}
		return r, nil
	}
	if r.revealed {
		if key.Matches(msg, r.keymap.Choose) {
			return r, r.advance()
		}
		return r, nil
	}

	q, ok := r.sess.Current()
	if !ok {
		return r, nil
	}
	switch {
	case key.Matches(msg, r.keymap.Up):
		r.cursor = (r.cursor - 1 + len(q.Options)) % len(q.Options)
	case key.Matches(msg, r.keymap.Down):
		r.cursor = (r.cursor + 1) % len(q.Options)
	case key.Matches(msg, r.keymap.Hint):
		r.hintOpen = !r.hintOpen
	case key.Matches(msg, r.keymap.Choose):
		r.submit(q.Options[r.cursor].ID)
	default:
		if idx, ok := optionIndex(q, msg.Text); ok {
			r.cursor = idx
			r.submit(q.Options[idx].ID)
		}
	}
	return r, nil
}

func (r *QuizRoot) submit(optionID string) {
	if err := r.sess.Select(optionID); err != nil {
		return
	}
	res, err := r.sess.Submit()
	if err != nil {
		return
	}
	r.answer = res
	r.revealed = true
}

func (r *QuizRoot) advance() tea.Cmd {
	var finished bool
	if r.timedOut {
		finished = r.sess.TimeUp()
	} else {
		finished = r.sess.Next()
	}
	r.cursor = 0
	r.hintOpen = false
	r.revealed = false
	r.timedOut = false
	r.answer = quiz.AnswerResult{}
	r.remaining = r.limit
	if finished {
		r.done = true
		r.result = r.sess.Result()
		return animateTickCmd()
	}
	return nil
}

func (r *QuizRoot) View() tea.View {
	v := tea.NewView(r.Render())
	v.AltScreen = true
	return v
}

// Render returns the current screen as text.
func (r *QuizRoot) Render() string {
	if r.done {
		return r.renderResult()
	}
	return r.renderQuestion()
}

func (r *QuizRoot) renderQuestion() string {
	q, ok := r.sess.Current()
	if !ok {
		return ""
	}
	width := ContentWidth(r.cols)
	var b strings.Builder
	quizInfo := r.sess.Quiz()
	b.WriteString(r.paint(r.theme.Header, r.text(quizInfo.Title)) + "\n\n")

	head := fmt.Sprintf("Question %d of %d", r.sess.Index()+1, r.sess.Len())
	if r.limit > 0 {
		bar := r.timerBar
		bar.SetWidth(max(8, min(20, width/4)))
		frac := float64(r.remaining) / float64(r.limit)
		head += fmt.Sprintf("  %s %s %2ds", r.spinner(), r.bar(bar, frac), int(r.remaining.Round(time.Second)/time.Second))
	}
	b.WriteString(r.paint(r.theme.PanelTitle, head) + "\n")
	b.WriteString(trimForWidth(q.Prompt, width) + "\n\n")

	for i, o := range q.Options {
		marker := "  "
		style := r.theme.Body
		if i == r.cursor {
			marker = r.pick("> ", "▸ ")
			style = r.theme.Accent
		}
		if r.revealed {
			switch {
			case o.Correct:
				style = r.theme.Pass
			case o.ID == r.answer.Selected.ID && !r.answer.Correct:
				style = r.theme.Fail
			}
		}
		b.WriteString(r.paint(style, fmt.Sprintf("%s%s) %s", marker, o.ID, r.text(o.Text))) + "\n")
	}
	b.WriteString("\n")

	switch {
	case r.revealed && r.timedOut:
		b.WriteString(r.paint(r.theme.Fail, "Time's up!") + " The answer is: " + r.answer.Answer.Text + "\n")
	case r.revealed && r.answer.Correct:
		b.WriteString(r.paint(r.theme.Pass, "Correct!") + "\n")
	case r.revealed:
		b.WriteString(r.paint(r.theme.Fail, "Not quite.") + " The answer is: " + r.answer.Answer.Text + "\n")
	case r.hintOpen && q.Hint != "":
		b.WriteString(r.paint(r.theme.Muted, "Hint: "+q.Hint) + "\n")
	}
	if r.revealed {
		if r.answer.Explanation != "" {
			b.WriteString(r.paint(r.theme.Muted, r.answer.Explanation) + "\n")
		}
		b.WriteString("\n" + r.paint(r.theme.Info, "Press enter to continue") + "\n")
	}
	b.WriteString("\n" + r.help.View(r.keymap))
	return b.String()
}

func (r *QuizRoot) renderResult() string {
	res := r.result
	q := r.sess.Quiz()
	var b strings.Builder
	b.WriteString(r.paint(r.theme.Header, r.text(q.Title)+" results") + "\n\n")
	fmt.Fprintf(&b, "%s  %d of %d correct (%d%%)\n", r.bar(r.scoreBar, r.scorePos), res.Correct, res.Total, res.Score)
	switch {
	case res.Perfect:
		b.WriteString(r.paint(r.theme.Pass, "Perfect score!") + "\n")
	case res.Passed:
		b.WriteString(r.paint(r.theme.Pass, fmt.Sprintf("Passed (needed %d%%)", q.PassingScore)) + "\n")
	default:
		b.WriteString(r.paint(r.theme.Fail, fmt.Sprintf("Not passed yet (needed %d%%)", q.PassingScore)) + "\n")
	}
	b.WriteString("\n" + r.paint(r.theme.Info, "Press enter to finish") + "\n")
	return b.String()
}

func (r *QuizRoot) bar(m progress.Model, frac float64) string {
	frac = min(1, max(0, frac))
	if r.ascii {
		w := m.Width()
		filled := int(frac * float64(w))
		return "[" + strings.Repeat("#", filled) + strings.Repeat("-", w-filled) + "]"
	}
	return m.ViewAs(frac)
}

func (r *QuizRoot) spinner() string {
	if r.ascii {
		return "time:"
	}
	return r.spin.View()
}

func (r *QuizRoot) paint(s lipgloss.Style, text string) string {
	if r.ascii {
		return text
	}
	return s.Render(text)
}

func (r *QuizRoot) pick(ascii, fancy string) string {
	if r.ascii {
		return ascii
	}
	return fancy
}

func (r *QuizRoot) text(s string) string {
	if !r.ascii {
		return s
	}
	return strings.Join(strings.Fields(strings.Map(func(c rune) rune {
		if c > 127 {
			return -1
		}
		return c
	}, s)), " ")
}

// RunQuiz drives root until the learner finishes or quits.
func RunQuiz(ctx context.Context, root *QuizRoot, in io.Reader, out io.Writer) error {
	p := tea.NewProgram(root, tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out))
	_, err := p.Run()
	return err
}

func optionIndex(q curriculum.Question, text string) (int, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}
	for i, o := range q.Options {
		if strings.EqualFold(o.ID, text) {
			return i, true
		}
	}
	if len(text) == 1 && text[0] >= '1' && text[0] <= '9' {
		if n := int(text[0] - '0'); n <= len(q.Options) {
			return n - 1, true
		}
	}
	return 0, false
}

func clockTickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return clockMsg(t) })
}

func animateTickCmd() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return animateMsg(t) })
}

func spinnerTickCmd(model spinner.Model) tea.Cmd {
	return func() tea.Msg {
		return model.Tick()
	}
}

func trimForWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(strings.ReplaceAll(ansi.Strip(s), "\n", " "))
	if len(r) <= width {
		return string(r)
	}
	if width == 1 {
		return string(r[:1])
	}
	return string(r[:width-1]) + "~"
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
