package simulator

import (
	"regexp"
	"strings"
)

// Bindings is the per-run variable table. Insertion order is kept so
// f-string substitution is deterministic.
type Bindings struct {
	order  []string
	values map[string]Value
}

func newBindings() *Bindings {
	return &Bindings{values: map[string]Value{}}
}

func (b *Bindings) Set(name string, v Value) {
	if _, ok := b.values[name]; !ok {
		b.order = append(b.order, name)
	}
	b.values[name] = v
}

func (b *Bindings) Get(name string) (Value, bool) {
	if b == nil {
		return Value{}, false
	}
	v, ok := b.values[name]
	return v, ok
}

func (b *Bindings) Names() []string {
	if b == nil {
		return nil
	}
	return append([]string(nil), b.order...)
}

func (b *Bindings) Len() int {
	if b == nil {
		return 0
	}
	return len(b.order)
}

// Rendered returns every binding rendered as text.
func (b *Bindings) Rendered() map[string]string {
	out := make(map[string]string, b.Len())
	if b == nil {
		return out
	}
	for _, name := range b.order {
		out[name] = b.values[name].Render()
	}
	return out
}

type Result struct {
	Output      string
	Lines       []string
	Bindings    *Bindings
	Unresolved  []string
	Assignments int
	Prints      int
	Skipped     int
}

var (
	identPattern       = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	placeholderPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)
)

// Run evaluates source line by line. It never fails: unrecognised lines are
// skipped and unknown expressions are echoed.
func Run(source string) Result {
	res := Result{Bindings: newBindings()}
	seenUnresolved := map[string]struct{}{}

	for _, raw := range strings.Split(strings.ReplaceAll(source, "\r\n", "\n"), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if name, rhs, ok := splitAssignment(line); ok {
			res.Bindings.Set(name, Classify(rhs))
			res.Assignments++
			continue
		}
		if strings.HasPrefix(line, "print(") {
			text, missing := renderPrint(line, res.Bindings)
			res.Lines = append(res.Lines, text)
			res.Prints++
			for _, m := range missing {
				if _, ok := seenUnresolved[m]; ok {
					continue
				}
				seenUnresolved[m] = struct{}{}
				res.Unresolved = append(res.Unresolved, m)
			}
			continue
		}
		res.Skipped++
	}
	res.Output = strings.Join(res.Lines, "\n")
	return res
}

func splitAssignment(line string) (string, string, bool) {
	lhs, rhs, ok := strings.Cut(line, " = ")
	if !ok {
		return "", "", false
	}
	name := strings.TrimSpace(lhs)
	if !identPattern.MatchString(name) {
		return "", "", false
	}
	return name, strings.TrimSpace(rhs), true
}

func renderPrint(line string, b *Bindings) (string, []string) {
	content := strings.TrimPrefix(line, "print(")
	content = strings.TrimSuffix(content, ")")

	if strings.HasPrefix(content, `f"`) || strings.HasPrefix(content, "f'") {
		return renderFString(content, b)
	}
	if isQuoted(content, '"') || isQuoted(content, '\'') {
		return content[1 : len(content)-1], nil
	}
	if v, ok := b.Get(strings.TrimSpace(content)); ok {
		return v.Render(), nil
	}
	return content, nil
}

func renderFString(content string, b *Bindings) (string, []string) {
	quote := content[1]
	body := content[2:]
	if len(body) > 0 && body[len(body)-1] == quote {
		body = body[:len(body)-1]
	}
	for _, name := range b.Names() {
		v, _ := b.Get(name)
		body = strings.ReplaceAll(body, "{"+name+"}", v.Render())
	}
	var missing []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(body, -1) {
		missing = append(missing, m[1])
	}
	return body, missing
}
