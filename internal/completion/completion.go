package completion

import (
	"regexp"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

type SuggestionType string

const (
	TypeKeyword  SuggestionType = "keyword"
	TypeFunction SuggestionType = "function"
	TypeSnippet  SuggestionType = "snippet"
)

type Suggestion struct {
	Text        string         `json:"text"`
	Description string         `json:"description"`
	Type        SuggestionType `json:"type"`
	InsertText  string         `json:"insert_text,omitempty"`
}

func (s Suggestion) Insert() string {
	if s.InsertText != "" {
		return s.InsertText
	}
	return s.Text
}

const maxSuggestions = 8

var keywords = []Suggestion{
	{Text: "print", Description: "Display output to console", Type: TypeFunction, InsertText: "print()"},
	{Text: "input", Description: "Get user input", Type: TypeFunction, InsertText: "input()"},
	{Text: "len", Description: "Get length of object", Type: TypeFunction, InsertText: "len()"},
	{Text: "range", Description: "Generate sequence of numbers", Type: TypeFunction, InsertText: "range()"},
	{Text: "str", Description: "Convert to string", Type: TypeFunction, InsertText: "str()"},
	{Text: "int", Description: "Convert to integer", Type: TypeFunction, InsertText: "int()"},
	{Text: "float", Description: "Convert to float", Type: TypeFunction, InsertText: "float()"},
	{Text: "list", Description: "Create a list", Type: TypeFunction, InsertText: "list()"},
	{Text: "dict", Description: "Create a dictionary", Type: TypeFunction, InsertText: "dict()"},
	{Text: "if", Description: "Conditional statement", Type: TypeKeyword, InsertText: "if :"},
	{Text: "elif", Description: "Else if condition", Type: TypeKeyword, InsertText: "elif :"},
	{Text: "else", Description: "Else condition", Type: TypeKeyword, InsertText: "else:"},
	{Text: "for", Description: "For loop", Type: TypeKeyword, InsertText: "for  in :"},
	{Text: "while", Description: "While loop", Type: TypeKeyword, InsertText: "while :"},
	{Text: "def", Description: "Define function", Type: TypeKeyword, InsertText: "def ():\n    "},
	{Text: "return", Description: "Return value from function", Type: TypeKeyword, InsertText: "return "},
	{Text: "True", Description: "Boolean true value", Type: TypeKeyword},
	{Text: "False", Description: "Boolean false value", Type: TypeKeyword},
	{Text: "None", Description: "Null/empty value", Type: TypeKeyword},
	{Text: "and", Description: "Logical AND operator", Type: TypeKeyword},
	{Text: "or", Description: "Logical OR operator", Type: TypeKeyword},
	{Text: "not", Description: "Logical NOT operator", Type: TypeKeyword},
	{Text: "in", Description: "Membership operator", Type: TypeKeyword},
	{Text: "import", Description: "Import module", Type: TypeKeyword, InsertText: "import "},
	{Text: "from", Description: "Import from module", Type: TypeKeyword, InsertText: "from  import "},
	{Text: "try", Description: "Try block for error handling", Type: TypeKeyword, InsertText: "try:\n    "},
	{Text: "except", Description: "Exception handling", Type: TypeKeyword, InsertText: "except:\n    "},
	{Text: "finally", Description: "Finally block", Type: TypeKeyword, InsertText: "finally:\n    "},
	{Text: "class", Description: "Define class", Type: TypeKeyword, InsertText: "class :\n    "},
	{Text: "with", Description: "Context manager", Type: TypeKeyword, InsertText: "with  as :\n    "},
}

var snippets = []Suggestion{
	{Text: "hello_world", Description: "Print Hello World", Type: TypeSnippet, InsertText: `print("Hello, World!")`},
	{Text: "for_loop", Description: "For loop template", Type: TypeSnippet, InsertText: "for i in range(10):\n    print(i)"},
	{Text: "if_else", Description: "If-else template", Type: TypeSnippet, InsertText: "if condition:\n    # do something\nelse:\n    # do something else"},
	{Text: "function_def", Description: "Function definition template", Type: TypeSnippet, InsertText: "def function_name(parameter):\n    \"\"\"Description of function\"\"\"\n    return parameter"},
	{Text: "list_comp", Description: "List comprehension", Type: TypeSnippet, InsertText: "[x for x in range(10)]"},
	{Text: "try_except", Description: "Try-except block", Type: TypeSnippet, InsertText: "try:\n    # risky code\nexcept Exception as e:\n    print(f\"Error: {e}\")"},
	{Text: "fstring", Description: "Formatted string with a variable", Type: TypeSnippet, InsertText: `print(f"Hello {name}")`},
}

// Suggest returns keyword and snippet suggestions for the word ending at
// cursor. Matches are by prefix on the text or substring of the description.
func Suggest(text string, cursor int) []Suggestion {
	word := strings.ToLower(currentWord(text, cursor))
	if word == "" {
		return nil
	}
	out := []Suggestion{}
	for _, group := range [][]Suggestion{keywords, snippets} {
		for _, s := range group {
			if strings.HasPrefix(strings.ToLower(s.Text), word) || strings.Contains(strings.ToLower(s.Description), word) {
				out = append(out, s)
				if len(out) == maxSuggestions {
					return out
				}
			}
		}
	}
	return out
}

// Apply replaces the word ending at cursor with the suggestion and returns
// the new text and cursor position.
func Apply(text string, cursor int, s Suggestion) (string, int) {
	cursor = clampCursor(text, cursor)
	word := currentWord(text, cursor)
	start := cursor - len(word)
	insert := s.Insert()
	return text[:start] + insert + text[cursor:], start + len(insert)
}

func currentWord(text string, cursor int) string {
	before := text[:clampCursor(text, cursor)]
	idx := strings.LastIndexAny(before, " \t\n")
	return before[idx+1:]
}

func clampCursor(text string, cursor int) int {
	if cursor < 0 {
		return 0
	}
	if cursor > len(text) {
		return len(text)
	}
	return cursor
}

var (
	leadingSpace     = regexp.MustCompile(`^\s+`)
	fourSpaceOrTab   = regexp.MustCompile(`^(    |\t)`)
	maxLineLength    = 79
	maxDidYouMeanGap = 2
)

// ContextualHints returns style nudges for the submitted code.
func ContextualHints(code string) []string {
	hints := []string{}
	if strings.Contains(code, "print(") && !strings.Contains(code, `f"`) && !strings.Contains(code, "f'") {
		hints = append(hints, "Try using f-strings for better string formatting: f'Hello {name}'")
	}
	if strings.Contains(code, "input(") && !strings.Contains(code, ".strip()") {
		hints = append(hints, "Consider using .strip() to remove whitespace from user input")
	}
	if strings.Contains(code, "==") && strings.Contains(code, "True") {
		hints = append(hints, "You can use 'if variable:' instead of 'if variable == True:'")
	}
	if strings.Contains(code, "range(len(") {
		hints = append(hints, "Consider using 'for item in list:' instead of 'for i in range(len(list)):'")
	}
	lines := strings.Split(code, "\n")
	for _, line := range lines {
		if len(strings.TrimSpace(line)) > maxLineLength {
			hints = append(hints, "Python recommends keeping lines under 79 characters (PEP 8)")
			break
		}
	}
	for _, line := range lines {
		if leadingSpace.MatchString(line) && strings.TrimSpace(line) != "" && !fourSpaceOrTab.MatchString(line) {
			hints = append(hints, "Use 4 spaces for indentation (Python standard)")
			break
		}
	}
	return hints
}

var errorSuggestions = []struct {
	marker      string
	suggestions []string
}{
	{"SyntaxError", []string{
		"Check for missing colons (:) after if, for, def, class statements",
		"Make sure parentheses and quotes are properly closed",
		"Check indentation - Python is strict about spacing",
	}},
	{"NameError", []string{
		"Check if the variable is spelled correctly",
		"Make sure the variable is defined before using it",
		"Check if you need to import a module",
	}},
	{"IndentationError", []string{
		"Use consistent indentation (4 spaces recommended)",
		"Make sure code blocks are properly indented",
	}},
	{"TypeError", []string{
		"Check if you're using the right data type",
		"Make sure function arguments match expected types",
	}},
}

func ErrorSuggestions(errText string) []string {
	out := []string{}
	for _, e := range errorSuggestions {
		if strings.Contains(errText, e.marker) {
			out = append(out, e.suggestions...)
		}
	}
	return out
}

// DidYouMean picks the candidate closest to name by edit distance, if one is
// within two edits. Ties resolve alphabetically.
func DidYouMean(name string, candidates []string) (string, bool) {
	if name == "" || len(candidates) == 0 {
		return "", false
	}
	sorted := append([]string(nil), candidates...)
	sort.Strings(sorted)
	best := ""
	bestDist := maxDidYouMeanGap + 1
	for _, c := range sorted {
		if c == name {
			continue
		}
		d := levenshtein.ComputeDistance(strings.ToLower(name), strings.ToLower(c))
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, best != ""
}
