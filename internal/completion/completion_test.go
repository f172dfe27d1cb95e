package completion

import "testing"

func TestSuggestByPrefixAndLimit(t *testing.T) {
	got := Suggest("x = 5\npr", len("x = 5\npr"))
	if len(got) == 0 || got[0].Text != "print" {
		t.Fatalf("expected print first, got %#v", got)
	}
	if all := Suggest("e", 1); len(all) > maxSuggestions {
		t.Fatalf("expected at most %d suggestions, got %d", maxSuggestions, len(all))
	}
	if none := Suggest("x = ", 4); none != nil {
		t.Fatalf("expected no suggestions after whitespace, got %#v", none)
	}
}

func TestApplyReplacesCurrentWord(t *testing.T) {
	text := "name = 'a'\npri"
	out, cursor := Apply(text, len(text), Suggestion{Text: "print", InsertText: "print()"})
	if out != "name = 'a'\nprint()" {
		t.Fatalf("unexpected text: %q", out)
	}
	if cursor != len(out) {
		t.Fatalf("expected cursor at end, got %d", cursor)
	}
}

func TestContextualHints(t *testing.T) {
	hints := ContextualHints("name = input()\nprint(name)\n  x = 1")
	if len(hints) != 3 {
		t.Fatalf("expected f-string, strip and indentation hints, got %#v", hints)
	}
	if got := ContextualHints(`print(f"{x}")`); len(got) != 0 {
		t.Fatalf("expected no hints, got %#v", got)
	}
}

func TestDidYouMean(t *testing.T) {
	best, ok := DidYouMean("nmae", []string{"age", "name", "height"})
	if !ok || best != "name" {
		t.Fatalf("expected name, got %q ok=%v", best, ok)
	}
	if _, ok := DidYouMean("favourite_colour", []string{"age"}); ok {
		t.Fatalf("expected no suggestion for distant names")
	}
}

func TestErrorSuggestions(t *testing.T) {
	if got := ErrorSuggestions("NameError: name 'x' is not defined"); len(got) != 3 {
		t.Fatalf("expected 3 NameError suggestions, got %d", len(got))
	}
	if got := ErrorSuggestions("all good"); len(got) != 0 {
		t.Fatalf("expected none, got %#v", got)
	}
}
