package simulator

import "testing"

func TestRunFStringInterpolation(t *testing.T) {
	res := Run("name = \"Alex\"\nprint(f\"Hi {name}\")\nprint(f\"Bye {missing}\")")
	if res.Output != "Hi Alex\nBye {missing}" {
		t.Fatalf("unexpected output: %q", res.Output)
	}
	if len(res.Unresolved) != 1 || res.Unresolved[0] != "missing" {
		t.Fatalf("expected missing placeholder to be reported, got %#v", res.Unresolved)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	src := "# intro\nx = 5\n\nlang = 'Python'\nprint(f'{lang} {x}')\nprint(x)\nprint(\"done\")\n"
	first := Run(src)
	second := Run(src)
	if first.Output != second.Output {
		t.Fatalf("expected identical output, got %q vs %q", first.Output, second.Output)
	}
	if first.Output != "Python 5\n5\ndone" {
		t.Fatalf("unexpected output: %q", first.Output)
	}
	if second.Bindings.Len() != 2 {
		t.Fatalf("expected fresh bindings per run, got %d", second.Bindings.Len())
	}
}

func TestClassifyCoercion(t *testing.T) {
	cases := []struct {
		in     string
		kind   Kind
		render string
	}{
		{`"5"`, KindString, "5"},
		{`'hi'`, KindString, "hi"},
		{"5", KindNumber, "5"},
		{"-12", KindNumber, "-12"},
		{"9007199254740993", KindNumber, "9007199254740993"},
		{"5.0", KindNumber, "5.0"},
		{"5.50", KindNumber, "5.5"},
		{"1e20", KindNumber, "1e+20"},
		{"True", KindBool, "True"},
		{"False", KindBool, "False"},
		{"input()", KindRaw, "input()"},
		{`"unterminated`, KindRaw, `"unterminated`},
	}
	for _, tc := range cases {
		v := Classify(tc.in)
		if v.Kind() != tc.kind {
			t.Fatalf("%s: expected kind %v got %v", tc.in, tc.kind, v.Kind())
		}
		if v.Render() != tc.render {
			t.Fatalf("%s: expected render %q got %q", tc.in, tc.render, v.Render())
		}
	}
	if Classify(`"5"`).Equal(Classify("5")) {
		t.Fatalf("string 5 and number 5 must differ")
	}
	if Classify("9007199254740993").Equal(Classify("9007199254740992")) {
		t.Fatalf("large integers must compare exactly")
	}
	if !Classify("5").Equal(Classify("5.0")) {
		t.Fatalf("5 and 5.0 compare equal as numbers")
	}
}

func TestRunPrintsLargeIntegerExactly(t *testing.T) {
	res := Run("x = 9007199254740993\nprint(x)\nprint(f\"{x}\")")
	if res.Output != "9007199254740993\n9007199254740993" {
		t.Fatalf("unexpected output: %q", res.Output)
	}
}

func TestRunPrintFallbacks(t *testing.T) {
	res := Run("flag = False\nprint(flag)\nprint(len(x))\nprint(\"a\", flag)")
	want := "False\nlen(x)\n\"a\", flag"
	if res.Output != want {
		t.Fatalf("expected %q, got %q", want, res.Output)
	}
}

func TestRunAssignmentOverwritesAndSplitsOnFirstEquals(t *testing.T) {
	res := Run("x = 1\nx = \"a = b\"\nprint(x)")
	if res.Output != "a = b" {
		t.Fatalf("unexpected output: %q", res.Output)
	}
	v, ok := res.Bindings.Get("x")
	if !ok || v.Kind() != KindString {
		t.Fatalf("expected x to be a string binding, got %#v", v)
	}
}

func TestRunToleratesGarbage(t *testing.T) {
	res := Run("def broken(:\n  )))\nprint(\nfor i in range(3):\n")
	if res.Prints != 1 {
		t.Fatalf("expected one print statement, got %d", res.Prints)
	}
	if res.Output != "" {
		t.Fatalf("expected empty echo for bare print(, got %q", res.Output)
	}
	if res.Skipped != 3 {
		t.Fatalf("expected 3 skipped lines, got %d", res.Skipped)
	}
}

func TestRunPrintWithEqualsInsideString(t *testing.T) {
	res := Run(`print("a = b")`)
	if res.Output != "a = b" {
		t.Fatalf("unexpected output: %q", res.Output)
	}
	if res.Bindings.Len() != 0 {
		t.Fatalf("expected no bindings, got %v", res.Bindings.Names())
	}
}
