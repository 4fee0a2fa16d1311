package engine

import (
	"strings"
	"sync"
	"testing"
)

func TestEvaluateEmptyString(t *testing.T) {
	eng := NewEngine()

	sc, evalErrs, err := eng.Evaluate("")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if sc == nil {
		t.Fatal("expected non-nil scene")
	}
	if len(sc.Shapes) != 0 {
		t.Errorf("expected empty scene, got %d shapes", len(sc.Shapes))
	}
}

func TestEvaluateWhitespaceOnly(t *testing.T) {
	eng := NewEngine()

	sc, evalErrs, err := eng.Evaluate("   \n\t  \n  ")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if len(sc.Shapes) != 0 {
		t.Errorf("expected empty scene, got %d shapes", len(sc.Shapes))
	}
}

func TestEvaluatePlainExpression(t *testing.T) {
	eng := NewEngine()

	// Ordinary Lisp with no place calls leaves the scene empty.
	sc, evalErrs, err := eng.Evaluate("(+ 1 2)")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if len(sc.Shapes) != 0 {
		t.Errorf("expected empty scene, got %d shapes", len(sc.Shapes))
	}
}

func TestEvaluateSyntaxError(t *testing.T) {
	eng := NewEngine()

	sc, evalErrs, err := eng.Evaluate("(place (polygon :sides 6")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if sc != nil {
		t.Error("expected nil scene on parse error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected eval errors for unmatched paren")
	}
}

func TestEvaluateRuntimeError(t *testing.T) {
	eng := NewEngine()

	// Too few points is the kernel's InvalidGeometry condition and
	// must surface as an eval error, not a panic.
	sc, evalErrs, err := eng.Evaluate(`(shape (vec 0 0) (vec 1 1))`)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if sc != nil {
		t.Error("expected nil scene on runtime error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected eval errors for a 2-point shape")
	}
	joined := ""
	for _, e := range evalErrs {
		joined += e.Message + " "
	}
	if !strings.Contains(joined, "invalid geometry") {
		t.Errorf("eval errors %q do not mention invalid geometry", joined)
	}
}

func TestEvaluateConcurrent(t *testing.T) {
	eng := NewEngine()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sc, evalErrs, err := eng.Evaluate(`(place (polygon :sides 4 :radius 10 :at (vec 50 50)))`)
			if err != nil && !strings.Contains(err.Error(), "superseded") {
				t.Errorf("unexpected fatal error: %v", err)
			}
			if err == nil && len(evalErrs) == 0 && len(sc.Shapes) != 1 {
				t.Errorf("scene has %d shapes, want 1", len(sc.Shapes))
			}
		}()
	}
	wg.Wait()
}

func TestParseZygomysErrorLineInfo(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		wantLine int
	}{
		{"standard format", "Error on line 3: undefined symbol `bogus`", 3},
		{"short format", "line 7: unexpected token", 7},
		{"no line info", "something went wrong", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := parseZygomysError(errString(tt.msg))
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1", len(errs))
			}
			if errs[0].Line != tt.wantLine {
				t.Errorf("line = %d, want %d", errs[0].Line, tt.wantLine)
			}
		})
	}
}

// errString is a trivial error for parser tests.
type errString string

func (e errString) Error() string { return string(e) }
