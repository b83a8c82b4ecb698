package script

import (
	"reflect"
	"testing"
)

func TestRedirector_CompleteLines(t *testing.T) {
	var lines []string
	r := NewRedirector(func(line string) { lines = append(lines, line) })

	r.Write("first\nsecond\n")
	want := []string{"first", "second"}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("expected %v, got %v", want, lines)
	}
}

func TestRedirector_BuffersPartialLines(t *testing.T) {
	var lines []string
	r := NewRedirector(func(line string) { lines = append(lines, line) })

	r.Write("a")
	r.Write("b\n")
	r.Write("c")
	if !reflect.DeepEqual(lines, []string{"ab"}) {
		t.Fatalf("expected only the completed line, got %v", lines)
	}

	r.Flush()
	want := []string{"ab", "c"}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("expected %v after flush, got %v", want, lines)
	}
}

func TestRedirector_FlushEmpty(t *testing.T) {
	calls := 0
	r := NewRedirector(func(string) { calls++ })

	r.Flush()
	if calls != 0 {
		t.Fatalf("expected no emission for empty flush, got %d", calls)
	}

	r.Write("done\n")
	r.Flush()
	if calls != 1 {
		t.Fatalf("expected 1 emission, got %d", calls)
	}
}

func TestRedirector_NilCallback(t *testing.T) {
	r := NewRedirector(nil)
	r.Write("dropped\n")
	r.Flush()
}
