package prompt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/neilforest7/mcp-coordinator/internal/errors"
	"github.com/neilforest7/mcp-coordinator/internal/reconcile"
)

func items() []*reconcile.Item {
	return []*reconcile.Item{
		{Name: "alpha", Status: reconcile.StatusCreatedInA, ActionDescription: "Copy alpha", RawA: "{\"alpha\": {}}\n"},
		{Name: "beta", Status: reconcile.StatusConflict, ActionDescription: "Conflict", UnifiedDiff: "--- A\n+++ B\n-x\n+y\n"},
		{Name: "gamma", Status: reconcile.StatusUpdatedInB},
	}
}

func finder(picked []int, err error) FindMultiFunc {
	return func(n int, label func(int) string, preview func(int, int, int) string) ([]int, error) {
		for i := range n {
			_ = label(i)
			_ = preview(i, 80, 24)
		}
		return picked, err
	}
}

func TestSelectItems_Empty(t *testing.T) {
	t.Parallel()

	s := NewSelectorWithIO(strings.NewReader(""), &bytes.Buffer{}, finder(nil, nil))
	if _, err := s.SelectItems(nil); !errors.Is(err, ErrNoItems) {
		t.Errorf("expected ErrNoItems, got %v", err)
	}
}

func TestSelectItems_PlanOrder(t *testing.T) {
	t.Parallel()

	s := NewSelectorWithIO(strings.NewReader(""), &bytes.Buffer{}, finder([]int{2, 0}, nil))
	names, err := s.SelectItems(items())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Join(names, ",") != "alpha,gamma" {
		t.Errorf("names = %v, want [alpha gamma]", names)
	}
}

func TestSelectItems_Abort(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		picked []int
		err    error
	}{
		{name: "escape", err: fuzzyfinder.ErrAbort},
		{name: "nothing picked", picked: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := NewSelectorWithIO(strings.NewReader(""), &bytes.Buffer{}, finder(tt.picked, tt.err))
			if _, err := s.SelectItems(items()); !errors.Is(err, ErrSelectionCancelled) {
				t.Errorf("expected ErrSelectionCancelled, got %v", err)
			}
		})
	}
}

func TestPreview(t *testing.T) {
	t.Parallel()

	it := items()
	if got := Preview(it[1]); !strings.Contains(got, "+y") {
		t.Errorf("conflict preview should show the diff, got %q", got)
	}
	if got := Preview(it[0]); !strings.Contains(got, `"alpha"`) {
		t.Errorf("preview should fall back to the raw record, got %q", got)
	}
}

func TestChooseSide(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  reconcile.Side
	}{
		{name: "first", input: "1\n", want: reconcile.SideA},
		{name: "letter b", input: "B\n", want: reconcile.SideB},
		{name: "default skip", input: "\n", want: ""},
		{name: "explicit skip", input: "s\n", want: ""},
		{name: "no trailing newline", input: "2", want: reconcile.SideB},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			s := NewSelectorWithIO(strings.NewReader(tt.input), &out, nil)
			got, err := s.ChooseSide("db", "Claude Desktop", "OpenCode")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ChooseSide() = %q, want %q", got, tt.want)
			}
			if !strings.Contains(out.String(), "keep OpenCode") {
				t.Errorf("prompt missing choices: %q", out.String())
			}
		})
	}
}

func TestChooseSide_Errors(t *testing.T) {
	t.Parallel()

	s := NewSelectorWithIO(strings.NewReader("9\n"), &bytes.Buffer{}, nil)
	if _, err := s.ChooseSide("db", "A", "B"); !errors.Is(err, ErrInvalidSelection) {
		t.Errorf("expected ErrInvalidSelection, got %v", err)
	}

	s = NewSelectorWithIO(strings.NewReader(""), &bytes.Buffer{}, nil)
	if _, err := s.ChooseSide("db", "A", "B"); !errors.Is(err, ErrSelectionCancelled) {
		t.Errorf("expected ErrSelectionCancelled, got %v", err)
	}
}

func TestChooseSide_SequentialReads(t *testing.T) {
	t.Parallel()

	s := NewSelectorWithIO(strings.NewReader("1\n2\n"), &bytes.Buffer{}, nil)
	first, err := s.ChooseSide("x", "A", "B")
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.ChooseSide("y", "A", "B")
	if err != nil {
		t.Fatal(err)
	}
	if first != reconcile.SideA || second != reconcile.SideB {
		t.Errorf("got %q, %q", first, second)
	}
}
