// Package prompt provides interactive CLI prompts for choosing what to sync.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/neilforest7/mcp-coordinator/internal/errors"
	"github.com/neilforest7/mcp-coordinator/internal/reconcile"
)

// Sentinel errors for selection.
var (
	ErrNoItems            = errors.New("nothing to select from")
	ErrInvalidSelection   = errors.New("invalid selection")
	ErrSelectionCancelled = errors.New("selection cancelled")
)

// FindMultiFunc picks indexes out of n labelled items. It matches the shape
// of fuzzyfinder.FindMulti so tests can replace the terminal UI.
type FindMultiFunc func(n int, label func(i int) string, preview func(i, w, h int) string) ([]int, error)

// Selector handles interactive plan selection prompts.
type Selector struct {
	reader   *bufio.Reader
	writer   io.Writer
	findMany FindMultiFunc
}

// NewSelector creates a Selector using stdin, stdout, and a fuzzy finder.
func NewSelector() *Selector {
	return &Selector{
		reader:   bufio.NewReader(os.Stdin),
		writer:   os.Stdout,
		findMany: fuzzyFindMulti,
	}
}

// NewSelectorWithIO creates a Selector with custom IO and finder for testing.
func NewSelectorWithIO(r io.Reader, w io.Writer, find FindMultiFunc) *Selector {
	if find == nil {
		find = fuzzyFindMulti
	}
	return &Selector{
		reader:   bufio.NewReader(r),
		writer:   w,
		findMany: find,
	}
}

func fuzzyFindMulti(n int, label func(i int) string, preview func(i, w, h int) string) ([]int, error) {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return fuzzyfinder.FindMulti(idx, label, fuzzyfinder.WithPreviewWindow(preview))
}

// SelectItems lets the user pick plan items, previewing each item's action
// and diff. It returns the chosen names in plan order.
//
// Returns ErrNoItems for an empty list and ErrSelectionCancelled when the
// finder is aborted.
func (s *Selector) SelectItems(items []*reconcile.Item) ([]string, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	picked, err := s.findMany(len(items),
		func(i int) string {
			return fmt.Sprintf("%-13s %s", items[i].Status, items[i].Name)
		},
		func(i, _, _ int) string {
			if i < 0 || i >= len(items) {
				return ""
			}
			return Preview(items[i])
		},
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil, ErrSelectionCancelled
		}
		return nil, errors.Wrap(err, "interactive selection failed")
	}
	if len(picked) == 0 {
		return nil, ErrSelectionCancelled
	}

	chosen := make(map[int]bool, len(picked))
	for _, i := range picked {
		chosen[i] = true
	}
	var names []string
	for i, it := range items {
		if chosen[i] {
			names = append(names, it.Name)
		}
	}
	return names, nil
}

// Preview renders the text shown next to an item in the finder.
func Preview(it *reconcile.Item) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n%s\n", it.Name, it.ActionDescription)
	if it.UnifiedDiff != "" {
		sb.WriteString("\n")
		sb.WriteString(it.UnifiedDiff)
	} else if raw := firstNonEmpty(it.RawA, it.RawB); raw != "" {
		sb.WriteString("\n")
		sb.WriteString(raw)
	}
	return sb.String()
}

// ChooseSide asks which side of a conflict to keep. It returns "" when the
// user skips the item.
//
// Accepted answers: 1 or a for labelA, 2 or b for labelB, s or empty to skip.
func (s *Selector) ChooseSide(name, labelA, labelB string) (reconcile.Side, error) {
	fmt.Fprintf(s.writer, "Conflict on %q:\n", name)
	fmt.Fprintf(s.writer, "  [1] keep %s\n", labelA)
	fmt.Fprintf(s.writer, "  [2] keep %s\n", labelB)
	fmt.Fprintf(s.writer, "  [s] skip\n")
	fmt.Fprintf(s.writer, "Select [s]: ")

	input, err := s.reader.ReadString('\n')
	switch {
	case errors.Is(err, io.EOF) && input == "":
		return "", ErrSelectionCancelled
	case err != nil && !errors.Is(err, io.EOF):
		return "", errors.Wrap(err, "reading selection")
	}

	switch strings.ToLower(strings.TrimSpace(input)) {
	case "", "s", "skip":
		return "", nil
	case "1", "a":
		return reconcile.SideA, nil
	case "2", "b":
		return reconcile.SideB, nil
	default:
		return "", errors.Wrapf(ErrInvalidSelection, "%q is not one of 1, 2, s", strings.TrimSpace(input))
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
