package reconcile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/neilforest7/mcp-coordinator/internal/errors"
)

// DiffTag classifies one line of a line diff.
type DiffTag string

// DiffTag values.
const (
	DiffEqual  DiffTag = "Equal"
	DiffInsert DiffTag = "Insert"
	DiffDelete DiffTag = "Delete"
)

// DiffLine is one line of a line diff.
type DiffLine struct {
	Tag     DiffTag `json:"tag"`
	Content string  `json:"content"`
}

// CompareMode selects which serializations a comparison diffs.
type CompareMode string

// CompareMode values.
const (
	// CompareRaw diffs A's native record against B's native record.
	CompareRaw CompareMode = "raw"

	// CompareAsA diffs A's record against B's entry written in A's schema.
	CompareAsA CompareMode = "as-a"

	// CompareAsB diffs A's entry written in B's schema against B's record.
	CompareAsB CompareMode = "as-b"
)

// Comparison is a rendered line diff between two serializations.
type Comparison struct {
	Mode      CompareMode `json:"mode"`
	Lines     []DiffLine  `json:"lines"`
	Unified   string      `json:"unified"`
	Additions int         `json:"additions"`
	Deletions int         `json:"deletions"`
}

// Renderer produces stable serializations and line diffs.
type Renderer struct {
	dmp    *diffmatchpatch.DiffMatchPatch
	labelA string
	labelB string
}

// NewRenderer creates a renderer whose unified diffs use labelA and labelB
// as file headers.
func NewRenderer(labelA, labelB string) *Renderer {
	return &Renderer{
		dmp:    diffmatchpatch.New(),
		labelA: labelA,
		labelB: labelB,
	}
}

// Serialize renders a record as indented JSON with object keys sorted,
// wrapped in an object keyed by the record's store key. The output ends in a
// newline.
func Serialize(key string, raw json.RawMessage) (string, error) {
	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return "", errors.Mark(errors.Wrapf(err, "serializing %q", key), errors.ErrSerialization)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	// Maps encode with sorted keys.
	if err := enc.Encode(map[string]any{key: v}); err != nil {
		return "", errors.Mark(errors.Wrapf(err, "serializing %q", key), errors.ErrSerialization)
	}
	return buf.String(), nil
}

// Lines computes a line diff from left to right.
func (r *Renderer) Lines(left, right string) []DiffLine {
	a, b, lineArray := r.dmp.DiffLinesToChars(left, right)
	diffs := r.dmp.DiffMain(a, b, false)
	diffs = r.dmp.DiffCharsToLines(diffs, lineArray)

	var lines []DiffLine
	for _, d := range diffs {
		tag := DiffEqual
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			tag = DiffInsert
		case diffmatchpatch.DiffDelete:
			tag = DiffDelete
		}
		for _, line := range splitLines(d.Text) {
			lines = append(lines, DiffLine{Tag: tag, Content: line})
		}
	}
	return lines
}

// Unified renders diff lines as unified diff text with the renderer's labels
// and counts inserted and deleted lines.
func (r *Renderer) Unified(lines []DiffLine) (text string, additions, deletions int) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- %s\n+++ %s\n", r.labelA, r.labelB)
	for _, l := range lines {
		switch l.Tag {
		case DiffInsert:
			additions++
			sb.WriteString("+")
		case DiffDelete:
			deletions++
			sb.WriteString("-")
		default:
			sb.WriteString(" ")
		}
		sb.WriteString(l.Content)
		sb.WriteString("\n")
	}
	return sb.String(), additions, deletions
}

// Compare renders the comparison selected by mode for an item. It fails when
// the item lacks a serialization the mode needs.
func (r *Renderer) Compare(item *Item, mode CompareMode) (*Comparison, error) {
	var left, right string
	switch mode {
	case CompareRaw:
		left, right = item.RawA, item.RawB
	case CompareAsA:
		left, right = item.RawA, item.BAsA
	case CompareAsB:
		left, right = item.AAsB, item.RawB
	default:
		return nil, errors.Newf("unknown compare mode %q", mode)
	}
	if left == "" && right == "" {
		return nil, errors.Wrapf(errors.ErrNotFound, "%s has nothing to compare in %s mode", item.Name, mode)
	}

	lines := r.Lines(left, right)
	text, adds, dels := r.Unified(lines)
	return &Comparison{
		Mode:      mode,
		Lines:     lines,
		Unified:   text,
		Additions: adds,
		Deletions: dels,
	}, nil
}

// splitLines splits text on newlines, dropping the empty string after a
// trailing newline.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
