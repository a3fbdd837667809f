package commands

import (
	"encoding/json"
	"io"
	"regexp"
	"strings"

	"github.com/fatih/color"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/neilforest7/mcp-coordinator/internal/errors"
	"github.com/neilforest7/mcp-coordinator/internal/logging"
	"github.com/neilforest7/mcp-coordinator/internal/reconcile"
)

// Output formats for machine-readable commands.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
	formatTOML = "toml"
)

var (
	headerColor  = color.New(color.FgCyan, color.Bold)
	nameColor    = color.New(color.Bold)
	dimColor     = color.New(color.FgHiBlack)
	addColor     = color.New(color.FgGreen)
	delColor     = color.New(color.FgRed)
	warnColor    = color.New(color.FgYellow)
	successColor = color.New(color.FgGreen)
	failColor    = color.New(color.FgRed, color.Bold)
)

// statusColor returns the color used for a status heading.
func statusColor(s reconcile.Status) *color.Color {
	switch s {
	case reconcile.StatusConflict:
		return color.New(color.FgRed, color.Bold)
	case reconcile.StatusCreatedInA, reconcile.StatusCreatedInB:
		return color.New(color.FgGreen)
	case reconcile.StatusUpdatedInA, reconcile.StatusUpdatedInB:
		return color.New(color.FgBlue)
	case reconcile.StatusDeletedFromA, reconcile.StatusDeletedFromB:
		return color.New(color.FgYellow)
	}
	return dimColor
}

// encode writes v in a machine-readable format.
func encode(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return errors.Wrap(err, "encoding yaml")
		}
		return enc.Close()
	case formatTOML:
		enc := toml.NewEncoder(w)
		enc.SetIndentTables(true)
		return errors.Wrap(enc.Encode(v), "encoding toml")
	}
	return errors.NewUserError(errors.Newf("unknown format %q", format), "Use text, json, yaml or toml")
}

// validFormat reports whether format is one of the supported formats.
func validFormat(format string) bool {
	switch format {
	case formatText, formatJSON, formatYAML, formatTOML:
		return true
	}
	return false
}

// jsonStringPair matches one `"key": "value"` line of an indented
// serialization.
var jsonStringPair = regexp.MustCompile(`^(\s*)"((?:[^"\\]|\\.)*)": "((?:[^"\\]|\\.)*)"(,?)$`)

// maskLine masks the value of a sensitive key/value line, leaving any other
// line unchanged.
func maskLine(line string) string {
	m := jsonStringPair.FindStringSubmatch(line)
	if m == nil {
		return line
	}
	key, value := m[2], m[3]
	switch {
	case logging.ShouldMask(key) || logging.ContainsTokenPrefix(value):
		value = logging.MaskValue(value)
	case logging.MaskURL(value) != value:
		value = logging.MaskURL(value)
	default:
		return line
	}
	return m[1] + `"` + key + `": "` + value + `"` + m[4]
}

// maskText applies maskLine to every line of text.
func maskText(text string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = maskLine(l)
	}
	return strings.Join(lines, "\n")
}

// maskDiffLines returns a copy of lines with sensitive values masked.
func maskDiffLines(lines []reconcile.DiffLine) []reconcile.DiffLine {
	out := make([]reconcile.DiffLine, len(lines))
	for i, l := range lines {
		out[i] = reconcile.DiffLine{Tag: l.Tag, Content: maskLine(l.Content)}
	}
	return out
}

// writeDiffLines prints a colored unified diff body, each line prefixed
// with indent.
func writeDiffLines(w io.Writer, lines []reconcile.DiffLine, indent string) {
	for _, l := range lines {
		switch l.Tag {
		case reconcile.DiffInsert:
			addColor.Fprintln(w, indent+"+"+l.Content)
		case reconcile.DiffDelete:
			delColor.Fprintln(w, indent+"-"+l.Content)
		default:
			io.WriteString(w, indent+" "+l.Content+"\n")
		}
	}
}
