package doctor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/neilforest7/mcp-coordinator/internal/errors"
	"github.com/neilforest7/mcp-coordinator/pkg/fileutil"
)

// ConfigSyntaxCheck parses the store files and mcpsync's own config file.
// The parser follows the file extension; anything else is read as JSON.
type ConfigSyntaxCheck struct {
	targets []Target
}

var _ Check = (*ConfigSyntaxCheck)(nil)

// NewConfigSyntaxCheck returns a syntax check over targets.
func NewConfigSyntaxCheck(targets ...Target) *ConfigSyntaxCheck {
	return &ConfigSyntaxCheck{targets: targets}
}

func (c *ConfigSyntaxCheck) Name() string     { return "config-syntax" }
func (c *ConfigSyntaxCheck) Category() string { return "config" }

type syntaxFileResult struct {
	Label   string `json:"label" yaml:"label"`
	Path    string `json:"path" yaml:"path"`
	Status  string `json:"status" yaml:"status"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// Run parses every target. Missing files are reported but do not fail.
func (c *ConfigSyntaxCheck) Run() *CheckResult {
	var files []syntaxFileResult
	counts := map[string]int{}
	for _, t := range c.targets {
		if t.Path == "" {
			continue
		}
		fr := parseTarget(t)
		files = append(files, fr)
		counts[fr.Status]++
	}

	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  map[string]any{"files": files, "checked": len(files)},
	}
	switch {
	case counts["error"] > 0:
		result.Status = SeverityError
		result.Message = fmt.Sprintf("%d file(s) have syntax errors", counts["error"])
		result.FixHint = "fix the syntax in each file listed in the details"
	case counts["pass"] > 0:
		result.Status = SeverityPass
		result.Message = fmt.Sprintf("%d file(s) parsed successfully", counts["pass"])
	default:
		result.Status = SeverityInfo
		result.Message = "no files found to validate"
	}
	return result
}

func parseTarget(t Target) syntaxFileResult {
	fr := syntaxFileResult{Label: t.Label, Path: t.Path, Status: "pass"}

	data, err := fileutil.ReadDocument(t.Path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		fr.Status, fr.Message = "info", "file does not exist"
		return fr
	case errors.Is(err, os.ErrPermission):
		fr.Status, fr.Message = "error", fmt.Sprintf("permission denied: %v", err)
		return fr
	case err != nil:
		fr.Status, fr.Message = "error", fmt.Sprintf("read error: %v", err)
		return fr
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		fr.Message = "empty file"
		return fr
	}

	var v any
	switch strings.ToLower(filepath.Ext(t.Path)) {
	case ".toml":
		err = toml.Unmarshal(data, &v)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &v)
	default:
		err = json.Unmarshal(data, &v)
	}
	if err != nil {
		fr.Status, fr.Message = "error", err.Error()
	}
	return fr
}
