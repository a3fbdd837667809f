package doctor

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// maxSecureFilePerm is the loosest mode accepted for files that may hold
// secrets.
const maxSecureFilePerm os.FileMode = 0o644

// Target is a file a check inspects.
type Target struct {
	// Label names the file's role, e.g. a store identifier or "baseline".
	Label string
	Path  string
}

// PathPermissionCheck inspects the files mcpsync reads and writes, and their
// parent directories. Missing files are fine; a sync creates them.
type PathPermissionCheck struct {
	PermissionFixer
	targets []Target
}

var (
	_ Check = (*PathPermissionCheck)(nil)
	_ Fixer = (*PathPermissionCheck)(nil)
)

// NewPathPermissionCheck returns a check over targets. Targets with an empty
// path are ignored.
func NewPathPermissionCheck(targets ...Target) *PathPermissionCheck {
	return &PathPermissionCheck{targets: targets}
}

func (c *PathPermissionCheck) Name() string     { return "path-permissions" }
func (c *PathPermissionCheck) Category() string { return "filesystem" }

// pathIssue is one problem with a file or directory.
type pathIssue struct {
	Path     string
	Label    string
	Type     string // "file" or "directory"
	Problem  string
	Severity Severity
	Mode     os.FileMode
	Fixable  bool
	FixHint  string
}

func (p pathIssue) details() map[string]any {
	m := map[string]any{
		"path":     p.Path,
		"label":    p.Label,
		"type":     p.Type,
		"problem":  p.Problem,
		"severity": p.Severity.String(),
	}
	if p.Mode != 0 {
		m["permissions"] = fmt.Sprintf("%04o", p.Mode.Perm())
	}
	return m
}

// Run stats every target and records the fixable findings for Fix.
func (c *PathPermissionCheck) Run() *CheckResult {
	var issues []pathIssue
	checked := 0
	for _, t := range c.targets {
		if t.Path == "" {
			continue
		}
		checked++
		issues = append(issues, inspectDir(t.Label, filepath.Dir(t.Path))...)
		issues = append(issues, inspectFile(t.Label, t.Path)...)
	}
	c.setIssues(issues)

	result := &CheckResult{Name: c.Name(), Category: c.Category(), Status: SeverityPass}
	if len(issues) == 0 {
		result.Message = fmt.Sprintf("all %d paths have valid permissions", checked)
		return result
	}

	result.Status = SeverityWarning
	var hints []string
	details := make([]map[string]any, 0, len(issues))
	for _, issue := range issues {
		result.Status = max(result.Status, issue.Severity)
		if issue.Fixable {
			hints = append(hints, issue.FixHint)
		}
		details = append(details, issue.details())
	}
	result.Message = fmt.Sprintf("found %d permission issue(s) across %d paths", len(issues), checked)
	result.Details = map[string]any{
		"checked_paths": checked,
		"issue_count":   len(issues),
		"issues":        details,
	}
	result.Fixable = len(hints) > 0
	result.FixHint = strings.Join(hints, "; ")
	return result
}

func inspectFile(label, path string) []pathIssue {
	issue := pathIssue{Path: path, Label: label, Type: "file"}

	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		return nil
	case err != nil:
		issue.Problem, issue.Severity = fmt.Sprintf("cannot stat file: %v", err), SeverityError
		return []pathIssue{issue}
	case info.IsDir():
		issue.Problem, issue.Severity = "expected file but found directory", SeverityError
		return []pathIssue{issue}
	}
	issue.Mode = info.Mode()

	f, err := os.Open(path)
	if err != nil {
		issue.Problem, issue.Severity = "file is not readable", SeverityError
		issue.FixHint = "chmod 600 " + path
		return []pathIssue{issue}
	}
	_ = f.Close()

	if runtime.GOOS == "windows" {
		return nil
	}
	perm := info.Mode().Perm()
	switch {
	case perm&0o002 != 0:
		issue.Problem = "file is world-writable"
	case perm > maxSecureFilePerm:
		issue.Problem = fmt.Sprintf("file mode %04o is more permissive than %04o", perm, maxSecureFilePerm)
	default:
		return nil
	}
	issue.Severity = SeverityWarning
	issue.Fixable = true
	issue.FixHint = "chmod 600 " + path
	return []pathIssue{issue}
}

func inspectDir(label, path string) []pathIssue {
	issue := pathIssue{Path: path, Label: label, Type: "directory"}

	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		return nil
	case err != nil:
		issue.Problem, issue.Severity = fmt.Sprintf("cannot stat directory: %v", err), SeverityError
		return []pathIssue{issue}
	case !info.IsDir():
		issue.Problem, issue.Severity = "expected directory but found file", SeverityError
		return []pathIssue{issue}
	}
	issue.Mode = info.Mode()
	issue.Severity = SeverityWarning

	var issues []pathIssue
	if !writableDir(path) {
		notWritable := issue
		notWritable.Problem = "directory is not writable"
		notWritable.FixHint = "chmod u+w " + path
		issues = append(issues, notWritable)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm()&0o002 != 0 {
		open := issue
		open.Problem = "directory is world-writable"
		open.Fixable = true
		open.FixHint = "chmod 755 " + path
		issues = append(issues, open)
	}
	return issues
}

// writableDir probes path by creating and removing a temp file.
func writableDir(path string) bool {
	f, err := os.CreateTemp(path, ".mcpsync-doctor-*")
	if err != nil {
		return false
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return true
}
