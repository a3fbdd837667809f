package doctor

import (
	"fmt"
	"os"

	"github.com/neilforest7/mcp-coordinator/internal/errors"
)

// Fixer is implemented by checks that can repair what they found. CanFix and
// Fix reflect the most recent Run.
type Fixer interface {
	CanFix() bool
	Fix() []FixResult
}

// FixResult is the outcome of one repair.
type FixResult struct {
	Path        string `json:"path" yaml:"path"`
	Fixed       bool   `json:"fixed" yaml:"fixed"`
	Description string `json:"description" yaml:"description"`
	Error       error  `json:"-" yaml:"-"`
}

// Store files hold tokens, so they are tightened to owner-only access.
var securePerms = map[string]os.FileMode{
	"file":      0o600,
	"directory": 0o755,
}

// PermissionFixer repairs the mode problems recorded by PathPermissionCheck.
type PermissionFixer struct {
	issues []pathIssue
}

// CanFix reports whether the last run found a repairable mode.
func (f *PermissionFixer) CanFix() bool {
	return f.CountFixable() > 0
}

// CountFixable returns the number of repairable issues.
func (f *PermissionFixer) CountFixable() int {
	n := 0
	for _, issue := range f.issues {
		if issue.Fixable {
			n++
		}
	}
	return n
}

// Fix chmods every repairable path. A path that cannot be changed is
// reported in its FixResult and does not stop the others.
func (f *PermissionFixer) Fix() []FixResult {
	var results []FixResult
	for _, issue := range f.issues {
		if !issue.Fixable {
			continue
		}
		results = append(results, chmodIssue(issue))
	}
	f.issues = nil
	return results
}

func chmodIssue(issue pathIssue) FixResult {
	res := FixResult{Path: issue.Path}
	perm, ok := securePerms[issue.Type]
	if !ok {
		res.Error = errors.Newf("cannot fix %s of type %q", issue.Path, issue.Type)
		res.Description = res.Error.Error()
		return res
	}
	if err := os.Chmod(issue.Path, perm); err != nil {
		res.Error = errors.Wrapf(err, "chmod %04o %s", perm, issue.Path)
		res.Description = fmt.Sprintf("chmod %04o failed: %v", perm, err)
		return res
	}
	res.Fixed = true
	res.Description = fmt.Sprintf("chmod %04o", perm)
	return res
}

func (f *PermissionFixer) setIssues(issues []pathIssue) {
	f.issues = issues
}
