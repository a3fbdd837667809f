package doctor

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string, perm os.FileMode) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
	require.NoError(t, os.Chmod(path, perm))
}

func TestPathPermissionCheck_Pass(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "opencode.json")
	writeFile(t, path, "{}", 0o600)

	c := NewPathPermissionCheck(
		Target{Label: "opencode", Path: path},
		Target{Label: "claude", Path: filepath.Join(dir, "missing.json")},
		Target{Label: "none"},
	)
	result := c.Run()
	assert.Equal(t, SeverityPass, result.Status)
	assert.Contains(t, result.Message, "2 paths")
	assert.False(t, c.CanFix())
}

func TestPathPermissionCheck_WorldWritableFix(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "claude_desktop_config.json")
	writeFile(t, path, "{}", 0o666)

	c := NewPathPermissionCheck(Target{Label: "claude", Path: path})
	result := c.Run()
	assert.Equal(t, SeverityWarning, result.Status)
	assert.True(t, result.Fixable)
	assert.Contains(t, result.FixHint, "chmod 600")
	require.True(t, c.CanFix())
	assert.Equal(t, 1, c.CountFixable())

	fixes := c.Fix()
	require.Len(t, fixes, 1)
	assert.True(t, fixes[0].Fixed)
	assert.NoError(t, fixes[0].Error)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	assert.Equal(t, SeverityPass, c.Run().Status)
}

func TestPathPermissionCheck_DirectoryInsteadOfFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "opencode.json")
	require.NoError(t, os.Mkdir(path, 0o755))

	result := NewPathPermissionCheck(Target{Label: "opencode", Path: path}).Run()
	assert.Equal(t, SeverityError, result.Status)
}

func TestConfigSyntaxCheck(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "claude.json")
	writeFile(t, good, `{"mcpServers": {}}`, 0o600)
	yml := filepath.Join(dir, "config.yaml")
	writeFile(t, yml, "version: 1\nbackup:\n  enabled: true\n", 0o600)
	tml := filepath.Join(dir, "config.toml")
	writeFile(t, tml, "version = 1\n", 0o600)
	empty := filepath.Join(dir, "empty.json")
	writeFile(t, empty, "", 0o600)

	result := NewConfigSyntaxCheck(
		Target{Label: "claude", Path: good},
		Target{Label: "config", Path: yml},
		Target{Label: "config", Path: tml},
		Target{Label: "opencode", Path: empty},
		Target{Label: "missing", Path: filepath.Join(dir, "nope.json")},
	).Run()
	assert.Equal(t, SeverityPass, result.Status)
	assert.Equal(t, 5, result.Details["checked"])
}

func TestConfigSyntaxCheck_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"json", "opencode.json", `{"mcp": `},
		{"yaml", "config.yaml", "a: [1, 2\n"},
		{"toml", "config.toml", "a = \n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			writeFile(t, path, tt.content, 0o600)

			result := NewConfigSyntaxCheck(Target{Label: tt.name, Path: path}).Run()
			assert.Equal(t, SeverityError, result.Status)
			files := result.Details["files"].([]syntaxFileResult)
			require.Len(t, files, 1)
			assert.Equal(t, "error", files[0].Status)
			assert.NotEmpty(t, files[0].Message)
		})
	}
}

func TestConfigSyntaxCheck_NothingToCheck(t *testing.T) {
	result := NewConfigSyntaxCheck(Target{Label: "missing", Path: filepath.Join(t.TempDir(), "x.json")}).Run()
	assert.Equal(t, SeverityInfo, result.Status)
}
