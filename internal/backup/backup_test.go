package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neilforest7/mcp-coordinator/internal/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

// fixedClock returns a clock stuck at one instant so backups collide.
func fixedClock() func() time.Time {
	at := time.Date(2026, 1, 23, 10, 7, 12, 0, time.UTC)
	return func() time.Time { return at }
}

func TestBackup_Collision(t *testing.T) {
	src := filepath.Join(t.TempDir(), "opencode.json")
	writeFile(t, src, `{"mcp":{}}`)

	m := NewManager(WithBackupDir(t.TempDir()), WithRetentionCount(0))
	m.now = fixedClock()

	first, err := m.Backup("opencode", src)
	require.NoError(t, err)
	second, err := m.Backup("opencode", src)
	require.NoError(t, err)

	assert.Equal(t, "20260123T100712", first.ID)
	assert.Equal(t, "20260123T100712-1", second.ID)

	list, err := m.List("opencode")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")
}

func TestBackup_SkipsMissing(t *testing.T) {
	m := NewManager(WithBackupDir(t.TempDir()))

	_, err := m.Backup("claude", filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, errors.Is(err, ErrNothingToBackUp))

	_, err = m.List("claude")
	assert.True(t, errors.Is(err, ErrNoBackupsFound))
}

func TestBackup_Retention(t *testing.T) {
	src := filepath.Join(t.TempDir(), "config.json")
	writeFile(t, src, "{}")

	m := NewManager(WithBackupDir(t.TempDir()), WithRetentionCount(2))
	m.now = fixedClock()

	var ids []string
	for range 4 {
		manifest, err := m.Backup("claude", src)
		require.NoError(t, err)
		ids = append(ids, manifest.ID)
	}

	list, err := m.List("claude")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, ids[3], list[0].ID)
	assert.Equal(t, ids[2], list[1].ID)
}

func TestRestore(t *testing.T) {
	src := filepath.Join(t.TempDir(), "claude_desktop_config.json")
	writeFile(t, src, `{"mcpServers":{"a":{"command":"a"}}}`)

	m := NewManager(WithBackupDir(t.TempDir()))
	manifest, err := m.Backup("claude", src)
	require.NoError(t, err)
	require.Len(t, manifest.Files, 1)

	writeFile(t, src, `{"mcpServers":{}}`)
	require.NoError(t, m.Restore("claude", manifest.ID))

	data, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.JSONEq(t, `{"mcpServers":{"a":{"command":"a"}}}`, string(data))
}

func TestRestore_Corrupted(t *testing.T) {
	src := filepath.Join(t.TempDir(), "opencode.json")
	writeFile(t, src, "{}")

	dir := t.TempDir()
	m := NewManager(WithBackupDir(dir))
	manifest, err := m.Backup("opencode", src)
	require.NoError(t, err)

	copied := filepath.Join(dir, "opencode", manifest.ID, manifest.Files[0].RelPath)
	writeFile(t, copied, `{"tampered":true}`)

	err = m.Restore("opencode", manifest.ID)
	assert.True(t, errors.Is(err, ErrBackupCorrupted))
}

func TestSession_BacksUpOnce(t *testing.T) {
	src := filepath.Join(t.TempDir(), "opencode.json")
	writeFile(t, src, "{}")

	m := NewManager(WithBackupDir(t.TempDir()))
	s := NewSession(m)

	first, err := s.EnsureBackedUp("opencode", src)
	require.NoError(t, err)
	require.NotNil(t, first)

	writeFile(t, src, `{"changed":true}`)
	second, err := s.EnsureBackedUp("opencode", src)
	require.NoError(t, err)
	assert.Same(t, first, second)

	list, err := m.List("opencode")
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Len(t, s.Manifests(), 1)
}

func TestSession_MissingFile(t *testing.T) {
	s := NewSession(NewManager(WithBackupDir(t.TempDir())))

	m, err := s.EnsureBackedUp("claude", filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Nil(t, m)
	assert.Empty(t, s.Manifests())
}

func TestGenerateRelPath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"/usr/local/bin", "usr/local/bin"},
		{"file:name", "filename"},
	}

	for _, tt := range tests {
		got := generateRelPath(tt.input)
		if got != filepath.FromSlash(tt.expected) {
			t.Errorf("generateRelPath(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestCompareIDs(t *testing.T) {
	assert.Less(t, compareIDs("20260123T100712", "20260123T100712-1"), 0)
	assert.Less(t, compareIDs("20260123T100712-2", "20260123T100712-10"), 0)
	assert.Greater(t, compareIDs("20260124T000000", "20260123T235959-3"), 0)
}
