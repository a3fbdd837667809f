package platform

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/neilforest7/mcp-coordinator/internal/errors"
	"github.com/neilforest7/mcp-coordinator/internal/platform/claude"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}
	if got := r.All(); got != nil {
		t.Errorf("NewRegistry().All() = %v, want nil", got)
	}
	if got := r.Names(); got != nil {
		t.Errorf("NewRegistry().Names() = %v, want nil", got)
	}
}

func TestRegistry_Register(t *testing.T) {
	dir := t.TempDir()
	r := NewRegistry()

	if err := r.Register(NewClaudeStore(filepath.Join(dir, "c.json"), claude.DisablePrefix)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := r.Register(NewClaudeStore(filepath.Join(dir, "c2.json"), claude.DisablePrefix)); !errors.Is(err, ErrStoreAlreadyRegistered) {
		t.Errorf("Register() duplicate error = %v, want ErrStoreAlreadyRegistered", err)
	}
	if err := r.Register(nil); !errors.Is(err, ErrInvalidStoreName) {
		t.Errorf("Register(nil) error = %v, want ErrInvalidStoreName", err)
	}

	s, ok := r.Get("claude")
	if !ok {
		t.Fatal("Get(claude) not found")
	}
	if s.Path() != filepath.Join(dir, "c.json") {
		t.Errorf("Get(claude).Path() = %q", s.Path())
	}
	if s.ServersKey() != "mcpServers" {
		t.Errorf("ServersKey() = %q, want mcpServers", s.ServersKey())
	}
}

func TestRegistry_Pair(t *testing.T) {
	dir := t.TempDir()
	r := NewRegistry()
	_ = r.Register(NewClaudeStore(filepath.Join(dir, "c.json"), claude.DisablePrefix))
	_ = r.Register(NewOpenCodeStore(filepath.Join(dir, "o.json")))

	a, b, err := r.Pair("claude", "opencode")
	if err != nil {
		t.Fatalf("Pair() error = %v", err)
	}
	if a.ID() != "claude" || b.ID() != "opencode" {
		t.Errorf("Pair() = (%s, %s)", a.ID(), b.ID())
	}

	if _, _, err := r.Pair("claude", "claude"); err == nil {
		t.Error("Pair() with itself should fail")
	}
	if _, _, err := r.Pair("claude", "codex"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Pair() unknown error = %v, want ErrNotFound", err)
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(NewOpenCodeStore(filepath.Join(t.TempDir(), "o.json")))

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = r.Get("opencode")
			_ = r.Names()
			_ = r.All()
		}()
	}
	wg.Wait()
}

func TestStore_ServersMissingFile(t *testing.T) {
	s := NewOpenCodeStore(filepath.Join(t.TempDir(), "missing.json"))
	servers, err := s.Servers()
	if err != nil {
		t.Fatalf("Servers() error = %v", err)
	}
	if len(servers) != 0 {
		t.Errorf("Servers() = %v, want empty", servers)
	}
}
