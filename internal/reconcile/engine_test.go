package reconcile

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neilforest7/mcp-coordinator/internal/baseline"
	"github.com/neilforest7/mcp-coordinator/internal/errors"
	"github.com/neilforest7/mcp-coordinator/internal/logging"
	"github.com/neilforest7/mcp-coordinator/internal/mcp"
	"github.com/neilforest7/mcp-coordinator/internal/platform/claude"
	"github.com/neilforest7/mcp-coordinator/internal/platform/opencode"
)

const testPair = "local/claude+opencode"

type fixture struct {
	t     *testing.T
	rawA  map[string]json.RawMessage
	rawB  map[string]json.RawMessage
	store *baseline.MemoryStore
	eng   *Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := baseline.NewMemoryStore()
	return &fixture{
		t:     t,
		rawA:  make(map[string]json.RawMessage),
		rawB:  make(map[string]json.RawMessage),
		store: store,
		eng: NewEngine(claude.NewMCPNormalizer(), opencode.NewMCPNormalizer(), store, testPair,
			WithLogger(logging.ForTest(t))),
	}
}

func (f *fixture) a(key, raw string) { f.rawA[key] = json.RawMessage(raw) }
func (f *fixture) b(key, raw string) { f.rawB[key] = json.RawMessage(raw) }

func (f *fixture) base(e *mcp.Entry) {
	f.t.Helper()
	require.NoError(f.t, f.store.Put(testPair, e.Name, e))
}

func (f *fixture) analyze() *Plan {
	f.t.Helper()
	plan, err := f.eng.Analyze(f.rawA, f.rawB)
	require.NoError(f.t, err)
	return plan
}

func (f *fixture) item(plan *Plan, name string) *Item {
	f.t.Helper()
	it, ok := plan.Item(name)
	require.True(f.t, ok, "item %q not in plan", name)
	return it
}

// write applies collected changes to the raw maps, as a store writer would.
func (f *fixture) write(changes []Change) {
	for _, c := range changes {
		raw := f.rawA
		if c.Side == SideB {
			raw = f.rawB
		}
		switch c.Op {
		case OpUpsert:
			raw[c.Key] = c.Raw
		case OpDelete:
			delete(raw, c.Key)
		}
	}
}

func (f *fixture) apply(plan *Plan, req ApplyRequest) (*ApplyReport, *CollectSink) {
	f.t.Helper()
	sink := NewCollectSink()
	report, err := f.eng.Apply(context.Background(), plan, req, sink)
	require.NoError(f.t, err)
	f.write(sink.All())
	return report, sink
}

func local(name string, enabled bool, argv ...string) *mcp.Entry {
	return &mcp.Entry{Name: name, Enabled: enabled, Transport: mcp.TransportLocal, Argv: argv}
}

func TestAnalyze_IdenticalSnapshotsAreSynced(t *testing.T) {
	f := newFixture(t)
	f.a("github", `{"command":"npx","args":["-y","server-github"],"env":{"T":"1"}}`)
	f.b("github", `{"type":"local","command":["npx","-y","server-github"],"environment":{"T":"1"}}`)
	f.a("_disabled_fs", `{"command":"fs"}`)
	f.b("fs", `{"type":"local","command":["fs"],"enabled":false}`)
	f.a("api", `{"type":"http","url":"https://example.com/mcp"}`)
	f.b("api", `{"type":"remote","url":"https://example.com/mcp","enabled":true}`)

	plan := f.analyze()
	require.Len(t, plan.Items, 3)
	for _, it := range plan.Items {
		assert.Equal(t, StatusSynced, it.Status, it.Name)
		assert.Empty(t, it.DiffLines)
	}
	assert.True(t, plan.InSync())
}

func TestAnalyze_Totality(t *testing.T) {
	f := newFixture(t)
	f.a("zeta", `{"command":"z"}`)
	f.a("alpha", `{"command":"a"}`)
	f.a("shared", `{"command":"s"}`)
	f.b("shared", `{"type":"local","command":["s"]}`)
	f.b("beta", `{"type":"local","command":["b"]}`)

	plan := f.analyze()
	assert.Equal(t, []string{"alpha", "beta", "shared", "zeta"}, plan.Names())
	assert.Equal(t, testPair, plan.PairID)
	assert.Equal(t, "claude", plan.StoreA)
	assert.Equal(t, "opencode", plan.StoreB)

	counts := plan.Counts()
	assert.Equal(t, 2, counts[StatusCreatedInA])
	assert.Equal(t, 1, counts[StatusCreatedInB])
	assert.Equal(t, 1, counts[StatusSynced])
	assert.Len(t, plan.Pending(), 3)
}

func TestAnalyze_ConflictWhenBothChanged(t *testing.T) {
	f := newFixture(t)
	f.base(local("tool", true, "npx", "x"))
	f.a("tool", `{"command":"npx","args":["y"]}`)
	f.b("tool", `{"type":"local","command":["npx","z"]}`)

	it := f.item(f.analyze(), "tool")
	assert.Equal(t, StatusConflict, it.Status)
	assert.Contains(t, it.ActionDescription, "changed in both")

	assert.NotEmpty(t, it.DiffLines)
	assert.True(t, strings.HasPrefix(it.UnifiedDiff, "--- Claude Desktop\n+++ OpenCode\n"))
	assert.Positive(t, it.Additions)
	assert.Positive(t, it.Deletions)

	assert.Contains(t, it.AAsB, `"local"`)
	assert.Contains(t, it.AAsB, `"y"`)
	assert.Contains(t, it.BAsA, `"stdio"`)
	assert.Contains(t, it.BAsA, `"z"`)
	assert.Empty(t, it.Errors)
}

func TestAnalyze_ConflictWithoutBaseline(t *testing.T) {
	f := newFixture(t)
	f.a("db", `{"command":"db-server"}`)
	f.b("db", `{"type":"local","command":["db-server"],"enabled":false}`)

	it := f.item(f.analyze(), "db")
	assert.Equal(t, StatusConflict, it.Status)
	assert.False(t, it.State.Tracked())
	assert.Contains(t, it.ActionDescription, "differs between")
}

func TestAnalyze_EnvironmentDifferenceIsConflict(t *testing.T) {
	f := newFixture(t)
	f.a("x", `{"command":"x","env":{"K":"1"}}`)
	f.b("x", `{"type":"local","command":["x"],"environment":{"K":"2"}}`)

	assert.Equal(t, StatusConflict, f.item(f.analyze(), "x").Status)
}

func TestAnalyze_OneSidedUpdate(t *testing.T) {
	f := newFixture(t)
	f.base(local("tool", true, "npx", "x"))
	f.a("tool", `{"command":"npx","args":["x"]}`)
	f.b("tool", `{"type":"local","command":["npx","z"]}`)

	plan := f.analyze()
	it := f.item(plan, "tool")
	require.Equal(t, StatusUpdatedInB, it.Status)
	assert.Empty(t, it.DiffLines, "only conflicts carry diffs")
	assert.NotEmpty(t, it.RawA)
	assert.NotEmpty(t, it.RawB)

	report, sink := f.apply(plan, ApplyRequest{Names: []string{"tool"}, Mode: Bidirectional()})
	assert.Equal(t, []string{"tool"}, report.Applied())

	changes := sink.Changes("tool")
	require.Len(t, changes, 1)
	assert.Equal(t, SideA, changes[0].Side)
	assert.Equal(t, "claude", changes[0].Store)
	assert.Equal(t, OpUpsert, changes[0].Op)

	again := f.analyze()
	assert.Equal(t, StatusSynced, f.item(again, "tool").Status)

	base, ok, err := f.store.Get(testPair, "tool")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"npx", "z"}, base.Argv)
}

func TestAnalyze_OneSidedUpdateInA(t *testing.T) {
	f := newFixture(t)
	f.base(local("tool", true, "npx", "x"))
	f.a("_disabled_tool", `{"command":"npx","args":["x"]}`)
	f.b("tool", `{"type":"local","command":["npx","x"]}`)

	plan := f.analyze()
	require.Equal(t, StatusUpdatedInA, f.item(plan, "tool").Status)

	_, sink := f.apply(plan, ApplyRequest{Names: []string{"tool"}, Mode: Bidirectional()})
	changes := sink.Changes("tool")
	require.Len(t, changes, 1)
	assert.Equal(t, SideB, changes[0].Side)
	assert.Contains(t, string(changes[0].Raw), `"enabled":false`)

	assert.Equal(t, StatusSynced, f.item(f.analyze(), "tool").Status)
}

func TestAnalyze_DuplicateDetection(t *testing.T) {
	f := newFixture(t)
	f.a("web-search", `{"command":"npx","args":["-y","search-server"]}`)
	f.b("search-tool", `{"type":"local","command":["npx","-y","search-server"],"environment":{"K":"v"}}`)

	plan := f.analyze()

	webSearch := f.item(plan, "web-search")
	assert.Equal(t, StatusCreatedInA, webSearch.Status)
	assert.Equal(t, []string{"search-tool"}, webSearch.ContentMatches)
	assert.Contains(t, webSearch.ActionDescription, `"search-tool"`)
	assert.Contains(t, webSearch.ActionDescription, "duplicate")

	searchTool := f.item(plan, "search-tool")
	assert.Equal(t, StatusCreatedInB, searchTool.Status)
	assert.Equal(t, []string{"web-search"}, searchTool.ContentMatches)
}

func TestAnalyze_NoDuplicateForDifferentArgv(t *testing.T) {
	f := newFixture(t)
	f.a("web-search", `{"command":"npx","args":["-y","search-server"]}`)
	f.b("search-tool", `{"type":"local","command":["npx","-y","Search-Server"]}`)

	plan := f.analyze()
	assert.Empty(t, f.item(plan, "web-search").ContentMatches)
	assert.NotContains(t, f.item(plan, "web-search").ActionDescription, "duplicate")
}

func TestApply_OneWayOverwritesConflict(t *testing.T) {
	f := newFixture(t)
	f.a("db", `{"command":"db-server"}`)
	f.b("db", `{"type":"local","command":["db-server"],"enabled":false}`)

	plan := f.analyze()
	require.Equal(t, StatusConflict, f.item(plan, "db").Status)

	report, sink := f.apply(plan, ApplyRequest{Names: []string{"db"}, Mode: OneWay(SideA, SideB)})
	assert.Equal(t, []string{"db"}, report.Applied())

	changes := sink.Changes("db")
	require.Len(t, changes, 1)
	assert.Equal(t, SideB, changes[0].Side)
	assert.Contains(t, string(changes[0].Raw), `"enabled":true`)

	assert.Equal(t, StatusSynced, f.item(f.analyze(), "db").Status)
}

func TestApply_OneWaySkipsNamesMissingFromSource(t *testing.T) {
	f := newFixture(t)
	f.b("only-b", `{"type":"local","command":["b"]}`)

	plan := f.analyze()
	report, sink := f.apply(plan, ApplyRequest{Names: []string{"only-b"}, Mode: OneWay(SideA, SideB)})

	res, ok := report.Result("only-b")
	require.True(t, ok)
	assert.Equal(t, OutcomeSkipped, res.Outcome)
	assert.Empty(t, sink.All())
}

func TestApply_DeletionsAreNeverApplied(t *testing.T) {
	f := newFixture(t)
	f.base(local("gone", true, "gone"))
	f.b("gone", `{"type":"local","command":["gone"]}`)

	plan := f.analyze()
	it := f.item(plan, "gone")
	require.Equal(t, StatusDeletedFromA, it.Status)
	assert.Equal(t, SideB, it.Status.Incoming(), "grouped with the store that should also drop it")

	for _, mode := range []Mode{Bidirectional(), OneWay(SideB, SideA), OneWay(SideA, SideB)} {
		report, sink := f.apply(plan, ApplyRequest{Names: []string{"gone"}, Mode: mode})
		res, ok := report.Result("gone")
		require.True(t, ok)
		assert.Equal(t, OutcomeSkipped, res.Outcome, mode.String())
		assert.Empty(t, sink.All(), mode.String())
	}

	_, ok, _ := f.store.Get(testPair, "gone")
	assert.True(t, ok, "baseline is kept")
}

func TestAnalyze_DeletedFromB(t *testing.T) {
	f := newFixture(t)
	f.base(local("gone", true, "gone"))
	f.a("gone", `{"command":"gone"}`)

	it := f.item(f.analyze(), "gone")
	assert.Equal(t, StatusDeletedFromB, it.Status)
	assert.Contains(t, it.ActionDescription, "removed from OpenCode")
}

func TestAnalyze_ChangedOnOneSideRemovedOnOther(t *testing.T) {
	f := newFixture(t)
	f.base(local("tool", true, "tool", "v1"))
	f.a("tool", `{"command":"tool","args":["v2"]}`)

	plan := f.analyze()
	it := f.item(plan, "tool")
	require.Equal(t, StatusConflict, it.Status)
	assert.Contains(t, it.ActionDescription, "removed from OpenCode")
	assert.NotEmpty(t, it.AAsB)
	assert.Empty(t, it.BAsA)

	_, err := f.eng.Apply(context.Background(), plan, ApplyRequest{
		Names:       []string{"tool"},
		Mode:        Bidirectional(),
		Resolutions: map[string]Side{"tool": SideB},
	}, NewCollectSink())
	assert.True(t, errors.Is(err, errors.ErrUnsupportedMode))

	report, sink := f.apply(plan, ApplyRequest{
		Names:       []string{"tool"},
		Mode:        Bidirectional(),
		Resolutions: map[string]Side{"tool": SideA},
	})
	assert.Equal(t, []string{"tool"}, report.Applied())
	assert.Len(t, sink.Changes("tool"), 1)
}

func TestApply_UnresolvedConflictRejectedBeforeMutation(t *testing.T) {
	f := newFixture(t)
	f.a("new", `{"command":"new"}`)
	f.a("db", `{"command":"db-server"}`)
	f.b("db", `{"type":"local","command":["db-server"],"enabled":false}`)

	plan := f.analyze()
	sink := NewCollectSink()
	report, err := f.eng.Apply(context.Background(), plan, ApplyRequest{
		Names: []string{"new", "db"},
		Mode:  Bidirectional(),
	}, sink)

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnsupportedMode))
	assert.Nil(t, report)
	assert.Empty(t, sink.All())
	_, ok, _ := f.store.Get(testPair, "new")
	assert.False(t, ok)
}

func TestApply_ResolvedConflict(t *testing.T) {
	f := newFixture(t)
	f.a("db", `{"command":"db-server"}`)
	f.b("db", `{"type":"local","command":["db-server"],"enabled":false}`)

	plan := f.analyze()
	report, sink := f.apply(plan, ApplyRequest{
		Names:       []string{"db"},
		Mode:        Bidirectional(),
		Resolutions: map[string]Side{"db": SideB},
	})
	assert.Equal(t, []string{"db"}, report.Applied())

	changes := sink.Changes("db")
	require.Len(t, changes, 2, "upsert under the prefixed key and delete the old key")
	assert.Equal(t, Change{Side: SideA, Store: "claude", Op: OpUpsert, Key: "_disabled_db", Raw: changes[0].Raw}, changes[0])
	assert.Equal(t, Change{Side: SideA, Store: "claude", Op: OpDelete, Key: "db"}, changes[1])

	again := f.analyze()
	assert.Equal(t, StatusSynced, f.item(again, "db").Status)
	assert.Equal(t, []string{"_disabled_db"}, keys(f.rawA))
}

func TestApply_AliasCleanupOnEnable(t *testing.T) {
	f := newFixture(t)
	f.base(local("x", false, "x"))
	f.a("_disabled_x", `{"command":"x"}`)
	f.b("x", `{"type":"local","command":["x"],"enabled":true}`)

	plan := f.analyze()
	require.Equal(t, StatusUpdatedInB, f.item(plan, "x").Status)

	_, sink := f.apply(plan, ApplyRequest{Names: []string{"x"}, Mode: Bidirectional()})
	changes := sink.Changes("x")
	require.Len(t, changes, 2)
	assert.Equal(t, "x", changes[0].Key)
	assert.Equal(t, OpDelete, changes[1].Op)
	assert.Equal(t, "_disabled_x", changes[1].Key)

	assert.Equal(t, []string{"x"}, keys(f.rawA))
}

func TestApply_UpsertKeepsNativeFields(t *testing.T) {
	remote := &mcp.Entry{Name: "api", Enabled: true, Transport: mcp.TransportRemote, URL: "https://example.com/sse"}
	tool := local("tool", true, "npx", "x")

	tests := []struct {
		name    string
		base    *mcp.Entry
		a       string
		b       string
		wantRaw string
	}{
		{
			name:    "sse record",
			base:    remote,
			a:       `{"type":"sse","url":"https://example.com/sse","timeout":30}`,
			b:       `{"type":"remote","url":"https://example.com/sse","headers":{"X":"1"}}`,
			wantRaw: `{"type":"sse","url":"https://example.com/sse","headers":{"X":"1"},"timeout":30}`,
		},
		{
			name:    "record with unknown fields",
			base:    tool,
			a:       `{"command":"npx","args":["x"],"isActive":true,"alwaysAllow":["read"]}`,
			b:       `{"type":"local","command":["npx","y"]}`,
			wantRaw: `{"type":"stdio","command":"npx","args":["y"],"isActive":true,"alwaysAllow":["read"]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.base(tt.base)
			f.a(tt.base.Name, tt.a)
			f.b(tt.base.Name, tt.b)

			plan := f.analyze()
			require.Equal(t, StatusUpdatedInB, f.item(plan, tt.base.Name).Status)

			_, sink := f.apply(plan, ApplyRequest{Names: []string{tt.base.Name}, Mode: Bidirectional()})
			changes := sink.Changes(tt.base.Name)
			require.Len(t, changes, 1)
			assert.Equal(t, SideA, changes[0].Side)
			assert.JSONEq(t, tt.wantRaw, string(changes[0].Raw))

			assert.Equal(t, StatusSynced, f.item(f.analyze(), tt.base.Name).Status)
		})
	}
}

func TestApply_Idempotent(t *testing.T) {
	f := newFixture(t)
	f.a("a-only", `{"command":"a"}`)
	f.b("b-only", `{"type":"local","command":["b"]}`)
	f.a("remote", `{"type":"sse","url":"https://example.com/sse","headers":{"X":"1"}}`)

	selection := ApplyRequest{Names: []string{"a-only", "b-only", "remote"}, Mode: Bidirectional()}

	report, _ := f.apply(f.analyze(), selection)
	assert.ElementsMatch(t, []string{"a-only", "b-only", "remote"}, report.Applied())

	plan := f.analyze()
	for _, it := range plan.Items {
		assert.Equal(t, StatusSynced, it.Status, it.Name)
	}

	again, sink := f.apply(plan, selection)
	assert.Empty(t, sink.All())
	assert.Empty(t, again.Applied())
	for _, res := range again.Results {
		assert.Equal(t, OutcomeSkipped, res.Outcome)
	}
}

func TestApply_FailureIsolation(t *testing.T) {
	f := newFixture(t)
	f.a("bad", `{"command":"bad"}`)
	f.a("good", `{"command":"good"}`)

	plan := f.analyze()
	sink := SinkFunc(func(_ context.Context, name string, _ []Change) error {
		if name == "bad" {
			return errors.New("disk full")
		}
		return nil
	})

	report, err := f.eng.Apply(context.Background(), plan, ApplyRequest{
		Names: []string{"good", "bad", "missing"},
		Mode:  Bidirectional(),
	}, sink)
	require.NoError(t, err)

	assert.Equal(t, []string{"good"}, report.Applied())
	require.Len(t, report.Failed(), 2)

	bad, _ := report.Result("bad")
	assert.Equal(t, OutcomeFailed, bad.Outcome)
	assert.True(t, errors.Is(bad.Err, errors.ErrApplyFailure))
	var applyErr *ApplyError
	require.True(t, errors.As(bad.Err, &applyErr))
	assert.Equal(t, "bad", applyErr.Name)
	assert.Contains(t, bad.Err.Error(), "disk full")

	missing, _ := report.Result("missing")
	assert.True(t, errors.Is(missing.Err, errors.ErrNotFound))

	require.Error(t, report.Err())

	_, ok, _ := f.store.Get(testPair, "bad")
	assert.False(t, ok, "baseline must not run ahead of a failed write")
	_, ok, _ = f.store.Get(testPair, "good")
	assert.True(t, ok)
}

func TestApply_DryRun(t *testing.T) {
	f := newFixture(t)
	f.a("new", `{"command":"new"}`)

	plan := f.analyze()
	report, err := f.eng.Apply(context.Background(), plan, ApplyRequest{
		Names:  []string{"new"},
		Mode:   Bidirectional(),
		DryRun: true,
	}, nil)
	require.NoError(t, err)

	res, _ := report.Result("new")
	assert.Equal(t, OutcomePlanned, res.Outcome)
	require.Len(t, res.Changes, 1)
	assert.Equal(t, SideB, res.Changes[0].Side)
	assert.True(t, report.DryRun)

	_, ok, _ := f.store.Get(testPair, "new")
	assert.False(t, ok)
}

func TestApply_SyncedSelectionRecordsBaseline(t *testing.T) {
	f := newFixture(t)
	f.a("x", `{"command":"x"}`)
	f.b("x", `{"type":"local","command":["x"]}`)

	_, sink := f.apply(f.analyze(), ApplyRequest{Names: []string{"x"}, Mode: Bidirectional()})
	assert.Empty(t, sink.All())

	base, ok, err := f.store.Get(testPair, "x")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"x"}, base.Argv)

	// With the baseline recorded, a one-sided edit is no longer a conflict.
	f.b("x", `{"type":"local","command":["x","--flag"]}`)
	assert.Equal(t, StatusUpdatedInB, f.item(f.analyze(), "x").Status)
}

func TestApply_ModeValidation(t *testing.T) {
	f := newFixture(t)
	f.a("x", `{"command":"x"}`)
	plan := f.analyze()

	modes := []Mode{
		OneWay(SideA, SideA),
		OneWay(SideA, ""),
		{Kind: ModeMultiToOne},
		{Kind: ModeOneToMulti},
		{Kind: "sideways"},
	}
	for _, m := range modes {
		t.Run(m.String(), func(t *testing.T) {
			sink := NewCollectSink()
			_, err := f.eng.Apply(context.Background(), plan, ApplyRequest{Names: []string{"x"}, Mode: m}, sink)
			assert.True(t, errors.Is(err, errors.ErrUnsupportedMode), "got %v", err)
			assert.Empty(t, sink.All())
		})
	}
}

func TestApply_RejectsForeignPlan(t *testing.T) {
	f := newFixture(t)
	_, err := f.eng.Apply(context.Background(), &Plan{PairID: testPair}, ApplyRequest{Mode: Bidirectional()}, NewCollectSink())
	assert.Error(t, err)

	other := NewEngine(claude.NewMCPNormalizer(), opencode.NewMCPNormalizer(), nil, "laptop/claude+opencode")
	plan, err := other.Analyze(nil, nil)
	require.NoError(t, err)
	_, err = f.eng.Apply(context.Background(), plan, ApplyRequest{Mode: Bidirectional()}, NewCollectSink())
	assert.Error(t, err)
}

func TestApply_CanceledContext(t *testing.T) {
	f := newFixture(t)
	f.a("x", `{"command":"x"}`)
	plan := f.analyze()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := NewCollectSink()
	report, err := f.eng.Apply(ctx, plan, ApplyRequest{Names: []string{"x"}, Mode: Bidirectional()}, sink)
	require.NoError(t, err)

	res, _ := report.Result("x")
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.True(t, errors.Is(res.Err, context.Canceled))
	assert.Empty(t, sink.All())
}

func TestAnalyze_MalformedEntriesExcluded(t *testing.T) {
	f := newFixture(t)
	f.a("broken", `{"env":{"A":"1"}}`)
	f.b("broken", `{"type":"local","command":["fine"]}`)
	f.a("ok", `{"command":"ok"}`)
	f.b("ok", `{"type":"local","command":["ok"]}`)

	plan := f.analyze()
	assert.Equal(t, []string{"ok"}, plan.Names())
	require.Len(t, plan.Malformed, 1)
	assert.Equal(t, "claude", plan.Malformed[0].Store)
	assert.Equal(t, "broken", plan.Malformed[0].Key)
	assert.False(t, plan.InSync())
}

func TestAnalyze_PreviewFailureDegrades(t *testing.T) {
	f := newFixture(t)
	// OpenCode can hold a name Claude Desktop reserves for disabled entries.
	f.base(local("_disabled_x", true, "x"))
	f.b("_disabled_x", `{"type":"local","command":["x","--changed"]}`)

	plan := f.analyze()
	it := f.item(plan, "_disabled_x")
	require.Equal(t, StatusConflict, it.Status)
	assert.Empty(t, it.BAsA)
	require.NotEmpty(t, it.Errors)
	assert.Contains(t, it.Errors[0], "Claude Desktop")
	assert.NotEmpty(t, it.DiffLines, "diff still rendered")
}

func TestAnalyze_RequiresPairID(t *testing.T) {
	eng := NewEngine(claude.NewMCPNormalizer(), opencode.NewMCPNormalizer(), nil, "")
	_, err := eng.Analyze(nil, nil)
	assert.Error(t, err)
}

func TestPlan_JSONHidesSnapshots(t *testing.T) {
	f := newFixture(t)
	f.a("x", `{"command":"x"}`)

	data, err := json.Marshal(f.analyze())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.ElementsMatch(t, []string{"pair_id", "store_a", "store_b", "items"}, mapKeys(decoded))
}

func keys(m map[string]json.RawMessage) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func mapKeys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestPreview_FillsNonConflictItems(t *testing.T) {
	f := newFixture(t)
	f.a("only-a", `{"command":"npx","args":["tool"]}`)
	p := f.analyze()

	it := f.item(p, "only-a")
	require.Empty(t, it.AAsB)

	f.eng.Preview(p, it)
	assert.Contains(t, it.AAsB, `"local"`)
	assert.Empty(t, it.BAsA)

	cmp, err := f.eng.Renderer().Compare(it, CompareAsB)
	require.NoError(t, err)
	assert.Positive(t, cmp.Deletions)
	assert.Zero(t, cmp.Additions)
}
