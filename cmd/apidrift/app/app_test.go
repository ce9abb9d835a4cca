package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/agentstation/apidrift"
	"github.com/agentstation/apidrift/internal/ai"
	"github.com/agentstation/apidrift/pkg/errors"
	"github.com/agentstation/apidrift/pkg/logging"
	"github.com/agentstation/apidrift/pkg/reconciler"
	"github.com/agentstation/apidrift/pkg/records"
)

func newTestApp(t *testing.T, config *Config, opts ...Option) *App {
	t.Helper()
	opts = append([]Option{WithConfig(config), WithLogger(logging.NewNopLogger())}, opts...)
	a, err := New("1.2.3", "abc123", "2026-01-01", "test", opts...)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return a
}

func TestApp_Accessors(t *testing.T) {
	a := newTestApp(t, &Config{Mode: "rule_based", Output: "yaml", Workers: 2})
	if a.Version() != "1.2.3" || a.Commit() != "abc123" || a.Date() != "2026-01-01" || a.BuiltBy() != "test" {
		t.Error("version information not preserved")
	}
	if a.OutputFormat() != "yaml" {
		t.Errorf("OutputFormat() = %q", a.OutputFormat())
	}
	if s := a.Settings(); s.Workers != 2 || s.Mode != "rule_based" {
		t.Errorf("Settings() = %+v", s)
	}
}

func TestApp_EngineRuleBased(t *testing.T) {
	a := newTestApp(t, &Config{Mode: "rule_based"})
	engine, err := a.Engine(context.Background())
	if err != nil {
		t.Fatalf("Engine() failed: %v", err)
	}
	set, err := engine.Reconcile(context.Background(), nil, [][]records.RawCodeSymbol{{{QualifiedName: "pkg.F"}}})
	if err != nil {
		t.Fatalf("Reconcile() failed: %v", err)
	}
	if set.Summary.Total != 1 {
		t.Errorf("Total = %d, want 1", set.Summary.Total)
	}
}

func TestApp_EngineAIRequiresKey(t *testing.T) {
	a := newTestApp(t, &Config{Mode: "ai_assisted", AIProvider: "gemini"})
	_, err := a.Engine(context.Background())
	if !errors.Is(err, errors.ErrAPIKeyRequired) {
		t.Errorf("Engine() error = %v, want ErrAPIKeyRequired", err)
	}

	// A command choosing rule_based skips backend creation.
	if _, err := a.Engine(context.Background(), apidrift.WithMode(reconciler.ModeRuleBased)); err != nil {
		t.Errorf("Engine(rule_based) failed: %v", err)
	}
}

func TestApp_EngineAIGenerator(t *testing.T) {
	var calls atomic.Int32
	gen := ai.GeneratorFunc(func(context.Context, string, string) (string, error) {
		calls.Add(1)
		return "not json", nil
	})
	a := newTestApp(t, &Config{Mode: "rule_based"}, WithGenerator(gen))

	engine, err := a.Engine(context.Background(), apidrift.WithMode(reconciler.ModeAIAssisted))
	if err != nil {
		t.Fatalf("Engine() failed: %v", err)
	}
	pages := [][]records.RawDocEntry{{{IdentityHint: "f", CodeBlock: "f(a: int)"}}}
	files := [][]records.RawCodeSymbol{{{QualifiedName: "f", Parameters: []records.RawParameter{{Name: "a", Type: "str"}}}}}
	set, err := engine.Reconcile(context.Background(), pages, files)
	if err != nil {
		t.Fatalf("Reconcile() failed: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("generator calls = %d, want 1", calls.Load())
	}
	if !set.Entries[0].Resolution.Fallback {
		t.Error("invalid response should fall back to rules")
	}
}

func TestApp_Execute(t *testing.T) {
	dir := t.TempDir()
	code := filepath.Join(dir, "lib.py")
	if err := os.WriteFile(code, []byte("def area(w, h):\n    \"\"\"Area.\"\"\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	a := newTestApp(t, &Config{Mode: "rule_based", Report: "json", LogOutput: "discard"})
	if err := a.Execute(context.Background(), []string{"reconcile", "--code", code, "--summary=false", "--out", filepath.Join(dir, "out.json")}); err != nil {
		t.Fatalf("Execute(reconcile) failed: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "out.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"lib.area"`) {
		t.Errorf("report missing lib.area:\n%s", data)
	}
}

func TestApp_Version(t *testing.T) {
	a := newTestApp(t, &Config{LogOutput: "discard"})
	root := a.createRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out.String(), "apidrift version 1.2.3") {
		t.Errorf("unexpected output: %q", out.String())
	}
}
