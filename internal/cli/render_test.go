package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	charmlog "github.com/charmbracelet/log"

	"github.com/depdiscover/depviz/internal/config"
	"github.com/depdiscover/depviz/pkg/cache"
	"github.com/depdiscover/depviz/pkg/errors"
	"github.com/depdiscover/depviz/pkg/render"
)

// stubEngine records the render call and returns canned output.
type stubEngine struct {
	out   []byte
	err   error
	calls int
	opts  render.Options
}

func (s *stubEngine) Render(_ context.Context, _ string, opts render.Options) ([]byte, error) {
	s.calls++
	s.opts = opts
	if s.err != nil {
		return nil, s.err
	}
	return s.out, nil
}

// memoryCache is an in-process cache for exercising hit and miss paths.
type memoryCache struct {
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	data, ok := m.entries[key]
	return data, ok, nil
}

func (m *memoryCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	m.entries[key] = data
	return nil
}

func (m *memoryCache) Delete(_ context.Context, key string) error {
	delete(m.entries, key)
	return nil
}

func (m *memoryCache) Close() error { return nil }

func testContext() context.Context {
	return withLogger(context.Background(), newLogger(io.Discard, charmlog.FatalLevel))
}

func writeScan(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "depdiscover.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunRenderWritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	input := writeScan(t, dir, `{
		"project_name": "api",
		"dependencies": [
			{"name": "openssl", "version": "3.0.2", "type": "library", "cves": [{"id": "SAFE"}]}
		]
	}`)
	base := filepath.Join(dir, "dependency_graph")

	engine := &stubEngine{out: []byte("fake-png")}
	err := runRender(testContext(), input, base, config.Default(), newMemoryCache(), engine)
	if err != nil {
		t.Fatalf("runRender() error = %v", err)
	}

	if engine.calls != 1 {
		t.Errorf("engine called %d times, want 1", engine.calls)
	}

	dot, err := os.ReadFile(base + ".gv")
	if err != nil {
		t.Fatalf("missing graph description: %v", err)
	}
	if !strings.Contains(string(dot), "digraph dependencies") {
		t.Errorf("graph description missing digraph header:\n%s", dot)
	}
	if !strings.Contains(string(dot), `"openssl"`) {
		t.Errorf("graph description missing dependency node:\n%s", dot)
	}

	img, err := os.ReadFile(base + ".png")
	if err != nil {
		t.Fatalf("missing image: %v", err)
	}
	if string(img) != "fake-png" {
		t.Errorf("image = %q, want engine output", img)
	}
}

func TestRunRenderCacheHitSkipsEngine(t *testing.T) {
	dir := t.TempDir()
	input := writeScan(t, dir, `{"project_name": "api", "dependencies": []}`)
	base := filepath.Join(dir, "out")
	cfg := config.Default()

	store := newMemoryCache()
	engine := &stubEngine{out: []byte("first")}

	if err := runRender(testContext(), input, base, cfg, store, engine); err != nil {
		t.Fatalf("first runRender() error = %v", err)
	}
	if err := runRender(testContext(), input, base, cfg, store, engine); err != nil {
		t.Fatalf("second runRender() error = %v", err)
	}

	if engine.calls != 1 {
		t.Errorf("engine called %d times, want 1 (second run should hit cache)", engine.calls)
	}
	img, err := os.ReadFile(base + ".png")
	if err != nil {
		t.Fatal(err)
	}
	if string(img) != "first" {
		t.Errorf("image = %q, want cached output", img)
	}
}

func TestRunRenderFailurePreservesDOT(t *testing.T) {
	dir := t.TempDir()
	input := writeScan(t, dir, `{"project_name": "api", "dependencies": []}`)
	base := filepath.Join(dir, "out")

	engine := &stubEngine{err: errors.New(errors.ErrCodeRenderFailure, "boom")}
	err := runRender(testContext(), input, base, config.Default(), cache.NewNullCache(), engine)
	if !errors.Is(err, errors.ErrCodeRenderFailure) {
		t.Fatalf("runRender() error = %v, want RENDER_FAILURE", err)
	}

	if _, serr := os.Stat(base + ".gv"); serr != nil {
		t.Errorf("graph description missing after render failure: %v", serr)
	}
	if _, serr := os.Stat(base + ".png"); serr == nil {
		t.Error("image written despite render failure")
	}
}

func TestRunRenderWrapsUncodedEngineErrors(t *testing.T) {
	dir := t.TempDir()
	input := writeScan(t, dir, `{"dependencies": []}`)

	engine := &stubEngine{err: io.ErrUnexpectedEOF}
	err := runRender(testContext(), input, filepath.Join(dir, "out"), config.Default(), cache.NewNullCache(), engine)
	if !errors.Is(err, errors.ErrCodeRenderFailure) {
		t.Fatalf("runRender() error = %v, want RENDER_FAILURE", err)
	}
}

func TestRunRenderEscalatesLayout(t *testing.T) {
	var deps []string
	for i := 0; i < render.AutoLayoutThreshold+1; i++ {
		deps = append(deps, fmt.Sprintf(`{"name": "dep%d"}`, i))
	}
	dir := t.TempDir()
	input := writeScan(t, dir, `{"dependencies": [`+strings.Join(deps, ",")+`]}`)

	engine := &stubEngine{out: []byte("x")}
	err := runRender(testContext(), input, filepath.Join(dir, "out"), config.Default(), cache.NewNullCache(), engine)
	if err != nil {
		t.Fatalf("runRender() error = %v", err)
	}
	if engine.opts.Layout != render.LayoutSFDP {
		t.Errorf("layout = %q, want %q for large graph", engine.opts.Layout, render.LayoutSFDP)
	}
}

func TestRunRenderInputNotFound(t *testing.T) {
	engine := &stubEngine{out: []byte("x")}
	err := runRender(testContext(), filepath.Join(t.TempDir(), "missing.json"), "out", config.Default(), cache.NewNullCache(), engine)
	if !errors.Is(err, errors.ErrCodeInputNotFound) {
		t.Fatalf("runRender() error = %v, want INPUT_NOT_FOUND", err)
	}
	if engine.calls != 0 {
		t.Errorf("engine called %d times for missing input", engine.calls)
	}
}

func TestNewStoreDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Backend = config.BackendNone

	if _, ok := newStore(testContext(), cfg, false).(*cache.NullCache); !ok {
		t.Error("BackendNone should yield the null cache")
	}
	cfg = config.Default()
	if _, ok := newStore(testContext(), cfg, true).(*cache.NullCache); !ok {
		t.Error("--no-cache should yield the null cache")
	}
}
