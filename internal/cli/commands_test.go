package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/canonic/internal/server"
	"github.com/matzehuels/canonic/pkg/catalog"
	errs "github.com/matzehuels/canonic/pkg/errors"
	"github.com/matzehuels/canonic/pkg/pipeline"
)

const (
	cycle4    = "4\n0 1\n1 2\n2 3\n3 0\n"
	cycle4Alt = "4\n0 2\n2 1\n1 3\n3 0\n"
	path3     = "3\n0 1\n1 2\n"
	path4     = "4\n0 1\n1 2\n2 3\n"
	star4     = "4\n0 1\n0 2\n0 3\n"
)

// testEnv points the XDG directories at a temp dir so commands never touch
// the user's cache, config or catalog.
type testEnv struct {
	t   *testing.T
	dir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	return &testEnv{t: t, dir: dir}
}

// run executes one command line with stdin and returns its stdout.
func (e *testEnv) run(stdin string, args ...string) (string, error) {
	e.t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *testEnv) mustRun(stdin string, args ...string) string {
	e.t.Helper()
	out, err := e.run(stdin, args...)
	if err != nil {
		e.t.Fatalf("%s: %v", strings.Join(args, " "), err)
	}
	return out
}

func (e *testEnv) write(name, body string) string {
	e.t.Helper()
	path := filepath.Join(e.dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		e.t.Fatal(err)
	}
	return path
}

func decodeJSON[T any](t *testing.T, s string) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("decode %q: %v", s, err)
	}
	return v
}

func TestGenerateThenCanon(t *testing.T) {
	env := newTestEnv(t)
	petersen := env.mustRun("", "generate", "petersen")

	res := decodeJSON[pipeline.CanonResult](t, env.mustRun(petersen, "canon", "-", "-o", "json"))
	if res.Order != 10 || res.Edges != 15 {
		t.Errorf("order %d edges %d, want 10 and 15", res.Order, res.Edges)
	}
	if res.GroupSize != 120 {
		t.Errorf("group size = %d, want 120", res.GroupSize)
	}
	if len(res.Hash) != 64 {
		t.Errorf("hash = %q", res.Hash)
	}

	again := decodeJSON[pipeline.CanonResult](t, env.mustRun(petersen, "canon", "-", "-o", "json"))
	if !again.Stats.CacheHit {
		t.Error("second run should hit the file cache")
	}
	if again.Hash != res.Hash {
		t.Error("cached hash differs")
	}
}

func TestCanonText(t *testing.T) {
	env := newTestEnv(t)
	out := env.mustRun(cycle4, "canon", "-", "--no-cache")
	for _, want := range []string{"Canonical form", "4 vertices", "group size", "fresh"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCanonBatch(t *testing.T) {
	env := newTestEnv(t)
	file := env.write("batch.edges", cycle4+"\n"+cycle4Alt)

	results := decodeJSON[[]pipeline.CanonResult](t, env.mustRun("", "canon", file, "-o", "json"))
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Hash != results[1].Hash {
		t.Error("isomorphic graphs got different hashes")
	}
}

func TestCanonEmitsCanonicalGraph(t *testing.T) {
	env := newTestEnv(t)
	a := env.mustRun(cycle4, "canon", "-", "--canonical", "edges", "-o", "yaml")
	b := env.mustRun(cycle4Alt, "canon", "-", "--canonical", "edges", "-o", "yaml")
	edgesOf := func(s string) string { return s[:strings.Index(s, "order:")] }
	if edgesOf(a) != edgesOf(b) {
		t.Errorf("canonical graphs differ:\n%s\n%s", edgesOf(a), edgesOf(b))
	}
}

func TestRefineYAML(t *testing.T) {
	env := newTestEnv(t)
	var res struct {
		Partition string `yaml:"partition"`
		NumCells  int    `yaml:"num_cells"`
		Discrete  bool   `yaml:"discrete"`
	}
	out := env.mustRun(path3, "refine", "-", "-o", "yaml")
	if err := yaml.Unmarshal([]byte(out), &res); err != nil {
		t.Fatal(err)
	}
	if res.Partition != "[ 0 2 | 1 ]" || res.NumCells != 2 || res.Discrete {
		t.Errorf("refine = %+v", res)
	}

	out = env.mustRun(path3, "refine", "-", "--descending", "-o", "yaml")
	if err := yaml.Unmarshal([]byte(out), &res); err != nil {
		t.Fatal(err)
	}
	if res.Partition != "[ 1 | 0 2 ]" {
		t.Errorf("descending partition = %q", res.Partition)
	}
}

func TestRefinePartitionFlag(t *testing.T) {
	env := newTestEnv(t)
	res := decodeJSON[pipeline.RefineResult](t, env.mustRun(path3, "refine", "-", "-p", "[ 0 | 1 2 ]", "-o", "json"))
	if !res.Discrete {
		t.Errorf("partition %s should be discrete", res.Partition)
	}

	_, err := env.run(path3, "refine", "-", "-p", "[ 0 | 1 ]")
	if !errs.Is(err, errs.ErrCodeInvalidPartition) {
		t.Errorf("short partition: got %v, want INVALID_PARTITION", err)
	}
}

func TestIso(t *testing.T) {
	env := newTestEnv(t)
	a := env.write("a.edges", cycle4)
	b := env.write("b.edges", cycle4Alt)

	res := decodeJSON[pipeline.CompareResult](t, env.mustRun("", "iso", a, b, "-o", "json"))
	if !res.Isomorphic || len(res.Mapping) != 4 {
		t.Errorf("iso = %+v", res)
	}

	p := env.write("p.edges", path4)
	s := env.write("s.edges", star4)
	out := env.mustRun("", "iso", p, s)
	if !strings.Contains(out, "Not isomorphic") {
		t.Errorf("output = %q", out)
	}
	if _, err := env.run("", "iso", p, s, "--strict"); !errors.Is(err, errNotIsomorphic) {
		t.Errorf("--strict: got %v", err)
	}
}

func TestTrace(t *testing.T) {
	env := newTestEnv(t)
	steps := decodeJSON[[]traceStep](t, env.mustRun(path3, "trace", "-", "-o", "json"))
	if len(steps) != 2 {
		t.Fatalf("got %d steps, want 2", len(steps))
	}
	if steps[0].Partition != "[ 0:2 ]" || steps[0].Cells != 1 {
		t.Errorf("initial step = %+v", steps[0])
	}
	if steps[1].Partition != "[ 0 2 | 1 ]" || len(steps[1].Splits) != 1 {
		t.Errorf("first generation = %+v", steps[1])
	}

	out := env.mustRun(path3, "trace", "-")
	if !strings.Contains(out, "Partition") || !strings.Contains(out, "[ 0 2 | 1 ]") {
		t.Errorf("table output:\n%s", out)
	}
}

func TestRenderDOT(t *testing.T) {
	env := newTestEnv(t)
	out := env.mustRun(star4, "render", "-")
	if !strings.HasPrefix(out, "graph G {") {
		t.Errorf("not DOT:\n%s", out)
	}
	if !strings.Contains(out, "fillcolor=\"#") {
		t.Error("equitable colouring missing")
	}

	file := filepath.Join(env.dir, "star.dot")
	env.mustRun(star4, "render", "-", "--colour", "none", "--out", file)
	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "fillcolor=\"#") {
		t.Error("--colour none should leave vertices white")
	}

	if _, err := env.run(star4, "render", "-", "--colour", "rainbow"); !errs.Is(err, errs.ErrCodeInvalidFormat) {
		t.Errorf("bad colour: got %v", err)
	}
}

func TestRenderType(t *testing.T) {
	tests := []struct {
		typ, out string
		want     string
		wantErr  bool
	}{
		{"", "", renderDOT, false},
		{"", "graph.svg", renderSVG, false},
		{"", "graph.PDF", renderPDF, false},
		{"", "graph.gv", renderDOT, false},
		{"png", "graph.svg", renderPNG, false},
		{"bmp", "", "", true},
	}
	for _, tt := range tests {
		got, err := renderType(tt.typ, tt.out)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("renderType(%q, %q) = %q, %v", tt.typ, tt.out, got, err)
		}
	}
}

func TestGenerate(t *testing.T) {
	env := newTestEnv(t)
	a := env.mustRun("", "generate", "cycle", "-n", "6", "--shuffle", "--seed", "7")
	b := env.mustRun("", "generate", "cycle", "-n", "6", "--shuffle", "--seed", "7")
	if a != b {
		t.Error("same seed should give the same graph")
	}
	if !strings.HasPrefix(a, "6\n") {
		t.Errorf("edge list header: %q", a)
	}

	if _, err := env.run("", "generate", "dodecahedron"); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("unknown family: got %v", err)
	}
	if _, err := env.run("", "generate", "cycle", "-n", "2"); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("tiny cycle: got %v", err)
	}
}

func TestCatalogCommands(t *testing.T) {
	env := newTestEnv(t)
	cfg := env.write("config.toml", "[catalog]\nbackend = \"badger\"\npath = \""+filepath.Join(env.dir, "catalog")+"\"\n")

	first := decodeJSON[catalog.Entry](t, env.mustRun(cycle4, "--config", cfg, "catalog", "add", "-", "-o", "json"))
	second := decodeJSON[catalog.Entry](t, env.mustRun(cycle4Alt, "--config", cfg, "catalog", "add", "-", "-o", "json"))
	if first.Count != 1 || second.Count != 2 || first.Hash != second.Hash {
		t.Errorf("counts %d, %d; hashes %s, %s", first.Count, second.Count, first.Hash, second.Hash)
	}

	list := decodeJSON[[]catalog.Entry](t, env.mustRun("", "--config", cfg, "catalog", "list", "-o", "json"))
	if len(list) != 1 || list[0].GroupSize != 8 {
		t.Errorf("list = %+v", list)
	}

	got := decodeJSON[catalog.Entry](t, env.mustRun("", "--config", cfg, "catalog", "get", first.Hash, "-o", "json"))
	if got.ID != first.ID || got.Count != 2 {
		t.Errorf("get = %+v", got)
	}

	_, err := env.run("", "--config", cfg, "catalog", "get", strings.Repeat("f", 64))
	if !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("missing class: got %v", err)
	}
}

func TestCatalogRequiresBackend(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.run("", "catalog", "list"); !errs.Is(err, errs.ErrCodeUnsupported) {
		t.Errorf("got %v, want UNSUPPORTED", err)
	}
}

func TestCacheCommands(t *testing.T) {
	env := newTestEnv(t)
	dir := strings.TrimSpace(env.mustRun("", "cache", "path"))
	if dir != filepath.Join(env.dir, "cache", appName) {
		t.Errorf("cache path = %q", dir)
	}

	if out := env.mustRun("", "cache", "clear"); !strings.Contains(out, "Cache is empty") {
		t.Errorf("clear on empty cache: %q", out)
	}
	env.mustRun(cycle4, "canon", "-")
	if out := env.mustRun("", "cache", "clear"); !strings.Contains(out, "Cleared 1 cached entries") {
		t.Errorf("clear: %q", out)
	}
}

func TestConfigFlagMissingFile(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run("", "--config", filepath.Join(env.dir, "nope.toml"), "version")
	if !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("got %v, want FILE_NOT_FOUND", err)
	}
}

func TestVersionAndCompletion(t *testing.T) {
	env := newTestEnv(t)
	if out := env.mustRun("", "version"); !strings.Contains(out, "commit:") {
		t.Errorf("version = %q", out)
	}
	if out := env.mustRun("", "completion", "bash"); !strings.Contains(out, appName) {
		t.Error("bash completion should mention the command name")
	}
	if _, err := env.run("", "completion", "tcsh"); err == nil {
		t.Error("unsupported shell should fail")
	}
}

func TestServeMaxNodes(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		configured int
		want       int
	}{
		{"default cap", nil, 0, server.DefaultMaxNodes},
		{"config", nil, 500, 500},
		{"flag wins", []string{"--max-nodes", "50"}, 500, 50},
		{"explicit zero lifts the cap", []string{"--max-nodes", "0"}, 500, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := New(io.Discard, LogInfo).serveCommand()
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatal(err)
			}
			if got := serveMaxNodes(cmd, tt.configured); got != tt.want {
				t.Errorf("serveMaxNodes() = %d, want %d", got, tt.want)
			}
		})
	}
}
