package pipeline

import (
	"bytes"
	"context"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/canonic/pkg/cache"
	"github.com/matzehuels/canonic/pkg/catalog"
	errs "github.com/matzehuels/canonic/pkg/errors"
	"github.com/matzehuels/canonic/pkg/graph"
	"github.com/matzehuels/canonic/pkg/graph/builder"
	"github.com/matzehuels/canonic/pkg/observability"
	"github.com/matzehuels/canonic/pkg/partition"
)

// must unwraps a builder result, failing t on error:
// must(t)(builder.Path(4)).
func must(t *testing.T) func(*graph.Adjacency, error) *graph.Adjacency {
	return func(g *graph.Adjacency, err error) *graph.Adjacency {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
		return g
	}
}

func newTestRunner(t *testing.T, cat catalog.Catalog) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewRunner(c, nil, cat, nil)
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"text", false},
		{"json", false},
		{"yaml", false},
		{"YAML", true}, // case-sensitive
		{"svg", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("zero options: %v", err)
	}
	if opts.Format != DefaultFormat || opts.Logger == nil {
		t.Errorf("defaults not applied: format=%q logger=%v", opts.Format, opts.Logger)
	}

	bad := Options{MaxNodes: -1}
	if err := bad.ValidateAndSetDefaults(); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("negative MaxNodes: error = %v", err)
	}
	bad = Options{Format: "xml"}
	if err := bad.ValidateAndSetDefaults(); !errs.Is(err, errs.ErrCodeInvalidFormat) {
		t.Errorf("unknown format: error = %v", err)
	}
}

func TestCanonicalizeCaches(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t, nil)
	g := builder.Petersen()

	first, err := r.Canonicalize(ctx, g, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if first.Stats.CacheHit {
		t.Error("first run reported a cache hit")
	}
	if first.GroupSize != 120 {
		t.Errorf("GroupSize = %d, want 120", first.GroupSize)
	}

	second, err := r.Canonicalize(ctx, g, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !second.Stats.CacheHit {
		t.Error("second run missed the cache")
	}
	if second.Hash != first.Hash || second.GroupSize != first.GroupSize {
		t.Errorf("cached result differs: %s/%d vs %s/%d", second.Hash, second.GroupSize, first.Hash, first.GroupSize)
	}
	if !second.Certificate.Equal(first.Certificate) {
		t.Error("certificate not rebuilt on cache hit")
	}
	if second.Stats.RunID == first.Stats.RunID {
		t.Error("run IDs repeat")
	}

	third, err := r.Canonicalize(ctx, g, Options{Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if third.Stats.CacheHit {
		t.Error("refresh served from cache")
	}
}

func TestCanonicalizeOptionsChangeKey(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t, nil)
	g := must(t)(builder.Path(4))

	if _, err := r.Canonicalize(ctx, g, Options{}); err != nil {
		t.Fatal(err)
	}
	res, err := r.Canonicalize(ctx, g, Options{Descending: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.Stats.CacheHit {
		t.Error("descending run served from the ascending entry")
	}

	p, err := partition.FromCells(4, [][]int{{0}, {1, 2, 3}})
	if err != nil {
		t.Fatal(err)
	}
	res, err = r.Canonicalize(ctx, g, Options{Partition: p})
	if err != nil {
		t.Fatal(err)
	}
	if res.Stats.CacheHit || res.GroupSize != 1 {
		t.Errorf("coloured run: hit=%v group=%d, want miss and 1", res.Stats.CacheHit, res.GroupSize)
	}
}

func TestCanonicalizeRecord(t *testing.T) {
	ctx := context.Background()
	cat := catalog.NewMemory()
	r := newTestRunner(t, cat)

	g := must(t)(builder.Cycle(5))
	h, err := g.Relabel([]int{3, 0, 4, 1, 2})
	if err != nil {
		t.Fatal(err)
	}

	first, err := r.Canonicalize(ctx, g, Options{Record: true})
	if err != nil {
		t.Fatal(err)
	}
	if first.Class == nil || first.Class.Count != 1 {
		t.Fatalf("first Class = %+v, want count 1", first.Class)
	}
	second, err := r.Canonicalize(ctx, h, Options{Record: true})
	if err != nil {
		t.Fatal(err)
	}
	if second.Class == nil || second.Class.ID != first.Class.ID || second.Class.Count != 2 {
		t.Errorf("relabeled graph Class = %+v, want same ID with count 2", second.Class)
	}

	e, err := r.Lookup(ctx, first.Hash)
	if err != nil {
		t.Fatal(err)
	}
	if e.GroupSize != 10 {
		t.Errorf("catalog GroupSize = %d, want 10", e.GroupSize)
	}
	if _, err := r.Lookup(ctx, strings.Repeat("0", 64)); !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("Lookup(missing) error = %v, want NOT_FOUND", err)
	}
	list, err := r.Classes(ctx, 0)
	if err != nil || len(list) != 1 {
		t.Errorf("Classes() = %v, %v", list, err)
	}
}

func TestLookupWithoutCatalog(t *testing.T) {
	r := NewRunner(nil, nil, nil, nil)
	_, err := r.Lookup(context.Background(), strings.Repeat("a", 64))
	if !errs.Is(err, errs.ErrCodeUnsupported) {
		t.Errorf("error = %v, want UNSUPPORTED", err)
	}
}

func TestCanonicalizeErrors(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, nil, nil)

	_, err := r.Canonicalize(ctx, must(t)(builder.Empty(6)), Options{MaxNodes: 10})
	if !errs.Is(err, errs.ErrCodeBudgetExceeded) {
		t.Errorf("budget: error = %v, want BUDGET_EXCEEDED", err)
	}

	p := partition.Initial(3)
	_, err = r.Canonicalize(ctx, must(t)(builder.Cycle(4)), Options{Partition: p})
	if !errs.Is(err, errs.ErrCodeInvalidPartition) {
		t.Errorf("mismatched partition: error = %v, want INVALID_PARTITION", err)
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = r.Canonicalize(canceled, must(t)(builder.Empty(5)), Options{})
	if !errs.Is(err, errs.ErrCodeCanceled) {
		t.Errorf("canceled: error = %v, want CANCELED", err)
	}
}

func TestRefine(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t, nil)
	g := must(t)(builder.Path(3))

	res, err := r.Refine(ctx, g, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Partition != "[ 0 2 | 1 ]" || res.NumCells != 2 || res.Discrete {
		t.Errorf("Refine(P3) = %s (%d cells)", res.Partition, res.NumCells)
	}

	again, err := r.Refine(ctx, g, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !again.Stats.CacheHit || again.Partition != res.Partition {
		t.Errorf("second Refine: hit=%v partition=%s", again.Stats.CacheHit, again.Partition)
	}

	desc, err := r.Refine(ctx, g, Options{Descending: true})
	if err != nil {
		t.Fatal(err)
	}
	if desc.Partition != "[ 1 | 0 2 ]" {
		t.Errorf("descending Refine(P3) = %s, want [ 1 | 0 2 ]", desc.Partition)
	}
}

func TestCompare(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t, nil)
	rng := rand.New(rand.NewPCG(7, 11))

	g := must(t)(builder.Grid(2, 3))
	h, err := g.Relabel(builder.Shuffle(g.Order(), rng))
	if err != nil {
		t.Fatal(err)
	}

	res, err := r.Compare(ctx, g, h, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Isomorphic {
		t.Fatalf("relabeled grid not isomorphic: %s", res.Reason)
	}
	for _, e := range g.Edges() {
		if !h.HasEdge(res.Mapping[e.From], res.Mapping[e.To]) {
			t.Errorf("mapping sends edge %v to a non-edge", e)
		}
	}

	tests := []struct {
		name string
		a, b *graph.Adjacency
	}{
		{"order", must(t)(builder.Path(3)), must(t)(builder.Path(4))},
		{"edges", must(t)(builder.Cycle(4)), must(t)(builder.Path(4))},
		{"structure", must(t)(builder.Star(4)), must(t)(builder.Path(4))},
		{"direction", must(t)(builder.Path(3)), must(t)(builder.DirectedPath(3))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := r.Compare(ctx, tt.a, tt.b, Options{})
			if err != nil {
				t.Fatal(err)
			}
			if res.Isomorphic || res.Mapping != nil || res.Reason == "" {
				t.Errorf("Compare() = %+v, want non-isomorphic with a reason", res)
			}
		})
	}
}

func TestWeightedGraphs(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t, nil)

	plain := must(t)(builder.Cycle(4))
	weighted := graph.MustNew(4, false)
	for i := 0; i < 4; i++ {
		_ = weighted.AddWeightedEdge(i, (i+1)%4, 1+i%2)
	}

	a, err := r.Canonicalize(ctx, plain, Options{})
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Canonicalize(ctx, weighted, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if b.Stats.CacheHit {
		t.Error("weighted graph was served the unweighted cache entry")
	}
	if a.Hash == b.Hash || b.GroupSize != 4 {
		t.Errorf("weighted hash %s group %d, unweighted hash %s", b.Hash, b.GroupSize, a.Hash)
	}
	if w := b.CanonicalGraph(); !w.HasWeights() {
		t.Error("canonical graph lost its weights")
	}

	res, err := r.Compare(ctx, plain, weighted, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Isomorphic {
		t.Error("weights should break the isomorphism")
	}

	h, err := weighted.Relabel([]int{1, 2, 3, 0})
	if err != nil {
		t.Fatal(err)
	}
	res, err = r.Compare(ctx, weighted, h, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Isomorphic {
		t.Fatalf("relabeled weighted cycle not isomorphic: %s", res.Reason)
	}
	for _, e := range weighted.Edges() {
		if weighted.Weight(e.From, e.To) != h.Weight(res.Mapping[e.From], res.Mapping[e.To]) {
			t.Errorf("mapping changes the weight of %v", e)
		}
	}
}

type recordingHooks struct {
	observability.NoopSearchHooks
	started, completed int
}

func (h *recordingHooks) OnSearchStart(context.Context, int) { h.started++ }
func (h *recordingHooks) OnSearchComplete(context.Context, observability.SearchEvent) {
	h.completed++
}

func TestSearchHooks(t *testing.T) {
	defer observability.Reset()
	hooks := &recordingHooks{}
	observability.SetSearchHooks(hooks)

	r := newTestRunner(t, nil)
	g := must(t)(builder.Cycle(6))
	for range 2 {
		if _, err := r.Canonicalize(context.Background(), g, Options{}); err != nil {
			t.Fatal(err)
		}
	}
	if hooks.started != 1 || hooks.completed != 1 {
		t.Errorf("hooks: started=%d completed=%d, want one search", hooks.started, hooks.completed)
	}
}

func TestEncode(t *testing.T) {
	res := &CanonResult{Order: 3, GroupSize: 2, Stats: Stats{Duration: time.Second}}

	var buf bytes.Buffer
	if err := Encode(&buf, FormatJSON, res); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"group_size": 2`) {
		t.Errorf("JSON output missing group_size:\n%s", buf.String())
	}

	buf.Reset()
	if err := Encode(&buf, FormatYAML, res); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "group_size: 2") {
		t.Errorf("YAML output missing group_size:\n%s", buf.String())
	}

	if err := Encode(&buf, FormatText, res); err == nil {
		t.Error("Encode(text) should be rendered by the caller")
	}
}
