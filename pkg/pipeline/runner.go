package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/canonic/pkg/cache"
	"github.com/matzehuels/canonic/pkg/catalog"
	"github.com/matzehuels/canonic/pkg/cert"
	errs "github.com/matzehuels/canonic/pkg/errors"
	"github.com/matzehuels/canonic/pkg/graph"
	cio "github.com/matzehuels/canonic/pkg/io"
	"github.com/matzehuels/canonic/pkg/observability"
	"github.com/matzehuels/canonic/pkg/partition"
	"github.com/matzehuels/canonic/pkg/perm"
	"github.com/matzehuels/canonic/pkg/search"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner holds no per-run state. Multiple goroutines can use the same
// Runner with different options.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	Catalog catalog.Catalog // nil disables recording
	Logger  *log.Logger
}

// NewRunner creates a runner. A nil keyer uses the DefaultKeyer and a nil
// cache disables caching.
func NewRunner(c cache.Cache, keyer cache.Keyer, cat catalog.Catalog, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:   c,
		Keyer:   keyer,
		Catalog: cat,
		Logger:  logger,
	}
}

// Canonicalize computes the canonical form and automorphism group of g.
// With opts.Record the class is added to the catalog, also when the result
// comes from the cache.
func (r *Runner) Canonicalize(ctx context.Context, g *graph.Adjacency, opts Options) (*CanonResult, error) {
	if err := r.prepare(&opts, g, opts.Partition); err != nil {
		return nil, err
	}
	start := time.Now()
	key := r.Keyer.CanonKey(graphHash(g), opts.CanonKeyOpts())

	res, hit := r.cachedCanon(ctx, g, key, opts)
	if !hit {
		var err error
		if res, err = r.search(ctx, g, opts); err != nil {
			return nil, err
		}
		r.store(ctx, "canon", key, res, cache.TTLCanon)
	}
	res.Stats = Stats{RunID: uuid.NewString(), CacheHit: hit, Duration: time.Since(start)}

	if opts.Record && r.Catalog != nil {
		entry, created, err := r.Catalog.Add(ctx, res.Entry())
		if err != nil {
			return nil, fmt.Errorf("record class: %w", err)
		}
		observability.Catalog().OnCatalogAdd(ctx, created)
		res.Class = &entry
	}

	opts.Logger.Info("canonical form",
		"order", res.Order,
		"group_size", res.GroupSize,
		"nodes", res.Search.Nodes,
		"cached", hit,
		"duration", res.Stats.Duration)
	return res, nil
}

func (r *Runner) cachedCanon(ctx context.Context, g *graph.Adjacency, key string, opts Options) (*CanonResult, bool) {
	if opts.Refresh {
		return nil, false
	}
	var res CanonResult
	if err := cache.GetJSON(ctx, r.Cache, key, &res); err != nil {
		observability.Cache().OnCacheMiss(ctx, "canon")
		if !errors.Is(err, cache.ErrCacheMiss) {
			opts.Logger.Debug("cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	c, err := cert.FromOrdering(g, res.CanonicalOrdering)
	if err != nil || c.Hash() != res.Hash {
		opts.Logger.Warn("discarding stale cache entry", "key", key)
		observability.Cache().OnCacheMiss(ctx, "canon")
		return nil, false
	}
	res.Certificate = c
	res.Class = nil
	observability.Cache().OnCacheHit(ctx, "canon")
	return &res, true
}

func (r *Runner) search(ctx context.Context, g *graph.Adjacency, opts Options) (*CanonResult, error) {
	hooks := observability.Search()
	hooks.OnSearchStart(ctx, g.Order())
	start := time.Now()

	res, err := opts.Controller().Run(ctx, g, opts.Partition)

	ev := observability.SearchEvent{Order: g.Order(), Duration: time.Since(start), Err: err}
	if res != nil {
		ev.Nodes = res.Stats.Nodes
		ev.Leaves = res.Stats.Leaves
		ev.Pruned = res.Stats.Pruned
		ev.GroupSize = res.GroupSize
	}
	hooks.OnSearchComplete(ctx, ev)
	if err != nil {
		return nil, searchError(err)
	}
	return newCanonResult(g, g.EdgeCount(), res), nil
}

// Refine computes the coarsest equitable partition finer than opts.Partition.
func (r *Runner) Refine(ctx context.Context, g *graph.Adjacency, opts Options) (*RefineResult, error) {
	if err := r.prepare(&opts, g, opts.Partition); err != nil {
		return nil, err
	}
	start := time.Now()
	key := r.Keyer.RefineKey(graphHash(g), opts.RefineKeyOpts())

	var res RefineResult
	hit := false
	if !opts.Refresh {
		if err := cache.GetJSON(ctx, r.Cache, key, &res); err == nil {
			hit = true
			observability.Cache().OnCacheHit(ctx, "refine")
		} else {
			observability.Cache().OnCacheMiss(ctx, "refine")
		}
	}

	if !hit {
		p := partition.Initial(g.Order())
		if opts.Partition != nil {
			p = opts.Partition.Clone()
		}
		refineStart := time.Now()
		trace, err := opts.Refiner().Refine(g, p, nil)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidPartition, err, "refine")
		}
		observability.Search().OnRefineComplete(ctx, g.Order(), p.NumCells(), time.Since(refineStart))
		res = RefineResult{
			Order:     g.Order(),
			Partition: p.String(),
			Cells:     p.CellSets(),
			NumCells:  p.NumCells(),
			Discrete:  p.IsDiscrete(),
			Trace:     trace,
		}
		r.store(ctx, "refine", key, &res, cache.TTLRefine)
	}
	res.Stats = Stats{RunID: uuid.NewString(), CacheHit: hit, Duration: time.Since(start)}

	opts.Logger.Info("equitable partition",
		"order", res.Order,
		"cells", res.NumCells,
		"cached", hit,
		"duration", res.Stats.Duration)
	return &res, nil
}

// Compare decides whether g and h are isomorphic. Graphs of different order,
// directedness or edge count are rejected without a search.
func (r *Runner) Compare(ctx context.Context, g, h *graph.Adjacency, opts Options) (*CompareResult, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	start := time.Now()
	out := &CompareResult{}
	finish := func(hit bool) (*CompareResult, error) {
		out.Stats = Stats{RunID: uuid.NewString(), CacheHit: hit, Duration: time.Since(start)}
		opts.Logger.Info("isomorphism test", "isomorphic", out.Isomorphic, "duration", out.Stats.Duration)
		return out, nil
	}

	switch {
	case g.Order() != h.Order():
		out.Reason = fmt.Sprintf("order %d vs %d", g.Order(), h.Order())
		return finish(false)
	case g.Directed() != h.Directed():
		out.Reason = "directedness differs"
		return finish(false)
	case g.EdgeCount() != h.EdgeCount():
		out.Reason = fmt.Sprintf("%d edges vs %d", g.EdgeCount(), h.EdgeCount())
		return finish(false)
	}

	single := opts
	single.Partition = nil
	single.Record = false
	rg, err := r.Canonicalize(ctx, g, single)
	if err != nil {
		return nil, fmt.Errorf("canonicalize first graph: %w", err)
	}
	rh, err := r.Canonicalize(ctx, h, single)
	if err != nil {
		return nil, fmt.Errorf("canonicalize second graph: %w", err)
	}
	out.HashG, out.HashH = rg.Hash, rh.Hash
	if rg.Certificate.Equal(rh.Certificate) {
		out.Isomorphic = true
		out.Mapping = perm.FromOrderings(rg.CanonicalOrdering, rh.CanonicalOrdering)
	} else {
		out.Reason = "canonical forms differ"
	}
	return finish(rg.Stats.CacheHit && rh.Stats.CacheHit)
}

// Lookup returns the catalog entry for a certificate hash.
func (r *Runner) Lookup(ctx context.Context, hash string) (catalog.Entry, error) {
	if r.Catalog == nil {
		return catalog.Entry{}, errs.New(errs.ErrCodeUnsupported, "no catalog configured")
	}
	if err := errs.ValidateHash(hash); err != nil {
		return catalog.Entry{}, err
	}
	e, err := r.Catalog.Get(ctx, hash)
	observability.Catalog().OnCatalogLookup(ctx, err == nil)
	if errors.Is(err, catalog.ErrNotFound) {
		return catalog.Entry{}, errs.Wrap(errs.ErrCodeNotFound, err, "class %s", hash)
	}
	return e, err
}

// Classes lists catalog entries, most frequently seen first.
func (r *Runner) Classes(ctx context.Context, limit int) ([]catalog.Entry, error) {
	if r.Catalog == nil {
		return nil, errs.New(errs.ErrCodeUnsupported, "no catalog configured")
	}
	return r.Catalog.List(ctx, limit)
}

// Close releases the cache and the catalog.
func (r *Runner) Close() error {
	var errList []error
	if r.Cache != nil {
		errList = append(errList, r.Cache.Close())
	}
	if r.Catalog != nil {
		errList = append(errList, r.Catalog.Close())
	}
	return errors.Join(errList...)
}

// prepare validates opts, applies the runner's logger and checks that the
// initial partition covers g.
func (r *Runner) prepare(opts *Options, g graph.Graph, p *partition.Partition) error {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if err := errs.ValidateOrder(g.Order()); err != nil {
		return err
	}
	if p != nil && p.Len() != g.Order() {
		return errs.New(errs.ErrCodeInvalidPartition, "partition covers %d vertices, graph has %d", p.Len(), g.Order())
	}
	return nil
}

// store writes v to the cache. Failures are logged and otherwise ignored.
func (r *Runner) store(ctx context.Context, keyType, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		r.Logger.Debug("encode cache entry", "key", key, "error", err)
		return
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Debug("cache write failed", "key", key, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// graphHash hashes the JSON document of g. Equal graphs hash equally
// because edges are listed in a fixed order.
func graphHash(g *graph.Adjacency) string {
	data, _ := json.Marshal(cio.NewDocument(cio.Instance{Graph: g}))
	return cache.Hash(data)
}

// searchError attaches error codes to search failures.
func searchError(err error) error {
	switch {
	case errors.Is(err, search.ErrBudgetExceeded):
		return errs.Wrap(errs.ErrCodeBudgetExceeded, err, "canonical search")
	case errors.Is(err, search.ErrOrderMismatch):
		return errs.Wrap(errs.ErrCodeInvalidPartition, err, "canonical search")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return errs.Wrap(errs.ErrCodeCanceled, err, "canonical search")
	default:
		return err
	}
}
