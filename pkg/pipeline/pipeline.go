// Package pipeline runs canonic's operations with caching, cataloguing and
// observability.
//
// The CLI and the HTTP server both go through a [Runner], so a canonical
// form computed by one is served from the cache to the other and every run
// reports to the same hooks.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, catalog, logger)
//	res, err := runner.Canonicalize(ctx, g, pipeline.Options{Record: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Hash, res.GroupSize)
//
// Individual operations:
//
//	// Equitable refinement only
//	ref, err := runner.Refine(ctx, g, opts)
//
//	// Isomorphism test between two graphs
//	cmp, err := runner.Compare(ctx, g, h, opts)
package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/canonic/pkg/cache"
	errs "github.com/matzehuels/canonic/pkg/errors"
	"github.com/matzehuels/canonic/pkg/partition"
	"github.com/matzehuels/canonic/pkg/refine"
	"github.com/matzehuels/canonic/pkg/search"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultMaxNodes leaves the search unbounded.
	DefaultMaxNodes = 0

	// DefaultFormat is the output format for results.
	DefaultFormat = FormatText
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Formats lists the supported output formats.
var Formats = []string{FormatText, FormatJSON, FormatYAML}

// =============================================================================
// Options - Run Configuration
// =============================================================================

// Options configures one pipeline operation.
type Options struct {
	// Partition is the initial colouring. Nil starts from the unit partition.
	Partition *partition.Partition `json:"-"`

	Descending bool          `json:"descending,omitempty"`
	NoPrune    bool          `json:"no_prune,omitempty"`
	MaxNodes   int           `json:"max_nodes,omitempty"`
	Timeout    time.Duration `json:"timeout,omitempty"`
	Format     string        `json:"format,omitempty"`

	// Refresh recomputes and overwrites cached results.
	Refresh bool `json:"refresh,omitempty"`
	// Record adds the canonical form to the runner's catalog.
	Record bool `json:"record,omitempty"`

	// Runtime options (not serialized)
	Logger   *log.Logger            `json:"-"`
	Progress func(search.Stats)     `json:"-"`
	Debug    func(search.DebugInfo) `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateFormat checks that format names a supported output format.
func ValidateFormat(format string) error {
	return errs.ValidateFormat(format, Formats...)
}

// ValidateAndSetDefaults checks option ranges and applies defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.MaxNodes < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "max nodes cannot be negative: %d", o.MaxNodes)
	}
	if o.Timeout < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "timeout cannot be negative: %s", o.Timeout)
	}
	if o.Format == "" {
		o.Format = DefaultFormat
	}
	if err := ValidateFormat(o.Format); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Refiner returns the refinement strategy the options select.
func (o *Options) Refiner() refine.Equitable {
	return refine.Equitable{Descending: o.Descending}
}

// Controller returns a search controller for the options.
func (o *Options) Controller() *search.Controller {
	return &search.Controller{
		Refiner:        o.Refiner(),
		DisablePruning: o.NoPrune,
		MaxNodes:       o.MaxNodes,
		Timeout:        o.Timeout,
		Progress:       o.Progress,
		Debug:          o.Debug,
	}
}

// CanonKeyOpts returns cache key options for a canonical form.
func (o *Options) CanonKeyOpts() cache.CanonKeyOpts {
	return cache.CanonKeyOpts{
		Partition:  o.partitionKey(),
		Descending: o.Descending,
		NoPrune:    o.NoPrune,
	}
}

// RefineKeyOpts returns cache key options for a refinement.
func (o *Options) RefineKeyOpts() cache.RefineKeyOpts {
	return cache.RefineKeyOpts{
		Partition:  o.partitionKey(),
		Descending: o.Descending,
	}
}

func (o *Options) partitionKey() string {
	if o.Partition == nil {
		return ""
	}
	return o.Partition.String()
}

// =============================================================================
// Encoding
// =============================================================================

// Encode writes v as JSON or YAML. Text output is rendered by the caller.
func Encode(w io.Writer, format string, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("encode: unsupported format %q", format)
	}
}
