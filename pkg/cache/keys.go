package cache

// CanonKeyOpts are the search options that change a canonical result.
type CanonKeyOpts struct {
	Partition  string `json:"partition,omitempty"` // initial partition in printer form
	Descending bool   `json:"descending,omitempty"`
	NoPrune    bool   `json:"no_prune,omitempty"`
}

// RefineKeyOpts are the options that change a refinement result.
type RefineKeyOpts struct {
	Partition  string `json:"partition,omitempty"`
	Descending bool   `json:"descending,omitempty"`
}

// Keyer derives cache keys from a graph hash and options.
type Keyer interface {
	CanonKey(graphHash string, opts CanonKeyOpts) string
	RefineKey(graphHash string, opts RefineKeyOpts) string
}

// DefaultKeyer generates keys of the form "kind:sha256(graphHash, opts)".
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// CanonKey generates the key for a canonical labeling. Pruning does not
// change the result, but NoPrune is kept in the key so benchmark runs are not
// served from a pruned entry.
func (DefaultKeyer) CanonKey(graphHash string, opts CanonKeyOpts) string {
	return hashKey("canon", graphHash, opts)
}

// RefineKey generates the key for an equitable refinement.
func (DefaultKeyer) RefineKey(graphHash string, opts RefineKeyOpts) string {
	return hashKey("refine", graphHash, opts)
}
