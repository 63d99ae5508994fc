package cli

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/canonic/pkg/pipeline"
	"github.com/matzehuels/canonic/pkg/search"
)

// progressInterval is the minimum time between "Searching..." log lines.
const progressInterval = 10 * time.Second

// searchProgress turns search callbacks into log lines. Long searches log a
// status line every progressInterval; with --verbose the per-level summary
// of a finished search is logged at debug level.
type searchProgress struct {
	logger   *log.Logger
	interval time.Duration

	mu   sync.Mutex
	last time.Time
}

func newSearchProgress(l *log.Logger) *searchProgress {
	return &searchProgress{logger: l, interval: progressInterval, last: time.Now()}
}

// attach installs the callbacks on opts.
func (p *searchProgress) attach(opts *pipeline.Options) {
	opts.Progress = p.onProgress
	opts.Debug = p.onDebug
}

func (p *searchProgress) onProgress(s search.Stats) {
	p.mu.Lock()
	if time.Since(p.last) < p.interval {
		p.mu.Unlock()
		return
	}
	p.last = time.Now()
	p.mu.Unlock()

	p.logger.Info("Searching...",
		"nodes", s.Nodes,
		"leaves", s.Leaves,
		"automorphisms", s.Automorphisms,
		"depth", s.MaxDepth)
}

func (p *searchProgress) onDebug(info search.DebugInfo) {
	if p.logger.GetLevel() > log.DebugLevel {
		return
	}
	p.logger.Debug("search finished",
		"nodes", info.Stats.Nodes,
		"pruned", info.Stats.Pruned,
		"duration", info.Duration.Round(time.Millisecond))
	for _, lv := range info.Levels {
		p.logger.Debug("level", "depth", lv.Depth, "visits", lv.Visits, "target", lv.TargetSize)
	}
}
