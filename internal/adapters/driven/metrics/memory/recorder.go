// Package memory provides an in-memory metrics recorder.
package memory

import (
	"sync"
	"time"

	"github.com/custodia-labs/semgate/internal/core/domain"
	"github.com/custodia-labs/semgate/internal/core/ports/driven"
)

// Ensure Recorder implements the interface.
var _ driven.MetricsRecorder = (*Recorder)(nil)

// Snapshot is a point-in-time view of accumulated chat metrics.
type Snapshot struct {
	// Turns is the total number of recorded chat turns.
	Turns int

	// CacheHits counts turns served from the cache.
	CacheHits int

	// ShadowTurns counts turns evaluated in shadow mode.
	ShadowTurns int

	// ShadowCacheHits counts shadow turns where the cache would have
	// answered.
	ShadowCacheHits int

	// TokensUsed is the real token spend across all turns.
	TokensUsed int

	// TokensSaved is the estimated spend avoided by served cache hits.
	TokensSaved int

	// ShadowTokensSaved is the hypothetical spend shadow-mode hits
	// would have avoided. Never subtracted from TokensUsed.
	ShadowTokensSaved int

	// CacheLatencyTotal is the summed duration of cache lookups.
	CacheLatencyTotal time.Duration

	// GenerationLatencyTotal is the summed duration of generation calls.
	GenerationLatencyTotal time.Duration
}

// HitRate returns the fraction of turns served from cache.
func (s Snapshot) HitRate() float64 {
	if s.Turns == 0 {
		return 0
	}
	return float64(s.CacheHits) / float64(s.Turns)
}

// ShadowHitRate returns the fraction of shadow turns the cache would
// have answered.
func (s Snapshot) ShadowHitRate() float64 {
	if s.ShadowTurns == 0 {
		return 0
	}
	return float64(s.ShadowCacheHits) / float64(s.ShadowTurns)
}

// Recorder accumulates chat turn metrics in memory.
type Recorder struct {
	mu   sync.Mutex
	snap Snapshot
}

// NewRecorder creates a new in-memory metrics recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// RecordTurn folds one chat outcome into the running counters.
func (r *Recorder) RecordTurn(outcome domain.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.snap.Turns++

	switch o := outcome.(type) {
	case domain.CacheHitOutcome:
		r.snap.CacheHits++
		r.snap.TokensSaved += o.TokensSaved
		r.snap.CacheLatencyTotal += o.CacheLatency
	case domain.FreshGenerationOutcome:
		r.snap.TokensUsed += o.TokensUsed
		r.snap.CacheLatencyTotal += o.CacheLatency
		r.snap.GenerationLatencyTotal += o.GenerationLatency
	case domain.ShadowOutcome:
		r.snap.ShadowTurns++
		r.snap.TokensUsed += o.TokensUsed
		if o.CacheHit {
			r.snap.ShadowCacheHits++
		}
		r.snap.ShadowTokensSaved += o.TokensSaved
		r.snap.CacheLatencyTotal += o.CacheLatency
		r.snap.GenerationLatencyTotal += o.GenerationLatency
	}
}

// Snapshot returns a copy of the current counters.
func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snap
}
