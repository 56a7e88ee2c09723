package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/semgate/internal/core/domain"
)

func TestRecordTurn_CacheHit(t *testing.T) {
	recorder := NewRecorder()

	recorder.RecordTurn(domain.CacheHitOutcome{
		Content:      "answer",
		TokensSaved:  42,
		CacheLatency: 10 * time.Millisecond,
	})

	snap := recorder.Snapshot()
	assert.Equal(t, 1, snap.Turns)
	assert.Equal(t, 1, snap.CacheHits)
	assert.Equal(t, 42, snap.TokensSaved)
	assert.Equal(t, 0, snap.TokensUsed)
	assert.Equal(t, 10*time.Millisecond, snap.CacheLatencyTotal)
}

func TestRecordTurn_FreshGeneration(t *testing.T) {
	recorder := NewRecorder()

	recorder.RecordTurn(domain.FreshGenerationOutcome{
		Content:           "answer",
		TokensUsed:        120,
		CacheLatency:      5 * time.Millisecond,
		GenerationLatency: 800 * time.Millisecond,
	})

	snap := recorder.Snapshot()
	assert.Equal(t, 1, snap.Turns)
	assert.Equal(t, 0, snap.CacheHits)
	assert.Equal(t, 120, snap.TokensUsed)
	assert.Equal(t, 800*time.Millisecond, snap.GenerationLatencyTotal)
}

func TestRecordTurn_ShadowHitKeepsRealSpend(t *testing.T) {
	recorder := NewRecorder()

	recorder.RecordTurn(domain.ShadowOutcome{
		Content:     "answer",
		TokensUsed:  200,
		CacheHit:    true,
		TokensSaved: 200,
	})

	snap := recorder.Snapshot()
	assert.Equal(t, 1, snap.ShadowTurns)
	assert.Equal(t, 1, snap.ShadowCacheHits)
	// shadow savings are hypothetical: real spend is still counted in full
	assert.Equal(t, 200, snap.TokensUsed)
	assert.Equal(t, 200, snap.ShadowTokensSaved)
	assert.Equal(t, 0, snap.TokensSaved)
	assert.Equal(t, 0, snap.CacheHits)
}

func TestHitRate(t *testing.T) {
	recorder := NewRecorder()

	assert.Equal(t, 0.0, recorder.Snapshot().HitRate())

	recorder.RecordTurn(domain.CacheHitOutcome{TokensSaved: 10})
	recorder.RecordTurn(domain.FreshGenerationOutcome{TokensUsed: 50})
	recorder.RecordTurn(domain.FreshGenerationOutcome{TokensUsed: 50})
	recorder.RecordTurn(domain.CacheHitOutcome{TokensSaved: 10})

	snap := recorder.Snapshot()
	assert.InDelta(t, 0.5, snap.HitRate(), 0.001)
	assert.Equal(t, 4, snap.Turns)
	assert.Equal(t, 20, snap.TokensSaved)
	assert.Equal(t, 100, snap.TokensUsed)
}

func TestShadowHitRate(t *testing.T) {
	recorder := NewRecorder()

	recorder.RecordTurn(domain.ShadowOutcome{TokensUsed: 10, CacheHit: true, TokensSaved: 10})
	recorder.RecordTurn(domain.ShadowOutcome{TokensUsed: 10})
	recorder.RecordTurn(domain.ShadowOutcome{TokensUsed: 10})

	snap := recorder.Snapshot()
	assert.InDelta(t, 1.0/3.0, snap.ShadowHitRate(), 0.001)
}
