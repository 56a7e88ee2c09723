package driven

import "github.com/custodia-labs/semgate/internal/core/domain"

// MetricsRecorder observes the outcome of each chat turn. Recording is
// explicit and injected; the core holds no ambient metrics state.
// This is an optional collaborator: a nil recorder disables recording.
type MetricsRecorder interface {
	// RecordTurn records one completed chat turn.
	RecordTurn(outcome domain.Outcome)
}
