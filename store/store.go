// Package store persists completed meeting analyses. The contract is a
// pure key-value store keyed by meeting ID with last-write-wins
// semantics; no transactional guarantees are offered or needed.
package store

import (
	"context"
	"errors"

	"github.com/pulseroom/meeting-pipeline/analysis"
)

// ErrNotFound is returned when no analysis exists for a meeting ID.
var ErrNotFound = errors.New("meeting analysis not found")

// Store saves and retrieves MeetingAnalysis artifacts.
type Store interface {
	Save(ctx context.Context, ma *analysis.MeetingAnalysis) error
	Get(ctx context.Context, meetingID string) (*analysis.MeetingAnalysis, error)
}
