package analysis

import "fmt"

// InputValidationError rejects a run before any work begins.
type InputValidationError struct {
	Field  string
	Reason string
}

func (e *InputValidationError) Error() string {
	return fmt.Sprintf("invalid input %s: %s", e.Field, e.Reason)
}

// TranscriptionError is fatal for the whole meeting: without segment
// boundaries no partial transcript is salvageable.
type TranscriptionError struct {
	Source string
	Err    error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcription of %s failed: %v", e.Source, e.Err)
}

func (e *TranscriptionError) Unwrap() error { return e.Err }

// ClassificationError is a per-call, non-fatal failure of one capability.
// Transient failures (network class, 5xx, timeouts) may be retried;
// validation-class failures are not.
type ClassificationError struct {
	Capability Kind
	Transient  bool
	Err        error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("%s classification failed: %v", e.Capability, e.Err)
}

func (e *ClassificationError) Unwrap() error { return e.Err }

// AggregationError signals structurally invalid input to the aggregator,
// such as a negative segment duration. Upstream invariants should make
// this unreachable.
type AggregationError struct {
	SegmentID string
	Reason    string
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("aggregation failed on segment %s: %s", e.SegmentID, e.Reason)
}

// StreamError wraps a fatal error delivered as the terminal event of a
// streaming session.
type StreamError struct {
	MeetingID string
	Err       error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("stream for meeting %s failed: %v", e.MeetingID, e.Err)
}

func (e *StreamError) Unwrap() error { return e.Err }
