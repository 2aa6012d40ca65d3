package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulseroom/meeting-pipeline/analysis"
)

func streamRegistry(segs []analysis.TranscriptSegment, sentiment *funcClassifier) analysis.Registry {
	return analysis.Registry{
		Transcriber: &stubTranscriber{segs: segs},
		Sentiment:   sentiment,
		Question:    constClassifier(analysis.KindQuestion, analysis.LabelStatement, 0.9),
		Emotion:     constClassifier(analysis.KindEmotion, "neutral", 0.7),
	}
}

func collectEvents(t *testing.T, s *Session, timeout time.Duration) []Event {
	t.Helper()
	var events []Event
	deadline := time.After(timeout)
	for {
		select {
		case ev, ok := <-s.Events():
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-deadline:
			t.Fatalf("timed out after %d event(s)", len(events))
		}
	}
}

func TestRunStreamDeliversInOrder(t *testing.T) {
	segs := testSegments(4)

	// Earlier segments take longer, so completion order is reversed.
	sentiment := &funcClassifier{kind: analysis.KindSentiment, fn: func(_ context.Context, text string) (analysis.ClassificationResult, error) {
		var i int
		fmt.Sscanf(text, "segment %d", &i)
		time.Sleep(time.Duration(len(segs)-i) * 10 * time.Millisecond)
		return analysis.ClassificationResult{Kind: analysis.KindSentiment, Score: 0.6}, nil
	}}
	p := NewPipeline(streamRegistry(segs, sentiment), testPipelineConfig(), testLog())

	s := p.RunStream(context.Background(), "meeting.vtt", "m1")
	events := collectEvents(t, s, 5*time.Second)

	require.Len(t, events, 5)
	for i := 0; i < 4; i++ {
		require.Equal(t, EventSegment, events[i].Type)
		assert.Equal(t, fmt.Sprintf("seg-%04d", i), events[i].Segment.Segment.ID)
	}
	require.Equal(t, EventComplete, events[4].Type)
	require.NotNil(t, events[4].Analysis)
	assert.Len(t, events[4].Analysis.Segments, 4)
	assert.Equal(t, StateCompleted, s.State())
}

func TestRunStreamCancellation(t *testing.T) {
	segs := testSegments(4)
	release := make(chan struct{})

	// The first two segments classify instantly; later ones block until
	// released or cancelled.
	sentiment := &funcClassifier{kind: analysis.KindSentiment, fn: func(ctx context.Context, text string) (analysis.ClassificationResult, error) {
		var i int
		fmt.Sscanf(text, "segment %d", &i)
		if i >= 2 {
			select {
			case <-release:
			case <-ctx.Done():
				return analysis.ClassificationResult{}, ctx.Err()
			}
		}
		return analysis.ClassificationResult{Kind: analysis.KindSentiment, Score: 0.6}, nil
	}}
	cfg := testPipelineConfig()
	cfg.MaxConcurrentSegments = 1
	p := NewPipeline(streamRegistry(segs, sentiment), cfg, testLog())

	s := p.RunStream(context.Background(), "meeting.vtt", "m1")

	var delivered []Event
	for len(delivered) < 2 {
		select {
		case ev := <-s.Events():
			delivered = append(delivered, ev)
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for first two segment events")
		}
	}
	s.Cancel()

	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("session did not terminate after cancel")
	}
	close(release)

	// Drain whatever was buffered before cancellation was observed; no
	// terminal event is emitted and no segment beyond the next dispatched
	// one can appear.
	for ev := range s.Events() {
		require.Equal(t, EventSegment, ev.Type)
		delivered = append(delivered, ev)
	}
	assert.LessOrEqual(t, len(delivered), 3)
	assert.Equal(t, StateCancelled, s.State())
}

func TestRunStreamZeroSegments(t *testing.T) {
	p := NewPipeline(streamRegistry(nil, constClassifier(analysis.KindSentiment, "", 0.5)), testPipelineConfig(), testLog())

	s := p.RunStream(context.Background(), "empty.vtt", "m1")
	events := collectEvents(t, s, 5*time.Second)

	require.Len(t, events, 1)
	require.Equal(t, EventComplete, events[0].Type)
	assert.Nil(t, events[0].Analysis.OverallSentiment)
	assert.Equal(t, StateCompleted, s.State())
}

func TestRunStreamTranscriptionFailure(t *testing.T) {
	reg := analysis.Registry{
		Transcriber: &stubTranscriber{err: errors.New("asr unreachable")},
		Sentiment:   constClassifier(analysis.KindSentiment, "", 0.5),
		Question:    constClassifier(analysis.KindQuestion, analysis.LabelStatement, 0.9),
		Emotion:     constClassifier(analysis.KindEmotion, "neutral", 0.7),
	}
	p := NewPipeline(reg, testPipelineConfig(), testLog())

	s := p.RunStream(context.Background(), "meeting.wav", "m1")
	events := collectEvents(t, s, 5*time.Second)

	require.Len(t, events, 1)
	require.Equal(t, EventError, events[0].Type)
	var se *analysis.StreamError
	require.ErrorAs(t, events[0].Err, &se)
	var te *analysis.TranscriptionError
	assert.ErrorAs(t, events[0].Err, &te)
	assert.Equal(t, StateFailed, s.State())
}

func TestRunStreamValidatesInput(t *testing.T) {
	p := NewPipeline(streamRegistry(nil, constClassifier(analysis.KindSentiment, "", 0.5)), testPipelineConfig(), testLog())

	s := p.RunStream(context.Background(), "meeting.vtt", "")
	events := collectEvents(t, s, 5*time.Second)

	require.Len(t, events, 1)
	require.Equal(t, EventError, events[0].Type)
	var ve *analysis.InputValidationError
	assert.ErrorAs(t, events[0].Err, &ve)
	assert.Equal(t, StateFailed, s.State())
}
