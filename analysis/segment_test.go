package analysis

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClassifier struct {
	kind  Kind
	res   ClassificationResult
	err   error
	// failures is the number of initial calls that return err before
	// res succeeds. Negative means always fail.
	failures int32
	calls    atomic.Int32
}

func (f *fakeClassifier) Kind() Kind { return f.kind }

func (f *fakeClassifier) Classify(_ context.Context, _ string) (ClassificationResult, error) {
	n := f.calls.Add(1)
	if f.err != nil && (f.failures < 0 || n <= f.failures) {
		return ClassificationResult{}, f.err
	}
	return f.res, nil
}

func testRegistry(sent, quest, emo *fakeClassifier) Registry {
	return Registry{Sentiment: sent, Question: quest, Emotion: emo}
}

func quietLog() *logrus.Entry {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return logrus.NewEntry(log)
}

func testAnalyzer(reg Registry, retries int) *SegmentAnalyzer {
	return NewSegmentAnalyzer(reg, AnalyzerConfig{
		CallTimeout: time.Second,
		RetryLimit:  retries,
		RetryBase:   time.Millisecond,
	}, quietLog())
}

func TestAnalyzeMergesAllCapabilities(t *testing.T) {
	reg := testRegistry(
		&fakeClassifier{kind: KindSentiment, res: ClassificationResult{Kind: KindSentiment, Label: "positive", Score: 0.9}},
		&fakeClassifier{kind: KindQuestion, res: ClassificationResult{Kind: KindQuestion, Label: LabelQuestion, Score: 0.95}},
		&fakeClassifier{kind: KindEmotion, res: ClassificationResult{Kind: KindEmotion, Label: "joy", Score: 0.8}},
	)
	a := testAnalyzer(reg, 0)

	res, faults := a.Analyze(context.Background(), TranscriptSegment{ID: "s0", Speaker: "A", Text: "great!", Start: 0, End: 2})
	require.Empty(t, faults)
	assert.InDelta(t, 90.0, res.SentimentScore, 1e-9)
	assert.True(t, res.IsQuestion)
	assert.Equal(t, "joy", res.EmotionLabel)
	assert.False(t, res.Degraded)
	assert.True(t, res.IsPositive())
}

func TestAnalyzeSentimentFailureFallsBackToNeutral(t *testing.T) {
	reg := testRegistry(
		&fakeClassifier{kind: KindSentiment, failures: -1, err: &ClassificationError{Capability: KindSentiment, Err: errors.New("boom")}},
		&fakeClassifier{kind: KindQuestion, res: ClassificationResult{Kind: KindQuestion, Label: LabelStatement, Score: 0.7}},
		&fakeClassifier{kind: KindEmotion, res: ClassificationResult{Kind: KindEmotion, Label: "anger", Score: 0.6}},
	)
	a := testAnalyzer(reg, 1)

	res, faults := a.Analyze(context.Background(), TranscriptSegment{ID: "s0", Speaker: "A", Text: "hm"})
	require.Len(t, faults, 1)
	assert.Equal(t, KindSentiment, faults[0].Capability)
	assert.Equal(t, "s0", faults[0].SegmentID)

	// The other capabilities are unaffected.
	assert.InDelta(t, NeutralSentiment, res.SentimentScore, 1e-9)
	assert.True(t, res.Degraded)
	assert.False(t, res.IsQuestion)
	assert.Equal(t, "anger", res.EmotionLabel)
	assert.False(t, res.IsPositive())
}

func TestAnalyzeNonSentimentFailureDoesNotDegrade(t *testing.T) {
	reg := testRegistry(
		&fakeClassifier{kind: KindSentiment, res: ClassificationResult{Kind: KindSentiment, Score: 0.4}},
		&fakeClassifier{kind: KindQuestion, failures: -1, err: &ClassificationError{Capability: KindQuestion, Err: errors.New("down")}},
		&fakeClassifier{kind: KindEmotion, res: ClassificationResult{Kind: KindEmotion, Label: "calm", Score: 0.6}},
	)
	a := testAnalyzer(reg, 0)

	res, faults := a.Analyze(context.Background(), TranscriptSegment{ID: "s1"})
	require.Len(t, faults, 1)
	assert.Equal(t, KindQuestion, faults[0].Capability)
	assert.False(t, res.Degraded)
	assert.False(t, res.IsQuestion)
	assert.InDelta(t, 40.0, res.SentimentScore, 1e-9)
}

func TestAnalyzeRetriesTransientErrors(t *testing.T) {
	sent := &fakeClassifier{
		kind:     KindSentiment,
		failures: 2,
		err:      &ClassificationError{Capability: KindSentiment, Transient: true, Err: errors.New("http 503")},
		res:      ClassificationResult{Kind: KindSentiment, Score: 0.8},
	}
	reg := testRegistry(
		sent,
		&fakeClassifier{kind: KindQuestion, res: ClassificationResult{Kind: KindQuestion, Label: LabelStatement}},
		&fakeClassifier{kind: KindEmotion, res: ClassificationResult{Kind: KindEmotion, Label: "neutral"}},
	)
	a := testAnalyzer(reg, 2)

	res, faults := a.Analyze(context.Background(), TranscriptSegment{ID: "s0"})
	assert.Empty(t, faults)
	assert.InDelta(t, 80.0, res.SentimentScore, 1e-9)
	assert.Equal(t, int32(3), sent.calls.Load())
}

func TestAnalyzeDoesNotRetryValidationErrors(t *testing.T) {
	quest := &fakeClassifier{
		kind:     KindQuestion,
		failures: -1,
		err:      &ClassificationError{Capability: KindQuestion, Transient: false, Err: errors.New("http 400")},
	}
	reg := testRegistry(
		&fakeClassifier{kind: KindSentiment, res: ClassificationResult{Kind: KindSentiment, Score: 0.6}},
		quest,
		&fakeClassifier{kind: KindEmotion, res: ClassificationResult{Kind: KindEmotion, Label: "neutral"}},
	)
	a := testAnalyzer(reg, 3)

	_, faults := a.Analyze(context.Background(), TranscriptSegment{ID: "s0"})
	require.Len(t, faults, 1)
	assert.Equal(t, int32(1), quest.calls.Load())
}
