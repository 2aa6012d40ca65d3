package analysis

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// AnalyzerConfig tunes the per-segment fan-out.
type AnalyzerConfig struct {
	// CallTimeout bounds each individual classification call.
	CallTimeout time.Duration
	// RetryLimit is the number of retries per capability call on
	// transient errors. Validation-class errors are never retried.
	RetryLimit int
	// RetryBase is the first backoff interval.
	RetryBase time.Duration
}

// SegmentAnalyzer issues the three classification calls for one segment
// concurrently and joins all three before producing a result. A failed
// capability falls back to a default and marks the segment degraded; it
// never fails the segment.
type SegmentAnalyzer struct {
	reg Registry
	cfg AnalyzerConfig
	log *logrus.Entry
}

func NewSegmentAnalyzer(reg Registry, cfg AnalyzerConfig, log *logrus.Entry) *SegmentAnalyzer {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 10 * time.Second
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 100 * time.Millisecond
	}
	return &SegmentAnalyzer{reg: reg, cfg: cfg, log: log}
}

// Analyze runs the three-way fan-out for seg. Returned faults describe
// capability failures that were absorbed by fallbacks.
func (a *SegmentAnalyzer) Analyze(ctx context.Context, seg TranscriptSegment) (SegmentAnalysis, []SegmentFault) {
	out := SegmentAnalysis{
		Segment:        seg,
		SentimentScore: NeutralSentiment,
		EmotionLabel:   "neutral",
	}

	classifiers := a.reg.Classifiers()
	results := make([]ClassificationResult, len(classifiers))
	errs := make([]error, len(classifiers))

	g, gctx := errgroup.WithContext(ctx)
	for i, c := range classifiers {
		i, c := i, c
		g.Go(func() error {
			results[i], errs[i] = a.classify(gctx, c, seg.Text)
			// Capability failures are absorbed here so a sibling call
			// is never cancelled by the errgroup.
			return nil
		})
	}
	_ = g.Wait()

	var faults []SegmentFault
	for i, c := range classifiers {
		if errs[i] != nil {
			faults = append(faults, SegmentFault{
				SegmentID:  seg.ID,
				Capability: c.Kind(),
				Reason:     errs[i].Error(),
			})
			if c.Kind() == KindSentiment {
				out.Degraded = true
			}
			a.log.WithFields(logrus.Fields{
				"segment":    seg.ID,
				"capability": c.Kind(),
			}).WithError(errs[i]).Warn("classification fell back to default")
			continue
		}
		switch c.Kind() {
		case KindSentiment:
			out.SentimentScore = results[i].Score * 100
		case KindQuestion:
			out.IsQuestion = results[i].Label == LabelQuestion
		case KindEmotion:
			out.EmotionLabel = results[i].Label
		}
	}
	return out, faults
}

// classify performs one capability call with timeout and retry. Timeouts
// are treated like any other transient classification failure.
func (a *SegmentAnalyzer) classify(ctx context.Context, c Classifier, text string) (ClassificationResult, error) {
	var res ClassificationResult
	b := retry.NewFibonacci(a.cfg.RetryBase)
	err := retry.Do(ctx, retry.WithMaxRetries(uint64(a.cfg.RetryLimit), b), func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, a.cfg.CallTimeout)
		defer cancel()

		r, err := c.Classify(callCtx, text)
		if err == nil {
			res = r
			return nil
		}
		if isTransient(err) {
			return retry.RetryableError(err)
		}
		return err
	})
	return res, err
}

func isTransient(err error) bool {
	var ce *ClassificationError
	if errors.As(err, &ce) {
		return ce.Transient
	}
	// A timed-out call surfaces as DeadlineExceeded before the adapter
	// can wrap it.
	return errors.Is(err, context.DeadlineExceeded)
}
