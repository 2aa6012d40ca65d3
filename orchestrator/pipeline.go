package orchestrator

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/pulseroom/meeting-pipeline/analysis"
	"github.com/pulseroom/meeting-pipeline/config"
	"github.com/pulseroom/meeting-pipeline/metrics"
	"github.com/pulseroom/meeting-pipeline/store"
)

// Pipeline drives transcription, bounded per-segment classification
// fan-out, and whole-meeting aggregation. It is stateless per invocation;
// all run state lives on the stack of RunFull or inside a Session.
type Pipeline struct {
	reg        analysis.Registry
	analyzer   *analysis.SegmentAnalyzer
	aggregator *analysis.Aggregator
	cfg        config.PipelineConfig
	store      store.Store
	met        *metrics.Metrics
	log        *logrus.Entry
}

// Option configures optional pipeline collaborators.
type Option func(*Pipeline)

// WithStore persists each completed MeetingAnalysis. Store failures are
// logged, never fatal.
func WithStore(st store.Store) Option {
	return func(p *Pipeline) { p.store = st }
}

// WithMetrics records pipeline metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.met = m }
}

func NewPipeline(reg analysis.Registry, cfg config.PipelineConfig, log *logrus.Entry, opts ...Option) *Pipeline {
	if cfg.MaxConcurrentSegments < 1 {
		cfg.MaxConcurrentSegments = 4
	}
	if cfg.StreamBuffer < 1 {
		cfg.StreamBuffer = 16
	}
	p := &Pipeline{
		reg: reg,
		analyzer: analysis.NewSegmentAnalyzer(reg, analysis.AnalyzerConfig{
			CallTimeout: cfg.ClassificationTimeoutDuration(),
			RetryLimit:  cfg.ClassificationRetryLimit,
		}, log),
		aggregator: analysis.NewAggregator(reg.Topics, analysis.NewDefaultHeuristic(analysis.HeuristicConfig{
			TopicSentimentDropThreshold: cfg.TopicSentimentDropThreshold,
		})),
		cfg: cfg,
		log: log,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// RunFull analyzes a whole meeting and blocks until the aggregate is
// ready. Transcription failures are fatal; classification failures
// degrade individual segments but never fail the run.
func (p *Pipeline) RunFull(ctx context.Context, source, meetingID string) (*analysis.MeetingAnalysis, error) {
	if err := validateInput(source, meetingID); err != nil {
		return nil, err
	}

	start := time.Now()
	if p.met != nil {
		p.met.RunsStarted.Inc()
	}

	segs, err := p.reg.Transcriber.Transcribe(ctx, source)
	if err != nil {
		if p.met != nil {
			p.met.RunsFailed.Inc()
		}
		var te *analysis.TranscriptionError
		if !errors.As(err, &te) {
			err = &analysis.TranscriptionError{Source: source, Err: err}
		}
		return nil, err
	}
	p.log.WithFields(logrus.Fields{"meeting": meetingID, "segments": len(segs)}).Info("transcription complete")

	results, faults, err := p.analyzeAll(ctx, segs)
	if err != nil {
		if p.met != nil {
			p.met.RunsFailed.Inc()
		}
		return nil, err
	}

	ma, err := p.aggregator.Aggregate(meetingID, results)
	if err != nil {
		if p.met != nil {
			p.met.RunsFailed.Inc()
		}
		return nil, err
	}
	attachFaults(ma, results, faults)

	if p.met != nil {
		p.met.RunsCompleted.Inc()
		p.met.RunDuration.Observe(time.Since(start).Seconds())
	}
	p.persist(ctx, ma)
	return ma, nil
}

// analyzeAll dispatches segments to the analyzer with bounded worker
// concurrency. The result slice is index-preserved so completion order
// never affects output order.
func (p *Pipeline) analyzeAll(ctx context.Context, segs []analysis.TranscriptSegment) ([]analysis.SegmentAnalysis, []analysis.SegmentFault, error) {
	results := make([]analysis.SegmentAnalysis, len(segs))
	var mu sync.Mutex
	var faults []analysis.SegmentFault

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.MaxConcurrentSegments)
	for i, seg := range segs {
		i, seg := i, seg
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			res, segFaults := p.analyzer.Analyze(gctx, seg)
			results[i] = res

			if len(segFaults) > 0 {
				mu.Lock()
				faults = append(faults, segFaults...)
				mu.Unlock()
			}
			p.observeSegment(res, segFaults, time.Since(start))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	// Completion order is unconstrained, so the fault list is sorted to
	// keep the final artifact deterministic.
	sort.Slice(faults, func(i, j int) bool {
		if faults[i].SegmentID != faults[j].SegmentID {
			return faults[i].SegmentID < faults[j].SegmentID
		}
		return faults[i].Capability < faults[j].Capability
	})
	return results, faults, nil
}

func (p *Pipeline) observeSegment(res analysis.SegmentAnalysis, faults []analysis.SegmentFault, took time.Duration) {
	if p.met == nil {
		return
	}
	p.met.SegmentsAnalyzed.Inc()
	p.met.SegmentAnalysisDuration.Observe(took.Seconds())
	if res.Degraded {
		p.met.DegradedSegments.Inc()
	}
	for _, f := range faults {
		p.met.ClassificationFailures.WithLabelValues(string(f.Capability)).Inc()
	}
}

func (p *Pipeline) persist(ctx context.Context, ma *analysis.MeetingAnalysis) {
	if p.store == nil {
		return
	}
	if err := p.store.Save(ctx, ma); err != nil {
		p.log.WithField("meeting", ma.MeetingID).WithError(err).Warn("failed to persist analysis")
	}
}

func attachFaults(ma *analysis.MeetingAnalysis, results []analysis.SegmentAnalysis, faults []analysis.SegmentFault) {
	ma.Faults = faults
	for _, r := range results {
		if r.Degraded {
			ma.DegradedSegments++
		}
	}
}

func validateInput(source, meetingID string) error {
	if meetingID == "" {
		return &analysis.InputValidationError{Field: "meetingId", Reason: "must not be empty"}
	}
	if source == "" {
		return &analysis.InputValidationError{Field: "audioSource", Reason: "must not be empty"}
	}
	return nil
}
