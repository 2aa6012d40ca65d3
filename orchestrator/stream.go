package orchestrator

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/pulseroom/meeting-pipeline/analysis"
)

// State is the streaming session lifecycle:
// Idle -> Running -> {Completed, Cancelled, Failed}.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateCancelled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// EventType discriminates stream events.
type EventType int

const (
	// EventSegment carries one SegmentAnalysis, in segment order.
	EventSegment EventType = iota
	// EventComplete carries the terminal MeetingAnalysis.
	EventComplete
	// EventError carries a fatal StreamError and terminates the stream.
	EventError
)

// Event is one delivery on a streaming session.
type Event struct {
	Type     EventType
	Segment  *analysis.SegmentAnalysis
	Analysis *analysis.MeetingAnalysis
	Err      error
}

// Session delivers segment analyses to a consumer as they become
// available, in segment order. The events channel is closed after the
// terminal event (or after cancellation, which has no terminal event).
type Session struct {
	id        string
	meetingID string
	events    chan Event
	state     atomic.Int32
	cancel    context.CancelFunc
	done      chan struct{}
}

func (s *Session) ID() string            { return s.id }
func (s *Session) MeetingID() string     { return s.meetingID }
func (s *Session) Events() <-chan Event  { return s.events }
func (s *Session) State() State          { return State(s.state.Load()) }
func (s *Session) Done() <-chan struct{} { return s.done }

// Cancel signals cooperative cancellation. In-flight classification calls
// for already-dispatched segments finish or are abandoned; no further
// segments are dispatched once cancellation is observed.
func (s *Session) Cancel() { s.cancel() }

func (s *Session) setState(st State) { s.state.Store(int32(st)) }

// transition only moves forward out of a non-terminal state.
func (s *Session) transition(from, to State) bool {
	return s.state.CompareAndSwap(int32(from), int32(to))
}

// RunStream starts an incremental analysis of the meeting and returns
// immediately. The consumer reads Events until the channel closes; the
// channel buffer is the backpressure bound.
func (p *Pipeline) RunStream(ctx context.Context, source, meetingID string) *Session {
	runCtx, cancel := context.WithCancel(ctx)
	s := &Session{
		id:        uuid.NewString(),
		meetingID: meetingID,
		events:    make(chan Event, p.cfg.StreamBuffer),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	if p.met != nil {
		p.met.ActiveSessions.Inc()
	}
	go p.runStream(runCtx, s, source)
	return s
}

func (p *Pipeline) runStream(ctx context.Context, s *Session, source string) {
	defer close(s.done)
	defer close(s.events)
	defer s.cancel()
	if p.met != nil {
		defer p.met.ActiveSessions.Dec()
	}

	fail := func(err error) {
		s.setState(StateFailed)
		s.events <- Event{Type: EventError, Err: &analysis.StreamError{MeetingID: s.meetingID, Err: err}}
	}

	if err := validateInput(source, s.meetingID); err != nil {
		fail(err)
		return
	}

	segs, err := p.reg.Transcriber.Transcribe(ctx, source)
	if err != nil {
		var te *analysis.TranscriptionError
		if !errors.As(err, &te) {
			err = &analysis.TranscriptionError{Source: source, Err: err}
		}
		fail(err)
		return
	}

	results := make([]analysis.SegmentAnalysis, len(segs))
	ready := make([]chan struct{}, len(segs))
	for i := range ready {
		ready[i] = make(chan struct{})
	}
	var mu sync.Mutex
	var faults []analysis.SegmentFault

	// Dispatch with bounded workers. Cancellation is observed between
	// dispatches: a dispatched segment may still finish, but its result
	// is abandoned by the delivery loop below.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.MaxConcurrentSegments)
	go func() {
		for i, seg := range segs {
			if gctx.Err() != nil {
				return
			}
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
				close(ready[i])
				return nil
			})
		}
	}()

	if len(segs) > 0 {
		s.transition(StateIdle, StateRunning)
	}

	// Deliver in segment order regardless of completion order. A blocked
	// send still observes cancellation.
	for i := range segs {
		select {
		case <-ready[i]:
		case <-ctx.Done():
			p.cancelled(s)
			return
		}
		res := results[i]
		select {
		case s.events <- Event{Type: EventSegment, Segment: &res}:
		case <-ctx.Done():
			p.cancelled(s)
			return
		}
	}
	if err := ctx.Err(); err != nil {
		p.cancelled(s)
		return
	}

	mu.Lock()
	sort.Slice(faults, func(i, j int) bool {
		if faults[i].SegmentID != faults[j].SegmentID {
			return faults[i].SegmentID < faults[j].SegmentID
		}
		return faults[i].Capability < faults[j].Capability
	})
	mu.Unlock()

	ma, err := p.aggregator.Aggregate(s.meetingID, results)
	if err != nil {
		fail(err)
		return
	}
	attachFaults(ma, results, faults)
	p.persist(context.WithoutCancel(ctx), ma)

	select {
	case s.events <- Event{Type: EventComplete, Analysis: ma}:
		if !s.transition(StateRunning, StateCompleted) {
			s.transition(StateIdle, StateCompleted)
		}
	case <-ctx.Done():
		p.cancelled(s)
	}
}

func (p *Pipeline) cancelled(s *Session) {
	s.setState(StateCancelled)
	if p.met != nil {
		p.met.SessionsCancelled.Inc()
	}
	p.log.WithFields(logrus.Fields{"session": s.id, "meeting": s.meetingID}).Info("streaming session cancelled")
}
