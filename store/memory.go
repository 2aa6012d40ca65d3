package store

import (
	"context"
	"sync"

	"github.com/pulseroom/meeting-pipeline/analysis"
)

// Memory is an in-process Store. Analyses are immutable after creation,
// so pointers are stored as-is.
type Memory struct {
	mu sync.RWMutex
	m  map[string]*analysis.MeetingAnalysis
}

func NewMemory() *Memory {
	return &Memory{m: make(map[string]*analysis.MeetingAnalysis)}
}

func (s *Memory) Save(_ context.Context, ma *analysis.MeetingAnalysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[ma.MeetingID] = ma
	return nil
}

func (s *Memory) Get(_ context.Context, meetingID string) (*analysis.MeetingAnalysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ma, ok := s.m[meetingID]
	if !ok {
		return nil, ErrNotFound
	}
	return ma, nil
}
