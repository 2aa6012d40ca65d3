package analysis

import (
	"fmt"
	"strings"
)

// Heuristic derives action items and insights from an ordered segment
// sequence. Implementations must be deterministic for a given input and
// configuration.
type Heuristic interface {
	Derive(segments []SegmentAnalysis, tags [][]string) (actionItems, insights []string)
}

// HeuristicConfig tunes the default heuristic.
type HeuristicConfig struct {
	// TopicSentimentDropThreshold is the number of sentiment points
	// (0-100 scale) a topic's trailing-half mean must fall below its
	// leading-half mean before an insight is emitted.
	TopicSentimentDropThreshold float64
}

// actionCues are phrases that mark a statement as a likely commitment.
var actionCues = []string{"action", "task", "to-do", "follow up", "need to", "should", "will do", "by friday", "deadline"}

// DefaultHeuristic flags question segments and commitment phrases as
// action items and emits insights for topics whose sentiment decays over
// the course of the meeting.
type DefaultHeuristic struct {
	cfg HeuristicConfig
}

func NewDefaultHeuristic(cfg HeuristicConfig) *DefaultHeuristic {
	if cfg.TopicSentimentDropThreshold <= 0 {
		cfg.TopicSentimentDropThreshold = 15
	}
	return &DefaultHeuristic{cfg: cfg}
}

func (h *DefaultHeuristic) Derive(segments []SegmentAnalysis, tags [][]string) ([]string, []string) {
	actionItems := []string{}
	insights := []string{}

	questions := 0
	for _, s := range segments {
		if s.IsQuestion {
			questions++
			actionItems = append(actionItems,
				fmt.Sprintf("Answer %s's open question: %s", s.Segment.Speaker, strings.TrimSpace(s.Segment.Text)))
			continue
		}
		if hasActionCue(s.Segment.Text) {
			actionItems = append(actionItems,
				fmt.Sprintf("Follow up (%s): %s", s.Segment.Speaker, strings.TrimSpace(s.Segment.Text)))
		}
	}
	if questions > 0 {
		insights = append(insights, fmt.Sprintf("%d question(s) were raised during the meeting", questions))
	}

	// Topic sentiment decay: compare leading-half and trailing-half means
	// of each topic's tagged segments, in first-occurrence topic order.
	for _, tp := range topicOrder(tags) {
		idx := topicSegmentIndices(tags, tp)
		if len(idx) < 2 {
			continue
		}
		mid := len(idx) / 2
		lead := meanSentiment(segments, idx[:mid])
		trail := meanSentiment(segments, idx[mid:])
		if drop := lead - trail; drop >= h.cfg.TopicSentimentDropThreshold {
			insights = append(insights,
				fmt.Sprintf("Sentiment on %q dropped %.1f points over the meeting", tp, drop))
		}
	}

	return actionItems, insights
}

func hasActionCue(text string) bool {
	lower := strings.ToLower(text)
	for _, cue := range actionCues {
		if strings.Contains(lower, cue) {
			return true
		}
	}
	return false
}

// topicOrder returns topic names ordered by first occurrence.
func topicOrder(tags [][]string) []string {
	seen := map[string]bool{}
	var out []string
	for _, ts := range tags {
		for _, t := range ts {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}

func topicSegmentIndices(tags [][]string, topic string) []int {
	var out []int
	for i, ts := range tags {
		for _, t := range ts {
			if t == topic {
				out = append(out, i)
				break
			}
		}
	}
	return out
}

func meanSentiment(segments []SegmentAnalysis, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	sum := 0.0
	for _, i := range idx {
		sum += segments[i].SentimentScore
	}
	return sum / float64(len(idx))
}
