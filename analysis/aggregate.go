package analysis

import "sort"

// Aggregator computes the whole-meeting view from an ordered sequence of
// segment analyses. It is pure: no clock, no randomness, no external
// state, so identical input always yields identical output.
type Aggregator struct {
	tagger    TopicTagger
	heuristic Heuristic
}

func NewAggregator(tagger TopicTagger, heuristic Heuristic) *Aggregator {
	if tagger == nil {
		tagger = NewKeywordTagger(nil)
	}
	if heuristic == nil {
		heuristic = NewDefaultHeuristic(HeuristicConfig{})
	}
	return &Aggregator{tagger: tagger, heuristic: heuristic}
}

// Aggregate consumes all segment analyses for a meeting. A zero-segment
// meeting is valid and yields a degenerate analysis with nil
// OverallSentiment and empty stats.
func (g *Aggregator) Aggregate(meetingID string, segments []SegmentAnalysis) (*MeetingAnalysis, error) {
	for _, s := range segments {
		if s.Segment.End < s.Segment.Start {
			return nil, &AggregationError{SegmentID: s.Segment.ID, Reason: "negative duration"}
		}
	}

	out := &MeetingAnalysis{
		MeetingID:    meetingID,
		Segments:     segments,
		SpeakerStats: []SpeakerStat{},
		TopicStats:   []TopicStat{},
		ActionItems:  []string{},
		Insights:     []string{},
	}
	if len(segments) == 0 {
		return out, nil
	}

	sum := 0.0
	for _, s := range segments {
		sum += s.SentimentScore
	}
	overall := sum / float64(len(segments))
	out.OverallSentiment = &overall

	tags := make([][]string, len(segments))
	for i, s := range segments {
		tags[i] = g.tagger.Tag(s.Segment.Text)
	}

	out.SpeakerStats = speakerStats(segments, tags)
	out.TopicStats = topicStats(segments, tags)
	out.ActionItems, out.Insights = g.heuristic.Derive(segments, tags)
	return out, nil
}

// speakerStats groups segments by speaker in first-appearance order.
func speakerStats(segments []SegmentAnalysis, tags [][]string) []SpeakerStat {
	type acc struct {
		time   float64
		sum    float64
		n      int
		topics []string
		seen   map[string]bool
	}
	order := []string{}
	bySpeaker := map[string]*acc{}

	for i, s := range segments {
		a, ok := bySpeaker[s.Segment.Speaker]
		if !ok {
			a = &acc{seen: map[string]bool{}}
			bySpeaker[s.Segment.Speaker] = a
			order = append(order, s.Segment.Speaker)
		}
		a.time += s.Segment.Duration()
		a.sum += s.SentimentScore
		a.n++
		for _, t := range tags[i] {
			if !a.seen[t] {
				a.seen[t] = true
				a.topics = append(a.topics, t)
			}
		}
	}

	out := make([]SpeakerStat, 0, len(order))
	for _, sp := range order {
		a := bySpeaker[sp]
		topics := a.topics
		if topics == nil {
			topics = []string{}
		}
		out = append(out, SpeakerStat{
			Speaker:             sp,
			SpeakingTimeSeconds: a.time,
			AverageSentiment:    a.sum / float64(a.n),
			TopicsFocus:         topics,
		})
	}
	return out
}

// topicStats derives topic weights from each topic's share of tagged
// segment count. Weights sum to 1 when any topic was tagged; ordering is
// by weight descending with ties broken by first occurrence.
func topicStats(segments []SegmentAnalysis, tags [][]string) []TopicStat {
	type acc struct {
		count int
		sum   float64
	}
	order := topicOrder(tags)
	byTopic := map[string]*acc{}
	total := 0

	for i, ts := range tags {
		for _, t := range ts {
			a, ok := byTopic[t]
			if !ok {
				a = &acc{}
				byTopic[t] = a
			}
			a.count++
			a.sum += segments[i].SentimentScore
			total++
		}
	}
	if total == 0 {
		return []TopicStat{}
	}

	out := make([]TopicStat, 0, len(order))
	for _, name := range order {
		a := byTopic[name]
		out = append(out, TopicStat{
			Name:      name,
			Weight:    float64(a.count) / float64(total),
			Sentiment: a.sum / float64(a.count),
		})
	}
	// Stable sort keeps first-occurrence order for equal weights.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Weight > out[j].Weight })
	return out
}
