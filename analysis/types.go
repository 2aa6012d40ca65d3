package analysis

// Kind identifies a classification capability.
type Kind string

const (
	KindSentiment Kind = "sentiment"
	KindQuestion  Kind = "question"
	KindEmotion   Kind = "emotion"
)

// Labels the question classifier is expected to emit.
const (
	LabelQuestion  = "QUESTION"
	LabelStatement = "STATEMENT"
)

// NeutralSentiment is the fallback score (0-100) used when the sentiment
// capability fails for a segment.
const NeutralSentiment = 50.0

// TranscriptSegment is one speaker-attributed span of the transcript.
// Immutable once produced; ordering is by Start ascending.
type TranscriptSegment struct {
	ID      string  `json:"id"`
	Speaker string  `json:"speaker"`
	Text    string  `json:"text"`
	Start   float64 `json:"start"` // sec
	End     float64 `json:"end"`   // sec
}

// Duration returns End-Start in seconds.
func (s TranscriptSegment) Duration() float64 { return s.End - s.Start }

// ClassificationResult is the raw output of one capability call.
type ClassificationResult struct {
	Kind  Kind    `json:"kind"`
	Label string  `json:"label"`
	Score float64 `json:"score"` // [0,1]
}

// SegmentAnalysis merges the three capability results for one segment.
type SegmentAnalysis struct {
	Segment        TranscriptSegment `json:"segment"`
	SentimentScore float64           `json:"sentiment_score"` // [0,100]
	IsQuestion     bool              `json:"is_question"`
	EmotionLabel   string            `json:"emotion_label"`
	Degraded       bool              `json:"degraded,omitempty"`
}

// IsPositive reports whether the segment sentiment is strictly above neutral.
func (a SegmentAnalysis) IsPositive() bool { return a.SentimentScore > 50 }

// SpeakerStat is a per-speaker aggregate, recomputed on every aggregation pass.
type SpeakerStat struct {
	Speaker             string   `json:"speaker"`
	SpeakingTimeSeconds float64  `json:"speaking_time_seconds"`
	AverageSentiment    float64  `json:"average_sentiment"`
	TopicsFocus         []string `json:"topics_focus"`
}

// TopicStat is a per-topic aggregate. Weights sum to 1 across all topics.
type TopicStat struct {
	Name      string  `json:"name"`
	Weight    float64 `json:"weight"`
	Sentiment float64 `json:"sentiment"`
}

// SegmentFault records a non-fatal capability failure for one segment.
type SegmentFault struct {
	SegmentID  string `json:"segment_id"`
	Capability Kind   `json:"capability"`
	Reason     string `json:"reason"`
}

// MeetingAnalysis is the terminal artifact of a pipeline run, keyed by
// MeetingID and immutable after creation. OverallSentiment is nil for a
// zero-segment meeting.
type MeetingAnalysis struct {
	MeetingID        string            `json:"meeting_id"`
	OverallSentiment *float64          `json:"overall_sentiment"`
	Segments         []SegmentAnalysis `json:"segments"`
	SpeakerStats     []SpeakerStat     `json:"speaker_stats"`
	TopicStats       []TopicStat       `json:"topic_stats"`
	ActionItems      []string          `json:"action_items"`
	Insights         []string          `json:"insights"`
	Faults           []SegmentFault    `json:"faults,omitempty"`
	DegradedSegments int               `json:"degraded_segments"`
}
