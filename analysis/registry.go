package analysis

import "context"

// Transcriber converts an opaque audio or transcript source into an
// ordered sequence of segments.
type Transcriber interface {
	Transcribe(ctx context.Context, source string) ([]TranscriptSegment, error)
}

// Classifier maps a piece of text to a labeled score. Implementations are
// stateless; one instance serves all segments of all meetings.
type Classifier interface {
	Kind() Kind
	Classify(ctx context.Context, text string) (ClassificationResult, error)
}

// TopicTagger assigns zero or more topic names to a segment's text.
type TopicTagger interface {
	Tag(text string) []string
}

// Registry holds the capability set the pipeline runs against. Handlers
// are constructed once and substituted wholesale for testing.
type Registry struct {
	Transcriber Transcriber
	Sentiment   Classifier
	Question    Classifier
	Emotion     Classifier
	Topics      TopicTagger
}

// Classifiers returns the three text classifiers in fixed order.
func (r Registry) Classifiers() []Classifier {
	return []Classifier{r.Sentiment, r.Question, r.Emotion}
}
