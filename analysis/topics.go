package analysis

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// TopicBucket maps a topic name to the keywords that signal it.
type TopicBucket struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// KeywordTagger is the deterministic fallback topic tagger: a segment is
// tagged with a topic when its text contains any of the bucket's keywords.
// Buckets are evaluated in declaration order so output ordering is stable.
type KeywordTagger struct {
	buckets []TopicBucket
}

// DefaultTopicBuckets returns the built-in topic areas.
func DefaultTopicBuckets() []TopicBucket {
	return []TopicBucket{
		{Name: "Project Updates", Keywords: []string{"project", "update", "status", "timeline", "milestone", "progress", "deliverable"}},
		{Name: "Technical Discussion", Keywords: []string{"technical", "code", "api", "implementation", "architecture", "system", "design", "solution"}},
		{Name: "Product Development", Keywords: []string{"product", "feature", "user", "customer", "requirement", "specification"}},
		{Name: "Team Collaboration", Keywords: []string{"team", "collaborate", "coordination", "communication", "responsibility", "role"}},
		{Name: "Performance Review", Keywords: []string{"performance", "metric", "kpi", "goal", "objective", "measure", "improvement", "target"}},
		{Name: "Budget Discussion", Keywords: []string{"budget", "cost", "expense", "financial", "funding", "resource", "allocation"}},
		{Name: "Customer Feedback", Keywords: []string{"feedback", "review", "satisfaction", "complaint", "suggestion"}},
		{Name: "Action Items", Keywords: []string{"action", "task", "follow", "assign", "deadline", "complete"}},
	}
}

// NewKeywordTagger builds a tagger over the given buckets, falling back to
// the defaults when none are supplied.
func NewKeywordTagger(buckets []TopicBucket) *KeywordTagger {
	if len(buckets) == 0 {
		buckets = DefaultTopicBuckets()
	}
	return &KeywordTagger{buckets: buckets}
}

// LoadTopicBuckets reads bucket definitions from a YAML file.
func LoadTopicBuckets(path string) ([]TopicBucket, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Topics []TopicBucket `yaml:"topics"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.Topics, nil
}

// Tag returns the topics whose keywords occur in text, in bucket order.
func (t *KeywordTagger) Tag(text string) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, b := range t.buckets {
		for _, kw := range b.Keywords {
			if strings.Contains(lower, kw) {
				out = append(out, b.Name)
				break
			}
		}
	}
	return out
}
