package analysis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordTaggerMatchesBucketOrder(t *testing.T) {
	tagger := NewKeywordTagger(nil)

	tags := tagger.Tag("The project timeline depends on the API architecture")
	assert.Equal(t, []string{"Project Updates", "Technical Discussion"}, tags)
}

func TestKeywordTaggerNoMatch(t *testing.T) {
	tagger := NewKeywordTagger(nil)
	assert.Empty(t, tagger.Tag("hello there"))
}

func TestKeywordTaggerCaseInsensitive(t *testing.T) {
	tagger := NewKeywordTagger(nil)
	assert.Equal(t, []string{"Budget Discussion"}, tagger.Tag("BUDGET overruns again"))
}

func TestLoadTopicBuckets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topics.yaml")
	content := `topics:
  - name: Release Planning
    keywords: [release, cutoff, freeze]
  - name: Incidents
    keywords: [outage, incident, rollback]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	buckets, err := LoadTopicBuckets(path)
	require.NoError(t, err)
	require.Len(t, buckets, 2)

	tagger := NewKeywordTagger(buckets)
	assert.Equal(t, []string{"Incidents"}, tagger.Tag("we had an outage last night"))
}

func TestLoadTopicBucketsMissingFile(t *testing.T) {
	_, err := LoadTopicBuckets(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
