package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulseroom/meeting-pipeline/analysis"
)

func classifyServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestClassifyPicksTopScore(t *testing.T) {
	srv := classifyServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/classify", r.URL.Path)
		var req ClassifyReq
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "is this done?", req.Text)

		json.NewEncoder(w).Encode(ClassifyResp{Results: []LabelScore{
			{Label: analysis.LabelStatement, Score: 0.2},
			{Label: analysis.LabelQuestion, Score: 0.8},
		}})
	})

	c := NewQuestionClassifier(NewHTTP(time.Second, 2), srv.URL)
	res, err := c.Classify(context.Background(), "is this done?")
	require.NoError(t, err)
	assert.Equal(t, analysis.KindQuestion, res.Kind)
	assert.Equal(t, analysis.LabelQuestion, res.Label)
	assert.InDelta(t, 0.8, res.Score, 1e-9)
}

func TestClassifyServerErrorIsTransient(t *testing.T) {
	srv := classifyServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	})

	c := NewSentimentClassifier(NewHTTP(time.Second, 2), srv.URL)
	_, err := c.Classify(context.Background(), "text")
	var ce *analysis.ClassificationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, analysis.KindSentiment, ce.Capability)
	assert.True(t, ce.Transient)
}

func TestClassifyBadRequestIsPermanent(t *testing.T) {
	srv := classifyServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "text too long", http.StatusBadRequest)
	})

	c := NewEmotionClassifier(NewHTTP(time.Second, 2), srv.URL)
	_, err := c.Classify(context.Background(), "text")
	var ce *analysis.ClassificationError
	require.ErrorAs(t, err, &ce)
	assert.False(t, ce.Transient)
}

func TestClassifyEmptyResults(t *testing.T) {
	srv := classifyServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ClassifyResp{})
	})

	c := NewSentimentClassifier(NewHTTP(time.Second, 2), srv.URL)
	_, err := c.Classify(context.Background(), "text")
	var ce *analysis.ClassificationError
	require.ErrorAs(t, err, &ce)
	assert.False(t, ce.Transient)
}

func TestRemoteTaggerFallsBack(t *testing.T) {
	srv := classifyServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	})

	tagger := &RemoteTagger{
		HTTP:     NewHTTP(time.Second, 2),
		URL:      srv.URL,
		Fallback: analysis.NewKeywordTagger(nil),
	}
	tags := tagger.Tag("the project timeline slipped")
	assert.Equal(t, []string{"Project Updates"}, tags)
}

func TestRemoteTaggerCutoff(t *testing.T) {
	srv := classifyServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tag", r.URL.Path)
		json.NewEncoder(w).Encode(TagResp{
			Labels: []string{"Budget Discussion", "Team Collaboration"},
			Scores: []float64{0.9, 0.3},
		})
	})

	tagger := &RemoteTagger{HTTP: NewHTTP(time.Second, 2), URL: srv.URL}
	tags := tagger.Tag("budget talk")
	assert.Equal(t, []string{"Budget Discussion"}, tags)
}
