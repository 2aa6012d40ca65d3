package clients

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pulseroom/meeting-pipeline/analysis"
)

// --- Topic tagging (/tag) ---

type TagReq struct {
	Text            string   `json:"text"`
	CandidateLabels []string `json:"candidate_labels,omitempty"`
}

type TagResp struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// TagTopics posts text to the zero-shot topic service.
func (h *HTTP) TagTopics(ctx context.Context, url, text string, candidates []string) (*TagResp, error) {
	var out TagResp
	if err := h.postJSON(ctx, url+"/tag", TagReq{Text: text, CandidateLabels: candidates}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoteTagger tags segments through the external topic service and falls
// back to the deterministic keyword buckets when the service is down. The
// score cutoff keeps weak zero-shot matches out of the stats.
type RemoteTagger struct {
	HTTP       *HTTP
	URL        string
	Candidates []string
	Cutoff     float64
	Timeout    time.Duration
	Fallback   *analysis.KeywordTagger
	Log        *logrus.Entry
}

func (t *RemoteTagger) Tag(text string) []string {
	timeout := t.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := t.HTTP.TagTopics(ctx, t.URL, text, t.Candidates)
	if err != nil {
		if t.Log != nil {
			t.Log.WithError(err).Debug("topic service unavailable, using keyword buckets")
		}
		if t.Fallback != nil {
			return t.Fallback.Tag(text)
		}
		return nil
	}

	cutoff := t.Cutoff
	if cutoff <= 0 {
		cutoff = 0.5
	}
	var out []string
	for i, label := range resp.Labels {
		if i < len(resp.Scores) && resp.Scores[i] >= cutoff {
			out = append(out, label)
		}
	}
	return out
}
