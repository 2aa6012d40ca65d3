package clients

import (
	"context"
	"errors"

	"github.com/pulseroom/meeting-pipeline/analysis"
)

// --- Text classification (/classify, /detect) ---

type ClassifyReq struct {
	Text string `json:"text"`
}

type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type ClassifyResp struct {
	Results []LabelScore `json:"results"`
}

// Classify posts text to a classification endpoint and returns the
// top-ranked label/score pair.
func (h *HTTP) Classify(ctx context.Context, url, text string) (LabelScore, error) {
	var out ClassifyResp
	if err := h.postJSON(ctx, url, ClassifyReq{Text: text}, &out); err != nil {
		return LabelScore{}, err
	}
	if len(out.Results) == 0 {
		return LabelScore{}, errors.New("classification returned no results")
	}
	top := out.Results[0]
	for _, r := range out.Results[1:] {
		if r.Score > top.Score {
			top = r
		}
	}
	return top, nil
}

// TextClassifier adapts one classification endpoint to the pipeline's
// Classifier contract, wrapping failures with their capability and a
// transient marker for the retry policy.
type TextClassifier struct {
	HTTP       *HTTP
	URL        string
	Capability analysis.Kind
}

func NewSentimentClassifier(h *HTTP, url string) *TextClassifier {
	return &TextClassifier{HTTP: h, URL: url + "/classify", Capability: analysis.KindSentiment}
}

func NewQuestionClassifier(h *HTTP, url string) *TextClassifier {
	return &TextClassifier{HTTP: h, URL: url + "/classify", Capability: analysis.KindQuestion}
}

func NewEmotionClassifier(h *HTTP, url string) *TextClassifier {
	return &TextClassifier{HTTP: h, URL: url + "/detect", Capability: analysis.KindEmotion}
}

func (c *TextClassifier) Kind() analysis.Kind { return c.Capability }

func (c *TextClassifier) Classify(ctx context.Context, text string) (analysis.ClassificationResult, error) {
	top, err := c.HTTP.Classify(ctx, c.URL, text)
	if err != nil {
		return analysis.ClassificationResult{}, &analysis.ClassificationError{
			Capability: c.Capability,
			Transient:  isTransientErr(err),
			Err:        err,
		}
	}
	return analysis.ClassificationResult{Kind: c.Capability, Label: top.Label, Score: top.Score}, nil
}

// isTransientErr reports whether a call may succeed on retry. Service-side
// validation failures (4xx) and malformed responses are permanent.
func isTransientErr(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.transient()
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	// Network-class errors (connection refused, timeouts) reach here
	// undecorated from the HTTP client.
	var ne interface{ Timeout() bool }
	if errors.As(err, &ne) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
