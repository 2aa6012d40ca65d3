package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/pulseroom/meeting-pipeline/analysis"
)

type TransSeg struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
	Speaker string  `json:"speaker"`
}

type ASRResp struct {
	Segments []TransSeg `json:"segments"`
	Language string     `json:"language"`
}

// ASR uploads an audio file to the transcription service and returns the
// diarized segment list.
func (h *HTTP) ASR(ctx context.Context, url, wavPath string) (*ASRResp, error) {
	if err := h.acquire(ctx); err != nil {
		return nil, err
	}
	defer h.release()

	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	fw, err := w.CreateFormFile("file", filepath.Base(wavPath))
	if err != nil {
		return nil, err
	}
	fd, err := os.Open(wavPath)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	if _, err = io.Copy(fw, fd); err != nil {
		return nil, err
	}
	if err = w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url+"/transcribe", &b)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := h.c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("asr %s: %s", resp.Status, string(body))
	}

	var out ASRResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("asr decode: %w", err)
	}
	return &out, nil
}

// ASRTranscriber adapts the transcription service to the pipeline's
// Transcriber contract. Failures are fatal for the whole meeting; retry
// policy belongs to the caller.
type ASRTranscriber struct {
	HTTP *HTTP
	URL  string
}

func (t *ASRTranscriber) Transcribe(ctx context.Context, source string) ([]analysis.TranscriptSegment, error) {
	resp, err := t.HTTP.ASR(ctx, t.URL, source)
	if err != nil {
		return nil, &analysis.TranscriptionError{Source: source, Err: err}
	}

	segs := make([]analysis.TranscriptSegment, 0, len(resp.Segments))
	for i, s := range resp.Segments {
		speaker := s.Speaker
		if speaker == "" {
			speaker = "Unknown"
		}
		segs = append(segs, analysis.TranscriptSegment{
			ID:      fmt.Sprintf("seg-%04d", i),
			Speaker: speaker,
			Text:    s.Text,
			Start:   s.Start,
			End:     s.End,
		})
	}
	return segs, nil
}
