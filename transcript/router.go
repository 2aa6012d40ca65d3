package transcript

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/pulseroom/meeting-pipeline/analysis"
)

// Router picks a transcriber per source: already-transcribed files are
// parsed locally, anything else goes to the ASR service.
type Router struct {
	ASR  analysis.Transcriber
	File FileTranscriber
}

var transcriptExts = map[string]bool{".json": true, ".vtt": true, ".txt": true}

func (r Router) Transcribe(ctx context.Context, source string) ([]analysis.TranscriptSegment, error) {
	if transcriptExts[strings.ToLower(filepath.Ext(source))] {
		return r.File.Transcribe(ctx, source)
	}
	if r.ASR == nil {
		return nil, &analysis.TranscriptionError{
			Source: source,
			Err:    errors.New("no asr service configured for audio sources"),
		}
	}
	return r.ASR.Transcribe(ctx, source)
}
