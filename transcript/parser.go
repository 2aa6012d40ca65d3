// Package transcript reads already-transcribed meeting sources so text
// meetings can flow through the pipeline without an ASR service.
package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/pulseroom/meeting-pipeline/analysis"
)

// fallbackSegmentSeconds is the simulated duration assigned to plain-text
// lines that carry no timing information.
const fallbackSegmentSeconds = 10.0

// FileTranscriber implements analysis.Transcriber over a local transcript
// file. Supported formats: .json (segment array), .vtt, and plain text.
type FileTranscriber struct{}

func (FileTranscriber) Transcribe(_ context.Context, source string) ([]analysis.TranscriptSegment, error) {
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, &analysis.TranscriptionError{Source: source, Err: err}
	}

	var segs []analysis.TranscriptSegment
	switch strings.ToLower(filepath.Ext(source)) {
	case ".json":
		segs, err = ParseJSON(data)
	case ".vtt":
		segs, err = ParseVTT(string(data))
	default:
		segs = ParsePlainText(string(data))
	}
	if err != nil {
		return nil, &analysis.TranscriptionError{Source: source, Err: err}
	}
	return segs, nil
}

type jsonSegment struct {
	ID      string  `json:"id"`
	Speaker string  `json:"speaker"`
	Text    string  `json:"text"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

// ParseJSON reads a {"segments": [...]} document.
func ParseJSON(data []byte) ([]analysis.TranscriptSegment, error) {
	var doc struct {
		Segments []jsonSegment `json:"segments"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse transcript json: %w", err)
	}
	segs := make([]analysis.TranscriptSegment, 0, len(doc.Segments))
	for i, s := range doc.Segments {
		segs = append(segs, analysis.TranscriptSegment{
			ID:      orIndexID(s.ID, i),
			Speaker: orUnknown(s.Speaker),
			Text:    s.Text,
			Start:   s.Start,
			End:     s.End,
		})
	}
	return segs, nil
}

var (
	cueRe     = regexp.MustCompile(`^(\d{2}:)?\d{2}:\d{2}\.\d{3}\s+-->\s+(\d{2}:)?\d{2}:\d{2}\.\d{3}`)
	voiceRe   = regexp.MustCompile(`^<v\s+([^>]+)>(.*)$`)
	speakerRe = regexp.MustCompile(`^([A-Za-z][\w .'-]{0,40}):\s+(.*)$`)
)

// ParseVTT reads a WEBVTT document. Cue voice spans (<v Name>) become the
// speaker attribution; cues without one are attributed to "Unknown".
func ParseVTT(content string) ([]analysis.TranscriptSegment, error) {
	lines := strings.Split(content, "\n")
	var segs []analysis.TranscriptSegment
	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		if !cueRe.MatchString(line) {
			i++
			continue
		}
		parts := strings.SplitN(line, "-->", 2)
		start, err := parseTimestamp(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, err
		}
		end, err := parseTimestamp(strings.Fields(strings.TrimSpace(parts[1]))[0])
		if err != nil {
			return nil, err
		}

		var textLines []string
		i++
		for i < len(lines) && strings.TrimSpace(lines[i]) != "" {
			textLines = append(textLines, strings.TrimSpace(lines[i]))
			i++
		}
		speaker := "Unknown"
		text := strings.Join(textLines, " ")
		if m := voiceRe.FindStringSubmatch(text); m != nil {
			speaker = strings.TrimSpace(m[1])
			text = strings.TrimSpace(strings.TrimSuffix(m[2], "</v>"))
		}
		segs = append(segs, analysis.TranscriptSegment{
			ID:      fmt.Sprintf("seg-%04d", len(segs)),
			Speaker: speaker,
			Text:    text,
			Start:   start,
			End:     end,
		})
	}
	return segs, nil
}

// ParsePlainText turns "Speaker: text" lines into simulated fixed-length
// segments. Lines without a speaker prefix are attributed to "Unknown".
func ParsePlainText(content string) []analysis.TranscriptSegment {
	var segs []analysis.TranscriptSegment
	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		speaker, text := "Unknown", line
		if m := speakerRe.FindStringSubmatch(line); m != nil {
			speaker, text = m[1], m[2]
		}
		i := len(segs)
		segs = append(segs, analysis.TranscriptSegment{
			ID:      fmt.Sprintf("seg-%04d", i),
			Speaker: speaker,
			Text:    text,
			Start:   float64(i) * fallbackSegmentSeconds,
			End:     float64(i+1) * fallbackSegmentSeconds,
		})
	}
	return segs
}

// parseTimestamp reads HH:MM:SS.mmm or MM:SS.mmm into seconds.
func parseTimestamp(ts string) (float64, error) {
	parts := strings.Split(ts, ":")
	var h, m int
	var s float64
	var err error
	switch len(parts) {
	case 3:
		if h, err = strconv.Atoi(parts[0]); err != nil {
			return 0, fmt.Errorf("bad timestamp %q", ts)
		}
		if m, err = strconv.Atoi(parts[1]); err != nil {
			return 0, fmt.Errorf("bad timestamp %q", ts)
		}
		if s, err = strconv.ParseFloat(parts[2], 64); err != nil {
			return 0, fmt.Errorf("bad timestamp %q", ts)
		}
	case 2:
		if m, err = strconv.Atoi(parts[0]); err != nil {
			return 0, fmt.Errorf("bad timestamp %q", ts)
		}
		if s, err = strconv.ParseFloat(parts[1], 64); err != nil {
			return 0, fmt.Errorf("bad timestamp %q", ts)
		}
	default:
		return 0, fmt.Errorf("bad timestamp %q", ts)
	}
	return float64(h)*3600 + float64(m)*60 + s, nil
}

func orIndexID(id string, i int) string {
	if id != "" {
		return id
	}
	return fmt.Sprintf("seg-%04d", i)
}

func orUnknown(speaker string) string {
	if speaker == "" {
		return "Unknown"
	}
	return speaker
}
