package transcript

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulseroom/meeting-pipeline/analysis"
)

func TestParseVTT(t *testing.T) {
	content := `WEBVTT

1
00:00:00.000 --> 00:00:04.500
<v Alice>Let's start with the project update.</v>

2
00:00:04.500 --> 00:00:09.000
<v Bob>The timeline slipped by a week.</v>

3
00:00:09.000 --> 00:00:12.000
Any other business?
`
	segs, err := ParseVTT(content)
	require.NoError(t, err)
	require.Len(t, segs, 3)

	assert.Equal(t, "seg-0000", segs[0].ID)
	assert.Equal(t, "Alice", segs[0].Speaker)
	assert.Equal(t, "Let's start with the project update.", segs[0].Text)
	assert.InDelta(t, 0.0, segs[0].Start, 1e-9)
	assert.InDelta(t, 4.5, segs[0].End, 1e-9)

	assert.Equal(t, "Bob", segs[1].Speaker)
	assert.Equal(t, "Unknown", segs[2].Speaker)
	assert.Equal(t, "Any other business?", segs[2].Text)
}

func TestParseVTTShortTimestamps(t *testing.T) {
	content := `WEBVTT

00:05.000 --> 00:08.250
<v Carol>Short form works too.</v>
`
	segs, err := ParseVTT(content)
	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.InDelta(t, 5.0, segs[0].Start, 1e-9)
	assert.InDelta(t, 8.25, segs[0].End, 1e-9)
}

func TestParsePlainText(t *testing.T) {
	content := `Alice: Good morning everyone.
Bob: Morning. Shall we begin?

no speaker on this line
`
	segs := ParsePlainText(content)
	require.Len(t, segs, 3)

	assert.Equal(t, "Alice", segs[0].Speaker)
	assert.Equal(t, "Good morning everyone.", segs[0].Text)
	assert.InDelta(t, 0.0, segs[0].Start, 1e-9)
	assert.InDelta(t, 10.0, segs[0].End, 1e-9)

	assert.Equal(t, "Bob", segs[1].Speaker)
	assert.InDelta(t, 10.0, segs[1].Start, 1e-9)

	assert.Equal(t, "Unknown", segs[2].Speaker)
	assert.Equal(t, "no speaker on this line", segs[2].Text)
}

func TestParseJSON(t *testing.T) {
	data := []byte(`{"segments": [
		{"id": "intro", "speaker": "Alice", "text": "hello", "start": 0, "end": 3},
		{"speaker": "", "text": "unattributed", "start": 3, "end": 6}
	]}`)

	segs, err := ParseJSON(data)
	require.NoError(t, err)
	require.Len(t, segs, 2)
	assert.Equal(t, "intro", segs[0].ID)
	assert.Equal(t, "seg-0001", segs[1].ID)
	assert.Equal(t, "Unknown", segs[1].Speaker)
}

func TestParseJSONMalformed(t *testing.T) {
	_, err := ParseJSON([]byte(`{"segments": [`))
	assert.Error(t, err)
}

func TestFileTranscriberByExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "meeting.txt")
	require.NoError(t, os.WriteFile(path, []byte("Alice: hi there\n"), 0o644))

	segs, err := FileTranscriber{}.Transcribe(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.Equal(t, "Alice", segs[0].Speaker)
}

func TestFileTranscriberMissingFile(t *testing.T) {
	_, err := FileTranscriber{}.Transcribe(context.Background(), filepath.Join(t.TempDir(), "absent.vtt"))
	var te *analysis.TranscriptionError
	assert.ErrorAs(t, err, &te)
}

func TestRouterAudioWithoutASR(t *testing.T) {
	_, err := Router{}.Transcribe(context.Background(), "meeting.wav")
	var te *analysis.TranscriptionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "meeting.wav", te.Source)
}

func TestRouterPrefersLocalFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "meeting.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"segments": []}`), 0o644))

	segs, err := Router{}.Transcribe(context.Background(), path)
	require.NoError(t, err)
	assert.Empty(t, segs)
}
