package srt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tubedesk/tubedesk/internal/timeline"
)

func TestFormatTime(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		want    string
	}{
		{name: "zero", seconds: 0, want: "00:00:00,000"},
		{name: "with millis", seconds: 3725.5, want: "01:02:05,500"},
		{name: "sub-millisecond truncates", seconds: 1.0009, want: "00:00:01,000"},
		{name: "hour rollover", seconds: 3600, want: "01:00:00,000"},
		{name: "negative clamps to zero", seconds: -3, want: "00:00:00,000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTime(tt.seconds))
		})
	}
}

func TestFromTimeline_EndTimeInference(t *testing.T) {
	cues := FromTimeline([]timeline.Entry{
		{StartSeconds: 0, Text: "first"},
		{StartSeconds: 5, Text: "second"},
		{StartSeconds: 12, Text: "third"},
	})
	require.Len(t, cues, 3)

	assert.Equal(t, 1, cues[0].Index)
	assert.Equal(t, 2, cues[1].Index)
	assert.Equal(t, 3, cues[2].Index)

	assert.InDelta(t, 4.999, cues[0].EndSeconds, 1e-9)
	assert.InDelta(t, 11.999, cues[1].EndSeconds, 1e-9)
	// Last entry gets the fixed 2s fallback.
	assert.InDelta(t, 14.0, cues[2].EndSeconds, 1e-9)
}

func TestFromTimeline_ClampsOverlappingStarts(t *testing.T) {
	cues := FromTimeline([]timeline.Entry{
		{StartSeconds: 10, Text: "late"},
		{StartSeconds: 10, Text: "same start"},
		{StartSeconds: 3, Text: "earlier than previous"},
	})
	require.Len(t, cues, 3)

	for _, cue := range cues {
		assert.Greater(t, cue.EndSeconds, cue.StartSeconds, "cue %d", cue.Index)
	}
	assert.InDelta(t, 10.001, cues[0].EndSeconds, 1e-9)
	assert.InDelta(t, 10.001, cues[1].EndSeconds, 1e-9)
}

func TestFromSegments_UsesDurationForLastCue(t *testing.T) {
	cues := FromSegments([]Segment{
		{Text: "a", OffsetSeconds: 0, DurationSeconds: 4},
		{Text: "b", OffsetSeconds: 6, DurationSeconds: 3.5},
	})
	require.Len(t, cues, 2)
	assert.InDelta(t, 5.999, cues[0].EndSeconds, 1e-9)
	assert.InDelta(t, 9.5, cues[1].EndSeconds, 1e-9)
}

func TestFromSegments_FallbackWhenDurationMissing(t *testing.T) {
	cues := FromSegments([]Segment{
		{Text: "only", OffsetSeconds: 7},
	})
	require.Len(t, cues, 1)
	assert.InDelta(t, 9.0, cues[0].EndSeconds, 1e-9)
}

func TestFromSegments_SanitizesText(t *testing.T) {
	cues := FromSegments([]Segment{
		{Text: "[Music] Hello", OffsetSeconds: 0, DurationSeconds: 1},
		{Text: "it&amp;#39;s &quot;fine&quot; &amp; well", OffsetSeconds: 2, DurationSeconds: 1},
		{Text: "[MUSIC] [music]", OffsetSeconds: 4, DurationSeconds: 1},
	})
	require.Len(t, cues, 3)
	assert.Equal(t, "Hello", cues[0].Text)
	assert.Equal(t, `it's "fine" & well`, cues[1].Text)
	assert.Equal(t, "", cues[2].Text)
}

func TestDecodeEntities(t *testing.T) {
	assert.Equal(t, "a < b > c", DecodeEntities("a &lt; b &gt; c"))
	assert.Equal(t, "don't", DecodeEntities("don&#39;t"))
}

func TestRender_CanonicalLayout(t *testing.T) {
	out := Render([]Cue{
		{Index: 1, StartSeconds: 0, EndSeconds: 1.5, Text: "hello"},
		{Index: 2, StartSeconds: 2, EndSeconds: 4, Text: "world"},
	})

	want := "1\n00:00:00,000 --> 00:00:01,500\nhello\n\n" +
		"2\n00:00:02,000 --> 00:00:04,000\nworld\n\n"
	assert.Equal(t, want, out)
}

func TestWriteFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.srt")
	cues := FromTimeline(timeline.Parse("0:00 - one\n0:02 - two"))
	require.NoError(t, WriteFile(path, cues))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "1\n00:00:00,000 --> "))
	assert.True(t, strings.HasSuffix(string(data), "two\n\n"))
}

func TestWriteFile_RejectsEmpty(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "empty.srt"), nil)
	require.Error(t, err)
}

func TestDetectLanguage(t *testing.T) {
	tag := DetectLanguage([]Segment{
		{Text: "the quick brown fox jumps over the lazy dog"},
		{Text: "this transcript is written in plain english"},
	})
	assert.Equal(t, "en", tag.String())

	assert.Equal(t, "und", DetectLanguage(nil).String())
}
