package srt

// Cue is one timed subtitle block: a 1-based contiguous index, a time
// range with EndSeconds strictly greater than StartSeconds, and the cue
// text. Cues exist only transiently during serialization.
type Cue struct {
	Index        int
	StartSeconds float64
	EndSeconds   float64
	Text         string
}

// Segment is a transcript segment as returned by the backend: text with
// a start offset and duration, both in seconds.
type Segment struct {
	Text            string  `json:"text"`
	OffsetSeconds   float64 `json:"offset"`
	DurationSeconds float64 `json:"duration"`
	Lang            string  `json:"lang,omitempty"`
}

const (
	// fallbackDuration is assumed for the final cue when no explicit
	// duration is known.
	fallbackDuration = 2.0
	// minGap keeps EndSeconds strictly after StartSeconds when the
	// next-start rule would produce a zero or negative length.
	minGap = 0.001
)
