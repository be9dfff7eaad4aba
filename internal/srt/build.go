package srt

import "github.com/tubedesk/tubedesk/internal/timeline"

// FromSegments builds cues from backend transcript segments. The end of
// each cue is the next segment's start minus 1ms; the last cue uses the
// segment's own duration, falling back to 2s when it carries none. Text
// is entity-decoded and stripped of [Music] tags.
func FromSegments(segments []Segment) []Cue {
	cues := make([]Cue, 0, len(segments))
	for i, segment := range segments {
		start := segment.OffsetSeconds
		var end float64
		if i+1 < len(segments) {
			end = segments[i+1].OffsetSeconds - minGap
		} else if segment.DurationSeconds > 0 {
			end = start + segment.DurationSeconds
		} else {
			end = start + fallbackDuration
		}

		cues = append(cues, Cue{
			Index:        i + 1,
			StartSeconds: start,
			EndSeconds:   clampEnd(start, end),
			Text:         StripMusicTags(DecodeEntities(segment.Text)),
		})
	}
	return cues
}

// FromTimeline builds cues from parsed timeline entries. Entries carry
// no duration, so the last cue always gets the 2s fallback.
func FromTimeline(entries []timeline.Entry) []Cue {
	cues := make([]Cue, 0, len(entries))
	for i, entry := range entries {
		start := entry.StartSeconds
		var end float64
		if i+1 < len(entries) {
			end = entries[i+1].StartSeconds - minGap
		} else {
			end = start + fallbackDuration
		}

		cues = append(cues, Cue{
			Index:        i + 1,
			StartSeconds: start,
			EndSeconds:   clampEnd(start, end),
			Text:         StripMusicTags(entry.Text),
		})
	}
	return cues
}

// clampEnd enforces a strictly positive cue length when overlapping or
// decreasing source timestamps would yield end <= start.
func clampEnd(start, end float64) float64 {
	if end <= start {
		return start + minGap
	}
	return end
}
