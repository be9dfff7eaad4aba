package service

import "errors"

var (
	// ErrEmptyInput is returned when an operation receives no usable
	// input text.
	ErrEmptyInput = errors.New("input is empty")
	// ErrNotFormatted is returned when a fetch is attempted on raw
	// input that has not been normalized first.
	ErrNotFormatted = errors.New("urls must be formatted first")
	// ErrNoVideoIDs is returned when no token yields a video ID.
	ErrNoVideoIDs = errors.New("no valid video ids found")
	// ErrNoTranscripts is returned by exports that need at least one
	// fetched transcript.
	ErrNoTranscripts = errors.New("no transcripts loaded")
	// ErrNoChannelListing is returned when a channel export is
	// requested before any channel has been enumerated.
	ErrNoChannelListing = errors.New("no channel listing loaded")
	// ErrNotFound is returned for lookups of unknown transcripts or
	// batches.
	ErrNotFound = errors.New("not found")
	// ErrNoTimelineEntries is returned when timeline text contains no
	// parseable "M:SS - text" lines.
	ErrNoTimelineEntries = errors.New("no valid time entries found")
)
