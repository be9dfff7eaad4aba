package batch

import "time"

type Status string

const (
	StatusPending Status = "pending"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Kind names the remote operation a batch drives.
type Kind string

const (
	KindAudio    Kind = "audio"
	KindVideo    Kind = "video"
	KindSubtitle Kind = "subtitle"
)

// Item is one tracked entry of a batch, keyed by URL or filename.
// Progress only moves forward while the item is loading; it is forced
// to 100 on success and reset to 0 on failure.
type Item struct {
	Key       string    `json:"key"`
	Status    Status    `json:"status"`
	Progress  int       `json:"progress"`
	Title     string    `json:"title,omitempty"`
	Artifact  string    `json:"artifact,omitempty"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Summary is the end-of-batch notification payload.
type Summary struct {
	SuccessCount int `json:"success_count"`
	Total        int `json:"total"`
}

// Result is the payload an Executor produces for a successful item.
type Result struct {
	// Filename is the explicit artifact name; when empty the sink
	// derives a sequence-numbered one.
	Filename string
	Data     []byte
	// Title is display metadata, e.g. the name the backend suggested.
	Title string
}
