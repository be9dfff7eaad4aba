package persistence

import (
	"time"

	"github.com/tubedesk/tubedesk/internal/batch"
)

// ArchivedBatch is a finished batch as stored in the archive.
type ArchivedBatch struct {
	ID           string         `json:"id"`
	Kind         batch.Kind     `json:"kind"`
	SuccessCount int            `json:"success_count"`
	Total        int            `json:"total"`
	CreatedAt    time.Time      `json:"created_at"`
	FinishedAt   time.Time      `json:"finished_at"`
	Items        []ArchivedItem `json:"items,omitempty"`
}

type ArchivedItem struct {
	Key       string       `json:"key"`
	Status    batch.Status `json:"status"`
	Title     string       `json:"title,omitempty"`
	Artifact  string       `json:"artifact,omitempty"`
	Error     string       `json:"error,omitempty"`
	UpdatedAt time.Time    `json:"updated_at"`
}
