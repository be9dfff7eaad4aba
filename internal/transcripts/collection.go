// Package transcripts keeps the fetched transcript table: an ordered,
// videoId-keyed collection plus the text renderings derived from it.
package transcripts

import (
	"sync"

	"github.com/tubedesk/tubedesk/internal/remote"
)

// Collection holds transcript responses keyed by videoId. Re-submitting
// an existing videoId updates the entry in place; order follows first
// submission.
type Collection struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]remote.TranscriptResponse
}

func NewCollection() *Collection {
	return &Collection{
		byID: make(map[string]remote.TranscriptResponse),
	}
}

// Upsert stores responses, updating entries whose videoId is already
// present instead of duplicating them.
func (c *Collection) Upsert(responses ...remote.TranscriptResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, resp := range responses {
		if resp.VideoID == "" {
			continue
		}
		if _, exists := c.byID[resp.VideoID]; !exists {
			c.order = append(c.order, resp.VideoID)
		}
		c.byID[resp.VideoID] = resp
	}
}

// List returns all responses in submission order.
func (c *Collection) List() []remote.TranscriptResponse {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ret := make([]remote.TranscriptResponse, 0, len(c.order))
	for _, id := range c.order {
		if resp, ok := c.byID[id]; ok {
			ret = append(ret, resp)
		}
	}
	return ret
}

// Get returns the response for one videoId.
func (c *Collection) Get(videoID string) (remote.TranscriptResponse, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	resp, ok := c.byID[videoID]
	return resp, ok
}

// Delete removes exactly the given videoId, reporting whether it was
// present.
func (c *Collection) Delete(videoID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.byID[videoID]; !ok {
		return false
	}
	delete(c.byID, videoID)
	for i, id := range c.order {
		if id == videoID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// Page returns the slice of responses for a zero-based page index.
func (c *Collection) Page(pageIndex, pageSize int) []remote.TranscriptResponse {
	all := c.List()
	if pageSize <= 0 || pageIndex < 0 {
		return nil
	}
	start := pageIndex * pageSize
	if start >= len(all) {
		return nil
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}

// Len reports the number of stored responses.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byID)
}
