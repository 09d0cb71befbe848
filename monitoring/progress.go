package monitoring

import (
	"sync"
	"time"
)

// A ProgressBar is a tracker of the progress
type ProgressBar struct {
	lock sync.Mutex

	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
	Total     uint64    `json:"total"`
	Finished  uint64    `json:"finished"`
}

// IncrementFinished adds the number of blocks replayed since the last call.
func (b *ProgressBar) IncrementFinished(amount uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.Finished += amount
}

// ProgressState is a copy of a progress bar taken at one point in time.
type ProgressState struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
	Total     uint64    `json:"total"`
	Finished  uint64    `json:"finished"`
}

// Snapshot returns the current state of the bar.
func (b *ProgressBar) Snapshot() ProgressState {
	b.lock.Lock()
	defer b.lock.Unlock()

	return ProgressState{
		ID:        b.ID,
		Name:      b.Name,
		StartTime: b.StartTime,
		Total:     b.Total,
		Finished:  b.Finished,
	}
}
