package testutil

import (
	"sync"
	"time"

	"github.com/yungbote/forum-backend/internal/data/aggregates"
)

// HooksRecorder captures aggregate hook signals in tests.
type HooksRecorder struct {
	mu sync.Mutex

	Operations []OperationEvent
	Conflicts  []string
	Timeouts   []string
}

type OperationEvent struct {
	Name     string
	Status   string
	Duration time.Duration
}

var _ aggregates.Hooks = (*HooksRecorder)(nil)

func (h *HooksRecorder) ObserveOperation(name, status string, dur time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Operations = append(h.Operations, OperationEvent{
		Name:     name,
		Status:   status,
		Duration: dur,
	})
}

func (h *HooksRecorder) IncConflict(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Conflicts = append(h.Conflicts, name)
}

func (h *HooksRecorder) IncTimeout(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Timeouts = append(h.Timeouts, name)
}

// LastStatus returns the status of the most recent operation, or "".
func (h *HooksRecorder) LastStatus() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.Operations) == 0 {
		return ""
	}
	return h.Operations[len(h.Operations)-1].Status
}
