package workflow

import (
	"sync"
	"time"
)

// RunStatus is the lifecycle status of a run or node invocation.
type RunStatus string

const (
	// StatusRunning indicates the run or invocation is in progress.
	StatusRunning RunStatus = "running"
	// StatusCompleted indicates normal completion.
	StatusCompleted RunStatus = "completed"
	// StatusFailed indicates the run or invocation failed.
	StatusFailed RunStatus = "failed"
)

// NodeRecord captures one node invocation within a run.
type NodeRecord struct {
	Node      string        `json:"node"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Status    RunStatus     `json:"status"`
	Error     string        `json:"error,omitempty"`
}

// Trace records the complete visitation path of a single run. Purely
// diagnostic: recording a trace has no effect on execution. A Trace is
// owned by one run at a time; pass a fresh Trace per Invoke.
type Trace struct {
	RunID     string        `json:"run_id"`
	Graph     string        `json:"graph"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Status    RunStatus     `json:"status"`
	Steps     []*NodeRecord `json:"steps"`
	Error     string        `json:"error,omitempty"`

	mu sync.Mutex
}

func (t *Trace) begin(runID, graph string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.RunID = runID
	t.Graph = graph
	t.StartTime = time.Now()
	t.Status = StatusRunning
	t.Steps = t.Steps[:0]
	t.Error = ""
}

func (t *Trace) nodeStart(node string) *NodeRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec := &NodeRecord{
		Node:      node,
		StartTime: time.Now(),
		Status:    StatusRunning,
	}
	t.Steps = append(t.Steps, rec)
	return rec
}

func (t *Trace) nodeEnd(rec *NodeRecord, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec.EndTime = time.Now()
	rec.Duration = rec.EndTime.Sub(rec.StartTime)
	if err != nil {
		rec.Status = StatusFailed
		rec.Error = err.Error()
	} else {
		rec.Status = StatusCompleted
	}
}

func (t *Trace) complete(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.EndTime = time.Now()
	t.Duration = t.EndTime.Sub(t.StartTime)
	if err != nil {
		t.Status = StatusFailed
		t.Error = err.Error()
	} else {
		t.Status = StatusCompleted
	}
}

// Visited returns the node names in invocation order.
func (t *Trace) Visited() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.Steps))
	for i, rec := range t.Steps {
		out[i] = rec.Node
	}
	return out
}
