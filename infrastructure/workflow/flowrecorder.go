package workflow

import "sync"

// FlowRecorder is an optional orchestrator observer that records, per task,
// which WorkflowContext keys were written. It exists to diagnose
// single-writer-discipline violations (spec.md §5's concurrency contract)
// during development; it never changes execution behavior.
type FlowRecorder struct {
	mu      sync.Mutex
	writes  map[string][]string // task id -> keys written
	order   []string
}

// NewFlowRecorder constructs an empty FlowRecorder.
func NewFlowRecorder() *FlowRecorder {
	return &FlowRecorder{writes: map[string][]string{}}
}

// Record notes that taskID wrote the given WorkflowContext keys.
func (r *FlowRecorder) Record(taskID string, keys ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, seen := r.writes[taskID]; !seen {
		r.order = append(r.order, taskID)
	}
	r.writes[taskID] = append(r.writes[taskID], keys...)
}

// FlowStatistics is a point-in-time summary of recorded writes, plus any
// key written by more than one task (a single-writer violation).
type FlowStatistics struct {
	TaskCount   int
	Violations  map[string][]string // key -> task ids that wrote it
}

// Statistics computes the current FlowStatistics.
func (r *FlowRecorder) Statistics() FlowStatistics {
	r.mu.Lock()
	defer r.mu.Unlock()

	writers := map[string][]string{}
	for taskID, keys := range r.writes {
		for _, k := range keys {
			writers[k] = append(writers[k], taskID)
		}
	}

	violations := map[string][]string{}
	for key, tasks := range writers {
		if len(unique(tasks)) > 1 {
			violations[key] = tasks
		}
	}

	return FlowStatistics{TaskCount: len(r.order), Violations: violations}
}

func unique(xs []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, x := range xs {
		if !seen[x] {
			seen[x] = true
			out = append(out, x)
		}
	}
	return out
}
