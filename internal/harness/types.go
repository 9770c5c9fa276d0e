package harness

import (
	"fmt"
	"strings"
	"sync"
)

// Trace operations.
const (
	OpClear   = "clear"
	OpAppend  = "append"
	OpSettled = "settled"
)

// TraceEvent is one page mutation or generation outcome, in the order the
// controller produced it.
type TraceEvent struct {
	Seq    int    `json:"seq"`
	Op     string `json:"op"`
	Slot   string `json:"slot,omitempty"`
	Detail string `json:"detail,omitempty"`
}

func (e TraceEvent) String() string {
	parts := []string{fmt.Sprintf("%d", e.Seq), e.Op}
	if e.Slot != "" {
		parts = append(parts, e.Slot)
	}
	if e.Detail != "" {
		parts = append(parts, e.Detail)
	}
	return strings.Join(parts, " ")
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace contains every page mutation and settled generation in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	Records       []int64  `json:"records"`
	Revealed      []int64  `json:"revealed"`
	Pending       int      `json:"pending"`
	Neighborhoods []string `json:"neighborhoods"`
	Cuisines      []string `json:"cuisines"`
	Markers       []string `json:"markers"`
	Navigated     []string `json:"navigated"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:      true,
		Trace:     []TraceEvent{},
		Errors:    []string{},
		Records:   []int64{},
		Revealed:  []int64{},
		Markers:   []string{},
		Navigated: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Snapshot renders the trace one event per line.
func (r *Result) Snapshot(name string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", name)
	for _, e := range r.Trace {
		b.WriteString(e.String())
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// recorder collects trace events from the controller goroutine.
type recorder struct {
	mu     sync.Mutex
	events []TraceEvent
}

func (r *recorder) add(op, slot, detail string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, TraceEvent{
		Seq:    len(r.events) + 1,
		Op:     op,
		Slot:   slot,
		Detail: detail,
	})
}

func (r *recorder) trace() []TraceEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]TraceEvent{}, r.events...)
}
