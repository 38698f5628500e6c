package bottleneck

import (
	"fmt"
	"sort"
	"time"

	"chainsight/internal/dataset"
)

// RawEvent is one unvalidated record supplied by the caller. Delay may be a
// number or a numeric string depending on the upstream exporter.
type RawEvent struct {
	Timestamp string `json:"timestamp"`
	Step      string `json:"step"`
	Delay     any    `json:"delay"`
}

// Event is a validated process event. Delay is measured in hours.
type Event struct {
	Timestamp time.Time
	Step      string
	Delay     float64
}

// Record ranks one step's delay against the largest inter-event gap of the
// run. Impact exceeds 1 when the step's own delay is longer than any gap.
type Record struct {
	Step   string  `json:"step"`
	Impact float64 `json:"impact"`
	Delay  float64 `json:"delay"`
}

// ValidationError names the field and event that failed validation.
type ValidationError struct {
	Field  string
	Index  int
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("event %d: field %q %s", e.Index, e.Field, e.Reason)
	}
	return fmt.Sprintf("event %d: field %q %s (value %v)", e.Index, e.Field, e.Reason, e.Value)
}

// Validate coerces raw events into typed events. The first invalid field
// aborts the whole batch; partial results are never produced.
func Validate(raw []RawEvent) ([]Event, error) {
	events := make([]Event, 0, len(raw))

	for i, r := range raw {
		if r.Timestamp == "" {
			return nil, &ValidationError{Field: "timestamp", Index: i, Reason: "is missing"}
		}
		ts, ok := dataset.Time(r.Timestamp)
		if !ok {
			return nil, &ValidationError{Field: "timestamp", Index: i, Value: r.Timestamp, Reason: "is not a valid ISO-8601 instant"}
		}

		if r.Step == "" {
			return nil, &ValidationError{Field: "step", Index: i, Reason: "is missing"}
		}

		if r.Delay == nil {
			return nil, &ValidationError{Field: "delay", Index: i, Reason: "is missing"}
		}
		delay, ok := dataset.Float(r.Delay)
		if !ok {
			return nil, &ValidationError{Field: "delay", Index: i, Value: r.Delay, Reason: "is not numeric"}
		}
		if delay < 0 {
			return nil, &ValidationError{Field: "delay", Index: i, Value: r.Delay, Reason: "must be non-negative"}
		}

		events = append(events, Event{Timestamp: ts, Step: r.Step, Delay: delay})
	}

	return events, nil
}

// Sort returns the events ordered ascending by timestamp. The sort is
// stable, so ties keep their input order, and idempotent.
func Sort(events []Event) []Event {
	sorted := make([]Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return sorted
}

// Detect ranks every event after the first by delay impact: the event's own
// delay divided by the largest gap between consecutive events in the run
// (0 when every gap is 0). Records come back sorted by impact descending;
// equal impacts keep timestamp order.
func Detect(events []Event) []Record {
	if len(events) < 2 {
		return nil
	}

	sorted := Sort(events)

	maxGap := 0.0
	for i := 1; i < len(sorted); i++ {
		gap := sorted[i].Timestamp.Sub(sorted[i-1].Timestamp).Hours()
		if gap > maxGap {
			maxGap = gap
		}
	}

	// The first event has no preceding gap and is excluded from scoring.
	records := make([]Record, 0, len(sorted)-1)
	for _, ev := range sorted[1:] {
		impact := 0.0
		if maxGap > 0 {
			impact = ev.Delay / maxGap
		}
		records = append(records, Record{Step: ev.Step, Impact: impact, Delay: ev.Delay})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Impact > records[j].Impact
	})
	return records
}

// Delays extracts the per-event delay series in timestamp order. This is
// the series anomaly scoring runs on, not the derived inter-event gaps.
func Delays(events []Event) []float64 {
	sorted := Sort(events)
	delays := make([]float64, len(sorted))
	for i, ev := range sorted {
		delays[i] = ev.Delay
	}
	return delays
}
