package schedule

import (
	"time"

	"garage-client/api"
)

// SlotStep is the spacing between candidate start times within an
// availability window.
const SlotStep = 30 * time.Minute

// CandidateSlot is a bookable start time that fits the selected
// services inside one availability window. Derived, never persisted.
type CandidateSlot struct {
	Start time.Time
	End   time.Time
}

// TotalDuration sums the durations of the selected services.
func TotalDuration(selected []api.Service) time.Duration {
	var total time.Duration
	for _, svc := range selected {
		total += time.Duration(svc.Duration) * time.Minute
	}
	return total
}

// Synthesize walks candidate start times from the window start in
// SlotStep increments and keeps those whose derived end still fits in
// the window. An empty selection books nothing, so the result is empty.
func Synthesize(window api.AvailabilityWindow, selected []api.Service) []CandidateSlot {
	if len(selected) == 0 {
		return nil
	}

	total := TotalDuration(selected)

	var slots []CandidateSlot
	for start := window.StartTime; start.Before(window.EndTime); start = start.Add(SlotStep) {
		end := start.Add(total)
		if end.After(window.EndTime) {
			continue
		}
		slots = append(slots, CandidateSlot{Start: start, End: end})
	}

	return slots
}

// SynthesizeAll concatenates the per-window sequences in window order.
// Overlapping windows are not merged; each is synthesized on its own.
func SynthesizeAll(windows []api.AvailabilityWindow, selected []api.Service) []CandidateSlot {
	var slots []CandidateSlot
	for _, w := range windows {
		slots = append(slots, Synthesize(w, selected)...)
	}
	return slots
}
