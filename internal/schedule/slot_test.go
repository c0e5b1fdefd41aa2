package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garage-client/api"
)

func window(start, end time.Time) api.AvailabilityWindow {
	return api.AvailabilityWindow{ID: 1, StartTime: start, EndTime: end}
}

func at(hour, min int) time.Time {
	return time.Date(2024, 1, 1, hour, min, 0, 0, time.UTC)
}

func TestSynthesize_HalfHourService(t *testing.T) {
	w := window(at(9, 0), at(10, 0))
	services := []api.Service{{ID: 1, Name: "Oil change", Duration: 30}}

	slots := Synthesize(w, services)

	require.Len(t, slots, 2)
	assert.Equal(t, at(9, 0), slots[0].Start)
	assert.Equal(t, at(9, 30), slots[0].End)
	assert.Equal(t, at(9, 30), slots[1].Start)
	assert.Equal(t, at(10, 0), slots[1].End)
}

func TestSynthesize_LongerServiceDropsLateStarts(t *testing.T) {
	w := window(at(9, 0), at(10, 0))
	services := []api.Service{{ID: 2, Name: "Brake check", Duration: 45}}

	slots := Synthesize(w, services)

	require.Len(t, slots, 1)
	assert.Equal(t, at(9, 0), slots[0].Start)
	assert.Equal(t, at(9, 45), slots[0].End)
}

func TestSynthesize_NoServicesSelected(t *testing.T) {
	w := window(at(9, 0), at(17, 0))

	assert.Empty(t, Synthesize(w, nil))
	assert.Empty(t, Synthesize(w, []api.Service{}))
}

func TestSynthesize_ServiceLongerThanWindow(t *testing.T) {
	w := window(at(9, 0), at(10, 0))
	services := []api.Service{{ID: 3, Name: "Engine overhaul", Duration: 90}}

	assert.Empty(t, Synthesize(w, services))
}

func TestSynthesize_MultipleServicesSumDurations(t *testing.T) {
	w := window(at(9, 0), at(12, 0))
	services := []api.Service{
		{ID: 1, Duration: 60},
		{ID: 2, Duration: 45},
	}

	slots := Synthesize(w, services)

	// total 105 min; last start that still fits is 10:15, so starts are
	// 09:00, 09:30, 10:00.
	require.Len(t, slots, 3)
	for _, slot := range slots {
		assert.Equal(t, 105*time.Minute, slot.End.Sub(slot.Start))
		assert.False(t, slot.End.After(w.EndTime))
	}
	assert.Equal(t, w.StartTime, slots[0].Start)
}

func TestSynthesize_FirstSlotStartsAtWindowStart(t *testing.T) {
	w := window(at(8, 15), at(11, 0))
	services := []api.Service{{ID: 1, Duration: 30}}

	slots := Synthesize(w, services)

	require.NotEmpty(t, slots)
	assert.Equal(t, w.StartTime, slots[0].Start)
	for i := 1; i < len(slots); i++ {
		assert.Equal(t, SlotStep, slots[i].Start.Sub(slots[i-1].Start))
	}
}

func TestSynthesize_Deterministic(t *testing.T) {
	w := window(at(9, 0), at(17, 0))
	services := []api.Service{{ID: 1, Duration: 45}, {ID: 2, Duration: 30}}

	first := Synthesize(w, services)
	second := Synthesize(w, services)

	assert.Equal(t, first, second)
}

func TestSynthesizeAll_ConcatenatesWithoutMerging(t *testing.T) {
	// Overlapping windows stay independent; duplicates are expected.
	w1 := window(at(9, 0), at(10, 0))
	w2 := window(at(9, 30), at(10, 30))
	services := []api.Service{{ID: 1, Duration: 30}}

	slots := SynthesizeAll([]api.AvailabilityWindow{w1, w2}, services)

	require.Len(t, slots, 4)
	assert.Equal(t, at(9, 0), slots[0].Start)
	assert.Equal(t, at(9, 30), slots[1].Start)
	assert.Equal(t, at(9, 30), slots[2].Start)
	assert.Equal(t, at(10, 0), slots[3].Start)
}

func TestTotalDuration(t *testing.T) {
	services := []api.Service{{Duration: 30}, {Duration: 45}, {Duration: 15}}

	assert.Equal(t, 90*time.Minute, TotalDuration(services))
	assert.Equal(t, time.Duration(0), TotalDuration(nil))
}
