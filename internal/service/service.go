package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"garage-client/api"
	"garage-client/internal/schedule"
	"garage-client/pkg/response"
)

// Backend is the slice of the client the scheduling flows need; tests
// substitute a fake.
type Backend interface {
	// Availability
	MyAvailabilities(ctx context.Context) ([]api.AvailabilityWindow, error)
	AddAvailability(ctx context.Context, req api.AvailabilityRequest) (*api.AvailabilityWindow, error)
	UpdateAvailability(ctx context.Context, id int64, req api.AvailabilityRequest) (*api.AvailabilityWindow, error)
	DeleteAvailability(ctx context.Context, id int64) error
	MechanicAvailability(ctx context.Context, mechanicID int64) ([]api.AvailabilityWindow, error)

	// Booking
	Services(ctx context.Context) ([]api.Service, error)
	BookAppointment(ctx context.Context, req *api.BookAppointmentRequest, idempotencyKey string) (*api.Appointment, error)
}

type Service struct {
	backend Backend
	now     func() time.Time
}

func NewService(backend Backend) *Service {
	return &Service{backend: backend, now: time.Now}
}

// Availability management. Mutations never patch the local list; the
// full list is re-fetched so the view reflects server state
// (last write wins at the backend).

func (s *Service) Availability(ctx context.Context) ([]api.AvailabilityWindow, error) {
	const op = "service.Availability"

	windows, err := s.backend.MyAvailabilities(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return windows, nil
}

func (s *Service) AddAvailability(ctx context.Context, start, end time.Time) ([]api.AvailabilityWindow, error) {
	const op = "service.AddAvailability"

	if !start.Before(end) {
		return nil, fmt.Errorf("%s: start time must be before end time: %w", op, response.ErrValidation)
	}

	if _, err := s.backend.AddAvailability(ctx, api.AvailabilityRequest{StartTime: start, EndTime: end}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.Availability(ctx)
}

func (s *Service) UpdateAvailability(ctx context.Context, id int64, start, end time.Time) ([]api.AvailabilityWindow, error) {
	const op = "service.UpdateAvailability"

	if !start.Before(end) {
		return nil, fmt.Errorf("%s: start time must be before end time: %w", op, response.ErrValidation)
	}

	if _, err := s.backend.UpdateAvailability(ctx, id, api.AvailabilityRequest{StartTime: start, EndTime: end}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.Availability(ctx)
}

func (s *Service) DeleteAvailability(ctx context.Context, id int64) ([]api.AvailabilityWindow, error) {
	const op = "service.DeleteAvailability"

	if err := s.backend.DeleteAvailability(ctx, id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.Availability(ctx)
}

// PublishRecurring expands the weekly template and submits the windows
// one by one, each request awaited before the next, so their server-side
// order is deterministic. The first failure aborts the remainder;
// already-submitted windows stay persisted (no rollback). Returns how
// many windows made it.
func (s *Service) PublishRecurring(ctx context.Context, template schedule.WeeklyTemplate) (int, error) {
	const op = "service.PublishRecurring"

	windows, err := schedule.Expand(template, s.now())
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	for i, w := range windows {
		if _, err := s.backend.AddAvailability(ctx, w); err != nil {
			return i, fmt.Errorf("%s: window %d of %d: %w", op, i+1, len(windows), err)
		}
	}

	return len(windows), nil
}

// ResolveServices maps selected service ids onto the backend catalogue.
// An unknown id is a validation error, not a silently zero-length
// service.
func (s *Service) ResolveServices(ctx context.Context, serviceIDs []int64) ([]api.Service, error) {
	const op = "service.ResolveServices"

	catalogue, err := s.backend.Services(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	byID := make(map[int64]api.Service, len(catalogue))
	for _, svc := range catalogue {
		byID[svc.ID] = svc
	}

	selected := make([]api.Service, 0, len(serviceIDs))
	for _, id := range serviceIDs {
		svc, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%s: unknown service id %d: %w", op, id, response.ErrValidation)
		}
		selected = append(selected, svc)
	}

	return selected, nil
}

// BookableSlots fetches a mechanic's windows, drops those already
// started, and synthesizes candidate start times for the selected
// services. Windows are kept separate; their slot sequences are
// concatenated in window order.
func (s *Service) BookableSlots(ctx context.Context, mechanicID int64, selected []api.Service) ([]schedule.CandidateSlot, error) {
	const op = "service.BookableSlots"

	windows, err := s.backend.MechanicAvailability(ctx, mechanicID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	upcoming := make([]api.AvailabilityWindow, 0, len(windows))
	for _, w := range windows {
		if w.StartTime.Before(now) {
			continue
		}
		upcoming = append(upcoming, w)
	}

	return schedule.SynthesizeAll(upcoming, selected), nil
}

// Book validates the chosen start and service set before any network
// I/O, derives the end time with the same duration sum used for slot
// synthesis, and submits. The derived end is display data; the backend
// recomputes it and owns the conflict check, which may still reject a
// slot that looked free when the candidate list was fetched.
func (s *Service) Book(ctx context.Context, mechanicID int64, start time.Time, selected []api.Service) (*api.Appointment, error) {
	const op = "service.Book"

	if start.IsZero() {
		return nil, fmt.Errorf("%s: start time is not set: %w", op, response.ErrValidation)
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("%s: no services selected: %w", op, response.ErrValidation)
	}

	req := &api.BookAppointmentRequest{
		MechanicID: mechanicID,
		StartTime:  start,
		EndTime:    start.Add(schedule.TotalDuration(selected)),
		ServiceIDs: serviceIDs(selected),
	}

	appt, err := s.backend.BookAppointment(ctx, req, uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return appt, nil
}

func serviceIDs(services []api.Service) []int64 {
	ids := make([]int64, 0, len(services))
	for _, svc := range services {
		ids = append(ids, svc.ID)
	}
	return ids
}
