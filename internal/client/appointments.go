package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"garage-client/api"
)

// BookAppointment submits a booking. The idempotency key guards against
// double submission of the same attempt; the backend owns the conflict
// check, surfaced here as response.ErrConflict.
func (c *Client) BookAppointment(ctx context.Context, req *api.BookAppointmentRequest, idempotencyKey string) (*api.Appointment, error) {
	const op = "client.BookAppointment"

	var out api.Appointment
	cl := call{
		method:         http.MethodPost,
		path:           "/user/appointments/book",
		body:           req,
		authed:         true,
		idempotencyKey: idempotencyKey,
	}
	if err := c.do(ctx, cl, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}

func (c *Client) MyAppointments(ctx context.Context) ([]api.Appointment, error) {
	const op = "client.MyAppointments"

	var out []api.Appointment
	if err := c.do(ctx, call{method: http.MethodGet, path: "/user/appointments/my-appointments", authed: true}, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (c *Client) MechanicAppointments(ctx context.Context) ([]api.Appointment, error) {
	const op = "client.MechanicAppointments"

	var out []api.Appointment
	if err := c.do(ctx, call{method: http.MethodGet, path: "/user/appointments/mechanic/appointments", authed: true}, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (c *Client) AppointmentDetails(ctx context.Context, id int64) (*api.Appointment, error) {
	const op = "client.AppointmentDetails"

	var out api.Appointment
	if err := c.do(ctx, call{method: http.MethodGet, path: "/api/user/appointments/" + strconv.FormatInt(id, 10), authed: true}, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}

// AppointmentUserCars lists the booking user's cars in the context of
// one appointment, for the mechanic logging a repair.
func (c *Client) AppointmentUserCars(ctx context.Context, id int64) ([]api.Car, error) {
	const op = "client.AppointmentUserCars"

	var out []api.Car
	if err := c.do(ctx, call{method: http.MethodGet, path: "/user/appointments/" + strconv.FormatInt(id, 10) + "/user-cars", authed: true}, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (c *Client) CancelAppointment(ctx context.Context, id int64) error {
	const op = "client.CancelAppointment"

	if err := c.do(ctx, call{method: http.MethodDelete, path: "/user/appointments/cancel/" + strconv.FormatInt(id, 10), authed: true}, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *Client) ConfirmAppointment(ctx context.Context, id int64) error {
	const op = "client.ConfirmAppointment"

	if err := c.do(ctx, call{method: http.MethodPut, path: "/user/appointments/confirm/" + strconv.FormatInt(id, 10), authed: true}, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
