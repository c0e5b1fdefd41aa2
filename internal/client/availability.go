package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"garage-client/api"
)

// MyAvailabilities lists the signed-in mechanic's own windows.
func (c *Client) MyAvailabilities(ctx context.Context) ([]api.AvailabilityWindow, error) {
	const op = "client.MyAvailabilities"

	var out []api.AvailabilityWindow
	if err := c.do(ctx, call{method: http.MethodGet, path: "/mechanic/availability/my-availabilities", authed: true}, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (c *Client) AddAvailability(ctx context.Context, req api.AvailabilityRequest) (*api.AvailabilityWindow, error) {
	const op = "client.AddAvailability"

	var out api.AvailabilityWindow
	if err := c.do(ctx, call{method: http.MethodPost, path: "/mechanic/availability/add", body: req, authed: true}, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}

func (c *Client) UpdateAvailability(ctx context.Context, id int64, req api.AvailabilityRequest) (*api.AvailabilityWindow, error) {
	const op = "client.UpdateAvailability"

	var out api.AvailabilityWindow
	if err := c.do(ctx, call{method: http.MethodPut, path: "/mechanic/availability/update/" + strconv.FormatInt(id, 10), body: req, authed: true}, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}

func (c *Client) DeleteAvailability(ctx context.Context, id int64) error {
	const op = "client.DeleteAvailability"

	if err := c.do(ctx, call{method: http.MethodDelete, path: "/mechanic/availability/delete/" + strconv.FormatInt(id, 10), authed: true}, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// MechanicAvailability is the booking user's read-only view of one
// mechanic's windows.
func (c *Client) MechanicAvailability(ctx context.Context, mechanicID int64) ([]api.AvailabilityWindow, error) {
	const op = "client.MechanicAvailability"

	var out []api.AvailabilityWindow
	if err := c.do(ctx, call{method: http.MethodGet, path: "/api/user/mechanic-availability/" + strconv.FormatInt(mechanicID, 10), authed: true}, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (c *Client) MechanicsWithAvailability(ctx context.Context) ([]api.Mechanic, error) {
	const op = "client.MechanicsWithAvailability"

	var out []api.Mechanic
	if err := c.do(ctx, call{method: http.MethodGet, path: "/api/user/mechanics-with-availability", authed: true}, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// Services fetches the billable service catalogue with durations.
func (c *Client) Services(ctx context.Context) ([]api.Service, error) {
	const op = "client.Services"

	var out []api.Service
	if err := c.do(ctx, call{method: http.MethodGet, path: "/user/appointments/service", authed: true}, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}
