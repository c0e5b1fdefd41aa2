package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"garage-client/api"
)

func (c *Client) AddCar(ctx context.Context, req *api.CarRequest) (*api.Car, error) {
	const op = "client.AddCar"

	var out api.Car
	if err := c.do(ctx, call{method: http.MethodPost, path: "/user/cars/add", body: req, authed: true}, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}

func (c *Client) MyCars(ctx context.Context) ([]api.Car, error) {
	const op = "client.MyCars"

	var out []api.Car
	if err := c.do(ctx, call{method: http.MethodGet, path: "/user/cars/my-cars", authed: true}, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (c *Client) UpdateCar(ctx context.Context, id int64, req *api.CarRequest) (*api.Car, error) {
	const op = "client.UpdateCar"

	var out api.Car
	if err := c.do(ctx, call{method: http.MethodPut, path: "/user/cars/update/" + strconv.FormatInt(id, 10), body: req, authed: true}, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}

func (c *Client) DeleteCar(ctx context.Context, id int64) error {
	const op = "client.DeleteCar"

	if err := c.do(ctx, call{method: http.MethodDelete, path: "/user/cars/delete/" + strconv.FormatInt(id, 10), authed: true}, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *Client) CarDetails(ctx context.Context, id int64) (*api.Car, error) {
	const op = "client.CarDetails"

	var out api.Car
	if err := c.do(ctx, call{method: http.MethodGet, path: "/api/cars/" + strconv.FormatInt(id, 10), authed: true}, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}

// MechanicCarDetails is the mechanic's view of a customer car.
func (c *Client) MechanicCarDetails(ctx context.Context, id int64) (*api.Car, error) {
	const op = "client.MechanicCarDetails"

	var out api.Car
	if err := c.do(ctx, call{method: http.MethodGet, path: "/user/cars/mechanic/car-details/" + strconv.FormatInt(id, 10), authed: true}, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}
