package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"garage-client/api"
)

func (c *Client) AddRepair(ctx context.Context, req *api.AddRepairRequest) (*api.Repair, error) {
	const op = "client.AddRepair"

	var out api.Repair
	if err := c.do(ctx, call{method: http.MethodPost, path: "/mechanic/repairs/add", body: req, authed: true}, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}

func (c *Client) RepairHistoryByCar(ctx context.Context, carID int64) ([]api.Repair, error) {
	const op = "client.RepairHistoryByCar"

	var out []api.Repair
	if err := c.do(ctx, call{method: http.MethodGet, path: "/user/repairs/my-repairs/" + strconv.FormatInt(carID, 10), authed: true}, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (c *Client) UsedPartsByRepair(ctx context.Context, repairID int64) ([]api.UsedPart, error) {
	const op = "client.UsedPartsByRepair"

	var out []api.UsedPart
	if err := c.do(ctx, call{method: http.MethodGet, path: "/mechanic/repairs/" + strconv.FormatInt(repairID, 10) + "/used-parts", authed: true}, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// CreatePayment asks the backend to open a payment for a repair and
// returns the provider redirect URL as plain text.
func (c *Client) CreatePayment(ctx context.Context, repairID int64) (string, error) {
	const op = "client.CreatePayment"

	q := url.Values{}
	q.Set("repairId", strconv.FormatInt(repairID, 10))

	link, err := c.doText(ctx, call{method: http.MethodPost, path: "/payment/create", query: q, authed: true})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return link, nil
}

// VerifyPayment forwards the provider's redirect-in parameters so the
// backend can capture the payment.
func (c *Client) VerifyPayment(ctx context.Context, paymentID, token, payerID string) error {
	const op = "client.VerifyPayment"

	q := url.Values{}
	q.Set("paymentId", paymentID)
	q.Set("token", token)
	q.Set("PayerID", payerID)

	if err := c.do(ctx, call{method: http.MethodGet, path: "/payment/success", query: q}, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *Client) UpdatePaymentStatus(ctx context.Context, repairID int64, status string) error {
	const op = "client.UpdatePaymentStatus"

	q := url.Values{}
	q.Set("status", status)

	if err := c.do(ctx, call{method: http.MethodPut, path: "/payment/update-payment-status/" + strconv.FormatInt(repairID, 10), query: q, authed: true}, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
