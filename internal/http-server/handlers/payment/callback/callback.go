package callback

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"garage-client/pkg/response"
	"garage-client/pkg/sl"
)

// PaymentVerifier confirms a provider redirect with the backend and
// marks the repair paid.
type PaymentVerifier interface {
	VerifyPayment(ctx context.Context, paymentID, token, payerID string) error
	UpdatePaymentStatus(ctx context.Context, repairID int64, status string) error
}

type Response struct {
	response.Response
	Status string `json:"status,omitempty"`
}

// New handles the provider's redirect back to the client: the provider
// appends paymentId/token/PayerID query parameters. The repair id is
// held by the running process rather than stashed in cross-navigation
// storage, so the redirect cannot be replayed against another repair.
// Each outcome is reported once on done.
func New(log *slog.Logger, verifier PaymentVerifier, repairID int64, done chan<- error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.payment.callback.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		paymentID := r.URL.Query().Get("paymentId")
		token := r.URL.Query().Get("token")
		payerID := r.URL.Query().Get("PayerID")

		if paymentID == "" || token == "" || payerID == "" {
			log.Error("Missing payment parameters")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.VALIDATION), "paymentId, token and PayerID are required"))
			return
		}

		if err := verifier.VerifyPayment(r.Context(), paymentID, token, payerID); err != nil {
			log.Error("Payment verification failed", sl.Err(err))
			w.WriteHeader(http.StatusBadGateway)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "payment was not approved"))
			report(done, err)
			return
		}

		if err := verifier.UpdatePaymentStatus(r.Context(), repairID, "Paid"); err != nil {
			log.Error("Failed to update payment status", sl.Err(err))
			w.WriteHeader(http.StatusBadGateway)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to update payment status"))
			report(done, err)
			return
		}

		log.Info("Payment completed", slog.Int64("repair_id", repairID))

		render.JSON(w, r, Response{Status: "paid"})
		report(done, nil)
	}
}

func report(done chan<- error, err error) {
	select {
	case done <- err:
	default:
	}
}
