package client_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garage-client/api"
	"garage-client/internal/client"
	"garage-client/internal/session"
	"garage-client/pkg/response"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) *session.Store {
	t.Helper()

	mr := miniredis.RunT(t)
	persist, err := session.NewRedisPersistence(mr.Addr(), "garage:test-session")
	require.NoError(t, err)
	t.Cleanup(func() { persist.Close() })

	return session.NewStore(persist)
}

func signIn(t *testing.T, store *session.Store, token string) {
	t.Helper()
	require.NoError(t, store.Set(context.Background(), &session.Session{
		UserID:      1,
		Username:    "jan",
		Roles:       []string{"ROLE_USER"},
		AccessToken: token,
	}))
}

func newTestClient(t *testing.T, handler http.Handler) (*client.Client, *session.Store) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := newTestStore(t)
	return client.New(srv.URL, 5*time.Second, store, discardLogger()), store
}

func TestClient_FailsFastWithoutToken(t *testing.T) {
	hits := 0
	router := chi.NewRouter()
	router.Get("/mechanic/availability/my-availabilities", func(w http.ResponseWriter, r *http.Request) {
		hits++
		render.JSON(w, r, []api.AvailabilityWindow{})
	})

	cli, _ := newTestClient(t, router)

	_, err := cli.MyAvailabilities(context.Background())

	require.ErrorIs(t, err, response.ErrUnauthenticated)
	assert.Zero(t, hits, "no request may leave the client without a token")
}

func TestClient_SignInStoresSessionAndForwardsToken(t *testing.T) {
	router := chi.NewRouter()
	router.Post("/api/auth/signin", func(w http.ResponseWriter, r *http.Request) {
		var req api.SignInRequest
		assert.NoError(t, render.DecodeJSON(r.Body, &req))
		assert.Equal(t, "jan", req.Username)

		render.JSON(w, r, api.SignInResponse{
			ID:          1,
			Username:    "jan",
			Email:       "jan@example.com",
			Roles:       []string{"ROLE_USER"},
			AccessToken: "opaque-token",
			TokenType:   "Bearer",
		})
	})

	var gotAuth string
	router.Get("/user/cars/my-cars", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		render.JSON(w, r, []api.Car{{ID: 5, Brand: "Skoda", Model: "Octavia"}})
	})

	cli, store := newTestClient(t, router)

	sess, err := cli.SignIn(context.Background(), &api.SignInRequest{Username: "jan", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "opaque-token", sess.AccessToken)
	require.NotNil(t, store.Current())

	cars, err := cli.MyCars(context.Background())
	require.NoError(t, err)
	require.Len(t, cars, 1)
	assert.Equal(t, "Bearer opaque-token", gotAuth)
}

func TestClient_SignOutClearsSession(t *testing.T) {
	cli, store := newTestClient(t, chi.NewRouter())
	signIn(t, store, "opaque-token")

	require.NoError(t, cli.SignOut(context.Background()))

	assert.Nil(t, store.Current())
	_, err := store.Token()
	assert.ErrorIs(t, err, response.ErrUnauthenticated)
}

func TestClient_ConflictMapsToErrConflict(t *testing.T) {
	router := chi.NewRouter()
	router.Post("/user/appointments/book", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, response.ErrorBody{Message: "slot already booked"})
	})

	cli, store := newTestClient(t, router)
	signIn(t, store, "opaque-token")

	_, err := cli.BookAppointment(context.Background(), &api.BookAppointmentRequest{MechanicID: 1}, "key-1")

	require.ErrorIs(t, err, response.ErrConflict)

	var statusErr *response.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusConflict, statusErr.Status)
	assert.Equal(t, "slot already booked", statusErr.Message)
}

func TestClient_UnauthorizedMapsToErrUnauthenticated(t *testing.T) {
	router := chi.NewRouter()
	router.Get("/user/appointments/service", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.ErrorBody{Message: "token expired"})
	})

	cli, store := newTestClient(t, router)
	signIn(t, store, "stale-token")

	_, err := cli.Services(context.Background())

	require.ErrorIs(t, err, response.ErrUnauthenticated)
}

func TestClient_BookSendsIdempotencyKey(t *testing.T) {
	var gotKey string
	router := chi.NewRouter()
	router.Post("/user/appointments/book", func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("Idempotency-Key")
		render.JSON(w, r, api.Appointment{ID: 9})
	})

	cli, store := newTestClient(t, router)
	signIn(t, store, "opaque-token")

	appt, err := cli.BookAppointment(context.Background(), &api.BookAppointmentRequest{MechanicID: 1}, "attempt-7")
	require.NoError(t, err)
	assert.Equal(t, int64(9), appt.ID)
	assert.Equal(t, "attempt-7", gotKey)
}

func TestClient_CreatePaymentReturnsRedirectLink(t *testing.T) {
	router := chi.NewRouter()
	router.Post("/payment/create", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "7", r.URL.Query().Get("repairId"))
		w.Write([]byte("https://payments.example.com/checkout/abc123\n"))
	})

	cli, store := newTestClient(t, router)
	signIn(t, store, "opaque-token")

	link, err := cli.CreatePayment(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "https://payments.example.com/checkout/abc123", link)
}

func TestClient_AvailabilityRoundTrip(t *testing.T) {
	start := time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)

	router := chi.NewRouter()
	router.Post("/mechanic/availability/add", func(w http.ResponseWriter, r *http.Request) {
		var req api.AvailabilityRequest
		assert.NoError(t, render.DecodeJSON(r.Body, &req))
		render.JSON(w, r, api.AvailabilityWindow{ID: 11, StartTime: req.StartTime, EndTime: req.EndTime})
	})

	cli, store := newTestClient(t, router)
	signIn(t, store, "opaque-token")

	w, err := cli.AddAvailability(context.Background(), api.AvailabilityRequest{
		StartTime: start,
		EndTime:   start.Add(8 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), w.ID)
	assert.True(t, w.StartTime.Equal(start))
}
