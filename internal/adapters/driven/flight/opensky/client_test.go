package opensky

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trblackw/teton-tracker-sub001/internal/core/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient("id", "secret",
		WithBaseURL(server.URL),
		WithHTTPClient(server.Client()),
	)
}

func TestFlightStatus_Success(t *testing.T) {
	departure := time.Now().Add(-time.Hour).Unix()
	arrival := time.Now().Add(30 * time.Minute).Unix()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/flights/status", r.URL.Path)
		assert.Equal(t, "UA100", r.URL.Query().Get("number"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"flight_number": "UA100",
			"status": "en-route",
			"scheduled_departure": ` + strconv.FormatInt(departure, 10) + `,
			"estimated_arrival": ` + strconv.FormatInt(arrival, 10) + `,
			"delay_minutes": 15,
			"origin": "DEN",
			"destination": "JAC"
		}`))
	})

	status, err := client.FlightStatus(context.Background(), "UA100")
	require.NoError(t, err)

	assert.Equal(t, "UA100", status.FlightNumber)
	assert.Equal(t, "en-route", status.Status)
	assert.Equal(t, 15, status.DelayMinutes)
	assert.Equal(t, "DEN", status.Origin)
	assert.Equal(t, "JAC", status.Destination)
	assert.Equal(t, time.Unix(departure, 0), status.ScheduledDeparture)
	assert.Equal(t, time.Unix(arrival, 0), status.EstimatedArrival)
	assert.WithinDuration(t, time.Now(), status.RecordedAt, 5*time.Second)
}

func TestFlightStatus_EmptyFlightNumber(t *testing.T) {
	client := NewClient("id", "secret", WithHTTPClient(http.DefaultClient))

	_, err := client.FlightStatus(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFlightStatus_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.FlightStatus(context.Background(), "XX999")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFlightStatus_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.FlightStatus(context.Background(), "UA100")
	assert.ErrorIs(t, err, domain.ErrServiceUnavailable)
}

func TestFlightStatus_RateLimited(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "60")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.FlightStatus(context.Background(), "UA100")
	assert.ErrorIs(t, err, domain.ErrRateLimited)
}

func TestFlightStatus_MalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	})

	_, err := client.FlightStatus(context.Background(), "UA100")
	assert.Error(t, err)
}

func TestFlightStatus_ZeroTimesLeftZero(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"flight_number": "UA100", "status": "scheduled"}`))
	})

	status, err := client.FlightStatus(context.Background(), "UA100")
	require.NoError(t, err)
	assert.True(t, status.ScheduledDeparture.IsZero())
	assert.True(t, status.EstimatedArrival.IsZero())
}
