package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/court-reservation/internal/booking"
	"github.com/iliyamo/court-reservation/internal/model"
	"github.com/iliyamo/court-reservation/internal/repository"
)

func newTestContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestBookingErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"past date is a bad request", booking.ErrPastDate, http.StatusBadRequest},
		{"inverted interval is a bad request", booking.ErrStartNotBeforeEnd, http.StatusBadRequest},
		{"lead time is a bad request", booking.ErrLeadTime, http.StatusBadRequest},
		{"short slot is a bad request", booking.ErrTooShort, http.StatusBadRequest},
		{"slot conflict is a conflict", booking.ErrSlotConflict, http.StatusConflict},
		{"lost race is a conflict", booking.ErrConcurrentConflict, http.StatusConflict},
		{"bad transition is a conflict", booking.ErrInvalidTransition, http.StatusConflict},
		{"court in use is a conflict", repository.ErrCourtInUse, http.StatusConflict},
		{"missing court is not found", booking.ErrCourtNotFound, http.StatusNotFound},
		{"missing reservation is not found", booking.ErrReservationNotFound, http.StatusNotFound},
		{"missing payment is not found", booking.ErrPaymentNotFound, http.StatusNotFound},
		{"anything else is internal", assert.AnError, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newTestContext(t)
			require.NoError(t, bookingError(c, tc.err))
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestGetUserID(t *testing.T) {
	for _, v := range []any{uint64(7), int(7), int64(7), float64(7), "7"} {
		c, _ := newTestContext(t)
		c.Set("user_id", v)
		got, err := getUserID(c)
		require.NoError(t, err, "value %#v", v)
		assert.Equal(t, uint64(7), got)
	}

	c, _ := newTestContext(t)
	_, err := getUserID(c)
	assert.Error(t, err)
}

func TestReservationView(t *testing.T) {
	r := &model.Reservation{
		ID:      uuid.New(),
		Code:    "R-AB12CD34",
		CourtID: uuid.New(),
		UserID:  7,
		Date:    time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Start:   9*time.Hour + 30*time.Minute,
		End:     11 * time.Hour,
		Status:  model.StatusPending,
	}
	v := newReservationView(r)
	assert.Equal(t, "2024-06-01", v.Date)
	assert.Equal(t, "09:30:00", v.StartTime)
	assert.Equal(t, "11:00:00", v.EndTime)
	assert.Equal(t, "PENDING", v.Status)
	assert.Equal(t, r.ID.String(), v.ID)
}
