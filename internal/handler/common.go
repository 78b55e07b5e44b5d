package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/court-reservation/internal/booking"
	"github.com/iliyamo/court-reservation/internal/model"
	"github.com/iliyamo/court-reservation/internal/repository"
)

// getUserID extracts the user_id set by the JWT middleware.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

func isAdmin(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == "ADMIN"
}

// bookingError translates booking and repository sentinels into HTTP
// responses: broken validation rules are 400, lost races and forbidden
// status changes are 409, missing rows are 404.
func bookingError(c echo.Context, err error) error {
	switch {
	case booking.IsValidation(err):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrSlotConflict),
		errors.Is(err, booking.ErrConcurrentConflict),
		errors.Is(err, booking.ErrInvalidTransition),
		errors.Is(err, repository.ErrCourtInUse):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case booking.IsNotFound(err):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// reservationView is the wire shape of a reservation. Dates and clock
// times travel as the same strings the API accepts.
type reservationView struct {
	ID        string `json:"id"`
	Code      string `json:"code"`
	CourtID   string `json:"court_id"`
	UserID    uint64 `json:"user_id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Status    string `json:"status"`
}

func newReservationView(r *model.Reservation) reservationView {
	return reservationView{
		ID:        r.ID.String(),
		Code:      r.Code,
		CourtID:   r.CourtID.String(),
		UserID:    r.UserID,
		Date:      r.Date.Format(booking.DateLayout),
		StartTime: booking.FormatClock(r.Start),
		EndTime:   booking.FormatClock(r.End),
		Status:    string(r.Status),
	}
}

func newReservationViews(list []model.Reservation) []reservationView {
	out := make([]reservationView, 0, len(list))
	for i := range list {
		out = append(out, newReservationView(&list[i]))
	}
	return out
}
