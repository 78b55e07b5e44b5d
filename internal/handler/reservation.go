package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/court-reservation/internal/booking"
	"github.com/iliyamo/court-reservation/internal/model"
)

// ReservationHandler exposes the booking workflow over HTTP. All status
// decisions live in the booking service; this layer parses requests,
// enforces ownership and translates sentinels into status codes.
type ReservationHandler struct {
	Svc *booking.Service
}

func NewReservationHandler(svc *booking.Service) *ReservationHandler {
	if svc == nil {
		panic("nil service passed to NewReservationHandler")
	}
	return &ReservationHandler{Svc: svc}
}

type createReservationReq struct {
	CourtID   string `json:"court_id"`
	Date      string `json:"date"`       // YYYY-MM-DD
	StartTime string `json:"start_time"` // HH:MM or HH:MM:SS
	EndTime   string `json:"end_time"`
}

type editReservationReq struct {
	CourtID   *string `json:"court_id"`
	Date      *string `json:"date"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
}

// owns reports whether the caller may touch the reservation: admins
// always, customers only their own rows. A false answer is reported as
// 404 so customers cannot probe other users' reservation ids.
func owns(c echo.Context, r *model.Reservation) bool {
	if isAdmin(c) {
		return true
	}
	uid, err := getUserID(c)
	return err == nil && uid == r.UserID
}

// Create books a new slot for the authenticated user.
func (h *ReservationHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	courtID, err := uuid.Parse(req.CourtID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid court_id"})
	}
	date, err := booking.ParseDate(req.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, want YYYY-MM-DD"})
	}
	start, err := booking.ParseClock(req.StartTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start_time"})
	}
	end, err := booking.ParseClock(req.EndTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end_time"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	r, err := h.Svc.Create(ctx, booking.CreateParams{
		CourtID: courtID,
		UserID:  uid,
		Date:    date,
		Start:   start,
		End:     end,
	})
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusCreated, newReservationView(r))
}

// Edit changes the slot fields of an existing reservation. Omitted
// fields keep their current value; status cannot be set here.
func (h *ReservationHandler) Edit(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var req editReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	var params booking.EditParams
	if req.CourtID != nil {
		courtID, err := uuid.Parse(*req.CourtID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid court_id"})
		}
		params.CourtID = &courtID
	}
	if req.Date != nil {
		date, err := booking.ParseDate(*req.Date)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, want YYYY-MM-DD"})
		}
		params.Date = &date
	}
	if req.StartTime != nil {
		start, err := booking.ParseClock(*req.StartTime)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start_time"})
		}
		params.Start = &start
	}
	if req.EndTime != nil {
		end, err := booking.ParseClock(*req.EndTime)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end_time"})
		}
		params.End = &end
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	r, err := h.Svc.Get(ctx, id)
	if err != nil {
		return bookingError(c, err)
	}
	if !owns(c, r) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	}

	updated, err := h.Svc.Edit(ctx, id, params)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, newReservationView(updated))
}

// Cancel releases a reservation's slot without deleting its record.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	return h.statusChange(c, func(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
		if err := h.Svc.Cancel(ctx, id); err != nil {
			return nil, err
		}
		return h.Svc.Get(ctx, id)
	})
}

// Reactivate returns a cancelled reservation to PENDING, provided its
// slot is still free.
func (h *ReservationHandler) Reactivate(c echo.Context) error {
	return h.statusChange(c, h.Svc.Reactivate)
}

func (h *ReservationHandler) statusChange(c echo.Context, apply func(context.Context, uuid.UUID) (*model.Reservation, error)) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	r, err := h.Svc.Get(ctx, id)
	if err != nil {
		return bookingError(c, err)
	}
	if !owns(c, r) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	}

	updated, err := apply(ctx, id)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, newReservationView(updated))
}

// Delete erases a reservation and its payment records. Admin only;
// the route guard enforces the role.
func (h *ReservationHandler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Svc.Delete(ctx, id); err != nil {
		return bookingError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListByCourtDate returns a court's schedule for one day.
func (h *ReservationHandler) ListByCourtDate(c echo.Context) error {
	courtID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid court id"})
	}
	date, err := booking.ParseDate(c.QueryParam("date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, want YYYY-MM-DD"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Svc.ListByCourtAndDate(ctx, courtID, date)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": newReservationViews(list)})
}

// Mine returns the authenticated user's reservations, newest first.
func (h *ReservationHandler) Mine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Svc.ListByUser(ctx, uid)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": newReservationViews(list)})
}

// Detail returns the receipt view: the reservation, its court's name
// and the slot price at the court's hourly rate.
func (h *ReservationHandler) Detail(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	d, err := h.Svc.Details(ctx, id)
	if err != nil {
		return bookingError(c, err)
	}
	if !owns(c, d.Reservation) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"reservation": newReservationView(d.Reservation),
		"court_name":  d.CourtName,
		"price_cents": d.PriceCents,
	})
}
