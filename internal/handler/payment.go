package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/court-reservation/internal/booking"
	"github.com/iliyamo/court-reservation/internal/model"
	"github.com/iliyamo/court-reservation/internal/queue"
	queue_publisher "github.com/iliyamo/court-reservation/internal/service"
)

// PaymentHandler settles reservations. Confirming is the only path
// from PENDING to CONFIRMED; the amount is always computed server-side
// from the court's hourly rate, never taken from the client.
type PaymentHandler struct {
	Svc *booking.Service
}

func NewPaymentHandler(svc *booking.Service) *PaymentHandler {
	if svc == nil {
		panic("nil service passed to NewPaymentHandler")
	}
	return &PaymentHandler{Svc: svc}
}

type payReq struct {
	Method        string `json:"method"` // CASH | CARD | TRANSFER
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
}

type paymentView struct {
	ID            string    `json:"id"`
	ReservationID string    `json:"reservation_id"`
	InvoiceNumber string    `json:"invoice_number"`
	AmountCents   int64     `json:"amount_cents"`
	Method        string    `json:"method"`
	Status        string    `json:"status"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email,omitempty"`
	CustomerPhone string    `json:"customer_phone,omitempty"`
	PaidAt        time.Time `json:"paid_at"`
}

func newPaymentView(p *model.Payment) paymentView {
	return paymentView{
		ID:            p.ID.String(),
		ReservationID: p.ReservationID.String(),
		InvoiceNumber: p.InvoiceNumber,
		AmountCents:   p.AmountCents,
		Method:        string(p.Method),
		Status:        p.Status,
		CustomerName:  p.CustomerName,
		CustomerEmail: p.CustomerEmail,
		CustomerPhone: p.CustomerPhone,
		PaidAt:        p.PaidAt,
	}
}

// Confirm records a payment for a PENDING reservation and flips it to
// CONFIRMED. On success a reservation.confirmed event is published;
// publish failures are logged by the publisher and never fail the
// request, the payment is already committed.
func (h *PaymentHandler) Confirm(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var req payReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	method, err := model.ParsePaymentMethod(req.Method)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid method, want CASH, CARD or TRANSFER"})
	}
	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "customer_name required"})
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

	pay, err := h.Svc.ConfirmPayment(ctx, id, booking.PaymentParams{
		AmountCents:   d.PriceCents,
		Method:        method,
		CustomerName:  name,
		CustomerEmail: strings.TrimSpace(req.CustomerEmail),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
	})
	if err != nil {
		return bookingError(c, err)
	}

	r := d.Reservation
	event := queue.ReservationConfirmedEvent{
		ReservationID:   r.ID.String(),
		ReservationCode: r.Code,
		UserID:          r.UserID,
		CourtID:         r.CourtID.String(),
		CourtName:       d.CourtName,
		Date:            r.Date.Format(booking.DateLayout),
		StartTime:       booking.FormatClock(r.Start),
		EndTime:         booking.FormatClock(r.End),
		InvoiceNumber:   pay.InvoiceNumber,
		AmountCents:     pay.AmountCents,
		Method:          string(pay.Method),
		ConfirmedAt:     pay.PaidAt.Format(time.RFC3339),
	}
	go func() {
		pubCtx, pubCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer pubCancel()
		_ = queue_publisher.PublishReservationConfirmed(pubCtx, event)
	}()

	return c.JSON(http.StatusCreated, newPaymentView(pay))
}

// Invoice returns the payment record of a settled reservation.
func (h *PaymentHandler) Invoice(c echo.Context) error {
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

	pay, err := h.Svc.Invoice(ctx, id)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, newPaymentView(pay))
}
