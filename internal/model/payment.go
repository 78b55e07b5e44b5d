package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PaymentMethod is the closed set of accepted payment methods.
type PaymentMethod string

const (
	MethodCash     PaymentMethod = "CASH"
	MethodCard     PaymentMethod = "CARD"
	MethodTransfer PaymentMethod = "TRANSFER"
)

// ParsePaymentMethod validates a raw method string at the boundary.
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	switch m := PaymentMethod(strings.ToUpper(strings.TrimSpace(raw))); m {
	case MethodCash, MethodCard, MethodTransfer:
		return m, nil
	default:
		return "", fmt.Errorf("unknown payment method %q", raw)
	}
}

// Payment is the record created when a reservation is paid for. It is
// one-to-one with a reservation and exists only for reservations that
// reached CONFIRMED; it is written in the same transaction as the status
// change. The customer contact fields are denormalized on purpose so
// the invoice stays readable even if the user account changes later.
//
// Fields:
//  ID              – primary key (UUID, payments.id).
//  ReservationID   – reservation this payment settles (payments.reservation_id).
//  InvoiceNumber   – human-readable invoice code, unique (e.g. "INV-9G4TXK2M").
//  AmountCents     – amount paid, in cents.
//  Method          – payment method.
//  Status          – payment state; always "CONFIRMED" once written.
//  CustomerName    – denormalized customer name.
//  CustomerEmail   – denormalized customer email.
//  CustomerPhone   – denormalized customer phone.
//  PaidAt          – instant the payment was confirmed.
//  CreatedAt       – row creation timestamp.
type Payment struct {
	ID            uuid.UUID
	ReservationID uuid.UUID
	InvoiceNumber string
	AmountCents   int64
	Method        PaymentMethod
	Status        string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	PaidAt        time.Time
	CreatedAt     time.Time
}
