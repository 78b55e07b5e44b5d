// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationConfirmedEvent is published when a payment settles a
// reservation. It carries enough information for downstream consumers
// to log, notify, or trigger analytics without querying the primary
// database.
type ReservationConfirmedEvent struct {
	ReservationID   string `json:"reservation_id"`
	ReservationCode string `json:"reservation_code"`
	UserID          uint64 `json:"user_id"`
	CourtID         string `json:"court_id"`
	CourtName       string `json:"court_name"`
	Date            string `json:"date"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	InvoiceNumber   string `json:"invoice_number"`
	AmountCents     int64  `json:"amount_cents"`
	Method          string `json:"method"`
	ConfirmedAt     string `json:"confirmed_at"`
}
