// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationStatusEvent is published whenever a reservation changes status.
// It carries enough information for downstream consumers (settlement,
// notification, analytics) to act without querying the primary database.
type ReservationStatusEvent struct {
	ReservationID     uint64 `json:"reservation_id"`
	ReservationNumber string `json:"reservation_number"`
	StoreID           uint64 `json:"store_id"`
	StoreName         string `json:"store_name"`
	CustomerID        uint64 `json:"customer_id"`
	ReservationDate   string `json:"reservation_date"`
	ReservationTime   string `json:"reservation_time"`
	PartySize         int    `json:"party_size"`
	PreviousStatus    string `json:"previous_status"`
	Status            string `json:"status"`
	TotalAmount       *int64 `json:"total_amount,omitempty"`
	OccurredAt        string `json:"occurred_at"`
}
