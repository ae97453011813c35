package model

import "time"

// Reservation records a customer's booking for a slot at a store.
// A slot is the (store, date, time) tuple; at most one reservation
// with status PENDING or CONFIRMED may occupy a slot.  The calendar
// date and time-of-day are stored independently, matching the DATE
// and TIME columns of the `reservations` table.  Time-of-day values
// are "HH:MM" strings throughout the codebase.
//
// Fields:
//  ID                 – primary key identifier.
//  ReservationNumber  – human-readable number for display only.
//  StoreID            – store being booked.
//  CustomerID         – customer who made the reservation.
//  TableID            – table assigned by the owner (nullable).
//  ReservationDate    – calendar date of the booking (time-zone-naive).
//  ReservationTime    – time of day ("HH:MM").
//  PartySize          – number of guests, must be positive.
//  EstimatedDuration  – expected seating length in minutes (nullable).
//  DepositAmount      – deposit captured at creation, in won.
//  TotalAmount        – final bill, set only on completion (nullable).
//  SpecialRequests    – free-text requests from the customer (nullable).
//  ContactName        – override of the customer's profile name (nullable).
//  ContactPhone       – override of the customer's profile phone (nullable).
//  Status             – PENDING, CONFIRMED, COMPLETED, CANCELLED or NO_SHOW.
//  CancellationReason – populated only when status is CANCELLED.
//  ConfirmedAt        – stamped on the transition into CONFIRMED (nullable).
//  CompletedAt        – stamped on the transition into COMPLETED (nullable).
//  CreatedAt          – creation timestamp.
//  UpdatedAt          – last update timestamp.
type Reservation struct {
	ID                 uint64     // reservations.id
	ReservationNumber  string     // reservations.reservation_number
	StoreID            uint64     // reservations.store_id
	CustomerID         uint64     // reservations.customer_id
	TableID            *uint64    // reservations.table_id (nullable)
	ReservationDate    time.Time  // reservations.reservation_date
	ReservationTime    string     // reservations.reservation_time
	PartySize          int        // reservations.party_size
	EstimatedDuration  *int       // reservations.estimated_duration (nullable)
	DepositAmount      int64      // reservations.deposit_amount
	TotalAmount        *int64     // reservations.total_amount (nullable)
	SpecialRequests    *string    // reservations.special_requests (nullable)
	ContactName        *string    // reservations.contact_name (nullable)
	ContactPhone       *string    // reservations.contact_phone (nullable)
	Status             string     // reservations.status
	CancellationReason *string    // reservations.cancellation_reason (nullable)
	ConfirmedAt        *time.Time // reservations.confirmed_at (nullable)
	CompletedAt        *time.Time // reservations.completed_at (nullable)
	CreatedAt          time.Time  // reservations.created_at
	UpdatedAt          time.Time  // reservations.updated_at
}
