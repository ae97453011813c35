package model

import "time"

// Review is a customer's rating of a completed reservation.  Each
// reservation can carry at most one review (unique constraint on
// reservation_id), which is what makes the derived can_review flag
// computable from existence alone.
//
// Fields:
//  ID            – primary key identifier.
//  ReservationID – reviewed reservation (unique).
//  StoreID       – store the review counts toward.
//  CustomerID    – author of the review.
//  Rating        – 1 through 5.
//  Comment       – free-text body.
//  CreatedAt     – creation timestamp.
type Review struct {
	ID            uint64    // reviews.id
	ReservationID uint64    // reviews.reservation_id
	StoreID       uint64    // reviews.store_id
	CustomerID    uint64    // reviews.customer_id
	Rating        int       // reviews.rating
	Comment       string    // reviews.comment
	CreatedAt     time.Time // reviews.created_at
}
