package model

import "time"

// Store represents a restaurant listed on the marketplace.  A store
// belongs to exactly one owner and exposes a weekly business-hours
// table plus a seating capacity used to validate incoming
// reservations.  This struct corresponds to a row in the `stores`
// table.
//
// Fields:
//  ID          – primary key identifier.
//  OwnerID     – user ID of the store owner.
//  Name        – display name of the store.
//  Description – optional free-text description.
//  Address     – street address shown to customers.
//  Phone       – contact phone of the store (nullable).
//  Capacity    – maximum party size a single reservation may carry.
//  RatingAvg   – average review rating, recomputed on review writes.
//  ReviewCount – number of reviews backing RatingAvg.
//  IsActive    – whether the store accepts reservations.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Store struct {
	ID          uint64    // stores.id
	OwnerID     uint64    // stores.owner_id
	Name        string    // stores.name
	Description *string   // stores.description (nullable)
	Address     string    // stores.address
	Phone       *string   // stores.phone (nullable)
	Capacity    int       // stores.capacity
	RatingAvg   float64   // stores.rating_avg
	ReviewCount int       // stores.review_count
	IsActive    bool      // stores.is_active
	CreatedAt   time.Time // stores.created_at
	UpdatedAt   time.Time // stores.updated_at
}

// BusinessHour is one day-of-week entry in a store's weekly hours
// table, stored in the `business_hours` table.  Times are kept as
// "HH:MM" strings independent of any calendar date.  A break window
// is optional; both ends are null when the store serves through the
// day.
//
// Fields:
//  ID         – primary key identifier.
//  StoreID    – store this entry belongs to.
//  DayOfWeek  – 0 (Sunday) through 6 (Saturday).
//  IsClosed   – the store does not open on this day at all.
//  OpenTime   – opening time ("HH:MM"), empty when closed.
//  CloseTime  – closing time ("HH:MM"), empty when closed.
//  BreakStart – start of the mid-day break (nullable).
//  BreakEnd   – end of the mid-day break (nullable).
type BusinessHour struct {
	ID         uint64  // business_hours.id
	StoreID    uint64  // business_hours.store_id
	DayOfWeek  int     // business_hours.day_of_week
	IsClosed   bool    // business_hours.is_closed
	OpenTime   string  // business_hours.open_time
	CloseTime  string  // business_hours.close_time
	BreakStart *string // business_hours.break_start (nullable)
	BreakEnd   *string // business_hours.break_end (nullable)
}
