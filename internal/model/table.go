package model

import "time"

// DiningTable describes a physical table in a store.  A reservation
// may optionally be pinned to a table by the owner.  The struct
// corresponds to a row in the `dining_tables` table; the table name
// avoids the SQL keyword TABLE.
//
// Fields:
//  ID        – primary key identifier.
//  StoreID   – store to which this table belongs.
//  Name      – label shown to staff (e.g. "창가 2", "Hall A-3").
//  Seats     – number of seats at the table.
//  IsActive  – whether the table is bookable.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type DiningTable struct {
	ID        uint64    // dining_tables.id
	StoreID   uint64    // dining_tables.store_id
	Name      string    // dining_tables.name
	Seats     int       // dining_tables.seats
	IsActive  bool      // dining_tables.is_active
	CreatedAt time.Time // dining_tables.created_at
	UpdatedAt time.Time // dining_tables.updated_at
}
