package model

import "time"

// MenuItem is one dish on a store's menu, managed by the owner and
// shown on the public store detail page.  Corresponds to a row in
// the `menu_items` table.
//
// Fields:
//  ID          – primary key identifier.
//  StoreID     – store offering the item.
//  Name        – dish name.
//  Description – optional description (nullable).
//  Price       – price in won.
//  IsAvailable – whether the item is currently offered.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type MenuItem struct {
	ID          uint64    // menu_items.id
	StoreID     uint64    // menu_items.store_id
	Name        string    // menu_items.name
	Description *string   // menu_items.description (nullable)
	Price       int64     // menu_items.price
	IsAvailable bool      // menu_items.is_available
	CreatedAt   time.Time // menu_items.created_at
	UpdatedAt   time.Time // menu_items.updated_at
}
