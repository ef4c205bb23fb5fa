package domain

import "time"

type ItemCategory string

const (
	ItemCategoryLaptop    ItemCategory = "laptop"
	ItemCategoryPhone     ItemCategory = "phone"
	ItemCategoryTablet    ItemCategory = "tablet"
	ItemCategoryMonitor   ItemCategory = "monitor"
	ItemCategoryAccessory ItemCategory = "accessory"
	ItemCategoryOther     ItemCategory = "other"
)

func (c ItemCategory) Valid() bool {
	switch c {
	case ItemCategoryLaptop, ItemCategoryPhone, ItemCategoryTablet,
		ItemCategoryMonitor, ItemCategoryAccessory, ItemCategoryOther:
		return true
	}
	return false
}

type ItemStatus string

const (
	ItemStatusAvailable   ItemStatus = "available"
	ItemStatusBorrowed    ItemStatus = "borrowed"
	ItemStatusMaintenance ItemStatus = "maintenance"
	ItemStatusRetired     ItemStatus = "retired"
)

func (s ItemStatus) Valid() bool {
	switch s {
	case ItemStatusAvailable, ItemStatusBorrowed, ItemStatusMaintenance, ItemStatusRetired:
		return true
	}
	return false
}

type ItemCondition string

const (
	ItemConditionNew  ItemCondition = "new"
	ItemConditionGood ItemCondition = "good"
	ItemConditionFair ItemCondition = "fair"
	ItemConditionPoor ItemCondition = "poor"
)

func (c ItemCondition) Valid() bool {
	switch c {
	case ItemConditionNew, ItemConditionGood, ItemConditionFair, ItemConditionPoor:
		return true
	}
	return false
}

// SerialNumberNone is the sentinel for items without a serial number.
// Uniqueness is only enforced for real serials.
const SerialNumberNone = "N/A"

type Item struct {
	ID           int32        `json:"id"`
	Name         string       `json:"name"`
	Description  string       `json:"description,omitempty"`
	Category     ItemCategory `json:"category"`
	SerialNumber string       `json:"serial_number,omitempty"`
	Status       ItemStatus   `json:"status"`
	Condition    ItemCondition `json:"condition"`
	Location     string       `json:"location,omitempty"`
	PurchaseDate *time.Time   `json:"purchase_date,omitempty"`
	PurchasePriceCents int32  `json:"purchase_price_cents,omitempty"`
	// Quantity is the physical unit count (1 for serialized assets,
	// >1 mostly for accessories). AvailableQuantity is the single source
	// of truth for availability: 0 <= AvailableQuantity <= Quantity.
	Quantity          int32  `json:"quantity"`
	AvailableQuantity int32  `json:"available_quantity"`
	ImageKey          string `json:"image_key,omitempty"`
	ImageURL          string `json:"image_url,omitempty"`
	Notes             string `json:"notes,omitempty"`
	CreatedBy         int32  `json:"created_by"`
	CreatedOn         time.Time `json:"created_on"`
	UpdatedOn         time.Time `json:"updated_on"`
}

// Borrowable reports whether a new borrow request may target the item.
// Availability is the unit counter alone; status only blocks borrowing for
// the operator-set states.
func (i *Item) Borrowable() bool {
	return i.AvailableQuantity > 0 && i.Status != ItemStatusMaintenance && i.Status != ItemStatusRetired
}

type ItemStats struct {
	Total               int32 `json:"total"`
	Borrowed            int32 `json:"borrowed"`
	Pending             int32 `json:"pending"`
	TotalAccessories    int32 `json:"total_accessories"`
	BorrowedAccessories int32 `json:"borrowed_accessories"`
}
