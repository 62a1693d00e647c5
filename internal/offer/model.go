package offer

import "time"

// Kind discriminates the two promotional offer variants.
type Kind string

const (
	// KindBulkPrice sells a fixed quantity of an item at a discounted bundle price.
	KindBulkPrice Kind = "bulk-price"
	// KindBuyXGetYFree grants free units with a qualifying purchase.
	KindBuyXGetYFree Kind = "buy-x-get-y-free"
)

// Known reports whether the kind is one of the supported variants.
func (k Kind) Known() bool {
	switch k {
	case KindBulkPrice, KindBuyXGetYFree:
		return true
	}
	return false
}

// BulkPrice is the bulk-price variant payload.
type BulkPrice struct {
	PurchaseQuantity int     `json:"purchaseQuantity"`
	DiscountedPrice  float64 `json:"discountedPrice"`
}

// BuyXGetYFree is the buy-x-get-y-free variant payload.
type BuyXGetYFree struct {
	BuyQuantity  int `json:"buyQuantity"`
	FreeQuantity int `json:"freeQuantity"`
}

// Offer is a promotional rule scoped to a business and one of its menu items.
// Exactly one of Bulk and BuyXGetY is set, matching Kind; the variant payload
// is a tagged union rather than a flat record of optionals so a missing field
// cannot slip past the per-kind validation.
type Offer struct {
	ID          string        `json:"id"`
	BusinessID  string        `json:"businessId"`
	MenuItemID  string        `json:"menuItemId"`
	Kind        Kind          `json:"offerType"`
	Bulk        *BulkPrice    `json:"bulkPrice,omitempty"`
	BuyXGetY    *BuyXGetYFree `json:"buyXGetYFree,omitempty"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	IsActive    bool          `json:"isActive"`
	StartDate   time.Time     `json:"startDate"`
	EndDate     *time.Time    `json:"endDate,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// View is the read-model returned by listing endpoints: the stored offer plus
// its derived lifecycle state and display values. Display is nil when the
// referenced menu item no longer resolves; listings still render.
type View struct {
	Offer
	Status  State    `json:"status"`
	Display *Display `json:"display"`
}
