package offer

import (
	"fmt"
	"strings"
	"time"
)

// FieldError is a single validation violation. Violations are collected, not
// short-circuited, so a caller can fix everything in one round trip.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// Draft is the pre-validation shape of an offer write. Kind-specific fields
// are pointers so the validator can distinguish absent from zero.
type Draft struct {
	MenuItemID       string
	Kind             Kind
	PurchaseQuantity *int
	DiscountedPrice  *float64
	BuyQuantity      *int
	FreeQuantity     *int
	Title            string
	Description      string
	IsActive         *bool
	StartDate        *time.Time
	EndDate          *time.Time
}

// Validate checks a draft against the referenced item's current unit price
// and returns every violation found. An unknown kind yields a single error
// and suppresses further checks.
func Validate(d Draft, unitPrice float64) []FieldError {
	if !d.Kind.Known() {
		return []FieldError{{Field: "offerType", Message: fmt.Sprintf("unknown offer type %q", string(d.Kind))}}
	}

	var errs []FieldError

	if strings.TrimSpace(d.Title) == "" {
		errs = append(errs, FieldError{Field: "title", Message: "title is required"})
	}
	if d.StartDate != nil && d.EndDate != nil && !d.EndDate.After(*d.StartDate) {
		errs = append(errs, FieldError{Field: "endDate", Message: "endDate must be after startDate"})
	}

	switch d.Kind {
	case KindBulkPrice:
		errs = append(errs, validateBulkPrice(d, unitPrice)...)
	case KindBuyXGetYFree:
		errs = append(errs, validateBuyXGetYFree(d)...)
	}
	return errs
}

func validateBulkPrice(d Draft, unitPrice float64) []FieldError {
	var errs []FieldError
	if d.PurchaseQuantity == nil {
		errs = append(errs, FieldError{Field: "purchaseQuantity", Message: "purchaseQuantity is required for bulk-price offers"})
	} else {
		if *d.PurchaseQuantity < 1 {
			errs = append(errs, FieldError{Field: "purchaseQuantity", Message: "purchaseQuantity must be at least 1"})
		}
		if *d.PurchaseQuantity == 1 {
			errs = append(errs, FieldError{Field: "purchaseQuantity", Message: "purchaseQuantity must be greater than 1 for a bulk deal"})
		}
	}
	if d.DiscountedPrice == nil {
		errs = append(errs, FieldError{Field: "discountedPrice", Message: "discountedPrice is required for bulk-price offers"})
	} else if *d.DiscountedPrice < 1 {
		errs = append(errs, FieldError{Field: "discountedPrice", Message: "discountedPrice must be at least 1"})
	}
	if d.PurchaseQuantity != nil && d.DiscountedPrice != nil && *d.PurchaseQuantity >= 1 {
		bundle := unitPrice * float64(*d.PurchaseQuantity)
		if *d.DiscountedPrice >= bundle {
			errs = append(errs, FieldError{
				Field:   "discountedPrice",
				Message: fmt.Sprintf("discountedPrice must be below the regular price of %.2f for %d units", bundle, *d.PurchaseQuantity),
			})
		}
	}
	return errs
}

func validateBuyXGetYFree(d Draft) []FieldError {
	var errs []FieldError
	if d.BuyQuantity == nil {
		errs = append(errs, FieldError{Field: "buyQuantity", Message: "buyQuantity is required for buy-x-get-y-free offers"})
	} else if *d.BuyQuantity < 1 {
		errs = append(errs, FieldError{Field: "buyQuantity", Message: "buyQuantity must be at least 1"})
	}
	if d.FreeQuantity == nil {
		errs = append(errs, FieldError{Field: "freeQuantity", Message: "freeQuantity is required for buy-x-get-y-free offers"})
	} else if *d.FreeQuantity < 1 {
		errs = append(errs, FieldError{Field: "freeQuantity", Message: "freeQuantity must be at least 1"})
	}
	// A "buy 1 get N free" deal is legitimate; otherwise the giveaway may not
	// exceed the qualifying purchase.
	if d.BuyQuantity != nil && d.FreeQuantity != nil && *d.BuyQuantity > 1 && *d.FreeQuantity >= *d.BuyQuantity {
		errs = append(errs, FieldError{Field: "freeQuantity", Message: "freeQuantity must be below buyQuantity"})
	}
	return errs
}
