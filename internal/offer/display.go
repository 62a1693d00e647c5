package offer

import (
	"fmt"
	"strconv"

	"github.com/mandi-labs/backend-mandi/internal/pricing"
)

// Display carries the human-readable projection of an offer against the
// referenced item's current price. It is computed at read time and never
// persisted: a stored copy would go stale the moment the item price changes.
type Display struct {
	Text               string `json:"displayText"`
	DiscountPercentage int    `json:"discountPercentage"`
}

// ComputeDisplay derives the display text and discount percentage for the
// offer given the item's current state. It returns nil when the offer kind is
// unknown or the payload for the kind is missing.
func ComputeDisplay(o Offer, itemName string, unitPrice float64) *Display {
	switch o.Kind {
	case KindBulkPrice:
		if o.Bulk == nil {
			return nil
		}
		return bulkDisplay(*o.Bulk, itemName, unitPrice)
	case KindBuyXGetYFree:
		if o.BuyXGetY == nil {
			return nil
		}
		return buyXGetYDisplay(*o.BuyXGetY, unitPrice)
	}
	return nil
}

func bulkDisplay(p BulkPrice, itemName string, unitPrice float64) *Display {
	bundle := unitPrice * float64(p.PurchaseQuantity)
	savings := pricing.Round2(bundle - p.DiscountedPrice)
	pct := 0
	if bundle > 0 {
		pct = pricing.RoundPercent((bundle - p.DiscountedPrice) / bundle * 100)
	}
	return &Display{
		Text: fmt.Sprintf("Buy %d %s for ₹%s (Save ₹%s)",
			p.PurchaseQuantity, itemName, money(p.DiscountedPrice), money(savings)),
		DiscountPercentage: pct,
	}
}

func buyXGetYDisplay(p BuyXGetYFree, unitPrice float64) *Display {
	total := p.BuyQuantity + p.FreeQuantity
	if total <= 0 {
		return nil
	}
	effective := pricing.Round2(float64(p.BuyQuantity) * unitPrice / float64(total))
	pct := pricing.RoundPercent(float64(p.FreeQuantity) / float64(total) * 100)
	return &Display{
		Text: fmt.Sprintf("Buy %d Get %d Free - Effective price ₹%.2f per item",
			p.BuyQuantity, p.FreeQuantity, effective),
		DiscountPercentage: pct,
	}
}

// money renders an amount without trailing zeros (₹250, ₹66.67).
func money(v float64) string {
	return strconv.FormatFloat(pricing.Round2(v), 'f', -1, 64)
}
