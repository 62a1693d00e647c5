package checkout

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mandi-labs/backend-mandi/internal/common"
	"github.com/mandi-labs/backend-mandi/internal/obs"
	"github.com/mandi-labs/backend-mandi/internal/pricing"
	"github.com/mandi-labs/backend-mandi/internal/settings"
)

// Input is a checkout-charges computation request. Distance is kilometers,
// weight is kilograms; both default to zero when omitted.
type Input struct {
	OrderAmount float64 `json:"orderAmount"`
	Distance    float64 `json:"distance"`
	Weight      float64 `json:"weight"`
	Category    string  `json:"category"`
}

// Output is the computed charge breakdown. All amounts are in the request's
// currency unit, rounded to 2 decimals.
type Output struct {
	Subtotal       float64 `json:"subtotal"`
	DeliveryCharge float64 `json:"deliveryCharge"`
	GSTAmount      float64 `json:"gstAmount"`
	GSTPercentage  float64 `json:"gstPercentage"`
	Category       string  `json:"category"`
	TotalAmount    float64 `json:"totalAmount"`
	ChargeType     string  `json:"chargeType"`
}

// SettingsResolver yields the settings record checkout computations run
// against.
type SettingsResolver interface {
	Resolve(ctx context.Context) (settings.Settings, error)
}

// Service aggregates the delivery and GST calculators over the active
// settings record.
type Service struct {
	Settings SettingsResolver
	Logger   zerolog.Logger
}

// Compute resolves the active settings and produces the full charge
// breakdown for an order.
func (s *Service) Compute(ctx context.Context, in Input) (Output, error) {
	if in.OrderAmount <= 0 {
		return Output{}, common.InvalidInput("orderAmount must be greater than zero", nil)
	}
	cfg, err := s.Settings.Resolve(ctx)
	if err != nil {
		return Output{}, err
	}

	delivery := pricing.ComputeDeliveryCharge(in.OrderAmount, in.Distance, in.Weight, cfg.Delivery)
	gst := pricing.ComputeGST(in.OrderAmount, in.Category, cfg.GST)
	if obs.CheckoutComputeTotal != nil {
		obs.CheckoutComputeTotal.WithLabelValues(delivery.ChargeType, gst.Category).Inc()
	}
	s.Logger.Debug().
		Float64("order_amount", in.OrderAmount).
		Str("charge_type", delivery.ChargeType).
		Str("gst_category", gst.Category).
		Float64("delivery_charge", delivery.Charge).
		Float64("gst_amount", gst.Amount).
		Msg("checkout charges computed")

	return Output{
		Subtotal:       pricing.Round2(in.OrderAmount),
		DeliveryCharge: delivery.Charge,
		GSTAmount:      gst.Amount,
		GSTPercentage:  gst.Percentage,
		Category:       gst.Category,
		TotalAmount:    pricing.Round2(in.OrderAmount + delivery.Charge + gst.Amount),
		ChargeType:     delivery.ChargeType,
	}, nil
}
