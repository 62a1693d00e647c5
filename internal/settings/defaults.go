package settings

import "github.com/mandi-labs/backend-mandi/internal/pricing"

// Defaults is the single source of truth for fallback configuration used when
// no admin_default record has been persisted. Both the resolver and the seed
// path read from here so the two cannot drift.
func Defaults() Settings {
	return Settings{
		SettingsType: TypeAdminDefault,
		IsActive:     true,
		GST: pricing.GSTSettings{
			DefaultPercentage: 5,
			Categories: map[string]float64{
				"pharma":     12,
				"grocery":    2,
				"restaurant": 5,
				"others":     5,
			},
		},
		Delivery: pricing.DeliverySettings{
			FlatDeliveryCharge:         30,
			DeliveryThresholdAmount:    500,
			FreeDeliveryAboveThreshold: true,
			DeliveryRatePerKm:          5,
			MaxDeliveryDistance:        10,
			AdditionalChargePerKm:      15,
			DeliveryRatePerKg:          5,
			MaxDeliveryWeight:          10,
			AdditionalChargePerKg:      10,
			MinimumOrderAmount:         100,
		},
	}
}
