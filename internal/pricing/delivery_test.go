package pricing_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mandi-labs/backend-mandi/internal/pricing"
)

func testDeliverySettings() pricing.DeliverySettings {
	return pricing.DeliverySettings{
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
	}
}

func TestFreeDeliveryAboveThreshold(t *testing.T) {
	t.Parallel()

	out := pricing.ComputeDeliveryCharge(600, 0, 0, testDeliverySettings())
	require.Equal(t, float64(0), out.Charge)
	require.Equal(t, pricing.ChargeTypeFree, out.ChargeType)
}

func TestThresholdWithoutFreeDelivery(t *testing.T) {
	t.Parallel()

	s := testDeliverySettings()
	s.FreeDeliveryAboveThreshold = false
	out := pricing.ComputeDeliveryCharge(600, 0, 0, s)
	require.Equal(t, float64(30), out.Charge)
	require.Equal(t, pricing.ChargeTypeThreshold, out.ChargeType)
}

func TestFlatChargeBelowThreshold(t *testing.T) {
	t.Parallel()

	out := pricing.ComputeDeliveryCharge(400, 0, 0, testDeliverySettings())
	require.Equal(t, float64(30), out.Charge)
	require.Equal(t, pricing.ChargeTypeFlat, out.ChargeType)
}

func TestDistanceWithinMaxUsesPerKmRate(t *testing.T) {
	t.Parallel()

	out := pricing.ComputeDeliveryCharge(400, 8, 0, testDeliverySettings())
	require.Equal(t, float64(30+8*5), out.Charge)
	require.Equal(t, pricing.ChargeTypeDistance, out.ChargeType)
}

func TestDistanceBeyondMaxChargesOnlyExcess(t *testing.T) {
	t.Parallel()

	// 12km with a 10km cap: the surcharge applies to the 2km excess only.
	out := pricing.ComputeDeliveryCharge(400, 12, 0, testDeliverySettings())
	require.Equal(t, float64(30+(12-10)*15), out.Charge)
	require.Equal(t, pricing.ChargeTypeDistance, out.ChargeType)
}

func TestWeightSurcharge(t *testing.T) {
	t.Parallel()

	out := pricing.ComputeDeliveryCharge(400, 0, 4, testDeliverySettings())
	require.Equal(t, float64(30+4*5), out.Charge)
	require.Equal(t, pricing.ChargeTypeWeight, out.ChargeType)

	out = pricing.ComputeDeliveryCharge(400, 0, 12, testDeliverySettings())
	require.Equal(t, float64(30+(12-10)*10), out.Charge)
}

func TestDistanceAndWeightLabel(t *testing.T) {
	t.Parallel()

	out := pricing.ComputeDeliveryCharge(400, 3, 2, testDeliverySettings())
	require.Equal(t, pricing.ChargeTypeDistanceWeight, out.ChargeType)
	require.Equal(t, float64(30+3*5+2*5), out.Charge)
}

func TestFreeThresholdStillAccruesSurcharges(t *testing.T) {
	t.Parallel()

	// Free delivery above the threshold does not suppress the distance rule:
	// the surcharge additions run unconditionally after the threshold step.
	out := pricing.ComputeDeliveryCharge(600, 12, 0, testDeliverySettings())
	require.Equal(t, float64((12-10)*15), out.Charge)
	require.Equal(t, pricing.ChargeTypeDistance, out.ChargeType)
}

func TestChargeNeverNegative(t *testing.T) {
	t.Parallel()

	s := testDeliverySettings()
	s.FlatDeliveryCharge = -50
	s.FreeDeliveryAboveThreshold = false
	out := pricing.ComputeDeliveryCharge(100, 0, 0, s)
	require.Equal(t, float64(0), out.Charge)
}

func TestChargeRounding(t *testing.T) {
	t.Parallel()

	s := testDeliverySettings()
	s.DeliveryRatePerKm = 3.333
	out := pricing.ComputeDeliveryCharge(400, 2, 0, s)
	require.Equal(t, 36.67, out.Charge)
}
