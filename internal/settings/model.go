package settings

import (
	"time"

	"github.com/mandi-labs/backend-mandi/internal/pricing"
)

// TypeAdminDefault is the settings type for platform-wide defaults. At most
// one record of this type may be active at a time.
const TypeAdminDefault = "admin_default"

// Settings is a persisted configuration record holding GST percentages and
// delivery charge tiers.
type Settings struct {
	ID           string                   `json:"id"`
	SettingsType string                   `json:"settingsType"`
	IsActive     bool                     `json:"isActive"`
	GST          pricing.GSTSettings      `json:"gstSettings"`
	Delivery     pricing.DeliverySettings `json:"deliverySettings"`
	CreatedAt    time.Time                `json:"createdAt"`
	UpdatedAt    time.Time                `json:"updatedAt"`
}
