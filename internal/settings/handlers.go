package settings

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"

	"github.com/mandi-labs/backend-mandi/internal/common"
	"github.com/mandi-labs/backend-mandi/internal/pricing"
)

// Handler exposes the settings read path and the admin write endpoints.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

type gstPayload struct {
	DefaultPercentage float64            `json:"defaultGstPercentage" validate:"gte=0,lte=100"`
	Categories        map[string]float64 `json:"categories" validate:"required,dive,gte=0,lte=100"`
}

type deliveryPayload struct {
	FlatDeliveryCharge         float64 `json:"flatDeliveryCharge" validate:"gte=0"`
	DeliveryThresholdAmount    float64 `json:"deliveryThresholdAmount" validate:"gte=0"`
	FreeDeliveryAboveThreshold bool    `json:"freeDeliveryAboveThreshold"`
	DeliveryRatePerKm          float64 `json:"deliveryRatePerKm" validate:"gte=0"`
	MaxDeliveryDistance        float64 `json:"maxDeliveryDistance" validate:"gte=0"`
	AdditionalChargePerKm      float64 `json:"additionalChargePerKm" validate:"gte=0"`
	DeliveryRatePerKg          float64 `json:"deliveryRatePerKg" validate:"gte=0"`
	MaxDeliveryWeight          float64 `json:"maxDeliveryWeight" validate:"gte=0"`
	AdditionalChargePerKg      float64 `json:"additionalChargePerKg" validate:"gte=0"`
	MinimumOrderAmount         float64 `json:"minimumOrderAmount" validate:"gte=0"`
}

type settingsPayload struct {
	GST      gstPayload      `json:"gstSettings" validate:"required"`
	Delivery deliveryPayload `json:"deliverySettings" validate:"required"`
	IsActive *bool           `json:"isActive"`
}

// Get handles GET /settings, the shopper-facing read of the active record.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "settings service not configured", nil)
		return
	}
	active, err := h.Svc.Resolve(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": active})
}

// Create handles POST /admin/settings.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "settings service not configured", nil)
		return
	}
	payload, ok := h.decode(w, r)
	if !ok {
		return
	}
	created, err := h.Svc.Create(r.Context(), toSettings(payload))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": created})
}

// Update handles PUT /admin/settings/{settingsId}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "settings service not configured", nil)
		return
	}
	id := strings.TrimSpace(chi.URLParam(r, "settingsId"))
	if id == "" {
		common.JSONError(w, http.StatusBadRequest, common.CodeInvalidInput, "settings id is required", nil)
		return
	}
	payload, ok := h.decode(w, r)
	if !ok {
		return
	}
	updated, err := h.Svc.Update(r.Context(), id, toSettings(payload))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": updated})
}

// Activate handles POST /admin/settings/{settingsId}/activate.
func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "settings service not configured", nil)
		return
	}
	id := strings.TrimSpace(chi.URLParam(r, "settingsId"))
	if id == "" {
		common.JSONError(w, http.StatusBadRequest, common.CodeInvalidInput, "settings id is required", nil)
		return
	}
	activated, err := h.Svc.Activate(r.Context(), id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": activated})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (settingsPayload, bool) {
	var payload settingsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeInvalidInput, "invalid payload", nil)
		return settingsPayload{}, false
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(payload); err != nil {
			details := []string{}
			var verrs validator.ValidationErrors
			if ok := isValidationErrors(err, &verrs); ok {
				for _, fe := range verrs {
					details = append(details, fe.Namespace()+" failed "+fe.Tag())
				}
			}
			common.JSONError(w, http.StatusBadRequest, common.CodeInvalidInput, "invalid settings payload", details)
			return settingsPayload{}, false
		}
	}
	return payload, true
}

func isValidationErrors(err error, out *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return false
	}
	*out = verrs
	return true
}

func toSettings(p settingsPayload) Settings {
	active := true
	if p.IsActive != nil {
		active = *p.IsActive
	}
	return Settings{
		SettingsType: TypeAdminDefault,
		IsActive:     active,
		GST: pricing.GSTSettings{
			DefaultPercentage: p.GST.DefaultPercentage,
			Categories:        p.GST.Categories,
		},
		Delivery: pricing.DeliverySettings{
			FlatDeliveryCharge:         p.Delivery.FlatDeliveryCharge,
			DeliveryThresholdAmount:    p.Delivery.DeliveryThresholdAmount,
			FreeDeliveryAboveThreshold: p.Delivery.FreeDeliveryAboveThreshold,
			DeliveryRatePerKm:          p.Delivery.DeliveryRatePerKm,
			MaxDeliveryDistance:        p.Delivery.MaxDeliveryDistance,
			AdditionalChargePerKm:      p.Delivery.AdditionalChargePerKm,
			DeliveryRatePerKg:          p.Delivery.DeliveryRatePerKg,
			MaxDeliveryWeight:          p.Delivery.MaxDeliveryWeight,
			AdditionalChargePerKg:      p.Delivery.AdditionalChargePerKg,
			MinimumOrderAmount:         p.Delivery.MinimumOrderAmount,
		},
	}
}
