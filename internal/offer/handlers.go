package offer

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mandi-labs/backend-mandi/internal/common"
	"github.com/mandi-labs/backend-mandi/internal/tenant"
)

// Handler exposes offer management over HTTP. The same handlers back both
// the owner surface (business resolved from the request scope) and the admin
// surface (business taken from the URL).
type Handler struct {
	Svc              *Service
	DefaultPageLimit int
}

type offerPayload struct {
	MenuItemID       string     `json:"menuItemId"`
	OfferType        string     `json:"offerType"`
	PurchaseQuantity *int       `json:"purchaseQuantity"`
	DiscountedPrice  *float64   `json:"discountedPrice"`
	BuyQuantity      *int       `json:"buyQuantity"`
	FreeQuantity     *int       `json:"freeQuantity"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	IsActive         *bool      `json:"isActive"`
	StartDate        *time.Time `json:"startDate"`
	EndDate          *time.Time `json:"endDate"`
}

func (p offerPayload) draft() Draft {
	return Draft{
		MenuItemID:       p.MenuItemID,
		Kind:             Kind(p.OfferType),
		PurchaseQuantity: p.PurchaseQuantity,
		DiscountedPrice:  p.DiscountedPrice,
		BuyQuantity:      p.BuyQuantity,
		FreeQuantity:     p.FreeQuantity,
		Title:            p.Title,
		Description:      p.Description,
		IsActive:         p.IsActive,
		StartDate:        p.StartDate,
		EndDate:          p.EndDate,
	}
}

// Create handles POST /offers and POST /admin/businesses/{businessId}/offers.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	businessID, ok := h.scope(r)
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, common.CodeUnauthorized, "business scope is required", nil)
		return
	}
	var payload offerPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeInvalidInput, "invalid JSON body", nil)
		return
	}
	created, err := h.Svc.Create(r.Context(), businessID, payload.draft())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": created})
}

// Update handles PUT /offers/{offerId} and its admin twin.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	businessID, ok := h.scope(r)
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, common.CodeUnauthorized, "business scope is required", nil)
		return
	}
	var payload offerPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeInvalidInput, "invalid JSON body", nil)
		return
	}
	updated, err := h.Svc.Update(r.Context(), businessID, chi.URLParam(r, "offerId"), payload.draft())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": updated})
}

// Delete handles DELETE /offers/{offerId} and its admin twin.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	businessID, ok := h.scope(r)
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, common.CodeUnauthorized, "business scope is required", nil)
		return
	}
	if err := h.Svc.Delete(r.Context(), businessID, chi.URLParam(r, "offerId")); err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]string{"status": "deleted"}})
}

// List handles GET /offers and its admin twin. The optional status query
// filters on the derived lifecycle state.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	businessID, ok := h.scope(r)
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, common.CodeUnauthorized, "business scope is required", nil)
		return
	}
	state, ok := h.stateFilter(w, r)
	if !ok {
		return
	}
	page, limit := common.ParsePagination(r, h.DefaultPageLimit)
	views, total, err := h.Svc.List(r.Context(), businessID, state, page, limit)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	h.writeList(w, views, page, limit, total)
}

// ListForItem handles GET /items/{itemId}/offers and its admin twin.
func (h *Handler) ListForItem(w http.ResponseWriter, r *http.Request) {
	businessID, ok := h.scope(r)
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, common.CodeUnauthorized, "business scope is required", nil)
		return
	}
	state, ok := h.stateFilter(w, r)
	if !ok {
		return
	}
	page, limit := common.ParsePagination(r, h.DefaultPageLimit)
	views, total, err := h.Svc.ListForItem(r.Context(), businessID, chi.URLParam(r, "itemId"), state, page, limit)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	h.writeList(w, views, page, limit, total)
}

func (h *Handler) writeList(w http.ResponseWriter, views []View, page, limit int, total int64) {
	common.JSON(w, http.StatusOK, map[string]any{
		"data": views,
		"pagination": common.Pagination{
			Page:       page,
			PerPage:    limit,
			TotalItems: int(total),
		},
	})
}

func (h *Handler) stateFilter(w http.ResponseWriter, r *http.Request) (State, bool) {
	raw := r.URL.Query().Get("status")
	if raw == "" {
		return "", true
	}
	state, err := ParseState(raw)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeInvalidInput, err.Error(), nil)
		return "", false
	}
	return state, true
}

// scope returns the business the request operates on: the URL parameter on
// admin routes, the resolved request scope everywhere else.
func (h *Handler) scope(r *http.Request) (string, bool) {
	if id := chi.URLParam(r, "businessId"); id != "" {
		return id, true
	}
	return tenant.BusinessFromContext(r.Context())
}
