package checkout

import (
	"encoding/json"
	"net/http"

	"github.com/mandi-labs/backend-mandi/internal/common"
)

// Handler exposes the checkout-charges computation over HTTP.
type Handler struct {
	Svc *Service
}

// Charges handles POST /checkout/charges.
func (h *Handler) Charges(w http.ResponseWriter, r *http.Request) {
	var payload Input
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeInvalidInput, "invalid JSON body", nil)
		return
	}
	out, err := h.Svc.Compute(r.Context(), payload)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": out})
}
