package checkout

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mandi-labs/backend-mandi/internal/settings"
)

func TestChargesEndpoint(t *testing.T) {
	t.Parallel()

	h := &Handler{Svc: newTestService(settings.Defaults())}

	body := `{"orderAmount":400,"distance":12,"category":"grocery"}`
	rr := httptest.NewRecorder()
	h.Charges(rr, httptest.NewRequest(http.MethodPost, "/checkout/charges", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rr.Code)
	var out struct {
		Data Output `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Equal(t, 60.0, out.Data.DeliveryCharge)
	require.Equal(t, 468.0, out.Data.TotalAmount)
}

func TestChargesEndpointRejectsBadJSON(t *testing.T) {
	t.Parallel()

	h := &Handler{Svc: newTestService(settings.Defaults())}

	rr := httptest.NewRecorder()
	h.Charges(rr, httptest.NewRequest(http.MethodPost, "/checkout/charges", strings.NewReader("{")))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "INVALID_INPUT")
}

func TestChargesEndpointRejectsZeroAmount(t *testing.T) {
	t.Parallel()

	h := &Handler{Svc: newTestService(settings.Defaults())}

	rr := httptest.NewRecorder()
	h.Charges(rr, httptest.NewRequest(http.MethodPost, "/checkout/charges", strings.NewReader(`{"orderAmount":0}`)))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "orderAmount")
}
