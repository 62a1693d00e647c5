package offer

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/mandi-labs/backend-mandi/internal/tenant"
)

func newTestRouter(svc *Service) http.Handler {
	h := &Handler{Svc: svc, DefaultPageLimit: 20}
	r := chi.NewRouter()
	r.Group(func(owner chi.Router) {
		owner.Use(tenant.RequireBusiness)
		owner.Get("/offers", h.List)
		owner.Post("/offers", h.Create)
		owner.Put("/offers/{offerId}", h.Update)
		owner.Delete("/offers/{offerId}", h.Delete)
		owner.Get("/items/{itemId}/offers", h.ListForItem)
	})
	r.Route("/admin/businesses/{businessId}", func(admin chi.Router) {
		admin.Get("/offers", h.List)
		admin.Post("/offers", h.Create)
	})
	return r
}

func scoped(req *http.Request, businessID string) *http.Request {
	return req.WithContext(tenant.WithBusiness(req.Context(), businessID))
}

func TestHandlerCreateOffer(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	svc, _ := newTestService(now)
	router := newTestRouter(svc)

	body := `{"menuItemId":"item-1","offerType":"bulk-price","purchaseQuantity":3,"discountedPrice":250,"title":"Bulk burger deal"}`
	req := scoped(httptest.NewRequest(http.MethodPost, "/offers", strings.NewReader(body)), "biz-1")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	var out struct {
		Data Offer `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Equal(t, KindBulkPrice, out.Data.Kind)
	require.NotNil(t, out.Data.Bulk)
	require.Equal(t, "biz-1", out.Data.BusinessID)
}

func TestHandlerCreateValidationDetails(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	svc, _ := newTestService(now)
	router := newTestRouter(svc)

	body := `{"menuItemId":"item-1","offerType":"bulk-price","purchaseQuantity":1,"title":""}`
	req := scoped(httptest.NewRequest(http.MethodPost, "/offers", strings.NewReader(body)), "biz-1")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	var out struct {
		Error struct {
			Code    string       `json:"code"`
			Details []FieldError `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Equal(t, "INVALID_INPUT", out.Error.Code)
	require.GreaterOrEqual(t, len(out.Error.Details), 3)
}

func TestHandlerRequiresBusinessScope(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	svc, _ := newTestService(now)
	router := newTestRouter(svc)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/offers", nil))
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHandlerAdminScopeFromURL(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	svc, _ := newTestService(now)
	router := newTestRouter(svc)

	body := `{"menuItemId":"item-1","offerType":"buy-x-get-y-free","buyQuantity":2,"freeQuantity":1,"title":"Buy two get one"}`
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/admin/businesses/biz-1/offers", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/businesses/biz-1/offers?status=active", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var out struct {
		Data []View `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out.Data, 1)
	require.Equal(t, StateActive, out.Data[0].Status)
	require.NotNil(t, out.Data[0].Display)
}

func TestHandlerRejectsUnknownStatusFilter(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	svc, _ := newTestService(now)
	router := newTestRouter(svc)

	req := scoped(httptest.NewRequest(http.MethodGet, "/offers?status=paused", nil), "biz-1")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandlerListForItem(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	svc, _ := newTestService(now)
	router := newTestRouter(svc)

	body := `{"menuItemId":"item-1","offerType":"bulk-price","purchaseQuantity":3,"discountedPrice":250,"title":"Bulk burger deal"}`
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, scoped(httptest.NewRequest(http.MethodPost, "/offers", strings.NewReader(body)), "biz-1"))
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, scoped(httptest.NewRequest(http.MethodGet, "/items/item-1/offers", nil), "biz-1"))
	require.Equal(t, http.StatusOK, rr.Code)

	var out struct {
		Data       []View `json:"data"`
		Pagination struct {
			Page       int `json:"page"`
			PerPage    int `json:"per_page"`
			TotalItems int `json:"total_items"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out.Data, 1)
	require.Equal(t, 1, out.Pagination.TotalItems)
}
