package offer

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mandi-labs/backend-mandi/internal/catalog"
	"github.com/mandi-labs/backend-mandi/internal/common"
)

type mockStore struct {
	seq     int
	records map[string]Offer
	order   []string
}

func newMockStore() *mockStore {
	return &mockStore{records: map[string]Offer{}}
}

func (m *mockStore) Insert(_ context.Context, in Offer) (Offer, error) {
	m.seq++
	in.ID = fmt.Sprintf("offer-%d", m.seq)
	in.CreatedAt = time.Now()
	in.UpdatedAt = in.CreatedAt
	m.records[in.ID] = in
	m.order = append(m.order, in.ID)
	return in, nil
}

func (m *mockStore) Update(_ context.Context, in Offer) (Offer, error) {
	existing, ok := m.records[in.ID]
	if !ok || existing.BusinessID != in.BusinessID {
		return Offer{}, pgx.ErrNoRows
	}
	in.CreatedAt = existing.CreatedAt
	in.UpdatedAt = time.Now()
	m.records[in.ID] = in
	return in, nil
}

func (m *mockStore) Delete(_ context.Context, businessID, offerID string) error {
	existing, ok := m.records[offerID]
	if !ok || existing.BusinessID != businessID {
		return pgx.ErrNoRows
	}
	delete(m.records, offerID)
	return nil
}

func (m *mockStore) GetByID(_ context.Context, businessID, offerID string) (Offer, error) {
	existing, ok := m.records[offerID]
	if !ok || existing.BusinessID != businessID {
		return Offer{}, pgx.ErrNoRows
	}
	return existing, nil
}

func (m *mockStore) ListByBusiness(_ context.Context, businessID string, state State, now time.Time, page, limit int) ([]Offer, int64, error) {
	var out []Offer
	for _, id := range m.order {
		o, ok := m.records[id]
		if !ok || o.BusinessID != businessID {
			continue
		}
		if state != "" && Classify(o, now) != state {
			continue
		}
		out = append(out, o)
	}
	return out, int64(len(out)), nil
}

func (m *mockStore) ListByItem(ctx context.Context, businessID, itemID string, state State, now time.Time, page, limit int) ([]Offer, int64, error) {
	all, _, err := m.ListByBusiness(ctx, businessID, state, now, page, limit)
	if err != nil {
		return nil, 0, err
	}
	var out []Offer
	for _, o := range all {
		if o.MenuItemID == itemID {
			out = append(out, o)
		}
	}
	return out, int64(len(out)), nil
}

type stubResolver struct {
	items map[string]catalog.MenuItem
}

func (s *stubResolver) GetMenuItem(_ context.Context, itemID string) (catalog.MenuItem, error) {
	item, ok := s.items[itemID]
	if !ok {
		return catalog.MenuItem{}, catalog.ErrMenuItemNotFound
	}
	return item, nil
}

func newTestService(now time.Time) (*Service, *mockStore) {
	store := newMockStore()
	svc := &Service{
		Store: store,
		Items: &stubResolver{items: map[string]catalog.MenuItem{
			"item-1": {ID: "item-1", BusinessID: "biz-1", Name: "Burger", Category: "restaurant", Price: 100},
			"item-2": {ID: "item-2", BusinessID: "biz-2", Name: "Paracetamol", Category: "pharma", Price: 40},
		}},
		Logger: zerolog.Nop(),
		Now:    func() time.Time { return now },
	}
	return svc, store
}

func TestServiceCreateValidatesAgainstLivePrice(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	svc, _ := newTestService(now)

	d := validBulkDraft()
	d.MenuItemID = "item-1"
	d.DiscountedPrice = floatPtr(350)

	_, err := svc.Create(context.Background(), "biz-1", d)
	require.Error(t, err)
	appErr, ok := common.IsAppError(err)
	require.True(t, ok)
	require.Equal(t, common.CodeInvalidInput, appErr.Code)
	require.NotEmpty(t, appErr.Details)
}

func TestServiceCreateRejectsForeignItem(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	svc, _ := newTestService(now)

	d := validBulkDraft()
	d.MenuItemID = "item-2"

	_, err := svc.Create(context.Background(), "biz-1", d)
	require.Error(t, err)
	appErr, ok := common.IsAppError(err)
	require.True(t, ok)
	require.Equal(t, common.CodeNotFound, appErr.Code)
}

func TestServiceCreateDefaultsActivationAndStart(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	svc, store := newTestService(now)

	d := validBulkDraft()
	d.MenuItemID = "item-1"

	created, err := svc.Create(context.Background(), "biz-1", d)
	require.NoError(t, err)
	require.True(t, created.IsActive)
	require.Equal(t, now, created.StartDate)
	require.NotNil(t, store.records[created.ID].Bulk)
}

func TestServiceUpdateUnknownOffer(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	svc, _ := newTestService(now)

	d := validBulkDraft()
	d.MenuItemID = "item-1"

	_, err := svc.Update(context.Background(), "biz-1", "missing", d)
	require.Error(t, err)
	appErr, ok := common.IsAppError(err)
	require.True(t, ok)
	require.Equal(t, common.CodeNotFound, appErr.Code)
}

func TestServiceUpdateSwitchesKind(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	svc, _ := newTestService(now)

	d := validBulkDraft()
	d.MenuItemID = "item-1"
	created, err := svc.Create(context.Background(), "biz-1", d)
	require.NoError(t, err)

	next := Draft{
		MenuItemID:   "item-1",
		Kind:         KindBuyXGetYFree,
		BuyQuantity:  intPtr(2),
		FreeQuantity: intPtr(1),
		Title:        "Buy two get one",
	}
	updated, err := svc.Update(context.Background(), "biz-1", created.ID, next)
	require.NoError(t, err)
	require.Equal(t, KindBuyXGetYFree, updated.Kind)
	require.Nil(t, updated.Bulk)
	require.NotNil(t, updated.BuyXGetY)
	require.Equal(t, created.CreatedAt, updated.CreatedAt)
}

func TestServiceListDecoratesViews(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	svc, store := newTestService(now)

	d := validBulkDraft()
	d.MenuItemID = "item-1"
	created, err := svc.Create(context.Background(), "biz-1", d)
	require.NoError(t, err)

	views, total, err := svc.List(context.Background(), "biz-1", "", 1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, views, 1)
	require.Equal(t, StateActive, views[0].Status)
	require.NotNil(t, views[0].Display)
	require.Equal(t, "Buy 3 Burger for ₹250 (Save ₹50)", views[0].Display.Text)

	// The listing still renders when the item stops resolving; only the
	// display degrades.
	o := store.records[created.ID]
	o.MenuItemID = "gone"
	store.records[created.ID] = o

	views, _, err = svc.List(context.Background(), "biz-1", "", 1, 20)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Nil(t, views[0].Display)
}

func TestServiceListFiltersByState(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	svc, _ := newTestService(now)

	active := validBulkDraft()
	active.MenuItemID = "item-1"
	_, err := svc.Create(context.Background(), "biz-1", active)
	require.NoError(t, err)

	upcoming := validBulkDraft()
	upcoming.MenuItemID = "item-1"
	upcoming.Title = "Starts next week"
	upcoming.StartDate = timePtr(now.Add(7 * 24 * time.Hour))
	_, err = svc.Create(context.Background(), "biz-1", upcoming)
	require.NoError(t, err)

	views, total, err := svc.List(context.Background(), "biz-1", StateUpcoming, 1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, views, 1)
	require.Equal(t, "Starts next week", views[0].Title)
}

func TestServiceDeleteUnknownOffer(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	svc, _ := newTestService(now)

	err := svc.Delete(context.Background(), "biz-1", "missing")
	require.Error(t, err)
	appErr, ok := common.IsAppError(err)
	require.True(t, ok)
	require.Equal(t, common.CodeNotFound, appErr.Code)
}
