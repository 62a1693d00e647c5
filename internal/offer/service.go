package offer

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/mandi-labs/backend-mandi/internal/catalog"
	"github.com/mandi-labs/backend-mandi/internal/common"
	"github.com/mandi-labs/backend-mandi/internal/events"
	"github.com/mandi-labs/backend-mandi/internal/obs"
)

// Store defines the persistence operations the offer service needs.
type Store interface {
	Insert(ctx context.Context, in Offer) (Offer, error)
	Update(ctx context.Context, in Offer) (Offer, error)
	Delete(ctx context.Context, businessID, offerID string) error
	GetByID(ctx context.Context, businessID, offerID string) (Offer, error)
	ListByBusiness(ctx context.Context, businessID string, state State, now time.Time, page, limit int) ([]Offer, int64, error)
	ListByItem(ctx context.Context, businessID, itemID string, state State, now time.Time, page, limit int) ([]Offer, int64, error)
}

// Service owns offer writes and read models. Writes validate the draft
// against the referenced item's live price; reads decorate stored offers with
// the derived lifecycle state and display values.
type Service struct {
	Store  Store
	Items  catalog.Resolver
	Events *events.Bus
	Logger zerolog.Logger
	Now    func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Create validates and persists a new offer for the business.
func (s *Service) Create(ctx context.Context, businessID string, d Draft) (Offer, error) {
	item, err := s.resolveItem(ctx, businessID, d.MenuItemID)
	if err != nil {
		return Offer{}, err
	}
	if errs := Validate(d, item.Price); len(errs) > 0 {
		return Offer{}, common.InvalidInput("offer validation failed", errs)
	}
	stored, err := s.Store.Insert(ctx, s.materialize(businessID, d))
	countOfferWrite("create", err)
	if err != nil {
		return Offer{}, err
	}
	s.emit(ctx, events.TopicOfferCreated, stored)
	return stored, nil
}

// Update re-validates the full draft and overwrites the stored offer.
func (s *Service) Update(ctx context.Context, businessID, offerID string, d Draft) (Offer, error) {
	existing, err := s.Store.GetByID(ctx, businessID, offerID)
	if err != nil {
		return Offer{}, s.notFound(err)
	}
	if d.MenuItemID == "" {
		d.MenuItemID = existing.MenuItemID
	}
	item, err := s.resolveItem(ctx, businessID, d.MenuItemID)
	if err != nil {
		return Offer{}, err
	}
	if errs := Validate(d, item.Price); len(errs) > 0 {
		return Offer{}, common.InvalidInput("offer validation failed", errs)
	}
	next := s.materialize(businessID, d)
	next.ID = existing.ID
	next.CreatedAt = existing.CreatedAt
	stored, err := s.Store.Update(ctx, next)
	countOfferWrite("update", err)
	if err != nil {
		return Offer{}, s.notFound(err)
	}
	s.emit(ctx, events.TopicOfferUpdated, stored)
	return stored, nil
}

// Delete removes an offer owned by the business.
func (s *Service) Delete(ctx context.Context, businessID, offerID string) error {
	err := s.Store.Delete(ctx, businessID, offerID)
	countOfferWrite("delete", err)
	if err != nil {
		return s.notFound(err)
	}
	s.emit(ctx, events.TopicOfferDeleted, Offer{ID: offerID, BusinessID: businessID})
	return nil
}

// List pages through a business's offers, optionally filtered by lifecycle
// state, decorated into views.
func (s *Service) List(ctx context.Context, businessID string, state State, page, limit int) ([]View, int64, error) {
	now := s.now()
	offers, total, err := s.Store.ListByBusiness(ctx, businessID, state, now, page, limit)
	if err != nil {
		return nil, 0, err
	}
	return s.decorate(ctx, offers, now), total, nil
}

// ListForItem pages through the offers targeting one menu item.
func (s *Service) ListForItem(ctx context.Context, businessID, itemID string, state State, page, limit int) ([]View, int64, error) {
	now := s.now()
	offers, total, err := s.Store.ListByItem(ctx, businessID, itemID, state, now, page, limit)
	if err != nil {
		return nil, 0, err
	}
	return s.decorate(ctx, offers, now), total, nil
}

// decorate attaches the derived state and display to each offer. A menu item
// that no longer resolves degrades that offer's display to nil; the listing
// itself still succeeds.
func (s *Service) decorate(ctx context.Context, offers []Offer, now time.Time) []View {
	views := make([]View, 0, len(offers))
	items := make(map[string]*catalog.MenuItem, len(offers))
	for _, o := range offers {
		v := View{Offer: o, Status: Classify(o, now)}
		item, seen := items[o.MenuItemID]
		if !seen {
			resolved, err := s.Items.GetMenuItem(ctx, o.MenuItemID)
			if err != nil {
				if !errors.Is(err, catalog.ErrMenuItemNotFound) {
					s.Logger.Warn().Err(err).Str("menu_item_id", o.MenuItemID).Msg("resolve menu item for display")
				}
				items[o.MenuItemID] = nil
			} else {
				items[o.MenuItemID] = &resolved
				item = &resolved
			}
		}
		if item != nil {
			v.Display = ComputeDisplay(o, item.Name, item.Price)
		}
		views = append(views, v)
	}
	return views
}

// resolveItem fetches the item and enforces that it belongs to the business.
// A foreign or missing item is reported identically so offer writes cannot
// probe another tenant's catalog.
func (s *Service) resolveItem(ctx context.Context, businessID, itemID string) (catalog.MenuItem, error) {
	if itemID == "" {
		return catalog.MenuItem{}, common.InvalidInput("offer validation failed",
			[]FieldError{{Field: "menuItemId", Message: "menuItemId is required"}})
	}
	item, err := s.Items.GetMenuItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, catalog.ErrMenuItemNotFound) {
			return catalog.MenuItem{}, common.NotFound("menu item not found")
		}
		return catalog.MenuItem{}, err
	}
	if item.BusinessID != businessID {
		return catalog.MenuItem{}, common.NotFound("menu item not found")
	}
	return item, nil
}

func (s *Service) materialize(businessID string, d Draft) Offer {
	o := Offer{
		BusinessID:  businessID,
		MenuItemID:  d.MenuItemID,
		Kind:        d.Kind,
		Title:       d.Title,
		Description: d.Description,
		IsActive:    true,
		StartDate:   s.now(),
		EndDate:     d.EndDate,
	}
	if d.IsActive != nil {
		o.IsActive = *d.IsActive
	}
	if d.StartDate != nil {
		o.StartDate = *d.StartDate
	}
	switch d.Kind {
	case KindBulkPrice:
		o.Bulk = &BulkPrice{PurchaseQuantity: *d.PurchaseQuantity, DiscountedPrice: *d.DiscountedPrice}
	case KindBuyXGetYFree:
		o.BuyXGetY = &BuyXGetYFree{BuyQuantity: *d.BuyQuantity, FreeQuantity: *d.FreeQuantity}
	}
	return o
}

func (s *Service) notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return common.NotFound("offer not found")
	}
	return err
}

func countOfferWrite(action string, err error) {
	if obs.OfferWriteTotal == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	obs.OfferWriteTotal.WithLabelValues(action, result).Inc()
}

func (s *Service) emit(ctx context.Context, topic string, o Offer) {
	if s.Events == nil {
		return
	}
	if _, err := s.Events.Emit(ctx, topic, o.ID, o); err != nil {
		s.Logger.Warn().Err(err).Str("topic", topic).Str("offer_id", o.ID).Msg("emit offer event")
	}
}
