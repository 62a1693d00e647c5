package offer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore persists offers in Postgres. The tagged union is flattened onto
// nullable kind-specific columns; scan and insert re-assemble the variant.
type PGStore struct {
	Pool *pgxpool.Pool
}

const offerColumns = `id, business_id, menu_item_id, offer_type,
	purchase_quantity, discounted_price, buy_quantity, free_quantity,
	title, description, is_active, start_date, end_date, created_at, updated_at`

// Insert persists a new offer and returns the stored record.
func (s *PGStore) Insert(ctx context.Context, in Offer) (Offer, error) {
	bid, err := uuid.Parse(in.BusinessID)
	if err != nil {
		return Offer{}, fmt.Errorf("invalid business id: %w", err)
	}
	mid, err := uuid.Parse(in.MenuItemID)
	if err != nil {
		return Offer{}, fmt.Errorf("invalid menu item id: %w", err)
	}
	pq, dp, bq, fq := kindColumns(in)
	row := s.Pool.QueryRow(ctx,
		`INSERT INTO offers (business_id, menu_item_id, offer_type,
			purchase_quantity, discounted_price, buy_quantity, free_quantity,
			title, description, is_active, start_date, end_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING `+offerColumns,
		bid, mid, string(in.Kind), pq, dp, bq, fq,
		in.Title, textOrNull(in.Description), in.IsActive, in.StartDate, timeOrNull(in.EndDate))
	return scanOffer(row)
}

// Update overwrites an offer scoped to its business and returns the stored
// record. pgx.ErrNoRows is returned when the offer is absent or not owned.
func (s *PGStore) Update(ctx context.Context, in Offer) (Offer, error) {
	oid, err := uuid.Parse(in.ID)
	if err != nil {
		return Offer{}, pgx.ErrNoRows
	}
	bid, err := uuid.Parse(in.BusinessID)
	if err != nil {
		return Offer{}, pgx.ErrNoRows
	}
	pq, dp, bq, fq := kindColumns(in)
	row := s.Pool.QueryRow(ctx,
		`UPDATE offers SET offer_type = $3,
			purchase_quantity = $4, discounted_price = $5,
			buy_quantity = $6, free_quantity = $7,
			title = $8, description = $9, is_active = $10,
			start_date = $11, end_date = $12, updated_at = now()
		 WHERE id = $1 AND business_id = $2
		 RETURNING `+offerColumns,
		oid, bid, string(in.Kind), pq, dp, bq, fq,
		in.Title, textOrNull(in.Description), in.IsActive, in.StartDate, timeOrNull(in.EndDate))
	return scanOffer(row)
}

// Delete removes an offer scoped to its business.
func (s *PGStore) Delete(ctx context.Context, businessID, offerID string) error {
	bid, err := uuid.Parse(businessID)
	if err != nil {
		return pgx.ErrNoRows
	}
	oid, err := uuid.Parse(offerID)
	if err != nil {
		return pgx.ErrNoRows
	}
	tag, err := s.Pool.Exec(ctx,
		`DELETE FROM offers WHERE id = $1 AND business_id = $2`, oid, bid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// GetByID fetches an offer scoped to its business.
func (s *PGStore) GetByID(ctx context.Context, businessID, offerID string) (Offer, error) {
	bid, err := uuid.Parse(businessID)
	if err != nil {
		return Offer{}, pgx.ErrNoRows
	}
	oid, err := uuid.Parse(offerID)
	if err != nil {
		return Offer{}, pgx.ErrNoRows
	}
	row := s.Pool.QueryRow(ctx,
		`SELECT `+offerColumns+` FROM offers WHERE id = $1 AND business_id = $2`, oid, bid)
	return scanOffer(row)
}

// ListByBusiness pages through a business's offers filtered by derived state.
func (s *PGStore) ListByBusiness(ctx context.Context, businessID string, state State, now time.Time, page, limit int) ([]Offer, int64, error) {
	bid, err := uuid.Parse(businessID)
	if err != nil {
		return nil, 0, pgx.ErrNoRows
	}
	where := `business_id = $1 ` + stateClause(state)
	return s.list(ctx, where, []any{bid, now}, page, limit)
}

// ListByItem pages through the offers targeting one menu item.
func (s *PGStore) ListByItem(ctx context.Context, businessID, itemID string, state State, now time.Time, page, limit int) ([]Offer, int64, error) {
	bid, err := uuid.Parse(businessID)
	if err != nil {
		return nil, 0, pgx.ErrNoRows
	}
	mid, err := uuid.Parse(itemID)
	if err != nil {
		return nil, 0, pgx.ErrNoRows
	}
	where := `business_id = $1 AND menu_item_id = $3 ` + stateClause(state)
	return s.list(ctx, where, []any{bid, now, mid}, page, limit)
}

// stateClause mirrors Classify: disabled beats the date window, an elapsed
// end date beats an unstarted start date. $2 is always the "now" instant.
func stateClause(state State) string {
	switch state {
	case StateActive:
		return `AND is_active AND start_date <= $2 AND (end_date IS NULL OR end_date >= $2)`
	case StateUpcoming:
		return `AND is_active AND start_date > $2 AND (end_date IS NULL OR end_date >= $2)`
	case StateExpired:
		return `AND (NOT is_active OR (end_date IS NOT NULL AND end_date < $2))`
	}
	return `AND $2::timestamptz IS NOT NULL`
}

func (s *PGStore) list(ctx context.Context, where string, args []any, page, limit int) ([]Offer, int64, error) {
	var total int64
	if err := s.Pool.QueryRow(ctx,
		`SELECT count(*) FROM offers WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	query := fmt.Sprintf(
		`SELECT %s FROM offers WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		offerColumns, where, limit, offset)
	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var out []Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func kindColumns(in Offer) (pgtype.Int4, pgtype.Float8, pgtype.Int4, pgtype.Int4) {
	var pq, bq, fq pgtype.Int4
	var dp pgtype.Float8
	if in.Bulk != nil {
		pq = pgtype.Int4{Int32: int32(in.Bulk.PurchaseQuantity), Valid: true}
		dp = pgtype.Float8{Float64: in.Bulk.DiscountedPrice, Valid: true}
	}
	if in.BuyXGetY != nil {
		bq = pgtype.Int4{Int32: int32(in.BuyXGetY.BuyQuantity), Valid: true}
		fq = pgtype.Int4{Int32: int32(in.BuyXGetY.FreeQuantity), Valid: true}
	}
	return pq, dp, bq, fq
}

func textOrNull(v string) pgtype.Text {
	if v == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: v, Valid: true}
}

func timeOrNull(v *time.Time) pgtype.Timestamptz {
	if v == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *v, Valid: true}
}

func scanOffer(row pgx.Row) (Offer, error) {
	var (
		out  Offer
		id   uuid.UUID
		bid  uuid.UUID
		mid  uuid.UUID
		kind string
		pq   pgtype.Int4
		dp   pgtype.Float8
		bq   pgtype.Int4
		fq   pgtype.Int4
		desc pgtype.Text
		end  pgtype.Timestamptz
	)
	if err := row.Scan(&id, &bid, &mid, &kind, &pq, &dp, &bq, &fq,
		&out.Title, &desc, &out.IsActive, &out.StartDate, &end, &out.CreatedAt, &out.UpdatedAt); err != nil {
		return Offer{}, err
	}
	out.ID = id.String()
	out.BusinessID = bid.String()
	out.MenuItemID = mid.String()
	out.Kind = Kind(kind)
	if desc.Valid {
		out.Description = desc.String
	}
	if end.Valid {
		t := end.Time
		out.EndDate = &t
	}
	switch out.Kind {
	case KindBulkPrice:
		if pq.Valid && dp.Valid {
			out.Bulk = &BulkPrice{PurchaseQuantity: int(pq.Int32), DiscountedPrice: dp.Float64}
		}
	case KindBuyXGetYFree:
		if bq.Valid && fq.Valid {
			out.BuyXGetY = &BuyXGetYFree{BuyQuantity: int(bq.Int32), FreeQuantity: int(fq.Int32)}
		}
	}
	return out, nil
}
