package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/balancechain/internal/domain"
)

// ItemRepository implements usecase.ItemRepository.
type ItemRepository struct {
	pool *pgxpool.Pool
}

// NewItemRepository creates a new ItemRepository.
func NewItemRepository(pool *pgxpool.Pool) *ItemRepository {
	return &ItemRepository{pool: pool}
}

// GetByCompany retrieves an item scoped to its owning company.
func (r *ItemRepository) GetByCompany(ctx context.Context, companyID, itemID string) (*domain.Item, error) {
	var (
		item      domain.Item
		opening   pgtype.Numeric
		valueType string
		createdAt pgtype.Timestamptz
	)

	err := r.pool.QueryRow(ctx, `
		SELECT id, company_id, name, opening_value, opening_value_type, created_at
		FROM items
		WHERE id = $1 AND company_id = $2
	`, itemID, companyID).Scan(&item.ID, &item.CompanyID, &item.Name, &opening, &valueType, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}

		return nil, err
	}

	item.OpeningValue = numericToDecimal(opening)
	item.OpeningValueType = domain.BalanceType(valueType)
	item.CreatedAt = createdAt.Time

	return &item, nil
}
