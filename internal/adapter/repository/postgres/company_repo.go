package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/balancechain/internal/domain"
)

// CompanyRepository implements usecase.CompanyRepository.
type CompanyRepository struct {
	pool *pgxpool.Pool
}

// NewCompanyRepository creates a new CompanyRepository.
func NewCompanyRepository(pool *pgxpool.Pool) *CompanyRepository {
	return &CompanyRepository{pool: pool}
}

// GetByID retrieves a company by ID.
func (r *CompanyRepository) GetByID(ctx context.Context, id string) (*domain.Company, error) {
	var (
		company   domain.Company
		createdAt pgtype.Timestamptz
	)

	err := r.pool.QueryRow(ctx,
		`SELECT id, name, created_at FROM companies WHERE id = $1`, id,
	).Scan(&company.ID, &company.Name, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCompanyNotFound
		}

		return nil, err
	}

	company.CreatedAt = createdAt.Time

	return &company, nil
}

// GetFYConfig retrieves the company's financial year configuration from its
// settings row.
func (r *CompanyRepository) GetFYConfig(ctx context.Context, companyID string) (*domain.FYConfig, error) {
	var cfg domain.FYConfig

	err := r.pool.QueryRow(ctx, `
		SELECT fy_format, COALESCE(fy_start_month, 0), fy_starting_year
		FROM company_settings
		WHERE company_id = $1
	`, companyID).Scan(&cfg.Format, &cfg.StartMonth, &cfg.StartingYear)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSettingsNotFound
		}

		return nil, err
	}

	return &cfg, nil
}

// GetBranches retrieves the named branches of a company.
func (r *CompanyRepository) GetBranches(ctx context.Context, companyID string, branchIDs []string) ([]*domain.Branch, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, company_id, name
		FROM branches
		WHERE company_id = $1 AND id = ANY($2)
		ORDER BY name
	`, companyID, branchIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var branches []*domain.Branch

	for rows.Next() {
		var b domain.Branch
		if err := rows.Scan(&b.ID, &b.CompanyID, &b.Name); err != nil {
			return nil, err
		}

		branches = append(branches, &b)
	}

	return branches, rows.Err()
}
