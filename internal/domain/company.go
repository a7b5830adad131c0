package domain

import "time"

// Company is the owning tenant of accounts and branches. Only its financial
// year configuration matters to this engine.
type Company struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Branch is a company branch; ledger entries and monthly balances are
// partitioned per branch.
type Branch struct {
	ID        string
	CompanyID string
	Name      string
}

// FYConfig is the company financial-year configuration owned by the
// settings subsystem. It must resolve before any chain or impact operation.
type FYConfig struct {
	Format       string
	StartMonth   int
	StartingYear int
}
