package billing

import (
	"context"

	"github.com/google/uuid"

	"github.com/ucrm/backend/internal/domain/shared"
)

// PayableRepository provides access to payables
type PayableRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payable, error)
	// FindByIDs returns the payables for the given IDs. Order of the
	// result is unspecified; allocation order is re-imposed by the caller
	// from the submitted ID order.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Payable, error)
	FindByAccount(ctx context.Context, accountID uuid.UUID, filter shared.Filter) ([]Payable, error)
	// FindByAccountAndTypes returns the account's payables matching any of
	// the given types.
	FindByAccountAndTypes(ctx context.Context, accountID uuid.UUID, types []PayableType) ([]Payable, error)
	Save(ctx context.Context, payable *Payable) error
	// GeneratePayableNumber issues the next PB-YYYYMMDD-NNNNN number
	GeneratePayableNumber(ctx context.Context) (string, error)
}

// CreditBalanceRepository provides access to per-account credit reserves
type CreditBalanceRepository interface {
	// FindByAccount returns the account's credit balance, or
	// shared.ErrNotFound when the account never overpaid.
	FindByAccount(ctx context.Context, accountID uuid.UUID) (*CreditBalance, error)
	Save(ctx context.Context, cb *CreditBalance) error
	// SaveWithLock saves using optimistic locking on the aggregate version
	SaveWithLock(ctx context.Context, cb *CreditBalance) error
}

// TransactionSeriesRepository provides access to numbering series
type TransactionSeriesRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*TransactionSeries, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]TransactionSeries, error)
	// FindActiveByUser returns the user's active series without locking,
	// or shared.ErrNotFound when none is active.
	FindActiveByUser(ctx context.Context, userID uuid.UUID) (*TransactionSeries, error)
	// FindActiveByUserForUpdate loads the user's active series under a
	// row-level lock (SELECT ... FOR UPDATE). Must be called inside a
	// transaction; the lock serializes concurrent issuance.
	FindActiveByUserForUpdate(ctx context.Context, userID uuid.UUID) (*TransactionSeries, error)
	Save(ctx context.Context, series *TransactionSeries) error
	// DeactivateAllForUser clears the active flag on every series the
	// user holds. Used when switching the active series.
	DeactivateAllForUser(ctx context.Context, userID uuid.UUID) error
}

// TransactionRepository provides access to completed payment transactions
type TransactionRepository interface {
	Create(ctx context.Context, tx *Transaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	FindByORNumber(ctx context.Context, orNumber string) (*Transaction, error)
	FindByAccount(ctx context.Context, accountID uuid.UUID, filter shared.Filter) ([]Transaction, error)
}
