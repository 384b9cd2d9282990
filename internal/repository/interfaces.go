package repository

import (
	"context"
	"time"

	"github.com/gachabox/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// CabinetRepository provides access to the cabinets table.
type CabinetRepository interface {
	// FindByID returns a cabinet by ID, nil if absent.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Cabinet, error)

	// LockForUpdate acquires the per-cabinet row lock (SELECT FOR UPDATE).
	// Every operation that touches a cabinet's item ledger or revenue runs
	// under this lock; it is the mutual-exclusion and re-entrancy discipline.
	LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Cabinet, error)

	// Create inserts a new cabinet.
	Create(ctx context.Context, db DBTX, c *domain.Cabinet) error

	// CountByOwner returns how many cabinets an owner has minted.
	CountByOwner(ctx context.Context, db DBTX, ownerID uuid.UUID) (int, error)

	// ListByOwner returns the owner's cabinets, newest first.
	ListByOwner(ctx context.Context, db DBTX, ownerID uuid.UUID) ([]domain.Cabinet, error)

	// UpdateConfig replaces the cabinet's name and config wholesale.
	UpdateConfig(ctx context.Context, tx pgx.Tx, id uuid.UUID, name string, cfg domain.CabinetConfig) error

	// SetStatus updates the activation/maintenance flags.
	SetStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, isActive, inMaintenance bool) error

	// AdjustItemCount moves item_count by delta using server-side arithmetic.
	AdjustItemCount(ctx context.Context, tx pgx.Tx, id uuid.UUID, delta int) error

	// RecordPlay bumps total_plays and total_revenue and stamps last_play_at.
	RecordPlay(ctx context.Context, tx pgx.Tx, id uuid.UUID, price int64, playedAt time.Time) error
}

// ItemRepository provides access to the cabinet_items table. Positions are
// dense: every position < item_count refers to a live row.
type ItemRepository interface {
	// ListByCabinet returns all items ordered by position.
	ListByCabinet(ctx context.Context, db DBTX, cabinetID uuid.UUID) ([]domain.GachaItem, error)

	// ListActive returns active items ordered by position.
	ListActive(ctx context.Context, db DBTX, cabinetID uuid.UUID) ([]domain.GachaItem, error)

	// FindByPosition returns the item at a ledger index, nil if absent.
	FindByPosition(ctx context.Context, db DBTX, cabinetID uuid.UUID, position int) (*domain.GachaItem, error)

	// ExistsDuplicate reports whether a live item with the same duplicate key
	// already sits in the cabinet.
	ExistsDuplicate(ctx context.Context, db DBTX, cabinetID uuid.UUID, asset domain.AssetRef) (bool, error)

	// Insert appends an item at its position.
	Insert(ctx context.Context, tx pgx.Tx, item *domain.GachaItem) error

	// SetActive flips the eligibility flag of the item at position.
	SetActive(ctx context.Context, tx pgx.Tx, cabinetID uuid.UUID, position int, active bool) error

	// DeleteSwap removes the item at position in O(1): the row is deleted and,
	// unless it was the tail, the tail row (at lastPosition) is relocated into
	// the vacated position. Callers must process batches highest-to-lowest.
	DeleteSwap(ctx context.Context, tx pgx.Tx, cabinetID uuid.UUID, position, lastPosition int) error
}

// RevenueRepository provides access to revenue_accounts and platform_revenue.
type RevenueRepository interface {
	// OwnerBalance returns the withdrawable balance for a cabinet (0 if no row).
	OwnerBalance(ctx context.Context, db DBTX, cabinetID uuid.UUID) (int64, error)

	// CreditOwner adds ownerShare to the cabinet's revenue account (upsert).
	CreditOwner(ctx context.Context, tx pgx.Tx, cabinetID uuid.UUID, amount int64) error

	// ZeroOwner sets the cabinet's balance to zero. Must be called before the
	// payout transfer so a re-entrant call cannot observe a stale balance.
	ZeroOwner(ctx context.Context, tx pgx.Tx, cabinetID uuid.UUID) error

	// PlatformBalance returns the platform-wide pool.
	PlatformBalance(ctx context.Context, db DBTX) (int64, error)

	// CreditPlatform adds the fee to the platform pool.
	CreditPlatform(ctx context.Context, tx pgx.Tx, amount int64) error

	// DebitPlatform subtracts amount from the pool; fails if it would go
	// negative.
	DebitPlatform(ctx context.Context, tx pgx.Tx, amount int64) error
}

// OutboxRepository provides access to the event_outbox table.
type OutboxRepository interface {
	// Insert writes an outbox event within the caller's transaction.
	Insert(ctx context.Context, db DBTX, draft domain.OutboxDraft) error

	// FetchUnpublished returns unpublished events in sequence order.
	FetchUnpublished(ctx context.Context, db DBTX, limit int) ([]domain.OutboxRow, error)

	// MarkPublished stamps events as published.
	MarkPublished(ctx context.Context, db DBTX, ids []int64) error
}
