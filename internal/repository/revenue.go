package repository

import (
	"context"
	"fmt"

	"github.com/gachabox/platform/internal/domain"
	"github.com/gachabox/platform/internal/pgconv"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type revenueRepo struct{}

// NewRevenueRepository returns a pgx-backed RevenueRepository.
func NewRevenueRepository() RevenueRepository {
	return &revenueRepo{}
}

func (r *revenueRepo) OwnerBalance(ctx context.Context, db DBTX, cabinetID uuid.UUID) (int64, error) {
	var num pgtype.Numeric
	err := db.QueryRow(ctx, `
		SELECT balance FROM revenue_accounts WHERE cabinet_id = $1`, cabinetID).Scan(&num)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("query owner balance: %w", err)
	}
	return pgconv.NumericToInt64(num)
}

func (r *revenueRepo) CreditOwner(ctx context.Context, tx pgx.Tx, cabinetID uuid.UUID, amount int64) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO revenue_accounts (cabinet_id, balance, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (cabinet_id)
		DO UPDATE SET balance = revenue_accounts.balance + EXCLUDED.balance, updated_at = now()`,
		cabinetID, pgconv.Int64ToNumeric(amount))
	if err != nil {
		return fmt.Errorf("credit owner revenue: %w", err)
	}
	return nil
}

func (r *revenueRepo) ZeroOwner(ctx context.Context, tx pgx.Tx, cabinetID uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		UPDATE revenue_accounts SET balance = 0, updated_at = now()
		WHERE cabinet_id = $1`, cabinetID)
	if err != nil {
		return fmt.Errorf("zero owner revenue: %w", err)
	}
	return nil
}

func (r *revenueRepo) PlatformBalance(ctx context.Context, db DBTX) (int64, error) {
	var num pgtype.Numeric
	err := db.QueryRow(ctx, `SELECT balance FROM platform_revenue WHERE id = 1`).Scan(&num)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("query platform balance: %w", err)
	}
	return pgconv.NumericToInt64(num)
}

func (r *revenueRepo) CreditPlatform(ctx context.Context, tx pgx.Tx, amount int64) error {
	_, err := tx.Exec(ctx, `
		UPDATE platform_revenue SET balance = balance + $1, updated_at = now()
		WHERE id = 1`, pgconv.Int64ToNumeric(amount))
	if err != nil {
		return fmt.Errorf("credit platform revenue: %w", err)
	}
	return nil
}

func (r *revenueRepo) DebitPlatform(ctx context.Context, tx pgx.Tx, amount int64) error {
	tag, err := tx.Exec(ctx, `
		UPDATE platform_revenue SET balance = balance - $1, updated_at = now()
		WHERE id = 1 AND balance >= $1`, pgconv.Int64ToNumeric(amount))
	if err != nil {
		return fmt.Errorf("debit platform revenue: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInsufficientBalance()
	}
	return nil
}
