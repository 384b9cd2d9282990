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

const itemColumns = `
	cabinet_id, position, asset_kind, contract, token_ref, amount, rarity,
	metadata, is_active, depositor, deposited_at, withdrawable_after`

type itemRepo struct{}

// NewItemRepository returns a pgx-backed ItemRepository.
func NewItemRepository() ItemRepository {
	return &itemRepo{}
}

func (r *itemRepo) ListByCabinet(ctx context.Context, db DBTX, cabinetID uuid.UUID) ([]domain.GachaItem, error) {
	rows, err := db.Query(ctx, `
		SELECT `+itemColumns+`
		FROM cabinet_items WHERE cabinet_id = $1
		ORDER BY position ASC`, cabinetID)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()
	return collectItems(rows)
}

func (r *itemRepo) ListActive(ctx context.Context, db DBTX, cabinetID uuid.UUID) ([]domain.GachaItem, error) {
	rows, err := db.Query(ctx, `
		SELECT `+itemColumns+`
		FROM cabinet_items WHERE cabinet_id = $1 AND is_active
		ORDER BY position ASC`, cabinetID)
	if err != nil {
		return nil, fmt.Errorf("query active items: %w", err)
	}
	defer rows.Close()
	return collectItems(rows)
}

func (r *itemRepo) FindByPosition(ctx context.Context, db DBTX, cabinetID uuid.UUID, position int) (*domain.GachaItem, error) {
	row := db.QueryRow(ctx, `
		SELECT `+itemColumns+`
		FROM cabinet_items WHERE cabinet_id = $1 AND position = $2`, cabinetID, position)
	item, err := scanItem(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return item, err
}

func (r *itemRepo) ExistsDuplicate(ctx context.Context, db DBTX, cabinetID uuid.UUID, asset domain.AssetRef) (bool, error) {
	var exists bool
	err := db.QueryRow(ctx, `
		SELECT EXISTS (
		  SELECT 1 FROM cabinet_items
		  WHERE cabinet_id = $1 AND asset_kind = $2 AND contract = $3
		    AND token_ref = $4 AND amount = $5
		)`, cabinetID, string(asset.Kind), asset.Contract, asset.TokenID,
		pgconv.Int64ToNumeric(asset.Amount)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check duplicate item: %w", err)
	}
	return exists, nil
}

func (r *itemRepo) Insert(ctx context.Context, tx pgx.Tx, item *domain.GachaItem) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO cabinet_items
		  (cabinet_id, position, asset_kind, contract, token_ref, amount, rarity,
		   metadata, is_active, depositor, deposited_at, withdrawable_after)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		item.CabinetID, item.Position,
		string(item.Asset.Kind), item.Asset.Contract, item.Asset.TokenID,
		pgconv.Int64ToNumeric(item.Asset.Amount),
		item.Rarity, item.Metadata, item.IsActive, item.Depositor,
		item.DepositedAt, item.WithdrawableAfter,
	)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (r *itemRepo) SetActive(ctx context.Context, tx pgx.Tx, cabinetID uuid.UUID, position int, active bool) error {
	tag, err := tx.Exec(ctx, `
		UPDATE cabinet_items SET is_active = $3
		WHERE cabinet_id = $1 AND position = $2`, cabinetID, position, active)
	if err != nil {
		return fmt.Errorf("set item active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrItemNotFound(position)
	}
	return nil
}

// DeleteSwap keeps positions dense: the tail row is relocated into the vacated
// slot, so every position < item_count always refers to a live row.
func (r *itemRepo) DeleteSwap(ctx context.Context, tx pgx.Tx, cabinetID uuid.UUID, position, lastPosition int) error {
	tag, err := tx.Exec(ctx, `
		DELETE FROM cabinet_items WHERE cabinet_id = $1 AND position = $2`,
		cabinetID, position)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrItemNotFound(position)
	}

	if position != lastPosition {
		_, err = tx.Exec(ctx, `
			UPDATE cabinet_items SET position = $3
			WHERE cabinet_id = $1 AND position = $2`,
			cabinetID, lastPosition, position)
		if err != nil {
			return fmt.Errorf("relocate tail item: %w", err)
		}
	}
	return nil
}

func scanItem(row pgx.Row) (*domain.GachaItem, error) {
	var item domain.GachaItem
	var kind string
	var amountNum pgtype.Numeric
	err := row.Scan(
		&item.CabinetID, &item.Position, &kind, &item.Asset.Contract,
		&item.Asset.TokenID, &amountNum, &item.Rarity, &item.Metadata,
		&item.IsActive, &item.Depositor, &item.DepositedAt, &item.WithdrawableAfter,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan item: %w", err)
	}
	item.Asset.Kind = domain.AssetKind(kind)
	item.Asset.Amount, err = pgconv.NumericToInt64(amountNum)
	if err != nil {
		return nil, fmt.Errorf("convert item amount: %w", err)
	}
	return &item, nil
}

func collectItems(rows pgx.Rows) ([]domain.GachaItem, error) {
	var items []domain.GachaItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}
