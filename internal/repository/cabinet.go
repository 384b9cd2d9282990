package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/gachabox/platform/internal/domain"
	"github.com/gachabox/platform/internal/pgconv"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const cabinetColumns = `
	id, owner_id, name, play_price, max_items, platform_fee_bp, fee_recipient,
	allows_custom_odds, is_active, in_maintenance, item_count, total_plays,
	total_revenue, last_play_at, created_at, updated_at`

type cabinetRepo struct{}

// NewCabinetRepository returns a pgx-backed CabinetRepository.
func NewCabinetRepository() CabinetRepository {
	return &cabinetRepo{}
}

func (r *cabinetRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Cabinet, error) {
	row := db.QueryRow(ctx, `SELECT `+cabinetColumns+` FROM cabinets WHERE id = $1`, id)
	return scanCabinet(row)
}

func (r *cabinetRepo) LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Cabinet, error) {
	row := tx.QueryRow(ctx, `SELECT `+cabinetColumns+` FROM cabinets WHERE id = $1 FOR UPDATE`, id)
	return scanCabinet(row)
}

func (r *cabinetRepo) Create(ctx context.Context, db DBTX, c *domain.Cabinet) error {
	_, err := db.Exec(ctx, `
		INSERT INTO cabinets
		  (id, owner_id, name, play_price, max_items, platform_fee_bp, fee_recipient,
		   allows_custom_odds, is_active, in_maintenance, item_count, total_plays,
		   total_revenue, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		c.ID, c.OwnerID, c.Name,
		pgconv.Int64ToNumeric(c.Config.PlayPrice),
		c.Config.MaxItems,
		c.Config.PlatformFeeBp,
		c.Config.FeeRecipient,
		c.Config.AllowsCustomOdds,
		c.IsActive, c.InMaintenance, c.ItemCount, c.TotalPlays,
		pgconv.Int64ToNumeric(c.TotalRevenue),
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert cabinet: %w", err)
	}
	return nil
}

func (r *cabinetRepo) CountByOwner(ctx context.Context, db DBTX, ownerID uuid.UUID) (int, error) {
	var n int
	err := db.QueryRow(ctx, `SELECT count(*) FROM cabinets WHERE owner_id = $1`, ownerID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count cabinets: %w", err)
	}
	return n, nil
}

func (r *cabinetRepo) ListByOwner(ctx context.Context, db DBTX, ownerID uuid.UUID) ([]domain.Cabinet, error) {
	rows, err := db.Query(ctx, `
		SELECT `+cabinetColumns+`
		FROM cabinets WHERE owner_id = $1
		ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query cabinets: %w", err)
	}
	defer rows.Close()

	var cabinets []domain.Cabinet
	for rows.Next() {
		c, err := scanCabinetValues(rows)
		if err != nil {
			return nil, err
		}
		cabinets = append(cabinets, *c)
	}
	return cabinets, rows.Err()
}

func (r *cabinetRepo) UpdateConfig(ctx context.Context, tx pgx.Tx, id uuid.UUID, name string, cfg domain.CabinetConfig) error {
	tag, err := tx.Exec(ctx, `
		UPDATE cabinets SET
		  name = $2, play_price = $3, max_items = $4, platform_fee_bp = $5,
		  fee_recipient = $6, allows_custom_odds = $7, updated_at = now()
		WHERE id = $1`,
		id, name,
		pgconv.Int64ToNumeric(cfg.PlayPrice),
		cfg.MaxItems, cfg.PlatformFeeBp, cfg.FeeRecipient, cfg.AllowsCustomOdds,
	)
	if err != nil {
		return fmt.Errorf("update cabinet config: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("cabinet", id.String())
	}
	return nil
}

func (r *cabinetRepo) SetStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, isActive, inMaintenance bool) error {
	_, err := tx.Exec(ctx, `
		UPDATE cabinets SET is_active = $2, in_maintenance = $3, updated_at = now()
		WHERE id = $1`, id, isActive, inMaintenance)
	if err != nil {
		return fmt.Errorf("update cabinet status: %w", err)
	}
	return nil
}

func (r *cabinetRepo) AdjustItemCount(ctx context.Context, tx pgx.Tx, id uuid.UUID, delta int) error {
	_, err := tx.Exec(ctx, `
		UPDATE cabinets SET item_count = item_count + $2, updated_at = now()
		WHERE id = $1`, id, delta)
	if err != nil {
		return fmt.Errorf("adjust item count: %w", err)
	}
	return nil
}

func (r *cabinetRepo) RecordPlay(ctx context.Context, tx pgx.Tx, id uuid.UUID, price int64, playedAt time.Time) error {
	_, err := tx.Exec(ctx, `
		UPDATE cabinets SET
		  total_plays = total_plays + 1,
		  total_revenue = total_revenue + $2,
		  last_play_at = $3,
		  updated_at = now()
		WHERE id = $1`, id, pgconv.Int64ToNumeric(price), playedAt)
	if err != nil {
		return fmt.Errorf("record play: %w", err)
	}
	return nil
}

func scanCabinet(row pgx.Row) (*domain.Cabinet, error) {
	c, err := scanCabinetValues(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return c, err
}

func scanCabinetValues(row pgx.Row) (*domain.Cabinet, error) {
	var c domain.Cabinet
	var priceNum, revenueNum pgtype.Numeric
	err := row.Scan(
		&c.ID, &c.OwnerID, &c.Name,
		&priceNum, &c.Config.MaxItems, &c.Config.PlatformFeeBp, &c.Config.FeeRecipient,
		&c.Config.AllowsCustomOdds,
		&c.IsActive, &c.InMaintenance, &c.ItemCount, &c.TotalPlays,
		&revenueNum, &c.LastPlayAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan cabinet: %w", err)
	}

	var convErr error
	c.Config.PlayPrice, convErr = pgconv.NumericToInt64(priceNum)
	if convErr != nil {
		return nil, fmt.Errorf("convert play_price: %w", convErr)
	}
	c.TotalRevenue, convErr = pgconv.NumericToInt64(revenueNum)
	if convErr != nil {
		return nil, fmt.Errorf("convert total_revenue: %w", convErr)
	}
	return &c, nil
}
