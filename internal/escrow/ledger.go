// Package escrow implements the per-cabinet item ledger: custody of deposited
// prize assets, O(1) swap-removal, activity toggling and the anti-abuse
// withdrawal lock. All mutating commands run under the cabinet row lock.
package escrow

import (
	"context"
	"time"

	"github.com/gachabox/platform/internal/domain"
	"github.com/gachabox/platform/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AssetBridge moves escrowed assets between external custody and this system.
type AssetBridge interface {
	// PullIn takes the asset from the depositor into escrow custody.
	PullIn(ctx context.Context, asset domain.AssetRef, from uuid.UUID) error

	// PushOut releases the asset from escrow to the recipient.
	PushOut(ctx context.Context, asset domain.AssetRef, to uuid.UUID) error
}

// Ledger is the item escrow engine for all cabinets.
type Ledger struct {
	pool       *pgxpool.Pool
	cabinets   repository.CabinetRepository
	items      repository.ItemRepository
	outbox     repository.OutboxRepository
	bridge     AssetBridge
	lockWindow time.Duration
}

// NewLedger creates an escrow ledger. lockWindow is how long a freshly
// deposited item stays non-withdrawable.
func NewLedger(
	pool *pgxpool.Pool,
	cabinets repository.CabinetRepository,
	items repository.ItemRepository,
	outbox repository.OutboxRepository,
	bridge AssetBridge,
	lockWindow time.Duration,
) *Ledger {
	return &Ledger{
		pool:       pool,
		cabinets:   cabinets,
		items:      items,
		outbox:     outbox,
		bridge:     bridge,
		lockWindow: lockWindow,
	}
}

// Deposit escrows a batch of items into a cabinet in one transaction.
func (l *Ledger) Deposit(ctx context.Context, cabinetID uuid.UUID, deposits []domain.ItemDeposit, depositor uuid.UUID) ([]domain.GachaItem, error) {
	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	cab, err := l.lockCabinet(ctx, tx, cabinetID)
	if err != nil {
		return nil, err
	}

	items, err := l.DepositInTx(ctx, tx, cab, deposits, depositor, time.Now())
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}
	return items, nil
}

// DepositInTx validates and escrows items within the caller's transaction.
// The caller must hold the cabinet row lock.
func (l *Ledger) DepositInTx(ctx context.Context, tx pgx.Tx, cab *domain.Cabinet, deposits []domain.ItemDeposit, depositor uuid.UUID, now time.Time) ([]domain.GachaItem, error) {
	if len(deposits) == 0 {
		return nil, domain.ErrValidation("no items to deposit")
	}
	if cab.ItemCount+len(deposits) > cab.Config.MaxItems {
		return nil, domain.ErrCabinetFull(cab.Config.MaxItems)
	}

	// Validate the whole batch before touching custody.
	seen := make(map[string]bool, len(deposits))
	for _, d := range deposits {
		if err := domain.ValidateAssetRef(d.Asset); err != nil {
			return nil, err
		}
		if err := domain.ValidateRarity(d.Rarity); err != nil {
			return nil, err
		}
		key := d.Asset.DuplicateKey()
		if seen[key] {
			return nil, domain.ErrDuplicateItem(key)
		}
		seen[key] = true

		exists, err := l.items.ExistsDuplicate(ctx, tx, cab.ID, d.Asset)
		if err != nil {
			return nil, domain.ErrInternal("check duplicate", err)
		}
		if exists {
			return nil, domain.ErrDuplicateItem(key)
		}
	}

	escrowed := make([]domain.GachaItem, 0, len(deposits))
	for _, d := range deposits {
		if err := l.bridge.PullIn(ctx, d.Asset, depositor); err != nil {
			return nil, err
		}

		item := domain.GachaItem{
			CabinetID:         cab.ID,
			Position:          cab.ItemCount,
			Asset:             d.Asset,
			Rarity:            d.Rarity,
			Metadata:          d.Metadata,
			IsActive:          true,
			Depositor:         depositor,
			DepositedAt:       now,
			WithdrawableAfter: now.Add(l.lockWindow),
		}
		if err := l.items.Insert(ctx, tx, &item); err != nil {
			return nil, domain.ErrInternal("insert item", err)
		}
		cab.ItemCount++

		if err := l.outbox.Insert(ctx, tx, domain.NewItemDepositedEvent(&item)); err != nil {
			return nil, domain.ErrInternal("insert outbox event", err)
		}
		escrowed = append(escrowed, item)
	}

	if err := l.cabinets.AdjustItemCount(ctx, tx, cab.ID, len(escrowed)); err != nil {
		return nil, domain.ErrInternal("adjust item count", err)
	}
	return escrowed, nil
}

// Withdraw returns escrowed items to the cabinet owner in one transaction.
func (l *Ledger) Withdraw(ctx context.Context, cabinetID uuid.UUID, indices []int, requester uuid.UUID) error {
	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	cab, err := l.lockCabinet(ctx, tx, cabinetID)
	if err != nil {
		return err
	}

	if err := l.WithdrawInTx(ctx, tx, cab, indices, requester, time.Now()); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.ErrInternal("commit tx", err)
	}
	return nil
}

// WithdrawInTx removes items at the given ledger indices and pushes their
// assets back to the requester. Indices are processed highest-to-lowest so
// swap-removal cannot invalidate an index still to be processed.
func (l *Ledger) WithdrawInTx(ctx context.Context, tx pgx.Tx, cab *domain.Cabinet, indices []int, requester uuid.UUID, now time.Time) error {
	if cab.OwnerID != requester {
		return domain.ErrForbidden("only the cabinet owner can withdraw items")
	}

	ordered, err := descendingIndices(indices)
	if err != nil {
		return err
	}

	// Validate the whole batch before the first custody push so a locked or
	// missing index cannot abort after assets already left escrow.
	batch := make([]*domain.GachaItem, len(ordered))
	for i, idx := range ordered {
		item, err := l.items.FindByPosition(ctx, tx, cab.ID, idx)
		if err != nil {
			return domain.ErrInternal("find item", err)
		}
		if item == nil {
			return domain.ErrItemNotFound(idx)
		}
		if !item.Withdrawable(now) {
			return domain.ErrItemLocked(item.WithdrawableAfter)
		}
		batch[i] = item
	}

	// Descending order keeps lower positions untouched by swap-removal, so
	// the validated items stay at their indices throughout.
	for i, idx := range ordered {
		item := batch[i]
		if err := l.bridge.PushOut(ctx, item.Asset, requester); err != nil {
			return err
		}
		if err := l.removeInTx(ctx, tx, cab, idx); err != nil {
			return err
		}
		if err := l.outbox.Insert(ctx, tx, domain.NewItemWithdrawnEvent(item, requester)); err != nil {
			return domain.ErrInternal("insert outbox event", err)
		}
	}

	if err := l.cabinets.AdjustItemCount(ctx, tx, cab.ID, -len(ordered)); err != nil {
		return domain.ErrInternal("adjust item count", err)
	}
	return nil
}

// AwardInTx hands the won item to the player and removes it from the ledger.
// Used by the play pipeline; the caller holds the cabinet row lock.
func (l *Ledger) AwardInTx(ctx context.Context, tx pgx.Tx, cab *domain.Cabinet, item *domain.GachaItem, playerID uuid.UUID) error {
	if err := l.bridge.PushOut(ctx, item.Asset, playerID); err != nil {
		return err
	}
	if err := l.removeInTx(ctx, tx, cab, item.Position); err != nil {
		return err
	}
	if err := l.cabinets.AdjustItemCount(ctx, tx, cab.ID, -1); err != nil {
		return domain.ErrInternal("adjust item count", err)
	}
	if err := l.outbox.Insert(ctx, tx, domain.NewPrizeWonEvent(cab.ID, playerID, item)); err != nil {
		return domain.ErrInternal("insert outbox event", err)
	}
	return nil
}

// removeInTx swap-removes the item at position and keeps cab.ItemCount in step.
func (l *Ledger) removeInTx(ctx context.Context, tx pgx.Tx, cab *domain.Cabinet, position int) error {
	if err := l.items.DeleteSwap(ctx, tx, cab.ID, position, cab.ItemCount-1); err != nil {
		return err
	}
	cab.ItemCount--
	return nil
}

// ToggleActive flips draw eligibility of the item at index.
func (l *Ledger) ToggleActive(ctx context.Context, cabinetID uuid.UUID, index int, requester uuid.UUID) (*domain.GachaItem, error) {
	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	cab, err := l.lockCabinet(ctx, tx, cabinetID)
	if err != nil {
		return nil, err
	}

	item, err := l.ToggleActiveInTx(ctx, tx, cab, index, requester)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}
	return item, nil
}

// ToggleActiveInTx flips is_active within the caller's transaction.
func (l *Ledger) ToggleActiveInTx(ctx context.Context, tx pgx.Tx, cab *domain.Cabinet, index int, requester uuid.UUID) (*domain.GachaItem, error) {
	if cab.OwnerID != requester {
		return nil, domain.ErrForbidden("only the cabinet owner can toggle items")
	}

	item, err := l.items.FindByPosition(ctx, tx, cab.ID, index)
	if err != nil {
		return nil, domain.ErrInternal("find item", err)
	}
	if item == nil {
		return nil, domain.ErrItemNotFound(index)
	}

	item.IsActive = !item.IsActive
	if err := l.items.SetActive(ctx, tx, cab.ID, index, item.IsActive); err != nil {
		return nil, err
	}
	if err := l.outbox.Insert(ctx, tx, domain.NewItemStatusChangedEvent(item)); err != nil {
		return nil, domain.ErrInternal("insert outbox event", err)
	}
	return item, nil
}

// Active returns the cabinet's active items in insertion order.
func (l *Ledger) Active(ctx context.Context, db repository.DBTX, cabinetID uuid.UUID) ([]domain.GachaItem, error) {
	items, err := l.items.ListActive(ctx, db, cabinetID)
	if err != nil {
		return nil, domain.ErrInternal("list active items", err)
	}
	return items, nil
}

// Items returns all of the cabinet's items in ledger order.
func (l *Ledger) Items(ctx context.Context, cabinetID uuid.UUID) ([]domain.GachaItem, error) {
	items, err := l.items.ListByCabinet(ctx, l.pool, cabinetID)
	if err != nil {
		return nil, domain.ErrInternal("list items", err)
	}
	return items, nil
}

func (l *Ledger) lockCabinet(ctx context.Context, tx pgx.Tx, cabinetID uuid.UUID) (*domain.Cabinet, error) {
	cab, err := l.cabinets.LockForUpdate(ctx, tx, cabinetID)
	if err != nil {
		return nil, domain.ErrInternal("lock cabinet", err)
	}
	if cab == nil {
		return nil, domain.ErrNotFound("cabinet", cabinetID.String())
	}
	return cab, nil
}
