// Package revenue implements the per-cabinet and platform-wide revenue
// ledger. Credits come only from the play pipeline; debits only from the
// explicit withdrawal operations, which zero the balance before transferring
// so a re-entrant call can never observe a stale nonzero balance.
package revenue

import (
	"context"
	"sort"

	"github.com/gachabox/platform/internal/domain"
	"github.com/gachabox/platform/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PaymentSender pays out native currency to an account.
type PaymentSender interface {
	Send(ctx context.Context, to uuid.UUID, amount int64) error
}

// Ledger is the revenue bookkeeping engine.
type Ledger struct {
	pool     *pgxpool.Pool
	cabinets repository.CabinetRepository
	accounts repository.RevenueRepository
	outbox   repository.OutboxRepository
	payments PaymentSender
}

// NewLedger creates a revenue ledger.
func NewLedger(
	pool *pgxpool.Pool,
	cabinets repository.CabinetRepository,
	accounts repository.RevenueRepository,
	outbox repository.OutboxRepository,
	payments PaymentSender,
) *Ledger {
	return &Ledger{
		pool:     pool,
		cabinets: cabinets,
		accounts: accounts,
		outbox:   outbox,
		payments: payments,
	}
}

// DistributeInTx splits amount between the cabinet owner and the platform
// pool. Pure bookkeeping; no transfer happens here.
func (l *Ledger) DistributeInTx(ctx context.Context, tx pgx.Tx, cabinetID uuid.UUID, amount, feeRateBp int64) (domain.RevenueSplit, error) {
	split := domain.SplitRevenue(amount, feeRateBp)

	if err := l.accounts.CreditOwner(ctx, tx, cabinetID, split.OwnerShare); err != nil {
		return domain.RevenueSplit{}, domain.ErrInternal("credit owner", err)
	}
	if err := l.accounts.CreditPlatform(ctx, tx, split.PlatformFee); err != nil {
		return domain.RevenueSplit{}, domain.ErrInternal("credit platform", err)
	}
	if err := l.outbox.Insert(ctx, tx, domain.NewRevenueDistributedEvent(cabinetID, split)); err != nil {
		return domain.RevenueSplit{}, domain.ErrInternal("insert outbox event", err)
	}
	return split, nil
}

// WithdrawOwner pays out a cabinet's accumulated owner revenue.
func (l *Ledger) WithdrawOwner(ctx context.Context, cabinetID, requester uuid.UUID) (int64, error) {
	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return 0, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	cab, err := l.lockCabinet(ctx, tx, cabinetID)
	if err != nil {
		return 0, err
	}

	amount, err := l.WithdrawOwnerInTx(ctx, tx, cab, requester)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, domain.ErrInternal("commit tx", err)
	}
	return amount, nil
}

// WithdrawOwnerInTx zeroes the balance, then transfers it. The zero must land
// before the send: the payment call is the one place an external callee could
// re-enter.
func (l *Ledger) WithdrawOwnerInTx(ctx context.Context, tx pgx.Tx, cab *domain.Cabinet, requester uuid.UUID) (int64, error) {
	if cab.OwnerID != requester {
		return 0, domain.ErrForbidden("only the cabinet owner can withdraw revenue")
	}

	balance, err := l.accounts.OwnerBalance(ctx, tx, cab.ID)
	if err != nil {
		return 0, domain.ErrInternal("read owner balance", err)
	}
	if balance == 0 {
		return 0, domain.ErrNothingToWithdraw()
	}

	if err := l.accounts.ZeroOwner(ctx, tx, cab.ID); err != nil {
		return 0, domain.ErrInternal("zero owner balance", err)
	}
	if err := l.payments.Send(ctx, requester, balance); err != nil {
		return 0, err
	}
	if err := l.outbox.Insert(ctx, tx, domain.NewRevenueWithdrawnEvent(cab.ID.String(), requester, balance, "owner")); err != nil {
		return 0, domain.ErrInternal("insert outbox event", err)
	}
	return balance, nil
}

// BatchWithdrawOwner drains every listed cabinet the requester owns and sends
// one aggregate payout. Cabinets not owned by the requester, unknown ids and
// zero balances are skipped silently.
func (l *Ledger) BatchWithdrawOwner(ctx context.Context, cabinetIDs []uuid.UUID, requester uuid.UUID) (int64, error) {
	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return 0, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	total, err := l.BatchWithdrawOwnerInTx(ctx, tx, cabinetIDs, requester)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, domain.ErrInternal("commit tx", err)
	}
	return total, nil
}

// BatchWithdrawOwnerInTx implements the batch drain. Cabinet rows are locked
// in sorted id order so concurrent batches cannot deadlock.
func (l *Ledger) BatchWithdrawOwnerInTx(ctx context.Context, tx pgx.Tx, cabinetIDs []uuid.UUID, requester uuid.UUID) (int64, error) {
	if len(cabinetIDs) == 0 {
		return 0, domain.ErrValidation("no cabinets to withdraw from")
	}

	ids := make([]uuid.UUID, len(cabinetIDs))
	copy(ids, cabinetIDs)
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	var total int64
	for _, id := range ids {
		cab, err := l.cabinets.LockForUpdate(ctx, tx, id)
		if err != nil {
			return 0, domain.ErrInternal("lock cabinet", err)
		}
		if cab == nil || cab.OwnerID != requester {
			continue
		}

		balance, err := l.accounts.OwnerBalance(ctx, tx, id)
		if err != nil {
			return 0, domain.ErrInternal("read owner balance", err)
		}
		if balance == 0 {
			continue
		}

		if err := l.accounts.ZeroOwner(ctx, tx, id); err != nil {
			return 0, domain.ErrInternal("zero owner balance", err)
		}
		if err := l.outbox.Insert(ctx, tx, domain.NewRevenueWithdrawnEvent(id.String(), requester, balance, "owner")); err != nil {
			return 0, domain.ErrInternal("insert outbox event", err)
		}
		total += balance
	}

	if total == 0 {
		return 0, domain.ErrNothingToWithdraw()
	}
	if err := l.payments.Send(ctx, requester, total); err != nil {
		return 0, err
	}
	return total, nil
}

// WithdrawPlatform pays out part of the platform pool. Platform-admin
// authority is enforced by the caller's admin realm.
func (l *Ledger) WithdrawPlatform(ctx context.Context, amount int64, requester uuid.UUID) error {
	if err := domain.ValidatePositiveAmount(amount); err != nil {
		return err
	}

	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	if err := l.WithdrawPlatformInTx(ctx, tx, amount, requester); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.ErrInternal("commit tx", err)
	}
	return nil
}

// WithdrawPlatformInTx debits the pool, then transfers.
func (l *Ledger) WithdrawPlatformInTx(ctx context.Context, tx pgx.Tx, amount int64, requester uuid.UUID) error {
	if err := l.accounts.DebitPlatform(ctx, tx, amount); err != nil {
		return err
	}
	if err := l.payments.Send(ctx, requester, amount); err != nil {
		return err
	}
	if err := l.outbox.Insert(ctx, tx, domain.NewRevenueWithdrawnEvent("platform", requester, amount, "platform")); err != nil {
		return domain.ErrInternal("insert outbox event", err)
	}
	return nil
}

// OwnerBalance reads a cabinet's withdrawable balance.
func (l *Ledger) OwnerBalance(ctx context.Context, cabinetID uuid.UUID) (int64, error) {
	balance, err := l.accounts.OwnerBalance(ctx, l.pool, cabinetID)
	if err != nil {
		return 0, domain.ErrInternal("read owner balance", err)
	}
	return balance, nil
}

// PlatformBalance reads the platform pool.
func (l *Ledger) PlatformBalance(ctx context.Context) (int64, error) {
	balance, err := l.accounts.PlatformBalance(ctx, l.pool)
	if err != nil {
		return 0, domain.ErrInternal("read platform balance", err)
	}
	return balance, nil
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
