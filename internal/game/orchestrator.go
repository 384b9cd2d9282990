// Package game orchestrates a full gacha play: payment check, optional boost
// burn, random draw, prize award or consolation mint, revenue split, stats and
// refund. One play is one transaction under the cabinet row lock.
package game

import (
	"context"
	"log/slog"
	"math/big"
	"slices"
	"time"

	"github.com/gachabox/platform/internal/domain"
	"github.com/gachabox/platform/internal/draw"
	"github.com/gachabox/platform/internal/escrow"
	"github.com/gachabox/platform/internal/repository"
	"github.com/gachabox/platform/internal/revenue"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TokenLedger mints and burns the consolation/boost token.
type TokenLedger interface {
	Mint(ctx context.Context, to uuid.UUID, amount int64) error
	BurnFrom(ctx context.Context, from uuid.UUID, amount int64) error
}

// RandomSource yields one 256-bit random value per request.
type RandomSource interface {
	Draw(ctx context.Context, requestID string) (*big.Int, error)
}

// Orchestrator runs the play pipeline.
type Orchestrator struct {
	pool     *pgxpool.Pool
	cabinets repository.CabinetRepository
	outbox   repository.OutboxRepository
	escrow   *escrow.Ledger
	revenue  *revenue.Ledger
	tokens   TokenLedger
	random   RandomSource
	payments revenue.PaymentSender
	logger   *slog.Logger
}

// NewOrchestrator wires the play pipeline.
func NewOrchestrator(
	pool *pgxpool.Pool,
	cabinets repository.CabinetRepository,
	outbox repository.OutboxRepository,
	escrowLedger *escrow.Ledger,
	revenueLedger *revenue.Ledger,
	tokens TokenLedger,
	random RandomSource,
	payments revenue.PaymentSender,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		pool:     pool,
		cabinets: cabinets,
		outbox:   outbox,
		escrow:   escrowLedger,
		revenue:  revenueLedger,
		tokens:   tokens,
		random:   random,
		payments: payments,
		logger:   logger,
	}
}

// Play runs one play in its own transaction.
func (o *Orchestrator) Play(ctx context.Context, params domain.PlayParams) (*domain.PlayResult, error) {
	tx, err := o.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	cab, err := o.cabinets.LockForUpdate(ctx, tx, params.CabinetID)
	if err != nil {
		return nil, domain.ErrInternal("lock cabinet", err)
	}
	if cab == nil {
		return nil, domain.ErrNotFound("cabinet", params.CabinetID.String())
	}

	result, err := o.PlayInTx(ctx, tx, cab, params)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	o.logger.Info("play resolved",
		"cabinet_id", result.CabinetID,
		"player_id", result.PlayerID,
		"won", result.Won,
		"win_bp", result.WinBp,
	)
	return result, nil
}

// PlayInTx runs the pipeline within the caller's transaction. The caller must
// hold the cabinet row lock. Any error aborts the whole play.
func (o *Orchestrator) PlayInTx(ctx context.Context, tx pgx.Tx, cab *domain.Cabinet, params domain.PlayParams) (*domain.PlayResult, error) {
	if !cab.Playable() {
		return nil, domain.ErrCabinetInactive()
	}

	price := cab.Config.PlayPrice
	if params.Paid < price {
		return nil, domain.ErrInsufficientPayment(price, params.Paid)
	}

	active, err := o.escrow.Active(ctx, tx, cab.ID)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, domain.ErrNoActiveItems()
	}

	if err := draw.ValidateBoost(params.Boost, price); err != nil {
		return nil, err
	}
	if params.Boost > 0 {
		if err := o.tokens.BurnFrom(ctx, params.PlayerID, params.Boost); err != nil {
			return nil, err
		}
	}

	r, err := o.random.Draw(ctx, uuid.New().String())
	if err != nil {
		return nil, domain.ErrInternal("draw random value", err)
	}

	winBp := draw.FinalWinBp(params.Boost, price)
	outcome, err := draw.Resolve(r, winBp, slices.Values(active))
	if err != nil {
		return nil, err
	}

	if _, err := o.revenue.DistributeInTx(ctx, tx, cab.ID, price, cab.Config.PlatformFeeBp); err != nil {
		return nil, err
	}

	result := &domain.PlayResult{
		CabinetID: cab.ID,
		PlayerID:  params.PlayerID,
		Won:       outcome.Won,
		WinBp:     winBp,
	}

	if outcome.Won {
		prize := outcome.Item
		if err := o.escrow.AwardInTx(ctx, tx, cab, &prize, params.PlayerID); err != nil {
			return nil, err
		}
		result.Prize = &prize
	} else {
		consolation := price / 10
		if consolation > 0 {
			if err := o.tokens.Mint(ctx, params.PlayerID, consolation); err != nil {
				return nil, err
			}
			if err := o.outbox.Insert(ctx, tx, domain.NewConsolationMintedEvent(cab.ID, params.PlayerID, consolation)); err != nil {
				return nil, domain.ErrInternal("insert outbox event", err)
			}
		}
		result.Consolation = consolation
	}

	if err := o.cabinets.RecordPlay(ctx, tx, cab.ID, price, time.Now()); err != nil {
		return nil, domain.ErrInternal("record play", err)
	}

	// Overpayment refund is the last external call so nothing observable is
	// left pending when the payee runs.
	if refund := params.Paid - price; refund > 0 {
		if err := o.payments.Send(ctx, params.PlayerID, refund); err != nil {
			return nil, err
		}
		result.Refund = refund
	}

	if err := o.outbox.Insert(ctx, tx, domain.NewGachaPlayedEvent(result)); err != nil {
		return nil, domain.ErrInternal("insert outbox event", err)
	}
	return result, nil
}
