package game

import (
	"context"
	"io"
	"log/slog"
	"math/big"
	"testing"
	"time"

	"github.com/gachabox/platform/internal/domain"
	"github.com/gachabox/platform/internal/escrow"
	"github.com/gachabox/platform/internal/revenue"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type playFixture struct {
	orch     *Orchestrator
	cabs     *fakeCabinets
	items    *fakeItems
	accounts *fakeRevenueAccounts
	outbox   *fakeOutbox
	bridge   *fakeBridge
	tokens   *fakeTokens
	random   *fakeRandom
	payments *fakePayments
	cab      *domain.Cabinet
	player   uuid.UUID
}

func newPlayFixture(t *testing.T) *playFixture {
	t.Helper()
	cabs := newFakeCabinets()
	items := newFakeItems()
	accounts := newFakeRevenueAccounts()
	outbox := &fakeOutbox{}
	bridge := &fakeBridge{}
	tokens := &fakeTokens{}
	random := &fakeRandom{value: big.NewInt(0)}
	payments := &fakePayments{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	escrowLedger := escrow.NewLedger(nil, cabs, items, outbox, bridge, 24*time.Hour)
	revenueLedger := revenue.NewLedger(nil, cabs, accounts, outbox, payments)
	orch := NewOrchestrator(nil, cabs, outbox, escrowLedger, revenueLedger,
		tokens, random, payments, logger)

	cab := &domain.Cabinet{
		ID:       uuid.New(),
		OwnerID:  uuid.New(),
		Name:     "test cabinet",
		Config:   domain.DefaultConfig(1000, 500, "platform"),
		IsActive: true,
	}
	cabs.byID[cab.ID] = cab

	return &playFixture{
		orch:     orch,
		cabs:     cabs,
		items:    items,
		accounts: accounts,
		outbox:   outbox,
		bridge:   bridge,
		tokens:   tokens,
		random:   random,
		payments: payments,
		cab:      cab,
		player:   uuid.New(),
	}
}

func (f *playFixture) stockItems(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		f.items.cabinet(f.cab.ID)[i] = domain.GachaItem{
			CabinetID: f.cab.ID,
			Position:  i,
			Asset:     domain.AssetRef{Kind: domain.AssetExternalNFT, Contract: "0xprize", TokenID: uuid.NewString()},
			Rarity:    3,
			IsActive:  true,
		}
	}
	f.cab.ItemCount = n
}

func (f *playFixture) play(paid, boost int64) (*domain.PlayResult, error) {
	return f.orch.PlayInTx(context.Background(), nil, f.cab, domain.PlayParams{
		CabinetID: f.cab.ID,
		PlayerID:  f.player,
		Paid:      paid,
		Boost:     boost,
	})
}

func TestPlayRejectsInactiveCabinet(t *testing.T) {
	f := newPlayFixture(t)
	f.cab.IsActive = false

	_, err := f.play(1000, 0)
	require.Error(t, err)
	assert.Equal(t, "CABINET_INACTIVE", err.(*domain.AppError).Code)
}

func TestPlayRejectsMaintenanceMode(t *testing.T) {
	f := newPlayFixture(t)
	f.cab.InMaintenance = true

	_, err := f.play(1000, 0)
	require.Error(t, err)
	assert.Equal(t, "CABINET_INACTIVE", err.(*domain.AppError).Code)
}

func TestPlayRejectsInsufficientPayment(t *testing.T) {
	f := newPlayFixture(t)
	f.stockItems(t, 1)

	_, err := f.play(999, 0)
	require.Error(t, err)
	assert.Equal(t, "INSUFFICIENT_PAYMENT", err.(*domain.AppError).Code)
}

func TestPlayRejectsEmptyCabinet(t *testing.T) {
	f := newPlayFixture(t)

	_, err := f.play(1000, 0)
	require.Error(t, err)
	assert.Equal(t, "NO_ACTIVE_ITEMS", err.(*domain.AppError).Code)
}

func TestPlayRejectsExcessiveBoost(t *testing.T) {
	f := newPlayFixture(t)
	f.stockItems(t, 1)

	// Max boost is playPrice/5 = 200.
	_, err := f.play(1000, 201)
	require.Error(t, err)
	assert.Equal(t, "INVALID_BOOST_AMOUNT", err.(*domain.AppError).Code)
	assert.Empty(t, f.tokens.burns)
}

func TestPlayWinAwardsPrize(t *testing.T) {
	f := newPlayFixture(t)
	f.stockItems(t, 1)
	f.random.value = big.NewInt(0) // roll 0 < 5000: win

	result, err := f.play(1000, 0)
	require.NoError(t, err)
	assert.True(t, result.Won)
	require.NotNil(t, result.Prize)
	assert.Equal(t, int64(5000), result.WinBp)
	assert.Equal(t, int64(0), result.Consolation)

	// Prize left escrow and went to the player.
	assert.Empty(t, f.items.ordered(f.cab.ID))
	assert.Equal(t, 0, f.cab.ItemCount)
	require.Len(t, f.bridge.pushes, 1)
	assert.Equal(t, f.player, f.bridge.pushes[0])

	// Revenue was split 95/5 at 500 bp.
	assert.Equal(t, int64(950), f.accounts.owner[f.cab.ID])
	assert.Equal(t, int64(50), f.accounts.platform)

	assert.Equal(t, 1, f.cabs.plays)
	assert.True(t, f.outbox.has(domain.EventGachaPlayed))
	assert.True(t, f.outbox.has(domain.EventPrizeWon))
}

func TestPlayLossMintsConsolation(t *testing.T) {
	f := newPlayFixture(t)
	f.stockItems(t, 1)
	f.random.value = big.NewInt(9999) // roll 9999 >= 5000: lose

	result, err := f.play(1000, 0)
	require.NoError(t, err)
	assert.False(t, result.Won)
	assert.Nil(t, result.Prize)
	assert.Equal(t, int64(100), result.Consolation)

	// Item stays in escrow.
	assert.Len(t, f.items.ordered(f.cab.ID), 1)

	require.Len(t, f.tokens.mints, 1)
	assert.Equal(t, f.player, f.tokens.mints[0].account)
	assert.Equal(t, int64(100), f.tokens.mints[0].amount)

	// Revenue is distributed regardless of outcome.
	assert.Equal(t, int64(950), f.accounts.owner[f.cab.ID])
	assert.Equal(t, int64(50), f.accounts.platform)
	assert.True(t, f.outbox.has(domain.EventConsolationMinted))
}

func TestPlayBurnsBoost(t *testing.T) {
	f := newPlayFixture(t)
	f.stockItems(t, 1)
	f.random.value = big.NewInt(6999) // 6999 < 7000 with full boost: win

	result, err := f.play(1000, 200)
	require.NoError(t, err)
	assert.True(t, result.Won)
	assert.Equal(t, int64(7000), result.WinBp)

	require.Len(t, f.tokens.burns, 1)
	assert.Equal(t, int64(200), f.tokens.burns[0].amount)
}

func TestPlayBurnFailureAborts(t *testing.T) {
	f := newPlayFixture(t)
	f.stockItems(t, 1)
	f.tokens.burnErr = domain.ErrInsufficientBalance()

	_, err := f.play(1000, 100)
	require.Error(t, err)
	assert.Equal(t, "INSUFFICIENT_BALANCE", err.(*domain.AppError).Code)

	// Nothing downstream of the burn ran.
	assert.Equal(t, int64(0), f.accounts.owner[f.cab.ID])
	assert.Equal(t, 0, f.cabs.plays)
	assert.Len(t, f.items.ordered(f.cab.ID), 1)
}

func TestPlayRefundsOverpayment(t *testing.T) {
	f := newPlayFixture(t)
	f.stockItems(t, 1)
	f.random.value = big.NewInt(9999)

	result, err := f.play(1500, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(500), result.Refund)

	require.Len(t, f.payments.sends, 1)
	assert.Equal(t, f.player, f.payments.sends[0].account)
	assert.Equal(t, int64(500), f.payments.sends[0].amount)

	// Only the play price is distributed; the overpayment goes back.
	assert.Equal(t, int64(950)+int64(50), f.accounts.owner[f.cab.ID]+f.accounts.platform)
}

func TestPlaySkipsInactiveItems(t *testing.T) {
	f := newPlayFixture(t)
	f.stockItems(t, 2)

	// Deactivate both: no draw pool left.
	m := f.items.cabinet(f.cab.ID)
	for p, item := range m {
		item.IsActive = false
		m[p] = item
	}

	_, err := f.play(1000, 0)
	require.Error(t, err)
	assert.Equal(t, "NO_ACTIVE_ITEMS", err.(*domain.AppError).Code)
}
