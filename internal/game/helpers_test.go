package game

import (
	"context"
	"math/big"
	"sort"
	"time"

	"github.com/gachabox/platform/internal/domain"
	"github.com/gachabox/platform/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// In-memory fakes for the play pipeline. Engines take the transaction from
// the caller, so tests run PlayInTx with a nil tx.

type fakeCabinets struct {
	byID  map[uuid.UUID]*domain.Cabinet
	plays int
}

func newFakeCabinets() *fakeCabinets {
	return &fakeCabinets{byID: make(map[uuid.UUID]*domain.Cabinet)}
}

func (f *fakeCabinets) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.Cabinet, error) {
	return f.byID[id], nil
}

func (f *fakeCabinets) LockForUpdate(_ context.Context, _ pgx.Tx, id uuid.UUID) (*domain.Cabinet, error) {
	return f.byID[id], nil
}

func (f *fakeCabinets) Create(_ context.Context, _ repository.DBTX, c *domain.Cabinet) error {
	f.byID[c.ID] = c
	return nil
}

func (f *fakeCabinets) CountByOwner(_ context.Context, _ repository.DBTX, _ uuid.UUID) (int, error) {
	return len(f.byID), nil
}

func (f *fakeCabinets) ListByOwner(_ context.Context, _ repository.DBTX, _ uuid.UUID) ([]domain.Cabinet, error) {
	return nil, nil
}

func (f *fakeCabinets) UpdateConfig(_ context.Context, _ pgx.Tx, _ uuid.UUID, _ string, _ domain.CabinetConfig) error {
	return nil
}

func (f *fakeCabinets) SetStatus(_ context.Context, _ pgx.Tx, _ uuid.UUID, _, _ bool) error {
	return nil
}

func (f *fakeCabinets) AdjustItemCount(_ context.Context, _ pgx.Tx, _ uuid.UUID, _ int) error {
	return nil
}

func (f *fakeCabinets) RecordPlay(_ context.Context, _ pgx.Tx, id uuid.UUID, price int64, playedAt time.Time) error {
	f.plays++
	if c, ok := f.byID[id]; ok {
		c.TotalPlays++
		c.TotalRevenue += price
		c.LastPlayAt = &playedAt
	}
	return nil
}

type fakeItems struct {
	byPos map[uuid.UUID]map[int]domain.GachaItem
}

func newFakeItems() *fakeItems {
	return &fakeItems{byPos: make(map[uuid.UUID]map[int]domain.GachaItem)}
}

func (f *fakeItems) cabinet(id uuid.UUID) map[int]domain.GachaItem {
	m, ok := f.byPos[id]
	if !ok {
		m = make(map[int]domain.GachaItem)
		f.byPos[id] = m
	}
	return m
}

func (f *fakeItems) ordered(cabinetID uuid.UUID) []domain.GachaItem {
	m := f.cabinet(cabinetID)
	positions := make([]int, 0, len(m))
	for p := range m {
		positions = append(positions, p)
	}
	sort.Ints(positions)
	out := make([]domain.GachaItem, 0, len(m))
	for _, p := range positions {
		out = append(out, m[p])
	}
	return out
}

func (f *fakeItems) ListByCabinet(_ context.Context, _ repository.DBTX, cabinetID uuid.UUID) ([]domain.GachaItem, error) {
	return f.ordered(cabinetID), nil
}

func (f *fakeItems) ListActive(_ context.Context, _ repository.DBTX, cabinetID uuid.UUID) ([]domain.GachaItem, error) {
	var out []domain.GachaItem
	for _, item := range f.ordered(cabinetID) {
		if item.IsActive {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeItems) FindByPosition(_ context.Context, _ repository.DBTX, cabinetID uuid.UUID, position int) (*domain.GachaItem, error) {
	if item, ok := f.cabinet(cabinetID)[position]; ok {
		return &item, nil
	}
	return nil, nil
}

func (f *fakeItems) ExistsDuplicate(_ context.Context, _ repository.DBTX, cabinetID uuid.UUID, asset domain.AssetRef) (bool, error) {
	for _, item := range f.cabinet(cabinetID) {
		if item.Asset.DuplicateKey() == asset.DuplicateKey() {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeItems) Insert(_ context.Context, _ pgx.Tx, item *domain.GachaItem) error {
	f.cabinet(item.CabinetID)[item.Position] = *item
	return nil
}

func (f *fakeItems) SetActive(_ context.Context, _ pgx.Tx, cabinetID uuid.UUID, position int, active bool) error {
	m := f.cabinet(cabinetID)
	item, ok := m[position]
	if !ok {
		return domain.ErrItemNotFound(position)
	}
	item.IsActive = active
	m[position] = item
	return nil
}

func (f *fakeItems) DeleteSwap(_ context.Context, _ pgx.Tx, cabinetID uuid.UUID, position, lastPosition int) error {
	m := f.cabinet(cabinetID)
	if _, ok := m[position]; !ok {
		return domain.ErrItemNotFound(position)
	}
	delete(m, position)
	if position != lastPosition {
		tail := m[lastPosition]
		tail.Position = position
		m[position] = tail
		delete(m, lastPosition)
	}
	return nil
}

type fakeRevenueAccounts struct {
	owner    map[uuid.UUID]int64
	platform int64
}

func newFakeRevenueAccounts() *fakeRevenueAccounts {
	return &fakeRevenueAccounts{owner: make(map[uuid.UUID]int64)}
}

func (f *fakeRevenueAccounts) OwnerBalance(_ context.Context, _ repository.DBTX, cabinetID uuid.UUID) (int64, error) {
	return f.owner[cabinetID], nil
}

func (f *fakeRevenueAccounts) CreditOwner(_ context.Context, _ pgx.Tx, cabinetID uuid.UUID, amount int64) error {
	f.owner[cabinetID] += amount
	return nil
}

func (f *fakeRevenueAccounts) ZeroOwner(_ context.Context, _ pgx.Tx, cabinetID uuid.UUID) error {
	f.owner[cabinetID] = 0
	return nil
}

func (f *fakeRevenueAccounts) PlatformBalance(_ context.Context, _ repository.DBTX) (int64, error) {
	return f.platform, nil
}

func (f *fakeRevenueAccounts) CreditPlatform(_ context.Context, _ pgx.Tx, amount int64) error {
	f.platform += amount
	return nil
}

func (f *fakeRevenueAccounts) DebitPlatform(_ context.Context, _ pgx.Tx, amount int64) error {
	if f.platform < amount {
		return domain.ErrInsufficientBalance()
	}
	f.platform -= amount
	return nil
}

type fakeOutbox struct {
	drafts []domain.OutboxDraft
}

func (f *fakeOutbox) Insert(_ context.Context, _ repository.DBTX, draft domain.OutboxDraft) error {
	f.drafts = append(f.drafts, draft)
	return nil
}

func (f *fakeOutbox) FetchUnpublished(_ context.Context, _ repository.DBTX, _ int) ([]domain.OutboxRow, error) {
	return nil, nil
}

func (f *fakeOutbox) MarkPublished(_ context.Context, _ repository.DBTX, _ []int64) error {
	return nil
}

func (f *fakeOutbox) has(evt domain.EventType) bool {
	for _, d := range f.drafts {
		if d.EventType == evt {
			return true
		}
	}
	return false
}

type fakeBridge struct {
	pushes []uuid.UUID
}

func (f *fakeBridge) PullIn(_ context.Context, _ domain.AssetRef, _ uuid.UUID) error {
	return nil
}

func (f *fakeBridge) PushOut(_ context.Context, _ domain.AssetRef, to uuid.UUID) error {
	f.pushes = append(f.pushes, to)
	return nil
}

type tokenOp struct {
	account uuid.UUID
	amount  int64
}

type fakeTokens struct {
	mints   []tokenOp
	burns   []tokenOp
	burnErr error
	mintErr error
}

func (f *fakeTokens) Mint(_ context.Context, to uuid.UUID, amount int64) error {
	if f.mintErr != nil {
		return f.mintErr
	}
	f.mints = append(f.mints, tokenOp{account: to, amount: amount})
	return nil
}

func (f *fakeTokens) BurnFrom(_ context.Context, from uuid.UUID, amount int64) error {
	if f.burnErr != nil {
		return f.burnErr
	}
	f.burns = append(f.burns, tokenOp{account: from, amount: amount})
	return nil
}

type fakeRandom struct {
	value *big.Int
}

func (f *fakeRandom) Draw(_ context.Context, _ string) (*big.Int, error) {
	return f.value, nil
}

type fakePayments struct {
	sends []tokenOp
}

func (f *fakePayments) Send(_ context.Context, to uuid.UUID, amount int64) error {
	f.sends = append(f.sends, tokenOp{account: to, amount: amount})
	return nil
}
