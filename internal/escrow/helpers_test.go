package escrow

import (
	"context"
	"sort"
	"time"

	"github.com/gachabox/platform/internal/domain"
	"github.com/gachabox/platform/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// In-memory fakes. Engine commands take the transaction from the caller, so
// tests drive the *InTx methods directly with a nil tx.

type fakeCabinets struct {
	byID    map[uuid.UUID]*domain.Cabinet
	adjusts []int
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

func (f *fakeCabinets) CountByOwner(_ context.Context, _ repository.DBTX, ownerID uuid.UUID) (int, error) {
	n := 0
	for _, c := range f.byID {
		if c.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

func (f *fakeCabinets) ListByOwner(_ context.Context, _ repository.DBTX, ownerID uuid.UUID) ([]domain.Cabinet, error) {
	var out []domain.Cabinet
	for _, c := range f.byID {
		if c.OwnerID == ownerID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCabinets) UpdateConfig(_ context.Context, _ pgx.Tx, id uuid.UUID, name string, cfg domain.CabinetConfig) error {
	c, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound("cabinet", id.String())
	}
	c.Name = name
	c.Config = cfg
	return nil
}

func (f *fakeCabinets) SetStatus(_ context.Context, _ pgx.Tx, id uuid.UUID, isActive, inMaintenance bool) error {
	if c, ok := f.byID[id]; ok {
		c.IsActive = isActive
		c.InMaintenance = inMaintenance
	}
	return nil
}

func (f *fakeCabinets) AdjustItemCount(_ context.Context, _ pgx.Tx, _ uuid.UUID, delta int) error {
	f.adjusts = append(f.adjusts, delta)
	return nil
}

func (f *fakeCabinets) RecordPlay(_ context.Context, _ pgx.Tx, id uuid.UUID, price int64, playedAt time.Time) error {
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

func (f *fakeOutbox) types() []domain.EventType {
	out := make([]domain.EventType, len(f.drafts))
	for i, d := range f.drafts {
		out[i] = d.EventType
	}
	return out
}

type bridgeCall struct {
	asset   domain.AssetRef
	account uuid.UUID
}

type fakeBridge struct {
	pulls   []bridgeCall
	pushes  []bridgeCall
	pullErr error
	pushErr error
}

func (f *fakeBridge) PullIn(_ context.Context, asset domain.AssetRef, from uuid.UUID) error {
	if f.pullErr != nil {
		return f.pullErr
	}
	f.pulls = append(f.pulls, bridgeCall{asset: asset, account: from})
	return nil
}

func (f *fakeBridge) PushOut(_ context.Context, asset domain.AssetRef, to uuid.UUID) error {
	if f.pushErr != nil {
		return f.pushErr
	}
	f.pushes = append(f.pushes, bridgeCall{asset: asset, account: to})
	return nil
}
