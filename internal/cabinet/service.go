// Package cabinet implements the cabinet lifecycle: minting, configuration
// and activation state. Every mutation is owner-gated and runs under the
// cabinet row lock.
package cabinet

import (
	"context"
	"log/slog"
	"time"

	"github.com/gachabox/platform/internal/domain"
	"github.com/gachabox/platform/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Service manages cabinets.
type Service struct {
	pool         *pgxpool.Pool
	cabinets     repository.CabinetRepository
	outbox       repository.OutboxRepository
	logger       *slog.Logger
	maxPerOwner  int
	feeCeilingBp int64
	defaultFeeBp int64
	feeRecipient string
}

// NewService creates the cabinet service. maxPerOwner caps how many cabinets
// one owner may mint; feeCeilingBp bounds the configurable platform fee.
func NewService(
	pool *pgxpool.Pool,
	cabinets repository.CabinetRepository,
	outbox repository.OutboxRepository,
	logger *slog.Logger,
	maxPerOwner int,
	feeCeilingBp int64,
	defaultFeeBp int64,
	feeRecipient string,
) *Service {
	return &Service{
		pool:         pool,
		cabinets:     cabinets,
		outbox:       outbox,
		logger:       logger,
		maxPerOwner:  maxPerOwner,
		feeCeilingBp: feeCeilingBp,
		defaultFeeBp: defaultFeeBp,
		feeRecipient: feeRecipient,
	}
}

// Mint creates a new cabinet for the owner. Cabinets start inactive and empty.
func (s *Service) Mint(ctx context.Context, ownerID uuid.UUID, name string, playPrice int64) (*domain.Cabinet, error) {
	if err := domain.ValidateCabinetName(name); err != nil {
		return nil, err
	}
	if err := domain.ValidatePositiveAmount(playPrice); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	count, err := s.cabinets.CountByOwner(ctx, tx, ownerID)
	if err != nil {
		return nil, domain.ErrInternal("count cabinets", err)
	}
	if count >= s.maxPerOwner {
		return nil, domain.ErrConflict("cabinet limit reached for this owner")
	}

	now := time.Now()
	cab := &domain.Cabinet{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      name,
		Config:    domain.DefaultConfig(playPrice, s.defaultFeeBp, s.feeRecipient),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.cabinets.Create(ctx, tx, cab); err != nil {
		return nil, domain.ErrInternal("create cabinet", err)
	}
	if err := s.outbox.Insert(ctx, tx, domain.NewCabinetMintedEvent(cab)); err != nil {
		return nil, domain.ErrInternal("insert outbox event", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	s.logger.Info("cabinet minted", "cabinet_id", cab.ID, "owner_id", ownerID)
	return cab, nil
}

// SetConfig replaces the cabinet's config wholesale.
func (s *Service) SetConfig(ctx context.Context, cabinetID uuid.UUID, cfg domain.CabinetConfig, requester uuid.UUID) (*domain.Cabinet, error) {
	if err := domain.ValidateConfig(cfg, s.feeCeilingBp); err != nil {
		return nil, err
	}
	return s.updateConfig(ctx, cabinetID, requester, func(cab *domain.Cabinet) {
		cab.Config = cfg
	})
}

// SetName renames the cabinet.
func (s *Service) SetName(ctx context.Context, cabinetID uuid.UUID, name string, requester uuid.UUID) (*domain.Cabinet, error) {
	if err := domain.ValidateCabinetName(name); err != nil {
		return nil, err
	}
	return s.updateConfig(ctx, cabinetID, requester, func(cab *domain.Cabinet) {
		cab.Name = name
	})
}

// SetPrice changes only the play price.
func (s *Service) SetPrice(ctx context.Context, cabinetID uuid.UUID, playPrice int64, requester uuid.UUID) (*domain.Cabinet, error) {
	if err := domain.ValidatePositiveAmount(playPrice); err != nil {
		return nil, err
	}
	return s.updateConfig(ctx, cabinetID, requester, func(cab *domain.Cabinet) {
		cab.Config.PlayPrice = playPrice
	})
}

func (s *Service) updateConfig(ctx context.Context, cabinetID, requester uuid.UUID, mutate func(*domain.Cabinet)) (*domain.Cabinet, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	cab, err := s.lockOwned(ctx, tx, cabinetID, requester)
	if err != nil {
		return nil, err
	}

	mutate(cab)
	if err := s.cabinets.UpdateConfig(ctx, tx, cab.ID, cab.Name, cab.Config); err != nil {
		return nil, err
	}
	if err := s.outbox.Insert(ctx, tx, domain.NewCabinetConfiguredEvent(cab)); err != nil {
		return nil, domain.ErrInternal("insert outbox event", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}
	return cab, nil
}

// Activate opens the cabinet for plays. An empty cabinet cannot activate.
func (s *Service) Activate(ctx context.Context, cabinetID, requester uuid.UUID) (*domain.Cabinet, error) {
	return s.setStatus(ctx, cabinetID, requester, "activated", func(cab *domain.Cabinet) error {
		if cab.ItemCount < domain.MinItemsPerCabinet {
			return domain.ErrConflict("cabinet has no items to play for")
		}
		if cab.InMaintenance {
			return domain.ErrConflict("cabinet is in maintenance")
		}
		cab.IsActive = true
		return nil
	})
}

// Deactivate closes the cabinet for plays.
func (s *Service) Deactivate(ctx context.Context, cabinetID, requester uuid.UUID) (*domain.Cabinet, error) {
	return s.setStatus(ctx, cabinetID, requester, "deactivated", func(cab *domain.Cabinet) error {
		cab.IsActive = false
		return nil
	})
}

// SetMaintenance toggles maintenance mode. Entering maintenance also
// deactivates the cabinet; leaving it does not reactivate.
func (s *Service) SetMaintenance(ctx context.Context, cabinetID uuid.UUID, enabled bool, requester uuid.UUID) (*domain.Cabinet, error) {
	reason := "maintenance_off"
	if enabled {
		reason = "maintenance_on"
	}
	return s.setStatus(ctx, cabinetID, requester, reason, func(cab *domain.Cabinet) error {
		cab.InMaintenance = enabled
		if enabled {
			cab.IsActive = false
		}
		return nil
	})
}

func (s *Service) setStatus(ctx context.Context, cabinetID, requester uuid.UUID, reason string, mutate func(*domain.Cabinet) error) (*domain.Cabinet, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	cab, err := s.lockOwned(ctx, tx, cabinetID, requester)
	if err != nil {
		return nil, err
	}

	if err := mutate(cab); err != nil {
		return nil, err
	}
	if err := s.cabinets.SetStatus(ctx, tx, cab.ID, cab.IsActive, cab.InMaintenance); err != nil {
		return nil, err
	}
	if err := s.outbox.Insert(ctx, tx, domain.NewCabinetStatusChangedEvent(cab, reason)); err != nil {
		return nil, domain.ErrInternal("insert outbox event", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	s.logger.Info("cabinet status changed", "cabinet_id", cab.ID, "reason", reason)
	return cab, nil
}

// Get returns a cabinet by id.
func (s *Service) Get(ctx context.Context, cabinetID uuid.UUID) (*domain.Cabinet, error) {
	cab, err := s.cabinets.FindByID(ctx, s.pool, cabinetID)
	if err != nil {
		return nil, domain.ErrInternal("find cabinet", err)
	}
	if cab == nil {
		return nil, domain.ErrNotFound("cabinet", cabinetID.String())
	}
	return cab, nil
}

// ListByOwner returns the owner's cabinets.
func (s *Service) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Cabinet, error) {
	cabs, err := s.cabinets.ListByOwner(ctx, s.pool, ownerID)
	if err != nil {
		return nil, domain.ErrInternal("list cabinets", err)
	}
	return cabs, nil
}

func (s *Service) lockOwned(ctx context.Context, tx pgx.Tx, cabinetID, requester uuid.UUID) (*domain.Cabinet, error) {
	cab, err := s.cabinets.LockForUpdate(ctx, tx, cabinetID)
	if err != nil {
		return nil, domain.ErrInternal("lock cabinet", err)
	}
	if cab == nil {
		return nil, domain.ErrNotFound("cabinet", cabinetID.String())
	}
	if cab.OwnerID != requester {
		return nil, domain.ErrForbidden("only the cabinet owner can manage the cabinet")
	}
	return cab, nil
}
