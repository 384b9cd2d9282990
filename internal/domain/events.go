package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

func draft(agg AggregateType, aggID string, evt EventType, payload any) OutboxDraft {
	body, _ := json.Marshal(payload)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: agg,
		AggregateID:   aggID,
		EventType:     evt,
		PartitionKey:  aggID,
		Headers:       json.RawMessage(`{}`),
		Payload:       body,
		OccurredAt:    time.Now(),
	}
}

// NewCabinetMintedEvent records creation of a cabinet.
func NewCabinetMintedEvent(c *Cabinet) OutboxDraft {
	return draft(AggregateCabinet, c.ID.String(), EventCabinetMinted, c)
}

// NewCabinetConfiguredEvent records a config/name/price change.
func NewCabinetConfiguredEvent(c *Cabinet) OutboxDraft {
	return draft(AggregateCabinet, c.ID.String(), EventCabinetConfigured, c)
}

// NewCabinetStatusChangedEvent records activation, deactivation or maintenance.
func NewCabinetStatusChangedEvent(c *Cabinet, reason string) OutboxDraft {
	return draft(AggregateCabinet, c.ID.String(), EventCabinetStatusChanged, map[string]any{
		"cabinet_id":     c.ID.String(),
		"is_active":      c.IsActive,
		"in_maintenance": c.InMaintenance,
		"reason":         reason,
	})
}

// NewItemDepositedEvent records one escrowed item.
func NewItemDepositedEvent(item *GachaItem) OutboxDraft {
	return draft(AggregateItem, item.CabinetID.String(), EventItemDeposited, item)
}

// NewItemWithdrawnEvent records an item leaving escrow by owner withdrawal.
func NewItemWithdrawnEvent(item *GachaItem, to uuid.UUID) OutboxDraft {
	return draft(AggregateItem, item.CabinetID.String(), EventItemWithdrawn, map[string]any{
		"cabinet_id": item.CabinetID.String(),
		"asset":      item.Asset,
		"to":         to.String(),
	})
}

// NewItemStatusChangedEvent records an isActive toggle.
func NewItemStatusChangedEvent(item *GachaItem) OutboxDraft {
	return draft(AggregateItem, item.CabinetID.String(), EventItemStatusChanged, map[string]any{
		"cabinet_id": item.CabinetID.String(),
		"position":   item.Position,
		"is_active":  item.IsActive,
	})
}

// NewGachaPlayedEvent records the outcome of one play.
func NewGachaPlayedEvent(result *PlayResult) OutboxDraft {
	return draft(AggregatePlay, result.CabinetID.String(), EventGachaPlayed, result)
}

// NewPrizeWonEvent records an item awarded to a player.
func NewPrizeWonEvent(cabinetID, playerID uuid.UUID, item *GachaItem) OutboxDraft {
	return draft(AggregatePlay, cabinetID.String(), EventPrizeWon, map[string]any{
		"cabinet_id": cabinetID.String(),
		"player_id":  playerID.String(),
		"asset":      item.Asset,
		"rarity":     item.Rarity,
	})
}

// NewRevenueDistributedEvent records one play's revenue split.
func NewRevenueDistributedEvent(cabinetID uuid.UUID, split RevenueSplit) OutboxDraft {
	return draft(AggregateRevenue, cabinetID.String(), EventRevenueDistributed, map[string]any{
		"cabinet_id":   cabinetID.String(),
		"owner_share":  split.OwnerShare,
		"platform_fee": split.PlatformFee,
	})
}

// NewRevenueWithdrawnEvent records an owner or platform payout.
func NewRevenueWithdrawnEvent(aggID string, to uuid.UUID, amount int64, scope string) OutboxDraft {
	return draft(AggregateRevenue, aggID, EventRevenueWithdrawn, map[string]any{
		"to":     to.String(),
		"amount": amount,
		"scope":  scope,
	})
}

// NewConsolationMintedEvent records the lose-path token mint.
func NewConsolationMintedEvent(cabinetID, playerID uuid.UUID, amount int64) OutboxDraft {
	return draft(AggregatePlay, cabinetID.String(), EventConsolationMinted, map[string]any{
		"cabinet_id": cabinetID.String(),
		"player_id":  playerID.String(),
		"amount":     amount,
	})
}
