package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates all domain event types.
type EventType string

const (
	EventCabinetMinted        EventType = "gacha.cabinet.minted"
	EventCabinetConfigured    EventType = "gacha.cabinet.configured"
	EventCabinetStatusChanged EventType = "gacha.cabinet.status_changed"
	EventItemDeposited        EventType = "gacha.item.deposited"
	EventItemWithdrawn        EventType = "gacha.item.withdrawn"
	EventItemStatusChanged    EventType = "gacha.item.status_changed"
	EventGachaPlayed          EventType = "gacha.play.played"
	EventPrizeWon             EventType = "gacha.play.prize_won"
	EventRevenueDistributed   EventType = "gacha.revenue.distributed"
	EventRevenueWithdrawn     EventType = "gacha.revenue.withdrawn"
	EventConsolationMinted    EventType = "gacha.token.consolation_minted"
)

// AggregateType enumerates the aggregate root types for outbox events.
type AggregateType string

const (
	AggregateCabinet AggregateType = "cabinet"
	AggregateItem    AggregateType = "item"
	AggregatePlay    AggregateType = "play"
	AggregateRevenue AggregateType = "revenue"
)

// OutboxDraft is the payload written to the event_outbox table within the same
// transaction as the state change it describes.
type OutboxDraft struct {
	EventID       uuid.UUID       `json:"event_id"`
	AggregateType AggregateType   `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     EventType       `json:"event_type"`
	PartitionKey  string          `json:"partition_key"`
	Headers       json.RawMessage `json:"headers"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// OutboxRow is an outbox entry with its sequence ID, as read by the poller.
type OutboxRow struct {
	SeqID int64
	OutboxDraft
}
