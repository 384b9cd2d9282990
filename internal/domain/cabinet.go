package domain

import (
	"time"

	"github.com/google/uuid"
)

// Config bounds.
const (
	MinItemsPerCabinet = 1
	MaxItemsPerCabinet = 50
)

// CabinetConfig holds the per-cabinet play parameters. It is owned by exactly
// one cabinet and replaced wholesale on update, never partially mutated outside
// the explicit setters.
type CabinetConfig struct {
	PlayPrice        int64  `json:"play_price"`
	MaxItems         int    `json:"max_items"`
	PlatformFeeBp    int64  `json:"platform_fee_bp"`
	FeeRecipient     string `json:"fee_recipient"`
	AllowsCustomOdds bool   `json:"allows_custom_odds"`
}

// DefaultConfig returns the config a freshly minted cabinet starts with.
func DefaultConfig(playPrice int64, feeBp int64, feeRecipient string) CabinetConfig {
	return CabinetConfig{
		PlayPrice:     playPrice,
		MaxItems:      MaxItemsPerCabinet,
		PlatformFeeBp: feeBp,
		FeeRecipient:  feeRecipient,
	}
}

// Cabinet is a prize machine: the unit of ownership, configuration and item
// custody. OwnerID mirrors the external authoritative ownership record.
// Cabinets are created inactive and never deleted.
type Cabinet struct {
	ID            uuid.UUID     `json:"id"`
	OwnerID       uuid.UUID     `json:"owner_id"`
	Name          string        `json:"name"`
	Config        CabinetConfig `json:"config"`
	IsActive      bool          `json:"is_active"`
	InMaintenance bool          `json:"in_maintenance"`
	ItemCount     int           `json:"item_count"`
	TotalPlays    int64         `json:"total_plays"`
	TotalRevenue  int64         `json:"total_revenue"`
	LastPlayAt    *time.Time    `json:"last_play_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Playable reports whether the cabinet can accept a play. The active-item
// check is separate because it needs the escrow ledger.
func (c *Cabinet) Playable() bool {
	return c.IsActive && !c.InMaintenance
}
