package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AssetKind is the closed set of supported escrow asset variants.
type AssetKind string

const (
	AssetExternalNFT   AssetKind = "external_nft"
	AssetFungibleToken AssetKind = "fungible_token"
	AssetMultiToken    AssetKind = "multi_token"
)

// ValidAssetKind reports whether kind is one of the three supported variants.
func ValidAssetKind(kind AssetKind) bool {
	switch kind {
	case AssetExternalNFT, AssetFungibleToken, AssetMultiToken:
		return true
	}
	return false
}

// AssetRef identifies one escrowable asset. TokenID applies to external_nft
// and multi_token; Amount applies to fungible_token and multi_token.
type AssetRef struct {
	Kind     AssetKind `json:"kind"`
	Contract string    `json:"contract"`
	TokenID  string    `json:"token_id,omitempty"`
	Amount   int64     `json:"amount,omitempty"`
}

// DuplicateKey is the per-cabinet uniqueness key: no two live items in the
// same cabinet may share it.
func (a AssetRef) DuplicateKey() string {
	return fmt.Sprintf("%s/%s/%s/%d", a.Kind, a.Contract, a.TokenID, a.Amount)
}

// GachaItem is one escrowed prize asset with a rarity weight. Position is the
// item's current ledger index; it changes when another item is swap-removed.
type GachaItem struct {
	CabinetID         uuid.UUID `json:"cabinet_id"`
	Position          int       `json:"position"`
	Asset             AssetRef  `json:"asset"`
	Rarity            int       `json:"rarity"`
	Metadata          string    `json:"metadata,omitempty"`
	IsActive          bool      `json:"is_active"`
	Depositor         uuid.UUID `json:"depositor"`
	DepositedAt       time.Time `json:"deposited_at"`
	WithdrawableAfter time.Time `json:"withdrawable_after"`
}

// Withdrawable reports whether the anti-abuse lock window has elapsed.
func (i *GachaItem) Withdrawable(now time.Time) bool {
	return !now.Before(i.WithdrawableAfter)
}

// ItemDeposit is the caller-supplied portion of a deposit.
type ItemDeposit struct {
	Asset    AssetRef `json:"asset"`
	Rarity   int      `json:"rarity"`
	Metadata string   `json:"metadata,omitempty"`
}
