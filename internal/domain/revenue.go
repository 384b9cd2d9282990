package domain

import (
	"time"

	"github.com/google/uuid"
)

// RevenueAccount is the owner-withdrawable balance accumulated for one cabinet.
type RevenueAccount struct {
	CabinetID uuid.UUID `json:"cabinet_id"`
	Balance   int64     `json:"balance"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RevenueSplit is the outcome of distributing one play's price.
type RevenueSplit struct {
	OwnerShare  int64 `json:"owner_share"`
	PlatformFee int64 `json:"platform_fee"`
}

// SplitRevenue divides amount between cabinet owner and platform by feeRateBp
// basis points. platformFee = amount*feeRateBp/10000, owner gets the rest.
func SplitRevenue(amount, feeRateBp int64) RevenueSplit {
	fee := amount * feeRateBp / 10000
	return RevenueSplit{OwnerShare: amount - fee, PlatformFee: fee}
}
