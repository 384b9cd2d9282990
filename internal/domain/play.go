package domain

import (
	"github.com/google/uuid"
)

// PlayParams is the input to one play. It exists only for the duration of the
// operation and is never persisted.
type PlayParams struct {
	CabinetID uuid.UUID
	PlayerID  uuid.UUID
	Paid      int64
	Boost     int64
}

// PlayResult is returned to the caller after a committed play.
type PlayResult struct {
	CabinetID   uuid.UUID  `json:"cabinet_id"`
	PlayerID    uuid.UUID  `json:"player_id"`
	Won         bool       `json:"won"`
	Prize       *GachaItem `json:"prize,omitempty"`
	Consolation int64      `json:"consolation"`
	Refund      int64      `json:"refund"`
	WinBp       int64      `json:"win_bp"`
}
