package domain

import (
	"fmt"
	"time"
)

// AppError is the base domain error type.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// Standard domain error constructors.

func ErrNotFound(entity, id string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: fmt.Sprintf("%s %s not found", entity, id), Status: 404}
}

func ErrConflict(msg string) *AppError {
	return &AppError{Code: "CONFLICT", Message: msg, Status: 409}
}

func ErrValidation(msg string) *AppError {
	return &AppError{Code: "VALIDATION_ERROR", Message: msg, Status: 400}
}

func ErrUnauthorized(msg string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Message: msg, Status: 401}
}

func ErrForbidden(msg string) *AppError {
	return &AppError{Code: "FORBIDDEN", Message: msg, Status: 403}
}

func ErrInternal(msg string, cause error) *AppError {
	return &AppError{Code: "INTERNAL_ERROR", Message: msg, Status: 500, Cause: cause}
}

// Escrow errors.

func ErrInvalidAssetType(kind string) *AppError {
	return &AppError{Code: "INVALID_ASSET_TYPE", Message: fmt.Sprintf("unsupported asset kind %q", kind), Status: 400}
}

func ErrInvalidRarity(rarity int) *AppError {
	return &AppError{Code: "INVALID_RARITY", Message: fmt.Sprintf("rarity must be 1..5, got %d", rarity), Status: 400}
}

func ErrDuplicateItem(key string) *AppError {
	return &AppError{Code: "DUPLICATE_ITEM", Message: fmt.Sprintf("asset %s already deposited in this cabinet", key), Status: 409}
}

func ErrCabinetFull(maxItems int) *AppError {
	return &AppError{Code: "CABINET_FULL", Message: fmt.Sprintf("cabinet holds at most %d items", maxItems), Status: 409}
}

func ErrItemNotFound(index int) *AppError {
	return &AppError{Code: "ITEM_NOT_FOUND", Message: fmt.Sprintf("no item at index %d", index), Status: 404}
}

func ErrItemLocked(until time.Time) *AppError {
	return &AppError{Code: "ITEM_LOCKED", Message: fmt.Sprintf("item is locked until %s", until.UTC().Format(time.RFC3339)), Status: 409}
}

// Play errors.

func ErrInsufficientPayment(required, provided int64) *AppError {
	return &AppError{Code: "INSUFFICIENT_PAYMENT", Message: fmt.Sprintf("play requires %d, got %d", required, provided), Status: 400}
}

func ErrNoActiveItems() *AppError {
	return &AppError{Code: "NO_ACTIVE_ITEMS", Message: "cabinet has no active items", Status: 409}
}

func ErrInvalidBoostAmount(max, provided int64) *AppError {
	return &AppError{Code: "INVALID_BOOST_AMOUNT", Message: fmt.Sprintf("boost must not exceed %d, got %d", max, provided), Status: 400}
}

func ErrCabinetInactive() *AppError {
	return &AppError{Code: "CABINET_INACTIVE", Message: "cabinet is not accepting plays", Status: 409}
}

// Revenue errors.

func ErrNothingToWithdraw() *AppError {
	return &AppError{Code: "NOTHING_TO_WITHDRAW", Message: "no withdrawable balance", Status: 409}
}

// Collaborator failures. These abort the enclosing transaction.

func ErrTransferFailed(cause error) *AppError {
	return &AppError{Code: "TRANSFER_FAILED", Message: "asset transfer failed", Status: 502, Cause: cause}
}

func ErrSupplyExceeded() *AppError {
	return &AppError{Code: "SUPPLY_EXCEEDED", Message: "token supply cap exceeded", Status: 409}
}

func ErrInsufficientBalance() *AppError {
	return &AppError{Code: "INSUFFICIENT_BALANCE", Message: "insufficient balance", Status: 400}
}
