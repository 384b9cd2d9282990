package domain

import "fmt"

// ValidatePositiveAmount checks that an amount is positive (integer base units).
func ValidatePositiveAmount(amount int64) error {
	if amount <= 0 {
		return ErrValidation(fmt.Sprintf("amount must be positive, got %d", amount))
	}
	return nil
}

// ValidateCabinetName checks the cabinet display name.
func ValidateCabinetName(name string) error {
	if name == "" {
		return ErrValidation("cabinet name is required")
	}
	if len(name) > 64 {
		return ErrValidation(fmt.Sprintf("cabinet name too long: %d > 64", len(name)))
	}
	return nil
}

// ValidateRarity checks rarity is within 1..5 (1 = common).
func ValidateRarity(rarity int) error {
	if rarity < 1 || rarity > 5 {
		return ErrInvalidRarity(rarity)
	}
	return nil
}

// ValidateAssetRef checks the tagged-variant invariants for each asset kind.
func ValidateAssetRef(a AssetRef) error {
	if !ValidAssetKind(a.Kind) {
		return ErrInvalidAssetType(string(a.Kind))
	}
	if a.Contract == "" {
		return ErrValidation("asset contract is required")
	}
	switch a.Kind {
	case AssetExternalNFT:
		if a.TokenID == "" {
			return ErrValidation("external_nft requires a token_id")
		}
	case AssetFungibleToken:
		if a.Amount <= 0 {
			return ErrValidation("fungible_token requires a positive amount")
		}
	case AssetMultiToken:
		if a.TokenID == "" || a.Amount <= 0 {
			return ErrValidation("multi_token requires a token_id and positive amount")
		}
	}
	return nil
}

// ValidateConfig checks the bounds on a wholesale config replacement.
// feeCeilingBp is the platform-wide maximum fee rate.
func ValidateConfig(cfg CabinetConfig, feeCeilingBp int64) error {
	if cfg.PlayPrice <= 0 {
		return ErrValidation(fmt.Sprintf("play price must be positive, got %d", cfg.PlayPrice))
	}
	if cfg.MaxItems < MinItemsPerCabinet || cfg.MaxItems > MaxItemsPerCabinet {
		return ErrValidation(fmt.Sprintf("max items must be %d..%d, got %d", MinItemsPerCabinet, MaxItemsPerCabinet, cfg.MaxItems))
	}
	if cfg.PlatformFeeBp < 0 || cfg.PlatformFeeBp > feeCeilingBp {
		return ErrValidation(fmt.Sprintf("platform fee must be 0..%d bp, got %d", feeCeilingBp, cfg.PlatformFeeBp))
	}
	return nil
}
