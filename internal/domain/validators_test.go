package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCabinetName(t *testing.T) {
	assert.NoError(t, ValidateCabinetName("Lucky Box"))
	assert.Error(t, ValidateCabinetName(""))
	assert.Error(t, ValidateCabinetName(strings.Repeat("x", 65)))
	assert.NoError(t, ValidateCabinetName(strings.Repeat("x", 64)))
}

func TestValidateRarity(t *testing.T) {
	for r := 1; r <= 5; r++ {
		assert.NoError(t, ValidateRarity(r))
	}
	assert.Error(t, ValidateRarity(0))
	assert.Error(t, ValidateRarity(6))
	assert.Error(t, ValidateRarity(-1))
}

func TestValidateAssetRef(t *testing.T) {
	assert.NoError(t, ValidateAssetRef(AssetRef{Kind: AssetExternalNFT, Contract: "0xabc", TokenID: "42"}))
	assert.NoError(t, ValidateAssetRef(AssetRef{Kind: AssetFungibleToken, Contract: "0xabc", Amount: 100}))
	assert.NoError(t, ValidateAssetRef(AssetRef{Kind: AssetMultiToken, Contract: "0xabc", TokenID: "7", Amount: 3}))

	// Unknown kind
	err := ValidateAssetRef(AssetRef{Kind: "erc999", Contract: "0xabc"})
	assert.Error(t, err)
	assert.Equal(t, "INVALID_ASSET_TYPE", err.(*AppError).Code)

	// Missing variant fields
	assert.Error(t, ValidateAssetRef(AssetRef{Kind: AssetExternalNFT, Contract: "0xabc"}))
	assert.Error(t, ValidateAssetRef(AssetRef{Kind: AssetFungibleToken, Contract: "0xabc", Amount: 0}))
	assert.Error(t, ValidateAssetRef(AssetRef{Kind: AssetMultiToken, Contract: "0xabc", Amount: 3}))
	assert.Error(t, ValidateAssetRef(AssetRef{Kind: AssetExternalNFT, Contract: "", TokenID: "42"}))
}

func TestValidateConfig(t *testing.T) {
	valid := CabinetConfig{PlayPrice: 1000, MaxItems: 50, PlatformFeeBp: 500}
	assert.NoError(t, ValidateConfig(valid, 2000))

	bad := valid
	bad.PlayPrice = 0
	assert.Error(t, ValidateConfig(bad, 2000))

	bad = valid
	bad.MaxItems = 0
	assert.Error(t, ValidateConfig(bad, 2000))

	bad = valid
	bad.MaxItems = 51
	assert.Error(t, ValidateConfig(bad, 2000))

	bad = valid
	bad.PlatformFeeBp = 2001
	assert.Error(t, ValidateConfig(bad, 2000))
}
