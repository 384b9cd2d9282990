package draw

import (
	"math/big"
	"slices"
	"testing"

	"github.com/gachabox/platform/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func items(rarities ...int) []domain.GachaItem {
	out := make([]domain.GachaItem, len(rarities))
	for i, r := range rarities {
		out[i] = domain.GachaItem{Position: i, Rarity: r, IsActive: true}
	}
	return out
}

func TestWeightForRarity(t *testing.T) {
	assert.Equal(t, int64(81), WeightForRarity(1))
	assert.Equal(t, int64(61), WeightForRarity(2))
	assert.Equal(t, int64(41), WeightForRarity(3))
	assert.Equal(t, int64(21), WeightForRarity(4))
	assert.Equal(t, int64(1), WeightForRarity(5))
}

func TestMaxBoost(t *testing.T) {
	assert.Equal(t, int64(200), MaxBoost(1000))
	assert.Equal(t, int64(0), MaxBoost(4))
}

func TestValidateBoost(t *testing.T) {
	assert.NoError(t, ValidateBoost(0, 1000))
	assert.NoError(t, ValidateBoost(200, 1000))
	assert.Error(t, ValidateBoost(-1, 1000))
	assert.Error(t, ValidateBoost(201, 1000))
}

func TestBoostBpScalesWithPrice(t *testing.T) {
	// Full boost (price/5) always yields the cap.
	assert.Equal(t, int64(2000), BoostBp(200, 1000))
	assert.Equal(t, int64(2000), BoostBp(2000, 10000))

	// Half of the max boost yields half the cap.
	assert.Equal(t, int64(1000), BoostBp(100, 1000))

	assert.Equal(t, int64(0), BoostBp(0, 1000))
}

func TestBoostBpLargePrice(t *testing.T) {
	// Largest price numeric(15,0) can hold. The scaling must not wrap.
	price := int64(1_000_000_000_000_000)

	assert.Equal(t, int64(2000), BoostBp(price/5, price))
	assert.Equal(t, int64(1000), BoostBp(price/10, price))
	assert.Equal(t, int64(7000), FinalWinBp(price/5, price))
}

func TestFinalWinBp(t *testing.T) {
	assert.Equal(t, int64(5000), FinalWinBp(0, 1000))
	assert.Equal(t, int64(7000), FinalWinBp(200, 1000))
	assert.Equal(t, int64(6000), FinalWinBp(100, 1000))
}

func TestResolveEmptySequence(t *testing.T) {
	_, err := Resolve(big.NewInt(0), 5000, slices.Values([]domain.GachaItem{}))
	require.Error(t, err)
	appErr, ok := err.(*domain.AppError)
	require.True(t, ok)
	assert.Equal(t, "NO_ACTIVE_ITEMS", appErr.Code)
}

func TestResolveWinThreshold(t *testing.T) {
	pool := items(1)

	// r mod 10000 < winBp wins.
	out, err := Resolve(big.NewInt(4999), 5000, slices.Values(pool))
	require.NoError(t, err)
	assert.True(t, out.Won)

	// r mod 10000 >= winBp loses.
	out, err = Resolve(big.NewInt(5000), 5000, slices.Values(pool))
	require.NoError(t, err)
	assert.False(t, out.Won)

	out, err = Resolve(big.NewInt(9999), 5000, slices.Values(pool))
	require.NoError(t, err)
	assert.False(t, out.Won)
}

func TestResolveWeightedSelection(t *testing.T) {
	// rarity 1 (weight 81) then rarity 5 (weight 1): total 82.
	pool := items(1, 5)

	// Item selection reuses the win roll value: r mod 82 picks the item.
	// r = 10000*82 keeps both rolls at zero: win, first item.
	r := new(big.Int).Mul(big.NewInt(10000), big.NewInt(82))
	out, err := Resolve(r, 5000, slices.Values(pool))
	require.NoError(t, err)
	require.True(t, out.Won)
	assert.Equal(t, 0, out.Item.Position)

	// r congruent to 81 mod 82 and below the win threshold mod 10000
	// selects the rare tail item. 81 mod 10000 = 81 < 5000, 81 mod 82 = 81.
	out, err = Resolve(big.NewInt(81), 5000, slices.Values(pool))
	require.NoError(t, err)
	require.True(t, out.Won)
	assert.Equal(t, 1, out.Item.Position)
}

func TestResolveSingleItemAlwaysSelectedOnWin(t *testing.T) {
	pool := items(5)

	for _, r := range []int64{0, 1, 1234, 4999} {
		out, err := Resolve(big.NewInt(r), 5000, slices.Values(pool))
		require.NoError(t, err)
		require.True(t, out.Won, "r=%d", r)
		assert.Equal(t, 0, out.Item.Position)
	}
}

func TestResolveLargeRandomValue(t *testing.T) {
	pool := items(3, 3, 3)

	r, ok := new(big.Int).SetString("115792089237316195423570985008687907853269984665640564039457584007913129639935", 10)
	require.True(t, ok)

	out, err := Resolve(r, 10000, slices.Values(pool))
	require.NoError(t, err)
	assert.True(t, out.Won)
}
