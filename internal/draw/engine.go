// Package draw implements the weighted prize-draw engine. Everything here is
// pure computation: given the active items, the boost and one 256-bit random
// value, the outcome is fully determined.
package draw

import (
	"iter"
	"math/big"

	"github.com/gachabox/platform/internal/domain"
)

// Probability constants, all in basis points.
const (
	BaseWinBp  = 5000
	MaxBoostBp = 2000
	FullBp     = 10000
)

// WeightForRarity maps rarity 1..5 to selection weight 81..1. Rarer items get
// lower weight and are therefore selected less often.
func WeightForRarity(rarity int) int64 {
	return 101 - 20*int64(rarity)
}

// MaxBoost returns the largest boost a player may burn for one play: 20% of
// the play price. The comparison mixes a token quantity against a
// price-denominated ceiling; that relationship is kept as-is.
func MaxBoost(playPrice int64) int64 {
	return playPrice / 5
}

// ValidateBoost rejects negative boosts and boosts above MaxBoost.
func ValidateBoost(boost, playPrice int64) error {
	if boost < 0 {
		return domain.ErrValidation("boost must not be negative")
	}
	if boost > MaxBoost(playPrice) {
		return domain.ErrInvalidBoostAmount(MaxBoost(playPrice), boost)
	}
	return nil
}

// BoostBp converts a burned token amount into extra win basis points, scaled
// linearly against the play price and capped at MaxBoostBp.
func BoostBp(boost, playPrice int64) int64 {
	if boost <= 0 {
		return 0
	}
	// Reduced form of boost*2000*100/(playPrice*20); the unreduced product
	// overflows int64 at prices the schema permits (numeric(15,0)).
	bp := boost * FullBp / playPrice
	if bp > MaxBoostBp {
		bp = MaxBoostBp
	}
	return bp
}

// FinalWinBp is the effective win probability for one play.
func FinalWinBp(boost, playPrice int64) int64 {
	bp := BaseWinBp + BoostBp(boost, playPrice)
	if bp > FullBp {
		bp = FullBp
	}
	return bp
}

// Outcome is the result of resolving one play.
type Outcome struct {
	Won  bool
	Item domain.GachaItem // the selected item; zero value unless Won
}

// Resolve decides win/lose and, on a win, which item, from a single random
// value. items must be the cabinet's active items in insertion order; the
// sequence is walked twice (weight total, then selection) and must restart.
//
// Both rolls derive from the same r via different moduli (r mod 10000, then
// r mod totalWeight). The correlation is preserved for compatibility with the
// deployed behavior rather than drawing a second value.
func Resolve(r *big.Int, winBp int64, items iter.Seq[domain.GachaItem]) (Outcome, error) {
	var totalWeight int64
	n := 0
	for item := range items {
		totalWeight += WeightForRarity(item.Rarity)
		n++
	}
	if n == 0 {
		return Outcome{}, domain.ErrNoActiveItems()
	}

	winRoll := new(big.Int).Mod(r, big.NewInt(FullBp)).Int64()
	if winRoll >= winBp {
		return Outcome{Won: false}, nil
	}

	itemRoll := new(big.Int).Mod(r, big.NewInt(totalWeight)).Int64()
	var cumulative int64
	for item := range items {
		cumulative += WeightForRarity(item.Rarity)
		if itemRoll < cumulative {
			return Outcome{Won: true, Item: item}, nil
		}
	}

	// itemRoll < totalWeight, so the walk above always selects.
	return Outcome{}, domain.ErrInternal("draw walk exhausted items", nil)
}
