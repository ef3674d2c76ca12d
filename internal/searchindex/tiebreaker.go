package searchindex

import (
	"math"
	"unicode/utf8"
)

// ComputeTiebreakerBonus returns the small per-matching-bit addend that orders
// entries whose n-gram scores are equal. It is always in (0, 0.01].
//
// Longer names get a smaller bonus, scaled down very slowly. Member name
// length reduces it further, which ranks owners before their members and short
// members before long ones ("find_by" before "find_by_sql"). Description
// length dampens that reduction so that, between same-named members, the
// better documented one wins. The description only acts through the member
// reduction, so for modules (empty memberName) it has no effect at all.
func ComputeTiebreakerBonus(ownerName, memberName, description string) float64 {
	memberLen := utf8.RuneCountInString(memberName)
	nameLen := max(1, utf8.RuneCountInString(ownerName)+memberLen)
	bonus := 0.01 / math.Pow(float64(nameLen), 0.025)

	docLen := min(utf8.RuneCountInString(description), 1000)
	bonus *= math.Pow(0.99+float64(docLen)/250_000, float64(memberLen))

	return bonus
}
