// Package pricing implements the group discount curve and payable amount
// calculations. Everything here is pure arithmetic; prices are whole KRW.
package pricing

import "math"

const (
	// DiscountPerParticipant is the discount added for each joined participant.
	DiscountPerParticipant = 0.03
	// MaxDiscountRate caps the group discount regardless of participant count.
	MaxDiscountRate = 0.30
	// DepositRate is the fraction of the unit price payable for deposit flows.
	DepositRate = 0.20
)

// DiscountRate returns the group discount for the given participant count:
// 3% per participant, capped at 30%. Non-positive counts get no discount.
func DiscountRate(participants int) float64 {
	if participants <= 0 {
		return 0
	}
	rate := DiscountPerParticipant * float64(participants)
	return math.Min(MaxDiscountRate, rate)
}

// discountedUnit returns the exact (unrounded) discounted unit price.
func discountedUnit(basePrice int64, participants int) float64 {
	return float64(basePrice) * (1 - DiscountRate(participants))
}

// UnitPrice returns the discounted unit price rounded to whole KRW.
func UnitPrice(basePrice int64, participants int) int64 {
	return int64(math.Round(discountedUnit(basePrice, participants)))
}

// DepositAmount returns the payable deposit: 20% of the discounted unit
// price, rounded to whole KRW.
func DepositAmount(basePrice int64, participants int) int64 {
	return int64(math.Round(discountedUnit(basePrice, participants) * DepositRate))
}

// GenderPrice holds the two independent base prices for gender-differentiated
// products. Either price may be zero when a product has a single rate.
type GenderPrice struct {
	Male   int64
	Female int64
}

// Total runs each base price through the discount curve and sums per guest.
func (g GenderPrice) Total(maleGuests, femaleGuests, participants int) int64 {
	var total int64
	total += UnitPrice(g.Male, participants) * int64(maleGuests)
	total += UnitPrice(g.Female, participants) * int64(femaleGuests)
	return total
}
