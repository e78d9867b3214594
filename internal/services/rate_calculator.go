package services

import (
	"fmt"

	"water-service/internal/models"

	"github.com/shopspring/decimal"
)

var (
	BaseWaterRate            = decimal.RequireFromString("35.00")
	OutsideCityWaterFee      = decimal.RequireFromString("10.00")
	TrashBaseRate            = decimal.RequireFromString("15.00")
	AdditionalTrashCartFee   = decimal.RequireFromString("5.00")
	RecycleBaseRate          = decimal.RequireFromString("8.00")
	AdditionalRecycleCartFee = decimal.RequireFromString("3.00")
	PoolSurcharge            = decimal.RequireFromString("15.00")

	outsideTerritoryMultiplier = decimal.RequireFromString("1.29")
	insideTerritoryMultiplier  = decimal.RequireFromString("1.00")

	MinimumDeposit          = decimal.NewFromInt(50)
	OutsideCityDepositFee   = decimal.NewFromInt(50)
	NoCreditDepositFee      = decimal.NewFromInt(100)
	PoorCreditDepositFee    = decimal.NewFromInt(100)
	GoodCreditDepositCredit = decimal.NewFromInt(-25)
)

var baseDeposits = map[models.PropertyUseType]decimal.Decimal{
	models.PropertyRent:          decimal.NewFromInt(200),
	models.PropertyOwnerOccupied: decimal.NewFromInt(75),
	models.PropertyOwnerLeasing:  decimal.NewFromInt(125),
}

var irrigationTierNotes = []string{
	"Irrigation rates apply based on usage tiers",
	"Tier 1 (0-5k gallons): Base rate",
	"Tier 2 (5k-10k gallons): +$0.50/1k gallons",
	"Tier 3 (10k+ gallons): +$1.00/1k gallons",
}

const usageDisclaimer = "Actual bill may vary based on water usage"

// RateCalculator derives the monthly estimate and the required deposit. It
// has no state and performs no I/O.
type RateCalculator struct{}

func NewRateCalculator() *RateCalculator {
	return &RateCalculator{}
}

// CalculateMonthlyRate prices water, sanitation and pool service. An empty
// territory is treated as inside city limits.
func (c *RateCalculator) CalculateMonthlyRate(
	territory models.ServiceTerritory,
	trashCarts int,
	recycleCarts int,
	hasPool bool,
	hasSprinkler bool,
) models.RateCalculation {
	outside := territory == models.TerritoryOutsideCityLimits

	waterRate := BaseWaterRate
	multiplier := insideTerritoryMultiplier
	if outside {
		waterRate = waterRate.Add(OutsideCityWaterFee)
		multiplier = outsideTerritoryMultiplier
	}

	trashRate := cartRate(trashCarts, TrashBaseRate, AdditionalTrashCartFee)
	recycleRate := cartRate(recycleCarts, RecycleBaseRate, AdditionalRecycleCartFee)

	poolSurcharge := decimal.Zero
	if hasPool {
		poolSurcharge = PoolSurcharge
	}

	subtotal := waterRate.Add(trashRate).Add(recycleRate).Add(poolSurcharge)

	notes := []string{fmt.Sprintf("Base water service: $%s", waterRate.StringFixed(2))}
	if trashRate.IsPositive() {
		notes = append(notes, fmt.Sprintf("Trash service (%s): $%s", cartLabel(trashCarts), trashRate.StringFixed(2)))
	}
	if recycleRate.IsPositive() {
		notes = append(notes, fmt.Sprintf("Recycle service (%s): $%s", cartLabel(recycleCarts), recycleRate.StringFixed(2)))
	}
	if hasPool {
		notes = append(notes, fmt.Sprintf("Pool surcharge: $%s", poolSurcharge.StringFixed(2)))
	}
	if hasSprinkler {
		notes = append(notes, irrigationTierNotes...)
	}
	notes = append(notes, usageDisclaimer)

	return models.RateCalculation{
		WaterRate:     waterRate,
		TrashRate:     trashRate,
		RecycleRate:   recycleRate,
		PoolSurcharge: poolSurcharge,
		Subtotal:      subtotal,

		BaseWaterRate:            BaseWaterRate,
		TrashBaseRate:            TrashBaseRate,
		RecycleBaseRate:          RecycleBaseRate,
		TerritoryMultiplier:      multiplier,
		AdditionalTrashCartFee:   AdditionalTrashCartFee,
		AdditionalRecycleCartFee: AdditionalRecycleCartFee,
		IrrigationTierRate:       decimal.Zero,
		EstimatedMonthlyTotal:    subtotal,
		DepositRequired:          decimal.Zero,

		Notes: notes,
	}
}

// cartRate bills the first cart at base and each extra cart at fee.
func cartRate(carts int, base, fee decimal.Decimal) decimal.Decimal {
	if carts <= 0 {
		return decimal.Zero
	}
	return base.Add(fee.Mul(decimal.NewFromInt(int64(carts - 1))))
}

func cartLabel(carts int) string {
	if carts == 1 {
		return "1 cart"
	}
	return fmt.Sprintf("%d carts", carts)
}

// CalculateDeposit applies the territory and credit adjustments to the base
// deposit for the property use, then the $50 floor. A nil creditScore means
// no credit check has been performed.
func (c *RateCalculator) CalculateDeposit(
	propertyUseType models.PropertyUseType,
	territory models.ServiceTerritory,
	creditScore *int,
) (decimal.Decimal, error) {
	base, ok := baseDeposits[propertyUseType]
	if !ok {
		return decimal.Zero, fmt.Errorf("unknown property use type %q", propertyUseType)
	}

	territoryAdjustment := decimal.Zero
	if territory == models.TerritoryOutsideCityLimits {
		territoryAdjustment = OutsideCityDepositFee
	}

	total := base.Add(territoryAdjustment).Add(creditAdjustment(creditScore))
	return decimal.Max(MinimumDeposit, total), nil
}

func creditAdjustment(creditScore *int) decimal.Decimal {
	switch {
	case creditScore == nil:
		return NoCreditDepositFee
	case *creditScore < 600:
		return PoorCreditDepositFee
	case *creditScore < 700:
		return decimal.Zero
	default:
		return GoodCreditDepositCredit
	}
}

// DepositExamples returns the reference scenarios published with the deposit policy.
func (c *RateCalculator) DepositExamples() []models.DepositExample {
	score := func(v int) *int { return &v }

	examples := []models.DepositExample{
		{Scenario: "Best case", PropertyUseType: models.PropertyOwnerOccupied, Territory: models.TerritoryInsideCityLimits, CreditScore: score(750)},
		{Scenario: "Typical owner", PropertyUseType: models.PropertyOwnerOccupied, Territory: models.TerritoryInsideCityLimits, CreditScore: score(650)},
		{Scenario: "Rental fair credit", PropertyUseType: models.PropertyRent, Territory: models.TerritoryInsideCityLimits, CreditScore: score(650)},
		{Scenario: "Worst case", PropertyUseType: models.PropertyRent, Territory: models.TerritoryOutsideCityLimits, CreditScore: nil},
	}
	for i := range examples {
		examples[i].Deposit, _ = c.CalculateDeposit(examples[i].PropertyUseType, examples[i].Territory, examples[i].CreditScore)
	}
	return examples
}
