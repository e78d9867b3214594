package models

import "github.com/shopspring/decimal"

// RateCalculation is the monthly estimate shown to the applicant and embedded
// in the record metadata under monthly_rate_calculation.
type RateCalculation struct {
	WaterRate     decimal.Decimal `json:"water_rate"`
	TrashRate     decimal.Decimal `json:"trash_rate"`
	RecycleRate   decimal.Decimal `json:"recycle_rate"`
	PoolSurcharge decimal.Decimal `json:"pool_surcharge"`
	Subtotal      decimal.Decimal `json:"subtotal"`

	BaseWaterRate            decimal.Decimal `json:"base_water_rate"`
	TrashBaseRate            decimal.Decimal `json:"trash_base_rate"`
	RecycleBaseRate          decimal.Decimal `json:"recycle_base_rate"`
	TerritoryMultiplier      decimal.Decimal `json:"territory_multiplier"`
	AdditionalTrashCartFee   decimal.Decimal `json:"additional_trash_cart_fee"`
	AdditionalRecycleCartFee decimal.Decimal `json:"additional_recycle_cart_fee"`
	IrrigationTierRate       decimal.Decimal `json:"irrigation_tier_rate"`
	EstimatedMonthlyTotal    decimal.Decimal `json:"estimated_monthly_total"`
	DepositRequired          decimal.Decimal `json:"deposit_required"`

	Notes []string `json:"notes"`
}

type DepositExample struct {
	Scenario        string           `json:"scenario"`
	PropertyUseType PropertyUseType  `json:"property_use_type"`
	Territory       ServiceTerritory `json:"service_territory"`
	CreditScore     *int             `json:"credit_score"`
	Deposit         decimal.Decimal  `json:"deposit"`
}
