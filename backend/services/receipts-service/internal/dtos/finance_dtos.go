package dtos

// Rates are fractions: 0.035 for 3.5%.
type CapacityRequest struct {
	SalaryIncome      float64  `json:"salaryIncome" validate:"gte=0"`
	OtherIncome       float64  `json:"otherIncome" validate:"gte=0"`
	GrossRentalIncome float64  `json:"grossRentalIncome" validate:"gte=0"`
	ExistingCharges   float64  `json:"existingCharges" validate:"gte=0"`
	TargetRatio       float64  `json:"targetRatio" validate:"gt=0,lte=1"`
	AnnualRate        float64  `json:"annualRate" validate:"gte=0,lt=1"`
	Years             int      `json:"years" validate:"gte=1,lte=40"`
	NotaryFeeRate     *float64 `json:"notaryFeeRate,omitempty" validate:"omitempty,gte=0,lt=1"`
	AgencyFeeRate     *float64 `json:"agencyFeeRate,omitempty" validate:"omitempty,gte=0,lt=1"`
}

type RentalYieldRequest struct {
	PurchasePrice         float64 `json:"purchasePrice" validate:"gt=0"`
	NotaryFees            float64 `json:"notaryFees" validate:"gte=0"`
	WorksCost             float64 `json:"worksCost" validate:"gte=0"`
	OtherCosts            float64 `json:"otherCosts" validate:"gte=0"`
	MonthlyRent           float64 `json:"monthlyRent" validate:"gte=0"`
	ShortStayNightlyPrice float64 `json:"shortStayNightlyPrice" validate:"gte=0"`
	ShortStayOccupancy    float64 `json:"shortStayOccupancy" validate:"gte=0,lte=1"`
	AnnualCharges         float64 `json:"annualCharges" validate:"gte=0"`
	LoanAmount            float64 `json:"loanAmount" validate:"gte=0"`
	AnnualRate            float64 `json:"annualRate" validate:"gte=0,lt=1"`
	Years                 int     `json:"years" validate:"gte=0,lte=40"`
}
