package utils

import "math"

const (
	DefaultNotaryFeeRate = 0.075
	DefaultAgencyFeeRate = 0.04

	// RentalIncomeQualifyingRate is the share of gross rent lenders count as income.
	RentalIncomeQualifyingRate = 0.70
)

// CapacityInput holds monthly amounts; rates are fractions (0.035 for 3.5%).
type CapacityInput struct {
	SalaryIncome      float64
	OtherIncome       float64
	GrossRentalIncome float64
	ExistingCharges   float64
	TargetRatio       float64
	AnnualRate        float64
	Years             int
	NotaryFeeRate     *float64
	AgencyFeeRate     *float64
}

type CapacityResult struct {
	TotalIncome       float64 `json:"total_income"`
	AvailableEnvelope float64 `json:"available_envelope"`
	MaxMonthlyPayment float64 `json:"max_monthly_payment"`
	Principal         float64 `json:"principal"`
	AffordablePrice   float64 `json:"affordable_price"`
	CurrentDebtRatio  float64 `json:"current_debt_ratio"`
	PostLoanDebtRatio float64 `json:"post_loan_debt_ratio"`
}

// QualifyingIncome sums income components, rental income discounted to 70%.
func QualifyingIncome(in CapacityInput) float64 {
	return finite(in.SalaryIncome + in.OtherIncome + in.GrossRentalIncome*RentalIncomeQualifyingRate)
}

// ComputeCapacity derives the borrowing capacity from income and a target debt ratio.
func ComputeCapacity(in CapacityInput) CapacityResult {
	income := QualifyingIncome(in)
	envelope := finite(income * in.TargetRatio)
	payment := math.Max(envelope-in.ExistingCharges, 0)

	principal := PrincipalFromPayment(payment, in.AnnualRate, in.Years)

	notary := DefaultNotaryFeeRate
	if in.NotaryFeeRate != nil {
		notary = *in.NotaryFeeRate
	}
	agency := DefaultAgencyFeeRate
	if in.AgencyFeeRate != nil {
		agency = *in.AgencyFeeRate
	}
	var price float64
	if principal > 0 {
		price = finite(principal / (1 + notary + agency))
	}

	var current, post float64
	if income > 0 {
		current = finite(in.ExistingCharges / income * 100)
		post = finite((in.ExistingCharges + payment) / income * 100)
	}

	return CapacityResult{
		TotalIncome:       income,
		AvailableEnvelope: envelope,
		MaxMonthlyPayment: finite(payment),
		Principal:         principal,
		AffordablePrice:   price,
		CurrentDebtRatio:  current,
		PostLoanDebtRatio: post,
	}
}

// PrincipalFromPayment is the annuity present value of a monthly payment.
func PrincipalFromPayment(payment, annualRate float64, years int) float64 {
	n := years * 12
	if payment <= 0 || n <= 0 {
		return 0
	}
	i := annualRate / 12
	if i == 0 {
		return finite(payment * float64(n))
	}
	f := math.Pow(1+i, float64(n))
	return finite(payment * (f - 1) / (i * f))
}

// PaymentFromPrincipal is the monthly annuity repaying principal over years.
func PaymentFromPrincipal(principal, annualRate float64, years int) float64 {
	n := years * 12
	if principal <= 0 || n <= 0 {
		return 0
	}
	i := annualRate / 12
	if i == 0 {
		return finite(principal / float64(n))
	}
	f := math.Pow(1+i, float64(n))
	return finite(principal * i * f / (f - 1))
}

// ShortStayMonthlyEquivalent converts a nightly price and occupancy (0..1) to a monthly rent.
func ShortStayMonthlyEquivalent(pricePerNight, occupancyRate float64) float64 {
	return finite(pricePerNight * occupancyRate * 365 / 12)
}

type RentalYieldInput struct {
	PurchasePrice float64
	NotaryFees    float64
	WorksCost     float64
	OtherCosts    float64
	MonthlyRent   float64
	// Short-stay lots add their monthly equivalent to MonthlyRent.
	ShortStayNightlyPrice float64
	ShortStayOccupancy    float64
	AnnualCharges         float64
	LoanAmount            float64
	AnnualRate            float64
	Years                 int
}

type RentalYieldResult struct {
	TotalProjectCost       float64 `json:"total_project_cost"`
	AnnualRent             float64 `json:"annual_rent"`
	GrossYield             float64 `json:"gross_yield"`
	NetYieldBeforeCredit   float64 `json:"net_yield_before_credit"`
	MonthlyMortgagePayment float64 `json:"monthly_mortgage_payment"`
	AnnualDebtService      float64 `json:"annual_debt_service"`
	MonthlyCashFlow        float64 `json:"monthly_cash_flow"`
}

func ComputeRentalYield(in RentalYieldInput) RentalYieldResult {
	cost := finite(in.PurchasePrice + in.NotaryFees + in.WorksCost + in.OtherCosts)
	monthlyRent := in.MonthlyRent + ShortStayMonthlyEquivalent(in.ShortStayNightlyPrice, in.ShortStayOccupancy)
	annualRent := finite(monthlyRent * 12)
	netAnnual := annualRent - in.AnnualCharges

	var gross, net float64
	if cost > 0 {
		gross = finite(annualRent / cost * 100)
		net = finite(netAnnual / cost * 100)
	}

	payment := PaymentFromPrincipal(in.LoanAmount, in.AnnualRate, in.Years)
	debtService := finite(payment * 12)

	return RentalYieldResult{
		TotalProjectCost:       cost,
		AnnualRent:             annualRent,
		GrossYield:             gross,
		NetYieldBeforeCredit:   net,
		MonthlyMortgagePayment: payment,
		AnnualDebtService:      debtService,
		MonthlyCashFlow:        finite((netAnnual - debtService) / 12),
	}
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
