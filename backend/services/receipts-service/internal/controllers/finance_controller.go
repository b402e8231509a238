package controllers

import (
	"net/http"

	"github.com/matthieuT78/mt-courtage-sub002/backend/services/receipts-service/internal/dtos"
	internal_utils "github.com/matthieuT78/mt-courtage-sub002/backend/services/receipts-service/internal/utils"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-utils"
)

// FinanceController serves the stateless mortgage and yield calculators.
type FinanceController struct{}

func NewFinanceController() *FinanceController {
	return &FinanceController{}
}

// POST /api/v1/finance/capacity
func (c *FinanceController) CapacityHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.CapacityRequest
	if !decodeAndValidate(w, r, &req, false) {
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, internal_utils.ComputeCapacity(internal_utils.CapacityInput{
		SalaryIncome:      req.SalaryIncome,
		OtherIncome:       req.OtherIncome,
		GrossRentalIncome: req.GrossRentalIncome,
		ExistingCharges:   req.ExistingCharges,
		TargetRatio:       req.TargetRatio,
		AnnualRate:        req.AnnualRate,
		Years:             req.Years,
		NotaryFeeRate:     req.NotaryFeeRate,
		AgencyFeeRate:     req.AgencyFeeRate,
	}))
}

// POST /api/v1/finance/rental-yield
func (c *FinanceController) RentalYieldHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.RentalYieldRequest
	if !decodeAndValidate(w, r, &req, false) {
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, internal_utils.ComputeRentalYield(internal_utils.RentalYieldInput{
		PurchasePrice:         req.PurchasePrice,
		NotaryFees:            req.NotaryFees,
		WorksCost:             req.WorksCost,
		OtherCosts:            req.OtherCosts,
		MonthlyRent:           req.MonthlyRent,
		ShortStayNightlyPrice: req.ShortStayNightlyPrice,
		ShortStayOccupancy:    req.ShortStayOccupancy,
		AnnualCharges:         req.AnnualCharges,
		LoanAmount:            req.LoanAmount,
		AnnualRate:            req.AnnualRate,
		Years:                 req.Years,
	}))
}
