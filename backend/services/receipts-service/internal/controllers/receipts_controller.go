package controllers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/matthieuT78/mt-courtage-sub002/backend/services/receipts-service/internal/config"
	"github.com/matthieuT78/mt-courtage-sub002/backend/services/receipts-service/internal/dtos"
	"github.com/matthieuT78/mt-courtage-sub002/backend/services/receipts-service/internal/services"
	internal_utils "github.com/matthieuT78/mt-courtage-sub002/backend/services/receipts-service/internal/utils"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-models"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-utils"
)

type ReceiptsController struct {
	cfg      *config.Config
	receipts services.ReceiptService
	tokens   services.TokenService
}

func NewReceiptsController(cfg *config.Config, rs services.ReceiptService, ts services.TokenService) *ReceiptsController {
	return &ReceiptsController{cfg: cfg, receipts: rs, tokens: ts}
}

// ----------------------------------------------------------------
// POST /api/v1/receipts/generate
// ----------------------------------------------------------------
func (c *ReceiptsController) GenerateHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.GenerateReceiptRequest
	if !decodeAndValidate(w, r, &req, false) {
		return
	}
	userID, ok := callerID(w, r, req.UserID)
	if !ok {
		return
	}
	period, err := parsePeriod(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	gen, err := c.receipts.Generate(r.Context(), userID, uuid.MustParse(req.LeaseID), period, req.ContentText)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.GenerateReceiptResponse{
		OK:        true,
		ReceiptID: gen.Receipt.ID,
		PDFURL:    gen.Receipt.PDFURL,
		SignedURL: gen.SignedURL,
		Created:   gen.Created,
	})
}

// ----------------------------------------------------------------
// POST /api/v1/receipts/send
// ----------------------------------------------------------------
func (c *ReceiptsController) SendHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.SendReceiptRequest
	if !decodeAndValidate(w, r, &req, false) {
		return
	}
	userID, ok := callerID(w, r, req.UserID)
	if !ok {
		return
	}

	res, err := c.receipts.Send(r.Context(), userID, uuid.MustParse(req.ReceiptID), req.ResendOnly)
	if err != nil {
		// Delivery failures are reported to the landlord as a bad request;
		// the receipt keeps its send_error and can be re-sent.
		if errors.Is(err, internal_utils.ErrSendFailed) {
			utils.RespondErrorWithCode(
				w, http.StatusBadRequest, utils.ErrCodeExternalServiceFailure, err.Error(), nil, err,
			)
			return
		}
		respondServiceError(w, err)
		return
	}

	resp := dtos.SendReceiptResponse{
		OK:        true,
		ReceiptID: res.Receipt.ID,
		SignedURL: res.SignedURL,
		SentTo:    res.Receipt.SentTo,
		SentAt:    res.Receipt.SentAt,
	}
	if res.EmailDisabled {
		resp.EmailDisabled = true
		resp.Message = "Email provider not configured; receipt archived without sending"
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ----------------------------------------------------------------
// GET /api/v1/receipts/{id}/signed-url
// ----------------------------------------------------------------
func (c *ReceiptsController) SignedURLHandler(w http.ResponseWriter, r *http.Request) {
	receiptID, ok := pathUUID(w, r)
	if !ok {
		return
	}
	userID, ok := callerID(w, r, "")
	if !ok {
		return
	}

	signed, err := c.receipts.SignedURL(r.Context(), userID, receiptID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.SignedURLResponse{
		ReceiptID: receiptID,
		SignedURL: signed,
		ExpiresIn: int(c.cfg.SignedURLTTL.Seconds()),
	})
}

// ----------------------------------------------------------------
// GET /api/v1/leases/{id}/receipts
// ----------------------------------------------------------------
func (c *ReceiptsController) ListForLeaseHandler(w http.ResponseWriter, r *http.Request) {
	leaseID, ok := pathUUID(w, r)
	if !ok {
		return
	}
	userID, ok := callerID(w, r, "")
	if !ok {
		return
	}

	list, err := c.receipts.ListForLease(r.Context(), userID, leaseID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if list == nil {
		list = []*models.RentReceipt{}
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.ListReceiptsResponse{Receipts: list})
}

// ----------------------------------------------------------------
// POST /api/v1/leases/{id}/confirm-token
// *** issues the same yes/no links a reminder email carries
// ----------------------------------------------------------------
func (c *ReceiptsController) IssueConfirmTokenHandler(w http.ResponseWriter, r *http.Request) {
	leaseID, ok := pathUUID(w, r)
	if !ok {
		return
	}
	var req dtos.IssueConfirmTokenRequest
	if !decodeAndValidate(w, r, &req, false) {
		return
	}
	userID, ok := callerID(w, r, "")
	if !ok {
		return
	}
	period, err := parsePeriod(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	raw, action, err := c.tokens.IssueConfirmToken(r.Context(), leaseID, period, userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	yes, no := services.ConfirmURLs(c.cfg.AppUrl, raw)
	utils.RespondWithJSON(w, http.StatusCreated, dtos.IssueConfirmTokenResponse{
		ActionID:      action.ID,
		ExpiresAt:     action.ExpiresAt,
		ConfirmYesURL: yes,
		ConfirmNoURL:  no,
	})
}

func pathUUID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid id in path", nil, err,
		)
		return uuid.Nil, false
	}
	return id, true
}
