package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	internal_utils "github.com/matthieuT78/mt-courtage-sub002/backend/services/receipts-service/internal/utils"
	shared_dtos "github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-dtos"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-middleware"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-models"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-utils"
)

var validate = validator.New()

// decodeAndValidate writes the 400 itself and returns false on failure.
// An empty body is accepted when allowEmpty is set.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if !(allowEmpty && errors.Is(err, io.EOF)) {
			utils.RespondErrorWithCode(
				w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err,
			)
			return false
		}
	}
	if err := validate.Struct(dst); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation failed",
			shared_dtos.NewValidationErrorDetails(err), err,
		)
		return false
	}
	return true
}

// callerID resolves the authenticated landlord. A userId supplied in the
// body must match the token subject.
func callerID(w http.ResponseWriter, r *http.Request, bodyUserID string) (uuid.UUID, bool) {
	sub, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondErrorWithCode(
			w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "No userID in context", nil,
		)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Malformed subject", nil, err,
		)
		return uuid.Nil, false
	}
	if bodyUserID != "" && bodyUserID != id.String() {
		utils.RespondErrorWithCode(
			w, http.StatusForbidden, utils.ErrCodeForbidden, "userId does not match the authenticated user", nil,
		)
		return uuid.Nil, false
	}
	return id, true
}

func parsePeriod(start, end string) (models.Period, error) {
	s, err := time.Parse(time.DateOnly, start)
	if err != nil {
		return models.Period{}, internal_utils.ErrInvalidPeriod
	}
	e, err := time.Parse(time.DateOnly, end)
	if err != nil {
		return models.Period{}, internal_utils.ErrInvalidPeriod
	}
	p, err := models.NewPeriod(s, e)
	if err != nil {
		return models.Period{}, internal_utils.ErrInvalidPeriod
	}
	return p, nil
}

// toAppError maps service failures onto the HTTP taxonomy.
func toAppError(err error) *utils.AppError {
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, internal_utils.ErrInvalidPeriod),
		errors.Is(err, internal_utils.ErrInvalidAction),
		errors.Is(err, internal_utils.ErrNoRecipient):
		return utils.NewAppError(http.StatusBadRequest, utils.ErrCodeInvalidPayload, err.Error(), err)
	case errors.Is(err, internal_utils.ErrForbidden):
		return utils.NewAppError(http.StatusForbidden, utils.ErrCodeForbidden, "Not the owner of this resource", err)
	case errors.Is(err, internal_utils.ErrLeaseNotFound):
		return utils.NewAppError(http.StatusNotFound, utils.ErrCodeNotFound, "Lease not found", err)
	case errors.Is(err, internal_utils.ErrReceiptNotFound):
		return utils.NewAppError(http.StatusNotFound, utils.ErrCodeNotFound, "Receipt not found", err)
	case errors.Is(err, internal_utils.ErrPDFNotAvailable):
		return utils.NewAppError(http.StatusNotFound, utils.ErrCodeNotFound, "Receipt PDF not available", err)
	case errors.Is(err, internal_utils.ErrInvalidToken):
		return utils.NewAppError(http.StatusNotFound, utils.ErrCodeNotFound, "Unknown confirmation token", err)
	case errors.Is(err, internal_utils.ErrTokenAlreadyUsed),
		errors.Is(err, internal_utils.ErrLockFailed),
		errors.Is(err, utils.ErrRowVersionConflict):
		return utils.NewAppError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), err)
	case errors.Is(err, internal_utils.ErrTokenExpired):
		return utils.NewAppError(http.StatusGone, utils.ErrCodeGone, "Confirmation token expired", err)
	case errors.Is(err, internal_utils.ErrSendFailed),
		errors.Is(err, internal_utils.ErrStorageFailure),
		errors.Is(err, utils.ErrExternalServiceFailure):
		return utils.NewAppError(http.StatusBadGateway, utils.ErrCodeExternalServiceFailure, err.Error(), err)
	}
	return utils.NewAppError(http.StatusInternalServerError, utils.ErrCodeInternal, "An unexpected error occurred", err)
}

func respondServiceError(w http.ResponseWriter, err error) {
	utils.HandleAppError(w, toAppError(err))
}
