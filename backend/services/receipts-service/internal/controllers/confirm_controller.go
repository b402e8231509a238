package controllers

import (
	"fmt"
	"html"
	"net/http"
	"net/url"

	"github.com/matthieuT78/mt-courtage-sub002/backend/services/receipts-service/internal/config"
	"github.com/matthieuT78/mt-courtage-sub002/backend/services/receipts-service/internal/constants"
	"github.com/matthieuT78/mt-courtage-sub002/backend/services/receipts-service/internal/services"
	internal_utils "github.com/matthieuT78/mt-courtage-sub002/backend/services/receipts-service/internal/utils"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-models"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-utils"
)

// ConfirmController serves the links embedded in reminder emails. These
// routes are public; the one-shot token is the only credential.
type ConfirmController struct {
	cfg     *config.Config
	confirm services.ConfirmationService
}

func NewConfirmController(cfg *config.Config, cs services.ConfirmationService) *ConfirmController {
	return &ConfirmController{cfg: cfg, confirm: cs}
}

// ----------------------------------------------------------------
// GET /api/v1/receipts/confirm?token=...&action=yes|no
// ----------------------------------------------------------------
func (c *ConfirmController) ConfirmHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := c.confirm.Confirm(r.Context(), q.Get("token"), q.Get("action"))

	v := url.Values{}
	if err != nil {
		v.Set("result", constants.ResultError)
		v.Set("reason", internal_utils.ConfirmReason(err))
	} else {
		v.Set("result", constants.ResultOK)
		v.Set("paid", string(res.Decision))
		if res.EmailDisabled {
			v.Set("email", "disabled")
		}
	}
	http.Redirect(w, r, c.landlordURL(v), http.StatusFound)
}

// ----------------------------------------------------------------
// GET /api/v1/receipts/confirm-paid?token=...
// *** legacy link; always means "yes" and answers with a page
// ----------------------------------------------------------------
func (c *ConfirmController) ConfirmPaidHandler(w http.ResponseWriter, r *http.Request) {
	res, err := c.confirm.Confirm(r.Context(), r.URL.Query().Get("token"), string(models.DecisionYes))
	if err != nil {
		reason := internal_utils.ConfirmReason(err)
		utils.RespondWithHTML(w, http.StatusOK, fmt.Sprintf(
			confirmErrorPageHTML,
			html.EscapeString(c.cfg.OrganizationName),
			html.EscapeString(reasonMessage(reason)),
			html.EscapeString(reason),
			html.EscapeString(c.landlordURL(nil)),
		))
		return
	}

	detail := "La quittance a été générée et envoyée au locataire."
	if res.EmailDisabled {
		detail = "La quittance a été générée et archivée ; l'envoi par email n'est pas configuré."
	}
	utils.RespondWithHTML(w, http.StatusOK, fmt.Sprintf(
		confirmOKPageHTML,
		html.EscapeString(c.cfg.OrganizationName),
		html.EscapeString(detail),
		html.EscapeString(c.landlordURL(nil)),
	))
}

func (c *ConfirmController) landlordURL(v url.Values) string {
	u := c.cfg.FrontendUrl + c.cfg.LandlordUIPath
	if len(v) > 0 {
		u += "?" + v.Encode()
	}
	return u
}

func reasonMessage(reason string) string {
	switch reason {
	case internal_utils.ReasonInvalidToken:
		return "Ce lien de confirmation n'est pas valide."
	case internal_utils.ReasonAlreadyUsed:
		return "Ce lien a déjà été utilisé."
	case internal_utils.ReasonExpired:
		return "Ce lien a expiré. Vous pouvez générer la quittance depuis votre espace."
	case internal_utils.ReasonLockFailed:
		return "Une confirmation est déjà en cours de traitement."
	default:
		return "L'envoi de la quittance a échoué. Vous pouvez la renvoyer depuis votre espace."
	}
}

const confirmOKPageHTML = `<!DOCTYPE html>
<html lang="fr">
<head><meta charset="utf-8"><title>%[1]s - Paiement confirmé</title></head>
<body style="font-family:Arial,Helvetica,sans-serif;max-width:560px;margin:40px auto;color:#222;">
  <h1 style="color:#1b6e3a;">Paiement confirmé</h1>
  <p>%[2]s</p>
  <p><a href="%[3]s">Retour à mes quittances</a></p>
  <p style="color:#888;font-size:12px;">%[1]s</p>
</body>
</html>`

const confirmErrorPageHTML = `<!DOCTYPE html>
<html lang="fr">
<head><meta charset="utf-8"><title>%[1]s - Confirmation impossible</title></head>
<body style="font-family:Arial,Helvetica,sans-serif;max-width:560px;margin:40px auto;color:#222;">
  <h1 style="color:#a12a2a;">Confirmation impossible</h1>
  <p>%[2]s</p>
  <p style="color:#888;">Code : %[3]s</p>
  <p><a href="%[4]s">Retour à mes quittances</a></p>
  <p style="color:#888;font-size:12px;">%[1]s</p>
</body>
</html>`
