package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-models"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-utils"
)

const frenchDate = "02/01/2006"

var frenchMonths = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// MonthLabel renders a period as e.g. "juin 2024".
func MonthLabel(p models.Period) string {
	return fmt.Sprintf("%s %d", frenchMonths[p.Start.Month()-1], p.Start.Year())
}

// receiptParties holds what the legal text mentions. Any of them may be nil
// when the row was deleted; the text falls back to neutral wording.
type receiptParties struct {
	landlord *models.Landlord
	tenant   *models.Tenant
	property *models.Property
}

// DefaultReceiptContent is the French legal wording of a rent receipt.
func DefaultReceiptContent(lease *models.Lease, period models.Period, parties receiptParties) string {
	landlordName := "Le bailleur"
	if parties.landlord != nil && parties.landlord.FullName != "" {
		landlordName = parties.landlord.FullName
	}
	tenantName := "le locataire"
	if parties.tenant != nil && parties.tenant.FullName != "" {
		tenantName = parties.tenant.FullName
	}
	address := "le logement loué"
	if parties.property != nil {
		address = parties.property.FullAddress()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Je soussigné(e) %s, bailleur du logement situé %s, ", landlordName, address)
	fmt.Fprintf(&b, "déclare avoir reçu de %s la somme de %s ", tenantName, utils.FormatEuros(lease.TotalCents()))
	fmt.Fprintf(&b, "au titre du loyer et des charges pour la période du %s au %s.\n\n",
		period.Start.Format(frenchDate), period.End.Format(frenchDate))
	b.WriteString("Détail du règlement :\n")
	fmt.Fprintf(&b, "- Loyer hors charges : %s\n", utils.FormatEuros(lease.RentCents))
	fmt.Fprintf(&b, "- Provision pour charges : %s\n", utils.FormatEuros(lease.ChargesCents))
	fmt.Fprintf(&b, "- Total : %s\n\n", utils.FormatEuros(lease.TotalCents()))
	b.WriteString("Cette quittance annule tous les reçus qui auraient pu être établis précédemment ")
	b.WriteString("en cas de paiement partiel du montant ci-dessus. Elle est délivrée sous réserve de ")
	b.WriteString("tous droits et ne vaut pas reconnaissance du paiement des termes antérieurs.")
	return b.String()
}

func receiptDocument(rec *models.RentReceipt, orgName string) ReceiptDocument {
	period := rec.Period()
	return ReceiptDocument{
		Title: "Quittance de loyer",
		PeriodLine: fmt.Sprintf("Période du %s au %s",
			period.Start.Format(frenchDate), period.End.Format(frenchDate)),
		IssueLine: "Émise le " + rec.IssueDate.Format(frenchDate),
		Body:      rec.ContentText,
		Footer:    fmt.Sprintf("%s - quittance %s", orgName, rec.ID),
		IssuedAt:  rec.IssueDate,
	}
}

func issueDate(now time.Time, loc *time.Location) time.Time {
	return models.DateOnly(now.In(loc))
}
