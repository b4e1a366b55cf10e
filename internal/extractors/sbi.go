package extractors

import (
	"strconv"
	"strings"

	"github.com/insightdelivered/statement-pipeline/internal/models"
	"github.com/insightdelivered/statement-pipeline/internal/normalize"
	"github.com/insightdelivered/statement-pipeline/internal/rows"
)

// SBIExtractor is grounded on pdf_normalizer/banks/sbi_bank.py, including
// its post-processing hooks for system rows (UPI/REF/ narration clearing
// entity_name, SBIYA/renewal service charges, cash deposits) and its
// dedup-by-(date, amount, description, reference_id) discipline.
type SBIExtractor struct{}

func (SBIExtractor) BankName() models.BankName { return models.BankSBI }

func (SBIExtractor) Detect(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "state bank of india") || strings.Contains(lower, "sbi")
}

func (SBIExtractor) ParseAccountDetails(text string) (models.AccountDetails, error) {
	return parseGenericAccountDetails(text, `SBIN0\d{6}`), nil
}

type seenKey struct {
	date, amount, description, reference string
}

func (SBIExtractor) ParseRows(logicalRows []rows.LogicalRow) ([]*models.Transaction, error) {
	var out []*models.Transaction
	seen := make(map[seenKey]bool)

	var lastAmount string
	var lastDirection models.Direction

	for i, row := range logicalRows {
		dateIdx, ok := matchDateCell(row)
		if !ok {
			continue
		}
		date, err := normalize.ParseDate(row[dateIdx])
		if err != nil {
			continue
		}

		description := ""
		if dateIdx+1 < len(row) {
			description = strings.TrimSpace(row[dateIdx+1])
		}

		amountStr, found := lastNonEmptyAmount(row, dateIdx+2)
		direction, dirKnown := normalize.DetermineDirection(description)
		if !found {
			// Wrapped row whose amount landed on a continuation elsewhere:
			// inherit the last successfully extracted amount+direction.
			if lastAmount == "" {
				continue
			}
			amountStr = lastAmount
			if !dirKnown {
				direction = lastDirection
			}
		}
		amount, err := normalize.ParseAmount(amountStr)
		if err != nil {
			continue
		}
		if !dirKnown && found {
			direction = directionFromColumnPosition(row, dateIdx)
		}
		lastAmount, lastDirection = amountStr, direction

		entity := normalize.ExtractEntityName(description)
		paymentMethod := normalize.ExtractPaymentMethod(description)
		refID := extractReferenceID(description)

		dedupRef := ""
		if refID != nil {
			dedupRef = *refID
		} else {
			dedupRef = "ROW-" + strconv.Itoa(i)
		}
		key := seenKey{date: date.Format("2006-01-02"), amount: amount.String(), description: description, reference: dedupRef}
		if seen[key] {
			continue
		}
		seen[key] = true

		tx := &models.Transaction{
			Date:        date,
			Description: description,
			Amount:      amount,
			Currency:    "INR",
			Direction:   direction,
			ReferenceID: refID,
		}
		if entity != "" {
			tx.EntityName = &entity
		}
		if paymentMethod != "" {
			tx.PaymentMethod = &paymentMethod
		}
		sbiPostProcess(tx, description)
		out = append(out, tx)
	}
	return out, nil
}

// sbiPostProcess mirrors _sbi_post_process: prefix-based overrides for
// system rows that assign a payment-method tag (and, for zero-amount
// system rows, leave the amount as extracted rather than fabricating one).
func sbiPostProcess(tx *models.Transaction, description string) {
	upper := strings.ToUpper(description)
	switch {
	case strings.HasPrefix(upper, "UPI/REF/"):
		tx.EntityName = nil
		pm := "UPI"
		tx.PaymentMethod = &pm
	case strings.HasPrefix(upper, "SBIYA") || strings.Contains(upper, "RENEWAL"):
		entity := "SBI"
		pm := "SERVICE_CHARGE"
		tx.EntityName = &entity
		tx.PaymentMethod = &pm
	case strings.Contains(upper, "CASH DEPOSIT"):
		pm := "CASH"
		tx.PaymentMethod = &pm
	}
}

func directionFromColumnPosition(row rows.LogicalRow, dateIdx int) models.Direction {
	// Generic two-amount-column layout ahead of a trailing balance: a
	// populated credit cell (second to last) with an empty debit cell (third
	// to last) implies credit; anything else implies debit.
	if len(row) < dateIdx+3 {
		return models.DirectionDebit
	}
	debitCell := strings.TrimSpace(row[len(row)-3])
	creditCell := strings.TrimSpace(row[len(row)-2])
	if creditCell != "" && debitCell == "" {
		return models.DirectionCredit
	}
	return models.DirectionDebit
}
