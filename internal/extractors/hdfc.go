package extractors

import (
	"strings"

	"github.com/insightdelivered/statement-pipeline/internal/models"
	"github.com/insightdelivered/statement-pipeline/internal/normalize"
	"github.com/insightdelivered/statement-pipeline/internal/rows"
)

// HDFCExtractor is grounded on pdf_normalizer/banks/hdfc_bank.py. The
// source's HDFC parser is a stub (detect + an incomplete parse_rows calling
// an undefined rule.extract); ParseRows here is filled in following the
// same generic date/narration/trailing-amount-pair convention as the
// other registered extractors.
type HDFCExtractor struct{}

func (HDFCExtractor) BankName() models.BankName { return models.BankHDFC }

func (HDFCExtractor) Detect(text string) bool {
	return strings.Contains(strings.ToLower(text), "hdfc")
}

func (HDFCExtractor) ParseAccountDetails(text string) (models.AccountDetails, error) {
	return parseGenericAccountDetails(text, `HDFC0[A-Z0-9]{6}`), nil
}

func (HDFCExtractor) ParseRows(logicalRows []rows.LogicalRow) ([]*models.Transaction, error) {
	var out []*models.Transaction
	for _, row := range logicalRows {
		dateIdx, ok := matchDateCell(row)
		if !ok || dateIdx+1 >= len(row) {
			continue
		}
		date, err := normalize.ParseDate(row[dateIdx])
		if err != nil {
			continue
		}
		description := strings.TrimSpace(row[dateIdx+1])

		amountStr, found := lastNonEmptyAmount(row, dateIdx+2)
		if !found {
			continue
		}
		amount, err := normalize.ParseAmount(amountStr)
		if err != nil {
			continue
		}
		direction, ok := normalize.DetermineDirection(description)
		if !ok {
			direction = directionFromColumnPosition(row, dateIdx)
		}

		entity := normalize.ExtractEntityName(description)
		paymentMethod := normalize.ExtractPaymentMethod(description)
		refID := extractReferenceID(description)

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
		out = append(out, tx)
	}
	return out, nil
}
