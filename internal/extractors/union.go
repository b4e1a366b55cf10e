package extractors

import (
	"strings"

	"github.com/insightdelivered/statement-pipeline/internal/models"
	"github.com/insightdelivered/statement-pipeline/internal/normalize"
	"github.com/insightdelivered/statement-pipeline/internal/rows"
)

// UnionExtractor is grounded on pdf_normalizer/banks/union_bank.py: column
// layout is date, transaction id (used as reference_id verbatim, not
// narration-extracted), remarks, then a trailing amount+balance pair.
type UnionExtractor struct{}

func (UnionExtractor) BankName() models.BankName { return models.BankUnion }

func (UnionExtractor) Detect(text string) bool {
	return strings.Contains(strings.ToLower(text), "ubin")
}

func (UnionExtractor) ParseAccountDetails(text string) (models.AccountDetails, error) {
	return parseGenericAccountDetails(text, `[A-Z]{4}0[A-Z0-9]{6}`), nil
}

func (UnionExtractor) ParseRows(logicalRows []rows.LogicalRow) ([]*models.Transaction, error) {
	var out []*models.Transaction
	for _, row := range logicalRows {
		dateIdx, ok := matchDateCell(row)
		if !ok || dateIdx+2 >= len(row) {
			continue
		}
		date, err := normalize.ParseDate(row[dateIdx])
		if err != nil {
			continue
		}
		reference := strings.TrimSpace(row[dateIdx+1])
		description := strings.TrimSpace(row[dateIdx+2])

		amountStr, found := lastNonEmptyAmount(row, dateIdx+3)
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

		var refPtr *string
		if reference != "" {
			refPtr = &reference
		}

		tx := &models.Transaction{
			Date:        date,
			Description: description,
			Amount:      amount,
			Currency:    "INR",
			Direction:   direction,
			ReferenceID: refPtr,
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
