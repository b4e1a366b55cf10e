package extractors

import (
	"strings"

	"github.com/insightdelivered/statement-pipeline/internal/models"
	"github.com/insightdelivered/statement-pipeline/internal/normalize"
	"github.com/insightdelivered/statement-pipeline/internal/rows"
)

// KotakExtractor is the registry's one cell-layout exception: credit and
// debit live in distinct columns rather than being inferrable from
// narration markers alone. Grounded on
// pdf_normalizer/banks/kotak_bank.py::parse_rows, which in the source
// re-opens the PDF to access that column layout directly; here the row
// reconstructor already preserves per-column structure in each LogicalRow
// (see SPEC_FULL.md's Design Notes), so no second PDF walk is needed —
// this extractor simply reads the debit/credit columns by position.
type KotakExtractor struct{}

func (KotakExtractor) BankName() models.BankName { return models.BankKotak }

func (KotakExtractor) Detect(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "kotak mahindra bank") || strings.Contains(lower, "kkbk")
}

func (KotakExtractor) ParseAccountDetails(text string) (models.AccountDetails, error) {
	return parseGenericAccountDetails(text, `KKBK0[A-Z0-9]{6}`), nil
}

func (KotakExtractor) ParseRows(logicalRows []rows.LogicalRow) ([]*models.Transaction, error) {
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
		if strings.Contains(strings.ToUpper(description), "OPENING BALANCE") {
			continue
		}

		// Distinct debit/credit columns — the last two non-balance cells.
		if len(row) < dateIdx+4 {
			continue
		}
		debitCell := strings.TrimSpace(row[len(row)-3])
		creditCell := strings.TrimSpace(row[len(row)-2])

		var amountStr string
		var direction models.Direction
		switch {
		case debitCell != "":
			amountStr, direction = debitCell, models.DirectionDebit
		case creditCell != "":
			amountStr, direction = creditCell, models.DirectionCredit
		default:
			continue
		}
		amount, err := normalize.ParseAmount(amountStr)
		if err != nil {
			continue
		}

		var paymentMethod string
		if strings.HasPrefix(strings.ToUpper(description), "INT.PD") {
			paymentMethod = "INTEREST"
		} else {
			paymentMethod = normalize.ExtractPaymentMethod(description)
		}
		entity := normalize.ExtractEntityName(description)

		// Kotak carries its own reference-id column between the narration
		// and the trailing debit/credit/balance triplet — read verbatim,
		// not regex-extracted from the narration (kotak_bank.py row[3]).
		var refID *string
		if refIdx := dateIdx + 2; refIdx < len(row)-3 {
			if ref := strings.TrimSpace(row[refIdx]); ref != "" {
				refID = &ref
			}
		}

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
