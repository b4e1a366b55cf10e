package storage

import (
	"context"

	"github.com/insightdelivered/statement-pipeline/internal/models"
)

// FetchActiveRules returns every active rule scoped to either no bank
// account (applies to all) or the given bank account, matching spec's
// "bank_id IS NULL OR =" scoping. Rules are re-fetched per task rather than
// cached so edits take effect immediately.
func (t *TaskConn) FetchActiveRules(ctx context.Context, userID, bankAccountID int64) ([]*models.Rule, error) {
	rows, err := t.conn.Query(ctx, `
		SELECT id, user_id, dsl_text, priority, is_active, bank_account_id
		FROM categorization_rules
		WHERE user_id = $1
		  AND is_active = TRUE
		  AND (bank_account_id IS NULL OR bank_account_id = $2)
		ORDER BY priority ASC`,
		userID, bankAccountID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Rule
	for rows.Next() {
		var r models.Rule
		if err := rows.Scan(&r.ID, &r.UserID, &r.DSLText, &r.Priority, &r.IsActive, &r.BankAccountID); err != nil {
			return nil, err
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}
