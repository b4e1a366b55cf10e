package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/insightdelivered/statement-pipeline/internal/models"
)

// TransactionFilter narrows a re-categorization run to a date range and/or
// a single bank account, mirroring the optional fields
// rule_engine_api.py's recategorize endpoint accepts.
type TransactionFilter struct {
	BankAccountID *int64
	FromDate      *time.Time
	ToDate        *time.Time
}

// FetchTransactionsForFilter loads the persisted rows a rule-engine re-run
// should consider. Unlike the pipeline's per-task fetch, this is driven by
// an operator request rather than a freshly parsed statement.
func (t *TaskConn) FetchTransactionsForFilter(ctx context.Context, userID int64, filter TransactionFilter) ([]*models.Transaction, error) {
	clauses := []string{"user_id = $1"}
	args := []any{userID}

	if filter.BankAccountID != nil {
		args = append(args, *filter.BankAccountID)
		clauses = append(clauses, fmt.Sprintf("bank_account_id = $%d", len(args)))
	}
	if filter.FromDate != nil {
		args = append(args, *filter.FromDate)
		clauses = append(clauses, fmt.Sprintf("transaction_date >= $%d", len(args)))
	}
	if filter.ToDate != nil {
		args = append(args, *filter.ToDate)
		clauses = append(clauses, fmt.Sprintf("transaction_date <= $%d", len(args)))
	}

	sql := fmt.Sprintf(`
		SELECT id, user_id, bank_account_id, transaction_date, description, entity_name,
		       amount, currency, direction, payment_method, reference_id,
		       category_id, tag_id, type_id, payment_method_id, goal_id
		FROM transactions
		WHERE %s
		ORDER BY transaction_date ASC`, strings.Join(clauses, " AND "))

	rows, err := t.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Transaction
	for rows.Next() {
		var tx models.Transaction
		var direction string
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.BankAccountID, &tx.Date, &tx.Description, &tx.EntityName,
			&tx.Amount, &tx.Currency, &direction, &tx.PaymentMethod, &tx.ReferenceID,
			&tx.CategoryID, &tx.TagID, &tx.TypeID, &tx.PaymentMethodID, &tx.GoalID); err != nil {
			return nil, err
		}
		tx.Direction = models.Direction(direction)
		out = append(out, &tx)
	}
	return out, rows.Err()
}

// FetchRulesByIDs loads a specific set of rules by primary key, used when a
// rule-engine request names which rules to re-apply instead of running
// every active rule for the account.
func (t *TaskConn) FetchRulesByIDs(ctx context.Context, userID int64, ids []int64) ([]*models.Rule, error) {
	rows, err := t.conn.Query(ctx, `
		SELECT id, user_id, dsl_text, priority, is_active, bank_account_id
		FROM categorization_rules
		WHERE user_id = $1 AND id = ANY($2) AND is_active = TRUE
		ORDER BY priority ASC`,
		userID, ids,
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

// UpdateTransactionAssignments writes back only the rule-assignable columns
// for already-persisted rows, one UPDATE per transaction keyed by id. A
// re-categorization run never touches the parsed fields (amount,
// description, date) — only what a rule can set.
func (t *TaskConn) UpdateTransactionAssignments(ctx context.Context, txs []*models.Transaction) (int, error) {
	updated := 0
	for _, tx := range txs {
		tag, err := t.conn.Exec(ctx, `
			UPDATE transactions
			SET category_id = $1, tag_id = $2, type_id = $3, payment_method_id = $4,
			    goal_id = $5, updated_at = now()
			WHERE id = $6`,
			tx.CategoryID, tx.TagID, tx.TypeID, tx.PaymentMethodID, tx.GoalID, tx.ID,
		)
		if err != nil {
			return updated, fmt.Errorf("updating transaction %d: %w", tx.ID, err)
		}
		updated += int(tag.RowsAffected())
	}
	return updated, nil
}
