package eval

import (
	"sort"

	"github.com/insightdelivered/statement-pipeline/internal/models"
	"github.com/insightdelivered/statement-pipeline/internal/ruledsl/ast"
)

// Categorizer applies an ordered rule set to transactions, first-writer
// wins per field across the set.
type Categorizer struct {
	rules []*ast.CategorizationRule
}

// NewCategorizer sorts rules ascending by priority (stable; ties preserve
// the given order, which callers should supply in parse order).
func NewCategorizer(rules []*ast.CategorizationRule) *Categorizer {
	sorted := make([]*ast.CategorizationRule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})
	return &Categorizer{rules: sorted}
}

// Categorize clones tx's mutable fields, applies matching rules in
// ascending-priority order, and returns the enriched record. An assignment
// is only written if its field has not already been set — by the input
// record itself or by a higher-priority rule earlier in this pass.
func (c *Categorizer) Categorize(tx *models.Transaction) *models.Transaction {
	out := cloneTransaction(tx)
	alreadySet := alreadySetFields(out)

	for _, rule := range c.rules {
		if !EvaluateRule(rule, out) {
			continue
		}
		for field, value := range rule.Assignment {
			if alreadySet[field] {
				continue
			}
			applyAssignment(out, field, value)
			alreadySet[field] = true
		}
	}
	return out
}

// CategorizeBatch applies Categorize across a slice of transactions.
func (c *Categorizer) CategorizeBatch(txs []*models.Transaction) []*models.Transaction {
	out := make([]*models.Transaction, len(txs))
	for i, tx := range txs {
		out[i] = c.Categorize(tx)
	}
	return out
}

func cloneTransaction(tx *models.Transaction) *models.Transaction {
	clone := *tx
	if tx.Extra != nil {
		clone.Extra = make(map[string]models.ScalarValue, len(tx.Extra))
		for k, v := range tx.Extra {
			clone.Extra[k] = v
		}
	}
	return &clone
}

func applyAssignment(tx *models.Transaction, field string, value ast.AssignedValue) {
	scalar := assignedToScalar(value)

	if isFixedField(field) {
		var target **int64
		switch field {
		case "category_id":
			target = &tx.CategoryID
		case "tag_id":
			target = &tx.TagID
		case "type_id":
			target = &tx.TypeID
		case "payment_method_id":
			target = &tx.PaymentMethodID
		case "goal_id":
			target = &tx.GoalID
		}
		if target != nil && scalar.Kind == models.ScalarInt {
			v := scalar.Int
			*target = &v
			return
		}
	}

	if tx.Extra == nil {
		tx.Extra = make(map[string]models.ScalarValue)
	}
	tx.Extra[field] = scalar
}

func assignedToScalar(v ast.AssignedValue) models.ScalarValue {
	if v.Kind == ast.AssignedInt {
		return models.IntValue(v.Int)
	}
	return models.StringValue(v.Str)
}
