// Package eval evaluates parsed rule ASTs against a transaction record and
// applies a priority-ordered rule set to it.
//
// Grounded on the source project's rule_engine/evaluator.py
// (RuleEvaluator, TransactionCategorizer).
package eval

import (
	"strconv"

	"github.com/insightdelivered/statement-pipeline/internal/models"
)

// fieldValue resolves a DSL field name against a transaction's fixed
// columns, falling back to its dynamic Extra map for rule-assigned or
// otherwise unrecognized names. The bool return is false when the field is
// genuinely absent (as opposed to present-but-empty).
func fieldValue(tx *models.Transaction, name string) (string, bool) {
	switch name {
	case "transaction_date":
		return tx.Date.Format("2006-01-02"), true
	case "description":
		return tx.Description, true
	case "entity_name":
		if tx.EntityName == nil {
			return "", false
		}
		return *tx.EntityName, true
	case "amount":
		return tx.Amount.String(), true
	case "currency":
		return tx.Currency, true
	case "direction":
		return string(tx.Direction), true
	case "payment_method":
		if tx.PaymentMethod == nil {
			return "", false
		}
		return *tx.PaymentMethod, true
	case "reference_id":
		if tx.ReferenceID == nil {
			return "", false
		}
		return *tx.ReferenceID, true
	case "category_id":
		return intPtrValue(tx.CategoryID)
	case "tag_id":
		return intPtrValue(tx.TagID)
	case "type_id":
		return intPtrValue(tx.TypeID)
	case "payment_method_id":
		return intPtrValue(tx.PaymentMethodID)
	case "goal_id":
		return intPtrValue(tx.GoalID)
	default:
		if tx.Extra == nil {
			return "", false
		}
		v, ok := tx.Extra[name]
		if !ok {
			return "", false
		}
		return scalarAsString(v), true
	}
}

func intPtrValue(p *int64) (string, bool) {
	if p == nil {
		return "", false
	}
	return strconv.FormatInt(*p, 10), true
}

func scalarAsString(v models.ScalarValue) string {
	switch v.Kind {
	case models.ScalarInt:
		return strconv.FormatInt(v.Int, 10)
	case models.ScalarDecimal:
		return v.Dec.String()
	default:
		return v.Str
	}
}

// isFixedField reports whether name addresses one of Transaction's typed
// pointer/id columns, as opposed to a dynamic Extra entry.
func isFixedField(name string) bool {
	switch name {
	case "category_id", "tag_id", "type_id", "payment_method_id", "goal_id":
		return true
	default:
		return false
	}
}

// alreadySetFields returns the names of the nullable fields already set on
// tx before any rule has run (entity_name, payment_method and the five id
// columns) plus every Extra key, seeding the categorizer's first-writer-wins
// bookkeeping.
func alreadySetFields(tx *models.Transaction) map[string]bool {
	set := make(map[string]bool)
	if tx.EntityName != nil {
		set["entity_name"] = true
	}
	if tx.PaymentMethod != nil {
		set["payment_method"] = true
	}
	if tx.CategoryID != nil {
		set["category_id"] = true
	}
	if tx.TagID != nil {
		set["tag_id"] = true
	}
	if tx.TypeID != nil {
		set["type_id"] = true
	}
	if tx.PaymentMethodID != nil {
		set["payment_method_id"] = true
	}
	if tx.GoalID != nil {
		set["goal_id"] = true
	}
	for k := range tx.Extra {
		set[k] = true
	}
	return set
}
