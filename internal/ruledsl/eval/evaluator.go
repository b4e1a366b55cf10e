package eval

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-pipeline/internal/models"
	"github.com/insightdelivered/statement-pipeline/internal/ruledsl/ast"
)

// EvaluateRule returns true iff rule.IsActive and any AND-block's
// conjunction of filters all evaluate true against tx.
func EvaluateRule(rule *ast.CategorizationRule, tx *models.Transaction) bool {
	if !rule.IsActive {
		return false
	}
	for _, and := range rule.Conditions.Blocks {
		if evaluateAndBlock(and, tx) {
			return true
		}
	}
	return false
}

func evaluateAndBlock(block ast.AndBlock, tx *models.Transaction) bool {
	for _, f := range block.Filters {
		if !evaluateFilter(f, tx) {
			return false
		}
	}
	return true
}

func evaluateFilter(f ast.FilterExpression, tx *models.Transaction) bool {
	value, present := fieldValue(tx, f.Field)

	switch f.Op {
	case ast.OpNull:
		return !present || value == ""
	case ast.OpNotNull:
		return present && value != ""
	}

	if !present {
		return false
	}

	switch f.Op {
	case ast.OpEq:
		return compareEqual(value, f.Args[0], f.CaseSensitive)
	case ast.OpNeq:
		return !compareEqual(value, f.Args[0], f.CaseSensitive)
	case ast.OpStartsWith:
		a, b := caseFold(value, f.Args[0], f.CaseSensitive)
		return strings.HasPrefix(a, b)
	case ast.OpEndsWith:
		a, b := caseFold(value, f.Args[0], f.CaseSensitive)
		return strings.HasSuffix(a, b)
	case ast.OpRegex:
		flags := ""
		if !f.CaseSensitive {
			flags = "(?i)"
		}
		re, err := regexp.Compile(flags + f.Args[0])
		if err != nil {
			return false
		}
		return re.MatchString(value)
	case ast.OpGt, ast.OpLt, ast.OpGte, ast.OpLte:
		return compareOrdered(f.Op, value, f.Args[0])
	case ast.OpBetween:
		return compareBetween(value, f.Args[0], f.Args[1])
	case ast.OpContains:
		for _, needle := range f.Args {
			a, b := caseFold(value, needle, f.CaseSensitive)
			if strings.Contains(a, b) {
				return true
			}
		}
		return false
	case ast.OpNotContains:
		for _, needle := range f.Args {
			a, b := caseFold(value, needle, f.CaseSensitive)
			if strings.Contains(a, b) {
				return false
			}
		}
		return true
	case ast.OpIn:
		for _, candidate := range f.Args {
			if compareEqual(value, candidate, f.CaseSensitive) {
				return true
			}
		}
		return false
	case ast.OpNotIn:
		for _, candidate := range f.Args {
			if compareEqual(value, candidate, f.CaseSensitive) {
				return false
			}
		}
		return true
	}
	return false
}

func caseFold(a, b string, caseSensitive bool) (string, string) {
	if caseSensitive {
		return a, b
	}
	return strings.ToLower(a), strings.ToLower(b)
}

func compareEqual(a, b string, caseSensitive bool) bool {
	x, y := caseFold(a, b, caseSensitive)
	return x == y
}

// compareOrdered attempts fixed-point decimal conversion of both sides;
// falls back to lexicographic string comparison if either side isn't a
// valid decimal.
func compareOrdered(op ast.Operator, a, b string) bool {
	da, errA := decimal.NewFromString(a)
	db, errB := decimal.NewFromString(b)
	if errA == nil && errB == nil {
		switch op {
		case ast.OpGt:
			return da.GreaterThan(db)
		case ast.OpLt:
			return da.LessThan(db)
		case ast.OpGte:
			return da.GreaterThanOrEqual(db)
		case ast.OpLte:
			return da.LessThanOrEqual(db)
		}
	}
	switch op {
	case ast.OpGt:
		return a > b
	case ast.OpLt:
		return a < b
	case ast.OpGte:
		return a >= b
	case ast.OpLte:
		return a <= b
	}
	return false
}

func compareBetween(value, lo, hi string) bool {
	dv, errV := decimal.NewFromString(value)
	dl, errL := decimal.NewFromString(lo)
	dh, errH := decimal.NewFromString(hi)
	if errV == nil && errL == nil && errH == nil {
		return (dv.GreaterThanOrEqual(dl)) && (dv.LessThanOrEqual(dh))
	}
	return value >= lo && value <= hi
}
