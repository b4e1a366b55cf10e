package httpapi

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/insightdelivered/statement-pipeline/internal/models"
	"github.com/insightdelivered/statement-pipeline/internal/ruledsl/ast"
	"github.com/insightdelivered/statement-pipeline/internal/ruledsl/eval"
	"github.com/insightdelivered/statement-pipeline/internal/ruledsl/parser"
	"github.com/insightdelivered/statement-pipeline/internal/storage"
)

const dateLayout = "2006-01-02"

type ruleEngineRequest struct {
	UserEmail     string  `json:"user_email" validate:"required,email"`
	BankAccountID *int64  `json:"bank_account_id"`
	FromDate      *string `json:"from_date"`
	ToDate        *string `json:"to_date"`
	RuleIDs       []int64 `json:"rules_id"`
}

type ruleEngineResponse struct {
	Count int            `json:"count"`
	Stats map[string]int `json:"stats"`
}

// handleRuleEngine re-runs the categorizer over already-persisted
// transactions matching the filter and writes the rule-assignable fields
// back, grounded on rule_engine_api.py's on-demand recategorize endpoint —
// unlike the pipeline task, this never touches parsed fields or inserts
// new rows.
func (h *Handler) handleRuleEngine(c *fiber.Ctx) error {
	var req ruleEngineRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	filter, err := parseFilter(req)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	conn, err := h.store.AcquireTask(c.Context())
	if err != nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "database unavailable")
	}
	defer conn.Release()

	user, err := conn.FindUserByEmail(c.Context(), req.UserEmail)
	if err != nil || !user.IsActive {
		return fiber.NewError(fiber.StatusNotFound, "unknown user")
	}

	txs, err := conn.FetchTransactionsForFilter(c.Context(), user.ID, filter)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load transactions")
	}
	if len(txs) == 0 {
		return c.JSON(ruleEngineResponse{Count: 0, Stats: map[string]int{}})
	}

	ruleRows, err := h.loadRules(c, conn, user.ID, req)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load rules")
	}

	var parsed []*ast.CategorizationRule
	for _, r := range ruleRows {
		rule, perr := parser.Parse(r.DSLText)
		if perr != nil {
			h.log.Warn().Err(perr).Int64("rule_id", r.ID).Msg("skipping unparseable rule")
			continue
		}
		rule.Priority = r.Priority
		rule.IsActive = r.IsActive
		parsed = append(parsed, rule)
	}

	categorizer := eval.NewCategorizer(parsed)
	enriched := categorizer.CategorizeBatch(txs)

	updated, err := conn.UpdateTransactionAssignments(c.Context(), enriched)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to write back categorization")
	}

	return c.JSON(ruleEngineResponse{
		Count: updated,
		Stats: map[string]int{
			"matched": len(txs),
			"rules":   len(parsed),
			"updated": updated,
		},
	})
}

func (h *Handler) loadRules(c *fiber.Ctx, conn *storage.TaskConn, userID int64, req ruleEngineRequest) ([]*models.Rule, error) {
	if len(req.RuleIDs) > 0 {
		return conn.FetchRulesByIDs(c.Context(), userID, req.RuleIDs)
	}
	var bankAccountID int64
	if req.BankAccountID != nil {
		bankAccountID = *req.BankAccountID
	}
	return conn.FetchActiveRules(c.Context(), userID, bankAccountID)
}

func parseFilter(req ruleEngineRequest) (storage.TransactionFilter, error) {
	var filter storage.TransactionFilter
	filter.BankAccountID = req.BankAccountID
	if req.FromDate != nil {
		t, err := time.Parse(dateLayout, *req.FromDate)
		if err != nil {
			return filter, err
		}
		filter.FromDate = &t
	}
	if req.ToDate != nil {
		t, err := time.Parse(dateLayout, *req.ToDate)
		if err != nil {
			return filter, err
		}
		filter.ToDate = &t
	}
	return filter, nil
}
