package eval

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-pipeline/internal/models"
	"github.com/insightdelivered/statement-pipeline/internal/ruledsl/ast"
	"github.com/insightdelivered/statement-pipeline/internal/ruledsl/parser"
)

func TestFirstWriterWins(t *testing.T) {
	r1, err := parser.Parse(`rule "r1" where entity_name:con:"KANTI":i assign category_id:1 priority 10;`)
	if err != nil {
		t.Fatalf("parse r1: %v", err)
	}
	r2, err := parser.Parse(`rule "r2" where entity_name:con:"KANTI" assign category_id:99 priority 20;`)
	if err != nil {
		t.Fatalf("parse r2: %v", err)
	}

	entity := "KANTI RAMULU"
	tx := &models.Transaction{EntityName: &entity}

	c := NewCategorizer([]*ast.CategorizationRule{r2, r1})
	out := c.Categorize(tx)

	if out.CategoryID == nil || *out.CategoryID != 1 {
		t.Fatalf("expected category_id=1 from higher-priority rule, got %+v", out.CategoryID)
	}
}

func TestUnknownAssignmentCarriesThrough(t *testing.T) {
	r, err := parser.Parse(`rule "x" where amount:gt:"10000" assign risk_level:2 alert_type:"HIGH" priority 50;`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	tx := &models.Transaction{Amount: decimal.NewFromInt(50000)}
	c := NewCategorizer([]*ast.CategorizationRule{r})
	out := c.Categorize(tx)

	if v, ok := out.Extra["risk_level"]; !ok || v.Int != 2 {
		t.Errorf("expected risk_level=2 in Extra, got %+v", out.Extra)
	}
	if v, ok := out.Extra["alert_type"]; !ok || v.Str != "HIGH" {
		t.Errorf("expected alert_type=HIGH in Extra, got %+v", out.Extra)
	}
}

func TestDedupSafetyAcrossSameDaySameAmount(t *testing.T) {
	// Two same-day, same-amount, same-description rows that differ only in
	// reference_id must both come out of batch categorization, each with
	// its own reference_id; the categorizer does not dedup them.
	ref1, ref2 := "A1", "A2"
	day := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	tx1 := &models.Transaction{Date: day, Description: "same", ReferenceID: &ref1, Amount: decimal.NewFromInt(100)}
	tx2 := &models.Transaction{Date: day, Description: "same", ReferenceID: &ref2, Amount: decimal.NewFromInt(100)}
	if *tx1.ReferenceID == *tx2.ReferenceID {
		t.Fatal("test setup invalid")
	}
	out := NewCategorizer(nil).CategorizeBatch([]*models.Transaction{tx1, tx2})
	if len(out) != 2 {
		t.Fatalf("expected both transactions to survive, got %d", len(out))
	}
	if *out[0].ReferenceID != "A1" || *out[1].ReferenceID != "A2" {
		t.Errorf("expected reference ids A1, A2, got %s, %s", *out[0].ReferenceID, *out[1].ReferenceID)
	}
}
