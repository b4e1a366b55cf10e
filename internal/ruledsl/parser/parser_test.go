package parser

import (
	"testing"

	"github.com/insightdelivered/statement-pipeline/internal/ruledsl/ast"
)

func TestParseSimpleRule(t *testing.T) {
	src := `rule "r1" where entity_name:con:"KANTI":i assign category_id:1 priority 10;`
	rule, err := Parse(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rule.Name != "r1" {
		t.Errorf("expected name r1, got %q", rule.Name)
	}
	if rule.Priority != 10 {
		t.Errorf("expected priority 10, got %d", rule.Priority)
	}
	if len(rule.Conditions.Blocks) != 1 || len(rule.Conditions.Blocks[0].Filters) != 1 {
		t.Fatalf("expected one AND block with one filter")
	}
	f := rule.Conditions.Blocks[0].Filters[0]
	if f.Field != "entity_name" || f.CaseSensitive {
		t.Errorf("unexpected filter: %+v", f)
	}
	if v, ok := rule.Assignment["category_id"]; !ok || v.Int != 1 {
		t.Errorf("expected category_id:1 assignment, got %+v", rule.Assignment)
	}
}

func TestParseDefaultPriority(t *testing.T) {
	src := `rule "r2" where amount:gt:"10000" assign risk_level:2 alert_type:"HIGH";`
	rule, err := Parse(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rule.Priority != 100 {
		t.Errorf("expected default priority 100, got %d", rule.Priority)
	}
	if rule.Assignment["risk_level"].Int != 2 {
		t.Errorf("expected risk_level:2")
	}
	if rule.Assignment["alert_type"].Str != "HIGH" {
		t.Errorf("expected alert_type:HIGH")
	}
}

func TestParseOrAnd(t *testing.T) {
	src := `rule "r3" where a:eq:"x" and b:eq:"y" or c:null assign z:1;`
	rule, err := Parse(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rule.Conditions.Blocks) != 2 {
		t.Fatalf("expected 2 OR blocks, got %d", len(rule.Conditions.Blocks))
	}
	if len(rule.Conditions.Blocks[0].Filters) != 2 {
		t.Fatalf("expected 2 filters in first AND block")
	}
}

func TestParseGteNotShadowedByGt(t *testing.T) {
	src := `rule "r4" where amount:gte:"100" assign category_id:1;`
	rule, err := Parse(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f := rule.Conditions.Blocks[0].Filters[0]
	if f.Op != ast.OpGte {
		t.Errorf("expected OpGte, got %v", f.Op)
	}
}

func TestParseError(t *testing.T) {
	_, err := Parse(`rule "bad" where assign x:1;`)
	if err == nil {
		t.Fatal("expected parse error")
	}
}
