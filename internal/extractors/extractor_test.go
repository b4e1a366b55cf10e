package extractors

import (
	"testing"

	"github.com/insightdelivered/statement-pipeline/internal/rows"
)

func TestResolveBySenderDomainHint(t *testing.T) {
	r := DefaultRegistry()
	e, err := r.Resolve("statements@sbi.co.in", "some ambiguous header text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.BankName() != "SBI" {
		t.Errorf("expected SBI via domain hint, got %s", e.BankName())
	}
}

func TestResolveFallsBackToContentDetection(t *testing.T) {
	r := DefaultRegistry()
	e, err := r.Resolve("", "Statement from KOTAK MAHINDRA BANK")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.BankName() != "KOTAK" {
		t.Errorf("expected KOTAK via content detection, got %s", e.BankName())
	}
}

func TestResolveUnsupportedBank(t *testing.T) {
	r := DefaultRegistry()
	_, err := r.Resolve("", "some unrelated bank text")
	if err != ErrUnsupportedBank {
		t.Errorf("expected ErrUnsupportedBank, got %v", err)
	}
}

func TestUPIDebitNarrationEncodedDirection(t *testing.T) {
	// End-to-end scenario 1 from the spec.
	row := rows.LogicalRow{"01-11-25", "UPI/DR/531715436912/KANTI RAMULU GA/KKBK/Ph", "500.00", "72,500.00"}
	txs, err := SBIExtractor{}.ParseRows([]rows.LogicalRow{row})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txs))
	}
	tx := txs[0]
	if tx.Direction != "debit" {
		t.Errorf("expected debit direction, got %s", tx.Direction)
	}
	if tx.EntityName == nil || *tx.EntityName != "KANTI RAMULU GA" {
		t.Errorf("unexpected entity name: %v", tx.EntityName)
	}
	if tx.PaymentMethod == nil || *tx.PaymentMethod != "UPI" {
		t.Errorf("unexpected payment method: %v", tx.PaymentMethod)
	}
	if tx.ReferenceID == nil || *tx.ReferenceID != "531715436912" {
		t.Errorf("unexpected reference id: %v", tx.ReferenceID)
	}
}

func TestHDFCLeavesReferenceIDNilWithoutNarrationMatch(t *testing.T) {
	row := rows.LogicalRow{"01-11-25", "ATM CASH WITHDRAWAL", "500.00", "72,500.00"}
	txs, err := HDFCExtractor{}.ParseRows([]rows.LogicalRow{row})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txs))
	}
	if txs[0].ReferenceID != nil {
		t.Errorf("expected nil reference id, got %v — a synthesized ROW- key must never be persisted", *txs[0].ReferenceID)
	}
}

func TestUnionLeavesReferenceIDNilWhenColumnEmpty(t *testing.T) {
	row := rows.LogicalRow{"01-11-25", "", "CASH DEPOSIT", "500.00", "72,500.00"}
	txs, err := UnionExtractor{}.ParseRows([]rows.LogicalRow{row})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txs))
	}
	if txs[0].ReferenceID != nil {
		t.Errorf("expected nil reference id, got %v", *txs[0].ReferenceID)
	}
}

func TestKotakReadsDedicatedReferenceColumn(t *testing.T) {
	row := rows.LogicalRow{"14 Dec 2025", "NEFT CR SALARY", "TXN00912345", "", "50,000.00", "1,50,000.00"}
	txs, err := KotakExtractor{}.ParseRows([]rows.LogicalRow{row})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txs))
	}
	if txs[0].ReferenceID == nil || *txs[0].ReferenceID != "TXN00912345" {
		t.Errorf("unexpected reference id: %v", txs[0].ReferenceID)
	}
	if txs[0].Direction != "credit" {
		t.Errorf("expected credit direction, got %s", txs[0].Direction)
	}
}
