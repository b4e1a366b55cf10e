package normalize

import "testing"

func TestExtractPaymentMethodUPI(t *testing.T) {
	if got := ExtractPaymentMethod("UPI/DR/531715436912/KANTI RAMULU GA/KKBK/Ph"); got != "UPI" {
		t.Errorf("expected UPI, got %q", got)
	}
}

func TestExtractEntityNameUPI(t *testing.T) {
	got := ExtractEntityName("UPI/DR/531715436912/KANTI RAMULU GA/KKBK/Ph")
	if got != "KANTI RAMULU GA" {
		t.Errorf("expected entity name, got %q", got)
	}
}

func TestDetermineDirection(t *testing.T) {
	dir, ok := DetermineDirection("UPI/DR/531715436912/KANTI RAMULU GA")
	if !ok || dir != "debit" {
		t.Errorf("expected debit direction, got %v ok=%v", dir, ok)
	}
	dir, ok = DetermineDirection("NEFT/CR/some credit")
	if !ok || dir != "credit" {
		t.Errorf("expected credit direction, got %v ok=%v", dir, ok)
	}
}

func TestParseAmountStripsSymbols(t *testing.T) {
	amt, err := ParseAmount("₹72,500.00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if amt.String() != "72500" {
		t.Errorf("expected 72500, got %s", amt.String())
	}
}

func TestParseAmountEmptyIsUnparseable(t *testing.T) {
	if _, err := ParseAmount(""); err != ErrUnparseableAmount {
		t.Errorf("expected ErrUnparseableAmount, got %v", err)
	}
}

func TestParseDateDayFirst(t *testing.T) {
	d, err := ParseDate("01-11-25")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Day() != 1 || int(d.Month()) != 11 {
		t.Errorf("expected day-first parse, got %v", d)
	}
}
