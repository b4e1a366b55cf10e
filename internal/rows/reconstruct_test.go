package rows

import "testing"

func TestReconstructMergesWrappedRows(t *testing.T) {
	table := Table{
		{"Date", "Narration", "Amount", "Balance"},
		{"20 Nov, 2025", "UPI/NISHANT KANTI G/276509066224/Payment from", "+20,000.00", "73,179.26"},
		{"", "Ph", "", ""},
		{"21 Nov, 2025", "UPI/DR/531715436912/KANTI RAMULU GA/KKBK/Ph", "500.00", "72,679.26"},
	}

	got := Reconstruct([]Table{table})
	if len(got) != 2 {
		t.Fatalf("expected 2 logical rows, got %d", len(got))
	}
	if got[0][1] != "UPI/NISHANT KANTI G/276509066224/Payment from Ph" {
		t.Errorf("unexpected merged description: %q", got[0][1])
	}
	if got[1][1] != "UPI/DR/531715436912/KANTI RAMULU GA/KKBK/Ph" {
		t.Errorf("unexpected second row description: %q", got[1][1])
	}
}

func TestReconstructDiscardsTableWithoutDateHeader(t *testing.T) {
	table := Table{
		{"Summary", "Value"},
		{"Opening Balance", "1000.00"},
	}
	got := Reconstruct([]Table{table})
	if len(got) != 0 {
		t.Fatalf("expected no logical rows, got %d", len(got))
	}
}

func TestReconstructAcceptsMonthNameDates(t *testing.T) {
	table := Table{
		{"Date", "Narration", "Debit", "Credit", "Balance"},
		{"14 Dec 2025", "NEFT CR SALARY", "", "50,000.00", "1,50,000.00"},
		{"15 Dec 2025", "ATM WDL", "2,000.00", "", "1,48,000.00"},
	}
	got := Reconstruct([]Table{table})
	if len(got) != 2 {
		t.Fatalf("expected 2 logical rows for month-name dates, got %d", len(got))
	}
}

func TestReconstructExactlyKDataRows(t *testing.T) {
	table := Table{
		{"Date", "Narration", "Amount"},
		{"01/01/25", "first", "10.00"},
		{"cont", "still first", ""},
		{"02/01/25", "second", "20.00"},
		{"03/01/25", "third", "30.00"},
	}
	got := Reconstruct([]Table{table})
	if len(got) != 3 {
		t.Fatalf("expected 3 logical rows for 3 data rows, got %d", len(got))
	}
}
