package queue

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTaskRoundTripsThroughJSON(t *testing.T) {
	orig := Task{
		ID:          "11111111-1111-1111-1111-111111111111",
		StagedPath:  "/staging/abc.pdf",
		Filename:    "abc.pdf",
		Subject:     "Your statement",
		FromEmail:   "statements@sbi.co.in",
		ToEmail:     "user@example.com",
		SubmittedAt: time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC),
	}
	payload, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded Task
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded != orig {
		t.Errorf("round trip mismatch: got %+v, want %+v", decoded, orig)
	}
}
