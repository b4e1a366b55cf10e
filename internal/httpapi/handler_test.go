package httpapi

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestFileCredentialsRequestValidation(t *testing.T) {
	cases := []struct {
		name    string
		req     fileCredentialsRequest
		wantErr bool
	}{
		{"valid", fileCredentialsRequest{UserID: 1, SenderEmail: "a@b.com", Filename: "x.pdf", PDFPassword: "secret"}, false},
		{"missing user id", fileCredentialsRequest{SenderEmail: "a@b.com", Filename: "x.pdf", PDFPassword: "secret"}, true},
		{"bad email", fileCredentialsRequest{UserID: 1, SenderEmail: "not-an-email", Filename: "x.pdf", PDFPassword: "secret"}, true},
		{"missing password", fileCredentialsRequest{UserID: 1, SenderEmail: "a@b.com", Filename: "x.pdf"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validate.Struct(tc.req)
			if (err != nil) != tc.wantErr {
				t.Errorf("validate(%+v) error = %v, wantErr %v", tc.req, err, tc.wantErr)
			}
		})
	}
}

func TestParseFilterParsesDates(t *testing.T) {
	from, to := "2026-01-01", "2026-06-30"
	filter, err := parseFilter(ruleEngineRequest{UserEmail: "a@b.com", FromDate: &from, ToDate: &to})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filter.FromDate == nil || filter.ToDate == nil {
		t.Fatalf("expected both dates parsed, got %+v", filter)
	}
	if filter.FromDate.Year() != 2026 || filter.FromDate.Month() != 1 {
		t.Errorf("unexpected from date: %v", filter.FromDate)
	}
}

func TestParseFilterRejectsBadDate(t *testing.T) {
	bad := "not-a-date"
	if _, err := parseFilter(ruleEngineRequest{UserEmail: "a@b.com", FromDate: &bad}); err == nil {
		t.Error("expected a parse error for an unparseable from_date")
	}
}

func TestHandleFileCredentialsRejectsInvalidBody(t *testing.T) {
	h := &Handler{}
	app := fiber.New()
	app.Post("/v1/file-credentials", h.handleFileCredentials)

	req := httptest.NewRequest("POST", "/v1/file-credentials", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("expected 400 for malformed body, got %d", resp.StatusCode)
	}
}

func TestHandleUploadRejectsMissingRecipient(t *testing.T) {
	h := &Handler{}
	app := fiber.New()
	app.Post("/v1/upload", h.handleUpload)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, _ := w.CreateFormFile("file", "statement.pdf")
	part.Write([]byte("%PDF-1.4 fake"))
	w.Close()

	req := httptest.NewRequest("POST", "/v1/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("expected 400 when from_email/to_email are missing, got %d", resp.StatusCode)
	}
}
