package pipeline

import (
	"strings"

	"github.com/insightdelivered/statement-pipeline/internal/extractor"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFAccessor is the orchestrator's PDF collaborator: encryption detection,
// decryption, and text extraction. Narrowed to an interface so the
// orchestrator's step ordering can be tested without real PDF files.
type PDFAccessor interface {
	IsEncrypted(path string) (bool, error)
	Unlock(path, password string) (unlockedPath string, err error)
	ExtractPages(path string) ([]string, error)
}

// realPDFAccessor is grounded on pdf_normalizer/pdf_unlock.py: encryption
// detection by attempting to open and checking for a password-related
// error, then unlocking with pikepdf. The Go analog present in the example
// pack is github.com/pdfcpu/pdfcpu (HMB-research-open-accounting,
// aliuyar1234-austrian-business-infrastructure); text extraction reuses
// the teacher's internal/extractor.ExtractText fallback chain unchanged.
type realPDFAccessor struct{}

func NewPDFAccessor() PDFAccessor { return realPDFAccessor{} }

func (realPDFAccessor) IsEncrypted(path string) (bool, error) {
	ctx, err := api.ReadContextFile(path)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "password") ||
			strings.Contains(strings.ToLower(err.Error()), "encrypt") {
			return true, nil
		}
		return false, err
	}
	return ctx.Encrypt != nil, nil
}

func (realPDFAccessor) Unlock(path, password string) (string, error) {
	conf := model.NewDefaultConfiguration()
	conf.UserPW = password
	outPath := strings.TrimSuffix(path, ".pdf") + "_unlocked.pdf"
	if err := api.DecryptFile(path, outPath, conf); err != nil {
		return "", err
	}
	return outPath, nil
}

func (realPDFAccessor) ExtractPages(path string) ([]string, error) {
	return extractor.ExtractText(path)
}
