package httpapi

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/insightdelivered/statement-pipeline/internal/queue"
)

type uploadResponse struct {
	Message   string `json:"message"`
	Filename  string `json:"filename"`
	Subject   string `json:"subject"`
	FromEmail string `json:"from_email"`
	Date      string `json:"date"`
	TaskID    string `json:"task_id"`
}

// handleUpload streams the multipart file to the staging directory in
// ≤5 MiB reads (UploadChunkKiB), enforcing MaxUploadMiB, then enqueues a
// task and returns immediately — it never parses the PDF itself. Grounded
// on file_parser_api.py's `CHUNK = 1024*1024*5` read loop.
func (h *Handler) handleUpload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "no file uploaded, use form field 'file'")
	}

	subject := c.FormValue("subject")
	fromEmail := c.FormValue("from_email")
	toEmail := c.FormValue("to_email")
	date := c.FormValue("date")
	if fromEmail == "" || toEmail == "" {
		return fiber.NewError(fiber.StatusBadRequest, "from_email and to_email are required")
	}

	if err := os.MkdirAll(h.cfg.StagingDir, 0o755); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "staging directory unavailable")
	}

	stagedName := uuid.NewString() + "_" + filepath.Base(fh.Filename)
	stagedPath := filepath.Join(h.cfg.StagingDir, stagedName)

	if err := h.stageFile(fh, stagedPath); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	task := queue.Task{
		StagedPath:  stagedPath,
		Filename:    fh.Filename,
		Subject:     subject,
		FromEmail:   fromEmail,
		ToEmail:     toEmail,
		SubmittedAt: time.Now(),
	}
	taskID, err := h.queue.Submit(c.Context(), task)
	if err != nil {
		_ = os.Remove(stagedPath)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to enqueue task")
	}

	return c.Status(fiber.StatusAccepted).JSON(uploadResponse{
		Message:   "statement queued for processing",
		Filename:  fh.Filename,
		Subject:   subject,
		FromEmail: fromEmail,
		Date:      date,
		TaskID:    taskID,
	})
}

// stageFile copies the uploaded multipart file to dst in fixed-size reads,
// aborting once the configured cap is exceeded rather than buffering the
// whole body in memory first.
func (h *Handler) stageFile(fh *multipart.FileHeader, dst string) error {
	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("opening uploaded file: %w", err)
	}
	defer src.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating staged file: %w", err)
	}
	defer out.Close()

	chunkSize := h.cfg.UploadChunkKiB * 1024
	if chunkSize <= 0 {
		chunkSize = 5 * 1024 * 1024
	}
	maxBytes := h.cfg.MaxUploadMiB * 1024 * 1024
	buf := make([]byte, chunkSize)
	var total int64

	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			total += int64(n)
			if maxBytes > 0 && total > maxBytes {
				os.Remove(dst)
				return fmt.Errorf("upload exceeds %d MiB limit", h.cfg.MaxUploadMiB)
			}
			if _, writeErr := out.Write(buf[:n]); writeErr != nil {
				os.Remove(dst)
				return fmt.Errorf("writing staged file: %w", writeErr)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			os.Remove(dst)
			return fmt.Errorf("reading upload: %w", readErr)
		}
	}
	return nil
}
