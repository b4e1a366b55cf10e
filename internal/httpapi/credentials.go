package httpapi

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

type fileCredentialsRequest struct {
	UserID      int64  `json:"user_id" validate:"required"`
	SenderEmail string `json:"sender_email" validate:"required,email"`
	Filename    string `json:"filename" validate:"required"`
	PDFPassword string `json:"pdf_password" validate:"required"`
}

// handleFileCredentials stores an encrypted PDF password for a (user,
// sender, filename) triple, grounded on file_password_api.py's
// set-credential endpoint.
func (h *Handler) handleFileCredentials(c *fiber.Ctx) error {
	var req fileCredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	encrypted, err := h.box.EncryptString(req.PDFPassword)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to encrypt credential")
	}

	conn, err := h.store.AcquireTask(c.Context())
	if err != nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "database unavailable")
	}
	defer conn.Release()

	if err := conn.UpsertStatementCredential(c.Context(), req.UserID, req.SenderEmail, req.Filename, encrypted, true); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to store credential")
	}

	return c.SendStatus(fiber.StatusCreated)
}
