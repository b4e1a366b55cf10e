package httpapi

import "github.com/gofiber/fiber/v2"

// RegisterRoutes mounts the v1 surface onto app, matching the route table
// the source project's api/v1/*.py modules expose.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	v1 := app.Group("/v1")
	v1.Post("/upload", h.handleUpload)
	v1.Post("/file-credentials", h.handleFileCredentials)
	v1.Post("/rule-engine", h.handleRuleEngine)
	v1.Get("/health", h.handleHealth)
}
