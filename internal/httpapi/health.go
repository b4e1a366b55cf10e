package httpapi

import "github.com/gofiber/fiber/v2"

type healthResponse struct {
	Status string `json:"status"`
	DB     string `json:"db"`
	Queue  string `json:"queue"`
}

// handleHealth reports liveness plus DB/queue reachability, grounded on the
// teacher's api.HandleHealth.
func (h *Handler) handleHealth(c *fiber.Ctx) error {
	resp := healthResponse{Status: "ok", DB: "ok", Queue: "ok"}
	status := fiber.StatusOK

	if err := h.store.Healthy(c.Context()); err != nil {
		resp.DB = "unreachable"
		resp.Status = "degraded"
		status = fiber.StatusServiceUnavailable
	}
	if err := h.queue.Healthy(c.Context()); err != nil {
		resp.Queue = "unreachable"
		resp.Status = "degraded"
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(resp)
}
