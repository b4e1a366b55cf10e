// Package httpapi is the HTTP surface: upload intake, stored-credential
// management, on-demand rule re-runs, and the liveness probe. Grounded on
// api/v1/{file_parser_api,file_password_api,rule_engine_api}.py, wired to
// fiber the way main.go::startServer wires the teacher's own routes.
package httpapi

import (
	"github.com/rs/zerolog"

	"github.com/insightdelivered/statement-pipeline/internal/config"
	"github.com/insightdelivered/statement-pipeline/internal/crypto"
	"github.com/insightdelivered/statement-pipeline/internal/queue"
	"github.com/insightdelivered/statement-pipeline/internal/storage"
)

// Handler holds every collaborator the routes need.
type Handler struct {
	store *storage.Store
	queue *queue.Queue
	box   *crypto.Box
	cfg   *config.Config
	log   zerolog.Logger
}

func New(store *storage.Store, q *queue.Queue, box *crypto.Box, cfg *config.Config, log zerolog.Logger) *Handler {
	return &Handler{store: store, queue: q, box: box, cfg: cfg, log: log}
}
