package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/matheusdealcantara/tabnews.com.br/internal/apperrors"
	"github.com/matheusdealcantara/tabnews.com.br/internal/handlers/render"
	"github.com/matheusdealcantara/tabnews.com.br/internal/logger"
)

const (
	StatusPath = "/api/v1/status"

	LocationStatusDatabase = "CONTROLLER:STATUS:DATABASE_PING"

	pingTimeout = 2 * time.Second
)

type pinger interface {
	Ping(ctx context.Context) error
}

type StatusResponse struct {
	UpdatedAt    time.Time `json:"updated_at"`
	Dependencies struct {
		Database struct {
			Status string `json:"status"`
		} `json:"database"`
	} `json:"dependencies"`
}

type StatusHandler struct {
	db  pinger
	log logger.Logger
}

func NewStatus(db pinger, l logger.Logger) *StatusHandler {
	return &StatusHandler{db: db, log: l}
}

func (h *StatusHandler) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+StatusPath, h.get)

	return mux
}

func (h *StatusHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		rendered := render.Error(w, r, apperrors.NewInternalServerError(err, LocationStatusDatabase))
		h.log.Error("database is not reachable", "request_id", rendered.RequestID, "error", err)
		return
	}

	var res StatusResponse
	res.UpdatedAt = time.Now().UTC()
	res.Dependencies.Database.Status = "healthy"

	render.JSON(w, http.StatusOK, res)
}
