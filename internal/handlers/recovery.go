package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/matheusdealcantara/tabnews.com.br/internal/apperrors"
	"github.com/matheusdealcantara/tabnews.com.br/internal/handlers/render"
	"github.com/matheusdealcantara/tabnews.com.br/internal/handlers/reqctx"
	"github.com/matheusdealcantara/tabnews.com.br/internal/logger"
	"github.com/matheusdealcantara/tabnews.com.br/internal/models"
	"github.com/matheusdealcantara/tabnews.com.br/internal/service/recovery"
	"github.com/matheusdealcantara/tabnews.com.br/internal/validate"
)

const (
	RecoveryPath = "/api/v1/recovery"

	LocationRecoveryMethod = "CONTROLLER:RECOVERY:METHOD_NOT_ALLOWED"
	LocationRecoveryCaller = "CONTROLLER:RECOVERY:POST_HANDLER:CALLER"

	maxRecoveryBody = 16 << 10
)

type recoveryService interface {
	Request(ctx context.Context, caller models.User, in recovery.Input) (models.RecoveryToken, error)
}

// Token fields safe to show to anybody, id goes only to user mailbox
// Stored and ephemeral tokens must render alike
type RecoveryResponse struct {
	Used      bool        `json:"used"`
	ExpiresAt render.Time `json:"expires_at"`
	CreatedAt render.Time `json:"created_at"`
	UpdatedAt render.Time `json:"updated_at"`
}

var recoverySchema = validate.Schema{Keys: []string{"username", "email"}, OneOf: true}

type RecoveryHandler struct {
	recovery recoveryService
	log      logger.Logger
}

func NewRecovery(s recoveryService, l logger.Logger) *RecoveryHandler {
	return &RecoveryHandler{recovery: s, log: l}
}

func (h *RecoveryHandler) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+RecoveryPath, h.create)
	mux.HandleFunc(RecoveryPath, h.methodNotAllowed)

	return mux
}

func (h *RecoveryHandler) create(w http.ResponseWriter, r *http.Request) {
	caller, ok := reqctx.User(r.Context())
	if !ok {
		h.fail(w, r, apperrors.NewInternalServerError(errors.New("no caller in request context"), LocationRecoveryCaller))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRecoveryBody)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.fail(w, r, apperrors.NewValidationError(
			`"body" enviado deve ser do tipo Object.`, "object", validate.TypeObjectBase, validate.LocationCode,
		))
		return
	}

	values, err := recoverySchema.Validate(body)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	token, err := h.recovery.Request(r.Context(), caller, recovery.Input{
		Username: values["username"],
		Email:    values["email"],
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	render.JSON(w, http.StatusCreated, RecoveryResponse{
		Used:      token.Used,
		ExpiresAt: render.Time(token.ExpiresAt),
		CreatedAt: render.Time(token.CreatedAt),
		UpdatedAt: render.Time(token.UpdatedAt),
	})
}

func (h *RecoveryHandler) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", http.MethodPost)
	h.fail(w, r, apperrors.NewMethodNotAllowedError(r.Method, LocationRecoveryMethod))
}

func (h *RecoveryHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	rendered := render.Error(w, r, err)
	if rendered.StatusCode >= http.StatusInternalServerError {
		h.log.Error("recovery request failed",
			"request_id", rendered.RequestID,
			"error_id", rendered.ErrorID,
			"location", rendered.ErrorLocationCode,
			"error", err,
		)
	}
}
