package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"sbos/internal/guard"
	dErrors "sbos/pkg/domain-errors"
	"sbos/pkg/platform/httputil"
	"sbos/pkg/requestcontext"
)

// AppKeyHeader carries an application instance's bearer key.
const AppKeyHeader = "X-App-Key"

//go:generate mockgen -source=handlers_app.go -destination=mocks/app-mocks.go -package=mocks GuardService
type GuardService interface {
	Write(ctx context.Context, key string, req guard.WriteRequest) (*guard.WriteResult, error)
	Read(ctx context.Context, key, label string) (*guard.ReadResult, error)
	Capabilities(ctx context.Context, key string) (*guard.CapabilitiesResult, error)
}

// AppHandler serves the application-facing endpoints.
type AppHandler struct {
	guard    GuardService
	validate *validator.Validate
	logger   *slog.Logger
}

func NewAppHandler(guard GuardService, logger *slog.Logger) *AppHandler {
	return &AppHandler{guard: guard, validate: validator.New(), logger: logger}
}

func (h *AppHandler) Register(r chi.Router) {
	r.Get("/capabilities", h.handleCapabilities)
	r.Get("/read", h.handleRead)
	r.Post("/write", h.handleWrite)
}

func (h *AppHandler) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	res, err := h.guard.Capabilities(r.Context(), r.Header.Get(AppKeyHeader))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *AppHandler) handleRead(w http.ResponseWriter, r *http.Request) {
	label := r.URL.Query().Get("point_label")
	if label == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "point_label is required"))
		return
	}
	res, err := h.guard.Read(r.Context(), r.Header.Get(AppKeyHeader), label)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *AppHandler) handleWrite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := httputil.DecodeJSON[guard.WriteRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeValidation, "point_label is required"))
		return
	}
	res, err := h.guard.Write(ctx, r.Header.Get(AppKeyHeader), *req)
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logger.ErrorContext(ctx, "write pipeline failed",
				"request_id", requestcontext.RequestID(ctx),
				"point_label", req.PointLabel,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}
