package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"sbos/internal/admin"
	"sbos/internal/capability"
	dErrors "sbos/pkg/domain-errors"
	"sbos/pkg/platform/httputil"
	"sbos/pkg/requestcontext"
)

//go:generate mockgen -source=handlers_admin.go -destination=mocks/admin-mocks.go -package=mocks AdminService
type AdminService interface {
	Reload(ctx context.Context) error
	SetMonitor(ctx context.Context, enabled bool) admin.MonitorState
	Health(ctx context.Context) admin.Health
	PromoteShadow(ctx context.Context, class string) (*admin.PromoteResult, error)
	RegisterInstance(ctx context.Context, m capability.Manifest) (*admin.RegisterResult, error)
	StopInstance(ctx context.Context, id string)
	ListInstances(ctx context.Context) []admin.InstanceView
	RecentTransactions(ctx context.Context, limit int) (*admin.TransactionsReport, error)
	RecentShadow(ctx context.Context, limit int) (*admin.ShadowReport, error)
	ShadowStats(ctx context.Context) (*admin.ShadowStatsReport, error)
}

// AdminHandler serves health and the /admin surface.
type AdminHandler struct {
	admin  AdminService
	logger *slog.Logger
}

func NewAdminHandler(svc AdminService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{admin: svc, logger: logger}
}

// RegisterPublic mounts unauthenticated endpoints.
func (h *AdminHandler) RegisterPublic(r chi.Router) {
	r.Get("/health", h.handleHealth)
}

// RegisterAdmin mounts the administrative endpoints; callers wrap r with
// admin authentication.
func (h *AdminHandler) RegisterAdmin(r chi.Router) {
	r.Post("/admin/reload", h.handleReload)
	r.Post("/admin/monitor", h.handleMonitor)
	r.Get("/admin/txlog", h.handleTxLog)
	r.Get("/admin/shadow_log", h.handleShadowLog)
	r.Get("/admin/shadow_stats", h.handleShadowStats)
	r.Post("/admin/promote_shadow", h.handlePromote)
	r.Post("/admin/app/register", h.handleRegister)
	r.Post("/admin/app/stop", h.handleStop)
	r.Get("/admin/app/list", h.handleList)
}

type okResponse struct {
	OK bool `json:"ok"`
}

func (h *AdminHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.admin.Health(r.Context()))
}

func (h *AdminHandler) handleReload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.admin.Reload(ctx); err != nil {
		h.logger.ErrorContext(ctx, "admin reload failed",
			"request_id", requestcontext.RequestID(ctx),
			"admin", requestcontext.AdminSubject(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, okResponse{OK: true})
}

func (h *AdminHandler) handleMonitor(w http.ResponseWriter, r *http.Request) {
	enable, err := strconv.ParseBool(r.URL.Query().Get("enable"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "enable must be true or false"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.admin.SetMonitor(r.Context(), enable))
}

func (h *AdminHandler) handleTxLog(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.admin.RecentTransactions(r.Context(), limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *AdminHandler) handleShadowLog(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.admin.RecentShadow(r.Context(), limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *AdminHandler) handleShadowStats(w http.ResponseWriter, r *http.Request) {
	res, err := h.admin.ShadowStats(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *AdminHandler) handlePromote(w http.ResponseWriter, r *http.Request) {
	res, err := h.admin.PromoteShadow(r.Context(), r.URL.Query().Get("resource_class"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *AdminHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	m, err := httputil.DecodeJSON[capability.Manifest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.admin.RegisterInstance(ctx, *m)
	if err != nil {
		h.logger.WarnContext(ctx, "registration rejected",
			"request_id", requestcontext.RequestID(ctx),
			"app_id", m.AppID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *AdminHandler) handleStop(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("aid")
	if id == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "aid is required"))
		return
	}
	h.admin.StopInstance(r.Context(), id)
	httputil.WriteJSON(w, http.StatusOK, okResponse{OK: true})
}

func (h *AdminHandler) handleList(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.admin.ListInstances(r.Context()))
}

func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "limit must be a non-negative integer")
	}
	return n, nil
}
