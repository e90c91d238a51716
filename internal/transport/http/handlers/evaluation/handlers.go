package evaluationhandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"appraisal/internal/domain/auth"
	"appraisal/internal/domain/evaluation"
	"appraisal/internal/transport/http/api"
	"appraisal/internal/transport/http/middleware"
	"appraisal/internal/transport/http/shared"
)

// Service is the evaluation surface the handlers drive.
type Service interface {
	AvailableTypesFor(ctx context.Context, evaluatorID, employeeID string, sameDepartmentOnly bool, asOf time.Time) ([]evaluation.Availability, error)
	PrepareEvaluation(ctx context.Context, evaluatorID, employeeID string, sameDepartmentOnly bool, asOf time.Time) (evaluation.EvaluationForm, error)
	SubmitEvaluation(ctx context.Context, sub evaluation.Submission, sameDepartmentOnly bool, asOf time.Time) (evaluation.Evaluation, error)
	Recompute(ctx context.Context, evaluationID string) (evaluation.ScoreResult, bool, error)
	GetEvaluation(ctx context.Context, viewer evaluation.Viewer, evaluationID string) (evaluation.Evaluation, error)
	ListEvaluations(ctx context.Context, viewer evaluation.Viewer, filter evaluation.ListFilter) ([]evaluation.Evaluation, error)
	DeleteEvaluation(ctx context.Context, actorID, evaluationID string) error

	ListTypes(ctx context.Context) ([]evaluation.EvaluationType, error)
	CreateType(ctx context.Context, actorID string, t evaluation.EvaluationType) (string, error)
	UpdateType(ctx context.Context, actorID string, t evaluation.EvaluationType) error
	DeleteType(ctx context.Context, actorID, typeID string) error

	ListCycles(ctx context.Context) ([]evaluation.Cycle, error)
	CreateCycle(ctx context.Context, actorID string, c evaluation.Cycle) (string, error)
	UpdateCycle(ctx context.Context, actorID string, c evaluation.Cycle) error
	DeleteCycle(ctx context.Context, actorID, cycleID string) error

	ListCriteria(ctx context.Context) ([]evaluation.Criterion, error)
	CreateCriterion(ctx context.Context, actorID string, c evaluation.Criterion) (string, error)
	UpdateCriterion(ctx context.Context, actorID string, c evaluation.Criterion) error
	DeleteCriterion(ctx context.Context, actorID, criterionID string) error
}

var _ Service = (*evaluation.Service)(nil)

type Handler struct {
	Service Service
	Perms   middleware.PermissionStore
	Now     func() time.Time
}

func NewHandler(service Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms, Now: time.Now}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/evaluations", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermCatalogRead, h.Perms)).Get("/types", h.handleListTypes)
		r.With(middleware.RequirePermission(auth.PermCatalogWrite, h.Perms)).Post("/types", h.handleCreateType)
		r.With(middleware.RequirePermission(auth.PermCatalogWrite, h.Perms)).Put("/types/{typeID}", h.handleUpdateType)
		r.With(middleware.RequirePermission(auth.PermCatalogWrite, h.Perms)).Delete("/types/{typeID}", h.handleDeleteType)

		r.With(middleware.RequirePermission(auth.PermCatalogRead, h.Perms)).Get("/cycles", h.handleListCycles)
		r.With(middleware.RequirePermission(auth.PermCatalogWrite, h.Perms)).Post("/cycles", h.handleCreateCycle)
		r.With(middleware.RequirePermission(auth.PermCatalogWrite, h.Perms)).Put("/cycles/{cycleID}", h.handleUpdateCycle)
		r.With(middleware.RequirePermission(auth.PermCatalogWrite, h.Perms)).Delete("/cycles/{cycleID}", h.handleDeleteCycle)

		r.With(middleware.RequirePermission(auth.PermCatalogRead, h.Perms)).Get("/criteria", h.handleListCriteria)
		r.With(middleware.RequirePermission(auth.PermCatalogWrite, h.Perms)).Post("/criteria", h.handleCreateCriterion)
		r.With(middleware.RequirePermission(auth.PermCatalogWrite, h.Perms)).Put("/criteria/{criterionID}", h.handleUpdateCriterion)
		r.With(middleware.RequirePermission(auth.PermCatalogWrite, h.Perms)).Delete("/criteria/{criterionID}", h.handleDeleteCriterion)

		r.With(middleware.RequirePermission(auth.PermEvaluationRead, h.Perms)).Get("/employees/{employeeID}/availability", h.handleAvailability)
		r.With(middleware.RequirePermission(auth.PermEvaluationSubmit, h.Perms)).Get("/employees/{employeeID}/form", h.handleForm)

		r.With(middleware.RequirePermission(auth.PermEvaluationSubmit, h.Perms)).Post("/", h.handleSubmit)
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermEvaluationRead, h.Perms)).Get("/{evaluationID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermEvaluationRead, h.Perms)).Get("/{evaluationID}/pdf", h.handlePDF)
		r.With(middleware.RequirePermission(auth.PermEvaluationDelete, h.Perms)).Delete("/{evaluationID}", h.handleDelete)
	})
}

func (h *Handler) now() time.Time {
	if h.Now == nil {
		return time.Now()
	}
	return h.Now()
}

// asOf reads the optional asOf query parameter, defaulting to today.
func (h *Handler) asOf(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	raw := r.URL.Query().Get("asOf")
	if raw == "" {
		return h.now(), true
	}
	v := shared.NewValidator()
	day, _ := v.Date("asOf", raw)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return time.Time{}, false
	}
	return day, true
}

// viewerFor maps the caller's role to the evaluations it may read.
func viewerFor(user auth.UserContext) evaluation.Viewer {
	scope := evaluation.ViewNone
	switch user.RoleName {
	case auth.RoleEmployee:
		scope = evaluation.ViewOwn
	case auth.RoleManager:
		scope = evaluation.ViewEvaluated
	case auth.RoleHR, auth.RoleSystemAdmin:
		scope = evaluation.ViewAll
	}
	return evaluation.Viewer{UserID: user.UserID, Scope: scope}
}

// sameDepartmentOnly restricts managers to employees of their own department.
func sameDepartmentOnly(user auth.UserContext) bool {
	return user.RoleName == auth.RoleManager
}

func writeError(w http.ResponseWriter, r *http.Request, err error, fallbackCode string) {
	requestID := middleware.GetRequestID(r.Context())

	if shared.WriteValidation(w, requestID, err) {
		return
	}
	var unavailable *evaluation.UnavailableError
	if errors.As(err, &unavailable) {
		api.FailWithDetails(w, http.StatusConflict, "type_unavailable", "evaluation type is not available for this employee",
			map[string]string{"typeId": unavailable.TypeID, "reasonCode": unavailable.ReasonCode}, requestID)
		return
	}
	var cerr *evaluation.ConfigurationError
	if errors.As(err, &cerr) {
		api.Fail(w, http.StatusUnprocessableEntity, "configuration_error", cerr.Reason, requestID)
		return
	}

	switch {
	case errors.Is(err, evaluation.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "record not found", requestID)
	case errors.Is(err, evaluation.ErrNoCriteria):
		api.Fail(w, http.StatusUnprocessableEntity, "no_criteria", "no evaluation criteria apply to this employee", requestID)
	case errors.Is(err, evaluation.ErrAlreadyCompleted):
		api.Fail(w, http.StatusConflict, "already_completed", "this evaluation type was already recorded for the employee", requestID)
	case errors.Is(err, evaluation.ErrInUse):
		api.Fail(w, http.StatusConflict, "in_use", "record is still referenced", requestID)
	case errors.Is(err, evaluation.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "evaluator may not evaluate this employee", requestID)
	case errors.Is(err, evaluation.ErrEligibilityUnavailable):
		api.Fail(w, http.StatusServiceUnavailable, "eligibility_unavailable", "evaluation eligibility could not be determined", requestID)
	default:
		slog.Error("evaluation request failed", "code", fallbackCode, "path", r.URL.Path, "requestId", requestID, "err", err)
		api.Fail(w, http.StatusInternalServerError, fallbackCode, "request failed", requestID)
	}
}
