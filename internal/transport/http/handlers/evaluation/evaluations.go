package evaluationhandler

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"appraisal/internal/domain/auth"
	"appraisal/internal/domain/evaluation"
	"appraisal/internal/transport/http/api"
	"appraisal/internal/transport/http/middleware"
	"appraisal/internal/transport/http/shared"
)

type submitPayload struct {
	EmployeeID       string                     `json:"employeeId"`
	EvaluationTypeID string                     `json:"evaluationTypeId"`
	Comments         string                     `json:"comments"`
	RecommendationID string                     `json:"recommendationId"`
	TrainingCourseID string                     `json:"trainingCourseId"`
	Scores           map[string]json.RawMessage `json:"scores"`
}

// rawScores keeps each score as submitted text. Strings are unquoted and
// anything else is passed through so the scoring engine can reject it.
func rawScores(in map[string]json.RawMessage) map[string]string {
	out := make(map[string]string, len(in))
	for id, raw := range in {
		raw = bytes.TrimSpace(raw)
		var text string
		if len(raw) > 0 && raw[0] == '"' && json.Unmarshal(raw, &text) == nil {
			out[id] = text
			continue
		}
		out[id] = string(raw)
	}
	return out
}

type availabilityResponse struct {
	Types    []evaluation.Availability `json:"types"`
	Degraded bool                      `json:"degraded"`
}

type evaluationResponse struct {
	Evaluation evaluation.Evaluation `json:"evaluation"`
	Consistent bool                  `json:"consistent"`
}

func (h *Handler) handleAvailability(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "missing user", middleware.GetRequestID(r.Context()))
		return
	}
	asOf, ok := h.asOf(w, r)
	if !ok {
		return
	}
	employeeID := chi.URLParam(r, "employeeID")
	if user.RoleName == auth.RoleEmployee && employeeID != user.UserID {
		writeError(w, r, evaluation.ErrForbidden, "availability_failed")
		return
	}
	types, err := h.Service.AvailableTypesFor(r.Context(), user.UserID, employeeID, sameDepartmentOnly(user), asOf)
	if err != nil && !errors.Is(err, evaluation.ErrEligibilityUnavailable) {
		writeError(w, r, err, "availability_failed")
		return
	}
	if types == nil {
		types = []evaluation.Availability{}
	}
	api.Success(w, availabilityResponse{Types: types, Degraded: err != nil}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleForm(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "missing user", middleware.GetRequestID(r.Context()))
		return
	}
	asOf, ok := h.asOf(w, r)
	if !ok {
		return
	}
	form, err := h.Service.PrepareEvaluation(r.Context(), user.UserID, chi.URLParam(r, "employeeID"), sameDepartmentOnly(user), asOf)
	if err != nil {
		writeError(w, r, err, "form_failed")
		return
	}
	api.Success(w, form, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "missing user", middleware.GetRequestID(r.Context()))
		return
	}
	var payload submitPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	sub := evaluation.Submission{
		EmployeeID:       strings.TrimSpace(payload.EmployeeID),
		EvaluatorID:      user.UserID,
		EvaluationTypeID: strings.TrimSpace(payload.EvaluationTypeID),
		Comments:         payload.Comments,
		RecommendationID: strings.TrimSpace(payload.RecommendationID),
		TrainingCourseID: strings.TrimSpace(payload.TrainingCourseID),
		Scores:           rawScores(payload.Scores),
	}
	saved, err := h.Service.SubmitEvaluation(r.Context(), sub, sameDepartmentOnly(user), h.now())
	if err != nil {
		writeError(w, r, err, "evaluation_submit_failed")
		return
	}
	api.Created(w, saved, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "missing user", middleware.GetRequestID(r.Context()))
		return
	}
	query := r.URL.Query()
	v := shared.NewValidator()
	page := v.Page(query, 50, 200)
	filter := evaluation.ListFilter{
		EmployeeID:       strings.TrimSpace(query.Get("employeeId")),
		EvaluatorID:      strings.TrimSpace(query.Get("evaluatorId")),
		EvaluationTypeID: strings.TrimSpace(query.Get("typeId")),
		RecommendationID: strings.TrimSpace(query.Get("recommendationId")),
		TrainingCourseID: strings.TrimSpace(query.Get("trainingCourseId")),
		Limit:            page.Limit,
		Offset:           page.Offset,
	}
	if raw := query.Get("from"); raw != "" {
		filter.From, _ = v.Date("from", raw)
	}
	if raw := query.Get("to"); raw != "" {
		filter.To, _ = v.Date("to", raw)
	}
	v.DateOrder("from", filter.From, "to", filter.To)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	items, err := h.Service.ListEvaluations(r.Context(), viewerFor(user), filter)
	if err != nil {
		writeError(w, r, err, "evaluation_list_failed")
		return
	}
	api.Success(w, items, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "missing user", middleware.GetRequestID(r.Context()))
		return
	}
	id := chi.URLParam(r, "evaluationID")
	e, err := h.Service.GetEvaluation(r.Context(), viewerFor(user), id)
	if err != nil {
		writeError(w, r, err, "evaluation_get_failed")
		return
	}
	_, consistent, err := h.Service.Recompute(r.Context(), id)
	if err != nil {
		slog.Warn("evaluation recompute failed", "evaluationId", id, "err", err)
		consistent = false
	}
	api.Success(w, evaluationResponse{Evaluation: e, Consistent: consistent}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePDF(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "missing user", middleware.GetRequestID(r.Context()))
		return
	}
	e, err := h.Service.GetEvaluation(r.Context(), viewerFor(user), chi.URLParam(r, "evaluationID"))
	if err != nil {
		writeError(w, r, err, "evaluation_pdf_failed")
		return
	}
	var buf bytes.Buffer
	if err := evaluation.WriteEvaluationPDF(&buf, e); err != nil {
		writeError(w, r, err, "evaluation_pdf_failed")
		return
	}
	api.Attachment(w, "application/pdf", "evaluation-"+e.ID+".pdf", buf.Bytes())
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "missing user", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Service.DeleteEvaluation(r.Context(), user.UserID, chi.URLParam(r, "evaluationID")); err != nil {
		writeError(w, r, err, "evaluation_delete_failed")
		return
	}
	api.NoContent(w)
}
