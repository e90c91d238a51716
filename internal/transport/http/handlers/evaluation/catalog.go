package evaluationhandler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"appraisal/internal/domain/evaluation"
	"appraisal/internal/transport/http/api"
	"appraisal/internal/transport/http/middleware"
	"appraisal/internal/transport/http/shared"
)

type typePayload struct {
	TypeName           string `json:"typeName"`
	DisplayName        string `json:"displayName"`
	IsRepeatable       bool   `json:"isRepeatable"`
	PrerequisiteTypeID string `json:"prerequisiteTypeId"`
	SortOrder          *int   `json:"sortOrder"`
}

func (p typePayload) toType(id string) evaluation.EvaluationType {
	sortOrder := evaluation.DefaultTypeSortOrder
	if p.SortOrder != nil {
		sortOrder = *p.SortOrder
	}
	return evaluation.EvaluationType{
		ID:                 id,
		TypeName:           strings.TrimSpace(p.TypeName),
		DisplayName:        strings.TrimSpace(p.DisplayName),
		IsRepeatable:       p.IsRepeatable,
		PrerequisiteTypeID: strings.TrimSpace(p.PrerequisiteTypeID),
		SortOrder:          sortOrder,
	}
}

type cyclePayload struct {
	Name             string   `json:"name"`
	EvaluationTypeID string   `json:"evaluationTypeId"`
	StartDate        string   `json:"startDate"`
	EndDate          string   `json:"endDate"`
	IsEnabled        *bool    `json:"isEnabled"`
	DepartmentIDs    []string `json:"departmentIds"`
}

// toCycle parses the payload dates, collecting issues on v.
func (p cyclePayload) toCycle(id string, v *shared.Validator) evaluation.Cycle {
	start, _ := v.Date("startDate", p.StartDate)
	end, _ := v.Date("endDate", p.EndDate)
	v.DateOrder("startDate", start, "endDate", end)
	enabled := true
	if p.IsEnabled != nil {
		enabled = *p.IsEnabled
	}
	departments := make([]string, 0, len(p.DepartmentIDs))
	for _, dept := range p.DepartmentIDs {
		departments = append(departments, strings.TrimSpace(dept))
	}
	return evaluation.Cycle{
		ID:               id,
		Name:             strings.TrimSpace(p.Name),
		EvaluationTypeID: strings.TrimSpace(p.EvaluationTypeID),
		StartDate:        start,
		EndDate:          end,
		IsEnabled:        enabled,
		DepartmentIDs:    departments,
	}
}

type criterionPayload struct {
	Name                  string  `json:"name"`
	Weight                float64 `json:"weight"`
	MaxScore              int     `json:"maxScore"`
	AppliesToDepartmentID string  `json:"appliesToDepartmentId"`
	EmployeeClass         string  `json:"employeeClass"`
}

func (p criterionPayload) toCriterion(id string) evaluation.Criterion {
	return evaluation.Criterion{
		ID:                    id,
		Name:                  strings.TrimSpace(p.Name),
		Weight:                p.Weight,
		MaxScore:              p.MaxScore,
		AppliesToDepartmentID: strings.TrimSpace(p.AppliesToDepartmentID),
		EmployeeClass:         p.EmployeeClass,
	}
}

type cycleResponse struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	EvaluationTypeID string   `json:"evaluationTypeId"`
	StartDate        string   `json:"startDate"`
	EndDate          string   `json:"endDate"`
	IsEnabled        bool     `json:"isEnabled"`
	DepartmentIDs    []string `json:"departmentIds"`
}

func toCycleResponses(cycles []evaluation.Cycle) []cycleResponse {
	out := make([]cycleResponse, 0, len(cycles))
	for _, c := range cycles {
		departments := c.DepartmentIDs
		if departments == nil {
			departments = []string{}
		}
		out = append(out, cycleResponse{
			ID:               c.ID,
			Name:             c.Name,
			EvaluationTypeID: c.EvaluationTypeID,
			StartDate:        c.StartDate.Format(time.DateOnly),
			EndDate:          c.EndDate.Format(time.DateOnly),
			IsEnabled:        c.IsEnabled,
			DepartmentIDs:    departments,
		})
	}
	return out
}

func (h *Handler) handleListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.Service.ListTypes(r.Context())
	if err != nil {
		writeError(w, r, err, "type_list_failed")
		return
	}
	api.Success(w, types, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateType(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "missing user", middleware.GetRequestID(r.Context()))
		return
	}
	var payload typePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	id, err := h.Service.CreateType(r.Context(), user.UserID, payload.toType(""))
	if err != nil {
		writeError(w, r, err, "type_create_failed")
		return
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateType(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "missing user", middleware.GetRequestID(r.Context()))
		return
	}
	var payload typePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	typeID := chi.URLParam(r, "typeID")
	if err := h.Service.UpdateType(r.Context(), user.UserID, payload.toType(typeID)); err != nil {
		writeError(w, r, err, "type_update_failed")
		return
	}
	api.Success(w, map[string]string{"id": typeID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteType(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "missing user", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Service.DeleteType(r.Context(), user.UserID, chi.URLParam(r, "typeID")); err != nil {
		writeError(w, r, err, "type_delete_failed")
		return
	}
	api.NoContent(w)
}

func (h *Handler) handleListCycles(w http.ResponseWriter, r *http.Request) {
	cycles, err := h.Service.ListCycles(r.Context())
	if err != nil {
		writeError(w, r, err, "cycle_list_failed")
		return
	}
	api.Success(w, toCycleResponses(cycles), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateCycle(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "missing user", middleware.GetRequestID(r.Context()))
		return
	}
	var payload cyclePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	cycle := payload.toCycle("", v)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	id, err := h.Service.CreateCycle(r.Context(), user.UserID, cycle)
	if err != nil {
		writeError(w, r, err, "cycle_create_failed")
		return
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateCycle(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "missing user", middleware.GetRequestID(r.Context()))
		return
	}
	var payload cyclePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	cycleID := chi.URLParam(r, "cycleID")
	v := shared.NewValidator()
	cycle := payload.toCycle(cycleID, v)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	if err := h.Service.UpdateCycle(r.Context(), user.UserID, cycle); err != nil {
		writeError(w, r, err, "cycle_update_failed")
		return
	}
	api.Success(w, map[string]string{"id": cycleID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteCycle(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "missing user", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Service.DeleteCycle(r.Context(), user.UserID, chi.URLParam(r, "cycleID")); err != nil {
		writeError(w, r, err, "cycle_delete_failed")
		return
	}
	api.NoContent(w)
}

func (h *Handler) handleListCriteria(w http.ResponseWriter, r *http.Request) {
	criteria, err := h.Service.ListCriteria(r.Context())
	if err != nil {
		writeError(w, r, err, "criteria_list_failed")
		return
	}
	api.Success(w, criteria, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateCriterion(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "missing user", middleware.GetRequestID(r.Context()))
		return
	}
	var payload criterionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	id, err := h.Service.CreateCriterion(r.Context(), user.UserID, payload.toCriterion(""))
	if err != nil {
		writeError(w, r, err, "criterion_create_failed")
		return
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateCriterion(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "missing user", middleware.GetRequestID(r.Context()))
		return
	}
	var payload criterionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	criterionID := chi.URLParam(r, "criterionID")
	if err := h.Service.UpdateCriterion(r.Context(), user.UserID, payload.toCriterion(criterionID)); err != nil {
		writeError(w, r, err, "criterion_update_failed")
		return
	}
	api.Success(w, map[string]string{"id": criterionID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteCriterion(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "missing user", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Service.DeleteCriterion(r.Context(), user.UserID, chi.URLParam(r, "criterionID")); err != nil {
		writeError(w, r, err, "criterion_delete_failed")
		return
	}
	api.NoContent(w)
}
