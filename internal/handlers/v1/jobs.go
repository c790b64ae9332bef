package v1

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/jobhive/jobhive/internal/auth"
	"github.com/jobhive/jobhive/internal/service"
)

type jobTransitionRequest struct {
	Status          string `json:"status" validate:"required"`
	RejectionReason string `json:"rejectionReason,omitempty"`
}

type jobCreateRequest struct {
	Title       string `json:"title" validate:"required"`
	Company     string `json:"company" validate:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Sector      string `json:"sector"`
	WorkingType string `json:"workingType" validate:"omitempty,oneof=full-time part-time contract remote"`
	Location    string `json:"location"`
	SalaryMin   int64  `json:"salaryMin" validate:"gte=0"`
	SalaryMax   int64  `json:"salaryMax" validate:"gte=0"`
	Featured    bool   `json:"featured"`
	Urgent      bool   `json:"urgent"`
	Submit      bool   `json:"submit"`
}

type bulkStatusRequest struct {
	IDs    []uuid.UUID `json:"ids" validate:"required,min=1"`
	Status string      `json:"status" validate:"required"`
}

type searchResponse struct {
	Items        interface{}        `json:"items"`
	Pagination   service.Pagination `json:"pagination"`
	StatusCounts map[string]int64   `json:"statusCounts"`
}

// (GET /api/v1/jobs) public job search: active jobs of active owners only,
// except for admins who see everything.
func (h *ServiceHandler) SearchJobs(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustHaveActor(r.Context())

	params := service.ParseJobSearchParams(r.URL.Query())
	if !actor.IsAdmin() {
		if actor.IsEmployer() {
			// employers browse their own dashboard list
			ownerID := actor.ID
			params.OwnerID = &ownerID
		} else {
			params.Public = true
		}
	}

	result, err := h.searchSrv.SearchJobs(r.Context(), params)
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, searchResponse{Items: result.Items, Pagination: result.Pagination, StatusCounts: result.StatusCounts})
}

// (GET /api/v1/admin/jobs) moderation queue and full listing, admin only.
func (h *ServiceHandler) AdminSearchJobs(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustHaveActor(r.Context())
	if !actor.IsAdmin() {
		renderError(w, r, service.NewErrForbidden("admin only"))
		return
	}

	result, err := h.searchSrv.SearchJobs(r.Context(), service.ParseJobSearchParams(r.URL.Query()))
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, searchResponse{Items: result.Items, Pagination: result.Pagination, StatusCounts: result.StatusCounts})
}

// (POST /api/v1/jobs)
func (h *ServiceHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustHaveActor(r.Context())

	var req jobCreateRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, service.NewErrInvalidArgument("malformed request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		renderError(w, r, service.NewErrInvalidArgument(err.Error()))
		return
	}

	job, err := h.jobSrv.CreateJob(r.Context(), service.JobCreateForm{
		Title:       req.Title,
		Company:     req.Company,
		Description: req.Description,
		Category:    req.Category,
		Sector:      req.Sector,
		WorkingType: req.WorkingType,
		Location:    req.Location,
		SalaryMin:   req.SalaryMin,
		SalaryMax:   req.SalaryMax,
		Featured:    req.Featured,
		Urgent:      req.Urgent,
		Submit:      req.Submit,
	}, actor)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, job)
}

// (GET /api/v1/jobs/{id})
func (h *ServiceHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, service.NewErrInvalidArgument("malformed job id"))
		return
	}

	job, err := h.jobSrv.GetJob(r.Context(), id)
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, job)
}

// (PUT /api/v1/jobs/{id}/status)
func (h *ServiceHandler) TransitionJob(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustHaveActor(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, service.NewErrInvalidArgument("malformed job id"))
		return
	}

	var req jobTransitionRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, service.NewErrInvalidArgument("malformed request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		renderError(w, r, service.NewErrInvalidArgument(err.Error()))
		return
	}

	job, err := h.transitionSrv.TransitionJob(r.Context(), id, req.Status, actor, &service.TransitionExtra{
		RejectionReason: req.RejectionReason,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, job)
}

// (POST /api/v1/jobs/bulk-status)
func (h *ServiceHandler) BulkJobStatus(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustHaveActor(r.Context())

	var req bulkStatusRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, service.NewErrInvalidArgument("malformed request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		renderError(w, r, service.NewErrInvalidArgument(err.Error()))
		return
	}

	result, err := h.transitionSrv.ApplyBulk(r.Context(), service.KindJob, req.IDs, req.Status, actor)
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

// (POST /api/v1/jobs/{id}/view)
func (h *ServiceHandler) RecordJobView(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, service.NewErrInvalidArgument("malformed job id"))
		return
	}

	if err := h.jobSrv.RecordView(r.Context(), id); err != nil {
		renderError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

// (DELETE /api/v1/jobs/{id})
func (h *ServiceHandler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustHaveActor(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, service.NewErrInvalidArgument("malformed job id"))
		return
	}

	if err := h.jobSrv.DeleteJob(r.Context(), id, actor); err != nil {
		renderError(w, r, err)
		return
	}
	render.NoContent(w, r)
}
