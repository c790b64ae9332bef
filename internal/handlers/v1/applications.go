package v1

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/jobhive/jobhive/internal/auth"
	"github.com/jobhive/jobhive/internal/service"
	"github.com/jobhive/jobhive/internal/store/model"
)

type applyRequest struct {
	JobID       uuid.UUID `json:"jobId" validate:"required"`
	CVRef       string    `json:"cvRef"`
	CoverLetter string    `json:"coverLetter"`
}

type applicationTransitionRequest struct {
	Status string  `json:"status" validate:"required"`
	Rating *int    `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
	Notes  *string `json:"notes,omitempty"`
}

type annotateRequest struct {
	Rating *int    `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
	Notes  *string `json:"notes,omitempty"`
}

type scheduleInterviewRequest struct {
	ScheduledAt time.Time `json:"scheduledAt" validate:"required"`
	Location    string    `json:"location"`
	Notes       string    `json:"notes"`
}

// (GET /api/v1/applications) role-scoped listing: admins see everything,
// employers the applications to their own jobs, job seekers their own.
func (h *ServiceHandler) SearchApplications(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustHaveActor(r.Context())

	params := service.ParseApplicationSearchParams(r.URL.Query())
	switch {
	case actor.IsAdmin():
	case actor.IsEmployer():
		if params.JobID == nil {
			renderError(w, r, service.NewErrInvalidArgument("jobId filter is required for employer listings"))
			return
		}
		job, err := h.jobSrv.GetJob(r.Context(), *params.JobID)
		if err != nil {
			renderError(w, r, err)
			return
		}
		if job.OwnerID != actor.ID {
			renderError(w, r, service.NewErrForbidden("job belongs to another employer"))
			return
		}
	default:
		applicantID := actor.ID
		params.ApplicantID = &applicantID
	}

	result, err := h.searchSrv.SearchApplications(r.Context(), params)
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, searchResponse{Items: result.Items, Pagination: result.Pagination, StatusCounts: result.StatusCounts})
}

// (POST /api/v1/applications)
func (h *ServiceHandler) Apply(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustHaveActor(r.Context())

	var req applyRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, service.NewErrInvalidArgument("malformed request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		renderError(w, r, service.NewErrInvalidArgument(err.Error()))
		return
	}

	application, err := h.applicationSrv.Apply(r.Context(), service.ApplicationCreateForm{
		JobID:       req.JobID,
		CVRef:       req.CVRef,
		CoverLetter: req.CoverLetter,
	}, actor)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, application)
}

// (PUT /api/v1/applications/{id}/status)
func (h *ServiceHandler) TransitionApplication(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustHaveActor(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, service.NewErrInvalidArgument("malformed application id"))
		return
	}

	var req applicationTransitionRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, service.NewErrInvalidArgument("malformed request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		renderError(w, r, service.NewErrInvalidArgument(err.Error()))
		return
	}

	application, err := h.transitionSrv.TransitionApplication(r.Context(), id, req.Status, actor, &service.TransitionExtra{
		Rating: req.Rating,
		Notes:  req.Notes,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, application)
}

// (POST /api/v1/applications/bulk-status)
func (h *ServiceHandler) BulkApplicationStatus(w http.ResponseWriter, r *http.Request) {
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

	result, err := h.transitionSrv.ApplyBulk(r.Context(), service.KindApplication, req.IDs, req.Status, actor)
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

// (DELETE /api/v1/applications/{id}) withdrawal by the applicant.
func (h *ServiceHandler) WithdrawApplication(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustHaveActor(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, service.NewErrInvalidArgument("malformed application id"))
		return
	}

	if err := h.applicationSrv.Withdraw(r.Context(), id, actor); err != nil {
		renderError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

// (PUT /api/v1/applications/{id}/annotations)
func (h *ServiceHandler) AnnotateApplication(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustHaveActor(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, service.NewErrInvalidArgument("malformed application id"))
		return
	}

	var req annotateRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, service.NewErrInvalidArgument("malformed request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		renderError(w, r, service.NewErrInvalidArgument(err.Error()))
		return
	}

	application, err := h.applicationSrv.Annotate(r.Context(), id, req.Rating, req.Notes, actor)
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, application)
}

// (POST /api/v1/applications/{id}/interviews)
func (h *ServiceHandler) ScheduleInterview(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustHaveActor(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, service.NewErrInvalidArgument("malformed application id"))
		return
	}

	var req scheduleInterviewRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, service.NewErrInvalidArgument("malformed request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		renderError(w, r, service.NewErrInvalidArgument(err.Error()))
		return
	}

	application, err := h.applicationSrv.ScheduleInterview(r.Context(), id, model.InterviewDetail{
		ScheduledAt: req.ScheduledAt,
		Location:    req.Location,
		Notes:       req.Notes,
	}, actor)
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, application)
}
