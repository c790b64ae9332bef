package v1

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/jobhive/jobhive/internal/service"
	"github.com/jobhive/jobhive/pkg/requestid"
	"go.uber.org/zap"
)

type ServiceHandler struct {
	transitionSrv  *service.TransitionService
	searchSrv      *service.SearchService
	jobSrv         *service.JobService
	applicationSrv *service.ApplicationService
	userSrv        *service.UserService
	validate       *validator.Validate
}

func NewServiceHandler(
	transitionSrv *service.TransitionService,
	searchSrv *service.SearchService,
	jobSrv *service.JobService,
	applicationSrv *service.ApplicationService,
	userSrv *service.UserService,
) *ServiceHandler {
	return &ServiceHandler{
		transitionSrv:  transitionSrv,
		searchSrv:      searchSrv,
		jobSrv:         jobSrv,
		applicationSrv: applicationSrv,
		userSrv:        userSrv,
		validate:       validator.New(),
	}
}

func (h *ServiceHandler) Routes(router chi.Router) {
	router.Route("/jobs", func(r chi.Router) {
		r.Get("/", h.SearchJobs)
		r.Post("/", h.CreateJob)
		r.Post("/bulk-status", h.BulkJobStatus)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetJob)
			r.Delete("/", h.DeleteJob)
			r.Put("/status", h.TransitionJob)
			r.Post("/view", h.RecordJobView)
		})
	})

	router.Route("/applications", func(r chi.Router) {
		r.Get("/", h.SearchApplications)
		r.Post("/", h.Apply)
		r.Post("/bulk-status", h.BulkApplicationStatus)
		r.Route("/{id}", func(r chi.Router) {
			r.Delete("/", h.WithdrawApplication)
			r.Put("/status", h.TransitionApplication)
			r.Put("/annotations", h.AnnotateApplication)
			r.Post("/interviews", h.ScheduleInterview)
		})
	})

	router.Route("/admin", func(r chi.Router) {
		r.Get("/jobs", h.AdminSearchJobs)
		r.Get("/users", h.SearchUsers)
		r.Put("/users/{id}/status", h.SetAccountStatus)
	})
}

type errorResponse struct {
	Message   string `json:"message"`
	Kind      string `json:"kind"`
	RequestId string `json:"requestId,omitempty"`
}

// renderError maps a service error to an HTTP status. Domain errors are
// expected outcomes; only store failures get logged.
func renderError(w http.ResponseWriter, r *http.Request, err error) {
	kind := service.ErrorKind(err)

	var status int
	switch kind {
	case service.KindNotFound:
		status = http.StatusNotFound
	case service.KindForbidden:
		status = http.StatusForbidden
	case service.KindInvalidTransition:
		status = http.StatusUnprocessableEntity
	case service.KindConflict:
		status = http.StatusConflict
	case service.KindMissingField, service.KindInvalidArgument, service.KindTooManyItems:
		status = http.StatusBadRequest
	default:
		zap.S().Named("handlers").Errorw("store failure", "error", err, "request_id", requestid.FromRequest(r))
		status = http.StatusServiceUnavailable
	}

	render.Status(r, status)
	render.JSON(w, r, errorResponse{
		Message:   err.Error(),
		Kind:      kind,
		RequestId: requestid.FromRequest(r),
	})
}
