package v1

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/jobhive/jobhive/internal/auth"
	"github.com/jobhive/jobhive/internal/service"
)

type accountStatusRequest struct {
	AccountStatus string `json:"accountStatus" validate:"required,oneof=active inactive banned"`
}

// (GET /api/v1/admin/users)
func (h *ServiceHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustHaveActor(r.Context())
	if !actor.IsAdmin() {
		renderError(w, r, service.NewErrForbidden("admin only"))
		return
	}

	result, err := h.searchSrv.SearchUsers(r.Context(), service.ParseUserSearchParams(r.URL.Query()))
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, searchResponse{Items: result.Items, Pagination: result.Pagination, StatusCounts: result.StatusCounts})
}

// (PUT /api/v1/admin/users/{id}/status)
func (h *ServiceHandler) SetAccountStatus(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustHaveActor(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, service.NewErrInvalidArgument("malformed user id"))
		return
	}

	var req accountStatusRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, service.NewErrInvalidArgument("malformed request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		renderError(w, r, service.NewErrInvalidArgument(err.Error()))
		return
	}

	user, err := h.userSrv.SetAccountStatus(r.Context(), id, req.AccountStatus, actor)
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, user)
}
