package service

import (
	"context"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/jobhive/jobhive/internal/store"
	"github.com/jobhive/jobhive/internal/store/model"
)

// Sort is a named field plus direction. Unsupported fields fall back to the
// default sort (createdAt desc) rather than failing the request.
type Sort struct {
	Field string
	Desc  bool
}

// Pagination metadata returned with every search page.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalCount int64 `json:"totalCount"`
	TotalPages int   `json:"totalPages"`
}

type JobSearchParams struct {
	Status      string
	Category    string
	WorkingType string
	Text        string
	SalaryMin   *int64
	SalaryMax   *int64
	RemoteOnly  bool
	Featured    bool
	Urgent      bool
	OwnerID     *uuid.UUID
	// Public restricts results to active jobs with active owners. Admin
	// queries leave it unset.
	Public   bool
	Sort     Sort
	Page     int
	PageSize int
}

type ApplicationSearchParams struct {
	Status      string
	JobID       *uuid.UUID
	ApplicantID *uuid.UUID
	Text        string
	Sort        Sort
	Page        int
	PageSize    int
}

type UserSearchParams struct {
	Role          string
	AccountStatus string
	Text          string
	Sort          Sort
	Page          int
	PageSize      int
}

type JobSearchResult struct {
	Items        model.JobList
	Pagination   Pagination
	StatusCounts map[string]int64
}

type ApplicationSearchResult struct {
	Items        model.ApplicationList
	Pagination   Pagination
	StatusCounts map[string]int64
}

type UserSearchResult struct {
	Items        model.UserList
	Pagination   Pagination
	StatusCounts map[string]int64
}

// Sortable column allowlists. Anything else falls back to created_at desc.
var (
	jobSortColumns = map[string]string{
		"createdAt":        "created_at",
		"updatedAt":        "updated_at",
		"title":            "title",
		"salaryMin":        "salary_min",
		"salaryMax":        "salary_max",
		"viewCount":        "view_count",
		"applicationCount": "application_count",
	}
	applicationSortColumns = map[string]string{
		"createdAt": "created_at",
		"updatedAt": "updated_at",
		"rating":    "rating",
		"status":    "status",
	}
	userSortColumns = map[string]string{
		"createdAt": "created_at",
		"name":      "name",
		"email":     "email",
	}
)

type SearchService struct {
	store           store.Store
	defaultPageSize int
	maxPageSize     int
}

func NewSearchService(store store.Store, defaultPageSize, maxPageSize int) *SearchService {
	return &SearchService{store: store, defaultPageSize: defaultPageSize, maxPageSize: maxPageSize}
}

// SearchJobs returns one page of jobs plus pagination metadata and
// status-bucketed counts. The counts are computed over the same filtered set
// with the status filter removed, so stat cards always agree with the list.
func (s *SearchService) SearchJobs(ctx context.Context, params JobSearchParams) (*JobSearchResult, error) {
	filter := buildJobFilter(params, true)

	totalCount, err := s.store.Job().Count(ctx, filter)
	if err != nil {
		return nil, NewErrStoreUnavailable(err)
	}

	page, pageSize := s.clampPage(params.Page, params.PageSize)
	column, desc := sortColumn(jobSortColumns, params.Sort)
	opts := store.NewJobQueryOptions().
		WithOrderBy(column, desc).
		WithPagination(page, pageSize)

	items, err := s.store.Job().List(ctx, filter, opts)
	if err != nil {
		return nil, NewErrStoreUnavailable(err)
	}

	counts, err := s.store.Job().CountByStatus(ctx, buildJobFilter(params, false))
	if err != nil {
		return nil, NewErrStoreUnavailable(err)
	}

	return &JobSearchResult{
		Items:        items,
		Pagination:   paginationFor(page, pageSize, totalCount),
		StatusCounts: bucketize(counts, model.JobStatuses()),
	}, nil
}

func (s *SearchService) SearchApplications(ctx context.Context, params ApplicationSearchParams) (*ApplicationSearchResult, error) {
	filter := buildApplicationFilter(params, true)

	totalCount, err := s.store.Application().Count(ctx, filter)
	if err != nil {
		return nil, NewErrStoreUnavailable(err)
	}

	page, pageSize := s.clampPage(params.Page, params.PageSize)
	column, desc := sortColumn(applicationSortColumns, params.Sort)
	opts := store.NewApplicationQueryOptions().
		WithOrderBy(column, desc).
		WithPagination(page, pageSize)

	items, err := s.store.Application().List(ctx, filter, opts)
	if err != nil {
		return nil, NewErrStoreUnavailable(err)
	}

	counts, err := s.store.Application().CountByStatus(ctx, buildApplicationFilter(params, false))
	if err != nil {
		return nil, NewErrStoreUnavailable(err)
	}

	return &ApplicationSearchResult{
		Items:        items,
		Pagination:   paginationFor(page, pageSize, totalCount),
		StatusCounts: bucketize(counts, model.ApplicationStatuses()),
	}, nil
}

func (s *SearchService) SearchUsers(ctx context.Context, params UserSearchParams) (*UserSearchResult, error) {
	filter := buildUserFilter(params, true)

	totalCount, err := s.store.User().Count(ctx, filter)
	if err != nil {
		return nil, NewErrStoreUnavailable(err)
	}

	page, pageSize := s.clampPage(params.Page, params.PageSize)
	column, desc := sortColumn(userSortColumns, params.Sort)
	opts := store.NewUserQueryOptions().
		WithOrderBy(column, desc).
		WithPagination(page, pageSize)

	items, err := s.store.User().List(ctx, filter, opts)
	if err != nil {
		return nil, NewErrStoreUnavailable(err)
	}

	counts, err := s.store.User().CountByAccountStatus(ctx, buildUserFilter(params, false))
	if err != nil {
		return nil, NewErrStoreUnavailable(err)
	}

	return &UserSearchResult{
		Items:        items,
		Pagination:   paginationFor(page, pageSize, totalCount),
		StatusCounts: bucketize(counts, model.AccountStatuses()),
	}, nil
}

func buildJobFilter(params JobSearchParams, withStatus bool) *store.JobQueryFilter {
	filter := store.NewJobQueryFilter()
	if withStatus && params.Status != "" {
		filter = filter.ByStatus(params.Status)
	}
	if params.Category != "" {
		filter = filter.ByCategory(params.Category)
	}
	if params.WorkingType != "" {
		filter = filter.ByWorkingType(params.WorkingType)
	}
	if params.Text != "" {
		filter = filter.ByText(params.Text)
	}
	if params.SalaryMin != nil {
		filter = filter.BySalaryMin(*params.SalaryMin)
	}
	if params.SalaryMax != nil {
		filter = filter.BySalaryMax(*params.SalaryMax)
	}
	if params.RemoteOnly {
		filter = filter.ByRemoteOnly()
	}
	if params.Featured {
		filter = filter.ByFeatured()
	}
	if params.Urgent {
		filter = filter.ByUrgent()
	}
	if params.OwnerID != nil {
		filter = filter.ByOwner(*params.OwnerID)
	}
	if params.Public {
		filter = filter.PubliclyVisible()
	}
	return filter
}

func buildApplicationFilter(params ApplicationSearchParams, withStatus bool) *store.ApplicationQueryFilter {
	filter := store.NewApplicationQueryFilter()
	if withStatus && params.Status != "" {
		filter = filter.ByStatus(params.Status)
	}
	if params.JobID != nil {
		filter = filter.ByJob(*params.JobID)
	}
	if params.ApplicantID != nil {
		filter = filter.ByApplicant(*params.ApplicantID)
	}
	if params.Text != "" {
		filter = filter.ByText(params.Text)
	}
	return filter
}

func buildUserFilter(params UserSearchParams, withStatus bool) *store.UserQueryFilter {
	filter := store.NewUserQueryFilter()
	if params.Role != "" {
		filter = filter.ByRole(params.Role)
	}
	if withStatus && params.AccountStatus != "" {
		filter = filter.ByAccountStatus(params.AccountStatus)
	}
	if params.Text != "" {
		filter = filter.ByText(params.Text)
	}
	return filter
}

func (s *SearchService) clampPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = s.defaultPageSize
	}
	if pageSize > s.maxPageSize {
		pageSize = s.maxPageSize
	}
	return page, pageSize
}

func sortColumn(allowed map[string]string, sort Sort) (string, bool) {
	if column, ok := allowed[sort.Field]; ok {
		return column, sort.Desc
	}
	return "created_at", true
}

func paginationFor(page, pageSize int, totalCount int64) Pagination {
	totalPages := int((totalCount + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}

// bucketize turns the store's status counts into a dense map: buckets with
// no rows are present with a zero so stat cards render consistently.
func bucketize(counts []store.StatusCount, statuses []string) map[string]int64 {
	out := make(map[string]int64, len(statuses))
	for _, status := range statuses {
		out[status] = 0
	}
	for _, c := range counts {
		out[c.Status] = c.Count
	}
	return out
}

// ParseJobSearchParams reads the declared job filter keys from query
// parameters. Unknown keys and unparsable values are ignored, list views
// degrade gracefully when the UI grows filters the backend does not know.
func ParseJobSearchParams(values url.Values) JobSearchParams {
	params := JobSearchParams{
		Status:      values.Get("status"),
		Category:    values.Get("category"),
		WorkingType: values.Get("workingType"),
		Text:        values.Get("textSearch"),
		RemoteOnly:  parseBool(values.Get("remoteOnly")),
		Featured:    parseBool(values.Get("featured")),
		Urgent:      parseBool(values.Get("urgent")),
		Sort:        parseSort(values),
		Page:        parseInt(values.Get("page")),
		PageSize:    parseInt(values.Get("pageSize")),
	}
	if v, err := strconv.ParseInt(values.Get("salaryMin"), 10, 64); err == nil {
		params.SalaryMin = &v
	}
	if v, err := strconv.ParseInt(values.Get("salaryMax"), 10, 64); err == nil {
		params.SalaryMax = &v
	}
	if id, err := uuid.Parse(values.Get("ownerId")); err == nil {
		params.OwnerID = &id
	}
	return params
}

func ParseApplicationSearchParams(values url.Values) ApplicationSearchParams {
	params := ApplicationSearchParams{
		Status:   values.Get("status"),
		Text:     values.Get("textSearch"),
		Sort:     parseSort(values),
		Page:     parseInt(values.Get("page")),
		PageSize: parseInt(values.Get("pageSize")),
	}
	if id, err := uuid.Parse(values.Get("jobId")); err == nil {
		params.JobID = &id
	}
	return params
}

func ParseUserSearchParams(values url.Values) UserSearchParams {
	return UserSearchParams{
		Role:          values.Get("role"),
		AccountStatus: values.Get("accountStatus"),
		Text:          values.Get("textSearch"),
		Sort:          parseSort(values),
		Page:          parseInt(values.Get("page")),
		PageSize:      parseInt(values.Get("pageSize")),
	}
}

func parseSort(values url.Values) Sort {
	return Sort{
		Field: values.Get("sortBy"),
		Desc:  values.Get("sortDir") != "asc",
	}
}

func parseInt(raw string) int {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return v
}

func parseBool(raw string) bool {
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return v
}
