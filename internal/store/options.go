package store

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BaseQuerier struct {
	QueryFn []func(tx *gorm.DB) *gorm.DB
}

func applyQuerier(tx *gorm.DB, fns []func(tx *gorm.DB) *gorm.DB) *gorm.DB {
	for _, fn := range fns {
		tx = fn(tx)
	}
	return tx
}

// textMatch builds a portable case-insensitive substring match over the
// given columns.
func textMatch(tx *gorm.DB, pattern string, columns ...string) *gorm.DB {
	conds := make([]string, 0, len(columns))
	args := make([]interface{}, 0, len(columns))
	for _, col := range columns {
		conds = append(conds, fmt.Sprintf("LOWER(%s) LIKE ?", col))
		args = append(args, "%"+strings.ToLower(pattern)+"%")
	}
	return tx.Where(strings.Join(conds, " OR "), args...)
}

type JobQueryFilter BaseQuerier

func NewJobQueryFilter() *JobQueryFilter {
	return &JobQueryFilter{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (qf *JobQueryFilter) ByStatus(status string) *JobQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("status = ?", status)
	})
	return qf
}

func (qf *JobQueryFilter) ByOwner(ownerID uuid.UUID) *JobQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("owner_id = ?", ownerID)
	})
	return qf
}

func (qf *JobQueryFilter) ByCategory(category string) *JobQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("category = ?", category)
	})
	return qf
}

func (qf *JobQueryFilter) ByWorkingType(workingType string) *JobQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("working_type = ?", workingType)
	})
	return qf
}

func (qf *JobQueryFilter) BySalaryMin(min int64) *JobQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("salary_max >= ?", min)
	})
	return qf
}

func (qf *JobQueryFilter) BySalaryMax(max int64) *JobQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("salary_min <= ?", max)
	})
	return qf
}

func (qf *JobQueryFilter) ByFeatured() *JobQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("featured IS TRUE")
	})
	return qf
}

func (qf *JobQueryFilter) ByUrgent() *JobQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("urgent IS TRUE")
	})
	return qf
}

func (qf *JobQueryFilter) ByRemoteOnly() *JobQueryFilter {
	return qf.ByWorkingType("remote")
}

// ByText matches the pattern against title, company and description.
func (qf *JobQueryFilter) ByText(pattern string) *JobQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return textMatch(tx, pattern, "title", "company", "description")
	})
	return qf
}

// PubliclyVisible restricts the result to active jobs whose owner account is
// active. Applied on public-facing searches only.
func (qf *JobQueryFilter) PubliclyVisible() *JobQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("status = ?", "active").
			Where("owner_id IN (?)", tx.Session(&gorm.Session{NewDB: true}).Table("users").Select("id").Where("account_status = ?", "active"))
	})
	return qf
}

type JobQueryOptions BaseQuerier

func NewJobQueryOptions() *JobQueryOptions {
	return &JobQueryOptions{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

// WithOrderBy orders by the given column with id as tie breaker so that
// pagination stays stable when many rows share a sort key. The column must
// come from the composer's allowlist, it is interpolated into the clause.
func (o *JobQueryOptions) WithOrderBy(column string, desc bool) *JobQueryOptions {
	o.QueryFn = append(o.QueryFn, orderBy(column, desc))
	return o
}

func (o *JobQueryOptions) WithPagination(page, pageSize int) *JobQueryOptions {
	o.QueryFn = append(o.QueryFn, paginate(page, pageSize))
	return o
}

type ApplicationQueryFilter BaseQuerier

func NewApplicationQueryFilter() *ApplicationQueryFilter {
	return &ApplicationQueryFilter{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (qf *ApplicationQueryFilter) ByStatus(status string) *ApplicationQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("status = ?", status)
	})
	return qf
}

func (qf *ApplicationQueryFilter) ByJob(jobID uuid.UUID) *ApplicationQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("job_id = ?", jobID)
	})
	return qf
}

func (qf *ApplicationQueryFilter) ByApplicant(applicantID uuid.UUID) *ApplicationQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("applicant_id = ?", applicantID)
	})
	return qf
}

func (qf *ApplicationQueryFilter) ByOrphaned(orphaned bool) *ApplicationQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		if orphaned {
			return tx.Where("orphaned IS TRUE")
		}
		return tx.Where("orphaned IS NOT TRUE")
	})
	return qf
}

// ByText matches the pattern against cover letter and employer notes.
func (qf *ApplicationQueryFilter) ByText(pattern string) *ApplicationQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return textMatch(tx, pattern, "cover_letter", "notes")
	})
	return qf
}

type ApplicationQueryOptions BaseQuerier

func NewApplicationQueryOptions() *ApplicationQueryOptions {
	return &ApplicationQueryOptions{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (o *ApplicationQueryOptions) WithOrderBy(column string, desc bool) *ApplicationQueryOptions {
	o.QueryFn = append(o.QueryFn, orderBy(column, desc))
	return o
}

func (o *ApplicationQueryOptions) WithPagination(page, pageSize int) *ApplicationQueryOptions {
	o.QueryFn = append(o.QueryFn, paginate(page, pageSize))
	return o
}

type UserQueryFilter BaseQuerier

func NewUserQueryFilter() *UserQueryFilter {
	return &UserQueryFilter{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (qf *UserQueryFilter) ByRole(role string) *UserQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("role = ?", role)
	})
	return qf
}

func (qf *UserQueryFilter) ByAccountStatus(status string) *UserQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("account_status = ?", status)
	})
	return qf
}

// ByText matches the pattern against name, email and company.
func (qf *UserQueryFilter) ByText(pattern string) *UserQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return textMatch(tx, pattern, "name", "email", "company")
	})
	return qf
}

type UserQueryOptions BaseQuerier

func NewUserQueryOptions() *UserQueryOptions {
	return &UserQueryOptions{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (o *UserQueryOptions) WithOrderBy(column string, desc bool) *UserQueryOptions {
	o.QueryFn = append(o.QueryFn, orderBy(column, desc))
	return o
}

func (o *UserQueryOptions) WithPagination(page, pageSize int) *UserQueryOptions {
	o.QueryFn = append(o.QueryFn, paginate(page, pageSize))
	return o
}

func orderBy(column string, desc bool) func(tx *gorm.DB) *gorm.DB {
	direction := "ASC"
	if desc {
		direction = "DESC"
	}
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Order(fmt.Sprintf("%s %s", column, direction)).Order("id ASC")
	}
}

func paginate(page, pageSize int) func(tx *gorm.DB) *gorm.DB {
	if page < 1 {
		page = 1
	}
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}
