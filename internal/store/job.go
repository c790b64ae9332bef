package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jobhive/jobhive/internal/store/model"
	"gorm.io/gorm"
)

// StatusCount is one bucket of a status aggregation.
type StatusCount struct {
	Status string
	Count  int64
}

// Counter columns that may be moved through atomic increments.
const (
	JobCounterViews        = "view_count"
	JobCounterApplications = "application_count"
)

type Job interface {
	List(ctx context.Context, filter *JobQueryFilter, opts *JobQueryOptions) (model.JobList, error)
	Count(ctx context.Context, filter *JobQueryFilter) (int64, error)
	CountByStatus(ctx context.Context, filter *JobQueryFilter) ([]StatusCount, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Job, error)
	Create(ctx context.Context, job model.Job) (*model.Job, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// UpdateStatus writes the new status together with its side-effect fields
	// in a single update, conditioned on the row still holding
	// expectedStatus. Returns ErrStaleStatus when the condition fails.
	UpdateStatus(ctx context.Context, id uuid.UUID, expectedStatus string, fields map[string]interface{}) (*model.Job, error)
	Increment(ctx context.Context, id uuid.UUID, counter string, delta int) error
	InitialMigration() error
}

type JobStore struct {
	db *gorm.DB
}

// Make sure we conform to Job interface
var _ Job = (*JobStore)(nil)

func NewJobStore(db *gorm.DB) Job {
	return &JobStore{db: db}
}

func (s *JobStore) InitialMigration() error {
	return s.db.AutoMigrate(&model.Job{})
}

func (s *JobStore) List(ctx context.Context, filter *JobQueryFilter, opts *JobQueryOptions) (model.JobList, error) {
	var jobs model.JobList
	tx := s.getDB(ctx).Model(&jobs)

	if filter != nil {
		tx = applyQuerier(tx, filter.QueryFn)
	}
	if opts != nil {
		tx = applyQuerier(tx, opts.QueryFn)
	}

	if result := tx.Find(&jobs); result.Error != nil {
		return nil, result.Error
	}
	return jobs, nil
}

func (s *JobStore) Count(ctx context.Context, filter *JobQueryFilter) (int64, error) {
	var count int64
	tx := s.getDB(ctx).Model(&model.Job{})
	if filter != nil {
		tx = applyQuerier(tx, filter.QueryFn)
	}
	if result := tx.Count(&count); result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}

func (s *JobStore) CountByStatus(ctx context.Context, filter *JobQueryFilter) ([]StatusCount, error) {
	var counts []StatusCount
	tx := s.getDB(ctx).Model(&model.Job{})
	if filter != nil {
		tx = applyQuerier(tx, filter.QueryFn)
	}
	result := tx.Select("status, count(*) as count").Group("status").Find(&counts)
	if result.Error != nil {
		return nil, result.Error
	}
	return counts, nil
}

func (s *JobStore) Get(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	var job model.Job
	result := s.getDB(ctx).First(&job, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &job, nil
}

func (s *JobStore) Create(ctx context.Context, job model.Job) (*model.Job, error) {
	result := s.getDB(ctx).Create(&job)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateKey
		}
		return nil, result.Error
	}
	return &job, nil
}

func (s *JobStore) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.getDB(ctx).Unscoped().Delete(&model.Job{}, "id = ?", id)
	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}
	return nil
}

func (s *JobStore) UpdateStatus(ctx context.Context, id uuid.UUID, expectedStatus string, fields map[string]interface{}) (*model.Job, error) {
	result := s.getDB(ctx).Model(&model.Job{}).
		Where("id = ? AND status = ?", id, expectedStatus).
		Updates(fields)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrStaleStatus
	}
	return s.Get(ctx, id)
}

func (s *JobStore) Increment(ctx context.Context, id uuid.UUID, counter string, delta int) error {
	if counter != JobCounterViews && counter != JobCounterApplications {
		return errors.New("unknown counter: " + counter)
	}
	result := s.getDB(ctx).Model(&model.Job{}).
		Where("id = ?", id).
		UpdateColumn(counter, gorm.Expr(counter+" + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *JobStore) getDB(ctx context.Context) *gorm.DB {
	if tx := FromContext(ctx); tx != nil {
		return tx
	}
	return s.db
}
