package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jobhive/jobhive/internal/store/model"
	"gorm.io/gorm"
)

type Application interface {
	List(ctx context.Context, filter *ApplicationQueryFilter, opts *ApplicationQueryOptions) (model.ApplicationList, error)
	Count(ctx context.Context, filter *ApplicationQueryFilter) (int64, error)
	CountByStatus(ctx context.Context, filter *ApplicationQueryFilter) ([]StatusCount, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Application, error)
	Create(ctx context.Context, application model.Application) (*model.Application, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// UpdateStatus behaves like Job.UpdateStatus: one conditional update,
	// ErrStaleStatus when the optimistic check fails.
	UpdateStatus(ctx context.Context, id uuid.UUID, expectedStatus string, fields map[string]interface{}) (*model.Application, error)
	// UpdateFields writes annotation fields without touching status.
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*model.Application, error)
	// MarkOrphanedByJob flags every application referencing the job and
	// returns the number of rows touched.
	MarkOrphanedByJob(ctx context.Context, jobID uuid.UUID) (int64, error)
	InitialMigration() error
}

type ApplicationStore struct {
	db *gorm.DB
}

// Make sure we conform to Application interface
var _ Application = (*ApplicationStore)(nil)

func NewApplicationStore(db *gorm.DB) Application {
	return &ApplicationStore{db: db}
}

func (s *ApplicationStore) InitialMigration() error {
	return s.db.AutoMigrate(&model.Application{})
}

func (s *ApplicationStore) List(ctx context.Context, filter *ApplicationQueryFilter, opts *ApplicationQueryOptions) (model.ApplicationList, error) {
	var applications model.ApplicationList
	tx := s.getDB(ctx).Model(&applications)

	if filter != nil {
		tx = applyQuerier(tx, filter.QueryFn)
	}
	if opts != nil {
		tx = applyQuerier(tx, opts.QueryFn)
	}

	if result := tx.Find(&applications); result.Error != nil {
		return nil, result.Error
	}
	return applications, nil
}

func (s *ApplicationStore) Count(ctx context.Context, filter *ApplicationQueryFilter) (int64, error) {
	var count int64
	tx := s.getDB(ctx).Model(&model.Application{})
	if filter != nil {
		tx = applyQuerier(tx, filter.QueryFn)
	}
	if result := tx.Count(&count); result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}

func (s *ApplicationStore) CountByStatus(ctx context.Context, filter *ApplicationQueryFilter) ([]StatusCount, error) {
	var counts []StatusCount
	tx := s.getDB(ctx).Model(&model.Application{})
	if filter != nil {
		tx = applyQuerier(tx, filter.QueryFn)
	}
	result := tx.Select("status, count(*) as count").Group("status").Find(&counts)
	if result.Error != nil {
		return nil, result.Error
	}
	return counts, nil
}

func (s *ApplicationStore) Get(ctx context.Context, id uuid.UUID) (*model.Application, error) {
	var application model.Application
	result := s.getDB(ctx).First(&application, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &application, nil
}

func (s *ApplicationStore) Create(ctx context.Context, application model.Application) (*model.Application, error) {
	result := s.getDB(ctx).Create(&application)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateKey
		}
		return nil, result.Error
	}
	return &application, nil
}

func (s *ApplicationStore) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.getDB(ctx).Unscoped().Delete(&model.Application{}, "id = ?", id)
	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}
	return nil
}

func (s *ApplicationStore) UpdateStatus(ctx context.Context, id uuid.UUID, expectedStatus string, fields map[string]interface{}) (*model.Application, error) {
	result := s.getDB(ctx).Model(&model.Application{}).
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

func (s *ApplicationStore) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*model.Application, error) {
	result := s.getDB(ctx).Model(&model.Application{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrRecordNotFound
	}
	return s.Get(ctx, id)
}

func (s *ApplicationStore) MarkOrphanedByJob(ctx context.Context, jobID uuid.UUID) (int64, error) {
	result := s.getDB(ctx).Model(&model.Application{}).
		Where("job_id = ?", jobID).
		UpdateColumn("orphaned", true)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (s *ApplicationStore) getDB(ctx context.Context) *gorm.DB {
	if tx := FromContext(ctx); tx != nil {
		return tx
	}
	return s.db
}
