package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jobhive/jobhive/internal/store/model"
	"gorm.io/gorm"
)

type User interface {
	List(ctx context.Context, filter *UserQueryFilter, opts *UserQueryOptions) (model.UserList, error)
	Count(ctx context.Context, filter *UserQueryFilter) (int64, error)
	CountByAccountStatus(ctx context.Context, filter *UserQueryFilter) ([]StatusCount, error)
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	Create(ctx context.Context, user model.User) (*model.User, error)
	UpdateAccountStatus(ctx context.Context, id uuid.UUID, status string) (*model.User, error)
	InitialMigration() error
}

type UserStore struct {
	db *gorm.DB
}

// Make sure we conform to User interface
var _ User = (*UserStore)(nil)

func NewUserStore(db *gorm.DB) User {
	return &UserStore{db: db}
}

func (s *UserStore) InitialMigration() error {
	return s.db.AutoMigrate(&model.User{})
}

func (s *UserStore) List(ctx context.Context, filter *UserQueryFilter, opts *UserQueryOptions) (model.UserList, error) {
	var users model.UserList
	tx := s.getDB(ctx).Model(&users)

	if filter != nil {
		tx = applyQuerier(tx, filter.QueryFn)
	}
	if opts != nil {
		tx = applyQuerier(tx, opts.QueryFn)
	}

	if result := tx.Find(&users); result.Error != nil {
		return nil, result.Error
	}
	return users, nil
}

func (s *UserStore) Count(ctx context.Context, filter *UserQueryFilter) (int64, error) {
	var count int64
	tx := s.getDB(ctx).Model(&model.User{})
	if filter != nil {
		tx = applyQuerier(tx, filter.QueryFn)
	}
	if result := tx.Count(&count); result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}

func (s *UserStore) CountByAccountStatus(ctx context.Context, filter *UserQueryFilter) ([]StatusCount, error) {
	var counts []StatusCount
	tx := s.getDB(ctx).Model(&model.User{})
	if filter != nil {
		tx = applyQuerier(tx, filter.QueryFn)
	}
	result := tx.Select("account_status as status, count(*) as count").Group("account_status").Find(&counts)
	if result.Error != nil {
		return nil, result.Error
	}
	return counts, nil
}

func (s *UserStore) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	result := s.getDB(ctx).First(&user, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

func (s *UserStore) Create(ctx context.Context, user model.User) (*model.User, error) {
	result := s.getDB(ctx).Create(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateKey
		}
		return nil, result.Error
	}
	return &user, nil
}

func (s *UserStore) UpdateAccountStatus(ctx context.Context, id uuid.UUID, status string) (*model.User, error) {
	result := s.getDB(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("account_status", status)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrRecordNotFound
	}
	return s.Get(ctx, id)
}

func (s *UserStore) getDB(ctx context.Context) *gorm.DB {
	if tx := FromContext(ctx); tx != nil {
		return tx
	}
	return s.db
}
