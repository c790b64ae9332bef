package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jobhive/jobhive/internal/auth"
	"github.com/jobhive/jobhive/internal/store"
	"github.com/jobhive/jobhive/internal/store/model"
	"github.com/thoas/go-funk"
)

type UserService struct {
	store   store.Store
	cascade *CascadeService
}

func NewUserService(store store.Store, cascade *CascadeService) *UserService {
	return &UserService{store: store, cascade: cascade}
}

// SetAccountStatus is the only way an account status changes, and it is
// admin-only. Moving off `active` triggers the (deliberately empty) cascade,
// nothing is deleted, public search simply stops surfacing the account's
// jobs.
func (s *UserService) SetAccountStatus(ctx context.Context, id uuid.UUID, status string, actor auth.Actor) (*model.User, error) {
	if !actor.IsAdmin() {
		return nil, NewErrForbidden("account status changes are admin-only")
	}

	if !funk.ContainsString(model.AccountStatuses(), status) {
		return nil, NewErrInvalidArgument("unknown account status: " + status)
	}

	user, err := s.store.User().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrUserNotFound(id)
		}
		return nil, NewErrStoreUnavailable(err)
	}

	if user.AccountStatus == status {
		return user, nil
	}

	updated, err := s.store.User().UpdateAccountStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrUserNotFound(id)
		}
		return nil, NewErrStoreUnavailable(err)
	}

	if status != model.AccountStatusActive {
		_ = s.cascade.OnAccountDeactivated(ctx, id, user.AccountStatus, status)
	}

	return updated, nil
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.store.User().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrUserNotFound(id)
		}
		return nil, NewErrStoreUnavailable(err)
	}
	return user, nil
}
