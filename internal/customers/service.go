package customers

import (
	"context"
	"errors"
	"fmt"

	"github.com/noah-isme/submission-service/internal/shared"
)

var (
	errNotFound    = shared.NewError(shared.ErrNotFound, "Customer not found")
	errEmailExists = shared.NewError(shared.ErrConflict, "Email already exists")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, req CreateCustomerRequest) (*Customer, error) {
	existing, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("check existing customer: %w", err)
	}
	if existing != nil {
		return nil, errEmailExists
	}

	created, err := s.repo.Create(ctx, Customer{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return nil, errEmailExists.Wrap(err)
		}
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return created, nil
}

func (s *Service) List(ctx context.Context) ([]Customer, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return list, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Customer, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, errNotFound
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

// Update applies the non-nil fields of req. Changing the email to one held by
// another customer is a conflict.
func (s *Service) Update(ctx context.Context, id int64, req UpdateCustomerRequest) (*Customer, error) {
	updates := make(map[string]any)
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}

	var updated *Customer
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		existing, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if len(updates) == 0 {
			updated = existing
			return nil
		}
		if req.Email != nil && *req.Email != existing.Email {
			other, err := repo.GetByEmail(ctx, *req.Email)
			if err != nil && !errors.Is(err, ErrNotFound) {
				return err
			}
			if other != nil {
				return ErrAlreadyExists
			}
		}
		n, err := repo.Update(ctx, id, updates)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		updated, err = repo.Get(ctx, id)
		return err
	})
	switch {
	case err == nil:
		return updated, nil
	case errors.Is(err, ErrNotFound):
		return nil, errNotFound
	case errors.Is(err, ErrAlreadyExists):
		return nil, errEmailExists.Wrap(err)
	default:
		return nil, fmt.Errorf("update customer: %w", err)
	}
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if n == 0 {
		return errNotFound
	}
	return nil
}
