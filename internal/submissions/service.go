package submissions

import (
	"context"
	"errors"
	"fmt"

	"github.com/noah-isme/submission-service/internal/shared"
)

var (
	errNotFound      = shared.NewError(shared.ErrNotFound, "Submission not found")
	errInvalidStatus = shared.NewError(shared.ErrValidation, "Invalid status value")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, req CreateSubmissionRequest) (*Submission, error) {
	status := StatusPending
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, errInvalidStatus
		}
		status = *req.Status
	}
	created, err := s.repo.Create(ctx, Submission{
		Title:          req.Title,
		Description:    req.Description,
		SubmitterEmail: req.SubmitterEmail,
		Status:         status,
	})
	if err != nil {
		return nil, fmt.Errorf("create submission: %w", err)
	}
	return created, nil
}

func (s *Service) List(ctx context.Context) ([]Submission, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return list, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Submission, error) {
	sub, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, s.mapErr("get submission", err)
	}
	return sub, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateSubmissionRequest) (*Submission, error) {
	updates := make(map[string]any)
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.SubmitterEmail != nil {
		updates["submitter_email"] = *req.SubmitterEmail
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, errInvalidStatus
		}
		updates["status"] = string(*req.Status)
	}
	if len(updates) == 0 {
		return s.Get(ctx, id)
	}
	sub, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, s.mapErr("update submission", err)
	}
	return sub, nil
}

// UpdateStatus moves a submission to status.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status Status) (*Submission, error) {
	if !status.Valid() {
		return nil, errInvalidStatus
	}
	sub, err := s.repo.Update(ctx, id, map[string]any{"status": string(status)})
	if err != nil {
		return nil, s.mapErr("update submission status", err)
	}
	return sub, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}
	if n == 0 {
		return errNotFound
	}
	return nil
}

func (s *Service) mapErr(op string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return errNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
