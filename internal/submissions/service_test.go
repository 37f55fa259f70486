package submissions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/submission-service/internal/shared"
)

type mockRepository struct {
	items  map[int64]*Submission
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{items: make(map[int64]*Submission)}
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*Submission, error) {
	s, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *mockRepository) List(ctx context.Context) ([]Submission, error) {
	out := make([]Submission, 0, len(m.items))
	for id := m.nextID; id > 0; id-- {
		if s, ok := m.items[id]; ok {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *mockRepository) Create(ctx context.Context, s Submission) (*Submission, error) {
	m.nextID++
	s.ID = m.nextID
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	m.items[s.ID] = &s
	cp := s
	return &cp, nil
}

func (m *mockRepository) Update(ctx context.Context, id int64, updates map[string]any) (*Submission, error) {
	s, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	for k, v := range updates {
		val := v.(string)
		switch k {
		case "title":
			s.Title = val
		case "description":
			s.Description = val
		case "submitter_email":
			s.SubmitterEmail = val
		case "status":
			s.Status = Status(val)
		}
	}
	cp := *s
	return &cp, nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) (int64, error) {
	if _, ok := m.items[id]; !ok {
		return 0, nil
	}
	delete(m.items, id)
	return 1, nil
}

func newSubmission(t *testing.T, svc *Service) *Submission {
	t.Helper()
	sub, err := svc.Create(context.Background(), CreateSubmissionRequest{
		Title:          "Quarterly report",
		Description:    "Numbers for Q3",
		SubmitterEmail: "ann@example.com",
	})
	require.NoError(t, err)
	return sub
}

func TestCreateDefaultsToPending(t *testing.T) {
	svc := NewService(newMockRepository())
	sub := newSubmission(t, svc)
	assert.Equal(t, StatusPending, sub.Status)
}

func TestCreateRejectsUnknownStatus(t *testing.T) {
	svc := NewService(newMockRepository())
	bogus := Status("archived")
	_, err := svc.Create(context.Background(), CreateSubmissionRequest{Title: "t", Description: "d", SubmitterEmail: "a@b.co", Status: &bogus})
	require.ErrorIs(t, err, shared.ErrValidation)
	assert.Equal(t, "Invalid status value", shared.UserSafeMessage(err))
}

func TestUpdateStatus(t *testing.T) {
	svc := NewService(newMockRepository())
	sub := newSubmission(t, svc)

	updated, err := svc.UpdateStatus(context.Background(), sub.ID, StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, updated.Status)

	_, err = svc.UpdateStatus(context.Background(), sub.ID, "done")
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.UpdateStatus(context.Background(), 99, StatusRejected)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUpdatePartial(t *testing.T) {
	svc := NewService(newMockRepository())
	sub := newSubmission(t, svc)

	title := "Revised report"
	updated, err := svc.Update(context.Background(), sub.ID, UpdateSubmissionRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, "Numbers for Q3", updated.Description)

	same, err := svc.Update(context.Background(), sub.ID, UpdateSubmissionRequest{})
	require.NoError(t, err)
	assert.Equal(t, title, same.Title)

	_, err = svc.Update(context.Background(), 42, UpdateSubmissionRequest{})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteAndGet(t *testing.T) {
	svc := NewService(newMockRepository())
	sub := newSubmission(t, svc)

	got, err := svc.Get(context.Background(), sub.ID)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, got.ID)

	require.NoError(t, svc.Delete(context.Background(), sub.ID))
	assert.ErrorIs(t, svc.Delete(context.Background(), sub.ID), shared.ErrNotFound)
	_, err = svc.Get(context.Background(), sub.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestListNewestFirst(t *testing.T) {
	svc := NewService(newMockRepository())
	first := newSubmission(t, svc)
	second := newSubmission(t, svc)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}
