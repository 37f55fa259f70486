package submissions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("record not found")

type Repository interface {
	Get(ctx context.Context, id int64) (*Submission, error)
	List(ctx context.Context) ([]Submission, error)
	Create(ctx context.Context, s Submission) (*Submission, error)
	Update(ctx context.Context, id int64, updates map[string]any) (*Submission, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db dbtx
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const columns = `id, title, description, submitter_email, status, created_at, updated_at`

var updatable = []string{"title", "description", "submitter_email", "status"}

func (r *repository) Get(ctx context.Context, id int64) (*Submission, error) {
	return r.one(r.db.QueryRow(ctx, `SELECT `+columns+` FROM submissions WHERE id = $1`, id))
}

func (r *repository) List(ctx context.Context) ([]Submission, error) {
	rows, err := r.db.Query(ctx, `SELECT `+columns+` FROM submissions ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Submission, 0)
	for rows.Next() {
		var s Submission
		if err := scan(rows, &s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repository) Create(ctx context.Context, s Submission) (*Submission, error) {
	return r.one(r.db.QueryRow(ctx, `
		INSERT INTO submissions (title, description, submitter_email, status)
		VALUES ($1, $2, $3, $4)
		RETURNING `+columns,
		s.Title, s.Description, s.SubmitterEmail, string(s.Status),
	))
}

// Update applies updates and returns the stored row, or ErrNotFound.
func (r *repository) Update(ctx context.Context, id int64, updates map[string]any) (*Submission, error) {
	sets := []string{"updated_at = NOW()"}
	var args []any
	for _, col := range updatable {
		v, ok := updates[col]
		if !ok {
			continue
		}
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	args = append(args, id)
	query := fmt.Sprintf("UPDATE submissions SET %s WHERE id = $%d RETURNING %s", strings.Join(sets, ", "), len(args), columns)
	return r.one(r.db.QueryRow(ctx, query, args...))
}

func (r *repository) Delete(ctx context.Context, id int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM submissions WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *repository) one(row pgx.Row) (*Submission, error) {
	var s Submission
	if err := scan(row, &s); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func scan(row pgx.Row, s *Submission) error {
	var status string
	if err := row.Scan(&s.ID, &s.Title, &s.Description, &s.SubmitterEmail, &status, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return err
	}
	s.Status = Status(status)
	return nil
}
