package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"courseai/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type GenerationJobRepository interface {
	CreateJob(ctx context.Context, job *model.GenerationJob) error
	GetJobByID(ctx context.Context, jobID string) (*model.GenerationJob, error)
	// UpdateJob persists state, outline, error and updated_at.
	UpdateJob(ctx context.Context, job *model.GenerationJob) error
}

type generationJobRepo struct {
	pool *pgxpool.Pool
}

func NewGenerationJobRepo(pool *pgxpool.Pool) GenerationJobRepository {
	return &generationJobRepo{pool: pool}
}

func (r *generationJobRepo) CreateJob(ctx context.Context, job *model.GenerationJob) error {
	query := `
		INSERT INTO generation_jobs (owner_id, topic, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.pool.QueryRow(ctx, query, job.OwnerID, job.Topic, string(job.State), job.CreatedAt, job.UpdatedAt).
		Scan(&job.JobID)
	if err != nil {
		return fmt.Errorf("creating generation job: %w", err)
	}
	return nil
}

func (r *generationJobRepo) GetJobByID(ctx context.Context, jobID string) (*model.GenerationJob, error) {
	if !validID(jobID) {
		return nil, nil
	}
	query := `
		SELECT id, owner_id, topic, state, outline, error_kind, error_message, created_at, updated_at
		FROM generation_jobs
		WHERE id = $1
	`
	var (
		job     model.GenerationJob
		state   string
		outline []byte
	)
	err := r.pool.QueryRow(ctx, query, jobID).Scan(
		&job.JobID,
		&job.OwnerID,
		&job.Topic,
		&state,
		&outline,
		&job.ErrorKind,
		&job.ErrorMessage,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting generation job %s: %w", jobID, err)
	}
	job.State = model.GenerationState(state)
	if len(outline) > 0 {
		job.Outline = &model.CourseOutline{}
		if err := json.Unmarshal(outline, job.Outline); err != nil {
			return nil, fmt.Errorf("decoding outline of generation job %s: %w", jobID, err)
		}
	}
	return &job, nil
}

func (r *generationJobRepo) UpdateJob(ctx context.Context, job *model.GenerationJob) error {
	var outline *string
	if job.Outline != nil {
		b, err := json.Marshal(job.Outline)
		if err != nil {
			return fmt.Errorf("encoding outline of generation job %s: %w", job.JobID, err)
		}
		s := string(b)
		outline = &s
	}
	query := `
		UPDATE generation_jobs
		SET state = $1, outline = $2::jsonb, error_kind = $3, error_message = $4, updated_at = $5
		WHERE id = $6
	`
	_, err := r.pool.Exec(ctx, query,
		string(job.State), outline, job.ErrorKind, job.ErrorMessage, job.UpdatedAt, job.JobID,
	)
	if err != nil {
		return fmt.Errorf("updating generation job %s: %w", job.JobID, err)
	}
	return nil
}
