package archive

import (
	"context"

	"github.com/avoran/jobscout/internal/faults"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore writes application records into the owner's applications table.
type PostgresStore struct {
	pool  *pgxpool.Pool
	owner string
}

// Connect opens a pgx pool and verifies connectivity.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, faults.Wrap(faults.Configuration, "creating database pool", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, faults.Wrap(faults.Configuration, "database ping failed", err)
	}

	return pool, nil
}

func NewPostgresStore(pool *pgxpool.Pool, owner string) *PostgresStore {
	return &PostgresStore{pool: pool, owner: owner}
}

const insertApplication = `
INSERT INTO applications (
	id, owner, job_title, company, job_description, application_link,
	tailored_resume, cover_letter, language, matching_score,
	matching_skills, lacking_skills, applied, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now())
`

// Insert persists one record with a fresh id and a server-stamped creation
// time, and returns the id.
func (s *PostgresStore) Insert(ctx context.Context, record *Record) (string, error) {
	id := uuid.NewString()

	_, err := s.pool.Exec(ctx, insertApplication,
		id,
		s.owner,
		record.JobTitle,
		record.Company,
		record.JobDescription,
		record.ApplicationLink,
		record.TailoredResume,
		record.CoverLetter,
		record.Language,
		record.MatchingScore,
		record.MatchingSkills,
		record.LackingSkills,
		record.Applied,
	)
	if err != nil {
		return "", faults.Wrap(faults.Persistence, "inserting application record", err)
	}

	return id, nil
}
