package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/kirillkom/job-search-assistant/internal/core/domain"
)

// JobRepository stores the corpus with its position, which is the vector index id.
type JobRepository struct {
	db *sql.DB
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) LoadCorpus(ctx context.Context) ([]domain.JobRecord, error) {
	const query = `
SELECT title, company, salary, location, tech_stack, description, visa_sponsorship, link, full_description
FROM jobs
ORDER BY position ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	out := make([]domain.JobRecord, 0, 256)
	for rows.Next() {
		var (
			rec      domain.JobRecord
			techJSON []byte
		)
		if err := rows.Scan(
			&rec.Title,
			&rec.Company,
			&rec.Salary,
			&rec.Location,
			&techJSON,
			&rec.Description,
			&rec.VisaSponsorship,
			&rec.Link,
			&rec.FullDescription,
		); err != nil {
			return nil, fmt.Errorf("scan job row: %w", err)
		}
		if err := json.Unmarshal(techJSON, &rec.TechStack); err != nil {
			return nil, fmt.Errorf("unmarshal tech_stack: %w", err)
		}
		if rec.TechStack == nil {
			rec.TechStack = []string{}
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return out, nil
}

// ReplaceCorpus swaps the stored corpus for records in one transaction.
// Positions restart at zero, so the vector index must be rebuilt afterwards.
func (r *JobRepository) ReplaceCorpus(ctx context.Context, records []domain.JobRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin corpus tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM jobs`); err != nil {
		return fmt.Errorf("clear jobs: %w", err)
	}

	const insert = `
INSERT INTO jobs (position, title, company, salary, location, tech_stack, description, visa_sponsorship, link, full_description)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	for i, rec := range records {
		techJSON, err := json.Marshal(nonNilStrings(rec.TechStack))
		if err != nil {
			return fmt.Errorf("marshal tech_stack: %w", err)
		}
		if _, err := tx.ExecContext(ctx, insert,
			i,
			rec.Title,
			rec.Company,
			rec.Salary,
			rec.Location,
			techJSON,
			rec.Description,
			rec.VisaSponsorship,
			rec.Link,
			rec.FullDescription,
		); err != nil {
			return fmt.Errorf("insert job %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit corpus tx: %w", err)
	}
	return nil
}

func nonNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
