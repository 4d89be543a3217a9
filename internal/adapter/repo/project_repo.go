package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"prolink-server/internal/domain"
)

// ProjectRepositoryPG implements domain.ProjectRepository using PostgreSQL.
// It is selected when DATABASE_URL is configured.
type ProjectRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewProjectRepository constructs a new project repository instance.
func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepositoryPG {
	return &ProjectRepositoryPG{pool: pool}
}

// Save persists one generated variant as a project row.
func (r *ProjectRepositoryPG) Save(ctx context.Context, userID string, image domain.Variant, features domain.FeatureSnapshot) (*domain.Project, error) {
	featureJSON, err := json.Marshal(features)
	if err != nil {
		return nil, fmt.Errorf("encode features: %w", err)
	}

	project := &domain.Project{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
		Image:     image,
		Features:  features,
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO projects (id, user_id, created_at, image_id, image_mime, image_data, prompt_used, features)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
`, project.ID, userID, project.CreatedAt, image.ID, image.MIME, image.Data, image.PromptUsed, featureJSON); err != nil {
		return nil, err
	}
	return project, nil
}

// List returns the user's saved projects, newest first.
func (r *ProjectRepositoryPG) List(ctx context.Context, userID string) ([]domain.Project, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, user_id, created_at, image_id, image_mime, image_data, prompt_used, features
FROM projects
WHERE user_id = $1
ORDER BY created_at DESC;
`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		var p domain.Project
		var featureJSON []byte
		if err := rows.Scan(&p.ID, &p.UserID, &p.CreatedAt, &p.Image.ID, &p.Image.MIME, &p.Image.Data, &p.Image.PromptUsed, &featureJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(featureJSON, &p.Features); err != nil {
			return nil, fmt.Errorf("decode features: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return projects, nil
}

// Delete removes a project owned by the user. Deleting an absent id is not an
// error.
func (r *ProjectRepositoryPG) Delete(ctx context.Context, userID, projectID string) error {
	_, err := r.pool.Exec(ctx, `
DELETE FROM projects
WHERE id = $1 AND user_id = $2;
`, projectID, userID)
	return err
}

var _ domain.ProjectRepository = (*ProjectRepositoryPG)(nil)
