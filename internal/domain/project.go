package domain

import (
	"context"
	"time"
)

// FeatureSnapshot is the persisted copy of the wizard selection that produced a
// saved result. Labels only; custom background bytes are not retained.
type FeatureSnapshot struct {
	Vibe       string `json:"vibe"`
	Attire     string `json:"attire"`
	Background string `json:"background"`
	Lighting   string `json:"lighting"`
	Angle      string `json:"angle"`
}

// Project is a saved generation result owned by a user. Created on successful
// generation for an authenticated session, deleted explicitly, never mutated.
type Project struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	Image     Variant
	Features  FeatureSnapshot
}

// ProjectRepository is the persistence gateway for saved results. List must
// return only the given user's records, newest first. Delete is idempotent.
type ProjectRepository interface {
	Save(ctx context.Context, userID string, image Variant, features FeatureSnapshot) (*Project, error)
	List(ctx context.Context, userID string) ([]Project, error)
	Delete(ctx context.Context, userID, projectID string) error
}
