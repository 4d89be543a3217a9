// Package storage provides the file-backed persistence gateway: one named
// JSON collection of saved projects, read and written whole, mirroring the
// key-value contract of the browser deployment. It is the default store when
// no database is configured.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"prolink-server/internal/domain"
)

// CollectionName is the single shared collection holding every user's
// records; reads filter by user id.
const CollectionName = "prolink_projects.json"

// ProjectCollection implements domain.ProjectRepository over one JSON file.
// Writes rewrite the whole collection; a mutex serializes them since the store
// assumes a single service process.
type ProjectCollection struct {
	mu   sync.Mutex
	path string
}

type projectRecord struct {
	ID         string                 `json:"id"`
	UserID     string                 `json:"userId"`
	CreatedAt  int64                  `json:"createdAt"`
	ImageID    string                 `json:"imageId"`
	ImageData  []byte                 `json:"imageData"`
	ImageMIME  string                 `json:"imageMime"`
	PromptUsed string                 `json:"promptUsed"`
	Features   domain.FeatureSnapshot `json:"features"`
}

// NewProjectCollection roots the collection file under basePath, creating the
// directory when needed.
func NewProjectCollection(basePath string) (*ProjectCollection, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}
	return &ProjectCollection{path: filepath.Join(basePath, CollectionName)}, nil
}

// Save appends a new record and returns it with generated id and timestamp.
func (c *ProjectCollection) Save(ctx context.Context, userID string, image domain.Variant, features domain.FeatureSnapshot) (*domain.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(userID) == "" {
		return nil, errors.New("storage: user id is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.load()
	if err != nil {
		return nil, err
	}

	rec := projectRecord{
		ID:         uuid.NewString(),
		UserID:     userID,
		CreatedAt:  time.Now().UnixMilli(),
		ImageID:    image.ID,
		ImageData:  image.Data,
		ImageMIME:  image.MIME,
		PromptUsed: image.PromptUsed,
		Features:   features,
	}
	// Newest first, so List can return file order directly.
	records = append([]projectRecord{rec}, records...)

	if err := c.store(records); err != nil {
		return nil, err
	}
	project := rec.toDomain()
	return &project, nil
}

// List returns the user's records, newest first. Other users' records are
// filtered out at read time.
func (c *ProjectCollection) List(ctx context.Context, userID string) ([]domain.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.load()
	if err != nil {
		return nil, err
	}
	var projects []domain.Project
	for _, rec := range records {
		if rec.UserID != userID {
			continue
		}
		projects = append(projects, rec.toDomain())
	}
	return projects, nil
}

// Delete removes the user's record with the given id. Unknown ids, including
// ids owned by someone else, are a no-op.
func (c *ProjectCollection) Delete(ctx context.Context, userID, projectID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.load()
	if err != nil {
		return err
	}
	kept := records[:0]
	changed := false
	for _, rec := range records {
		if rec.ID == projectID && rec.UserID == userID {
			changed = true
			continue
		}
		kept = append(kept, rec)
	}
	if !changed {
		return nil
	}
	return c.store(kept)
}

func (c *ProjectCollection) load() ([]projectRecord, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("storage: read collection: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var records []projectRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("storage: parse collection: %w", err)
	}
	return records, nil
}

func (c *ProjectCollection) store(records []projectRecord) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("storage: encode collection: %w", err)
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("storage: write collection: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("storage: replace collection: %w", err)
	}
	return nil
}

func (r projectRecord) toDomain() domain.Project {
	return domain.Project{
		ID:        r.ID,
		UserID:    r.UserID,
		CreatedAt: time.UnixMilli(r.CreatedAt),
		Image: domain.Variant{
			ID:         r.ImageID,
			Data:       r.ImageData,
			MIME:       r.ImageMIME,
			PromptUsed: r.PromptUsed,
		},
		Features: r.Features,
	}
}

var _ domain.ProjectRepository = (*ProjectCollection)(nil)
