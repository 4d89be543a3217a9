package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"prolink-server/internal/domain"
	"prolink-server/internal/identity"
	"prolink-server/internal/infra"
	"prolink-server/internal/middleware"
	"prolink-server/internal/orchestrator"
	"prolink-server/internal/version"
	"prolink-server/internal/wizard"
)

// SessionHeader carries the per-tab wizard session id. The upload handler
// mints one when the client has none yet.
const SessionHeader = "X-Session-ID"

// SessionTokenTTL bounds how long an issued session token stays valid.
const SessionTokenTTL = 24 * time.Hour

// App bundles the dependencies shared by all handlers.
type App struct {
	Config       *infra.Config
	Logger       infra.Logger
	Wizards      *wizard.Store
	Projects     domain.ProjectRepository
	Identity     *identity.Bridge
	Orchestrator *orchestrator.Orchestrator
	Editor       version.Editor
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]string{"error": errCode, "message": message})
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}

// sessionState resolves the wizard state for this tab, minting a session id
// when the header is absent. The (possibly new) id is echoed on the response.
func (a *App) sessionState(w http.ResponseWriter, r *http.Request) *wizard.State {
	id := r.Header.Get(SessionHeader)
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set(SessionHeader, id)
	return a.Wizards.GetOrCreate(id)
}

type variantDTO struct {
	ID          string `json:"id"`
	MIME        string `json:"mime_type"`
	PromptUsed  string `json:"prompt_used"`
	ImageBase64 []byte `json:"image_base64"`
}

func toVariantDTO(v domain.Variant) variantDTO {
	return variantDTO{ID: v.ID, MIME: v.MIME, PromptUsed: v.PromptUsed, ImageBase64: v.Data}
}

func toVariantDTOs(variants []domain.Variant) []variantDTO {
	out := make([]variantDTO, 0, len(variants))
	for _, v := range variants {
		out = append(out, toVariantDTO(v))
	}
	return out
}

type projectDTO struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"user_id"`
	CreatedAt time.Time              `json:"created_at"`
	Image     variantDTO             `json:"image"`
	Features  domain.FeatureSnapshot `json:"features"`
}

func toProjectDTOs(projects []domain.Project) []projectDTO {
	out := make([]projectDTO, 0, len(projects))
	for _, p := range projects {
		out = append(out, projectDTO{
			ID:        p.ID,
			UserID:    p.UserID,
			CreatedAt: p.CreatedAt,
			Image:     toVariantDTO(p.Image),
			Features:  p.Features,
		})
	}
	return out
}
