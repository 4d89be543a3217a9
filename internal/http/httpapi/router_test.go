package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"prolink-server/internal/domain"
	"prolink-server/internal/gemini"
	"prolink-server/internal/http/handlers"
	"prolink-server/internal/identity"
	"prolink-server/internal/infra"
	"prolink-server/internal/middleware"
	"prolink-server/internal/orchestrator"
	"prolink-server/internal/storage"
	"prolink-server/internal/wizard"
)

type staticGenerator struct{}

func (staticGenerator) Generate(ctx context.Context, req gemini.GenerateRequest) (domain.Variant, error) {
	return domain.Variant{ID: domain.NewVariantID(), Data: []byte("img"), MIME: "image/png", PromptUsed: req.RecordedPrompt}, nil
}

type staticEditor struct{}

func (staticEditor) Edit(ctx context.Context, image domain.Variant, instruction string) (domain.Variant, error) {
	return domain.Variant{ID: domain.NewVariantID(), Data: []byte("edited"), MIME: "image/png", PromptUsed: instruction}, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := infra.Logger(zerolog.New(io.Discard))
	projects, err := storage.NewProjectCollection(t.TempDir())
	if err != nil {
		t.Fatalf("project collection: %v", err)
	}
	app := &handlers.App{
		Config: &infra.Config{
			AppEnv:          "test",
			JWTSecret:       "test-secret",
			VariantCount:    3,
			RateLimitPerMin: 1000,
		},
		Logger:       logger,
		Wizards:      wizard.NewStore(wizard.Options{}),
		Projects:     projects,
		Identity:     identity.NewBridge(identity.Options{}),
		Orchestrator: orchestrator.New(staticGenerator{}, projects, logger, 3),
		Editor:       staticEditor{},
	}
	srv := httptest.NewServer(NewRouter(app))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, sessionID, token string, payload any) *http.Response {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, srv.URL+path, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if sessionID != "" {
		req.Header.Set(handlers.SessionHeader, sessionID)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func TestRouterHealth(t *testing.T) {
	srv := newTestServer(t)
	resp := do(t, srv, "GET", "/v1/healthz", "", "", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz: status %d", resp.StatusCode)
	}
}

func TestRouterWizardFlowEndToEnd(t *testing.T) {
	srv := newTestServer(t)
	token, err := middleware.SignSessionToken("test-secret", "user-1", "jo@example.com", "Jo", time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	steps := []struct {
		method, path string
		payload      any
	}{
		{"POST", "/v1/wizard/upload", map[string]any{"image_base64": []byte("selfie"), "mime_type": "image/jpeg"}},
		{"POST", "/v1/wizard/vibe", map[string]string{"vibe": "corporate"}},
		{"POST", "/v1/wizard/feature", map[string]string{"key": "attire", "value": "Classic Suit & Tie"}},
		{"POST", "/v1/wizard/feature", map[string]string{"key": "background", "value": "High-rise Office"}},
		{"POST", "/v1/wizard/feature", map[string]string{"key": "lighting", "value": "Soft Studio"}},
	}
	for _, s := range steps {
		resp := do(t, srv, s.method, s.path, "tab-1", token, s.payload)
		if resp.StatusCode != http.StatusOK {
			raw, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			t.Fatalf("%s %s: status %d: %s", s.method, s.path, resp.StatusCode, raw)
		}
		resp.Body.Close()
	}

	resp := do(t, srv, "POST", "/v1/wizard/generate", "tab-1", token, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("generate: status %d: %s", resp.StatusCode, raw)
	}
	var genResp struct {
		Gallery  string           `json:"gallery"`
		Variants []map[string]any `json:"variants"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		t.Fatalf("decode generate response: %v", err)
	}
	if genResp.Gallery != "populated" || len(genResp.Variants) != 3 {
		t.Fatalf("gallery=%q variants=%d", genResp.Gallery, len(genResp.Variants))
	}

	// The authenticated batch persisted; /v1/projects sees it.
	listResp := do(t, srv, "GET", "/v1/projects/", "", token, nil)
	defer listResp.Body.Close()
	if listResp.StatusCode != http.StatusOK {
		t.Fatalf("list projects: status %d", listResp.StatusCode)
	}
	var list struct {
		Projects []map[string]any `json:"projects"`
	}
	if err := json.NewDecoder(listResp.Body).Decode(&list); err != nil {
		t.Fatalf("decode project list: %v", err)
	}
	if len(list.Projects) != 3 {
		t.Fatalf("projects = %d, want 3", len(list.Projects))
	}
}

func TestRouterProjectsRequireAuth(t *testing.T) {
	srv := newTestServer(t)
	resp := do(t, srv, "GET", "/v1/projects/", "", "", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated list: status %d, want 401", resp.StatusCode)
	}
}

func TestRouterWizardWorksAnonymously(t *testing.T) {
	srv := newTestServer(t)
	resp := do(t, srv, "GET", "/v1/wizard/catalog", "", "", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("catalog: status %d", resp.StatusCode)
	}
	var cat struct {
		Vibes []map[string]any `json:"vibes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&cat); err != nil {
		t.Fatalf("decode catalog: %v", err)
	}
	if len(cat.Vibes) != 3 {
		t.Fatalf("catalog vibes = %d, want 3", len(cat.Vibes))
	}
}
