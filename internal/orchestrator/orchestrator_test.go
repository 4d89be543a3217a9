package orchestrator

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prolink-server/internal/catalog"
	"prolink-server/internal/domain"
	"prolink-server/internal/gemini"
	"prolink-server/internal/infra"
	"prolink-server/internal/wizard"
)

// fakeGenerator hands out one scripted outcome per call, in call order.
type fakeGenerator struct {
	mu       sync.Mutex
	outcomes []func() (domain.Variant, error)
	requests []gemini.GenerateRequest
}

func (f *fakeGenerator) Generate(ctx context.Context, req gemini.GenerateRequest) (domain.Variant, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	if len(f.outcomes) == 0 {
		f.mu.Unlock()
		return domain.Variant{}, errors.New("unscripted call")
	}
	outcome := f.outcomes[0]
	f.outcomes = f.outcomes[1:]
	f.mu.Unlock()
	return outcome()
}

// memRepo is an in-memory project repository.
type memRepo struct {
	mu       sync.Mutex
	projects []domain.Project
	saveErr  error
}

func (m *memRepo) Save(ctx context.Context, userID string, image domain.Variant, features domain.FeatureSnapshot) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	p := domain.Project{ID: domain.NewVariantID(), UserID: userID, CreatedAt: time.Now(), Image: image, Features: features}
	m.projects = append([]domain.Project{p}, m.projects...)
	return &p, nil
}

func (m *memRepo) List(ctx context.Context, userID string) ([]domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Project
	for _, p := range m.projects {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memRepo) Delete(ctx context.Context, userID, projectID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.projects[:0]
	for _, p := range m.projects {
		if p.ID == projectID && p.UserID == userID {
			continue
		}
		kept = append(kept, p)
	}
	m.projects = kept
	return nil
}

func testLogger() infra.Logger {
	return zerolog.New(io.Discard)
}

func completeSelection() wizard.Selection {
	sel := wizard.NewSelection()
	sel.SetVibe(catalog.VibeCorporate)
	sel.Attire = "Classic Suit & Tie"
	sel.Background = wizard.NamedBackground("High-rise Office")
	sel.Lighting = "Soft Studio"
	return sel
}

func success(id string) func() (domain.Variant, error) {
	return func() (domain.Variant, error) {
		return domain.Variant{ID: id, Data: []byte(id), MIME: "image/png"}, nil
	}
}

func refusal() func() (domain.Variant, error) {
	return func() (domain.Variant, error) {
		return domain.Variant{}, &gemini.Failure{Kind: gemini.FailureRefusal, Detail: "cannot comply"}
	}
}

func TestGeneratePartialFailureKeepsSuccesses(t *testing.T) {
	gen := &fakeGenerator{outcomes: []func() (domain.Variant, error){
		success("v1"),
		refusal(),
		success("v3"),
	}}
	repo := &memRepo{}
	o := New(gen, repo, testLogger(), 3)

	source := domain.SourceImage{Data: []byte("selfie"), MIME: "image/jpeg"}
	result, err := o.Generate(context.Background(), "batch-1", source, completeSelection(), "")
	require.NoError(t, err)

	assert.Len(t, result.Variants, 2)
	assert.Len(t, result.Failures, 1)
	assert.False(t, result.Empty())
	assert.Equal(t, gemini.FailureRefusal, gemini.KindOf(result.Failures[0]))
}

func TestGenerateSlowCallStillSettles(t *testing.T) {
	gen := &fakeGenerator{outcomes: []func() (domain.Variant, error){
		success("fast"),
		func() (domain.Variant, error) {
			return domain.Variant{}, &gemini.Failure{Kind: gemini.FailureTransport, Err: errors.New("timeout")}
		},
		func() (domain.Variant, error) {
			time.Sleep(30 * time.Millisecond)
			return domain.Variant{ID: "slow", Data: []byte("slow"), MIME: "image/png"}, nil
		},
	}}
	o := New(gen, &memRepo{}, testLogger(), 3)

	source := domain.SourceImage{Data: []byte("selfie"), MIME: "image/jpeg"}
	result, err := o.Generate(context.Background(), "batch-1", source, completeSelection(), "")
	require.NoError(t, err)

	// The early failure must not cancel the delayed success.
	assert.Len(t, result.Variants, 2)
	assert.Len(t, result.Failures, 1)
}

func TestGenerateAllFailedIsEmptyNotError(t *testing.T) {
	gen := &fakeGenerator{outcomes: []func() (domain.Variant, error){refusal(), refusal(), refusal()}}
	repo := &memRepo{}
	o := New(gen, repo, testLogger(), 3)

	source := domain.SourceImage{Data: []byte("selfie"), MIME: "image/jpeg"}
	result, err := o.Generate(context.Background(), "batch-1", source, completeSelection(), "user-1")
	require.NoError(t, err)

	assert.True(t, result.Empty())
	assert.Len(t, result.Failures, 3)
	assert.Zero(t, result.Saved)
	assert.Empty(t, repo.projects)
}

func TestGenerateValidatesPreconditions(t *testing.T) {
	o := New(&fakeGenerator{}, &memRepo{}, testLogger(), 3)
	source := domain.SourceImage{Data: []byte("selfie"), MIME: "image/jpeg"}

	_, err := o.Generate(context.Background(), "b", domain.SourceImage{}, completeSelection(), "")
	assert.ErrorIs(t, err, domain.ErrMissingSourceImage)

	_, err = o.Generate(context.Background(), "b", source, wizard.NewSelection(), "")
	assert.ErrorIs(t, err, domain.ErrIncompleteSelection)
}

func TestGeneratePersistsForSignedInUser(t *testing.T) {
	gen := &fakeGenerator{outcomes: []func() (domain.Variant, error){
		success("v1"), success("v2"), success("v3"),
	}}
	repo := &memRepo{}
	o := New(gen, repo, testLogger(), 3)

	source := domain.SourceImage{Data: []byte("selfie"), MIME: "image/jpeg"}
	result, err := o.Generate(context.Background(), "batch-1", source, completeSelection(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, 3, result.Saved)
	assert.Len(t, result.Projects, 3)
	for _, p := range result.Projects {
		assert.Equal(t, "user-1", p.UserID)
		assert.Equal(t, catalog.VibeCorporate, p.Features.Vibe)
	}
}

func TestGenerateAnonymousSkipsPersistence(t *testing.T) {
	gen := &fakeGenerator{outcomes: []func() (domain.Variant, error){
		success("v1"), success("v2"), success("v3"),
	}}
	repo := &memRepo{}
	o := New(gen, repo, testLogger(), 3)

	source := domain.SourceImage{Data: []byte("selfie"), MIME: "image/jpeg"}
	result, err := o.Generate(context.Background(), "batch-1", source, completeSelection(), "")
	require.NoError(t, err)

	assert.Zero(t, result.Saved)
	assert.Empty(t, repo.projects)
}

func TestGenerateSaveFailureDegradesToVariants(t *testing.T) {
	gen := &fakeGenerator{outcomes: []func() (domain.Variant, error){
		success("v1"), success("v2"), success("v3"),
	}}
	repo := &memRepo{saveErr: errors.New("disk full")}
	o := New(gen, repo, testLogger(), 3)

	source := domain.SourceImage{Data: []byte("selfie"), MIME: "image/jpeg"}
	result, err := o.Generate(context.Background(), "batch-1", source, completeSelection(), "user-1")
	require.NoError(t, err)

	// The variants are already in hand; persistence trouble only costs the
	// saved count.
	assert.Len(t, result.Variants, 3)
	assert.Zero(t, result.Saved)
}

func TestGenerateCompositeWithAttachedBackground(t *testing.T) {
	gen := &fakeGenerator{outcomes: []func() (domain.Variant, error){success("v1")}}
	o := New(gen, &memRepo{}, testLogger(), 1)
	source := domain.SourceImage{Data: []byte("selfie"), MIME: "image/jpeg"}

	sel := completeSelection()
	sel.Background = wizard.CustomBackground([]byte("office"), "image/png")
	_, err := o.Generate(context.Background(), "b1", source, sel, "")
	require.NoError(t, err)

	require.Len(t, gen.requests, 1)
	require.NotNil(t, gen.requests[0].CustomBackground)
	assert.Equal(t, "image/png", gen.requests[0].CustomBackground.MIME)
	assert.Contains(t, gen.requests[0].Instruction, "Composite the person from the FIRST image")
}

func TestGenerateCustomLabelWithoutBytesDegradesToStandard(t *testing.T) {
	gen := &fakeGenerator{outcomes: []func() (domain.Variant, error){success("v1")}}
	o := New(gen, &memRepo{}, testLogger(), 1)
	source := domain.SourceImage{Data: []byte("selfie"), MIME: "image/jpeg"}

	sel := completeSelection()
	sel.Background = wizard.NamedBackground(catalog.CustomUploadBackground)
	_, err := o.Generate(context.Background(), "b2", source, sel, "")
	require.NoError(t, err)

	require.Len(t, gen.requests, 1)
	assert.Nil(t, gen.requests[0].CustomBackground)
	assert.Contains(t, gen.requests[0].Instruction, "Retouch this photo")
	assert.Contains(t, gen.requests[0].Instruction, "Use provided background image")
}
