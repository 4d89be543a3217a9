// Package orchestrator drives one generation batch: a concurrent fan-out of
// independent model calls, an all-settled barrier, and the post-completion
// persistence hooks for authenticated sessions.
package orchestrator

import (
	"context"

	"golang.org/x/sync/errgroup"

	"prolink-server/internal/domain"
	"prolink-server/internal/gemini"
	"prolink-server/internal/infra"
	"prolink-server/internal/prompt"
	"prolink-server/internal/wizard"
)

// DefaultVariantCount is how many parallel variants one batch requests.
const DefaultVariantCount = 3

// Generator is the external generation capability. One call yields exactly one
// variant or a classified failure.
type Generator interface {
	Generate(ctx context.Context, req gemini.GenerateRequest) (domain.Variant, error)
}

// Orchestrator fans generation requests out against the model and persists
// successful variants for signed-in users.
type Orchestrator struct {
	generator    Generator
	projects     domain.ProjectRepository
	logger       infra.Logger
	variantCount int
}

// New builds an orchestrator. variantCount <= 0 selects the default.
func New(generator Generator, projects domain.ProjectRepository, logger infra.Logger, variantCount int) *Orchestrator {
	if variantCount <= 0 {
		variantCount = DefaultVariantCount
	}
	return &Orchestrator{
		generator:    generator,
		projects:     projects,
		logger:       logger,
		variantCount: variantCount,
	}
}

// Result is the settled outcome of one batch. Variants holds every success;
// Failures the per-request errors that were swallowed at the batch level.
// Saved and Projects reflect the persistence hooks that ran before the batch
// signalled completion.
type Result struct {
	BatchID  string
	Variants []domain.Variant
	Failures []error
	Saved    int
	Projects []domain.Project
}

// Empty reports the total-failure condition: zero successes out of the batch.
func (r *Result) Empty() bool {
	return len(r.Variants) == 0
}

// Generate runs one batch. It validates local preconditions, then issues
// variantCount independent calls concurrently and waits for all of them to
// settle; one failing call never cancels the others. For a signed-in user
// (userID non-empty) every success is persisted and the user's project list is
// re-read before returning, so a subsequent listing reflects this batch.
//
// The returned error covers only local validation; per-request model failures
// surface as a reduced (possibly empty) variant set.
func (o *Orchestrator) Generate(ctx context.Context, batchID string, source domain.SourceImage, sel wizard.Selection, userID string) (*Result, error) {
	if source.IsZero() {
		return nil, domain.ErrMissingSourceImage
	}
	if !sel.IsComplete() {
		return nil, domain.ErrIncompleteSelection
	}

	detail := prompt.Compose(sel)

	// The custom background rides along only when bytes are actually
	// attached; a bare "Custom Upload" label degrades to the standard
	// single-image template.
	var customBg *domain.SourceImage
	if img, ok := sel.Background.CustomImage(); ok {
		customBg = &img
	}
	instruction := prompt.GenerationInstruction(detail, customBg != nil)

	req := gemini.GenerateRequest{
		Source:           source,
		CustomBackground: customBg,
		Instruction:      instruction,
		RecordedPrompt:   detail,
	}

	variants := make([]domain.Variant, o.variantCount)
	errs := make([]error, o.variantCount)

	var g errgroup.Group
	for i := 0; i < o.variantCount; i++ {
		i := i
		g.Go(func() error {
			// Outcomes land in per-slot storage; returning nil keeps
			// the group from treating one failure as batch-fatal.
			variants[i], errs[i] = o.generator.Generate(ctx, req)
			return nil
		})
	}
	_ = g.Wait()

	result := &Result{BatchID: batchID}
	for i := 0; i < o.variantCount; i++ {
		if errs[i] != nil {
			o.logger.Warn().
				Err(errs[i]).
				Str("batch_id", batchID).
				Str("failure_kind", string(gemini.KindOf(errs[i]))).
				Msg("generation variant failed")
			result.Failures = append(result.Failures, errs[i])
			continue
		}
		result.Variants = append(result.Variants, variants[i])
	}

	if result.Empty() {
		o.logger.Error().
			Str("batch_id", batchID).
			Int("requested", o.variantCount).
			Msg("all generations failed")
		return result, nil
	}

	if userID != "" {
		o.persistBatch(ctx, userID, sel, result)
	}
	return result, nil
}

// persistBatch writes one project per successful variant and refreshes the
// user's listing. Persistence trouble degrades to logs; the variants are
// already in hand and must still reach the caller.
func (o *Orchestrator) persistBatch(ctx context.Context, userID string, sel wizard.Selection, result *Result) {
	snapshot := sel.Snapshot()

	saveGroup, saveCtx := errgroup.WithContext(ctx)
	for _, v := range result.Variants {
		v := v
		saveGroup.Go(func() error {
			if _, err := o.projects.Save(saveCtx, userID, v, snapshot); err != nil {
				return err
			}
			return nil
		})
	}
	if err := saveGroup.Wait(); err != nil {
		o.logger.Error().
			Err(err).
			Str("user_id", userID).
			Str("batch_id", result.BatchID).
			Msg("failed to persist generated variants")
	} else {
		result.Saved = len(result.Variants)
	}

	projects, err := o.projects.List(ctx, userID)
	if err != nil {
		o.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to refresh project history")
		return
	}
	result.Projects = projects
}
