package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"prolink-server/internal/domain"
	"prolink-server/internal/identity"
	"prolink-server/internal/wizard"
	"prolink-server/pkg/zip"
)

type generateResponse struct {
	SessionID string       `json:"session_id"`
	BatchID   string       `json:"batch_id"`
	Gallery   string       `json:"gallery"`
	Variants  []variantDTO `json:"variants"`
	Failed    int          `json:"failed"`
	Saved     int          `json:"saved"`
}

// Generate runs one generation batch for the wizard session. Unauthenticated
// calls mark the generation as pending and ask the client to sign in; the
// sign-in handler then re-triggers the batch with the freshly-resolved
// session. A repeated call acts as "regenerate": the previous variant set is
// discarded and a new batch id isolates any stragglers from the old one.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	state := a.sessionState(w, r)

	userID := a.currentUserID(r)
	if userID == "" {
		state.Do(func(s *wizard.State) { s.PendingGenerate = true })
		a.json(w, http.StatusUnauthorized, map[string]any{
			"error":   "sign_in_required",
			"message": "sign in to generate headshots",
			"pending": true,
		})
		return
	}

	resp, err := a.runBatch(r, state, identity.Session{UserID: userID})
	if err != nil {
		a.validationError(w, err)
		return
	}
	a.json(w, http.StatusOK, resp)
}

// runBatch drives Idle/Populated/EmptyFailure -> Generating -> settled for one
// batch. The resolved session arrives as an explicit value so a sign-in
// triggered batch never reads stale identity.
func (a *App) runBatch(r *http.Request, state *wizard.State, session identity.Session) (*generateResponse, error) {
	var (
		batchID   = uuid.NewString()
		source    domain.SourceImage
		selection wizard.Selection
		precheck  error
	)
	state.Do(func(s *wizard.State) {
		if s.Source.IsZero() {
			precheck = domain.ErrMissingSourceImage
			return
		}
		if !s.Selection.IsComplete() {
			precheck = domain.ErrIncompleteSelection
			return
		}
		s.Step = wizard.StepGeneration
		s.Gallery = wizard.GalleryGenerating
		s.BatchID = batchID
		s.Variants = nil
		s.PendingGenerate = false
		source = s.Source
		selection = s.Selection
	})
	if precheck != nil {
		return nil, precheck
	}

	result, err := a.Orchestrator.Generate(r.Context(), batchID, source, selection, session.UserID)
	if err != nil {
		// Local validation only; the batch never fails as a whole.
		state.Do(func(s *wizard.State) {
			if s.BatchID == batchID {
				s.Gallery = wizard.GalleryIdle
			}
		})
		return nil, err
	}

	stale := false
	state.Do(func(s *wizard.State) {
		if s.BatchID != batchID {
			// A regenerate superseded this batch; drop the results.
			stale = true
			return
		}
		s.Variants = result.Variants
		if result.Empty() {
			s.Gallery = wizard.GalleryEmptyFailure
		} else {
			s.Gallery = wizard.GalleryPopulated
		}
	})
	if stale {
		return nil, domain.ErrNotFound
	}

	gallery := wizard.GalleryPopulated
	if result.Empty() {
		gallery = wizard.GalleryEmptyFailure
	}
	return &generateResponse{
		SessionID: state.ID,
		BatchID:   batchID,
		Gallery:   string(gallery),
		Variants:  toVariantDTOs(result.Variants),
		Failed:    len(result.Failures),
		Saved:     result.Saved,
	}, nil
}

func (a *App) validationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrMissingSourceImage):
		a.error(w, http.StatusConflict, "missing_source", "upload a selfie before generating")
	case errors.Is(err, domain.ErrIncompleteSelection):
		a.error(w, http.StatusConflict, "incomplete_selection", "choose attire, background, lighting and angle first")
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusConflict, "superseded", "a newer generation replaced this batch")
	default:
		a.error(w, http.StatusInternalServerError, "internal", "generation failed")
	}
}

// Variants returns the gallery for the session.
func (a *App) Variants(w http.ResponseWriter, r *http.Request) {
	state := a.sessionState(w, r)
	step, gallery, variants := state.View()
	a.json(w, http.StatusOK, map[string]any{
		"session_id": state.ID,
		"step":       step.String(),
		"gallery":    string(gallery),
		"variants":   toVariantDTOs(variants),
	})
}

// VariantsZip serves the whole gallery as one archive.
func (a *App) VariantsZip(w http.ResponseWriter, r *http.Request) {
	state := a.sessionState(w, r)
	_, _, variants := state.View()
	if len(variants) == 0 {
		a.error(w, http.StatusNotFound, "not_found", "no variants generated yet")
		return
	}

	entries := make([]zip.Entry, 0, len(variants))
	for i, v := range variants {
		entries = append(entries, zip.Entry{
			Filename: fmt.Sprintf("prolink-headshot-%d%s", i+1, extensionForMIME(v.MIME)),
			Data:     v.Data,
		})
	}
	archive, err := zip.Archive(entries)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to build archive")
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=prolink-headshots-%d.zip", time.Now().UnixMilli()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

func extensionForMIME(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
