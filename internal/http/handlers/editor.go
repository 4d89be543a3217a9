package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"prolink-server/internal/domain"
	"prolink-server/internal/gemini"
	"prolink-server/internal/version"
	"prolink-server/internal/wizard"
)

type openEditorRequest struct {
	VariantID string `json:"variant_id"`
}

// OpenEditor moves a gallery variant into the editor, seeding the version
// history with the pseudo-original upload followed by the chosen variant.
func (a *App) OpenEditor(w http.ResponseWriter, r *http.Request) {
	var req openEditorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	state := a.sessionState(w, r)
	var (
		history  *version.History
		notFound bool
	)
	state.Do(func(s *wizard.State) {
		for _, v := range s.Variants {
			if v.ID == req.VariantID {
				s.History = version.Init(s.Source, v)
				s.Step = wizard.StepEditor
				history = s.History
				return
			}
		}
		notFound = true
	})
	if notFound {
		a.error(w, http.StatusNotFound, "not_found", "variant not in gallery")
		return
	}
	a.json(w, http.StatusOK, historyResponse(state.ID, history))
}

// History returns the version sequence and the current selection.
func (a *App) History(w http.ResponseWriter, r *http.Request) {
	state := a.sessionState(w, r)
	history := editorHistory(state)
	if history == nil {
		a.error(w, http.StatusConflict, "no_editor", "open a variant in the editor first")
		return
	}
	a.json(w, http.StatusOK, historyResponse(state.ID, history))
}

type selectVersionRequest struct {
	VariantID string `json:"variant_id"`
}

// SelectVersion moves the current pointer to an existing history entry.
func (a *App) SelectVersion(w http.ResponseWriter, r *http.Request) {
	var req selectVersionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	state := a.sessionState(w, r)
	history := editorHistory(state)
	if history == nil {
		a.error(w, http.StatusConflict, "no_editor", "open a variant in the editor first")
		return
	}
	selected, err := history.Select(req.VariantID)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "unknown version id")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"session_id": state.ID,
		"current":    toVariantDTO(selected),
	})
}

type applyEditRequest struct {
	Instruction string `json:"instruction"`
}

// ApplyEdit sends the selected version plus the instruction to the model and
// appends the result. Failures leave the history untouched and surface as one
// retryable message.
func (a *App) ApplyEdit(w http.ResponseWriter, r *http.Request) {
	var req applyEditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	state := a.sessionState(w, r)
	history := editorHistory(state)
	if history == nil {
		a.error(w, http.StatusConflict, "no_editor", "open a variant in the editor first")
		return
	}

	edited, err := history.ApplyEdit(r.Context(), a.Editor, req.Instruction)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyInstruction):
			a.error(w, http.StatusBadRequest, "bad_request", "instruction must not be empty")
		case errors.Is(err, domain.ErrEditInFlight):
			a.error(w, http.StatusConflict, "edit_in_flight", "an edit is already running")
		default:
			a.Logger.Warn().
				Err(err).
				Str("failure_kind", string(gemini.KindOf(err))).
				Msg("edit failed")
			a.error(w, http.StatusBadGateway, "edit_failed", "Failed to update image. Try a different instruction.")
		}
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"session_id": state.ID,
		"current":    toVariantDTO(edited),
		"versions":   history.Len(),
	})
}

// Download serves the currently viewed version's raw bytes under its recorded
// mime type, named with a timestamp.
func (a *App) Download(w http.ResponseWriter, r *http.Request) {
	state := a.sessionState(w, r)
	history := editorHistory(state)
	if history == nil {
		a.error(w, http.StatusConflict, "no_editor", "open a variant in the editor first")
		return
	}
	current := history.Current()

	filename := fmt.Sprintf("prolink-headshot-%d%s", time.Now().UnixMilli(), extensionForMIME(current.MIME))
	w.Header().Set("Content-Type", current.MIME)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(current.Data)
}

func editorHistory(state *wizard.State) *version.History {
	var history *version.History
	state.Do(func(s *wizard.State) { history = s.History })
	return history
}

func historyResponse(sessionID string, history *version.History) map[string]any {
	entries := history.Entries()
	current := history.Current()
	dtos := make([]variantDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, toVariantDTO(e))
	}
	return map[string]any{
		"session_id": sessionID,
		"versions":   dtos,
		"current_id": current.ID,
	}
}
