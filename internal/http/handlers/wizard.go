package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"prolink-server/internal/catalog"
	"prolink-server/internal/wizard"
)

type uploadRequest struct {
	ImageBase64 []byte `json:"image_base64"`
	MIMEType    string `json:"mime_type"`
}

type wizardStateResponse struct {
	SessionID string `json:"session_id"`
	Step      string `json:"step"`
}

// Upload accepts the source selfie and advances the wizard to the features
// step. The selfie is immutable for the rest of the session.
func (a *App) Upload(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if len(req.ImageBase64) == 0 || req.MIMEType == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "image_base64 and mime_type required")
		return
	}

	state := a.sessionState(w, r)
	state.Do(func(s *wizard.State) {
		s.Source.Data = req.ImageBase64
		s.Source.MIME = req.MIMEType
		s.Step = wizard.StepFeatures
	})
	a.json(w, http.StatusOK, wizardStateResponse{SessionID: state.ID, Step: wizard.StepFeatures.String()})
}

// Catalog serves the static style catalog so clients can render the wizard.
func (a *App) Catalog(w http.ResponseWriter, r *http.Request) {
	type vibeDTO struct {
		Name    string             `json:"name"`
		Options catalog.VibeConfig `json:"options"`
	}
	var vibes []vibeDTO
	for _, name := range catalog.Vibes() {
		cfg, _ := catalog.Lookup(name)
		vibes = append(vibes, vibeDTO{Name: name, Options: cfg})
	}
	a.json(w, http.StatusOK, map[string]any{
		"vibes":             vibes,
		"angles":            catalog.Angles(),
		"default_angle":     catalog.DefaultAngle,
		"custom_background": catalog.CustomUploadBackground,
	})
}

type setVibeRequest struct {
	Vibe string `json:"vibe"`
}

// SetVibe switches the vibe, cascading a reset of attire/background/lighting.
func (a *App) SetVibe(w http.ResponseWriter, r *http.Request) {
	var req setVibeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	vibe, ok := catalog.NormalizeVibe(req.Vibe)
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "unknown vibe")
		return
	}

	state := a.sessionState(w, r)
	var selection wizard.Selection
	state.Do(func(s *wizard.State) {
		s.Selection.SetVibe(vibe)
		selection = s.Selection
	})
	a.json(w, http.StatusOK, selectionResponse(state.ID, selection))
}

type setFieldRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SetField sets one wizard field after checking the value against the option
// set of the current vibe. The selection itself stays a plain data holder;
// catalog enforcement lives here, at the submission boundary.
func (a *App) SetField(w http.ResponseWriter, r *http.Request) {
	var req setFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	state := a.sessionState(w, r)
	var (
		selection wizard.Selection
		fieldErr  string
	)
	state.Do(func(s *wizard.State) {
		key := strings.ToLower(strings.TrimSpace(req.Key))
		switch key {
		case "attire":
			if !catalog.ValidAttire(s.Selection.Vibe, req.Value) {
				fieldErr = "attire not available under current vibe"
				return
			}
		case "background":
			if !catalog.ValidBackground(s.Selection.Vibe, req.Value) {
				fieldErr = "background not available under current vibe"
				return
			}
		case "lighting":
			if !catalog.ValidLighting(s.Selection.Vibe, req.Value) {
				fieldErr = "lighting not available under current vibe"
				return
			}
		case "angle":
			if !catalog.ValidAngle(req.Value) {
				fieldErr = "unknown camera angle"
				return
			}
		default:
			fieldErr = "unknown selection field"
			return
		}
		if err := s.Selection.SetField(key, req.Value); err != nil {
			fieldErr = err.Error()
			return
		}
		selection = s.Selection
	})
	if fieldErr != "" {
		a.error(w, http.StatusBadRequest, "bad_request", fieldErr)
		return
	}
	a.json(w, http.StatusOK, selectionResponse(state.ID, selection))
}

type customBackgroundRequest struct {
	ImageBase64 []byte `json:"image_base64"`
	MIMEType    string `json:"mime_type"`
}

// SetCustomBackground attaches a user-supplied background image, selecting the
// custom-upload background in the same move so the two can never disagree.
func (a *App) SetCustomBackground(w http.ResponseWriter, r *http.Request) {
	var req customBackgroundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if len(req.ImageBase64) == 0 || req.MIMEType == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "image_base64 and mime_type required")
		return
	}

	state := a.sessionState(w, r)
	var selection wizard.Selection
	state.Do(func(s *wizard.State) {
		s.Selection.Background = wizard.CustomBackground(req.ImageBase64, req.MIMEType)
		selection = s.Selection
	})
	a.json(w, http.StatusOK, selectionResponse(state.ID, selection))
}

// Reset discards all session-owned state and returns to the upload step.
func (a *App) Reset(w http.ResponseWriter, r *http.Request) {
	if id := r.Header.Get(SessionHeader); id != "" {
		a.Wizards.Reset(id)
	}
	w.WriteHeader(http.StatusNoContent)
}

func selectionResponse(sessionID string, sel wizard.Selection) map[string]any {
	return map[string]any{
		"session_id": sessionID,
		"selection": map[string]any{
			"vibe":              sel.Vibe,
			"attire":            sel.Attire,
			"background":        sel.Background.Label(),
			"custom_background": sel.Background.IsCustom(),
			"lighting":          sel.Lighting,
			"angle":             sel.Angle,
		},
		"complete": sel.IsComplete(),
	}
}
