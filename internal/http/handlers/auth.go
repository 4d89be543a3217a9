package handlers

import (
	"encoding/json"
	"net/http"

	"prolink-server/internal/identity"
	"prolink-server/internal/middleware"
	"prolink-server/internal/wizard"
)

type googleSignInRequest struct {
	AccessToken string `json:"access_token"`
	IDToken     string `json:"id_token"`
}

type googleSignInResponse struct {
	Token      string            `json:"token"`
	User       userProfileDTO    `json:"user"`
	Projects   []projectDTO      `json:"projects"`
	Generation *generateResponse `json:"generation,omitempty"`
}

type userProfileDTO struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// AuthGoogle resolves a Google sign-in into a service session token. On
// success it reloads the user's saved projects and, when a generation was
// pending for this wizard session, runs it immediately with the
// just-resolved identity — passed by value, never read back from shared
// state.
func (a *App) AuthGoogle(w http.ResponseWriter, r *http.Request) {
	var req googleSignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	var (
		session identity.Session
		err     error
	)
	switch {
	case req.IDToken != "":
		session, err = a.Identity.SignInWithIDToken(r.Context(), req.IDToken)
	case req.AccessToken != "":
		session, err = a.Identity.SignIn(r.Context(), req.AccessToken)
	default:
		a.error(w, http.StatusBadRequest, "bad_request", "access_token or id_token required")
		return
	}
	if err != nil {
		a.Logger.Error().Err(err).Msg("google sign-in failed")
		a.error(w, http.StatusUnauthorized, "unauthorized", "sign-in failed")
		return
	}

	token, err := middleware.SignSessionToken(a.Config.JWTSecret, session.UserID, session.Profile.Email, session.Profile.Name, SessionTokenTTL)
	if err != nil {
		a.Logger.Error().Err(err).Msg("sign session token failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to issue session token")
		return
	}

	projects, err := a.Projects.List(r.Context(), session.UserID)
	if err != nil {
		a.Logger.Error().Err(err).Str("user_id", session.UserID).Msg("project reload failed")
		// Sign-in still succeeds; the list is re-fetchable.
	}

	resp := googleSignInResponse{
		Token: token,
		User: userProfileDTO{
			ID:      session.UserID,
			Email:   session.Profile.Email,
			Name:    session.Profile.Name,
			Picture: session.Profile.Picture,
		},
		Projects: toProjectDTOs(projects),
	}

	// Pending generation handoff. The batch runs with the session resolved
	// above; if it saved anything, refresh the listing so the response
	// reflects this batch too.
	if state := a.pendingState(r); state != nil {
		generation, genErr := a.runBatch(r, state, session)
		if genErr != nil {
			a.Logger.Warn().Err(genErr).Msg("pending generation abandoned")
		} else {
			resp.Generation = generation
			if generation.Saved > 0 {
				if refreshed, err := a.Projects.List(r.Context(), session.UserID); err == nil {
					resp.Projects = toProjectDTOs(refreshed)
				}
			}
		}
	}

	a.json(w, http.StatusOK, resp)
}

// pendingState returns the wizard state when this tab has a generation
// waiting on sign-in, else nil.
func (a *App) pendingState(r *http.Request) *wizard.State {
	id := r.Header.Get(SessionHeader)
	if id == "" {
		return nil
	}
	state := a.Wizards.GetOrCreate(id)
	pending := false
	state.Do(func(s *wizard.State) { pending = s.PendingGenerate })
	if !pending {
		return nil
	}
	return state
}
