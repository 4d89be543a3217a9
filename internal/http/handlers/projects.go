package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ListProjects returns the signed-in user's saved headshots, newest first.
func (a *App) ListProjects(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	projects, err := a.Projects.List(r.Context(), userID)
	if err != nil {
		a.Logger.Error().Err(err).Str("user_id", userID).Msg("list projects failed")
		a.error(w, http.StatusInternalServerError, "internal", "could not load projects")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"projects": toProjectDTOs(projects)})
}

// DeleteProject removes a saved headshot. Deleting an id the user does not
// own, or one already gone, is a no-op.
func (a *App) DeleteProject(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	projectID := chi.URLParam(r, "projectID")
	if err := a.Projects.Delete(r.Context(), userID, projectID); err != nil {
		a.Logger.Error().Err(err).Str("user_id", userID).Str("project_id", projectID).Msg("delete project failed")
		a.error(w, http.StatusInternalServerError, "internal", "could not delete project")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
