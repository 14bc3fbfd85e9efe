package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"log/slog"

	"github.com/brightpixel/agencyportal/internal/auth"
	"github.com/brightpixel/agencyportal/internal/domain/profiles"
	"github.com/brightpixel/agencyportal/internal/domain/projects"
)

// projectView adds the derived progress percentage to a project.
type projectView struct {
	projects.Project
	Progress int `json:"progress"`
}

func viewProject(p projects.Project) projectView {
	if p.Milestones == nil {
		p.Milestones = []projects.Milestone{}
	}
	return projectView{Project: p, Progress: p.Progress()}
}

func registerProjectRoutes(mux *http.ServeMux, logger *slog.Logger, guard *auth.Middleware, service projects.Service) {
	adminOnly := func(next http.HandlerFunc) http.HandlerFunc {
		return guard.RequireRole(string(profiles.RoleAdmin), next)
	}

	mux.HandleFunc("GET /v1/projects", guard.Authenticated(func(w http.ResponseWriter, r *http.Request) {
		offset, limit, ok := parsePagination(w, r)
		if !ok {
			return
		}

		p := principal(r)
		var (
			list []projects.Project
			err  error
		)
		if isAdmin(p) {
			list, err = service.List(r.Context(), offset, limit)
		} else {
			list, err = service.ListForClient(r.Context(), p.ProfileID, offset, limit)
		}
		if err != nil {
			writeProjectError(w, logger, "list projects", err)
			return
		}

		views := make([]projectView, 0, len(list))
		for _, project := range list {
			views = append(views, viewProject(project))
		}
		respondList(w, views)
	}))

	mux.HandleFunc("GET /v1/projects/{id}", guard.Authenticated(func(w http.ResponseWriter, r *http.Request) {
		project, err := service.Get(r.Context(), r.PathValue("id"))
		if err != nil {
			writeProjectError(w, logger, "get project", err)
			return
		}
		// Clients only see their own projects.
		p := principal(r)
		if !isAdmin(p) && project.ClientID != p.ProfileID {
			respondError(w, http.StatusNotFound, "project not found")
			return
		}
		respondJSON(w, http.StatusOK, viewProject(project))
	}))

	mux.HandleFunc("POST /v1/admin/projects", adminOnly(func(w http.ResponseWriter, r *http.Request) {
		var input projects.CreateInput
		if !decodeJSON(w, r, &input) {
			return
		}
		project, err := service.Create(r.Context(), input)
		if err != nil {
			writeProjectError(w, logger, "create project", err)
			return
		}
		logger.Info("project created", "project_id", project.ID, "client_id", project.ClientID)
		respondJSON(w, http.StatusCreated, viewProject(project))
	}))

	mux.HandleFunc("PATCH /v1/admin/projects/{id}", adminOnly(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Status string `json:"status"`
		}
		if !decodeJSON(w, r, &payload) {
			return
		}
		status := projects.Status(strings.TrimSpace(payload.Status))
		if status == "" {
			respondError(w, http.StatusBadRequest, "status is required")
			return
		}

		project, err := service.UpdateStatus(r.Context(), r.PathValue("id"), status)
		if err != nil {
			writeProjectError(w, logger, "update project status", err)
			return
		}
		respondJSON(w, http.StatusOK, viewProject(project))
	}))

	mux.HandleFunc("POST /v1/admin/projects/{id}/milestones", adminOnly(func(w http.ResponseWriter, r *http.Request) {
		var input projects.MilestoneInput
		if !decodeJSON(w, r, &input) {
			return
		}
		project, err := service.AddMilestone(r.Context(), r.PathValue("id"), input)
		if err != nil {
			writeProjectError(w, logger, "add milestone", err)
			return
		}
		respondJSON(w, http.StatusCreated, viewProject(project))
	}))

	mux.HandleFunc("POST /v1/admin/projects/{id}/milestones/{milestoneID}/complete", adminOnly(func(w http.ResponseWriter, r *http.Request) {
		project, err := service.CompleteMilestone(r.Context(), r.PathValue("id"), r.PathValue("milestoneID"))
		if err != nil {
			writeProjectError(w, logger, "complete milestone", err)
			return
		}
		respondJSON(w, http.StatusOK, viewProject(project))
	}))
}

func writeProjectError(w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	switch {
	case errors.Is(err, projects.ErrNotFound):
		respondError(w, http.StatusNotFound, "project not found")
	case errors.Is(err, projects.ErrMilestoneNotFound):
		respondError(w, http.StatusNotFound, "milestone not found")
	case errors.Is(err, projects.ErrInvalidStatus), errors.Is(err, projects.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, projects.ErrNotImplemented):
		respondError(w, http.StatusNotImplemented, op+" not yet implemented")
	default:
		logger.Error(op+" failed", "err", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
