package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Ratheshan03/neucon-labs-sub000/internal/common"
	"github.com/Ratheshan03/neucon-labs-sub000/internal/models"
	"github.com/Ratheshan03/neucon-labs-sub000/internal/repositories/contacts"
	"github.com/Ratheshan03/neucon-labs-sub000/internal/repositories/projects"
)

// writeRepoError maps repository sentinels onto API status codes.
func writeRepoError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrNotFound):
		JSONError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, common.ErrConflict):
		JSONError(w, http.StatusConflict, "Already exists")
	default:
		JSONError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// intQuery parses a non-negative integer query parameter. Garbage and
// negative values fall back to 0 so they cannot reach the SQL layer.
func intQuery(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	user, err := s.users.GetByID(r.Context(), claims.Subject)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	JSON(w, http.StatusOK, projectUser(user))
}

// --- contact submissions ---

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	filter := contacts.ListFilter{
		Limit:  intQuery(r, "limit"),
		Offset: intQuery(r, "offset"),
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := models.ContactStatus(raw)
		if !status.Valid() {
			JSONError(w, http.StatusBadRequest, "Unknown status")
			return
		}
		filter.Status = &status
	}

	subs, err := s.contacts.Submissions(r.Context(), filter)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	JSON(w, http.StatusOK, subs)
}

type contactPatch struct {
	Status string `json:"status"`
}

func (s *Server) handlePatchContact(w http.ResponseWriter, r *http.Request) {
	var req contactPatch
	if err := DecodeJSON(w, r, &req); err != nil {
		return
	}

	status := models.ContactStatus(req.Status)
	if !status.Valid() {
		JSONError(w, http.StatusBadRequest, "Unknown status")
		return
	}

	if err := s.contacts.UpdateStatus(r.Context(), chi.URLParam(r, "id"), status); err != nil {
		writeRepoError(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// --- projects ---

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	filter := projects.ListFilter{
		Category: r.URL.Query().Get("category"),
		Limit:    intQuery(r, "limit"),
		Offset:   intQuery(r, "offset"),
	}
	if raw := r.URL.Query().Get("featured"); raw != "" {
		featured := raw == "true"
		filter.Featured = &featured
	}

	list, err := s.content.Projects(r.Context(), filter)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	JSON(w, http.StatusOK, list)
}

type projectRequest struct {
	Title       string  `json:"title"`
	Slug        string  `json:"slug"`
	Summary     string  `json:"summary"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	ImageKey    *string `json:"imageKey"`
	Featured    bool    `json:"featured"`
	SortOrder   int     `json:"sortOrder"`
}

func (req projectRequest) model() *models.Project {
	return &models.Project{
		Title:       req.Title,
		Slug:        req.Slug,
		Summary:     req.Summary,
		Description: req.Description,
		Category:    req.Category,
		ImageKey:    req.ImageKey,
		Featured:    req.Featured,
		SortOrder:   req.SortOrder,
	}
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		return
	}
	if req.Title == "" || req.Slug == "" {
		JSONError(w, http.StatusBadRequest, "Title and slug are required")
		return
	}

	created, err := s.content.CreateProject(r.Context(), req.model())
	if err != nil {
		writeRepoError(w, err)
		return
	}
	JSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.content.Project(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeRepoError(w, err)
		return
	}
	JSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		return
	}

	p := req.model()
	p.ID = chi.URLParam(r, "id")

	if err := s.content.UpdateProject(r.Context(), p); err != nil {
		writeRepoError(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.content.DeleteProject(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeRepoError(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// --- team ---

type teamMemberRequest struct {
	Name      string  `json:"name"`
	Title     string  `json:"title"`
	Bio       string  `json:"bio"`
	ImageKey  *string `json:"imageKey"`
	SortOrder int     `json:"sortOrder"`
}

func (req teamMemberRequest) model() *models.TeamMember {
	return &models.TeamMember{
		Name:      req.Name,
		Title:     req.Title,
		Bio:       req.Bio,
		ImageKey:  req.ImageKey,
		SortOrder: req.SortOrder,
	}
}

func (s *Server) handleListTeam(w http.ResponseWriter, r *http.Request) {
	list, err := s.content.TeamMembers(r.Context(), intQuery(r, "limit"), intQuery(r, "offset"))
	if err != nil {
		writeRepoError(w, err)
		return
	}
	JSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateTeamMember(w http.ResponseWriter, r *http.Request) {
	var req teamMemberRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		return
	}
	if req.Name == "" {
		JSONError(w, http.StatusBadRequest, "Name is required")
		return
	}

	created, err := s.content.CreateTeamMember(r.Context(), req.model())
	if err != nil {
		writeRepoError(w, err)
		return
	}
	JSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetTeamMember(w http.ResponseWriter, r *http.Request) {
	m, err := s.content.TeamMember(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeRepoError(w, err)
		return
	}
	JSON(w, http.StatusOK, m)
}

func (s *Server) handleUpdateTeamMember(w http.ResponseWriter, r *http.Request) {
	var req teamMemberRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		return
	}

	m := req.model()
	m.ID = chi.URLParam(r, "id")

	if err := s.content.UpdateTeamMember(r.Context(), m); err != nil {
		writeRepoError(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleDeleteTeamMember(w http.ResponseWriter, r *http.Request) {
	if err := s.content.DeleteTeamMember(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeRepoError(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// --- uploads ---

// handleCreateUpload returns a presigned PUT URL plus the object key the
// client must store back on the entity as imageKey.
func (s *Server) handleCreateUpload(w http.ResponseWriter, r *http.Request) {
	url, key, err := s.content.PresignedUploadURL(r.Context())
	if err != nil {
		s.logger.Error(r.Context(), "presigning upload failed", "error", err)
		JSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	JSON(w, http.StatusOK, map[string]string{"url": url, "key": key})
}

func (s *Server) handleGetUpload(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		JSONError(w, http.StatusBadRequest, "Key is required")
		return
	}

	url, err := s.content.PresignedGetURL(r.Context(), key)
	if err != nil {
		s.logger.Error(r.Context(), "presigning download failed", "error", err)
		JSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	JSON(w, http.StatusOK, map[string]string{"url": url})
}
