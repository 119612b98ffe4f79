package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"fitserver/internal/domain"
)

type promptResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Version     string    `json:"version"`
	Description string    `json:"description,omitempty"`
	Template    string    `json:"template"`
	Policy      string    `json:"versioning_policy"`
	CreatedAt   time.Time `json:"created_at"`
}

func toPromptResponse(tpl *domain.PromptTemplate) promptResponse {
	return promptResponse{
		ID:          tpl.ID,
		Name:        tpl.Name,
		Version:     tpl.Version,
		Description: tpl.Description,
		Template:    tpl.Template,
		Policy:      string(tpl.Policy),
		CreatedAt:   tpl.CreatedAt,
	}
}

// GetPrompt returns the active (latest-created) template for a name.
func (a *App) GetPrompt(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	tpl, err := a.Prompts.Resolve(r.Context(), name)
	if err != nil {
		a.promptError(w, name, err)
		return
	}
	a.json(w, http.StatusOK, toPromptResponse(tpl))
}

// GetPromptVersion returns one exact (name, version) template.
func (a *App) GetPromptVersion(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	version := chi.URLParam(r, "version")
	tpl, err := a.Prompts.Get(r.Context(), name, version)
	if err != nil {
		a.promptError(w, name, err)
		return
	}
	a.json(w, http.StatusOK, toPromptResponse(tpl))
}

func (a *App) promptError(w http.ResponseWriter, name string, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		a.error(w, http.StatusNotFound, "not_found", "prompt not found")
		return
	}
	a.Logger.Error().Err(err).Str("prompt", name).Msg("prompts: load failed")
	a.error(w, http.StatusInternalServerError, "internal", "failed to load prompt")
}

type createPromptRequest struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	Template    string `json:"template"`
	Policy      string `json:"versioning_policy"`
}

// CreatePrompt registers a new template revision. With the upsert policy the
// existing row for the name is overwritten and becomes the active revision.
func (a *App) CreatePrompt(w http.ResponseWriter, r *http.Request) {
	var req createPromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Version = strings.TrimSpace(req.Version)
	if req.Name == "" || req.Version == "" || strings.TrimSpace(req.Template) == "" {
		a.error(w, http.StatusBadRequest, "invalid_input", "name, version and template are required")
		return
	}
	policy := domain.VersioningPolicy(req.Policy)
	if policy == "" {
		policy = domain.PolicyAppend
	}
	if policy != domain.PolicyAppend && policy != domain.PolicyUpsert {
		a.error(w, http.StatusBadRequest, "invalid_input", "versioning_policy must be append or upsert")
		return
	}

	tpl := &domain.PromptTemplate{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Version:     req.Version,
		Description: req.Description,
		Template:    req.Template,
		Policy:      policy,
	}
	if err := a.Prompts.Save(r.Context(), tpl); err != nil {
		a.Logger.Error().Err(err).Str("prompt", req.Name).Msg("prompts: save failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to save prompt")
		return
	}
	// Re-read the stored row: an upsert keeps the original row id.
	stored, err := a.Prompts.Get(r.Context(), req.Name, req.Version)
	if err != nil {
		a.json(w, http.StatusCreated, toPromptResponse(tpl))
		return
	}
	a.json(w, http.StatusCreated, toPromptResponse(stored))
}
