// Package handlers implements the HTTP endpoints for submitting and tracking
// generation jobs and for managing prompt templates.
package handlers

import (
	"encoding/json"
	"net/http"

	"fitserver/internal/domain"
	"fitserver/internal/infra"
)

type App struct {
	Config  *infra.Config
	Logger  infra.Logger
	Jobs    domain.JobStore
	Prompts domain.PromptRegistry
}

func NewApp(cfg *infra.Config, logger infra.Logger, jobs domain.JobStore, prompts domain.PromptRegistry) *App {
	return &App{Config: cfg, Logger: logger, Jobs: jobs, Prompts: prompts}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}

// currentUserID reads the caller identity set by the gateway. The API trusts
// the header; authentication happens upstream.
func (a *App) currentUserID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}
