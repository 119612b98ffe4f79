package domain

import "time"

// VersioningPolicy controls how new revisions of a prompt are persisted.
type VersioningPolicy string

const (
	// PolicyAppend inserts a new (name, version) row; history is kept.
	PolicyAppend VersioningPolicy = "append"
	// PolicyUpsert overwrites the single row keyed by name alone. Used for
	// admin-corrected prompts where old revisions must not resurface.
	PolicyUpsert VersioningPolicy = "upsert"
)

// PromptTemplate is an immutable versioned prompt. The active template for a
// name is the most recently created row, not the highest version string.
type PromptTemplate struct {
	ID          string
	Name        string
	Version     string
	Description string
	Template    string
	Policy      VersioningPolicy
	CreatedAt   time.Time
}
