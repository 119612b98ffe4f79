package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"fitserver/internal/domain"
	"fitserver/internal/infra"
	"fitserver/internal/sqlinline"
)

// PromptRegistryPG implements domain.PromptRegistry on Postgres. Templates
// are append-only rows; "latest" is resolved by creation order, so a reader
// racing a writer always sees a consistent, fully written row.
type PromptRegistryPG struct {
	sql infra.SQLExecutor
}

func NewPromptRegistry(sql infra.SQLExecutor) *PromptRegistryPG {
	return &PromptRegistryPG{sql: sql}
}

// Resolve returns the latest-created template for name.
func (r *PromptRegistryPG) Resolve(ctx context.Context, name string) (*domain.PromptTemplate, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QResolveLatestPrompt, name)
	return scanPrompt(row)
}

// Get returns the exact (name, version) template.
func (r *PromptRegistryPG) Get(ctx context.Context, name, version string) (*domain.PromptTemplate, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QGetPrompt, name, version)
	return scanPrompt(row)
}

// Save persists a template. Append policy inserts a new (name, version) row;
// upsert policy overwrites the single row keyed by name, inserting it on
// first use.
func (r *PromptRegistryPG) Save(ctx context.Context, tpl *domain.PromptTemplate) error {
	if tpl.Policy == "" {
		tpl.Policy = domain.PolicyAppend
	}
	if tpl.ID == "" {
		tpl.ID = uuid.NewString()
	}
	if tpl.Policy == domain.PolicyUpsert {
		tag, err := r.sql.Exec(ctx, sqlinline.QOverwritePromptByName,
			tpl.Name, tpl.Version, tpl.Description, tpl.Template, tpl.Policy)
		if err != nil {
			return fmt.Errorf("overwrite prompt %q: %w", tpl.Name, err)
		}
		if tag.RowsAffected() > 0 {
			return nil
		}
		// First revision under upsert policy falls through to insert.
	}
	if _, err := r.sql.Exec(ctx, sqlinline.QInsertPrompt,
		tpl.ID, tpl.Name, tpl.Version, tpl.Description, tpl.Template, tpl.Policy); err != nil {
		return fmt.Errorf("insert prompt %q: %w", tpl.Name, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPrompt(row rowScanner) (*domain.PromptTemplate, error) {
	var tpl domain.PromptTemplate
	if err := row.Scan(
		&tpl.ID,
		&tpl.Name,
		&tpl.Version,
		&tpl.Description,
		&tpl.Template,
		&tpl.Policy,
		&tpl.CreatedAt,
	); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &tpl, nil
}

var _ domain.PromptRegistry = (*PromptRegistryPG)(nil)
