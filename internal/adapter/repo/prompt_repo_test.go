package repo

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitserver/internal/domain"
)

type fakeRow struct {
	vals []any
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = r.vals[i].(string)
		case *domain.VersioningPolicy:
			*p = domain.VersioningPolicy(r.vals[i].(string))
		case *time.Time:
			*p = r.vals[i].(time.Time)
		}
	}
	return nil
}

func TestScanPrompt(t *testing.T) {
	t.Run("maps columns in order", func(t *testing.T) {
		created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		tpl, err := scanPrompt(fakeRow{vals: []any{
			"id-1", "coach_chat", "v2", "short replies", "Be brief.", "append", created,
		}})
		require.NoError(t, err)
		assert.Equal(t, "id-1", tpl.ID)
		assert.Equal(t, "coach_chat", tpl.Name)
		assert.Equal(t, "v2", tpl.Version)
		assert.Equal(t, domain.PolicyAppend, tpl.Policy)
		assert.Equal(t, created, tpl.CreatedAt)
	})

	t.Run("no rows maps to domain.ErrNotFound", func(t *testing.T) {
		_, err := scanPrompt(fakeRow{err: pgx.ErrNoRows})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

type execCall struct {
	query string
	args  []any
}

type recordingExecutor struct {
	calls []execCall
	tags  []pgconn.CommandTag
}

func (e *recordingExecutor) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	e.calls = append(e.calls, execCall{query: query, args: args})
	tag := pgconn.NewCommandTag("INSERT 0 1")
	if len(e.tags) > 0 {
		tag, e.tags = e.tags[0], e.tags[1:]
	}
	return tag, nil
}

func (e *recordingExecutor) QueryRow(context.Context, string, ...any) pgx.Row {
	return fakeRow{err: pgx.ErrNoRows}
}

func (e *recordingExecutor) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, pgx.ErrNoRows
}

func TestPromptRegistrySave(t *testing.T) {
	ctx := context.Background()
	upsertTpl := func() *domain.PromptTemplate {
		return &domain.PromptTemplate{
			Name:        "coach_chat",
			Version:     "v3",
			Description: "short replies",
			Template:    "Be brief.",
			Policy:      domain.PolicyUpsert,
		}
	}

	t.Run("upsert overwrites latest row including policy", func(t *testing.T) {
		sql := &recordingExecutor{tags: []pgconn.CommandTag{pgconn.NewCommandTag("UPDATE 1")}}
		require.NoError(t, NewPromptRegistry(sql).Save(ctx, upsertTpl()))

		require.Len(t, sql.calls, 1)
		assert.Contains(t, sql.calls[0].query, "versioning_policy = $5")
		assert.Contains(t, sql.calls[0].query, "order by created_at desc")
		assert.Contains(t, sql.calls[0].query, "limit 1")
		require.Len(t, sql.calls[0].args, 5)
		assert.Equal(t, domain.PolicyUpsert, sql.calls[0].args[4])
	})

	t.Run("first upsert revision falls through to insert", func(t *testing.T) {
		sql := &recordingExecutor{tags: []pgconn.CommandTag{pgconn.NewCommandTag("UPDATE 0")}}
		require.NoError(t, NewPromptRegistry(sql).Save(ctx, upsertTpl()))

		require.Len(t, sql.calls, 2)
		assert.Contains(t, sql.calls[1].query, "insert into ai_prompts")
	})

	t.Run("append policy inserts a new version row", func(t *testing.T) {
		sql := &recordingExecutor{}
		tpl := upsertTpl()
		tpl.Policy = domain.PolicyAppend
		require.NoError(t, NewPromptRegistry(sql).Save(ctx, tpl))

		require.Len(t, sql.calls, 1)
		assert.False(t, strings.Contains(sql.calls[0].query, "update ai_prompts"))
		assert.Contains(t, sql.calls[0].query, "insert into ai_prompts")
	})
}
