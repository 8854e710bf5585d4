package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// AnyProject matches every source project in a redirect's from_project
const AnyProject = "*"

// Redirect maps a symbol seen in a metadata project to its source counterpart
type Redirect struct {
	FromSymbol  string
	FromProject string
	ToSymbol    string
	ToProject   string
	Reason      string
	CreatedAt   time.Time
}

// RedirectRepository provides CRUD over symbol_redirects
type RedirectRepository struct {
	db *DB
}

// NewRedirectRepository creates a new redirect repository
func NewRedirectRepository(db *DB) *RedirectRepository {
	return &RedirectRepository{db: db}
}

// Put inserts or replaces the redirect for (FromSymbol, FromProject)
func (r *RedirectRepository) Put(ctx context.Context, redirect *Redirect) error {
	if redirect.FromSymbol == "" || redirect.FromProject == "" {
		return fmt.Errorf("redirect source symbol and project are required")
	}
	if redirect.ToSymbol == "" || redirect.ToProject == "" {
		return fmt.Errorf("redirect target symbol and project are required")
	}
	if redirect.CreatedAt.IsZero() {
		redirect.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.conn.ExecContext(ctx, `
		INSERT INTO symbol_redirects (
			from_symbol, from_project, to_symbol, to_project, reason, created_at
		) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(from_symbol, from_project) DO UPDATE SET
			to_symbol = excluded.to_symbol,
			to_project = excluded.to_project,
			reason = excluded.reason,
			created_at = excluded.created_at
	`,
		redirect.FromSymbol,
		redirect.FromProject,
		redirect.ToSymbol,
		redirect.ToProject,
		redirect.Reason,
		redirect.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to store redirect: %w", err)
	}
	return nil
}

// Get returns the redirect for symbol in project, falling back to a
// wildcard row. It returns nil, nil when neither exists.
func (r *RedirectRepository) Get(ctx context.Context, symbol, project string) (*Redirect, error) {
	for _, from := range []string{project, AnyProject} {
		row := r.db.conn.QueryRowContext(ctx, `
			SELECT from_symbol, from_project, to_symbol, to_project, reason, created_at
			FROM symbol_redirects
			WHERE from_symbol = ? AND from_project = ?
		`, symbol, from)

		redirect, err := scanRedirect(row)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get redirect: %w", err)
		}
		return redirect, nil
	}
	return nil, nil
}

// Delete removes the redirect for (symbol, project). It reports whether a row
// was removed.
func (r *RedirectRepository) Delete(ctx context.Context, symbol, project string) (bool, error) {
	result, err := r.db.conn.ExecContext(ctx,
		"DELETE FROM symbol_redirects WHERE from_symbol = ? AND from_project = ?",
		symbol, project,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete redirect: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// List returns all redirects ordered by source project then symbol
func (r *RedirectRepository) List(ctx context.Context) ([]*Redirect, error) {
	rows, err := r.db.conn.QueryContext(ctx, `
		SELECT from_symbol, from_project, to_symbol, to_project, reason, created_at
		FROM symbol_redirects
		ORDER BY from_project, from_symbol
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list redirects: %w", err)
	}
	defer rows.Close()

	var redirects []*Redirect
	for rows.Next() {
		redirect, err := scanRedirect(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan redirect: %w", err)
		}
		redirects = append(redirects, redirect)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating redirects: %w", err)
	}
	return redirects, nil
}

// DeleteByTarget removes every redirect pointing at project, used when a
// source project leaves the workspace.
func (r *RedirectRepository) DeleteByTarget(ctx context.Context, project string) (int64, error) {
	var removed int64
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, "DELETE FROM symbol_redirects WHERE to_project = ?", project)
		if err != nil {
			return err
		}
		removed, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete redirects to %s: %w", project, err)
	}
	return removed, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRedirect(row rowScanner) (*Redirect, error) {
	var redirect Redirect
	var createdAt string
	if err := row.Scan(
		&redirect.FromSymbol,
		&redirect.FromProject,
		&redirect.ToSymbol,
		&redirect.ToProject,
		&redirect.Reason,
		&createdAt,
	); err != nil {
		return nil, err
	}

	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at format: %w", err)
	}
	redirect.CreatedAt = t
	return &redirect, nil
}
