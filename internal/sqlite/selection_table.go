package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/styles/pkg/types"
)

// SelectionTable implements types.Selection over selected_images.
type SelectionTable struct {
	backend *Backend
}

var _ types.Selection = (*SelectionTable)(nil)

// NewSelectionTable returns a selection accessor bound to b.
func NewSelectionTable(b *Backend) *SelectionTable {
	return &SelectionTable{backend: b}
}

// SelectedImages returns the selected image ids in ascending order.
func (t *SelectionTable) SelectedImages(ctx context.Context) ([]int64, error) {
	db, err := t.backend.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, "SELECT imgid FROM selected_images ORDER BY imgid")
	if err != nil {
		return nil, fmt.Errorf("querying selection: %w", err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning selection: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// Select replaces the selection with ids. Every id must name an image.
func (t *SelectionTable) Select(ctx context.Context, ids ...int64) error {
	return t.backend.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM selected_images"); err != nil {
			return fmt.Errorf("clearing selection: %w", err)
		}
		for _, id := range ids {
			if err := requireImage(ctx, tx, id); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				"INSERT OR IGNORE INTO selected_images (imgid) VALUES (?)", id); err != nil {
				return fmt.Errorf("selecting image: %w", err)
			}
		}
		return nil
	})
}

// Clear empties the selection.
func (t *SelectionTable) Clear(ctx context.Context) error {
	return t.Select(ctx)
}
