package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/styles/pkg/types"
)

// TagsTable implements types.TagRegistry. Tag ids are UUID v7 strings.
type TagsTable struct {
	backend *Backend
}

var _ types.TagRegistry = (*TagsTable)(nil)

// NewTagsTable returns a tag registry bound to b.
func NewTagsTable(b *Backend) *TagsTable {
	return &TagsTable{backend: b}
}

// EnsureTag returns the id of the tag named label, creating it if needed.
func (t *TagsTable) EnsureTag(ctx context.Context, label string) (string, error) {
	var id string
	err := t.backend.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, "SELECT tag_id FROM tags WHERE name = ?", label).Scan(&id)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("looking up tag: %w", err)
		}
		id = generateUUID()
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO tags (tag_id, name) VALUES (?, ?)", id, label); err != nil {
			return fmt.Errorf("inserting tag: %w", err)
		}
		return nil
	})
	return id, err
}

// Attach tags imgid with tagID. Attaching twice is a no-op.
func (t *TagsTable) Attach(ctx context.Context, tagID string, imgid int64) error {
	db, err := t.backend.conn()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx,
		"INSERT OR IGNORE INTO tagged_images (imgid, tag_id) VALUES (?, ?)", imgid, tagID); err != nil {
		return fmt.Errorf("attaching tag: %w", err)
	}
	return nil
}

// ImageTags returns the tag names attached to imgid, sorted.
func (t *TagsTable) ImageTags(ctx context.Context, imgid int64) ([]string, error) {
	db, err := t.backend.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `
		SELECT t.name FROM tags t
		JOIN tagged_images ti ON ti.tag_id = t.tag_id
		WHERE ti.imgid = ?
		ORDER BY t.name`, imgid)
	if err != nil {
		return nil, fmt.Errorf("querying image tags: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning tag: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}
