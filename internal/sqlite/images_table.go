package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/styles/pkg/types"
)

// Image is a row of the images table.
type Image struct {
	ID       int64  `json:"id"`
	Filename string `json:"filename"`
	Version  int    `json:"version"`
}

// ImagesTable manages the images of the library and implements
// types.ImageDuplicator.
type ImagesTable struct {
	backend *Backend
}

var _ types.ImageDuplicator = (*ImagesTable)(nil)

// NewImagesTable returns an images accessor bound to b.
func NewImagesTable(b *Backend) *ImagesTable {
	return &ImagesTable{backend: b}
}

// Add registers filename as a new image and returns its id.
func (t *ImagesTable) Add(ctx context.Context, filename string) (int64, error) {
	db, err := t.backend.conn()
	if err != nil {
		return 0, err
	}
	res, err := db.ExecContext(ctx, "INSERT INTO images (filename, version) VALUES (?, 0)", filename)
	if err != nil {
		return 0, fmt.Errorf("inserting image: %w", err)
	}
	return res.LastInsertId()
}

// Get returns the image with the given id.
func (t *ImagesTable) Get(ctx context.Context, id int64) (Image, error) {
	db, err := t.backend.conn()
	if err != nil {
		return Image{}, err
	}
	return getImage(ctx, db, id)
}

// List returns every image ordered by id.
func (t *ImagesTable) List(ctx context.Context) ([]Image, error) {
	db, err := t.backend.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, "SELECT id, filename, version FROM images ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing images: %w", err)
	}
	defer rows.Close()

	var out []Image
	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.ID, &img.Filename, &img.Version); err != nil {
			return nil, fmt.Errorf("scanning image: %w", err)
		}
		out = append(out, img)
	}
	return out, rows.Err()
}

// Duplicate creates a new version of image id with an empty history.
func (t *ImagesTable) Duplicate(ctx context.Context, id int64) (int64, error) {
	var newID int64
	err := t.backend.withTx(ctx, func(tx *sql.Tx) error {
		img, err := getImage(ctx, tx, id)
		if err != nil {
			return err
		}
		var maxVersion int
		if err := tx.QueryRowContext(ctx,
			"SELECT COALESCE(MAX(version), 0) FROM images WHERE filename = ?",
			img.Filename).Scan(&maxVersion); err != nil {
			return fmt.Errorf("reading image versions: %w", err)
		}
		res, err := tx.ExecContext(ctx,
			"INSERT INTO images (filename, version) VALUES (?, ?)", img.Filename, maxVersion+1)
		if err != nil {
			return fmt.Errorf("inserting duplicate: %w", err)
		}
		newID, err = res.LastInsertId()
		return err
	})
	return newID, err
}

func getImage(ctx context.Context, q querier, id int64) (Image, error) {
	var img Image
	err := q.QueryRowContext(ctx,
		"SELECT id, filename, version FROM images WHERE id = ?", id).
		Scan(&img.ID, &img.Filename, &img.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return Image{}, fmt.Errorf("%w: %d", types.ErrImageNotFound, id)
	}
	if err != nil {
		return Image{}, fmt.Errorf("reading image: %w", err)
	}
	return img, nil
}

func requireImage(ctx context.Context, q querier, id int64) error {
	_, err := getImage(ctx, q, id)
	return err
}
