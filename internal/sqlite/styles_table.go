package sqlite

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/mesh-intelligence/styles/internal/paramcodec"
	"github.com/mesh-intelligence/styles/pkg/types"
)

const styleItemColumns = "num, module, operation, op_params, enabled, blendop_params, blendop_version, multi_priority, multi_name"

// StyleStore persists style headers and their ordered items.
type StyleStore struct {
	backend *Backend
	namer   types.ModuleNamer
}

// NewStyleStore returns a store bound to b. namer renders display labels for
// ListItems; nil shows canonical operation names.
func NewStyleStore(b *Backend, namer types.ModuleNamer) *StyleStore {
	return &StyleStore{backend: b, namer: namer}
}

// CreateHeader inserts a new style row and returns its id.
// Returns ErrStyleExists if a style with that name is already stored.
func (s *StyleStore) CreateHeader(ctx context.Context, name, description string) (int64, error) {
	var id int64
	err := s.backend.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = createHeader(ctx, tx, name, description)
		return err
	})
	return id, err
}

// CreateStyle inserts a header and its items in one transaction.
func (s *StyleStore) CreateStyle(ctx context.Context, name, description string, items []types.StyleItem) (int64, error) {
	var id int64
	err := s.backend.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		if id, err = createHeader(ctx, tx, name, description); err != nil {
			return err
		}
		return insertItems(ctx, tx, id, items)
	})
	return id, err
}

// Exists reports whether a style named name is stored.
func (s *StyleStore) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.GetID(ctx, name)
	if errors.Is(err, types.ErrStyleNotFound) {
		return false, nil
	}
	return err == nil, err
}

// GetID returns the id of the style named name. Legacy libraries may hold
// several rows with one name; the most recently created one wins.
// Returns ErrStyleNotFound if there is none.
func (s *StyleStore) GetID(ctx context.Context, name string) (int64, error) {
	db, err := s.backend.conn()
	if err != nil {
		return 0, err
	}
	return styleID(ctx, db, name)
}

// GetDescription returns the description of the style named name.
func (s *StyleStore) GetDescription(ctx context.Context, name string) (string, error) {
	db, err := s.backend.conn()
	if err != nil {
		return "", err
	}
	id, err := styleID(ctx, db, name)
	if err != nil {
		return "", err
	}
	var desc sql.NullString
	if err := db.QueryRowContext(ctx,
		"SELECT description FROM styles WHERE id = ?", id).Scan(&desc); err != nil {
		return "", fmt.Errorf("reading description: %w", err)
	}
	return desc.String, nil
}

// List returns the styles whose name or description contains filter,
// ordered by name. The match follows SQLite LIKE collation (ASCII
// case-insensitive). An empty filter lists every style.
func (s *StyleStore) List(ctx context.Context, filter string) ([]types.Style, error) {
	db, err := s.backend.conn()
	if err != nil {
		return nil, err
	}
	pattern := "%" + escapeLike(filter) + "%"
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, description FROM styles
		WHERE name LIKE ?1 ESCAPE '\' OR description LIKE ?1 ESCAPE '\'
		ORDER BY name, id`, pattern)
	if err != nil {
		return nil, fmt.Errorf("listing styles: %w", err)
	}
	defer rows.Close()

	var out []types.Style
	for rows.Next() {
		var st types.Style
		var desc sql.NullString
		if err := rows.Scan(&st.ID, &st.Name, &desc); err != nil {
			return nil, fmt.Errorf("scanning style: %w", err)
		}
		st.Description = desc.String
		out = append(out, st)
	}
	return out, rows.Err()
}

// ListItems returns the items of the style named name ordered by num
// descending. An unknown style has no items.
//
// With includeParams false the result is for display only: Operation holds
// "<display name> (on|off)" and the blobs are nil. Such items must never be
// written back.
func (s *StyleStore) ListItems(ctx context.Context, name string, includeParams bool) ([]types.StyleItem, error) {
	db, err := s.backend.conn()
	if err != nil {
		return nil, err
	}
	id, err := styleID(ctx, db, name)
	if errors.Is(err, types.ErrStyleNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	items, err := selectItems(ctx, db, id, nil, true)
	if err != nil {
		return nil, err
	}
	if includeParams {
		return items, nil
	}
	for i := range items {
		items[i].Operation = s.label(items[i])
		items[i].OpParams = nil
		items[i].BlendopParams = nil
	}
	return items, nil
}

// ItemListString returns the display labels of a style's items, one per line.
func (s *StyleStore) ItemListString(ctx context.Context, name string) (string, error) {
	items, err := s.ListItems(ctx, name, false)
	if err != nil {
		return "", err
	}
	labels := make([]string, len(items))
	for i, it := range items {
		labels[i] = it.Operation
	}
	return strings.Join(labels, "\n"), nil
}

// Items returns the full items of style id ordered by num ascending. When
// only is non-empty, just the items whose num is listed are returned.
func (s *StyleStore) Items(ctx context.Context, id int64, only []int) ([]types.StyleItem, error) {
	db, err := s.backend.conn()
	if err != nil {
		return nil, err
	}
	return selectItems(ctx, db, id, only, false)
}

// InsertItems adds items to style id in one transaction.
func (s *StyleStore) InsertItems(ctx context.Context, id int64, items []types.StyleItem) error {
	return s.backend.withTx(ctx, func(tx *sql.Tx) error {
		return insertItems(ctx, tx, id, items)
	})
}

// ReplaceItems deletes every item of style id whose num is not in keep. An
// empty keep set leaves the items untouched.
func (s *StyleStore) ReplaceItems(ctx context.Context, id int64, keep []int) error {
	return s.backend.withTx(ctx, func(tx *sql.Tx) error {
		return pruneItems(ctx, tx, id, keep)
	})
}

// Update renames and redescribes the style named name and prunes its items
// to keep, all in one transaction. Renaming onto another stored style
// returns ErrStyleExists.
func (s *StyleStore) Update(ctx context.Context, name, newName, newDescription string, keep []int) error {
	if newName == "" {
		return types.ErrInvalidName
	}
	return s.backend.withTx(ctx, func(tx *sql.Tx) error {
		id, err := styleID(ctx, tx, name)
		if err != nil {
			return err
		}
		if newName != name {
			if _, err := styleID(ctx, tx, newName); err == nil {
				return fmt.Errorf("%w: %q", types.ErrStyleExists, newName)
			} else if !errors.Is(err, types.ErrStyleNotFound) {
				return err
			}
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE styles SET name = ?, description = ? WHERE id = ?",
			newName, newDescription, id); err != nil {
			return fmt.Errorf("updating style: %w", err)
		}
		return pruneItems(ctx, tx, id, keep)
	})
}

// Delete removes the style named name and all its items. It reports whether
// a style was removed; deleting an unknown style is not an error.
func (s *StyleStore) Delete(ctx context.Context, name string) (bool, error) {
	deleted := false
	err := s.backend.withTx(ctx, func(tx *sql.Tx) error {
		id, err := styleID(ctx, tx, name)
		if errors.Is(err, types.ErrStyleNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM style_items WHERE styleid = ?", id); err != nil {
			return fmt.Errorf("deleting style items: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM styles WHERE id = ?", id); err != nil {
			return fmt.Errorf("deleting style: %w", err)
		}
		deleted = true
		return nil
	})
	return deleted, err
}

// SaveItem inserts one item whose blobs are still in text form, decoding
// them first.
func (s *StyleStore) SaveItem(ctx context.Context, id int64, item types.EncodedStyleItem) error {
	return s.backend.withTx(ctx, func(tx *sql.Tx) error {
		return insertItems(ctx, tx, id, []types.StyleItem{decodeItem(item)})
	})
}

// ImportStyle creates a style from parsed file content. The header and all
// items commit together; a duplicate name writes nothing.
func (s *StyleStore) ImportStyle(ctx context.Context, name, description string, items []types.EncodedStyleItem) (int64, error) {
	decoded := make([]types.StyleItem, len(items))
	for i, it := range items {
		decoded[i] = decodeItem(it)
	}
	return s.CreateStyle(ctx, name, description, decoded)
}

func (s *StyleStore) label(it types.StyleItem) string {
	name := it.Operation
	if s.namer != nil {
		name = s.namer.DisplayName(it.Operation)
	}
	state := "off"
	if it.Enabled {
		state = "on"
	}
	return fmt.Sprintf("%s (%s)", name, state)
}

func decodeItem(it types.EncodedStyleItem) types.StyleItem {
	return types.StyleItem{
		Num:            it.Num,
		Module:         it.Module,
		Operation:      it.Operation,
		OpParams:       paramcodec.Decode(it.OpParams),
		Enabled:        it.Enabled,
		BlendopParams:  paramcodec.Decode(it.BlendopParams),
		BlendopVersion: it.BlendopVersion,
		MultiPriority:  it.MultiPriority,
		MultiName:      it.MultiName,
	}
}

func createHeader(ctx context.Context, q querier, name, description string) (int64, error) {
	if name == "" {
		return 0, types.ErrInvalidName
	}
	if _, err := styleID(ctx, q, name); err == nil {
		return 0, fmt.Errorf("%w: %q", types.ErrStyleExists, name)
	} else if !errors.Is(err, types.ErrStyleNotFound) {
		return 0, err
	}
	res, err := q.ExecContext(ctx,
		"INSERT INTO styles (name, description) VALUES (?, ?)", name, description)
	if err != nil {
		return 0, fmt.Errorf("inserting style: %w", err)
	}
	return res.LastInsertId()
}

func styleID(ctx context.Context, q querier, name string) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx,
		"SELECT id FROM styles WHERE name = ? ORDER BY id DESC LIMIT 1", name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %q", types.ErrStyleNotFound, name)
	}
	if err != nil {
		return 0, fmt.Errorf("looking up style: %w", err)
	}
	return id, nil
}

func insertItems(ctx context.Context, q querier, id int64, items []types.StyleItem) error {
	for _, it := range items {
		if _, err := q.ExecContext(ctx,
			"INSERT INTO style_items (styleid, "+styleItemColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			id, it.Num, it.Module, it.Operation, nonNil(it.OpParams), boolToInt(it.Enabled),
			nonNil(it.BlendopParams), it.BlendopVersion, it.MultiPriority, it.MultiName); err != nil {
			return fmt.Errorf("inserting style item %d: %w", it.Num, err)
		}
	}
	return nil
}

// selectItems reads the items of style id, restricted to the nums in only
// when it is non-empty. Large filters are queried in batches.
func selectItems(ctx context.Context, q querier, id int64, only []int, desc bool) ([]types.StyleItem, error) {
	order := " ORDER BY num"
	if desc {
		order += " DESC"
	}
	base := "SELECT " + styleItemColumns + " FROM style_items WHERE styleid = ?"

	if len(only) == 0 {
		return queryItems(ctx, q, base+order, id)
	}

	var out []types.StyleItem
	for _, batch := range batches(only) {
		args := []any{id}
		for _, n := range batch {
			args = append(args, n)
		}
		items, err := queryItems(ctx, q, base+" AND num IN ("+placeholders(len(batch))+")", args...)
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
	}
	sortItems(out, desc)
	return out, nil
}

func queryItems(ctx context.Context, q querier, query string, args ...any) ([]types.StyleItem, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying style items: %w", err)
	}
	defer rows.Close()

	var out []types.StyleItem
	for rows.Next() {
		var it types.StyleItem
		var enabled int
		if err := rows.Scan(&it.Num, &it.Module, &it.Operation, &it.OpParams, &enabled,
			&it.BlendopParams, &it.BlendopVersion, &it.MultiPriority, &it.MultiName); err != nil {
			return nil, fmt.Errorf("scanning style item: %w", err)
		}
		it.Enabled = enabled != 0
		it.OpParams = nonNil(it.OpParams)
		it.BlendopParams = nonNil(it.BlendopParams)
		out = append(out, it)
	}
	return out, rows.Err()
}

// pruneItems deletes the items of style id whose num is not in keep.
func pruneItems(ctx context.Context, q querier, id int64, keep []int) error {
	if len(keep) == 0 {
		return nil
	}
	kept := make(map[int]bool, len(keep))
	for _, n := range keep {
		kept[n] = true
	}

	rows, err := q.QueryContext(ctx, "SELECT num FROM style_items WHERE styleid = ?", id)
	if err != nil {
		return fmt.Errorf("reading item nums: %w", err)
	}
	var drop []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			rows.Close()
			return fmt.Errorf("scanning item num: %w", err)
		}
		if !kept[n] {
			drop = append(drop, n)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, batch := range batches(drop) {
		args := []any{id}
		for _, n := range batch {
			args = append(args, n)
		}
		if _, err := q.ExecContext(ctx,
			"DELETE FROM style_items WHERE styleid = ? AND num IN ("+placeholders(len(batch))+")",
			args...); err != nil {
			return fmt.Errorf("pruning style items: %w", err)
		}
	}
	return nil
}

// escapeLike escapes the LIKE wildcards in s for use with ESCAPE '\'.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func sortItems(items []types.StyleItem, desc bool) {
	slices.SortStableFunc(items, func(a, b types.StyleItem) int {
		if desc {
			return cmp.Compare(b.Num, a.Num)
		}
		return cmp.Compare(a.Num, b.Num)
	})
}
