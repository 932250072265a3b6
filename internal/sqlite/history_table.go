package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/mesh-intelligence/styles/pkg/types"
)

// HistoryTable implements types.HistoryProvider over the history table.
// The image reported as open in the editor is fixed at construction; reload
// requests for it are forwarded to the hook set with OnReload.
type HistoryTable struct {
	backend *Backend
	current int64

	mu       sync.Mutex
	onReload func(imgid int64)
}

var _ types.HistoryProvider = (*HistoryTable)(nil)

// NewHistoryTable returns a history accessor. currentImage is the id of the
// image open in the editor, 0 for none.
func NewHistoryTable(b *Backend, currentImage int64) *HistoryTable {
	return &HistoryTable{backend: b, current: currentImage}
}

// OnReload sets the function called by ReloadHistory.
func (h *HistoryTable) OnReload(fn func(imgid int64)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onReload = fn
}

// HistoryEntries returns the history of imgid ordered by num.
func (h *HistoryTable) HistoryEntries(ctx context.Context, imgid int64) ([]types.HistoryEntry, error) {
	db, err := h.backend.conn()
	if err != nil {
		return nil, err
	}
	return historyEntries(ctx, db, imgid)
}

// Count returns the number of history entries of imgid.
func (h *HistoryTable) Count(ctx context.Context, imgid int64) (int, error) {
	db, err := h.backend.conn()
	if err != nil {
		return 0, err
	}
	var n int
	if err := db.QueryRowContext(ctx,
		"SELECT COUNT(num) FROM history WHERE imgid = ?", imgid).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting history: %w", err)
	}
	return n, nil
}

// AppendHistory inserts entries into the history of imgid in one transaction.
// Returns ErrImageNotFound if imgid is not in the library.
func (h *HistoryTable) AppendHistory(ctx context.Context, imgid int64, entries []types.HistoryEntry) error {
	return h.backend.withTx(ctx, func(tx *sql.Tx) error {
		if err := requireImage(ctx, tx, imgid); err != nil {
			return err
		}
		return insertHistory(ctx, tx, imgid, entries)
	})
}

// ReplaceHistory clears the history of imgid and inserts entries, committing
// both steps together.
func (h *HistoryTable) ReplaceHistory(ctx context.Context, imgid int64, entries []types.HistoryEntry) error {
	return h.backend.withTx(ctx, func(tx *sql.Tx) error {
		if err := requireImage(ctx, tx, imgid); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM history WHERE imgid = ?", imgid); err != nil {
			return fmt.Errorf("clearing history: %w", err)
		}
		return insertHistory(ctx, tx, imgid, entries)
	})
}

// ClearHistory removes every history entry of imgid.
func (h *HistoryTable) ClearHistory(ctx context.Context, imgid int64) error {
	db, err := h.backend.conn()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM history WHERE imgid = ?", imgid); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	return nil
}

// RemoveOperations deletes the entries of imgid whose operation is in ops.
func (h *HistoryTable) RemoveOperations(ctx context.Context, imgid int64, ops []string) (int64, error) {
	var removed int64
	err := h.backend.withTx(ctx, func(tx *sql.Tx) error {
		for _, batch := range batches(ops) {
			args := []any{imgid}
			for _, op := range batch {
				args = append(args, op)
			}
			res, err := tx.ExecContext(ctx,
				"DELETE FROM history WHERE imgid = ? AND operation IN ("+placeholders(len(batch))+")",
				args...)
			if err != nil {
				return fmt.Errorf("removing history operations: %w", err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			removed += n
		}
		return nil
	})
	return removed, err
}

// IsCurrentlyOpen reports whether imgid is the image open in the editor.
func (h *HistoryTable) IsCurrentlyOpen(imgid int64) bool {
	return h.current != 0 && imgid == h.current
}

// ReloadHistory forwards to the OnReload hook, if any.
func (h *HistoryTable) ReloadHistory(ctx context.Context, imgid int64) error {
	h.mu.Lock()
	fn := h.onReload
	h.mu.Unlock()
	if fn != nil {
		fn(imgid)
	}
	return nil
}

func historyEntries(ctx context.Context, q querier, imgid int64) ([]types.HistoryEntry, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT "+styleItemColumns+" FROM history WHERE imgid = ? ORDER BY num", imgid)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var out []types.HistoryEntry
	for rows.Next() {
		e := types.HistoryEntry{ImageID: imgid}
		var enabled int
		if err := rows.Scan(&e.Num, &e.Module, &e.Operation, &e.OpParams, &enabled,
			&e.BlendopParams, &e.BlendopVersion, &e.MultiPriority, &e.MultiName); err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}
		e.Enabled = enabled != 0
		e.OpParams = nonNil(e.OpParams)
		e.BlendopParams = nonNil(e.BlendopParams)
		out = append(out, e)
	}
	return out, rows.Err()
}

func insertHistory(ctx context.Context, q querier, imgid int64, entries []types.HistoryEntry) error {
	for _, e := range entries {
		if _, err := q.ExecContext(ctx,
			"INSERT INTO history (imgid, "+styleItemColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			imgid, e.Num, e.Module, e.Operation, nonNil(e.OpParams), boolToInt(e.Enabled),
			nonNil(e.BlendopParams), e.BlendopVersion, e.MultiPriority, e.MultiName); err != nil {
			return fmt.Errorf("inserting history entry %d: %w", e.Num, err)
		}
	}
	return nil
}
