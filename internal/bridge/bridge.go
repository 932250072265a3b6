// Package bridge moves edit-stack entries between image histories and
// styles: it captures a history (or another style) as style items, and
// merges a style's items back onto an image history.
package bridge

import (
	"context"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/styles/pkg/types"
)

// ItemSource is the part of the style store the bridge reads from.
type ItemSource interface {
	GetID(ctx context.Context, name string) (int64, error)
	Items(ctx context.Context, id int64, only []int) ([]types.StyleItem, error)
}

// Collaborators are the external services the bridge notifies after it has
// changed an image history. Only History is required.
type Collaborators struct {
	History    types.HistoryProvider
	Tags       types.TagRegistry
	Thumbnails types.ThumbnailCache
	View       types.Redrawer
	Duplicator types.ImageDuplicator
}

// ApplyOptions control how Apply merges a style.
type ApplyOptions struct {
	Mode      types.ApplyMode
	Duplicate bool // apply to a fresh duplicate of the image
}

// historyReplacer is implemented by history providers that can clear and
// refill a history in one transaction.
type historyReplacer interface {
	ReplaceHistory(ctx context.Context, imgid int64, entries []types.HistoryEntry) error
}

// Bridge translates between history entries and style items.
type Bridge struct {
	source ItemSource
	c      Collaborators
}

// New returns a Bridge reading style items from source.
func New(source ItemSource, c Collaborators) *Bridge {
	return &Bridge{source: source, c: c}
}

// FromImage returns the history of imgid as style items, keeping only the
// entries whose num is in filter when filter is non-empty. Blobs are copied
// as-is.
func (b *Bridge) FromImage(ctx context.Context, imgid int64, filter []int) ([]types.StyleItem, error) {
	entries, err := b.c.History.HistoryEntries(ctx, imgid)
	if err != nil {
		return nil, fmt.Errorf("reading history of image %d: %w", imgid, err)
	}
	keep := numSet(filter)
	items := make([]types.StyleItem, 0, len(entries))
	for _, e := range entries {
		if keep != nil && !keep[e.Num] {
			continue
		}
		items = append(items, e.StyleItem())
	}
	return items, nil
}

// FromStyle returns the items of style sourceID, restricted to filter when
// it is non-empty.
func (b *Bridge) FromStyle(ctx context.Context, sourceID int64, filter []int) ([]types.StyleItem, error) {
	items, err := b.source.Items(ctx, sourceID, filter)
	if err != nil {
		return nil, fmt.Errorf("reading style items: %w", err)
	}
	return items, nil
}

// Apply merges the style named name onto the history of imgid and returns
// the id of the image that received it (a new duplicate when
// opts.Duplicate is set).
//
// In append mode every item lands at num+N where N is the current history
// length, so existing entries keep their nums. In replace mode the history
// is cleared first. After a successful copy Apply tags the image, reloads
// it if it is open in the editor, invalidates its thumbnails and queues a
// redraw, in that order. Nothing happens on failure.
func (b *Bridge) Apply(ctx context.Context, name string, imgid int64, opts ApplyOptions) (int64, error) {
	mode, err := types.ParseApplyMode(string(opts.Mode))
	if err != nil {
		return 0, err
	}
	id, err := b.source.GetID(ctx, name)
	if err != nil {
		return 0, err
	}

	if opts.Duplicate {
		if b.c.Duplicator == nil {
			return 0, errors.New("no image duplicator configured")
		}
		if imgid, err = b.c.Duplicator.Duplicate(ctx, imgid); err != nil {
			return 0, fmt.Errorf("duplicating image: %w", err)
		}
	}

	items, err := b.source.Items(ctx, id, nil)
	if err != nil {
		return 0, fmt.Errorf("reading style items: %w", err)
	}

	offset := 0
	if mode == types.ApplyAppend {
		current, err := b.c.History.HistoryEntries(ctx, imgid)
		if err != nil {
			return 0, fmt.Errorf("reading history of image %d: %w", imgid, err)
		}
		offset = len(current)
	}

	entries := make([]types.HistoryEntry, len(items))
	for i, it := range items {
		entries[i] = it.HistoryEntry(imgid, offset)
	}

	if err := b.write(ctx, mode, imgid, entries); err != nil {
		return 0, err
	}

	return imgid, b.applied(ctx, name, imgid)
}

// Remove deletes from the history of imgid every entry whose operation
// appears anywhere in the style named name. Matching is by operation name
// only, so entries that did not come from the style are removed too when
// they share an operation. Returns the number of entries removed.
func (b *Bridge) Remove(ctx context.Context, name string, imgid int64) (int64, error) {
	id, err := b.source.GetID(ctx, name)
	if err != nil {
		return 0, err
	}
	items, err := b.source.Items(ctx, id, nil)
	if err != nil {
		return 0, fmt.Errorf("reading style items: %w", err)
	}

	seen := make(map[string]bool)
	var ops []string
	for _, it := range items {
		if !seen[it.Operation] {
			seen[it.Operation] = true
			ops = append(ops, it.Operation)
		}
	}

	n, err := b.c.History.RemoveOperations(ctx, imgid, ops)
	if err != nil {
		return 0, fmt.Errorf("removing style from image %d: %w", imgid, err)
	}

	var errs []error
	if b.c.Thumbnails != nil {
		if err := b.c.Thumbnails.Invalidate(imgid); err != nil {
			errs = append(errs, fmt.Errorf("invalidating thumbnails: %w", err))
		}
	}
	if b.c.View != nil {
		b.c.View.QueueRedraw()
	}
	return n, errors.Join(errs...)
}

func (b *Bridge) write(ctx context.Context, mode types.ApplyMode, imgid int64, entries []types.HistoryEntry) error {
	if mode == types.ApplyReplace {
		if r, ok := b.c.History.(historyReplacer); ok {
			if err := r.ReplaceHistory(ctx, imgid, entries); err != nil {
				return fmt.Errorf("replacing history of image %d: %w", imgid, err)
			}
			return nil
		}
		if err := b.c.History.ClearHistory(ctx, imgid); err != nil {
			return fmt.Errorf("clearing history of image %d: %w", imgid, err)
		}
	}
	if err := b.c.History.AppendHistory(ctx, imgid, entries); err != nil {
		return fmt.Errorf("writing history of image %d: %w", imgid, err)
	}
	return nil
}

// applied runs the post-copy side effects. All of them run even when an
// earlier one fails; the failures are joined.
func (b *Bridge) applied(ctx context.Context, name string, imgid int64) error {
	var errs []error

	if b.c.Tags != nil {
		tagID, err := b.c.Tags.EnsureTag(ctx, types.StyleTag(name))
		if err == nil {
			err = b.c.Tags.Attach(ctx, tagID, imgid)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("tagging image %d: %w", imgid, err))
		}
	}

	if b.c.History.IsCurrentlyOpen(imgid) {
		if err := b.c.History.ReloadHistory(ctx, imgid); err != nil {
			errs = append(errs, fmt.Errorf("reloading editor history: %w", err))
		}
	}

	if b.c.Thumbnails != nil {
		if err := b.c.Thumbnails.Invalidate(imgid); err != nil {
			errs = append(errs, fmt.Errorf("invalidating thumbnails: %w", err))
		}
	}

	if b.c.View != nil {
		b.c.View.QueueRedraw()
	}
	return errors.Join(errs...)
}

func numSet(nums []int) map[int]bool {
	if len(nums) == 0 {
		return nil
	}
	set := make(map[int]bool, len(nums))
	for _, n := range nums {
		set[n] = true
	}
	return set
}
