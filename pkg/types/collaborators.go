package types

import "context"

// HistoryProvider gives the style engine access to image edit histories and
// to the editor that may currently have one of those images open.
type HistoryProvider interface {
	// HistoryEntries returns the history of imgid ordered by Num ascending.
	HistoryEntries(ctx context.Context, imgid int64) ([]HistoryEntry, error)

	// AppendHistory inserts entries into the history of imgid. The entries
	// are written atomically: either all of them land or none do.
	AppendHistory(ctx context.Context, imgid int64, entries []HistoryEntry) error

	// ClearHistory removes every history entry of imgid.
	ClearHistory(ctx context.Context, imgid int64) error

	// RemoveOperations deletes the history entries of imgid whose operation
	// is one of ops and returns how many were removed.
	RemoveOperations(ctx context.Context, imgid int64, ops []string) (int64, error)

	// IsCurrentlyOpen reports whether imgid is loaded in the editor.
	IsCurrentlyOpen(imgid int64) bool

	// ReloadHistory asks the editor to reload the in-memory history of imgid
	// and reapply its module grouping.
	ReloadHistory(ctx context.Context, imgid int64) error
}

// TagRegistry creates tags and attaches them to images.
type TagRegistry interface {
	EnsureTag(ctx context.Context, label string) (string, error)
	Attach(ctx context.Context, tagID string, imgid int64) error
}

// ThumbnailCache drops cached thumbnails of an image.
type ThumbnailCache interface {
	Invalidate(imgid int64) error
}

// Redrawer queues a redraw of the image view.
type Redrawer interface {
	QueueRedraw()
}

// ShortcutRegistry owns keyboard shortcut labels and the style names bound
// to them. The registry keeps its own copy of every name it is handed.
type ShortcutRegistry interface {
	Register(label string)
	Deregister(label string)
	Bind(label, styleName string)
}

// Notifier shows messages to the user.
type Notifier interface {
	Log(msg string)
	Errorf(format string, args ...any)
}

// Selection yields the images currently selected by the user.
type Selection interface {
	SelectedImages(ctx context.Context) ([]int64, error)
}

// ImageDuplicator creates a duplicate of an image and returns its id.
type ImageDuplicator interface {
	Duplicate(ctx context.Context, imgid int64) (int64, error)
}

// ModuleNamer maps a canonical operation name to its display name.
type ModuleNamer interface {
	DisplayName(operation string) string
}

// StylePrompter asks the user for the name, description and item filter of
// a new style built from imgid. ok is false when the user cancels.
type StylePrompter interface {
	Prompt(imgid int64) (name, description string, filter []int, ok bool)
}
