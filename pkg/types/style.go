package types

import "fmt"

// Style is the header row of a stored style.
type Style struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// StyleItem is one entry in a style's ordered operation list.
// Items are ordered by Num descending for display and ascending when applied.
type StyleItem struct {
	Num            int    `json:"num"`
	Module         int    `json:"module"`
	Operation      string `json:"operation"` // canonical module name, never localized
	OpParams       []byte `json:"op_params,omitempty"`
	Enabled        bool   `json:"enabled"`
	BlendopParams  []byte `json:"blendop_params,omitempty"`
	BlendopVersion int    `json:"blendop_version"`
	MultiPriority  int    `json:"multi_priority"`
	MultiName      string `json:"multi_name"`
}

// EncodedStyleItem is a StyleItem whose two blobs are held in their printable
// text form. It is what the style file parser produces; the store decodes the
// blobs when the item is saved.
type EncodedStyleItem struct {
	Num            int
	Module         int
	Operation      string
	OpParams       string
	Enabled        bool
	BlendopParams  string
	BlendopVersion int
	MultiPriority  int
	MultiName      string
}

// HistoryEntry is one record of an image's edit history. It has the same
// shape as a StyleItem plus the owning image.
type HistoryEntry struct {
	ImageID        int64  `json:"imgid"`
	Num            int    `json:"num"`
	Module         int    `json:"module"`
	Operation      string `json:"operation"`
	OpParams       []byte `json:"op_params,omitempty"`
	Enabled        bool   `json:"enabled"`
	BlendopParams  []byte `json:"blendop_params,omitempty"`
	BlendopVersion int    `json:"blendop_version"`
	MultiPriority  int    `json:"multi_priority"`
	MultiName      string `json:"multi_name"`
}

// StyleItem converts the history entry into a style item, copying the blobs.
func (h HistoryEntry) StyleItem() StyleItem {
	return StyleItem{
		Num:            h.Num,
		Module:         h.Module,
		Operation:      h.Operation,
		OpParams:       cloneBytes(h.OpParams),
		Enabled:        h.Enabled,
		BlendopParams:  cloneBytes(h.BlendopParams),
		BlendopVersion: h.BlendopVersion,
		MultiPriority:  h.MultiPriority,
		MultiName:      h.MultiName,
	}
}

// HistoryEntry converts the item into a history entry for imgid whose Num is
// shifted by offset.
func (i StyleItem) HistoryEntry(imgid int64, offset int) HistoryEntry {
	return HistoryEntry{
		ImageID:        imgid,
		Num:            i.Num + offset,
		Module:         i.Module,
		Operation:      i.Operation,
		OpParams:       cloneBytes(i.OpParams),
		Enabled:        i.Enabled,
		BlendopParams:  cloneBytes(i.BlendopParams),
		BlendopVersion: i.BlendopVersion,
		MultiPriority:  i.MultiPriority,
		MultiName:      i.MultiName,
	}
}

// ShortcutLabel returns the shortcut registry label for a style name.
func ShortcutLabel(styleName string) string {
	return "styles/Apply " + styleName
}

// StyleTag returns the provenance tag attached to images a style was applied to.
func StyleTag(styleName string) string {
	return "style|" + styleName
}

// ApplyMode selects how a style's items are merged into an image history.
type ApplyMode string

// Apply modes. Append is the default.
const (
	ApplyAppend  ApplyMode = "append"
	ApplyReplace ApplyMode = "replace"
)

// ParseApplyMode converts s into an ApplyMode. The empty string is Append.
func ParseApplyMode(s string) (ApplyMode, error) {
	switch ApplyMode(s) {
	case "", ApplyAppend:
		return ApplyAppend, nil
	case ApplyReplace:
		return ApplyReplace, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
