package styles

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mesh-intelligence/styles/internal/bridge"
	"github.com/mesh-intelligence/styles/internal/stylefile"
	"github.com/mesh-intelligence/styles/pkg/types"
)

// Store is the persistence the manager needs. *sqlite.StyleStore
// implements it.
type Store interface {
	CreateStyle(ctx context.Context, name, description string, items []types.StyleItem) (int64, error)
	Exists(ctx context.Context, name string) (bool, error)
	GetID(ctx context.Context, name string) (int64, error)
	GetDescription(ctx context.Context, name string) (string, error)
	List(ctx context.Context, filter string) ([]types.Style, error)
	ListItems(ctx context.Context, name string, includeParams bool) ([]types.StyleItem, error)
	ItemListString(ctx context.Context, name string) (string, error)
	Update(ctx context.Context, name, newName, newDescription string, keep []int) error
	Delete(ctx context.Context, name string) (bool, error)
	ImportStyle(ctx context.Context, name, description string, items []types.EncodedStyleItem) (int64, error)
}

// Options configure a Manager.
type Options struct {
	StylesDir string          // backup directory, created on first write
	ApplyMode types.ApplyMode // default mode for Apply
}

// Deps are the collaborators of a Manager. Store, Bridge and Notifier are
// required.
type Deps struct {
	Store     Store
	Bridge    *bridge.Bridge
	Shortcuts types.ShortcutRegistry
	Notifier  types.Notifier
	Selection types.Selection
	Prompter  types.StylePrompter
}

// Manager coordinates the style store, the history bridge and the style
// file codec.
type Manager struct {
	opts Options
	Deps
}

// New returns a Manager.
func New(opts Options, deps Deps) *Manager {
	return &Manager{opts: opts, Deps: deps}
}

// StylesDir returns the backup directory.
func (m *Manager) StylesDir() string { return m.opts.StylesDir }

// CreateFromImage creates style name from the history of imgid, keeping
// only the entries whose num is in filter when filter is non-empty.
func (m *Manager) CreateFromImage(ctx context.Context, name, description string, imgid int64, filter []int) error {
	if err := m.checkNew(ctx, name); err != nil {
		return err
	}
	items, err := m.Bridge.FromImage(ctx, imgid, filter)
	if err != nil {
		return m.fail(err, "cannot read history of image %d: %v", imgid, err)
	}
	return m.create(ctx, name, description, items)
}

// CreateFromStyle creates style newName as a copy of source, restricted to
// filter when it is non-empty. The copy takes the source's description.
func (m *Manager) CreateFromStyle(ctx context.Context, source, newName string, filter []int) error {
	srcID, err := m.Store.GetID(ctx, source)
	if err != nil {
		return m.fail(err, "style %s not found", source)
	}
	description, err := m.Store.GetDescription(ctx, source)
	if err != nil {
		return m.fail(err, "cannot read style %s: %v", source, err)
	}
	if err := m.checkNew(ctx, newName); err != nil {
		return err
	}
	items, err := m.Bridge.FromStyle(ctx, srcID, filter)
	if err != nil {
		return m.fail(err, "cannot read style %s: %v", source, err)
	}
	return m.create(ctx, newName, description, items)
}

// CreateFromSelection prompts for a style definition for every selected
// image and creates the styles the user confirms.
func (m *Manager) CreateFromSelection(ctx context.Context) error {
	ids, err := m.selected(ctx)
	if err != nil || len(ids) == 0 {
		return err
	}
	if m.Prompter == nil {
		return errors.New("no style prompter configured")
	}
	var errs []error
	for _, imgid := range ids {
		name, description, filter, ok := m.Prompter.Prompt(imgid)
		if !ok {
			continue
		}
		if err := m.CreateFromImage(ctx, name, description, imgid, filter); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Update renames and redescribes style name and drops every item whose num
// is not in filter. An empty filter keeps all items. On rename the apply
// shortcut moves to the new name.
func (m *Manager) Update(ctx context.Context, name, newName, newDescription string, filter []int) error {
	if newName == "" {
		newName = name
	}
	err := m.Store.Update(ctx, name, newName, newDescription, filter)
	switch {
	case errors.Is(err, types.ErrStyleNotFound):
		return m.fail(err, "style %s not found", name)
	case errors.Is(err, types.ErrStyleExists):
		return m.fail(err, "style with name '%s' already exists", newName)
	case err != nil:
		return m.fail(err, "cannot update style %s: %v", name, err)
	}

	if newName != name {
		m.deregister(name)
		m.register(newName)
	}
	return m.backup(ctx, newName)
}

// Delete removes style name and its shortcut. Deleting an unknown style
// does nothing. The backup file is left in place.
func (m *Manager) Delete(ctx context.Context, name string) error {
	if _, err := m.Store.Delete(ctx, name); err != nil {
		return m.fail(err, "cannot delete style %s: %v", name, err)
	}
	m.deregister(name)
	return nil
}

// List returns the styles whose name or description contains filter.
func (m *Manager) List(ctx context.Context, filter string) ([]types.Style, error) {
	return m.Store.List(ctx, filter)
}

// Description returns the description of style name.
func (m *Manager) Description(ctx context.Context, name string) (string, error) {
	return m.Store.GetDescription(ctx, name)
}

// ListItems returns the items of style name ordered by num descending.
// Without params the items carry display labels and no blobs.
func (m *Manager) ListItems(ctx context.Context, name string, params bool) ([]types.StyleItem, error) {
	return m.Store.ListItems(ctx, name, params)
}

// ItemListString returns the display labels of style name, one per line.
func (m *Manager) ItemListString(ctx context.Context, name string) (string, error) {
	return m.Store.ItemListString(ctx, name)
}

// Apply merges style name onto the history of imgid and returns the image
// that received it. An empty opts.Mode uses the configured mode.
func (m *Manager) Apply(ctx context.Context, name string, imgid int64, opts bridge.ApplyOptions) (int64, error) {
	if opts.Mode == "" {
		opts.Mode = m.opts.ApplyMode
	}
	target, err := m.Bridge.Apply(ctx, name, imgid, opts)
	switch {
	case errors.Is(err, types.ErrStyleNotFound):
		return 0, m.fail(err, "style %s not found", name)
	case err != nil && target == 0:
		return 0, m.fail(err, "cannot apply style %s to image %d: %v", name, imgid, err)
	case err != nil:
		// The history changed but a follow-up notification failed.
		m.Notifier.Errorf("style %s applied to image %d with errors: %v", name, target, err)
		return target, err
	}
	return target, nil
}

// ApplyToSelection applies style name to every selected image and returns
// the images that received it. An empty selection is reported and is not
// an error.
func (m *Manager) ApplyToSelection(ctx context.Context, name string, opts bridge.ApplyOptions) ([]int64, error) {
	ids, err := m.selected(ctx)
	if err != nil || len(ids) == 0 {
		return nil, err
	}
	var (
		applied []int64
		errs    []error
	)
	for _, imgid := range ids {
		target, err := m.Apply(ctx, name, imgid, opts)
		if target != 0 {
			applied = append(applied, target)
		}
		if err != nil {
			errs = append(errs, err)
			if errors.Is(err, types.ErrStyleNotFound) {
				break
			}
		}
	}
	return applied, errors.Join(errs...)
}

// Remove deletes from the history of imgid every entry whose operation
// occurs in style name. Entries sharing an operation with the style are
// removed even when they did not come from it.
func (m *Manager) Remove(ctx context.Context, name string, imgid int64) (int64, error) {
	n, err := m.Bridge.Remove(ctx, name, imgid)
	switch {
	case errors.Is(err, types.ErrStyleNotFound):
		return 0, m.fail(err, "style %s not found", name)
	case err != nil:
		return n, m.fail(err, "cannot remove style %s from image %d: %v", name, imgid, err)
	}
	return n, nil
}

// Import reads the style file at path and stores it. A non-empty
// targetName replaces the name found in the file. The returned name is the
// stored style's name. Nothing is stored when the file is malformed or the
// name is taken.
func (m *Manager) Import(ctx context.Context, path, targetName string) (string, error) {
	doc, err := stylefile.Load(path)
	if err != nil {
		return "", m.fail(err, "cannot import style file %s: %v", path, err)
	}
	name := doc.Name
	if targetName != "" {
		name = targetName
	}
	if _, err := m.Store.ImportStyle(ctx, name, doc.Description, doc.Items); err != nil {
		if errors.Is(err, types.ErrStyleExists) {
			return "", m.fail(err, "style with name '%s' already exists", name)
		}
		return "", m.fail(err, "cannot import style %s: %v", name, err)
	}
	m.register(name)
	if err := m.backup(ctx, name); err != nil {
		return name, err
	}
	m.Notifier.Log(fmt.Sprintf("style %s was successfully imported", name))
	return name, nil
}

// Export writes style name to dir and returns the file path. An existing
// file is replaced only when overwrite is set.
func (m *Manager) Export(ctx context.Context, name, dir string, overwrite bool) (string, error) {
	path, err := m.writeFile(ctx, name, dir, overwrite)
	switch {
	case errors.Is(err, types.ErrStyleNotFound):
		return "", m.fail(err, "style %s not found", name)
	case errors.Is(err, types.ErrOverwriteRefused):
		return "", m.fail(err, "style file for %s exists", name)
	case err != nil:
		return "", m.fail(err, "cannot save style %s: %v", name, err)
	}
	m.Notifier.Log(fmt.Sprintf("style %s was successfully saved", name))
	return path, nil
}

// InitShortcuts registers the apply shortcut of every stored style.
func (m *Manager) InitShortcuts(ctx context.Context) error {
	all, err := m.Store.List(ctx, "")
	if err != nil {
		return m.fail(err, "cannot list styles: %v", err)
	}
	for _, s := range all {
		m.register(s.Name)
	}
	return nil
}

func (m *Manager) checkNew(ctx context.Context, name string) error {
	if name == "" {
		return m.fail(types.ErrInvalidName, "a style needs a name")
	}
	exists, err := m.Store.Exists(ctx, name)
	if err != nil {
		return m.fail(err, "cannot look up style %s: %v", name, err)
	}
	if exists {
		err := fmt.Errorf("%w: %q", types.ErrStyleExists, name)
		return m.fail(err, "style with name '%s' already exists", name)
	}
	return nil
}

func (m *Manager) create(ctx context.Context, name, description string, items []types.StyleItem) error {
	if _, err := m.Store.CreateStyle(ctx, name, description, items); err != nil {
		if errors.Is(err, types.ErrStyleExists) {
			return m.fail(err, "style with name '%s' already exists", name)
		}
		return m.fail(err, "cannot create style %s: %v", name, err)
	}
	if err := m.backup(ctx, name); err != nil {
		return err
	}
	m.register(name)
	m.Notifier.Log(fmt.Sprintf("style named '%s' successfully created", name))
	return nil
}

// backup rewrites the backup file of style name in the styles directory.
func (m *Manager) backup(ctx context.Context, name string) error {
	if err := os.MkdirAll(m.opts.StylesDir, 0o755); err != nil {
		err = fmt.Errorf("%w: %v", types.ErrIOFailure, err)
		return m.fail(err, "cannot create styles directory %s: %v", m.opts.StylesDir, err)
	}
	if _, err := m.writeFile(ctx, name, m.opts.StylesDir, true); err != nil {
		return m.fail(err, "cannot write backup of style %s: %v", name, err)
	}
	return nil
}

func (m *Manager) writeFile(ctx context.Context, name, dir string, overwrite bool) (string, error) {
	description, err := m.Store.GetDescription(ctx, name)
	if err != nil {
		return "", err
	}
	items, err := m.Store.ListItems(ctx, name, true)
	if err != nil {
		return "", err
	}
	return stylefile.Save(dir, stylefile.Document{
		Name:        name,
		Description: description,
		Items:       items,
	}, overwrite)
}

func (m *Manager) selected(ctx context.Context) ([]int64, error) {
	if m.Selection == nil {
		m.Notifier.Log("no image selected!")
		return nil, nil
	}
	ids, err := m.Selection.SelectedImages(ctx)
	if err != nil {
		return nil, m.fail(err, "cannot read selection: %v", err)
	}
	if len(ids) == 0 {
		m.Notifier.Log("no image selected!")
	}
	return ids, nil
}

func (m *Manager) register(name string) {
	if m.Shortcuts == nil {
		return
	}
	label := types.ShortcutLabel(name)
	m.Shortcuts.Register(label)
	m.Shortcuts.Bind(label, name)
}

func (m *Manager) deregister(name string) {
	if m.Shortcuts != nil {
		m.Shortcuts.Deregister(types.ShortcutLabel(name))
	}
}

// fail reports a failure to the user and returns err unchanged.
func (m *Manager) fail(err error, format string, args ...any) error {
	m.Notifier.Errorf(format, args...)
	return err
}
