package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/styles/internal/bridge"
	"github.com/mesh-intelligence/styles/internal/notify"
	"github.com/mesh-intelligence/styles/internal/shortcuts"
	"github.com/mesh-intelligence/styles/internal/sqlite"
	"github.com/mesh-intelligence/styles/internal/styles"
	"github.com/mesh-intelligence/styles/internal/thumbcache"
)

// app wires the library, its collaborators and the style manager for one
// command run.
type app struct {
	settings *settings
	logger   *log.Logger
	notifier *notify.Logger
	view     *notify.View

	backend   *sqlite.Backend
	store     *sqlite.StyleStore
	history   *sqlite.HistoryTable
	images    *sqlite.ImagesTable
	tags      *sqlite.TagsTable
	selection *sqlite.SelectionTable
	thumbs    *thumbcache.Cache
	keys      *shortcuts.Registry
	manager   *styles.Manager

	out io.Writer
}

// openApp resolves the configuration, attaches the library and registers
// the apply shortcut of every stored style. The caller must call close.
func openApp(cmd *cobra.Command) (*app, error) {
	s, err := resolveSettings()
	if err != nil {
		return nil, err
	}

	logger := notify.NewLogger(cmd.ErrOrStderr(), notify.ParseLevel(s.cfg.LogLevel))
	backend := sqlite.NewBackend()
	if err := backend.Attach(s.cfg.DataDir); err != nil {
		return nil, fmt.Errorf("%w: attach library: %v", errSetup, err)
	}
	logger.Debug("library attached", "path", backend.Path())

	a := &app{
		settings:  s,
		logger:    logger,
		notifier:  notify.New(logger),
		view:      notify.NewView(logger),
		backend:   backend,
		store:     sqlite.NewStyleStore(backend, moduleNamer(s.moduleNames)),
		history:   sqlite.NewHistoryTable(backend, s.cfg.CurrentImage),
		images:    sqlite.NewImagesTable(backend),
		tags:      sqlite.NewTagsTable(backend),
		selection: sqlite.NewSelectionTable(backend),
		thumbs:    thumbcache.New(s.cfg.CacheDir),
		out:       cmd.OutOrStdout(),
	}
	a.history.OnReload(func(imgid int64) {
		logger.Debug("editor history reloaded", "image", imgid)
	})

	br := bridge.New(a.store, bridge.Collaborators{
		History:    a.history,
		Tags:       a.tags,
		Thumbnails: a.thumbs,
		View:       a.view,
		Duplicator: a.images,
	})
	a.manager = styles.New(styles.Options{
		StylesDir: s.cfg.StylesDir,
		ApplyMode: s.cfg.ApplyMode,
	}, styles.Deps{
		Store:     a.store,
		Bridge:    br,
		Notifier:  a.notifier,
		Selection: a.selection,
	})
	a.keys = shortcuts.New(func(ctx context.Context, name string) error {
		_, err := a.manager.ApplyToSelection(ctx, name, bridge.ApplyOptions{})
		return err
	})
	a.manager.Shortcuts = a.keys

	if err := a.manager.InitShortcuts(cmd.Context()); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) close() {
	if err := a.backend.Detach(); err != nil {
		a.logger.Warn("detach library", "err", err)
	}
}

// withApp runs fn with an open app.
func withApp(cmd *cobra.Command, fn func(a *app) error) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(a)
}

// printJSON writes v as indented JSON.
func (a *app) printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(a.out, string(data))
	return err
}
