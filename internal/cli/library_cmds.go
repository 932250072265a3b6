package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/styles/internal/paramcodec"
	"github.com/mesh-intelligence/styles/pkg/types"
)

func newSelectCmd() *cobra.Command {
	var clearSel bool
	cmd := &cobra.Command{
		Use:   "select [image-id...]",
		Short: "Set, clear or show the image selection",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return withApp(cmd, func(a *app) error {
				ctx := cmd.Context()
				switch {
				case clearSel:
					if err := a.selection.Clear(ctx); err != nil {
						return err
					}
				case len(ids) > 0:
					if err := a.selection.Select(ctx, ids...); err != nil {
						return err
					}
				}
				selected, err := a.selection.SelectedImages(ctx)
				if err != nil {
					return err
				}
				if flags.jsonMode {
					return a.printJSON(selected)
				}
				for _, id := range selected {
					fmt.Fprintln(a.out, id)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&clearSel, "clear", false, "clear the selection")
	return cmd
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <image-id>",
		Short: "Show the edit history of an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			imgid, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid image id %q", args[0])
			}
			return withApp(cmd, func(a *app) error {
				entries, err := a.history.HistoryEntries(cmd.Context(), imgid)
				if err != nil {
					return err
				}
				if flags.jsonMode {
					return a.printJSON(entries)
				}
				tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
				for _, e := range entries {
					fmt.Fprintf(tw, "%d\t%s\t%t\t%s\n", e.Num, e.Operation, e.Enabled, paramcodec.Encode(e.OpParams))
				}
				return tw.Flush()
			})
		},
	}
	cmd.AddCommand(newHistoryAddCmd())
	return cmd
}

func newHistoryAddCmd() *cobra.Command {
	var (
		entry   types.HistoryEntry
		params  string
		blend   string
		enabled bool
	)
	cmd := &cobra.Command{
		Use:   "add <image-id>",
		Short: "Append one entry to an image history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			imgid, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid image id %q", args[0])
			}
			if entry.OpParams, err = paramcodec.DecodeStrict(params); err != nil {
				return fmt.Errorf("--params: %w", err)
			}
			if entry.BlendopParams, err = paramcodec.DecodeStrict(blend); err != nil {
				return fmt.Errorf("--blend: %w", err)
			}
			entry.Enabled = enabled
			return withApp(cmd, func(a *app) error {
				ctx := cmd.Context()
				n, err := a.history.Count(ctx, imgid)
				if err != nil {
					return err
				}
				entry.Num = n
				if err := a.history.AppendHistory(ctx, imgid, []types.HistoryEntry{entry}); err != nil {
					return err
				}
				if err := a.thumbs.Invalidate(imgid); err != nil {
					a.logger.Warn("invalidate thumbnails", "image", imgid, "err", err)
				}
				fmt.Fprintf(a.out, "added %s as history entry %d\n", entry.Operation, entry.Num)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&entry.Operation, "operation", "", "canonical operation name")
	f.IntVar(&entry.Module, "module", 1, "module version")
	f.StringVar(&params, "params", "", "operation parameters as hex")
	f.StringVar(&blend, "blend", "", "blend parameters as hex")
	f.IntVar(&entry.BlendopVersion, "blend-version", 0, "blend parameters version")
	f.IntVar(&entry.MultiPriority, "multi-priority", 0, "instance priority")
	f.StringVar(&entry.MultiName, "multi-name", "", "instance name")
	f.BoolVar(&enabled, "enabled", true, "entry is enabled")
	_ = cmd.MarkFlagRequired("operation")
	return cmd
}

func newImageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "image",
		Short: "Manage library images",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <filename>",
		Short: "Add an image to the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				id, err := a.images.Add(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if flags.jsonMode {
					return a.printJSON(map[string]int64{"id": id})
				}
				fmt.Fprintln(a.out, id)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List library images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				all, err := a.images.List(cmd.Context())
				if err != nil {
					return err
				}
				if flags.jsonMode {
					return a.printJSON(all)
				}
				tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
				for _, img := range all {
					tags, err := a.tags.ImageTags(cmd.Context(), img.ID)
					if err != nil {
						return err
					}
					fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", img.ID, img.Filename, img.Version, strings.Join(tags, ","))
				}
				return tw.Flush()
			})
		},
	})
	return cmd
}

func newShortcutsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shortcuts",
		Short: "List style shortcuts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				labels := a.keys.Labels()
				if flags.jsonMode {
					return a.printJSON(labels)
				}
				for _, l := range labels {
					fmt.Fprintln(a.out, l)
				}
				return nil
			})
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "trigger <label>",
		Short: "Run a shortcut: apply its style to the selection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				return a.keys.Trigger(cmd.Context(), args[0])
			})
		},
	})
	return cmd
}

func newThumbsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "thumbs",
		Short: "Inspect the thumbnail cache",
	}

	var level int
	put := &cobra.Command{
		Use:   "put <image-id> <file>",
		Short: "Store a thumbnail for an image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			imgid, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid image id %q", args[0])
			}
			data, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			ext := strings.TrimPrefix(filepath.Ext(args[1]), ".")
			if ext == "" {
				ext = "jpg"
			}
			return withApp(cmd, func(a *app) error {
				return a.thumbs.Put(level, imgid, ext, data)
			})
		},
	}
	put.Flags().IntVar(&level, "level", 0, "size level")
	cmd.AddCommand(put)

	cmd.AddCommand(&cobra.Command{
		Use:   "has <image-id>",
		Short: "Report whether an image has cached thumbnails",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			imgid, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid image id %q", args[0])
			}
			return withApp(cmd, func(a *app) error {
				ok, err := a.thumbs.Has(imgid)
				if err != nil {
					return err
				}
				if flags.jsonMode {
					return a.printJSON(map[string]bool{"cached": ok})
				}
				fmt.Fprintln(a.out, ok)
				return nil
			})
		},
	})
	return cmd
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, s := range args {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid image id %q", s)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
