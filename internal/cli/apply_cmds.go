package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/styles/internal/bridge"
	"github.com/mesh-intelligence/styles/pkg/types"
)

func newApplyCmd() *cobra.Command {
	var (
		images    []int64
		duplicate bool
		mode      string
	)
	cmd := &cobra.Command{
		Use:   "apply <name>",
		Short: "Apply a style to images",
		Long: `Apply a style to the given images, or to the current selection when no
--image is given. In append mode the style's items are added after the
existing history; replace mode clears the history first. --duplicate applies
to a new duplicate of each image instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			m, err := types.ParseApplyMode(mode)
			if err != nil {
				return err
			}
			opts := bridge.ApplyOptions{Duplicate: duplicate}
			if mode != "" {
				opts.Mode = m
			}
			return withApp(cmd, func(a *app) error {
				ctx := cmd.Context()
				var applied []int64
				if len(images) == 0 {
					applied, err = a.manager.ApplyToSelection(ctx, name, opts)
				} else {
					for _, imgid := range images {
						var target int64
						target, err = a.manager.Apply(ctx, name, imgid, opts)
						if err != nil {
							break
						}
						applied = append(applied, target)
					}
				}
				if flags.jsonMode {
					if perr := a.printJSON(applied); perr != nil {
						return perr
					}
				} else {
					for _, id := range applied {
						fmt.Fprintf(a.out, "applied %s to image %d\n", name, id)
					}
				}
				return err
			})
		},
	}
	cmd.Flags().Int64SliceVar(&images, "image", nil, "target image ids (default: selection)")
	cmd.Flags().BoolVar(&duplicate, "duplicate", false, "apply to a duplicate of each image")
	cmd.Flags().StringVar(&mode, "mode", "", "append or replace (default: apply_mode from config)")
	return cmd
}

func newRemoveCmd() *cobra.Command {
	var imgid int64
	cmd := &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a style's operations from an image history",
		Long: `Remove every history entry of the image whose operation occurs in the
style. Matching is by operation name, so entries that share an operation with
the style are removed even if they were not added by it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				n, err := a.manager.Remove(cmd.Context(), args[0], imgid)
				if err != nil {
					return err
				}
				if flags.jsonMode {
					return a.printJSON(map[string]int64{"removed": n})
				}
				fmt.Fprintf(a.out, "removed %d history entries\n", n)
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&imgid, "image", 0, "image id")
	_ = cmd.MarkFlagRequired("image")
	return cmd
}
