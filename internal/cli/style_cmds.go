package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/styles/internal/paramcodec"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [filter]",
		Short: "List styles",
		Long: `List the stored styles ordered by name. With a filter, only styles whose
name or description contains it are shown.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := ""
			if len(args) == 1 {
				filter = args[0]
			}
			return withApp(cmd, func(a *app) error {
				all, err := a.manager.List(cmd.Context(), filter)
				if err != nil {
					return err
				}
				if flags.jsonMode {
					return a.printJSON(all)
				}
				tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
				for _, s := range all {
					fmt.Fprintf(tw, "%s\t%s\n", s.Name, s.Description)
				}
				return tw.Flush()
			})
		},
	}
}

func newShowCmd() *cobra.Command {
	var params bool
	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show the items of a style",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			return withApp(cmd, func(a *app) error {
				ctx := cmd.Context()
				desc, err := a.manager.Description(ctx, name)
				if err != nil {
					return err
				}
				if !params {
					if flags.jsonMode {
						items, err := a.manager.ListItems(ctx, name, false)
						if err != nil {
							return err
						}
						return a.printJSON(items)
					}
					list, err := a.manager.ItemListString(ctx, name)
					if err != nil {
						return err
					}
					fmt.Fprintf(a.out, "%s: %s\n", name, desc)
					if list != "" {
						fmt.Fprintln(a.out, list)
					}
					return nil
				}

				items, err := a.manager.ListItems(ctx, name, true)
				if err != nil {
					return err
				}
				if flags.jsonMode {
					return a.printJSON(items)
				}
				fmt.Fprintf(a.out, "%s: %s\n", name, desc)
				tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "NUM\tMODULE\tOPERATION\tON\tPARAMS\tBLEND\tBV\tPRIO\tNAME")
				for _, it := range items {
					fmt.Fprintf(tw, "%d\t%d\t%s\t%t\t%s\t%s\t%d\t%d\t%s\n",
						it.Num, it.Module, it.Operation, it.Enabled,
						paramcodec.Encode(it.OpParams), paramcodec.Encode(it.BlendopParams),
						it.BlendopVersion, it.MultiPriority, it.MultiName)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().BoolVar(&params, "params", false, "show raw parameters")
	return cmd
}

func newCreateCmd() *cobra.Command {
	var (
		imgid       int64
		items       []int
		description string
	)
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a style from the history of an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				return a.manager.CreateFromImage(cmd.Context(), args[0], description, imgid, items)
			})
		},
	}
	cmd.Flags().Int64Var(&imgid, "image", 0, "source image id")
	cmd.Flags().IntSliceVar(&items, "items", nil, "history nums to include (default: all)")
	cmd.Flags().StringVar(&description, "description", "", "style description")
	_ = cmd.MarkFlagRequired("image")
	return cmd
}

func newCopyCmd() *cobra.Command {
	var items []int
	cmd := &cobra.Command{
		Use:   "copy <source> <new-name>",
		Short: "Create a style from another style",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				return a.manager.CreateFromStyle(cmd.Context(), args[0], args[1], items)
			})
		},
	}
	cmd.Flags().IntSliceVar(&items, "items", nil, "item nums to include (default: all)")
	return cmd
}

func newUpdateCmd() *cobra.Command {
	var (
		rename      string
		description string
		items       []int
	)
	cmd := &cobra.Command{
		Use:   "update <name>",
		Short: "Rename, redescribe or prune a style",
		Long: `Update a style. --items keeps only the listed item nums; without it every
item is kept. The backup file is rewritten under the new name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			return withApp(cmd, func(a *app) error {
				ctx := cmd.Context()
				if !cmd.Flags().Changed("description") {
					current, err := a.manager.Description(ctx, name)
					if err != nil {
						a.notifier.Errorf("style %s not found", name)
						return err
					}
					description = current
				}
				return a.manager.Update(ctx, name, rename, description, items)
			})
		},
	}
	cmd.Flags().StringVar(&rename, "rename", "", "new style name")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().IntSliceVar(&items, "items", nil, "item nums to keep")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a style",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				return a.manager.Delete(cmd.Context(), args[0])
			})
		},
	}
}
