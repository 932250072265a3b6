package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	var as string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a style file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				name, err := a.manager.Import(cmd.Context(), args[0], as)
				if err != nil {
					return err
				}
				if flags.jsonMode {
					return a.printJSON(map[string]string{"name": name})
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&as, "as", "", "store the style under this name")
	return cmd
}

func newExportCmd() *cobra.Command {
	var (
		dir       string
		overwrite bool
	)
	cmd := &cobra.Command{
		Use:   "export <name>",
		Short: "Export a style to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				path, err := a.manager.Export(cmd.Context(), args[0], dir, overwrite)
				if err != nil {
					return err
				}
				if flags.jsonMode {
					return a.printJSON(map[string]string{"path": path})
				}
				fmt.Fprintln(a.out, path)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "destination directory")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace an existing file")
	return cmd
}
