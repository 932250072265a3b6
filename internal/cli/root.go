// Package cli implements the styles command-line interface: a cobra command
// tree over the style manager, configured through viper and reporting
// through a charmbracelet logger.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/styles/pkg/types"
)

// Version is the release version, overridable at link time.
var Version = "0.1.0"

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	verbose   bool
}

var flags rootFlags

// NewRootCmd creates the top-level "styles" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "styles",
		Short: "Create, apply and share editing styles",
		Long: `styles captures the edit history of an image as a named style, keeps it
in the library database with a backup file per style, and applies it to the
histories of other images.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "library directory (default: platform data dir)")
	root.PersistentFlags().BoolVar(&flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(),
		newListCmd(),
		newShowCmd(),
		newCreateCmd(),
		newCopyCmd(),
		newUpdateCmd(),
		newDeleteCmd(),
		newApplyCmd(),
		newRemoveCmd(),
		newImportCmd(),
		newExportCmd(),
		newSelectCmd(),
		newHistoryCmd(),
		newImageCmd(),
		newShortcutsCmd(),
		newThumbsCmd(),
	)
	return root
}

// Execute runs the root command and exits with the matching code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "styles:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps storage and file system failures to exitSysError and
// everything else to exitUserError.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, types.ErrIOFailure),
		errors.Is(err, types.ErrBackendDetached),
		errors.Is(err, errSetup):
		return exitSysError
	default:
		return exitUserError
	}
}

var errSetup = errors.New("setup failed")
