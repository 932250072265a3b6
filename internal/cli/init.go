package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration, library and styles directory",
		Long: `Create the configuration directory with a default config.yaml, the library
database and the styles backup directory. Running init again is harmless.`,
		Args: cobra.NoArgs,
		RunE: runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app) error {
		cfg := a.settings.cfg
		if err := os.MkdirAll(cfg.StylesDir, 0o755); err != nil {
			return fmt.Errorf("%w: create styles directory: %v", errSetup, err)
		}
		if flags.jsonMode {
			return a.printJSON(map[string]string{
				"config": a.settings.configDir,
				"data":   cfg.DataDir,
				"styles": cfg.StylesDir,
				"cache":  cfg.CacheDir,
			})
		}
		fmt.Fprintln(a.out, "styles initialized successfully")
		fmt.Fprintln(a.out, "  config:", a.settings.configDir)
		fmt.Fprintln(a.out, "  data:  ", cfg.DataDir)
		fmt.Fprintln(a.out, "  styles:", cfg.StylesDir)
		return nil
	})
}
