package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version. Called by
// the main package with values injected via ldflags at build time.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// rootFlags holds the persistent flags shared by every command.
type rootFlags struct {
	verbose    bool
	configPath string
	noCache    bool
}

// Execute runs the thicket CLI and returns an error if any command fails.
//
// Logging defaults to info level on stderr; --verbose (-v) switches to debug.
// The logger is attached to the context and accessible to all commands via
// loggerFromContext.
func Execute() error {
	var flags rootFlags

	root := &cobra.Command{
		Use:          "thicket",
		Short:        "Thicket resolves Maven-style dependency graphs",
		Long:         `Thicket builds effective project models and transitive dependency graphs from layered Maven-style repositories, with platform simulation, scope filtering, and nearest-wins version mediation.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if flags.verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("thicket %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default: user config dir)")
	root.PersistentFlags().BoolVar(&flags.noCache, "no-cache", false, "bypass the fetch cache")

	root.AddCommand(newResolveCmd(&flags))
	root.AddCommand(newModelCmd(&flags))
	root.AddCommand(newMetadataCmd(&flags))
	root.AddCommand(newCacheCmd(&flags))
	root.AddCommand(newServeCmd(&flags))
	root.AddCommand(newCompletionCmd())

	return root.ExecuteContext(context.Background())
}
