package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thicketlab/thicket/pkg/config"
)

// newMetadataCmd creates the metadata command, which prints the merged
// repository metadata for a group:artifact pair.
func newMetadataCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "metadata <group:artifact>",
		Short: "Print merged repository metadata for a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			group, artifact, ok := strings.Cut(args[0], ":")
			if !ok || group == "" || artifact == "" {
				return fmt.Errorf("invalid project %q (expected group:artifact)", args[0])
			}

			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return err
			}
			env, cleanup, err := newEnvironment(ctx, cfg, logger, flags.noCache)
			if err != nil {
				return err
			}
			defer cleanup()

			meta, err := env.Metadata(ctx, group, artifact)
			if err != nil {
				return err
			}

			fmt.Println(StyleTitle.Render(group + ":" + artifact))
			printKeyValue("latest", meta.Latest)
			printKeyValue("release", meta.Release)
			printKeyValue("newest", meta.LastVersion())
			printKeyValue("updated", meta.LastUpdated)
			printKeyValue("versions", fmt.Sprintf("%d", len(meta.Versions)))
			for _, v := range meta.Versions {
				printDetail("%s", v)
			}
			return nil
		},
	}
}
