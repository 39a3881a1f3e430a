package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thicketlab/thicket/pkg/config"
	"github.com/thicketlab/thicket/pkg/maven"
)

// newModelCmd creates the model command, which prints the effective model of
// a coordinate: parent chain merged, profiles applied, properties resolved.
func newModelCmd(flags *rootFlags) *cobra.Command {
	var (
		platformName string
		jdk          string
	)

	cmd := &cobra.Command{
		Use:   "model <group:artifact:version>",
		Short: "Print the effective model of a coordinate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			coord, err := maven.ParseCoordinate(args[0])
			if err != nil {
				return err
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

			platform := env.Host()
			if platformName != "" {
				platform, err = maven.ParsePlatform(platformName)
				if err != nil {
					return err
				}
			}
			if jdk != "" {
				platform.JDK = jdk
			}

			track := newProgress(logger)
			model, err := env.EffectiveModelFor(ctx, coord, platform)
			if err != nil {
				return err
			}
			track.done(fmt.Sprintf("Built effective model for %s", coord))

			for _, d := range model.Diagnostics {
				printWarning("%s: %s (%s)", d.Kind, d.Coordinate, d.Detail)
			}

			out, err := json.MarshalIndent(model, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVarP(&platformName, "platform", "p", "", "target platform os[-arch]")
	cmd.Flags().StringVar(&jdk, "jdk", "", "JDK version for jdk-activated profiles")

	return cmd
}
