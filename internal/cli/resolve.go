package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thicketlab/thicket/pkg/config"
	"github.com/thicketlab/thicket/pkg/maven"
	"github.com/thicketlab/thicket/pkg/render"
	"github.com/thicketlab/thicket/pkg/resolve"
)

// Output formats for the resolve command.
const (
	formatJSON = "json"
	formatDOT  = "dot"
	formatSVG  = "svg"
	formatPNG  = "png"
)

// resolveOpts holds the command-line flags for the resolve command.
type resolveOpts struct {
	scope           string
	includeOptional bool
	platforms       []string
	jdk             string
	maxDepth        int
	output          string
	format          string
	detailed        bool
}

// newResolveCmd creates the resolve command.
func newResolveCmd(flags *rootFlags) *cobra.Command {
	var opts resolveOpts

	cmd := &cobra.Command{
		Use:   "resolve <group:artifact:version>",
		Short: "Resolve the transitive dependency graph of a coordinate",
		Long: `Resolve the transitive dependency graph of a coordinate.

One graph is produced per --platform (host platform if none given). Version
conflicts are mediated nearest-wins; mediation losses, exclusions, and other
observations are reported as diagnostics.

Examples:
  thicket resolve org.scijava:parsington:3.1.0
  thicket resolve com.example:app:1.0 --scope runtime --format dot
  thicket resolve com.example:app:1.0 --platform windows-amd64 --platform linux-amd64
  thicket resolve com.example:app:1.0 --format svg -o graph.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, flags, &opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.scope, "scope", "s", "", "scope filter: compile, runtime, or test")
	cmd.Flags().BoolVar(&opts.includeOptional, "include-optional", false, "include the root's optional dependencies")
	cmd.Flags().StringArrayVarP(&opts.platforms, "platform", "p", nil, "target platform os[-arch], repeatable")
	cmd.Flags().StringVar(&opts.jdk, "jdk", "", "JDK version for jdk-activated profiles (e.g. 11, 1.8.0_252)")
	cmd.Flags().IntVar(&opts.maxDepth, "max-depth", 0, "maximum dependency depth (0 = default)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatJSON, "output format: json, dot, svg, or png")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include scope and depth in DOT labels")

	return cmd
}

func runResolve(cmd *cobra.Command, flags *rootFlags, opts *resolveOpts, coordArg string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	coord, err := maven.ParseCoordinate(coordArg)
	if err != nil {
		return err
	}
	if !resolve.ValidScopeFilter(opts.scope) {
		return fmt.Errorf("unknown scope filter %q", opts.scope)
	}
	platforms, err := parsePlatforms(opts.platforms, opts.jdk)
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

	track := newProgress(logger)
	spin := newSpinner(ctx, fmt.Sprintf("Resolving %s", coord))
	spin.Start()

	graphs, err := env.Resolve(ctx, coord, resolve.Options{
		Scope:           opts.scope,
		IncludeOptional: opts.includeOptional,
		Platforms:       platforms,
		MaxDepth:        opts.maxDepth,
	})
	if err != nil {
		spin.StopWithError(fmt.Sprintf("Failed to resolve %s", coord))
		return err
	}
	spin.StopWithSuccess(fmt.Sprintf("Resolved %s", StyleHighlight.Render(coord.String())))
	track.done(fmt.Sprintf("Resolved %d graph(s)", len(graphs)))

	for _, g := range graphs {
		printDetail("platform %s", g.Platform)
		printStats(len(g.Nodes), len(g.Edges), len(g.Diagnostics))
		for _, d := range g.Diagnostics {
			logger.Debugf("%s: %s (%s)", d.Kind, d.Coordinate, d.Detail)
		}
	}

	return writeGraphs(cmd, opts, graphs)
}

func writeGraphs(cmd *cobra.Command, opts *resolveOpts, graphs []*resolve.Graph) error {
	var out []byte
	switch opts.format {
	case formatJSON:
		var err error
		out, err = json.MarshalIndent(graphs, "", "  ")
		if err != nil {
			return err
		}
		out = append(out, '\n')
	case formatDOT:
		var b strings.Builder
		for _, g := range graphs {
			b.WriteString(render.ToDOT(g, render.Options{Detailed: opts.detailed}))
		}
		out = []byte(b.String())
	case formatSVG, formatPNG:
		if len(graphs) > 1 && opts.output != "" {
			return fmt.Errorf("%s output supports a single platform per file", opts.format)
		}
		dot := render.ToDOT(graphs[0], render.Options{Detailed: opts.detailed})
		var err error
		if opts.format == formatSVG {
			out, err = render.RenderSVG(cmd.Context(), dot)
		} else {
			out, err = render.RenderPNG(cmd.Context(), dot)
		}
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format %q", opts.format)
	}

	if opts.output == "" {
		_, err := cmd.OutOrStdout().Write(out)
		return err
	}
	if err := os.WriteFile(opts.output, out, 0o644); err != nil {
		return err
	}
	printFile(opts.output)
	return nil
}
