package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/depdiscover/depviz/internal/config"
	"github.com/depdiscover/depviz/pkg/cache"
	"github.com/depdiscover/depviz/pkg/errors"
	"github.com/depdiscover/depviz/pkg/graph"
	"github.com/depdiscover/depviz/pkg/render"
	"github.com/depdiscover/depviz/pkg/scan"
)

// defaultInput is the scan document read when no argument is given.
const defaultInput = "depdiscover.json"

// defaultOutputBase is the base path of the written artifacts: the graph
// description goes to <base>.gv, the image to <base>.<format>.
const defaultOutputBase = "dependency_graph"

// newRenderCmd creates the render command: load the scan document, build the
// graph description, save it as DOT, and render it to an image.
func newRenderCmd(configPath *string) *cobra.Command {
	var (
		output     string
		format     string
		engine     string
		skipSystem bool
		noCache    bool
		timeout    int
	)

	cmd := &cobra.Command{
		Use:   "render [depdiscover.json]",
		Short: "Render a scan document as a dependency graph image",
		Long: `Render a scan document as a dependency graph image.

The render command reads the depdiscover JSON document, builds a graph with
one node per dependency colored by security status, writes the Graphviz
source next to the image, and renders the image. Above ` + fmt.Sprint(render.AutoLayoutThreshold) + ` nodes the default
'dot' layout engine is swapped for the faster 'sfdp'.

The Graphviz source (.gv) survives render failures, so a broken or missing
rendering engine still leaves an artifact to inspect manually.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			// Flags override the config file only when set explicitly.
			flags := cmd.Flags()
			if flags.Changed("format") {
				cfg.Render.Format = format
			}
			if flags.Changed("engine") {
				cfg.Render.Engine = engine
			}
			if flags.Changed("skip-system") {
				cfg.Render.SkipSystemLibs = skipSystem
			}
			if flags.Changed("timeout") {
				cfg.Render.TimeoutSeconds = timeout
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			input := defaultInput
			if len(args) > 0 {
				input = args[0]
			}

			store := newStore(cmd.Context(), cfg, noCache)
			defer store.Close()

			return runRender(cmd.Context(), input, output, cfg, store, render.Graphviz{})
		},
	}

	defaults := config.Default()
	cmd.Flags().StringVarP(&output, "output", "o", defaultOutputBase, "base path for the .gv and image artifacts")
	cmd.Flags().StringVarP(&format, "format", "f", defaults.Render.Format, "output format: png (default), svg, jpg, pdf")
	cmd.Flags().StringVarP(&engine, "engine", "e", defaults.Render.Engine, "layout engine: dot (default), sfdp, neato, fdp, circo, twopi")
	cmd.Flags().BoolVar(&skipSystem, "skip-system", defaults.Render.SkipSystemLibs, "omit dependencies of type 'system'")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the render cache")
	cmd.Flags().IntVar(&timeout, "timeout", defaults.Render.TimeoutSeconds, "render timeout in seconds (0 disables)")

	return cmd
}

// newStore builds the render cache from the configuration.
// Cache failures never block rendering: any backend problem degrades to the
// null cache with a log line.
func newStore(ctx context.Context, cfg config.Config, noCache bool) cache.Cache {
	logger := loggerFromContext(ctx)

	if noCache || cfg.Cache.Backend == config.BackendNone {
		return cache.NewNullCache()
	}

	switch cfg.Cache.Backend {
	case config.BackendRedis:
		c, err := cache.NewRedisCache(ctx, cfg.Cache.RedisAddr)
		if err != nil {
			logger.Warnf("Redis cache unavailable at %s, caching disabled: %v", cfg.Cache.RedisAddr, err)
			return cache.NewNullCache()
		}
		return c
	default:
		dir, err := os.UserCacheDir()
		if err != nil {
			logger.Debugf("No user cache directory, caching disabled: %v", err)
			return cache.NewNullCache()
		}
		c, err := cache.NewFileCache(cacheDir(dir))
		if err != nil {
			logger.Debugf("Cannot create cache directory, caching disabled: %v", err)
			return cache.NewNullCache()
		}
		return c
	}
}

// cacheDir returns the depviz cache directory under the user cache root.
func cacheDir(userCacheDir string) string {
	return userCacheDir + string(os.PathSeparator) + "depviz"
}

// runRender executes the full load → build → save → render path.
//
// The DOT artifact is written before rendering is attempted, so every
// failure past that point leaves the graph description on disk. The
// rendered image is cached keyed by the DOT content, format, and layout
// engine.
func runRender(ctx context.Context, input, outputBase string, cfg config.Config, store cache.Cache, engine render.Engine) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	if outputBase == "" {
		outputBase = defaultOutputBase
	}

	logger.Infof("Loading %s", input)
	doc, err := scan.Load(input)
	if err != nil {
		return err
	}
	logger.Debugf("Loaded %d dependencies for project %q", len(doc.Dependencies), doc.DisplayProjectName())

	g, stats, err := graph.Build(doc, graph.Options{SkipSystemLibs: cfg.Render.SkipSystemLibs})
	if err != nil {
		return err
	}
	logger.Infof("Built graph: %d nodes, %d system libraries skipped", stats.Retained, stats.Skipped)

	dot := graph.ToDOT(g)
	dotPath := outputBase + ".gv"
	if err := graph.WriteDOTFile(g, dotPath); err != nil {
		return err
	}
	logger.Debugf("Saved graph description: %s (%d bytes)", dotPath, len(dot))

	layout := render.AutoLayout(cfg.Render.Engine, stats.Retained)
	if layout != cfg.Render.Engine {
		logger.Warnf("Large graph (%d nodes): switching layout engine from %s to %s", stats.Retained, cfg.Render.Engine, layout)
	}

	key := cache.RenderKey(dot, cfg.Render.Format, layout)
	img, hit, err := store.Get(ctx, key)
	if err != nil {
		logger.Debugf("Cache read failed: %v", err)
		hit = false
	}

	if !hit {
		img, err = renderImage(ctx, dot, layout, cfg, engine)
		if err != nil {
			reportRenderFailure(err, dotPath)
			return err
		}
		if cerr := store.Set(ctx, key, img, time.Duration(cfg.Cache.TTLDays)*24*time.Hour); cerr != nil {
			logger.Debugf("Cache write failed: %v", cerr)
		}
	}

	imgPath := outputBase + "." + cfg.Render.Format
	if err := os.WriteFile(imgPath, img, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", imgPath)
	}

	prog.done(fmt.Sprintf("Rendered %s", imgPath))
	printSuccess("Render complete")
	printFile(dotPath)
	printFile(imgPath)
	printStats(stats.Retained, stats.Skipped, hit)
	return nil
}

// renderImage invokes the engine under the configured timeout.
func renderImage(ctx context.Context, dot, layout string, cfg config.Config, engine render.Engine) ([]byte, error) {
	if cfg.Render.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.Render.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	spinner := newSpinner(ctx, fmt.Sprintf("Rendering %s with %s...", cfg.Render.Format, layout))
	spinner.Start()

	img, err := engine.Render(ctx, dot, render.Options{Format: cfg.Render.Format, Layout: layout})
	if err != nil {
		spinner.StopWithError("Rendering failed")
		if errors.GetCode(err) == "" {
			err = errors.Wrap(errors.ErrCodeRenderFailure, err, "render %s with %s", cfg.Render.Format, layout)
		}
		return nil, err
	}

	spinner.Stop()
	return img, nil
}

// reportRenderFailure tells the user what went wrong and that the graph
// description artifact is still available for manual rendering.
func reportRenderFailure(err error, dotPath string) {
	if errors.Is(err, errors.ErrCodeEngineNotFound) {
		printError("Rendering engine unavailable: %s", errors.UserMessage(err))
	} else {
		printError("Rendering failed: %s", errors.UserMessage(err))
	}
	printWarning("Graph description saved: %s", dotPath)
	printDetail("render it manually with: dot -Tpng %s -o graph.png", dotPath)
}
