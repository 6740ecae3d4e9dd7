package icongen

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/iconpress/pkg/errors"
)

// =============================================================================
// Collaborator Contracts
// =============================================================================

// ScratchFunc allocates a fresh scratch directory for one generation run.
// Each call must return a distinct path so concurrent runs never share one.
type ScratchFunc func() (string, error)

// RasterizeFunc renders the SVG at svgPath into dir at every requested size
// and returns the produced image set.
type RasterizeFunc func(ctx context.Context, svgPath, dir string, sizes []int, logger *log.Logger) ([]ImageInfo, error)

// EncodeFunc writes a single-file container from a filtered, size-sorted
// image set and returns the path it produced.
type EncodeFunc func(images []ImageInfo, dest string, logger *log.Logger) (string, error)

// BundleFunc writes a multi-file bundle into destDir and returns the paths
// it produced, in a deterministic order.
type BundleFunc func(images []ImageInfo, destDir string, logger *log.Logger) ([]string, error)

// =============================================================================
// Generator
// =============================================================================

// Generator runs the icon generation pipeline. The zero value is not usable;
// create one with NewGenerator and wire the collaborator fields (the CLI
// wires them to package raster and package container).
//
// The Generator itself is stateless - multiple goroutines can safely use the
// same Generator with different options, and each run owns its scratch
// directory exclusively.
type Generator struct {
	Logger *log.Logger

	Scratch   ScratchFunc
	Rasterize RasterizeFunc
	ICO       EncodeFunc
	ICNS      EncodeFunc
	Favicon   BundleFunc
}

// NewGenerator creates a generator with the given logger. If logger is nil,
// log.Default() is used. Collaborator fields start unset.
func NewGenerator(logger *log.Logger) *Generator {
	if logger == nil {
		logger = log.Default()
	}
	return &Generator{Logger: logger}
}

// FromSVG generates the requested containers from a single SVG source.
//
// Both paths are resolved to absolute form. A scratch directory is acquired
// for the run and removed again on every exit path, whether rasterization or
// any encode task fails or everything succeeds. Rasterizer errors are
// propagated unchanged.
func (g *Generator) FromSVG(ctx context.Context, svgPath, destDir string, opts Options) ([]string, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	g.applyLogger(&opts)

	src, err := filepath.Abs(svgPath)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve source path %s", svgPath)
	}
	dest, err := filepath.Abs(destDir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve destination path %s", destDir)
	}
	opts.Logger.Info("generating icons", "source", src, "dest", dest, "modes", opts.Modes)

	if g.Scratch == nil || g.Rasterize == nil {
		return nil, errors.New(errors.ErrCodeInternal, "svg source collaborators not configured")
	}

	scratch, err := g.Scratch()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeScratchFailed, err, "create scratch directory")
	}
	// Removal is unconditional: the scratch area never outlives the run.
	defer os.RemoveAll(scratch)

	images, err := g.Rasterize(ctx, src, scratch, RequiredSizes(opts), opts.Logger)
	if err != nil {
		return nil, err
	}

	return g.fromImages(ctx, images, dest, opts)
}

// FromPNG generates the requested containers from a directory of
// pre-rendered raster files named <size>.png.
//
// The required size list is derived from the first requested mode only, so a
// multi-mode run over a sparse directory can pass validation here and still
// hand empty subsets to later encoders. This derivation is intentional; see
// DESIGN.md before changing it.
func (g *Generator) FromPNG(ctx context.Context, pngDir, destDir string, opts Options) ([]string, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	g.applyLogger(&opts)

	dir, err := filepath.Abs(pngDir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve source path %s", pngDir)
	}
	dest, err := filepath.Abs(destDir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve destination path %s", destDir)
	}
	opts.Logger.Info("generating icons", "source", dir, "dest", dest, "modes", opts.Modes)

	primary := opts.Modes[0]
	sizes := sizesFor(defaultSizes(primary), opts, primary)

	images := make([]ImageInfo, 0, len(sizes))
	for _, size := range sizes {
		path := filepath.Join(dir, strconv.Itoa(size)+".png")
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			// Validation short-circuits on the first missing file.
			return nil, errors.New(errors.ErrCodeFileNotFound, "%s does not exist", path)
		}
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		parsed, err := strconv.Atoi(stem)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse size from %s", path)
		}
		images = append(images, ImageInfo{Path: path, Size: parsed})
	}

	return g.fromImages(ctx, images, dest, opts)
}

// FromImages generates the requested containers from an already-rendered
// image set. This is the shared core of FromSVG and FromPNG and is exported
// for embedders that produce their rasters elsewhere.
func (g *Generator) FromImages(ctx context.Context, images []ImageInfo, destDir string, opts Options) ([]string, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	g.applyLogger(&opts)
	return g.fromImages(ctx, images, destDir, opts)
}

// fromImages filters the image set per mode, runs all encode tasks
// concurrently, and flattens their outputs in schedule order.
func (g *Generator) fromImages(ctx context.Context, images []ImageInfo, destDir string, opts Options) ([]string, error) {
	if len(images) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "image set is empty")
	}

	// Idempotent; the destination may be shared across runs.
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "create destination directory %s", destDir)
	}

	var tasks []encodeTask
	for _, mode := range opts.Modes {
		build, ok := taskBuilders[mode]
		if !ok {
			// Unrecognized modes are deliberately skipped, not rejected.
			opts.Logger.Debug("skipping unknown mode", "mode", mode)
			continue
		}
		tasks = append(tasks, build(g, images, destDir, opts)...)
	}

	// Join-all fan-out: every task runs to completion, the first error wins,
	// and sibling results are discarded on failure. A plain errgroup (not
	// WithContext) is used on purpose so a failing task does not cancel the
	// in-flight ones.
	results := make([][]string, len(tasks))
	var grp errgroup.Group
	for i, task := range tasks {
		i, task := i, task
		grp.Go(func() error {
			paths, err := task()
			if err != nil {
				return err
			}
			results[i] = paths
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	paths := flatten(results)
	opts.Logger.Info("generated icons", "files", len(paths))
	return paths, nil
}

// applyLogger sets the generator's logger on options if not already set.
func (g *Generator) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = g.Logger
	}
}

// =============================================================================
// Mode Dispatch
// =============================================================================

// encodeTask runs one container encoder and returns the paths it produced.
type encodeTask func() ([]string, error)

// taskBuilder produces the encode tasks one mode contributes to a run.
type taskBuilder func(g *Generator, images []ImageInfo, destDir string, opts Options) []encodeTask

// taskBuilders maps each supported mode to its task builder. Modes without
// an entry are skipped silently in fromImages.
var taskBuilders = map[Mode]taskBuilder{
	ModeICO:     buildICOTasks,
	ModeICNS:    buildICNSTasks,
	ModeFavicon: buildFaviconTasks,
}

func buildICOTasks(g *Generator, images []ImageInfo, destDir string, opts Options) []encodeTask {
	subset := Filter(images, sizesFor(ICOSizes, opts, ModeICO))
	dest := filepath.Join(destDir, opts.Names.ICO+".ico")
	return []encodeTask{func() ([]string, error) {
		if g.ICO == nil {
			return nil, errors.New(errors.ErrCodeInternal, "ico encoder not configured")
		}
		path, err := g.ICO(subset, dest, opts.Logger)
		if err != nil {
			return nil, err
		}
		return []string{path}, nil
	}}
}

func buildICNSTasks(g *Generator, images []ImageInfo, destDir string, opts Options) []encodeTask {
	subset := Filter(images, sizesFor(ICNSSizes, opts, ModeICNS))
	dest := filepath.Join(destDir, opts.Names.ICNS+".icns")
	return []encodeTask{func() ([]string, error) {
		if g.ICNS == nil {
			return nil, errors.New(errors.ErrCodeInternal, "icns encoder not configured")
		}
		path, err := g.ICNS(subset, dest, opts.Logger)
		if err != nil {
			return nil, err
		}
		return []string{path}, nil
	}}
}

// buildFaviconTasks schedules two tasks: favicon.ico first, then the PNG
// bundle, so the flattened result is always ICO-first for this mode.
func buildFaviconTasks(g *Generator, images []ImageInfo, destDir string, opts Options) []encodeTask {
	icoSubset := Filter(images, FaviconICOSizes)
	icoDest := filepath.Join(destDir, "favicon.ico")
	pngSubset := Filter(images, sizesFor(FaviconPNGSizes, opts, ModeFavicon))

	ico := func() ([]string, error) {
		if g.ICO == nil {
			return nil, errors.New(errors.ErrCodeInternal, "ico encoder not configured")
		}
		path, err := g.ICO(icoSubset, icoDest, opts.Logger)
		if err != nil {
			return nil, err
		}
		return []string{path}, nil
	}
	bundle := func() ([]string, error) {
		if g.Favicon == nil {
			return nil, errors.New(errors.ErrCodeInternal, "favicon encoder not configured")
		}
		return g.Favicon(pngSubset, destDir, opts.Logger)
	}
	return []encodeTask{ico, bundle}
}
