// Package raster supplies the image source collaborators of the icon
// pipeline: a per-run scratch directory allocator and an SVG rasterizer
// built on oksvg/rasterx.
//
// Rendered files are written as <size>.png into the target directory, the
// same naming convention the directory source mode expects, so a scratch
// directory produced here is indistinguishable from a user-prepared one.
package raster

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/matzehuels/iconpress/pkg/errors"
	"github.com/matzehuels/iconpress/pkg/icongen"
)

// ScratchDir creates a fresh scratch directory under the system temp
// directory. Every call returns a distinct path, so concurrent generation
// runs never share a scratch area.
func ScratchDir() (string, error) {
	dir := filepath.Join(os.TempDir(), "iconpress-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return dir, nil
}

// RenderSVG rasterizes the SVG at svgPath into dir at each requested size
// and returns the produced image set in size order. Rendering stops early
// when ctx is cancelled.
func RenderSVG(ctx context.Context, svgPath, dir string, sizes []int, logger *log.Logger) ([]icongen.ImageInfo, error) {
	icon, err := oksvg.ReadIcon(svgPath)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRasterizeFailed, err, "read svg %s", svgPath)
	}

	images := make([]icongen.ImageInfo, 0, len(sizes))
	for _, size := range sizes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := filepath.Join(dir, strconv.Itoa(size)+".png")
		if err := renderOne(icon, size, path); err != nil {
			return nil, errors.Wrap(errors.ErrCodeRasterizeFailed, err, "rasterize %s at %dpx", svgPath, size)
		}
		logger.Debug("rasterized", "size", size, "path", path)
		images = append(images, icongen.ImageInfo{Path: path, Size: size})
	}
	return images, nil
}

// renderOne draws the icon at the given square size and writes it as PNG.
func renderOne(icon *oksvg.SvgIcon, size int, path string) error {
	icon.SetTarget(0, 0, float64(size), float64(size))

	rgba := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, rgba, rgba.Bounds())
	dasher := rasterx.NewDasher(size, size, scanner)
	icon.Draw(dasher, 1.0)

	return imaging.Save(rgba, path)
}
