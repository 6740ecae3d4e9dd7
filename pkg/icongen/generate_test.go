package icongen

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/iconpress/pkg/errors"
)

func discardLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

// newStubGenerator returns a generator whose encoders succeed without
// touching the filesystem, reporting the paths they would have written.
func newStubGenerator() *Generator {
	gen := NewGenerator(discardLogger())
	gen.ICO = func(images []ImageInfo, dest string, logger *log.Logger) (string, error) {
		return dest, nil
	}
	gen.ICNS = func(images []ImageInfo, dest string, logger *log.Logger) (string, error) {
		return dest, nil
	}
	gen.Favicon = func(images []ImageInfo, destDir string, logger *log.Logger) ([]string, error) {
		var paths []string
		for _, img := range images {
			paths = append(paths, filepath.Join(destDir, fmt.Sprintf("favicon-%dx%d.png", img.Size, img.Size)))
		}
		return append(paths, filepath.Join(destDir, "site.webmanifest")), nil
	}
	return gen
}

// fullImageSet covers every default size of every mode.
func fullImageSet() []ImageInfo {
	var images []ImageInfo
	for _, size := range unionSizes(ICOSizes, ICNSSizes, FaviconICOSizes, FaviconPNGSizes) {
		images = append(images, ImageInfo{Path: strconv.Itoa(size) + ".png", Size: size})
	}
	return images
}

func TestFromImagesEmptySet(t *testing.T) {
	gen := newStubGenerator()
	dest := filepath.Join(t.TempDir(), "out")

	_, err := gen.FromImages(context.Background(), nil, dest, Options{Modes: []Mode{ModeICO}})
	if err == nil {
		t.Fatal("Empty image set should fail")
	}
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidInput)
	}

	// The failure happens before any filesystem writes.
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Error("destination directory was created for an empty image set")
	}
}

func TestFromImagesCreatesDestination(t *testing.T) {
	gen := newStubGenerator()
	dest := filepath.Join(t.TempDir(), "nested", "out")

	if _, err := gen.FromImages(context.Background(), fullImageSet(), dest, Options{Modes: []Mode{ModeICO}}); err != nil {
		t.Fatalf("FromImages() error = %v", err)
	}
	if info, err := os.Stat(dest); err != nil || !info.IsDir() {
		t.Error("destination directory was not created")
	}
}

func TestFromImagesICOThenICNSOrder(t *testing.T) {
	gen := newStubGenerator()
	// Delay the first-declared task so the second settles first; the result
	// order must still follow declaration order.
	gen.ICO = func(images []ImageInfo, dest string, logger *log.Logger) (string, error) {
		time.Sleep(20 * time.Millisecond)
		return dest, nil
	}

	dest := t.TempDir()
	paths, err := gen.FromImages(context.Background(), fullImageSet(), dest, Options{Modes: []Mode{ModeICO, ModeICNS}})
	if err != nil {
		t.Fatalf("FromImages() error = %v", err)
	}

	if len(paths) != 2 {
		t.Fatalf("got %d paths, want 2: %v", len(paths), paths)
	}
	if !strings.HasSuffix(paths[0], ".ico") {
		t.Errorf("paths[0] = %s, want .ico first", paths[0])
	}
	if !strings.HasSuffix(paths[1], ".icns") {
		t.Errorf("paths[1] = %s, want .icns second", paths[1])
	}
}

func TestFromImagesCustomNames(t *testing.T) {
	gen := newStubGenerator()
	dest := t.TempDir()

	opts := Options{
		Modes: []Mode{ModeICO, ModeICNS},
		Names: Names{ICO: "myapp", ICNS: "MyApp"},
	}
	paths, err := gen.FromImages(context.Background(), fullImageSet(), dest, opts)
	if err != nil {
		t.Fatalf("FromImages() error = %v", err)
	}

	if filepath.Base(paths[0]) != "myapp.ico" {
		t.Errorf("paths[0] = %s, want myapp.ico", paths[0])
	}
	if filepath.Base(paths[1]) != "MyApp.icns" {
		t.Errorf("paths[1] = %s, want MyApp.icns", paths[1])
	}
}

func TestFromImagesFaviconICOFirst(t *testing.T) {
	gen := newStubGenerator()
	dest := t.TempDir()

	paths, err := gen.FromImages(context.Background(), fullImageSet(), dest, Options{Modes: []Mode{ModeFavicon}})
	if err != nil {
		t.Fatalf("FromImages() error = %v", err)
	}

	if len(paths) < 2 {
		t.Fatalf("got %d paths, want at least 2", len(paths))
	}
	if filepath.Base(paths[0]) != "favicon.ico" {
		t.Errorf("paths[0] = %s, want favicon.ico", paths[0])
	}
	if filepath.Base(paths[len(paths)-1]) != "site.webmanifest" {
		t.Errorf("last path = %s, want site.webmanifest", paths[len(paths)-1])
	}
}

func TestFromImagesEncodersGetFilteredSubsets(t *testing.T) {
	gen := newStubGenerator()
	var icoSizes, icnsSizes []int
	gen.ICO = func(images []ImageInfo, dest string, logger *log.Logger) (string, error) {
		for _, img := range images {
			icoSizes = append(icoSizes, img.Size)
		}
		return dest, nil
	}
	gen.ICNS = func(images []ImageInfo, dest string, logger *log.Logger) (string, error) {
		for _, img := range images {
			icnsSizes = append(icnsSizes, img.Size)
		}
		return dest, nil
	}

	opts := Options{
		Modes: []Mode{ModeICO},
		Sizes: map[Mode][]int{ModeICO: {32, 16}},
	}
	if _, err := gen.FromImages(context.Background(), fullImageSet(), t.TempDir(), opts); err != nil {
		t.Fatalf("FromImages() error = %v", err)
	}

	// Filtered subset arrives sorted ascending regardless of override order.
	if len(icoSizes) != 2 || icoSizes[0] != 16 || icoSizes[1] != 32 {
		t.Errorf("ico subset sizes = %v, want [16 32]", icoSizes)
	}
	if icnsSizes != nil {
		t.Errorf("icns encoder ran for an ico-only request: %v", icnsSizes)
	}
}

func TestFromImagesFirstFailureWins(t *testing.T) {
	gen := newStubGenerator()
	encodeErr := errors.New(errors.ErrCodeEncodeFailed, "ico exploded")
	gen.ICO = func(images []ImageInfo, dest string, logger *log.Logger) (string, error) {
		return "", encodeErr
	}
	var icnsRan atomic.Bool
	gen.ICNS = func(images []ImageInfo, dest string, logger *log.Logger) (string, error) {
		icnsRan.Store(true)
		return dest, nil
	}

	paths, err := gen.FromImages(context.Background(), fullImageSet(), t.TempDir(), Options{Modes: []Mode{ModeICO, ModeICNS}})
	if err == nil {
		t.Fatal("Failing encoder should fail the run")
	}
	if !errors.Is(err, errors.ErrCodeEncodeFailed) {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeEncodeFailed)
	}
	if paths != nil {
		t.Errorf("paths = %v, want nil on failure", paths)
	}

	// Sibling tasks are not cancelled; their results are simply discarded.
	if !icnsRan.Load() {
		t.Error("sibling icns task did not run to completion")
	}
}

func TestFromImagesSkipsUnknownMode(t *testing.T) {
	gen := newStubGenerator()

	paths, err := gen.FromImages(context.Background(), fullImageSet(), t.TempDir(), Options{Modes: []Mode{ModeICO, "webp"}})
	if err != nil {
		t.Fatalf("Unknown mode should be skipped, got error %v", err)
	}
	if len(paths) != 1 {
		t.Errorf("got %d paths, want 1 (unknown mode contributes nothing)", len(paths))
	}
}

func TestFromPNGMissingFileShortCircuits(t *testing.T) {
	dir := t.TempDir()
	// Everything the ico mode needs except 64.png.
	for _, size := range []int{16, 24, 32, 48, 128, 256} {
		writeFakePNG(t, dir, size)
	}

	gen := newStubGenerator()
	var encoderRan atomic.Bool
	gen.ICO = func(images []ImageInfo, dest string, logger *log.Logger) (string, error) {
		encoderRan.Store(true)
		return dest, nil
	}

	_, err := gen.FromPNG(context.Background(), dir, t.TempDir(), Options{Modes: []Mode{ModeICO}})
	if err == nil {
		t.Fatal("Missing raster file should fail")
	}
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeFileNotFound)
	}
	if !strings.Contains(err.Error(), "64.png") {
		t.Errorf("error %q does not name the missing file", err.Error())
	}
	if encoderRan.Load() {
		t.Error("encoder ran despite failed validation")
	}
}

func TestFromPNGBuildsImageSet(t *testing.T) {
	dir := t.TempDir()
	for _, size := range ICOSizes {
		writeFakePNG(t, dir, size)
	}

	gen := newStubGenerator()
	var got []ImageInfo
	gen.ICO = func(images []ImageInfo, dest string, logger *log.Logger) (string, error) {
		got = images
		return dest, nil
	}

	if _, err := gen.FromPNG(context.Background(), dir, t.TempDir(), Options{Modes: []Mode{ModeICO}}); err != nil {
		t.Fatalf("FromPNG() error = %v", err)
	}

	if len(got) != len(ICOSizes) {
		t.Fatalf("encoder got %d images, want %d", len(got), len(ICOSizes))
	}
	for i, img := range got {
		if img.Size != ICOSizes[i] {
			t.Errorf("image %d size = %d, want %d", i, img.Size, ICOSizes[i])
		}
		if filepath.Base(img.Path) != strconv.Itoa(ICOSizes[i])+".png" {
			t.Errorf("image %d path = %s", i, img.Path)
		}
	}
}

// TestFromPNGPrimaryModeOnly documents a preserved quirk: directory-mode
// validation derives required sizes from the first requested mode only,
// even when several modes are requested.
func TestFromPNGPrimaryModeOnly(t *testing.T) {
	dir := t.TempDir()
	for _, size := range ICOSizes {
		writeFakePNG(t, dir, size)
	}
	// 512.png and 1024.png (icns-only sizes) are intentionally absent.

	gen := newStubGenerator()
	if _, err := gen.FromPNG(context.Background(), dir, t.TempDir(), Options{Modes: []Mode{ModeICO, ModeICNS}}); err != nil {
		t.Errorf("validation should only cover the primary mode's sizes, got %v", err)
	}
}

func TestFromSVGScratchFailure(t *testing.T) {
	gen := newStubGenerator()
	gen.Scratch = func() (string, error) {
		return "", fmt.Errorf("disk full")
	}
	gen.Rasterize = func(ctx context.Context, svgPath, dir string, sizes []int, logger *log.Logger) ([]ImageInfo, error) {
		t.Error("rasterizer ran despite scratch failure")
		return nil, nil
	}

	_, err := gen.FromSVG(context.Background(), "logo.svg", t.TempDir(), Options{Modes: []Mode{ModeICO}})
	if err == nil {
		t.Fatal("Scratch failure should be fatal")
	}
	if !errors.Is(err, errors.ErrCodeScratchFailed) {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeScratchFailed)
	}
}

func TestFromSVGRasterizeFailureCleansScratch(t *testing.T) {
	scratch := filepath.Join(t.TempDir(), "scratch")

	gen := newStubGenerator()
	gen.Scratch = func() (string, error) {
		return scratch, os.MkdirAll(scratch, 0700)
	}
	rasterErr := fmt.Errorf("rasterization failed")
	gen.Rasterize = func(ctx context.Context, svgPath, dir string, sizes []int, logger *log.Logger) ([]ImageInfo, error) {
		return nil, rasterErr
	}

	_, err := gen.FromSVG(context.Background(), "logo.svg", t.TempDir(), Options{Modes: []Mode{ModeICO}})

	// The rasterizer's error is propagated unchanged.
	if err != rasterErr {
		t.Errorf("err = %v, want the rasterizer error unchanged", err)
	}
	if _, statErr := os.Stat(scratch); !os.IsNotExist(statErr) {
		t.Error("scratch directory survived a rasterization failure")
	}
}

func TestFromSVGSuccessCleansScratch(t *testing.T) {
	scratch := filepath.Join(t.TempDir(), "scratch")

	gen := newStubGenerator()
	gen.Scratch = func() (string, error) {
		return scratch, os.MkdirAll(scratch, 0700)
	}
	gen.Rasterize = func(ctx context.Context, svgPath, dir string, sizes []int, logger *log.Logger) ([]ImageInfo, error) {
		if dir != scratch {
			t.Errorf("rasterize dir = %s, want scratch %s", dir, scratch)
		}
		var images []ImageInfo
		for _, size := range sizes {
			images = append(images, ImageInfo{Path: filepath.Join(dir, strconv.Itoa(size)+".png"), Size: size})
		}
		return images, nil
	}

	paths, err := gen.FromSVG(context.Background(), "logo.svg", t.TempDir(), Options{Modes: []Mode{ModeICO}})
	if err != nil {
		t.Fatalf("FromSVG() error = %v", err)
	}
	if len(paths) != 1 {
		t.Errorf("got %d paths, want 1", len(paths))
	}
	if _, statErr := os.Stat(scratch); !os.IsNotExist(statErr) {
		t.Error("scratch directory survived a successful run")
	}
}

func TestFromSVGRasterizesUnionOfModes(t *testing.T) {
	gen := newStubGenerator()
	gen.Scratch = func() (string, error) {
		return os.MkdirTemp(t.TempDir(), "scratch")
	}
	var rasterSizes []int
	gen.Rasterize = func(ctx context.Context, svgPath, dir string, sizes []int, logger *log.Logger) ([]ImageInfo, error) {
		rasterSizes = sizes
		var images []ImageInfo
		for _, size := range sizes {
			images = append(images, ImageInfo{Path: filepath.Join(dir, strconv.Itoa(size)+".png"), Size: size})
		}
		return images, nil
	}

	opts := Options{Modes: []Mode{ModeICO, ModeICNS}}
	if _, err := gen.FromSVG(context.Background(), "logo.svg", t.TempDir(), opts); err != nil {
		t.Fatalf("FromSVG() error = %v", err)
	}

	want := unionSizes(ICOSizes, ICNSSizes)
	if len(rasterSizes) != len(want) {
		t.Fatalf("rasterized %v, want union %v", rasterSizes, want)
	}
	for i, size := range want {
		if rasterSizes[i] != size {
			t.Errorf("rasterSizes[%d] = %d, want %d", i, rasterSizes[i], size)
		}
	}
}

func writeFakePNG(t *testing.T, dir string, size int) {
	t.Helper()
	path := filepath.Join(dir, strconv.Itoa(size)+".png")
	if err := os.WriteFile(path, []byte("png"), 0644); err != nil {
		t.Fatal(err)
	}
}
