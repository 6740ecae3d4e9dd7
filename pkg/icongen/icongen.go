// Package icongen provides the core icon generation pipeline for iconpress.
//
// This package implements the complete rasterize → filter → encode pipeline
// that turns one set of square raster images into the platform icon
// containers a run requests. By centralizing this logic, the CLI and any
// embedding program share identical behavior.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Source: Obtain a set of (path, size) raster images, either by
//     rasterizing an SVG into a scratch directory or by validating a
//     directory of pre-rendered <size>.png files
//  2. Select: Compute the size set each requested mode needs and filter
//     the image set down to it, sorted ascending by size
//  3. Encode: Run one encode task per container concurrently and flatten
//     the produced output paths into one ordered list
//
// The byte-level container encoders and the SVG rasterizer are collaborators
// injected into the Generator, so the pipeline itself stays testable with
// stubs (see package container and package raster for the real ones).
//
// # Usage
//
// Create a Generator, wire the collaborators, and run it:
//
//	gen := icongen.NewGenerator(logger)
//	gen.Scratch = raster.ScratchDir
//	gen.Rasterize = raster.RenderSVG
//	gen.ICO = container.EncodeICO
//	gen.ICNS = container.EncodeICNS
//	gen.Favicon = container.EncodeFavicon
//
//	opts := icongen.Options{Modes: []icongen.Mode{icongen.ModeICO, icongen.ModeICNS}}
//	paths, err := gen.FromSVG(ctx, "logo.svg", "./dist", opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
package icongen

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/iconpress/pkg/errors"
)

// =============================================================================
// Modes - Target Container Formats
// =============================================================================

// Mode identifies a target icon container format for one generation run.
type Mode string

// The closed set of supported generation modes.
const (
	ModeICO     Mode = "ico"     // Windows ICO container
	ModeICNS    Mode = "icns"    // Apple ICNS container
	ModeFavicon Mode = "favicon" // favicon.ico plus per-size PNG bundle
)

// ValidModes is the set of supported generation modes.
var ValidModes = map[Mode]bool{
	ModeICO:     true,
	ModeICNS:    true,
	ModeFavicon: true,
}

// ValidateMode checks that a mode is valid.
func ValidateMode(m Mode) error {
	if !ValidModes[m] {
		return errors.New(errors.ErrCodeInvalidMode, "invalid mode: %q (must be one of: ico, icns, favicon)", m)
	}
	return nil
}

// ValidateModes checks that all modes are valid.
func ValidateModes(modes []Mode) error {
	for _, m := range modes {
		if err := ValidateMode(m); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Default output base names for single-file containers.
const (
	DefaultNameICO  = "app"
	DefaultNameICNS = "app"
)

// Names holds the output base names for the single-file containers.
// The favicon bundle uses fixed names (favicon.ico, favicon-<size>x<size>.png).
type Names struct {
	ICO  string `toml:"ico"`
	ICNS string `toml:"icns"`
}

// Options contains all configuration for one generation run.
type Options struct {
	// Modes are the requested container formats, in output order.
	// Must be non-empty for a successful run.
	Modes []Mode

	// Names are the output base names for .ico/.icns files.
	// Empty fields default to DefaultNameICO/DefaultNameICNS.
	Names Names

	// Sizes optionally overrides the pixel size set per mode. An absent or
	// empty entry falls back to the mode's built-in defaults. Override
	// values are trusted as-is and not validated.
	Sizes map[Mode][]int

	// Logger receives structured progress output. Defaults to a discard
	// logger so library use stays silent.
	Logger *log.Logger

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Modes) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "at least one mode is required")
	}
	// Unknown modes are not rejected here: the dispatch table skips them
	// silently. ValidateModes exists for surfaces that want to be strict
	// about user input, such as the CLI flag parser.
	if o.Names.ICO == "" {
		o.Names.ICO = DefaultNameICO
	}
	if o.Names.ICNS == "" {
		o.Names.ICNS = DefaultNameICNS
	}
	if err := errors.ValidateBaseName(o.Names.ICO); err != nil {
		return err
	}
	if err := errors.ValidateBaseName(o.Names.ICNS); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// HasMode reports whether the given mode was requested.
func (o *Options) HasMode(m Mode) bool {
	for _, mode := range o.Modes {
		if mode == m {
			return true
		}
	}
	return false
}
