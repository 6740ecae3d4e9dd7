package icongen

import "sort"

// =============================================================================
// Default Size Sets - Single Source of Truth per Container Format
// =============================================================================

var (
	// ICOSizes are the pixel sizes embedded in a generated .ico container.
	ICOSizes = []int{16, 24, 32, 48, 64, 128, 256}

	// ICNSSizes are the pixel sizes embedded in a generated .icns container.
	ICNSSizes = []int{16, 32, 64, 128, 256, 512, 1024}

	// FaviconICOSizes are the pixel sizes embedded in favicon.ico.
	FaviconICOSizes = []int{16, 24, 32, 48, 64}

	// FaviconPNGSizes are the per-size PNG files of the favicon bundle.
	FaviconPNGSizes = []int{32, 57, 72, 96, 120, 128, 144, 152, 195, 228}
)

// sizesFor returns the size set for one mode: the caller override when
// present and non-empty, otherwise the given defaults. Override values are
// returned verbatim without validation.
func sizesFor(defaults []int, opts Options, mode Mode) []int {
	if override, ok := opts.Sizes[mode]; ok && len(override) > 0 {
		return override
	}
	return defaults
}

// defaultSizes returns the built-in size set a mode expects its source
// images to cover. For favicon this is the union of the bundle's ICO and
// PNG size sets.
func defaultSizes(mode Mode) []int {
	switch mode {
	case ModeICO:
		return ICOSizes
	case ModeICNS:
		return ICNSSizes
	case ModeFavicon:
		return unionSizes(FaviconICOSizes, FaviconPNGSizes)
	}
	return nil
}

// RequiredSizes returns the ascending union of the size sets of every
// requested mode, honoring per-mode overrides. This is the set of raster
// images the source stage must produce so that every encode task finds
// its inputs.
func RequiredSizes(opts Options) []int {
	var sets [][]int
	for _, mode := range opts.Modes {
		switch mode {
		case ModeICO:
			sets = append(sets, sizesFor(ICOSizes, opts, ModeICO))
		case ModeICNS:
			sets = append(sets, sizesFor(ICNSSizes, opts, ModeICNS))
		case ModeFavicon:
			sets = append(sets, FaviconICOSizes, sizesFor(FaviconPNGSizes, opts, ModeFavicon))
		}
	}
	return unionSizes(sets...)
}

// unionSizes merges size lists into one ascending, deduplicated list.
func unionSizes(sets ...[]int) []int {
	seen := make(map[int]bool)
	var union []int
	for _, set := range sets {
		for _, size := range set {
			if !seen[size] {
				seen[size] = true
				union = append(union, size)
			}
		}
	}
	sort.Ints(union)
	return union
}
