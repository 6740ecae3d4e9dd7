package icongen

import "sort"

// ImageInfo describes one rendered raster image: the file it lives in and
// its square pixel dimension. Instances are created by the source stage and
// treated as read-only afterwards.
type ImageInfo struct {
	Path string
	Size int
}

// Filter returns the images whose size appears in sizes, sorted ascending
// by size. Duplicates are kept, images with other sizes are dropped, and an
// empty result is not an error - whether the downstream encoder can work
// with it is its own concern. The input slice is not modified.
func Filter(images []ImageInfo, sizes []int) []ImageInfo {
	var kept []ImageInfo
	for _, img := range images {
		for _, size := range sizes {
			if img.Size == size {
				kept = append(kept, img)
				break
			}
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Size < kept[j].Size })
	return kept
}

// flatten merges per-task result lists into one ordered path list. Nil and
// empty entries are skipped; order across tasks and within each task's list
// is preserved.
func flatten(results [][]string) []string {
	var paths []string
	for _, r := range results {
		paths = append(paths, r...)
	}
	return paths
}
