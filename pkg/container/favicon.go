package container

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/iconpress/pkg/errors"
	"github.com/matzehuels/iconpress/pkg/icongen"
)

// manifestName is the web manifest written alongside the favicon PNGs.
const manifestName = "site.webmanifest"

// manifestIcon is one icons[] entry of the web manifest.
type manifestIcon struct {
	Src   string `json:"src"`
	Sizes string `json:"sizes"`
	Type  string `json:"type"`
}

// manifest is the minimal web manifest shape browsers expect.
type manifest struct {
	Icons []manifestIcon `json:"icons"`
}

// EncodeFavicon writes the favicon PNG bundle into destDir: one
// favicon-<size>x<size>.png per image plus a site.webmanifest referencing
// them. Returned paths keep the input's size order, manifest last.
// favicon.ico itself is produced by the ICO encoder, not here.
func EncodeFavicon(images []icongen.ImageInfo, destDir string, logger *log.Logger) ([]string, error) {
	if len(images) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no source images for favicon bundle in %s", destDir)
	}

	paths := make([]string, 0, len(images)+1)
	icons := make([]manifestIcon, 0, len(images))
	for _, info := range images {
		name := fmt.Sprintf("favicon-%dx%d.png", info.Size, info.Size)
		dest := filepath.Join(destDir, name)

		data, err := os.ReadFile(info.Path)
		if err != nil {
			removeAll(paths)
			return nil, errors.Wrap(errors.ErrCodeEncodeFailed, err, "read %s", info.Path)
		}
		if err := os.WriteFile(dest, data, 0644); err != nil {
			removeAll(paths)
			return nil, errors.Wrap(errors.ErrCodeEncodeFailed, err, "write %s", dest)
		}

		paths = append(paths, dest)
		icons = append(icons, manifestIcon{
			Src:   name,
			Sizes: fmt.Sprintf("%dx%d", info.Size, info.Size),
			Type:  "image/png",
		})
	}

	manifestPath := filepath.Join(destDir, manifestName)
	data, err := json.MarshalIndent(manifest{Icons: icons}, "", "  ")
	if err != nil {
		removeAll(paths)
		return nil, errors.Wrap(errors.ErrCodeEncodeFailed, err, "marshal %s", manifestName)
	}
	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		removeAll(paths)
		return nil, errors.Wrap(errors.ErrCodeEncodeFailed, err, "write %s", manifestPath)
	}
	paths = append(paths, manifestPath)

	logger.Debug("encoded favicon bundle", "dir", destDir, "files", len(paths))
	return paths, nil
}

// removeAll best-effort deletes already-written bundle files after a failure.
func removeAll(paths []string) {
	for _, p := range paths {
		_ = os.Remove(p)
	}
}
