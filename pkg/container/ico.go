// Package container implements the format encoders of the icon pipeline:
// Windows ICO, Apple ICNS, and the web favicon bundle.
//
// Each encoder consumes a filtered, size-sorted image set produced by
// package icongen and writes one container (or bundle) at the destination.
// There is no partial-success contract: an encoder either fully writes its
// output or returns an error and removes what it had written.
package container

import (
	"image"
	"os"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	ico "github.com/sergeymakinen/go-ico"

	"github.com/matzehuels/iconpress/pkg/errors"
	"github.com/matzehuels/iconpress/pkg/icongen"
)

// EncodeICO writes an ICO container holding every image in the set and
// returns the path of the written file.
func EncodeICO(images []icongen.ImageInfo, dest string, logger *log.Logger) (string, error) {
	if len(images) == 0 {
		return "", errors.New(errors.ErrCodeInvalidInput, "no source images for %s", dest)
	}

	frames := make([]image.Image, 0, len(images))
	for _, info := range images {
		img, err := imaging.Open(info.Path)
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeEncodeFailed, err, "open %s", info.Path)
		}
		frames = append(frames, img)
	}

	f, err := os.Create(dest)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeEncodeFailed, err, "create %s", dest)
	}

	if err := ico.EncodeAll(f, frames); err != nil {
		f.Close()
		os.Remove(dest)
		return "", errors.Wrap(errors.ErrCodeEncodeFailed, err, "encode %s", dest)
	}
	if err := f.Close(); err != nil {
		os.Remove(dest)
		return "", errors.Wrap(errors.ErrCodeEncodeFailed, err, "close %s", dest)
	}

	logger.Debug("encoded ico", "path", dest, "images", len(frames))
	return dest, nil
}
