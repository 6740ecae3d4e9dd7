package container

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"github.com/jackmordaunt/icns/v3"

	"github.com/matzehuels/iconpress/pkg/errors"
	"github.com/matzehuels/iconpress/pkg/icongen"
)

// EncodeICNS writes an ICNS container and returns the path of the written
// file. The encoder feeds the largest image of the set to the icns library,
// which derives the embedded size variants from it.
func EncodeICNS(images []icongen.ImageInfo, dest string, logger *log.Logger) (string, error) {
	if len(images) == 0 {
		return "", errors.New(errors.ErrCodeInvalidInput, "no source images for %s", dest)
	}

	largest := images[0]
	for _, info := range images[1:] {
		if info.Size > largest.Size {
			largest = info
		}
	}

	img, err := imaging.Open(largest.Path)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeEncodeFailed, err, "open %s", largest.Path)
	}

	f, err := os.Create(dest)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeEncodeFailed, err, "create %s", dest)
	}

	if err := icns.Encode(f, img); err != nil {
		f.Close()
		os.Remove(dest)
		return "", errors.Wrap(errors.ErrCodeEncodeFailed, err, "encode %s", dest)
	}
	if err := f.Close(); err != nil {
		os.Remove(dest)
		return "", errors.Wrap(errors.ErrCodeEncodeFailed, err, "close %s", dest)
	}

	logger.Debug("encoded icns", "path", dest, "source", largest.Size)
	return dest, nil
}
