package cli

import (
	"fmt"
	"os"
	"path/filepath"

	ico "github.com/sergeymakinen/go-ico"
	"github.com/spf13/cobra"

	"github.com/matzehuels/iconpress/pkg/errors"
)

// inspectCommand creates the inspect command for listing ICO contents.
func (c *CLI) inspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <file.ico>",
		Short: "List the images embedded in an ICO file",
		Long: `List the images embedded in an ICO file.

Decodes every frame of the container and prints its pixel dimensions,
which is useful for checking what a generate run actually produced.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(args[0])
		},
	}
	return cmd
}

// runInspect decodes the ICO file and prints one line per embedded image.
func (c *CLI) runInspect(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "failed to open %s", path)
	}
	defer f.Close()

	frames, err := ico.DecodeAll(f)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "failed to decode %s", path)
	}

	printInfo("%s contains %d image(s)", filepath.Base(path), len(frames))
	for i, img := range frames {
		b := img.Bounds()
		printKeyValue(fmt.Sprintf("image %d", i+1), fmt.Sprintf("%dx%d", b.Dx(), b.Dy()))
	}
	return nil
}
