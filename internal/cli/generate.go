package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/iconpress/pkg/errors"
	"github.com/matzehuels/iconpress/pkg/icongen"
)

// generateCommand creates the generate command for producing icon containers.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		output     string
		modesStr   string
		icoName    string
		icnsName   string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "generate <source>",
		Short: "Generate icon containers from an SVG or a PNG directory",
		Long: `Generate icon containers from a source image.

The source is either a single .svg file or a directory of pre-rendered
PNG files named by their pixel size (16.png, 32.png, ...). An SVG source
is rasterized to every size the requested containers need; a PNG
directory must already contain the sizes of the first requested mode.

Supported modes:
  ico      Windows icon (.ico)
  icns     Apple icon (.icns)
  favicon  favicon.ico plus favicon-<size>.png files and a web manifest

All requested containers are written into the output directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := icongen.Options{
				Modes: parseModes(modesStr),
				Names: icongen.Names{ICO: icoName, ICNS: icnsName},
			}

			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			cfg.apply(&opts)

			// Neither flag nor config named modes: generate everything.
			if len(opts.Modes) == 0 {
				opts.Modes = []icongen.Mode{icongen.ModeICO, icongen.ModeICNS, icongen.ModeFavicon}
			}
			if err := icongen.ValidateModes(opts.Modes); err != nil {
				return err
			}

			ctx := withLogger(cmd.Context(), c.Logger)
			return c.runGenerate(ctx, args[0], output, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", ".", "output directory for generated files")
	cmd.Flags().StringVarP(&modesStr, "modes", "m", "", "container mode(s): ico, icns, favicon (comma-separated, default all)")
	cmd.Flags().StringVar(&icoName, "ico-name", "", "base name of the generated .ico file (default \"app\")")
	cmd.Flags().StringVar(&icnsName, "icns-name", "", "base name of the generated .icns file (default \"app\")")
	cmd.Flags().StringVar(&configPath, "config", "", "path to a TOML config file")

	return cmd
}

// runGenerate dispatches the source to the SVG or PNG pipeline and reports results.
func (c *CLI) runGenerate(ctx context.Context, source, output string, opts icongen.Options) error {
	info, err := os.Stat(source)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "source %s does not exist", source)
	}

	logger := loggerFromContext(ctx)
	gen := c.newGenerator()
	opts.Logger = logger
	tracker := newProgress(logger)

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Generating icons from %s...", filepath.Base(source)))
	spinner.Start()

	var paths []string
	switch {
	case info.IsDir():
		paths, err = gen.FromPNG(ctx, source, output, opts)
	case strings.EqualFold(filepath.Ext(source), ".svg"):
		paths, err = gen.FromSVG(ctx, source, output, opts)
	default:
		spinner.Stop()
		return errors.New(errors.ErrCodeInvalidInput, "source %s is neither an SVG file nor a directory", source)
	}
	if err != nil {
		spinner.StopWithError("Generation failed")
		return err
	}
	spinner.Stop()

	printSuccess("Generated %d file(s)", len(paths))
	for _, p := range paths {
		printFile(p)
	}
	tracker.done(fmt.Sprintf("Generated %d file(s)", len(paths)))
	return nil
}

// parseModes splits a comma-separated mode list. An empty string yields nil
// so config file values can fill in.
func parseModes(s string) []icongen.Mode {
	var modes []icongen.Mode
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		modes = append(modes, icongen.Mode(part))
	}
	return modes
}
