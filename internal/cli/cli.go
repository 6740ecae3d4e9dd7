package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/iconpress/pkg/buildinfo"
	"github.com/matzehuels/iconpress/pkg/container"
	"github.com/matzehuels/iconpress/pkg/icongen"
	"github.com/matzehuels/iconpress/pkg/raster"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "iconpress"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "iconpress",
		Short:        "Iconpress turns one image into platform icon containers",
		Long:         `Iconpress is a CLI tool for generating Windows ICO, Apple ICNS, and web favicon bundles from a single SVG image or a directory of pre-rendered PNG files.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Generator Factory
// =============================================================================

// newGenerator creates an icon generator wired to the real collaborators.
func (c *CLI) newGenerator() *icongen.Generator {
	gen := icongen.NewGenerator(c.Logger)
	gen.Scratch = raster.ScratchDir
	gen.Rasterize = raster.RenderSVG
	gen.ICO = container.EncodeICO
	gen.ICNS = container.EncodeICNS
	gen.Favicon = container.EncodeFavicon
	return gen
}

// =============================================================================
// Paths
// =============================================================================

// configDir returns the config directory using XDG standard (~/.config/iconpress/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
