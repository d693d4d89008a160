package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"emerge/internal/diagfmt"
	"emerge/internal/driver"
	"emerge/internal/project"
)

// loadManifest returns the emerge.toml governing the working directory, or
// nil when there is none.
func loadManifest() (*project.Manifest, error) {
	m, err := project.Load(".")
	if errors.Is(err, project.ErrNoManifest) {
		return nil, nil
	}
	return m, err
}

// runSettings is the merged view of flags and emerge.toml; flags win.
type runSettings struct {
	paths     []string
	opts      driver.Options
	pathMode  diagfmt.PathMode
	baseDir   string
	showNotes bool
}

func resolveSettings(cmd *cobra.Command, args []string) (*runSettings, error) {
	manifest, err := loadManifest()
	if err != nil {
		return nil, err
	}
	rootFlags := cmd.Root().PersistentFlags()
	s := &runSettings{paths: args}

	if s.opts.MaxDiagnostics, err = rootFlags.GetInt("max-diagnostics"); err != nil {
		return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if s.opts.EnableTimings, err = rootFlags.GetBool("timings"); err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if s.opts.Jobs, err = rootFlags.GetInt("jobs"); err != nil {
		return nil, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	useCache, err := rootFlags.GetBool("cache")
	if err != nil {
		return nil, fmt.Errorf("failed to get cache flag: %w", err)
	}
	cacheDir, err := rootFlags.GetString("cache-dir")
	if err != nil {
		return nil, fmt.Errorf("failed to get cache-dir flag: %w", err)
	}
	if useCache || cacheDir != "" {
		if cacheDir != "" {
			s.opts.Cache, err = driver.NewDiskCache(cacheDir)
		} else {
			s.opts.Cache, err = driver.OpenDiskCache("emerge")
		}
		if err != nil {
			return nil, fmt.Errorf("failed to open disk cache: %w", err)
		}
	}

	if flag := cmd.Flags().Lookup("warnings-as-errors"); flag != nil {
		if s.opts.WarningsAsErrors, err = cmd.Flags().GetBool("warnings-as-errors"); err != nil {
			return nil, fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
		}
	}
	if flag := cmd.Flags().Lookup("no-lints"); flag != nil {
		if s.opts.DisableLints, err = cmd.Flags().GetBool("no-lints"); err != nil {
			return nil, fmt.Errorf("failed to get no-lints flag: %w", err)
		}
	}
	if flag := cmd.Flags().Lookup("with-notes"); flag != nil {
		if s.showNotes, err = cmd.Flags().GetBool("with-notes"); err != nil {
			return nil, fmt.Errorf("failed to get with-notes flag: %w", err)
		}
	}
	fullPath := false
	if flag := cmd.Flags().Lookup("fullpath"); flag != nil {
		if fullPath, err = cmd.Flags().GetBool("fullpath"); err != nil {
			return nil, fmt.Errorf("failed to get fullpath flag: %w", err)
		}
	}

	if manifest != nil {
		cc := manifest.Config.Check
		if !rootFlags.Changed("max-diagnostics") && cc.MaxDiagnostics > 0 {
			s.opts.MaxDiagnostics = cc.MaxDiagnostics
		}
		if !cmd.Flags().Changed("warnings-as-errors") {
			s.opts.WarningsAsErrors = s.opts.WarningsAsErrors || cc.WarningsAsErrors
		}
		if !cmd.Flags().Changed("no-lints") && !cc.LintsEnabled() {
			s.opts.DisableLints = true
		}
		if len(s.paths) == 0 {
			s.paths = manifest.SourcePaths()
		}
		s.baseDir = manifest.Root
	}
	if len(s.paths) == 0 {
		return nil, fmt.Errorf("no %s found; pass declaration files or directories", project.ManifestName)
	}

	switch {
	case fullPath:
		s.pathMode = diagfmt.PathModeAbsolute
	case s.baseDir != "":
		s.pathMode = diagfmt.PathModeRelative
	default:
		if wd, err := os.Getwd(); err == nil {
			s.baseDir = wd
			s.pathMode = diagfmt.PathModeRelative
		}
	}
	s.baseDir = filepath.Clean(s.baseDir)
	return s, nil
}
