// Package diagfmt renders a diagnostic Bag for the terminal or for tools.
package diagfmt

import (
	"path/filepath"

	"emerge/internal/diag"
	"emerge/internal/source"
)

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto prints paths as they were given.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeRelative // relative to BaseDir
	PathModeBasename
)

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	PathMode  PathMode
	BaseDir   string
	Width     int // maximum width of a source line, 0 means unlimited
	ShowNotes bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	IncludePositions bool
	PathMode         PathMode
	BaseDir          string
	Max              int // limits the output, not the Bag
	IncludeNotes     bool
}

func formatPath(f *source.File, mode PathMode, baseDir string) string {
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(f.Path); err == nil {
			return filepath.ToSlash(abs)
		}
	case PathModeRelative:
		if baseDir != "" {
			if rel, err := filepath.Rel(baseDir, f.Path); err == nil {
				return filepath.ToSlash(rel)
			}
		}
	case PathModeBasename:
		return f.BaseName()
	}
	return f.Path
}

// located reports whether a diagnostic points into a file. Timing reports
// carry no location.
func located(d *diag.Diagnostic, fs *source.FileSet) bool {
	return d.Code != diag.ObsTimings && fs != nil && fs.Get(d.Primary.File) != nil
}
