package driver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"emerge/internal/decl"
	"emerge/internal/diag"
	"emerge/internal/project"
	"emerge/internal/source"
)

// ErrNoDeclarations is returned when the given paths contain no declaration files.
var ErrNoDeclarations = errors.New("no declaration files found")

func isDeclFile(path string) bool {
	if filepath.Base(path) == project.ManifestName {
		return false
	}
	_, err := decl.FormatOf(path)
	return err == nil
}

// ListDeclFiles expands directories into the declaration files they contain.
// Files named explicitly are kept even when their extension is unknown, so
// that parsing reports them. The result is sorted and free of duplicates.
func ListDeclFiles(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, filepath.Clean(p))
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != p && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if isDeclFile(path) {
				files = append(files, filepath.Clean(path))
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	slices.Sort(files)
	files = slices.Compact(files)
	if len(files) == 0 {
		return nil, ErrNoDeclarations
	}
	return files, nil
}

func jobLimit(jobs, n int) int {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	return max(1, min(jobs, n))
}

type readResult struct {
	content []byte
	flags   source.FileFlags
}

// loadFiles reads files in parallel and adds them to fileSet in path order,
// so FileIDs do not depend on scheduling.
func loadFiles(ctx context.Context, fileSet *source.FileSet, paths []string, jobs int, sink ProgressSink) ([]source.FileID, error) {
	results := make([]readResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobLimit(jobs, len(paths)))
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			emit(sink, Event{File: path, Stage: StageLoad, Status: StatusWorking})
			content, flags, err := source.ReadFile(path)
			if err != nil {
				emit(sink, Event{File: path, Stage: StageLoad, Status: StatusError, Err: err})
				return err
			}
			results[i] = readResult{content: content, flags: flags}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ids := make([]source.FileID, len(paths))
	for i, path := range paths {
		ids[i] = fileSet.Add(path, results[i].content, results[i].flags)
	}
	return ids, nil
}

// parseFiles decodes every file in parallel. Malformed files become
// diagnostics; the returned units keep the order of ids and skip failures.
func parseFiles(ctx context.Context, fileSet *source.FileSet, ids []source.FileID, jobs int, report diag.Reporter, sink ProgressSink) ([]*decl.Unit, error) {
	units := make([]*decl.Unit, len(ids))
	errs := make([]error, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobLimit(jobs, len(ids)))
	for i, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f := fileSet.Get(id)
			emit(sink, Event{File: f.Path, Stage: StageParse, Status: StatusWorking})
			units[i], errs[i] = decl.Parse(f)
			if errs[i] != nil {
				emit(sink, Event{File: f.Path, Stage: StageParse, Status: StatusError, Err: errs[i]})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]*decl.Unit, 0, len(units))
	for i, u := range units {
		if errs[i] != nil {
			diag.ReportError(report, diag.DclMalformedFile, source.Span{File: ids[i]}, errs[i].Error()).Emit()
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func describeFiles(n int) string {
	if n == 1 {
		return "1 file"
	}
	return fmt.Sprintf("%d files", n)
}
