package driver

import (
	"fmt"

	"emerge/internal/project"
	"emerge/internal/source"
)

// fileDigest is H(path || 0 || content).
func fileDigest(f *source.File) project.Digest {
	data := make([]byte, 0, len(f.Path)+1+len(f.Content))
	data = append(data, f.Path...)
	data = append(data, 0)
	data = append(data, f.Content...)
	return project.HashBytes(data)
}

// unitDigest combines the digests of every file in FileSet order.
func unitDigest(fs *source.FileSet, ids []source.FileID) project.Digest {
	files := make([]project.Digest, len(ids))
	for i, id := range ids {
		files[i] = fileDigest(fs.Get(id))
	}
	return project.Combine(project.Digest{}, files...)
}

// cacheKey mixes in every option that changes the outcome of a check.
func cacheKey(unit project.Digest, opts Options) project.Digest {
	settings := fmt.Sprintf("schema=%d max=%d werror=%t nolint=%t ir=%t",
		diskCacheSchemaVersion, opts.MaxDiagnostics, opts.WarningsAsErrors, opts.DisableLints, opts.EmitIR)
	return project.Combine(unit, project.HashBytes([]byte(settings)))
}
